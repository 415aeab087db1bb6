package calibration

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/camera"
	"cornerwatch-go/internal/services/state"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Notify(m models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, m)
}

func TestSelectProfile_SweepOrder(t *testing.T) {
	th := models.DefaultSettings().Thresholds()

	var seen []models.Profile
	for l := 255; l >= 0; l-- {
		p := SelectProfile(float64(l), th)
		if len(seen) == 0 || seen[len(seen)-1] != p {
			seen = append(seen, p)
		}
	}
	assert.Equal(t, models.Profiles(), seen, "each profile appears once, brightest first")
}

func TestSelectProfile_BoundaryPicksBrighter(t *testing.T) {
	th := models.Thresholds{DayBright: 150, Day: 100, DuskBright: 60, DuskDark: 25}

	assert.Equal(t, models.ProfileDayBright, SelectProfile(150, th))
	assert.Equal(t, models.ProfileDay, SelectProfile(149.9, th))
	assert.Equal(t, models.ProfileDay, SelectProfile(100, th))
	assert.Equal(t, models.ProfileDuskBright, SelectProfile(60, th))
	assert.Equal(t, models.ProfileDuskDark, SelectProfile(25, th))
	assert.Equal(t, models.ProfileNight, SelectProfile(24.9, th))
}

func TestMeasureLuminance(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 40, 40, 0), 100, 200, gocv.MatTypeCV8UC3)
	defer frame.Close()
	bright := frame.Region(image.Rect(0, 0, 100, 100))
	bright.SetTo(gocv.NewScalar(200, 200, 200, 0))
	bright.Close()

	whole, err := MeasureLuminance(frame, nil, 200, 100)
	require.NoError(t, err)
	assert.InDelta(t, 120, whole, 1)

	regions := []models.Region{
		{Name: "sky", Rect: models.MustRect(0, 0, 100, 100), Enabled: true},
		{Name: "ignored", Rect: models.MustRect(100, 0, 200, 100), Enabled: false},
	}
	masked, err := MeasureLuminance(frame, regions, 200, 100)
	require.NoError(t, err)
	assert.InDelta(t, 200, masked, 1)
}

func newEngine(t *testing.T, level float64) (*Engine, *camera.Synthetic, *state.Runtime, *recordingNotifier) {
	t.Helper()
	src := camera.NewSynthetic(320, 240, 160, 120)
	src.SetScene(level)
	rt := state.NewRuntime(models.DefaultSettings())
	n := &recordingNotifier{}
	return NewEngine(src, rt, n, zerolog.Nop()), src, rt, n
}

func TestEngine_AppliesSelectedProfile(t *testing.T) {
	e, src, rt, n := newEngine(t, 200)

	r, err := e.Calibrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ProfileDayBright, r.Profile)
	assert.InDelta(t, 200, r.Luminance, 1)
	assert.Equal(t, r, rt.Profile())

	require.Len(t, src.Applied(), 1)
	assert.Equal(t, models.ProfileDayBright.Params(), src.Applied()[0])
	assert.Len(t, n.sent, 1)

	// Same scene again: nothing new written
	_, err = e.Calibrate(context.Background())
	require.NoError(t, err)
	assert.Len(t, src.Applied(), 1)
}

func TestEngine_BusyDeviceKeepsPreviousProfile(t *testing.T) {
	e, src, rt, _ := newEngine(t, 200)
	_, err := e.Calibrate(context.Background())
	require.NoError(t, err)

	src.SetScene(10)
	src.SetBusy(true)
	r, err := e.Calibrate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDeviceBusy))
	assert.Equal(t, models.ProfileDayBright, rt.Profile().Profile)
	assert.InDelta(t, 10, r.Luminance, 1)

	// Next period retries
	src.SetBusy(false)
	r, err = e.Calibrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ProfileNight, r.Profile)
}

func TestEngine_ReadFailureKeepsReading(t *testing.T) {
	e, src, rt, _ := newEngine(t, 200)
	first, err := e.Calibrate(context.Background())
	require.NoError(t, err)

	src.FailFrames(models.ErrFrameUnavailable)
	_, err = e.Calibrate(context.Background())
	require.Error(t, err)
	assert.Equal(t, first, rt.Profile())
}

func TestEngine_ManualOverridePins(t *testing.T) {
	e, src, rt, _ := newEngine(t, 220)

	s := rt.Settings()
	s.ManualProfile = models.ProfileNight.Code()
	rt.PublishSettings(s)

	r, err := e.Calibrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ProfileNight, r.Profile)
	assert.True(t, r.Manual)
	assert.InDelta(t, 220, r.Luminance, 1, "luminance is still measured while pinned")

	s.ManualProfile = ""
	rt.PublishSettings(s)
	r, err = e.Calibrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ProfileDayBright, r.Profile)
	assert.False(t, r.Manual)
	assert.Len(t, src.Applied(), 2)
}
