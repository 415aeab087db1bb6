package eventlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cornerwatch-go/internal/models"
)

func openLog(t *testing.T, max int) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "events.db"), max)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestAppend_AssignsID(t *testing.T) {
	l := openLog(t, 10)

	ev, err := l.Append(models.MotionEvent{PixelsChanged: 900, Threshold: 500, Mode: models.ModeFullFrame})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestRecent_NewestFirst(t *testing.T) {
	l := openLog(t, 10)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := l.Append(models.MotionEvent{
			Timestamp:     base.Add(time.Duration(i) * time.Second),
			PixelsChanged: 100 * (i + 1),
			Threshold:     50,
			Mode:          models.ModeRegions,
		})
		require.NoError(t, err)
	}

	events, err := l.Recent(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 300, events[0].PixelsChanged)
	assert.Equal(t, 200, events[1].PixelsChanged)
	assert.True(t, events[0].Timestamp.Equal(base.Add(2*time.Second)))
	assert.Equal(t, models.ModeRegions, events[0].Mode)
}

func TestAppend_TrimsToCap(t *testing.T) {
	l := openLog(t, 5)

	for i := 1; i <= 8; i++ {
		_, err := l.Append(models.MotionEvent{PixelsChanged: i, Mode: models.ModeFullFrame})
		require.NoError(t, err)
	}

	n, err := l.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	events, err := l.Recent(0)
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, 8, events[0].PixelsChanged)
	assert.Equal(t, 4, events[4].PixelsChanged)
}
