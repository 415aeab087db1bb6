package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/state"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// After advances the clock and fires immediately
func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

type fakeStills struct {
	clock  *fakeClock
	calls  int
	before func(call int)
	err    error
}

func (f *fakeStills) CaptureStill(_ context.Context, _ int) (models.Still, error) {
	f.calls++
	if f.before != nil {
		f.before(f.calls)
	}
	if f.err != nil {
		return models.Still{}, f.err
	}
	return models.Still{Data: []byte{0xFF, 0xD8, 0xFF, byte(f.calls)}, CapturedAt: f.clock.Now()}, nil
}

type recordingMirror struct {
	names []string
}

func (m *recordingMirror) Enqueue(name string, _ []byte) {
	m.names = append(m.names, name)
}

func newScheduler(t *testing.T) (*Scheduler, *fakeStills, *fakeClock, *state.Runtime, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)}
	src := &fakeStills{clock: clock}
	rt := state.NewRuntime(models.DefaultSettings())
	rt.SetProfile(models.ProfileReading{Profile: models.ProfileDuskBright, Luminance: 72.46, Applied: true})

	s := NewScheduler(src, store, rt, nil, zerolog.Nop())
	s.now = clock.Now
	s.after = clock.After
	return s, src, clock, rt, dir
}

func TestBurst_WritesNamedStills(t *testing.T) {
	s, _, _, rt, dir := newScheduler(t)
	settings := models.DefaultSettings()

	written, err := s.Burst(context.Background(), settings, nil)
	require.NoError(t, err)
	require.Len(t, written, 3)

	want := []string{
		"motion_20250314_093000_burst1_Du_L72.5.jpg",
		"motion_20250314_093000_burst2_Du_L72.5.jpg",
		"motion_20250314_093001_burst3_Du_L72.5.jpg",
	}
	for i, name := range want {
		assert.Equal(t, name, written[i].Name)
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.False(t, rt.Capturing())
}

func TestBurst_CooldownBoundary(t *testing.T) {
	s, src, clock, _, _ := newScheduler(t)
	settings := models.DefaultSettings()
	settings.BurstCount = 1

	_, err := s.Burst(context.Background(), settings, nil)
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)

	clock.Advance(settings.Cooldown() - time.Nanosecond)
	_, err = s.Burst(context.Background(), settings, nil)
	assert.ErrorIs(t, err, models.ErrCoolingDown)
	assert.Equal(t, 1, src.calls, "dropped triggers take no stills")

	clock.Advance(time.Nanosecond)
	written, err := s.Burst(context.Background(), settings, nil)
	require.NoError(t, err)
	assert.Len(t, written, 1)
}

func TestBurst_CooldownRunsFromLastFrame(t *testing.T) {
	s, _, clock, _, _ := newScheduler(t)
	settings := models.DefaultSettings()
	settings.BurstCount = 3
	settings.BurstInterval = 2
	settings.CooldownSeconds = 5

	start := clock.Now()
	_, err := s.Burst(context.Background(), settings, nil)
	require.NoError(t, err)

	// last frame at start+4s, so start+8s is still inside the cooldown
	clock.t = start.Add(8 * time.Second)
	assert.True(t, s.CoolingDown(settings.Cooldown()))
	clock.t = start.Add(9 * time.Second)
	assert.False(t, s.CoolingDown(settings.Cooldown()))
}

func TestBurst_StopAfterWrite(t *testing.T) {
	s, src, _, _, _ := newScheduler(t)

	written, err := s.Burst(context.Background(), models.DefaultSettings(), func() bool { return true })
	require.NoError(t, err)
	assert.Len(t, written, 1)
	assert.Equal(t, 1, src.calls)
}

func TestBurst_CancelInterruptsSpacing(t *testing.T) {
	s, src, _, rt, _ := newScheduler(t)
	// spacing never elapses on its own
	s.after = func(time.Duration) <-chan time.Time { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	src.before = func(call int) {
		if call == 1 {
			cancel()
		}
	}

	done := make(chan []models.CapturedStill, 1)
	go func() {
		written, err := s.Burst(ctx, models.DefaultSettings(), nil)
		assert.NoError(t, err)
		done <- written
	}()

	select {
	case written := <-done:
		assert.Len(t, written, 1)
		assert.Equal(t, 1, src.calls)
		assert.False(t, rt.Capturing())
	case <-time.After(2 * time.Second):
		t.Fatal("burst kept waiting after cancel")
	}
}

func TestBurst_StorageFailureAborts(t *testing.T) {
	s, src, _, rt, dir := newScheduler(t)
	moved := dir + "-moved"
	src.before = func(call int) {
		if call == 2 {
			require.NoError(t, os.Rename(dir, moved))
		}
	}
	t.Cleanup(func() { os.RemoveAll(moved) })

	written, err := s.Burst(context.Background(), models.DefaultSettings(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrStorage))
	require.Len(t, written, 1)
	assert.FileExists(t, filepath.Join(moved, written[0].Name), "written frames stay in place")
	assert.Equal(t, 2, src.calls, "no further frames after the failure")
	assert.NotEmpty(t, rt.LastError())
}

func TestBurst_CaptureFailureSkipsFrame(t *testing.T) {
	s, src, _, _, _ := newScheduler(t)
	src.before = func(call int) {
		if call == 2 {
			src.err = models.ErrFrameUnavailable
		} else {
			src.err = nil
		}
	}

	written, err := s.Burst(context.Background(), models.DefaultSettings(), nil)
	require.NoError(t, err)
	assert.Len(t, written, 2)
}

func TestPersistCorner_IgnoresCooldown(t *testing.T) {
	s, _, clock, _, dir := newScheduler(t)
	mirror := &recordingMirror{}
	s.mirror = mirror

	settings := models.DefaultSettings()
	settings.BurstCount = 1
	_, err := s.Burst(context.Background(), settings, nil)
	require.NoError(t, err)
	require.True(t, s.CoolingDown(settings.Cooldown()))

	cornerAt := clock.Now().Add(time.Second)
	still := models.Still{Data: []byte{0xFF, 0xD8}, Profile: models.ProfileNight, Luminance: 3.04}
	cs, err := s.PersistCorner(still, cornerAt)
	require.NoError(t, err)
	assert.Equal(t, "corner_20250314_093001_Ni_L3.0.jpg", cs.Name)
	assert.Equal(t, models.StillKindCorner, cs.Kind)
	assert.FileExists(t, filepath.Join(dir, cs.Name))

	// corner persistence does not restart the cooldown
	clock.Advance(settings.Cooldown())
	assert.False(t, s.CoolingDown(settings.Cooldown()))
	assert.Len(t, mirror.names, 2)
}

func TestStore_ListPathDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.Write("motion_20250101_000000_burst1_Da_L100.0.jpg", []byte{1})
	require.NoError(t, err)
	_, err = store.Write("corner_20250101_000001_Da_L100.0.jpg", []byte{1, 2})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "2025-01-01"), 0o755))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = store.Path("../etc/passwd")
	assert.ErrorIs(t, err, models.ErrCaptureNotFound)
	_, err = store.Path("notes.txt")
	assert.ErrorIs(t, err, models.ErrCaptureNotFound)

	require.NoError(t, store.Delete("corner_20250101_000001_Da_L100.0.jpg"))
	assert.ErrorIs(t, store.Delete("corner_20250101_000001_Da_L100.0.jpg"), models.ErrCaptureNotFound)
}

func TestKindOf(t *testing.T) {
	k, ok := KindOf("corner_20250101_000000_Ni_L1.0.jpg")
	assert.True(t, ok)
	assert.Equal(t, models.StillKindCorner, k)

	_, ok = KindOf("motion.png")
	assert.False(t, ok)
}
