package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cornerwatch-go/internal/helpers"
	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/state"
)

// StillSource is the part of the camera the scheduler needs
type StillSource interface {
	CaptureStill(ctx context.Context, quality int) (models.Still, error)
}

// Mirror receives every persisted still, e.g. for off-site copies. Enqueue must not block.
type Mirror interface {
	Enqueue(name string, data []byte)
}

// Scheduler takes bursts of stills on motion, enforces the cooldown between
// bursts and persists held corner stills. Bursts are only started from the
// detection loop; the mutex guards the cooldown state read by status queries.
type Scheduler struct {
	source StillSource
	store  *Store
	rt     *state.Runtime
	mirror Mirror
	logger zerolog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu      sync.Mutex
	lastEnd time.Time
	hasLast bool
}

// NewScheduler creates a scheduler; mirror may be nil
func NewScheduler(source StillSource, store *Store, rt *state.Runtime, mirror Mirror, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		source: source,
		store:  store,
		rt:     rt,
		mirror: mirror,
		logger: logger,
		now:    time.Now,
		after:  time.After,
	}
}

// TakeStill captures a full-resolution JPEG tagged with the active profile and luminance
func (s *Scheduler) TakeStill(ctx context.Context, quality int) (models.Still, error) {
	still, err := s.source.CaptureStill(ctx, quality)
	if err != nil {
		return models.Still{}, err
	}
	if !helpers.IsJPEG(still.Data) {
		return models.Still{}, fmt.Errorf("%w: still is not a JPEG", models.ErrFrameUnavailable)
	}
	reading := s.rt.Profile()
	still.Profile = reading.Profile
	still.Luminance = reading.Luminance
	return still, nil
}

// CoolingDown reports whether a burst started now would be dropped
func (s *Scheduler) CoolingDown(cooldown time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasLast && s.now().Before(s.lastEnd.Add(cooldown))
}

// Burst takes burst_count stills burst_interval apart. It returns ErrCoolingDown
// without capturing when the previous burst ended less than cooldown_seconds ago.
// stop is checked after each written file; a storage failure aborts the burst
// and leaves already written files in place. The cooldown runs from the last
// file written.
func (s *Scheduler) Burst(ctx context.Context, settings models.Settings, stop func() bool) ([]models.CapturedStill, error) {
	if s.CoolingDown(settings.Cooldown()) {
		return nil, models.ErrCoolingDown
	}

	s.rt.SetCapturing(true)
	defer s.rt.SetCapturing(false)

	written := make([]models.CapturedStill, 0, settings.BurstCount)
burst:
	for n := 1; n <= settings.BurstCount; n++ {
		if n > 1 {
			select {
			case <-ctx.Done():
				break burst
			case <-s.after(settings.BurstSpacing()):
			}
		}

		still, err := s.TakeStill(ctx, settings.JPEGQuality)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			s.logger.Warn().Err(err).Int("frame", n).Msg("Burst frame capture failed, skipping")
			continue
		}

		name := MotionName(still.CapturedAt, n, still.Profile, still.Luminance)
		cs, err := s.persist(name, still.Data)
		if err != nil {
			s.rt.SetError(err)
			return written, fmt.Errorf("burst aborted after %d of %d frames: %w", len(written), settings.BurstCount, err)
		}
		written = append(written, cs)

		if stop != nil && stop() {
			s.logger.Info().Int("written", len(written)).Msg("Burst ended early on stop")
			break
		}
	}

	if len(written) > 0 {
		s.rt.SetError(nil)
	}
	return written, nil
}

// PersistCorner writes a held zone-B still under the corner name. It is not a
// burst: the cooldown neither gates it nor restarts because of it.
func (s *Scheduler) PersistCorner(still models.Still, cornerAt time.Time) (models.CapturedStill, error) {
	name := CornerName(cornerAt, still.Profile, still.Luminance)
	cs, err := s.persist(name, still.Data)
	if err != nil {
		s.rt.SetError(err)
		return models.CapturedStill{}, err
	}
	s.rt.SetError(nil)
	return cs, nil
}

func (s *Scheduler) persist(name string, data []byte) (models.CapturedStill, error) {
	cs, err := s.store.Write(name, data)
	if err != nil {
		return models.CapturedStill{}, err
	}
	if cs.Kind == models.StillKindMotion {
		s.mu.Lock()
		s.lastEnd = s.now()
		s.hasLast = true
		s.mu.Unlock()
	}
	if s.mirror != nil {
		s.mirror.Enqueue(name, data)
	}

	s.logger.Info().
		Str("file", name).
		Int("bytes", len(data)).
		Msg("Still saved")
	return cs, nil
}
