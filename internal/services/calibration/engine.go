package calibration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/camera"
	"cornerwatch-go/internal/services/state"
)

// Notifier receives profile change notifications
type Notifier interface {
	Notify(n models.Notification)
}

// Engine periodically measures scene luminance and keeps the camera on the
// matching profile. Runs beside the detection loop and meets it only through
// the active profile in the runtime container.
type Engine struct {
	source   camera.Source
	rt       *state.Runtime
	notifier Notifier
	logger   zerolog.Logger

	// serializes the periodic run with on-demand calls
	mu  sync.Mutex
	now func() time.Time
}

// NewEngine creates a calibration engine; notifier may be nil
func NewEngine(source camera.Source, rt *state.Runtime, notifier Notifier, logger zerolog.Logger) *Engine {
	return &Engine{
		source:   source,
		rt:       rt,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Calibrate runs one measurement and applies the selected profile.
// On a read failure the previous reading is kept untouched. On an apply failure
// the previous profile stays active with the new luminance; the next period retries.
func (e *Engine) Calibrate(ctx context.Context) (models.ProfileReading, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	settings := e.rt.Settings()
	prev := e.rt.Profile()

	frame, err := e.source.CaptureFrame(ctx)
	if err != nil {
		return prev, fmt.Errorf("calibration read failed: %w", err)
	}
	mainW, mainH := e.source.MainResolution()
	lum, err := MeasureLuminance(frame.Mat, settings.CalibrationRegions, mainW, mainH)
	frame.Close()
	if err != nil {
		return prev, fmt.Errorf("calibration read failed: %w", err)
	}

	target, manual := settings.ManualOverride()
	if !manual {
		target = SelectProfile(lum, settings.Thresholds())
	}

	reading := models.ProfileReading{
		Profile:    target,
		Luminance:  lum,
		MeasuredAt: e.now(),
		Manual:     manual,
		Applied:    true,
	}

	if target != prev.Profile || !prev.Applied {
		if err := e.source.ApplyProfile(target.Params()); err != nil {
			reading.Profile = prev.Profile
			reading.Applied = prev.Applied
			reading.Manual = prev.Manual
			e.rt.SetProfile(reading)
			return reading, fmt.Errorf("failed to apply profile %s: %w", target, err)
		}

		if target != prev.Profile {
			e.logger.Info().
				Str("from", prev.Profile.String()).
				Str("to", target.String()).
				Float64("luminance", lum).
				Bool("manual", manual).
				Msg("Camera profile changed")
			if e.notifier != nil {
				e.notifier.Notify(models.Notification{
					Type:      models.NotificationProfileChange,
					Timestamp: reading.MeasuredAt,
					Data:      reading,
				})
			}
		}
	}

	e.rt.SetProfile(reading)
	return reading, nil
}

// Run calibrates immediately and then every calibration_interval until ctx is
// done. The interval is re-read after each run so edits apply on the next period.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info().Msg("Calibration task started")
	defer e.logger.Info().Msg("Calibration task stopped")

	for {
		e.tick(ctx)

		timer := time.NewTimer(e.rt.Settings().CalibrationPeriod())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("Calibration panic recovered")
		}
	}()

	settings := e.rt.Settings()
	if _, manual := settings.ManualOverride(); !settings.CalibrationEnabled && !manual {
		return
	}

	reading, err := e.Calibrate(ctx)
	if err != nil {
		e.logger.Warn().Err(err).
			Str("profile", reading.Profile.String()).
			Msg("Calibration kept previous profile")
		return
	}
	e.logger.Debug().
		Str("profile", reading.Profile.Code()).
		Float64("luminance", reading.Luminance).
		Msg("Calibration complete")
}
