package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"cornerwatch-go/internal/config"
	"cornerwatch-go/internal/logging"
	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/archive"
	"cornerwatch-go/internal/services/calibration"
	"cornerwatch-go/internal/services/camera"
	"cornerwatch-go/internal/services/capture"
	"cornerwatch-go/internal/services/coordinator"
	"cornerwatch-go/internal/services/eventlog"
	"cornerwatch-go/internal/services/messaging"
	"cornerwatch-go/internal/services/monitor"
	"cornerwatch-go/internal/services/state"
	"cornerwatch-go/internal/ws"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config      *config.Config
	Runtime     *state.Runtime
	Camera      camera.Source
	Coordinator *coordinator.Coordinator
	Calibration *calibration.Engine
	Captures    *capture.Store
	Scheduler   *capture.Scheduler
	Events      *eventlog.Log
	Monitor     *monitor.Monitor
	Hub         *ws.Hub
	Messaging   *messaging.Service
	Mirror      *archive.Mirror

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServiceContainer creates a new service container
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	return NewServiceContainerWithSource(cfg, camera.New(cfg))
}

// NewServiceContainerWithSource wires every service around an existing camera source
func NewServiceContainerWithSource(cfg *config.Config, source camera.Source) (*ServiceContainer, error) {
	sc := &ServiceContainer{Config: cfg, Camera: source}

	sc.Runtime = state.NewRuntime(models.DefaultSettings())
	mainW, mainH := source.MainResolution()
	sc.Coordinator = coordinator.New(
		coordinator.NewFileStore(cfg.SettingsFile),
		sc.Runtime, mainW, mainH,
		logging.NewServiceLogger(cfg, "coordinator"),
	)

	events, err := eventlog.Open(cfg.EventsDB, cfg.MaxEvents)
	if err != nil {
		return nil, err
	}
	sc.Events = events

	store, err := capture.NewStore(cfg.CaptureDir)
	if err != nil {
		sc.Events.Close()
		return nil, err
	}
	sc.Captures = store

	sc.Hub = ws.NewHub(logging.NewServiceLogger(cfg, "ws"))
	notifiers := messaging.Fanout{sc.Hub}

	if cfg.NatsEnabled {
		svc, err := messaging.NewService(cfg, logging.NewServiceLogger(cfg, "messaging"))
		if err != nil {
			// notifications are best effort; the engine runs without them
			log.Warn().Err(err).Str("url", cfg.NatsURL).Msg("NATS unavailable, notifications disabled")
		} else {
			sc.Messaging = svc
			notifiers = append(notifiers, svc)
		}
	}

	var mirror capture.Mirror
	if cfg.MinioEnabled {
		client, err := archive.NewMinioClient(cfg)
		if err != nil {
			sc.Events.Close()
			return nil, fmt.Errorf("failed to create mirror: %w", err)
		}
		sc.Mirror = archive.NewMirror(client, cfg.MinioQueueSize, logging.NewServiceLogger(cfg, "archive"))
		mirror = sc.Mirror

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := client.EnsureBucketExists(ctx); err != nil {
			log.Warn().Err(err).Str("bucket", cfg.MinioBucket).Msg("Mirror bucket check failed, uploads will retry per still")
		}
		cancel()
	}

	sc.Scheduler = capture.NewScheduler(source, store, sc.Runtime, mirror, logging.NewServiceLogger(cfg, "capture"))
	sc.Calibration = calibration.NewEngine(source, sc.Runtime, notifiers, logging.NewServiceLogger(cfg, "calibration"))
	sc.Monitor = monitor.New(monitor.Deps{
		Source:     source,
		Scheduler:  sc.Scheduler,
		Runtime:    sc.Runtime,
		Restart:    sc.Coordinator.RestartRequests(),
		Events:     sc.Events,
		Notifier:   notifiers,
		PanicDelay: cfg.PanicRestartDelay,
	}, logging.NewServiceLogger(cfg, "monitor"))
	sc.Coordinator.SetController(sc.Monitor)

	return sc, nil
}

// Start launches the background tasks: calibration, live feed, mirror uploads
// and, when configured, the detection loop
func (sc *ServiceContainer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	sc.cancel = cancel

	if sc.Mirror != nil {
		sc.Mirror.Start()
	}

	sc.wg.Add(2)
	go func() {
		defer sc.wg.Done()
		sc.Calibration.Run(ctx)
	}()
	go func() {
		defer sc.wg.Done()
		sc.Hub.Run(ctx, sc.Config.StatusBroadcastInterval, sc.liveSnapshot)
	}()

	if sc.Config.MonitorOnStart {
		if err := sc.Monitor.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start monitoring")
		}
	}
}

func (sc *ServiceContainer) liveSnapshot() []ws.Message {
	now := time.Now()
	return []ws.Message{
		{Type: ws.TypeStatus, Timestamp: now, Data: sc.Status()},
		{Type: ws.TypeZones, Timestamp: now, Data: sc.ZoneStatus(now)},
	}
}

// Status assembles the status report from the runtime container
func (sc *ServiceContainer) Status() models.StatusResponse {
	settings := sc.Runtime.Settings()
	reading := sc.Runtime.Profile()
	return models.StatusResponse{
		Initialized:    sc.Runtime.Initialized(),
		Monitoring:     sc.Runtime.Monitoring(),
		Capturing:      sc.Runtime.Capturing(),
		MotionDetected: sc.Runtime.MotionDetected(),
		LastMotion:     sc.Runtime.LastMotion(),
		Mode:           settings.Mode(),
		Profile:        reading.Profile.String(),
		ProfileCode:    reading.Profile.Code(),
		Luminance:      reading.Luminance,
		LastError:      sc.Runtime.LastError(),
		Owner:          sc.Coordinator.Owner(),
		Config:         settings,
	}
}

// ZoneStatus assembles the zone sequencer report
func (sc *ServiceContainer) ZoneStatus(now time.Time) models.ZoneStatusResponse {
	settings := sc.Runtime.Settings()
	snap := sc.Runtime.Zones()

	resp := models.ZoneStatusResponse{
		ZoneSnapshot:  snap,
		Enabled:       settings.ZoneDetectionEnabled,
		Total:         settings.ZoneCycleDuration,
		ZoneA:         settings.ZoneA,
		ZoneB:         settings.ZoneB,
		ZoneC:         settings.ZoneC,
		FrameInterval: settings.ZoneFrameInterval,
		CycleDuration: settings.ZoneCycleDuration,
	}
	if snap.CycleActive && snap.CycleStart != nil {
		resp.Elapsed = min(now.Sub(*snap.CycleStart).Seconds(), settings.ZoneCycleDuration)
	}
	return resp
}

// CalibrationStatus assembles the calibration report
func (sc *ServiceContainer) CalibrationStatus() models.CalibrationResponse {
	settings := sc.Runtime.Settings()
	reading := sc.Runtime.Profile()
	return models.CalibrationResponse{
		Enabled:    settings.CalibrationEnabled,
		Active:     reading.Profile.Info(),
		Luminance:  reading.Luminance,
		MeasuredAt: reading.MeasuredAt,
		Applied:    reading.Applied,
		Override:   settings.ManualProfile,
		Thresholds: settings.Thresholds(),
		Interval:   settings.CalibrationInterval,
	}
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	var errs []error

	if sc.Monitor != nil {
		if err := sc.Monitor.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("monitor: %w", err))
		}
	}

	if sc.cancel != nil {
		sc.cancel()
		sc.wg.Wait()
	}

	if sc.Mirror != nil {
		if err := sc.Mirror.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mirror: %w", err))
		}
	}
	if sc.Messaging != nil {
		if err := sc.Messaging.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("messaging: %w", err))
		}
	}
	if sc.Events != nil {
		if err := sc.Events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event log: %w", err))
		}
	}
	if sc.Camera != nil {
		if err := sc.Camera.Close(); err != nil {
			errs = append(errs, fmt.Errorf("camera: %w", err))
		}
	}

	return errors.Join(errs...)
}
