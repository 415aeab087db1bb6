package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cornerwatch-go/internal/logging"
	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/camera"
	"cornerwatch-go/internal/services/capture"
	"cornerwatch-go/internal/services/detection"
	"cornerwatch-go/internal/services/state"
	"cornerwatch-go/internal/services/zones"
)

// LoopState represents the atomic state of the detection loop
type LoopState int32

const (
	StateStopped LoopState = iota
	StateRunning
	StateStopping
)

func (s LoopState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// EventLog records motion events
type EventLog interface {
	Append(ev models.MotionEvent) (models.MotionEvent, error)
}

// Notifier receives motion and corner-stop notifications
type Notifier interface {
	Notify(n models.Notification)
}

// Deps are the collaborators of the detection loop. Events and Notifier are optional.
type Deps struct {
	Source    camera.Source
	Scheduler *capture.Scheduler
	Runtime   *state.Runtime
	Restart   <-chan struct{}
	Events    EventLog
	Notifier  Notifier

	// PanicDelay holds the loop back after an iteration panicked
	PanicDelay time.Duration
}

// Monitor runs the single detection loop: frame differencing in plain or
// region mode with burst capture, or zone sequencing in zone mode. Loop-local
// state (baseline, masks, sequencer) is only touched by the loop goroutine.
type Monitor struct {
	deps   Deps
	base   zerolog.Logger
	logger zerolog.Logger

	state int32

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	now func() time.Time

	detector   *detection.Detector
	seq        *zones.Sequencer
	geometry   detection.Geometry
	regionMask *detection.Mask
	zoneMasks  detection.ZoneMasks
	maskMode   string
}

func New(deps Deps, logger zerolog.Logger) *Monitor {
	m := &Monitor{
		deps:   deps,
		base:   logger,
		logger: logger,
		now:    time.Now,
	}
	m.setState(StateStopped)
	return m
}

func (m *Monitor) setState(s LoopState) {
	atomic.StoreInt32(&m.state, int32(s))
}

// State returns the current loop state
func (m *Monitor) State() LoopState {
	return LoopState(atomic.LoadInt32(&m.state))
}

// Running reports whether the loop is running and not stopping
func (m *Monitor) Running() bool {
	return m.State() == StateRunning
}

func (m *Monitor) stopRequested() bool {
	return m.State() != StateRunning
}

// Start launches the loop with a fresh baseline
func (m *Monitor) Start() error {
	if !atomic.CompareAndSwapInt32(&m.state, int32(StateStopped), int32(StateRunning)) {
		return models.ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	m.logger = logging.WithSession(m.base, uuid.NewString())
	m.deps.Runtime.SetMonitoring(true)
	m.logger.Info().Msg("Monitoring started")

	go m.run(ctx, done)
	return nil
}

// Stop requests the loop to exit and waits for it. An in-flight burst ends
// after its current file write.
func (m *Monitor) Stop() error {
	if !atomic.CompareAndSwapInt32(&m.state, int32(StateRunning), int32(StateStopping)) {
		return models.ErrNotRunning
	}

	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Shutdown stops the loop if running, bounded by ctx
func (m *Monitor) Shutdown(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- m.Stop() }()

	select {
	case err := <-errc:
		if errors.Is(err, models.ErrNotRunning) {
			return nil
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Msg("Detection loop panic recovered")
		}
		m.teardown()
		m.deps.Runtime.SetMonitoring(false)
		m.deps.Runtime.MarkMotion(false, m.now())
		m.logger.Info().Msg("Monitoring stopped")
		m.setState(StateStopped)
	}()

	// a pending restart is satisfied by the fresh start
	m.drainRestart()
	m.setup(m.deps.Runtime.Settings())
	m.deps.Runtime.SetInitialized(true)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if m.stopRequested() {
			return
		}

		select {
		case <-m.deps.Restart:
			m.reinitialize()
		default:
		}

		settings := m.deps.Runtime.Settings()
		next := settings.LoopPeriod()
		if m.iterate(ctx, settings) {
			next = max(next, m.deps.PanicDelay)
		}

		timer.Reset(next)
	}
}

func (m *Monitor) drainRestart() {
	for {
		select {
		case <-m.deps.Restart:
		default:
			return
		}
	}
}

// setup compiles masks and creates the loop-local detection state
func (m *Monitor) setup(settings models.Settings) {
	mainW, mainH := m.deps.Source.MainResolution()
	anW, anH := m.deps.Source.AnalysisResolution()
	m.geometry = detection.Geometry{MainWidth: mainW, MainHeight: mainH, TargetWidth: anW, TargetHeight: anH}

	if m.detector == nil {
		m.detector = detection.NewDetector()
	}
	m.detector.Reset()

	if m.seq == nil {
		m.seq = zones.NewSequencer(settings.CycleDuration())
	}
	m.seq.Abandon()
	m.seq.SetDuration(settings.CycleDuration())

	m.compileMasks(settings)
	m.deps.Runtime.SetZones(m.seq.Snapshot())

	m.logger.Debug().
		Str("mode", settings.Mode()).
		Int("analysis_width", anW).
		Int("analysis_height", anH).
		Msg("Detection state initialized")
}

func (m *Monitor) compileMasks(settings models.Settings) {
	m.closeMasks()
	m.maskMode = settings.Mode()
	if settings.UseRegions {
		m.regionMask = detection.CompileMask(models.EnabledRects(settings.Regions), m.geometry)
	}
	if settings.ZoneDetectionEnabled {
		m.zoneMasks = detection.CompileZoneMasks(settings, m.geometry)
	}
}

func (m *Monitor) closeMasks() {
	m.regionMask.Close()
	m.regionMask = nil
	m.zoneMasks.Close()
	m.zoneMasks = nil
}

// reinitialize abandons an open zone cycle, drops the baseline and recompiles masks
func (m *Monitor) reinitialize() {
	settings := m.deps.Runtime.Settings()
	if m.seq != nil && m.seq.CycleOpen() {
		m.logger.Info().Msg("Open zone cycle abandoned on restart")
	}
	m.setup(settings)
	m.logger.Info().Str("mode", settings.Mode()).Msg("Detection loop restarted")
}

func (m *Monitor) teardown() {
	m.closeMasks()
	if m.detector != nil {
		m.detector.Close()
		m.detector = nil
	}
	if m.seq != nil {
		m.seq.Abandon()
		m.deps.Runtime.SetZones(m.seq.Snapshot())
	}
}

// iterate processes one analysis frame. A panic is logged and reported so the
// loop can back off before the next frame.
func (m *Monitor) iterate(ctx context.Context, settings models.Settings) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Dur("delay", m.deps.PanicDelay).Msg("Detection iteration panic recovered")
			panicked = true
		}
	}()

	frame, err := m.deps.Source.AnalysisFrame(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Warn().Err(err).Msg("Analysis frame unavailable, skipping iteration")
			m.deps.Runtime.SetError(err)
		}
		return
	}
	defer frame.Close()

	diff, ok := m.detector.Compare(frame.Mat, settings.MotionSensitivity)
	if !ok {
		return
	}
	defer diff.Close()

	// masks follow the frame size and the mode of the settings snapshot
	if w, h := diff.Size(); w != m.geometry.TargetWidth || h != m.geometry.TargetHeight {
		m.geometry.TargetWidth, m.geometry.TargetHeight = w, h
		m.compileMasks(settings)
	} else if settings.Mode() != m.maskMode {
		m.compileMasks(settings)
	}

	now := m.now()
	if settings.ZoneDetectionEnabled {
		m.zoneStep(ctx, settings, diff, now)
		return
	}
	m.motionStep(ctx, settings, diff, now)
	return
}

func (m *Monitor) motionStep(ctx context.Context, settings models.Settings, diff *detection.Diff, now time.Time) {
	count := diff.Count(m.regionMask)
	detected := count > settings.MotionThreshold
	m.deps.Runtime.MarkMotion(detected, now)
	if !detected {
		return
	}

	ev := m.recordMotion(settings, count, now)

	if !settings.CaptureOnMotion {
		return
	}
	written, err := m.deps.Scheduler.Burst(ctx, settings, m.stopRequested)
	switch {
	case errors.Is(err, models.ErrCoolingDown):
		m.logger.Debug().Str("event_id", ev.ID).Msg("Motion trigger dropped during cooldown")
	case err != nil:
		m.logger.Error().Err(err).Int("written", len(written)).Msg("Burst capture failed")
	default:
		m.logger.Info().Str("event_id", ev.ID).Int("stills", len(written)).Msg("Burst captured")
	}
}

func (m *Monitor) zoneStep(ctx context.Context, settings models.Settings, diff *detection.Diff, now time.Time) {
	counts := map[models.Zone]int{}
	for _, z := range []models.Zone{models.ZoneA, models.ZoneB, models.ZoneC} {
		counts[z] = diff.Count(m.zoneMasks[z])
	}
	hits := zones.Hits{
		A: counts[models.ZoneA] > settings.MotionThreshold,
		B: counts[models.ZoneB] > settings.MotionThreshold,
		C: counts[models.ZoneC] > settings.MotionThreshold,
	}
	m.deps.Runtime.MarkMotion(hits.Any(), now)
	if hits.Any() {
		m.recordMotion(settings, max(counts[models.ZoneA], counts[models.ZoneB], counts[models.ZoneC]), now)
	}

	res := m.seq.Step(now, hits, func() (models.Still, error) {
		return m.deps.Scheduler.TakeStill(ctx, settings.JPEGQuality)
	})

	for _, z := range res.Tagged {
		m.logger.Info().Str("zone", string(z)).Int("pixels", counts[z]).Msg("Zone tagged")
	}
	if res.CaptureErr != nil {
		m.logger.Warn().Err(res.CaptureErr).Msg("Zone B still capture failed")
	}

	switch res.Outcome {
	case models.OutcomeCorner:
		m.persistCorner(res)
	case models.OutcomePassThrough, models.OutcomeIncomplete:
		m.logger.Info().Str("outcome", string(res.Outcome)).Msg("Zone cycle resolved")
	}

	m.deps.Runtime.SetZones(m.seq.Snapshot())
}

func (m *Monitor) persistCorner(res zones.Result) {
	if res.Still == nil {
		m.logger.Warn().Time("corner_at", res.CornerAt).Msg("Corner stop without a held still")
		return
	}

	cs, err := m.deps.Scheduler.PersistCorner(*res.Still, res.CornerAt)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist corner still")
		return
	}
	m.seq.CornerPersisted()
	m.logger.Info().Str("file", cs.Name).Msg("Corner stop captured")

	if m.deps.Notifier != nil {
		m.deps.Notifier.Notify(models.Notification{
			Type:      models.NotificationCorner,
			Timestamp: res.CornerAt,
			Data:      cs,
		})
	}
}

func (m *Monitor) recordMotion(settings models.Settings, count int, now time.Time) models.MotionEvent {
	ev := models.MotionEvent{
		ID:            uuid.NewString(),
		Timestamp:     now,
		PixelsChanged: count,
		Threshold:     settings.MotionThreshold,
		Mode:          settings.Mode(),
	}
	if m.deps.Events != nil {
		if _, err := m.deps.Events.Append(ev); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to record motion event")
		}
	}

	m.logger.Debug().
		Int("pixels", count).
		Int("threshold", settings.MotionThreshold).
		Msg("Motion detected")

	if m.deps.Notifier != nil {
		m.deps.Notifier.Notify(models.Notification{
			Type:      models.NotificationMotion,
			Timestamp: now,
			Data:      ev,
		})
	}
	return ev
}
