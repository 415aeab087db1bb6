package state

import (
	"sync/atomic"
	"time"

	"cornerwatch-go/internal/models"
)

// Runtime is the process-wide container shared by the detection loop, the
// calibration task and request handlers. Every field has a single writer and is
// replaced whole; readers never observe a partial update.
type Runtime struct {
	settings atomic.Pointer[models.Settings]       // written by the coordinator
	profile  atomic.Pointer[models.ProfileReading] // written by calibration
	zones    atomic.Pointer[models.ZoneSnapshot]   // written by the monitor

	initialized    atomic.Bool
	monitoring     atomic.Bool
	capturing      atomic.Bool
	motionDetected atomic.Bool
	lastMotion     atomic.Pointer[time.Time]
	lastError      atomic.Pointer[string]
}

// NewRuntime seeds the container with settings and the Day profile
func NewRuntime(initial models.Settings) *Runtime {
	r := &Runtime{}
	r.PublishSettings(initial)
	r.SetProfile(models.ProfileReading{Profile: models.ProfileDay})
	r.SetZones(models.ZoneSnapshot{LastOutcome: models.OutcomeNone})
	return r
}

// Settings returns the current configuration snapshot; callers must not mutate slices
func (r *Runtime) Settings() models.Settings {
	return *r.settings.Load()
}

// PublishSettings replaces the configuration snapshot
func (r *Runtime) PublishSettings(s models.Settings) {
	c := s.Clone()
	r.settings.Store(&c)
}

// Profile returns the active profile reading
func (r *Runtime) Profile() models.ProfileReading {
	return *r.profile.Load()
}

// SetProfile replaces the active profile reading
func (r *Runtime) SetProfile(p models.ProfileReading) {
	r.profile.Store(&p)
}

// Zones returns the last published sequencer snapshot
func (r *Runtime) Zones() models.ZoneSnapshot {
	return *r.zones.Load()
}

func (r *Runtime) SetZones(s models.ZoneSnapshot) {
	r.zones.Store(&s)
}

func (r *Runtime) SetInitialized(v bool) { r.initialized.Store(v) }
func (r *Runtime) Initialized() bool     { return r.initialized.Load() }
func (r *Runtime) SetMonitoring(v bool)  { r.monitoring.Store(v) }
func (r *Runtime) Monitoring() bool      { return r.monitoring.Load() }
func (r *Runtime) SetCapturing(v bool)   { r.capturing.Store(v) }
func (r *Runtime) Capturing() bool       { return r.capturing.Load() }

// MarkMotion records the motion flag of the latest frame and the time of the last positive
func (r *Runtime) MarkMotion(detected bool, at time.Time) {
	r.motionDetected.Store(detected)
	if detected {
		r.lastMotion.Store(&at)
	}
}

func (r *Runtime) MotionDetected() bool {
	return r.motionDetected.Load()
}

// LastMotion is nil until motion has been seen
func (r *Runtime) LastMotion() *time.Time {
	t := r.lastMotion.Load()
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// SetError records a degraded condition surfaced in status; nil clears it
func (r *Runtime) SetError(err error) {
	if err == nil {
		r.lastError.Store(nil)
		return
	}
	msg := err.Error()
	r.lastError.Store(&msg)
}

func (r *Runtime) LastError() string {
	if p := r.lastError.Load(); p != nil {
		return *p
	}
	return ""
}
