package zones

import (
	"time"

	"cornerwatch-go/internal/models"
)

// CaptureFunc takes the full-resolution still held when zone B is tagged
type CaptureFunc func() (models.Still, error)

// Hits reports which zones exceeded the motion threshold in one frame
type Hits struct {
	A, B, C bool
}

// Any reports whether any zone saw motion
func (h Hits) Any() bool {
	return h.A || h.B || h.C
}

// Result is what one Step decided
type Result struct {
	// Outcome is set when a cycle resolved during this step
	Outcome models.ZoneOutcome
	// Still is the held B still when Outcome is corner; nil if its capture failed
	Still *models.Still
	// CornerAt is the moment zone B was tagged in the resolved cycle
	CornerAt time.Time
	// Tagged lists zones tagged during this step, in order
	Tagged []models.Zone
	// CaptureErr is set when taking the B still failed; B is tagged regardless
	CaptureErr error
}

// Sequencer is the A -> B -> C corner-stop state machine. It is driven by a
// single detection loop and is not safe for concurrent use.
type Sequencer struct {
	duration time.Duration

	aTagged    bool
	bTagged    bool
	cTagged    bool
	cycleStart time.Time
	bTaggedAt  time.Time
	pending    *models.Still

	counters    models.ZoneCounters
	lastOutcome models.ZoneOutcome
}

// NewSequencer creates an idle sequencer resolving cycles after duration
func NewSequencer(duration time.Duration) *Sequencer {
	return &Sequencer{duration: duration, lastOutcome: models.OutcomeNone}
}

// CycleOpen reports whether the sequencer is in CYCLE_OPEN
func (s *Sequencer) CycleOpen() bool {
	return s.aTagged
}

// Step evaluates one analysis interval. An expired cycle is resolved first,
// then zones are tagged in order A, B, C so a single frame can open a new cycle.
func (s *Sequencer) Step(now time.Time, hits Hits, capture CaptureFunc) Result {
	res := Result{Outcome: models.OutcomeNone}

	if s.aTagged && now.Sub(s.cycleStart) >= s.duration {
		res.Outcome, res.Still, res.CornerAt = s.resolve()
	}

	if hits.A && !s.aTagged {
		s.aTagged = true
		s.cycleStart = now
		s.counters.A++
		res.Tagged = append(res.Tagged, models.ZoneA)
	}

	if hits.B && s.aTagged && !s.bTagged {
		s.bTagged = true
		s.bTaggedAt = now
		s.counters.B++
		res.Tagged = append(res.Tagged, models.ZoneB)
		if capture != nil {
			still, err := capture()
			if err != nil {
				res.CaptureErr = err
			} else {
				s.pending = &still
			}
		}
	}

	if hits.C && s.bTagged && !s.cTagged {
		s.cTagged = true
		s.counters.C++
		res.Tagged = append(res.Tagged, models.ZoneC)
	}

	return res
}

func (s *Sequencer) resolve() (models.ZoneOutcome, *models.Still, time.Time) {
	var (
		outcome  models.ZoneOutcome
		still    *models.Still
		cornerAt time.Time
	)
	switch {
	case s.bTagged && !s.cTagged:
		outcome, still, cornerAt = models.OutcomeCorner, s.pending, s.bTaggedAt
	case s.cTagged:
		outcome = models.OutcomePassThrough
	default:
		outcome = models.OutcomeIncomplete
	}
	s.lastOutcome = outcome
	s.reset()
	return outcome, still, cornerAt
}

// Abandon discards an open cycle without resolving it
func (s *Sequencer) Abandon() {
	s.reset()
}

func (s *Sequencer) reset() {
	s.aTagged, s.bTagged, s.cTagged = false, false, false
	s.cycleStart = time.Time{}
	s.bTaggedAt = time.Time{}
	s.pending = nil
}

// CornerPersisted counts a corner still that reached storage
func (s *Sequencer) CornerPersisted() {
	s.counters.Corners++
}

// SetDuration changes the cycle length used for future resolutions
func (s *Sequencer) SetDuration(d time.Duration) {
	s.duration = d
}

// Snapshot returns the state for status queries
func (s *Sequencer) Snapshot() models.ZoneSnapshot {
	snap := models.ZoneSnapshot{
		ATagged:     s.aTagged,
		BTagged:     s.bTagged,
		CTagged:     s.cTagged,
		CycleActive: s.aTagged,
		Counters:    s.counters,
		LastOutcome: s.lastOutcome,
	}
	if s.aTagged {
		start := s.cycleStart
		snap.CycleStart = &start
	}
	return snap
}
