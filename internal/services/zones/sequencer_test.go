package zones

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cornerwatch-go/internal/models"
)

var t0 = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func at(sec float64) time.Time {
	return t0.Add(time.Duration(sec * float64(time.Second)))
}

type stillCounter struct {
	calls int
	err   error
}

func (c *stillCounter) capture() (models.Still, error) {
	c.calls++
	if c.err != nil {
		return models.Still{}, c.err
	}
	return models.Still{Data: []byte{0xFF, 0xD8}, CapturedAt: t0}, nil
}

// run drives the sequencer every 0.5s from 0 to end, applying hits at the given seconds
func run(s *Sequencer, c *stillCounter, end float64, hits map[float64]Hits) []Result {
	var out []Result
	for sec := 0.0; sec <= end; sec += 0.5 {
		r := s.Step(at(sec), hits[sec], c.capture)
		if r.Outcome != models.OutcomeNone {
			out = append(out, r)
		}
	}
	return out
}

func TestSequencer_CornerStop(t *testing.T) {
	s := NewSequencer(5 * time.Second)
	c := &stillCounter{}

	resolved := run(s, c, 6, map[float64]Hits{
		0: {A: true},
		1: {B: true},
	})

	require.Len(t, resolved, 1)
	r := resolved[0]
	assert.Equal(t, models.OutcomeCorner, r.Outcome)
	require.NotNil(t, r.Still)
	assert.Equal(t, at(1), r.CornerAt, "corner time is the B tag, not the resolution")
	assert.Equal(t, 1, c.calls)
	assert.False(t, s.CycleOpen())
}

func TestSequencer_ResolvesExactlyAtDuration(t *testing.T) {
	s := NewSequencer(5 * time.Second)
	c := &stillCounter{}

	s.Step(at(0), Hits{A: true}, c.capture)
	s.Step(at(1), Hits{B: true}, c.capture)

	r := s.Step(at(4.999), Hits{}, c.capture)
	assert.Equal(t, models.OutcomeNone, r.Outcome)

	r = s.Step(at(5), Hits{}, c.capture)
	assert.Equal(t, models.OutcomeCorner, r.Outcome)
}

func TestSequencer_PassThrough(t *testing.T) {
	s := NewSequencer(5 * time.Second)
	c := &stillCounter{}

	resolved := run(s, c, 6, map[float64]Hits{
		0: {A: true},
		1: {B: true},
		2: {C: true},
	})

	require.Len(t, resolved, 1)
	assert.Equal(t, models.OutcomePassThrough, resolved[0].Outcome)
	assert.Nil(t, resolved[0].Still)
	assert.Equal(t, models.ZoneCounters{A: 1, B: 1, C: 1}, s.Snapshot().Counters)
}

func TestSequencer_Incomplete(t *testing.T) {
	s := NewSequencer(5 * time.Second)
	c := &stillCounter{}

	resolved := run(s, c, 6, map[float64]Hits{0: {A: true}})

	require.Len(t, resolved, 1)
	assert.Equal(t, models.OutcomeIncomplete, resolved[0].Outcome)
	assert.Zero(t, c.calls)
}

func TestSequencer_OrderMatters(t *testing.T) {
	s := NewSequencer(5 * time.Second)
	c := &stillCounter{}

	// B and C before A never tag
	s.Step(at(0), Hits{B: true, C: true}, c.capture)
	assert.False(t, s.CycleOpen())
	snap := s.Snapshot()
	assert.False(t, snap.BTagged)
	assert.False(t, snap.CTagged)

	// C before B is ignored within a cycle
	s.Step(at(1), Hits{A: true}, c.capture)
	s.Step(at(2), Hits{C: true}, c.capture)
	assert.False(t, s.Snapshot().CTagged)
}

func TestSequencer_ReenteringADoesNotRestartTimer(t *testing.T) {
	s := NewSequencer(5 * time.Second)
	c := &stillCounter{}

	s.Step(at(0), Hits{A: true}, c.capture)
	s.Step(at(1), Hits{B: true}, c.capture)
	s.Step(at(3), Hits{A: true}, c.capture)

	snap := s.Snapshot()
	require.NotNil(t, snap.CycleStart)
	assert.Equal(t, at(0), *snap.CycleStart)
	assert.True(t, snap.BTagged, "re-entering A keeps existing tags")

	r := s.Step(at(5), Hits{}, c.capture)
	assert.Equal(t, models.OutcomeCorner, r.Outcome)
}

func TestSequencer_AllZonesInOneFrame(t *testing.T) {
	s := NewSequencer(5 * time.Second)
	c := &stillCounter{}

	r := s.Step(at(0), Hits{A: true, B: true, C: true}, c.capture)
	assert.Equal(t, []models.Zone{models.ZoneA, models.ZoneB, models.ZoneC}, r.Tagged)

	r = s.Step(at(5), Hits{}, c.capture)
	assert.Equal(t, models.OutcomePassThrough, r.Outcome)
}

func TestSequencer_ResolveThenTagSameStep(t *testing.T) {
	s := NewSequencer(5 * time.Second)
	c := &stillCounter{}

	s.Step(at(0), Hits{A: true}, c.capture)
	r := s.Step(at(5), Hits{A: true}, c.capture)

	assert.Equal(t, models.OutcomeIncomplete, r.Outcome)
	assert.Equal(t, []models.Zone{models.ZoneA}, r.Tagged)
	assert.True(t, s.CycleOpen())
	assert.Equal(t, at(5), *s.Snapshot().CycleStart)
}

func TestSequencer_CaptureFailureStillTagsB(t *testing.T) {
	s := NewSequencer(5 * time.Second)
	c := &stillCounter{err: errors.New("device busy")}

	s.Step(at(0), Hits{A: true}, c.capture)
	r := s.Step(at(1), Hits{B: true}, c.capture)
	assert.Error(t, r.CaptureErr)
	assert.True(t, s.Snapshot().BTagged)

	r = s.Step(at(5), Hits{}, c.capture)
	assert.Equal(t, models.OutcomeCorner, r.Outcome)
	assert.Nil(t, r.Still)
}

func TestSequencer_AbandonDiscards(t *testing.T) {
	s := NewSequencer(5 * time.Second)
	c := &stillCounter{}

	s.Step(at(0), Hits{A: true}, c.capture)
	s.Step(at(1), Hits{B: true}, c.capture)
	s.Abandon()

	assert.False(t, s.CycleOpen())
	r := s.Step(at(10), Hits{}, c.capture)
	assert.Equal(t, models.OutcomeNone, r.Outcome, "abandoned cycles are never resolved")
	assert.Equal(t, models.OutcomeNone, s.Snapshot().LastOutcome)
}

func TestSequencer_TagInvariantUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewSequencer(3 * time.Second)
	c := &stillCounter{}

	for i := 0; i < 5000; i++ {
		hits := Hits{A: rng.Intn(4) == 0, B: rng.Intn(3) == 0, C: rng.Intn(3) == 0}
		s.Step(at(float64(i)*0.5), hits, c.capture)

		snap := s.Snapshot()
		if !snap.ATagged {
			require.False(t, snap.BTagged, "step %d", i)
			require.False(t, snap.CTagged, "step %d", i)
			require.Nil(t, snap.CycleStart)
		}
		if snap.CTagged {
			require.True(t, snap.BTagged, "step %d", i)
		}
		require.Equal(t, snap.ATagged, snap.CycleActive)
	}
}
