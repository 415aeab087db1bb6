package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cornerwatch-go/internal/models"
)

func TestRuntime_Defaults(t *testing.T) {
	r := NewRuntime(models.DefaultSettings())

	assert.Equal(t, models.ProfileDay, r.Profile().Profile)
	assert.Nil(t, r.LastMotion())
	assert.Empty(t, r.LastError())
	assert.False(t, r.Monitoring())
	assert.Equal(t, 500, r.Settings().MotionThreshold)
}

func TestRuntime_PublishedSettingsAreIsolated(t *testing.T) {
	s := models.DefaultSettings()
	s.Regions = []models.Region{{Name: "gate", Rect: models.MustRect(0, 0, 10, 10), Enabled: true}}

	r := NewRuntime(s)
	s.Regions[0].Name = "changed"

	assert.Equal(t, "gate", r.Settings().Regions[0].Name)
}

func TestRuntime_MarkMotionKeepsLastPositive(t *testing.T) {
	r := NewRuntime(models.DefaultSettings())
	first := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	r.MarkMotion(true, first)
	r.MarkMotion(false, first.Add(time.Second))

	assert.False(t, r.MotionDetected())
	assert.Equal(t, first, *r.LastMotion())
}

func TestRuntime_Error(t *testing.T) {
	r := NewRuntime(models.DefaultSettings())
	r.SetError(errors.New("disk full"))
	assert.Equal(t, "disk full", r.LastError())
	r.SetError(nil)
	assert.Empty(t, r.LastError())
}

func TestRuntime_ConcurrentReplace(t *testing.T) {
	r := NewRuntime(models.DefaultSettings())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				r.SetProfile(models.ProfileReading{Profile: models.Profile(j % 5), Luminance: float64(j)})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				p := r.Profile()
				assert.True(t, p.Profile.IsValid())
			}
		}()
	}
	wg.Wait()
}
