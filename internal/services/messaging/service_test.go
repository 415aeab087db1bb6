package messaging

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cornerwatch-go/internal/models"
)

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestNotify_PublishesOnTypedSubject(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewWithPublisher(pub, "cornerwatch", zerolog.Nop())

	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	s.Notify(models.Notification{
		Type:      models.NotificationCorner,
		Timestamp: at,
		Data:      map[string]string{"file": "corner_20250314_093000_Da_L120.0.jpg"},
	})

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "cornerwatch.corner", pub.subjects[0])

	var got map[string]any
	require.NoError(t, json.Unmarshal(pub.payloads[0], &got))
	assert.Equal(t, "corner", got["type"])
	assert.Equal(t, "corner_20250314_093000_Da_L120.0.jpg", got["data"].(map[string]any)["file"])
}

func TestNotify_FailureIsSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats: connection closed")}
	s := NewWithPublisher(pub, "cw", zerolog.Nop())

	assert.NotPanics(t, func() {
		s.Notify(models.Notification{Type: models.NotificationMotion})
	})
}

func TestNotify_NilServiceIsNoop(t *testing.T) {
	var s *Service
	assert.NotPanics(t, func() {
		s.Notify(models.Notification{Type: models.NotificationProfileChange})
	})
	assert.False(t, s.IsConnected())
}

func TestFanout_DeliversToAll(t *testing.T) {
	a, b := &recordingPublisher{}, &recordingPublisher{}
	f := Fanout{
		NewWithPublisher(a, "x", zerolog.Nop()),
		nil,
		NewWithPublisher(b, "y", zerolog.Nop()),
	}

	f.Notify(models.Notification{Type: models.NotificationMotion})
	assert.Equal(t, []string{"x.motion"}, a.subjects)
	assert.Equal(t, []string{"y.motion"}, b.subjects)
}
