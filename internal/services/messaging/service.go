package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"cornerwatch-go/internal/config"
	"cornerwatch-go/internal/models"
)

// Publisher is the transport a Service sends encoded notifications through
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Service publishes motion, corner-stop and profile-change notifications to NATS.
// Publishing is fire-and-forget: a failure is logged and never reaches the caller.
type Service struct {
	conn   *nats.Conn
	pub    Publisher
	prefix string
	drain  time.Duration
	logger zerolog.Logger
}

func NewService(cfg *config.Config, logger zerolog.Logger) (*Service, error) {
	opts := []nats.Option{
		nats.Name("cornerwatch"),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("url", cfg.NatsURL).Msg("NATS connection established")

	return &Service{
		conn:   conn,
		pub:    conn,
		prefix: cfg.NatsSubjectPrefix,
		drain:  cfg.NatsDrainTimeout,
		logger: logger,
	}, nil
}

// NewWithPublisher builds a service over an existing transport
func NewWithPublisher(pub Publisher, prefix string, logger zerolog.Logger) *Service {
	return &Service{pub: pub, prefix: prefix, logger: logger}
}

// Subject returns the subject a notification type is published on
func (s *Service) Subject(t string) string {
	return s.prefix + "." + t
}

// Notify encodes n as JSON and publishes it on <prefix>.<type>
func (s *Service) Notify(n models.Notification) {
	if s == nil || s.pub == nil {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Error().Err(err).Str("type", n.Type).Msg("Failed to encode notification")
		return
	}
	if err := s.pub.Publish(s.Subject(n.Type), payload); err != nil {
		s.logger.Warn().Err(err).Str("type", n.Type).Msg("Failed to publish notification")
	}
}

func (s *Service) IsConnected() bool {
	return s != nil && s.conn != nil && s.conn.IsConnected()
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s == nil || s.conn == nil {
		return nil
	}

	done := make(chan struct{})
	s.conn.SetClosedHandler(func(*nats.Conn) { close(done) })

	// Try graceful drain with timeout, fallback to immediate close
	if err := s.conn.Drain(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
		s.conn.Close()
		return nil
	}

	timeout := s.drain
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		s.conn.Close()
		return errors.New("NATS drain timed out")
	case <-ctx.Done():
		s.conn.Close()
		return ctx.Err()
	}
}

// Notifier receives notifications
type Notifier interface {
	Notify(n models.Notification)
}

// Fanout delivers each notification to every receiver in order
type Fanout []Notifier

func (f Fanout) Notify(n models.Notification) {
	for _, r := range f {
		if r != nil {
			r.Notify(n)
		}
	}
}
