package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cornerwatch-go/internal/config"
)

func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("env", cfg.Environment).Str("service", service).Logger()
}

// WithSession tags logs of one monitoring session
func WithSession(base zerolog.Logger, sessionID string) zerolog.Logger {
	return base.With().Str("session_id", sessionID).Logger()
}
