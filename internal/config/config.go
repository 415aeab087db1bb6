package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string `env:"VERSION" envDefault:"1.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8000"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool   `env:"LOGDY_ENABLED" envDefault:"false"`
	LogdyHost    string `env:"LOGDY_HOST" envDefault:"localhost"`
	LogdyPort    int    `env:"LOGDY_PORT" envDefault:"8080"`

	// Camera
	// CameraDevice is a V4L2 index ("0") or a stream URL (rtsp://...)
	CameraDevice        string        `env:"CAMERA_DEVICE" envDefault:"0"`
	MainWidth           int           `env:"MAIN_WIDTH" envDefault:"1920"`
	MainHeight          int           `env:"MAIN_HEIGHT" envDefault:"1080"`
	AnalysisWidth       int           `env:"ANALYSIS_WIDTH" envDefault:"640"`
	AnalysisHeight      int           `env:"ANALYSIS_HEIGHT" envDefault:"360"`
	MaxReadErrors       int           `env:"MAX_READ_ERRORS" envDefault:"10"` // Consecutive failed reads before the device is reopened
	ReconnectBackoffMin time.Duration `env:"RECONNECT_BACKOFF_MIN" envDefault:"1s"`
	ReconnectBackoffMax time.Duration `env:"RECONNECT_BACKOFF_MAX" envDefault:"30s"`

	// Storage
	DataDir      string `env:"DATA_DIR" envDefault:"./data"`
	CaptureDir   string `env:"CAPTURE_DIR"`   // Defaults to DATA_DIR/captures
	SettingsFile string `env:"SETTINGS_FILE"` // Defaults to DATA_DIR/settings.yaml
	EventsDB     string `env:"EVENTS_DB"`     // Defaults to DATA_DIR/events.db
	MaxEvents    int    `env:"MAX_EVENTS" envDefault:"1000"`

	// Monitoring
	MonitorOnStart bool `env:"MONITOR_ON_START" envDefault:"true"`

	// NATS notifications
	NatsEnabled        bool          `env:"NATS_ENABLED" envDefault:"false"`
	NatsURL            string        `env:"NATS_URL"`
	NatsSubjectPrefix  string        `env:"NATS_SUBJECT_PREFIX" envDefault:"cornerwatch"`
	NatsConnectTimeout time.Duration `env:"NATS_CONNECT_TIMEOUT" envDefault:"10s"`
	NatsReconnectWait  time.Duration `env:"NATS_RECONNECT_WAIT" envDefault:"2s"`
	NatsMaxReconnects  int           `env:"NATS_MAX_RECONNECTS" envDefault:"-1"` // -1 = unlimited
	NatsDrainTimeout   time.Duration `env:"NATS_DRAIN_TIMEOUT" envDefault:"5s"`

	// MinIO mirror of captured stills
	MinioEnabled   bool   `env:"MINIO_ENABLED" envDefault:"false"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"cornerwatch"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinioQueueSize int    `env:"MINIO_QUEUE_SIZE" envDefault:"64"`

	// Swagger Configuration
	SwaggerHost string `env:"SWAGGER_HOST" envDefault:"localhost"`

	// Live status stream
	StatusBroadcastInterval time.Duration `env:"STATUS_BROADCAST_INTERVAL" envDefault:"1s"`

	// Graceful Shutdown
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Pause of the detection loop after a recovered panic
	PanicRestartDelay time.Duration `env:"PANIC_RESTART_DELAY" envDefault:"2s"`
}

// Load reads .env when present, then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found or error loading .env file, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDerivedDefaults() {
	if c.CaptureDir == "" {
		c.CaptureDir = filepath.Join(c.DataDir, "captures")
	}
	if c.SettingsFile == "" {
		c.SettingsFile = filepath.Join(c.DataDir, "settings.yaml")
	}
	if c.EventsDB == "" {
		c.EventsDB = filepath.Join(c.DataDir, "events.db")
	}
	if c.NatsURL == "" {
		c.NatsURL = defaultNatsURL()
	}
}

// Validate checks values env tags cannot express
func (c *Config) Validate() error {
	if c.MainWidth <= 0 || c.MainHeight <= 0 {
		return fmt.Errorf("main resolution must be positive, got %dx%d", c.MainWidth, c.MainHeight)
	}
	if c.AnalysisWidth <= 0 || c.AnalysisHeight <= 0 {
		return fmt.Errorf("analysis resolution must be positive, got %dx%d", c.AnalysisWidth, c.AnalysisHeight)
	}
	if c.AnalysisWidth > c.MainWidth || c.AnalysisHeight > c.MainHeight {
		return fmt.Errorf("analysis resolution %dx%d exceeds main resolution %dx%d",
			c.AnalysisWidth, c.AnalysisHeight, c.MainWidth, c.MainHeight)
	}
	if c.MaxEvents <= 0 {
		return fmt.Errorf("MAX_EVENTS must be positive, got %d", c.MaxEvents)
	}
	if c.MinioEnabled && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENABLED=true")
	}
	return nil
}

// isRunningInDocker checks for Docker-specific environment indicators
func isRunningInDocker() bool {
	if os.Getenv("DOCKER_CONTAINER") == "true" {
		return true
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// defaultNatsURL uses the compose service name inside Docker, localhost otherwise
func defaultNatsURL() string {
	if isRunningInDocker() {
		return "nats://nats:4222"
	}
	return "nats://localhost:4222"
}
