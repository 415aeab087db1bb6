package models

import "time"

// Owner is the advisory holder of the configuration editing token
type Owner struct {
	ClientID string    `json:"client_id"`
	Since    time.Time `json:"since"`
}

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Initialized    bool       `json:"initialized"`
	Monitoring     bool       `json:"monitoring"`
	Capturing      bool       `json:"capturing"`
	MotionDetected bool       `json:"motion_detected"`
	LastMotion     *time.Time `json:"last_motion"`
	Mode           string     `json:"mode"`
	Profile        string     `json:"profile"`
	ProfileCode    string     `json:"profile_code"`
	Luminance      float64    `json:"luminance"`
	LastError      string     `json:"last_error,omitempty"`
	Owner          *Owner     `json:"owner"`
	Config         Settings   `json:"config"`
}

// ZoneStatusResponse is returned by GET /api/zones/status
type ZoneStatusResponse struct {
	ZoneSnapshot
	Enabled       bool    `json:"enabled"`
	Elapsed       float64 `json:"elapsed"`
	Total         float64 `json:"total"`
	ZoneA         *Rect   `json:"zone_a"`
	ZoneB         *Rect   `json:"zone_b"`
	ZoneC         *Rect   `json:"zone_c"`
	FrameInterval float64 `json:"frame_interval"`
	CycleDuration float64 `json:"cycle_duration"`
}

// CalibrationResponse is returned by the calibration endpoints
type CalibrationResponse struct {
	Enabled    bool        `json:"enabled"`
	Active     ProfileInfo `json:"active"`
	Luminance  float64     `json:"luminance"`
	MeasuredAt time.Time   `json:"measured_at"`
	Applied    bool        `json:"applied"`
	Override   string      `json:"override"`
	Thresholds Thresholds  `json:"thresholds"`
	Interval   float64     `json:"interval"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
