package models

import (
	"time"
)

// MotionEvent is appended to the event log whenever a frame exceeds the motion threshold
type MotionEvent struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	PixelsChanged int       `json:"pixels_changed"`
	Threshold     int       `json:"threshold"`
	Mode          string    `json:"mode"`
}

// StillKind is the capture kind encoded in the file name prefix
type StillKind string

const (
	StillKindMotion StillKind = "motion"
	StillKindCorner StillKind = "corner"
)

// Still is an encoded full-resolution JPEG held in memory until persisted,
// tagged with the profile and luminance active when it was taken
type Still struct {
	Data       []byte
	CapturedAt time.Time
	Width      int
	Height     int
	Profile    Profile
	Luminance  float64
}

// CapturedStill describes a JPEG written to the capture directory
type CapturedStill struct {
	Name      string    `json:"name"`
	Kind      StillKind `json:"kind"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url,omitempty"`
}

// ZoneOutcome is the result of resolving a zone cycle
type ZoneOutcome string

const (
	OutcomeNone        ZoneOutcome = "none"
	OutcomeCorner      ZoneOutcome = "corner"
	OutcomePassThrough ZoneOutcome = "pass_through"
	OutcomeIncomplete  ZoneOutcome = "incomplete"
)

// ZoneCounters are the per-zone tag counts and persisted corner stills since start
type ZoneCounters struct {
	A       int `json:"a"`
	B       int `json:"b"`
	C       int `json:"c"`
	Corners int `json:"corners"`
}

// ZoneSnapshot is the sequencer state published for status queries
type ZoneSnapshot struct {
	ATagged     bool         `json:"a_tagged"`
	BTagged     bool         `json:"b_tagged"`
	CTagged     bool         `json:"c_tagged"`
	CycleActive bool         `json:"cycle_active"`
	CycleStart  *time.Time   `json:"cycle_start"`
	Counters    ZoneCounters `json:"counters"`
	LastOutcome ZoneOutcome  `json:"last_outcome"`
}

// Notification is published on the message bus
type Notification struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Notification types
const (
	NotificationMotion        = "motion"
	NotificationCorner        = "corner"
	NotificationProfileChange = "profile_change"
)
