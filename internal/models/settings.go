package models

import (
	"reflect"
	"slices"
	"strings"
	"time"
)

// Settings is the detection configuration edited over the API and persisted to disk.
// Field names are the patchable keys; anything else is rejected.
type Settings struct {
	// Motion detection
	MotionThreshold   int     `json:"motion_threshold" yaml:"motion_threshold"`     // Changed pixels above which motion is reported
	MotionSensitivity int     `json:"motion_sensitivity" yaml:"motion_sensitivity"` // Per-pixel difference threshold 0-255, lower is more sensitive
	CaptureOnMotion   bool    `json:"capture_on_motion" yaml:"capture_on_motion"`
	AnalysisInterval  float64 `json:"analysis_interval" yaml:"analysis_interval"` // Seconds between plain-mode frames

	// Burst capture
	BurstCount      int     `json:"burst_count" yaml:"burst_count"`
	BurstInterval   float64 `json:"burst_interval" yaml:"burst_interval"`     // Seconds between stills in a burst
	CooldownSeconds float64 `json:"cooldown_seconds" yaml:"cooldown_seconds"` // Seconds after a burst before another may start

	// Plain region mode
	UseRegions bool     `json:"use_regions" yaml:"use_regions"`
	Regions    []Region `json:"regions" yaml:"regions"`

	// Zone (corner) mode
	ZoneDetectionEnabled bool    `json:"zone_detection_enabled" yaml:"zone_detection_enabled"`
	ZoneA                *Rect   `json:"zone_a" yaml:"zone_a"`
	ZoneB                *Rect   `json:"zone_b" yaml:"zone_b"`
	ZoneC                *Rect   `json:"zone_c" yaml:"zone_c"`
	ZoneFrameInterval    float64 `json:"zone_frame_interval" yaml:"zone_frame_interval"`
	ZoneCycleDuration    float64 `json:"zone_cycle_duration" yaml:"zone_cycle_duration"`

	// Calibration
	CalibrationEnabled  bool     `json:"calibration_enabled" yaml:"calibration_enabled"`
	CalibrationInterval float64  `json:"calibration_interval" yaml:"calibration_interval"`
	CalibrationRegions  []Region `json:"calibration_regions" yaml:"calibration_regions"`
	DayBrightThreshold  float64  `json:"day_bright_threshold" yaml:"day_bright_threshold"`
	DayThreshold        float64  `json:"day_threshold" yaml:"day_threshold"`
	DuskBrightThreshold float64  `json:"dusk_bright_threshold" yaml:"dusk_bright_threshold"`
	DuskDarkThreshold   float64  `json:"dusk_dark_threshold" yaml:"dusk_dark_threshold"`
	ManualProfile       string   `json:"manual_profile" yaml:"manual_profile"` // Profile code, empty for automatic selection

	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality"`
}

// DefaultSettings returns the configuration used when nothing is persisted
func DefaultSettings() Settings {
	return Settings{
		MotionThreshold:     500,
		MotionSensitivity:   25,
		CaptureOnMotion:     true,
		AnalysisInterval:    0.1,
		BurstCount:          3,
		BurstInterval:       0.5,
		CooldownSeconds:     10,
		ZoneFrameInterval:   0.5,
		ZoneCycleDuration:   5,
		CalibrationEnabled:  true,
		CalibrationInterval: 60,
		DayBrightThreshold:  150,
		DayThreshold:        100,
		DuskBrightThreshold: 60,
		DuskDarkThreshold:   25,
		JPEGQuality:         90,
	}
}

// Detection modes reported in status
const (
	ModeFullFrame = "full_frame"
	ModeRegions   = "regions"
	ModeZones     = "zones"
)

// Mode names the active detection mode
func (s Settings) Mode() string {
	switch {
	case s.ZoneDetectionEnabled:
		return ModeZones
	case s.UseRegions:
		return ModeRegions
	default:
		return ModeFullFrame
	}
}

// Clone returns a deep copy safe to mutate
func (s Settings) Clone() Settings {
	out := s
	out.Regions = slices.Clone(s.Regions)
	out.CalibrationRegions = slices.Clone(s.CalibrationRegions)
	out.ZoneA = cloneRect(s.ZoneA)
	out.ZoneB = cloneRect(s.ZoneB)
	out.ZoneC = cloneRect(s.ZoneC)
	return out
}

func cloneRect(r *Rect) *Rect {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Zone returns the rectangle for a named zone, nil when undefined
func (s Settings) Zone(z Zone) *Rect {
	switch z {
	case ZoneA:
		return s.ZoneA
	case ZoneB:
		return s.ZoneB
	case ZoneC:
		return s.ZoneC
	}
	return nil
}

// Thresholds are the luminance cut-offs for profile selection, brightest first
type Thresholds struct {
	DayBright  float64 `json:"day_bright"`
	Day        float64 `json:"day"`
	DuskBright float64 `json:"dusk_bright"`
	DuskDark   float64 `json:"dusk_dark"`
}

// Thresholds returns the calibration cut-offs
func (s Settings) Thresholds() Thresholds {
	return Thresholds{
		DayBright:  s.DayBrightThreshold,
		Day:        s.DayThreshold,
		DuskBright: s.DuskBrightThreshold,
		DuskDark:   s.DuskDarkThreshold,
	}
}

// ManualOverride returns the pinned profile, if any
func (s Settings) ManualOverride() (Profile, bool) {
	if s.ManualProfile == "" {
		return 0, false
	}
	p, err := ParseProfileCode(s.ManualProfile)
	if err != nil {
		return 0, false
	}
	return p, true
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func (s Settings) AnalysisPeriod() time.Duration    { return seconds(s.AnalysisInterval) }
func (s Settings) BurstSpacing() time.Duration      { return seconds(s.BurstInterval) }
func (s Settings) Cooldown() time.Duration          { return seconds(s.CooldownSeconds) }
func (s Settings) ZonePeriod() time.Duration        { return seconds(s.ZoneFrameInterval) }
func (s Settings) CycleDuration() time.Duration     { return seconds(s.ZoneCycleDuration) }
func (s Settings) CalibrationPeriod() time.Duration { return seconds(s.CalibrationInterval) }

// LoopPeriod is the detection cadence for the active mode
func (s Settings) LoopPeriod() time.Duration {
	if s.ZoneDetectionEnabled {
		return s.ZonePeriod()
	}
	return s.AnalysisPeriod()
}

// Validate checks ranges, threshold ordering, mode exclusivity and that every
// rectangle fits a width x height main stream. Zero dimensions skip bound checks.
func (s Settings) Validate(width, height int) error {
	if s.MotionThreshold < 0 {
		return invalid("motion_threshold", "must be >= 0, got %d", s.MotionThreshold)
	}
	if s.MotionSensitivity < 0 || s.MotionSensitivity > 255 {
		return invalid("motion_sensitivity", "must be within 0-255, got %d", s.MotionSensitivity)
	}
	if s.AnalysisInterval <= 0 {
		return invalid("analysis_interval", "must be > 0")
	}
	if s.BurstCount < 1 {
		return invalid("burst_count", "must be >= 1, got %d", s.BurstCount)
	}
	if s.BurstInterval < 0 {
		return invalid("burst_interval", "must be >= 0")
	}
	if s.CooldownSeconds < 0 {
		return invalid("cooldown_seconds", "must be >= 0")
	}
	if s.UseRegions && s.ZoneDetectionEnabled {
		return invalid("use_regions", "region mode and zone mode cannot both be enabled")
	}
	if s.ZoneFrameInterval <= 0 {
		return invalid("zone_frame_interval", "must be > 0")
	}
	if s.ZoneCycleDuration <= 0 {
		return invalid("zone_cycle_duration", "must be > 0")
	}
	if s.CalibrationInterval < 1 {
		return invalid("calibration_interval", "must be >= 1 second")
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		return invalid("jpeg_quality", "must be within 1-100, got %d", s.JPEGQuality)
	}
	if err := s.Thresholds().Validate(); err != nil {
		return err
	}
	if s.ManualProfile != "" {
		if _, err := ParseProfileCode(s.ManualProfile); err != nil {
			return err
		}
	}

	for _, named := range []struct {
		field   string
		regions []Region
	}{{"regions", s.Regions}, {"calibration_regions", s.CalibrationRegions}} {
		for i, r := range named.regions {
			if r.Rect.IsEmpty() {
				return invalid(named.field, "region %d (%s) has no rectangle", i, r.Name)
			}
			if err := checkBounds(named.field, r.Rect, width, height); err != nil {
				return err
			}
		}
	}
	for _, z := range []Zone{ZoneA, ZoneB, ZoneC} {
		r := s.Zone(z)
		if r == nil {
			continue
		}
		field := "zone_" + strings.ToLower(string(z))
		if r.IsEmpty() {
			return invalid(field, "empty rectangle, use null to clear the zone")
		}
		if err := checkBounds(field, *r, width, height); err != nil {
			return err
		}
	}
	return nil
}

func checkBounds(field string, r Rect, width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := r.Within(width, height); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.Field = field
		}
		return err
	}
	return nil
}

// Validate checks the cut-offs are within 0-255 and strictly descending
func (t Thresholds) Validate() error {
	values := []struct {
		field string
		v     float64
	}{
		{"day_bright_threshold", t.DayBright},
		{"day_threshold", t.Day},
		{"dusk_bright_threshold", t.DuskBright},
		{"dusk_dark_threshold", t.DuskDark},
	}
	for i, v := range values {
		if v.v < 0 || v.v > 255 {
			return invalid(v.field, "must be within 0-255, got %.1f", v.v)
		}
		if i > 0 && values[i-1].v <= v.v {
			return invalid(v.field, "must be below %s (%.1f), got %.1f", values[i-1].field, values[i-1].v, v.v)
		}
	}
	return nil
}

// Equal compares two configurations by value; nil and empty region lists are equal
func (s Settings) Equal(other Settings) bool {
	if !slices.Equal(s.Regions, other.Regions) || !slices.Equal(s.CalibrationRegions, other.CalibrationRegions) {
		return false
	}
	a, b := s, other
	a.Regions, b.Regions = nil, nil
	a.CalibrationRegions, b.CalibrationRegions = nil, nil
	return reflect.DeepEqual(a, b)
}

// RestartRequired reports whether moving from s to next changes anything the
// detection loop compiles at start: masks, zones, cadence or mode.
func (s Settings) RestartRequired(next Settings) bool {
	return s.UseRegions != next.UseRegions ||
		s.ZoneDetectionEnabled != next.ZoneDetectionEnabled ||
		!slices.Equal(s.Regions, next.Regions) ||
		!rectPtrEqual(s.ZoneA, next.ZoneA) ||
		!rectPtrEqual(s.ZoneB, next.ZoneB) ||
		!rectPtrEqual(s.ZoneC, next.ZoneC) ||
		s.ZoneFrameInterval != next.ZoneFrameInterval ||
		s.ZoneCycleDuration != next.ZoneCycleDuration ||
		s.AnalysisInterval != next.AnalysisInterval
}

func rectPtrEqual(a, b *Rect) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
