package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// RectPatch distinguishes an absent zone key from an explicit null
type RectPatch struct {
	Set  bool
	Rect *Rect
}

// UnmarshalJSON is invoked for both values and null
func (p *RectPatch) UnmarshalJSON(data []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.Rect = nil
		return nil
	}
	var r Rect
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	p.Rect = &r
	return nil
}

// SettingsPatch is a partial update; nil fields leave the current value untouched
type SettingsPatch struct {
	MotionThreshold   *int     `json:"motion_threshold"`
	MotionSensitivity *int     `json:"motion_sensitivity"`
	CaptureOnMotion   *bool    `json:"capture_on_motion"`
	AnalysisInterval  *float64 `json:"analysis_interval"`

	BurstCount      *int     `json:"burst_count"`
	BurstInterval   *float64 `json:"burst_interval"`
	CooldownSeconds *float64 `json:"cooldown_seconds"`

	UseRegions *bool     `json:"use_regions"`
	Regions    *[]Region `json:"regions"`

	ZoneDetectionEnabled *bool     `json:"zone_detection_enabled"`
	ZoneA                RectPatch `json:"zone_a"`
	ZoneB                RectPatch `json:"zone_b"`
	ZoneC                RectPatch `json:"zone_c"`
	ZoneFrameInterval    *float64  `json:"zone_frame_interval"`
	ZoneCycleDuration    *float64  `json:"zone_cycle_duration"`

	CalibrationEnabled  *bool     `json:"calibration_enabled"`
	CalibrationInterval *float64  `json:"calibration_interval"`
	CalibrationRegions  *[]Region `json:"calibration_regions"`
	DayBrightThreshold  *float64  `json:"day_bright_threshold"`
	DayThreshold        *float64  `json:"day_threshold"`
	DuskBrightThreshold *float64  `json:"dusk_bright_threshold"`
	DuskDarkThreshold   *float64  `json:"dusk_dark_threshold"`
	ManualProfile       *string   `json:"manual_profile"`

	JPEGQuality *int `json:"jpeg_quality"`
}

// ParsePatch decodes a JSON object of patchable keys. Unknown keys fail with
// ErrUnknownField; malformed values fail with a *ValidationError.
func ParsePatch(data []byte) (*SettingsPatch, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p SettingsPatch
	if err := dec.Decode(&p); err != nil {
		return nil, classifyDecodeError(err)
	}
	return &p, nil
}

// ParseSettings decodes a complete settings document. Keys left out take their
// default values; unknown keys and malformed values fail like ParsePatch.
func ParseSettings(data []byte) (Settings, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	s := DefaultSettings()
	if err := dec.Decode(&s); err != nil {
		return Settings{}, classifyDecodeError(err)
	}
	return s, nil
}

func classifyDecodeError(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return invalid(ute.Field, "expected %s", ute.Type)
	}
	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, strings.Trim(name, `"`))
	}
	return invalid("body", "%v", err)
}

// Apply returns base with the patch applied. Enabling one detection mode clears
// the other in the same update; enabling both at once is rejected.
func (p *SettingsPatch) Apply(base Settings) (Settings, error) {
	if p.UseRegions != nil && *p.UseRegions && p.ZoneDetectionEnabled != nil && *p.ZoneDetectionEnabled {
		return base, invalid("use_regions", "region mode and zone mode cannot both be enabled")
	}

	out := base.Clone()
	set(&out.MotionThreshold, p.MotionThreshold)
	set(&out.MotionSensitivity, p.MotionSensitivity)
	set(&out.CaptureOnMotion, p.CaptureOnMotion)
	set(&out.AnalysisInterval, p.AnalysisInterval)
	set(&out.BurstCount, p.BurstCount)
	set(&out.BurstInterval, p.BurstInterval)
	set(&out.CooldownSeconds, p.CooldownSeconds)
	set(&out.ZoneFrameInterval, p.ZoneFrameInterval)
	set(&out.ZoneCycleDuration, p.ZoneCycleDuration)
	set(&out.CalibrationEnabled, p.CalibrationEnabled)
	set(&out.CalibrationInterval, p.CalibrationInterval)
	set(&out.DayBrightThreshold, p.DayBrightThreshold)
	set(&out.DayThreshold, p.DayThreshold)
	set(&out.DuskBrightThreshold, p.DuskBrightThreshold)
	set(&out.DuskDarkThreshold, p.DuskDarkThreshold)
	set(&out.JPEGQuality, p.JPEGQuality)

	set(&out.ManualProfile, p.ManualProfile)
	if p.Regions != nil {
		out.Regions = slices.Clone(*p.Regions)
	}
	if p.CalibrationRegions != nil {
		out.CalibrationRegions = slices.Clone(*p.CalibrationRegions)
	}
	if p.ZoneA.Set {
		out.ZoneA = cloneRect(p.ZoneA.Rect)
	}
	if p.ZoneB.Set {
		out.ZoneB = cloneRect(p.ZoneB.Rect)
	}
	if p.ZoneC.Set {
		out.ZoneC = cloneRect(p.ZoneC.Rect)
	}

	if p.UseRegions != nil {
		out.UseRegions = *p.UseRegions
		if out.UseRegions {
			out.ZoneDetectionEnabled = false
		}
	}
	if p.ZoneDetectionEnabled != nil {
		out.ZoneDetectionEnabled = *p.ZoneDetectionEnabled
		if out.ZoneDetectionEnabled {
			out.UseRegions = false
		}
	}
	return out, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
