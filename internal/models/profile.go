package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Profile is one of the five ordered camera presets, brightest first
type Profile int

const (
	ProfileDayBright Profile = iota
	ProfileDay
	ProfileDuskBright
	ProfileDuskDark
	ProfileNight
)

// NoiseReduction selects the denoise pass applied to stills
type NoiseReduction string

const (
	NoiseReductionOff         NoiseReduction = "off"
	NoiseReductionFast        NoiseReduction = "fast"
	NoiseReductionHighQuality NoiseReduction = "high_quality"
)

// ProfileParams is the bundle written to the camera when a profile becomes active
type ProfileParams struct {
	ExposureMicros int            `json:"exposure_us"`
	Gain           float64        `json:"gain"`
	Contrast       float64        `json:"contrast"`
	Saturation     float64        `json:"saturation"`
	NoiseReduction NoiseReduction `json:"noise_reduction"`
}

type profileInfo struct {
	name   string
	code   string
	params ProfileParams
}

var profiles = [...]profileInfo{
	ProfileDayBright:  {"Day Bright", "Br", ProfileParams{ExposureMicros: 2000, Gain: 1.0, Contrast: 1.0, Saturation: 1.0, NoiseReduction: NoiseReductionOff}},
	ProfileDay:        {"Day", "Da", ProfileParams{ExposureMicros: 8000, Gain: 1.0, Contrast: 1.1, Saturation: 1.1, NoiseReduction: NoiseReductionFast}},
	ProfileDuskBright: {"Dusk Bright", "Du", ProfileParams{ExposureMicros: 20000, Gain: 2.0, Contrast: 1.2, Saturation: 1.0, NoiseReduction: NoiseReductionFast}},
	ProfileDuskDark:   {"Dusk Dark", "Dk", ProfileParams{ExposureMicros: 50000, Gain: 4.0, Contrast: 1.3, Saturation: 0.8, NoiseReduction: NoiseReductionHighQuality}},
	ProfileNight:      {"Night", "Ni", ProfileParams{ExposureMicros: 100000, Gain: 8.0, Contrast: 1.4, Saturation: 0.5, NoiseReduction: NoiseReductionHighQuality}},
}

// Profiles returns all presets in selection order
func Profiles() []Profile {
	return []Profile{ProfileDayBright, ProfileDay, ProfileDuskBright, ProfileDuskDark, ProfileNight}
}

// IsValid checks the profile is one of the five presets
func (p Profile) IsValid() bool {
	return p >= ProfileDayBright && p <= ProfileNight
}

func (p Profile) String() string {
	if !p.IsValid() {
		return fmt.Sprintf("Profile(%d)", int(p))
	}
	return profiles[p].name
}

// Code returns the two-letter code used in file names
func (p Profile) Code() string {
	if !p.IsValid() {
		return "??"
	}
	return profiles[p].code
}

// Params returns the camera parameter bundle for the profile
func (p Profile) Params() ProfileParams {
	if !p.IsValid() {
		return ProfileParams{}
	}
	return profiles[p].params
}

// ParseProfileCode resolves a two-letter code
func ParseProfileCode(code string) (Profile, error) {
	for _, p := range Profiles() {
		if profiles[p].code == code {
			return p, nil
		}
	}
	return 0, invalid("manual_profile", "unknown profile code %q", code)
}

// MarshalJSON encodes the profile as its code
func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Code())
}

// UnmarshalJSON accepts a profile code
func (p *Profile) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return invalid("profile", "must be a profile code")
	}
	parsed, err := ParseProfileCode(code)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ProfileReading is the result of one calibration pass
type ProfileReading struct {
	Profile    Profile   `json:"profile"`
	Luminance  float64   `json:"luminance"`
	MeasuredAt time.Time `json:"measured_at"`
	Manual     bool      `json:"manual"`
	Applied    bool      `json:"applied"`
}

// ProfileInfo is the JSON view of a preset
type ProfileInfo struct {
	Name   string        `json:"name"`
	Code   string        `json:"code"`
	Params ProfileParams `json:"params"`
}

// Info returns the JSON view of the profile
func (p Profile) Info() ProfileInfo {
	return ProfileInfo{Name: p.String(), Code: p.Code(), Params: p.Params()}
}
