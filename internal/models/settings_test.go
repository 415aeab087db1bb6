package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewRect_RejectsDegenerate(t *testing.T) {
	cases := [][4]int{
		{10, 10, 10, 20},
		{10, 10, 20, 10},
		{30, 10, 20, 20},
		{-1, 0, 5, 5},
	}
	for _, c := range cases {
		_, err := NewRect(c[0], c[1], c[2], c[3])
		require.Error(t, err, "%v", c)
		assert.True(t, errors.Is(err, ErrInvalidSettings))
	}

	r, err := NewRect(0, 0, 640, 480)
	require.NoError(t, err)
	assert.NoError(t, r.Within(640, 480))
	assert.Error(t, r.Within(320, 240))
}

func TestRect_JSONAndYAML(t *testing.T) {
	r := MustRect(1, 2, 30, 40)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,30,40]`, string(data))

	var back Rect
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)

	assert.Error(t, json.Unmarshal([]byte(`[5,5,1,1]`), &back))
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &back))

	y, err := yaml.Marshal(struct {
		Zone Rect `yaml:"zone"`
	}{r})
	require.NoError(t, err)
	assert.Equal(t, "zone: [1, 2, 30, 40]\n", string(y))

	var decoded struct {
		Zone *Rect `yaml:"zone"`
	}
	require.NoError(t, yaml.Unmarshal(y, &decoded))
	require.NotNil(t, decoded.Zone)
	assert.Equal(t, r, *decoded.Zone)
}

func TestRect_Scale(t *testing.T) {
	r := MustRect(100, 50, 300, 250)
	got := r.Scale(1000, 500, 500, 250)
	assert.Equal(t, 50, got.Min.X)
	assert.Equal(t, 25, got.Min.Y)
	assert.Equal(t, 150, got.Max.X)
	assert.Equal(t, 125, got.Max.Y)
}

func TestParsePatch_UnknownField(t *testing.T) {
	_, err := ParsePatch([]byte(`{"motion_threshold": 10, "record_everything": true}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.Contains(t, err.Error(), "record_everything")
}

func TestParsePatch_TypeMismatch(t *testing.T) {
	_, err := ParsePatch([]byte(`{"burst_count": "three"}`))
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "burst_count", ve.Field)
}

func TestParseSettings_DefaultsAndStrictness(t *testing.T) {
	s, err := ParseSettings([]byte(`{"burst_count": 7, "zone_a": [0, 0, 100, 100]}`))
	require.NoError(t, err)
	assert.Equal(t, 7, s.BurstCount)
	assert.Equal(t, DefaultSettings().MotionThreshold, s.MotionThreshold)
	require.NotNil(t, s.ZoneA)

	_, err = ParseSettings([]byte(`{"record_everything": true}`))
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = ParseSettings([]byte(`{"cooldown_seconds": "soon"}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "cooldown_seconds", ve.Field)
}

func TestPatch_ModeExclusivity(t *testing.T) {
	base := DefaultSettings()
	base.UseRegions = true

	p, err := ParsePatch([]byte(`{"zone_detection_enabled": true}`))
	require.NoError(t, err)
	got, err := p.Apply(base)
	require.NoError(t, err)
	assert.True(t, got.ZoneDetectionEnabled)
	assert.False(t, got.UseRegions)

	p, err = ParsePatch([]byte(`{"use_regions": true}`))
	require.NoError(t, err)
	got, err = p.Apply(got)
	require.NoError(t, err)
	assert.True(t, got.UseRegions)
	assert.False(t, got.ZoneDetectionEnabled)

	p, err = ParsePatch([]byte(`{"use_regions": true, "zone_detection_enabled": true}`))
	require.NoError(t, err)
	_, err = p.Apply(got)
	assert.True(t, errors.Is(err, ErrInvalidSettings))
}

func TestPatch_ZoneNullClears(t *testing.T) {
	base := DefaultSettings()
	a := MustRect(0, 0, 10, 10)
	base.ZoneA = &a
	base.ZoneB = &a

	p, err := ParsePatch([]byte(`{"zone_a": null, "zone_c": [5,5,20,20]}`))
	require.NoError(t, err)
	got, err := p.Apply(base)
	require.NoError(t, err)

	assert.Nil(t, got.ZoneA)
	require.NotNil(t, got.ZoneB, "absent key must leave zone untouched")
	assert.Equal(t, a, *got.ZoneB)
	require.NotNil(t, got.ZoneC)
	assert.Equal(t, MustRect(5, 5, 20, 20), *got.ZoneC)

	// base is not aliased
	require.NotNil(t, base.ZoneA)
}

func TestSettings_ValidateThresholdOrder(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate(1920, 1080))

	s.DayThreshold = s.DayBrightThreshold
	err := s.Validate(1920, 1080)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "day_threshold", ve.Field)
}

func TestSettings_ValidateBounds(t *testing.T) {
	s := DefaultSettings()
	r := MustRect(0, 0, 2000, 100)
	s.ZoneB = &r

	err := s.Validate(1920, 1080)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "zone_b", ve.Field)

	assert.NoError(t, s.Validate(0, 0))
}

func TestSettings_ValidateManualProfile(t *testing.T) {
	s := DefaultSettings()
	s.ManualProfile = "Ni"
	require.NoError(t, s.Validate(0, 0))
	p, ok := s.ManualOverride()
	assert.True(t, ok)
	assert.Equal(t, ProfileNight, p)

	s.ManualProfile = "XX"
	assert.Error(t, s.Validate(0, 0))
}

func TestSettings_RestartRequired(t *testing.T) {
	base := DefaultSettings()

	same := base.Clone()
	same.MotionThreshold = 900
	assert.False(t, base.RestartRequired(same))

	zones := base.Clone()
	r := MustRect(0, 0, 10, 10)
	zones.ZoneA = &r
	assert.True(t, base.RestartRequired(zones))

	interval := base.Clone()
	interval.ZoneCycleDuration = 8
	assert.True(t, base.RestartRequired(interval))
}

func TestSettings_EqualTreatsNilAndEmptyRegionsAlike(t *testing.T) {
	a := DefaultSettings()
	b := DefaultSettings()
	b.Regions = []Region{}
	assert.True(t, a.Equal(b))

	b.Regions = []Region{{Name: "door", Rect: MustRect(0, 0, 5, 5), Enabled: true}}
	assert.False(t, a.Equal(b))
}

func TestProfile_Codes(t *testing.T) {
	want := map[Profile]string{
		ProfileDayBright:  "Br",
		ProfileDay:        "Da",
		ProfileDuskBright: "Du",
		ProfileDuskDark:   "Dk",
		ProfileNight:      "Ni",
	}
	for p, code := range want {
		assert.Equal(t, code, p.Code())
		parsed, err := ParseProfileCode(code)
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
}
