package psgc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestPresetUnknown(t *testing.T) {
	_, err := Preset("nope")
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Equal(t, []string{"combined", "psgc"}, PresetNames())
}

func TestLoadFieldMapOverlay(t *testing.T) {
	base, err := Preset("combined")
	require.NoError(t, err)
	p := writeYAML(t, "barangay:\n  name: barangay_label\n")

	m, err := LoadFieldMap(p, base)
	require.NoError(t, err)
	assert.Equal(t, "brgy_code", m.Barangay.Code)
	assert.Equal(t, "barangay_label", m.Barangay.Name)
	assert.Equal(t, base.Region, m.Region)
}

func TestLoadFieldMapPresetBase(t *testing.T) {
	p := writeYAML(t, "preset: psgc\ncitymun:\n  code: cityCode\n")
	m, err := LoadFieldMap(p, FieldMap{})
	require.NoError(t, err)
	assert.Equal(t, "regCode", m.Region.Code)
	assert.Equal(t, TierFields{Code: "cityCode", Name: "citymunDesc"}, m.City)
}

func TestLoadFieldMapValidates(t *testing.T) {
	p := writeYAML(t, "region:\n  code: r\n")
	_, err := LoadFieldMap(p, FieldMap{})
	assert.ErrorContains(t, err, "province")

	_, err = LoadFieldMap(filepath.Join(t.TempDir(), "missing.yaml"), FieldMap{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseTier(t *testing.T) {
	for in, want := range map[string]Tier{"region": TierRegion, "province": TierProvince, "city": TierCity, "citymun": TierCity, "brgy": TierBarangay} {
		got, ok := ParseTier(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseTier("street")
	assert.False(t, ok)
}
