package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ph-address/internal/psgc"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "API_BASE", "PSGC_LAYOUT", "PSGC_PRESET", "REDIS_HOST", "ADMIN_CACHE_TTL_S", "RATE_LIMIT_ENABLED", "ADMIN_PATHS", "ADMIN_HINT_PROXIES"} {
		t.Setenv(k, "")
	}
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "/api", c.APIBase)
	assert.Equal(t, psgc.LayoutCombined, c.PSGCLayout)
	assert.Equal(t, 5*time.Minute, c.AdminCacheTTL)
	assert.Equal(t, "/adminlogin", c.AdminLoginURL)
	assert.Empty(t, c.RedisAddr())
	assert.Zero(t, c.RateLimitQPS)
	assert.Nil(t, c.AdminPaths)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("127.0.0.1/32"), netip.MustParsePrefix("::1/128")}, c.AdminHintProxies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE", "/v1/")
	t.Setenv("PSGC_LAYOUT", "tiered")
	t.Setenv("PSGC_FETCH_TIMEOUT_S", "bad")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("ADMIN_CACHE_TTL_S", "60")
	t.Setenv("ADMIN_PATHS", "/staff/, /ops")
	t.Setenv("ADMIN_HINT_PROXIES", "10.0.0.0/8, 192.168.1.5")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_QPS", "50")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/v1", c.APIBase)
	assert.Equal(t, psgc.LayoutTiered, c.PSGCLayout)
	assert.Equal(t, 10*time.Second, c.FetchTimeout)
	assert.Equal(t, "cache:6380", c.RedisAddr())
	assert.Equal(t, time.Minute, c.AdminCacheTTL)
	assert.Equal(t, []string{"/staff/", "/ops"}, c.AdminPaths)
	assert.Equal(t, 50, c.RateLimitQPS)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8"), netip.MustParsePrefix("192.168.1.5/32")}, c.AdminHintProxies)
}

func TestLoadBadHintProxies(t *testing.T) {
	t.Setenv("ADMIN_HINT_PROXIES", "10.0.0.0/33")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadBadLayout(t *testing.T) {
	t.Setenv("PSGC_LAYOUT", "flat")
	_, err := Load()
	assert.Error(t, err)
}

func TestFieldMapFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(p, []byte("preset: psgc\n"), 0o644))
	c := Config{PSGCPreset: "combined", PSGCFieldsFile: p}
	m, err := c.FieldMap()
	require.NoError(t, err)
	assert.Equal(t, "regCode", m.Region.Code)

	c.PSGCPreset = "nope"
	_, err = c.FieldMap()
	assert.ErrorIs(t, err, psgc.ErrUnknownPreset)
}
