// 包 config：从环境变量读取服务配置并填充默认值；.env 文件由入口通过 godotenv 预先加载
package config

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ph-address/internal/adminguard"
	"ph-address/internal/psgc"
)

// Config 服务配置
type Config struct {
	Addr      string
	APIBase   string
	StaticDir string

	PSGCBase       string
	PSGCLayout     psgc.Layout
	PSGCPreset     string
	PSGCFieldsFile string
	FetchTimeout   time.Duration

	RedisHost string
	RedisPort string
	RedisPass string
	RedisDB   int

	AdminCacheTTL   time.Duration
	AdminVerifyURL  string
	AdminLoginURL   string
	AdminHintHeader  string
	AdminHintProxies []netip.Prefix
	AdminPaths       []string

	GeoIPCityPath string
	ReloadToken   string

	RateLimitQPS int
}

// Load 读取环境变量
// 约束：数值解析失败时回退默认值；布局名或可信网段非法时返回错误
func Load() (Config, error) {
	c := Config{
		Addr:            env("ADDR", ":8080"),
		APIBase:         strings.TrimRight(env("API_BASE", "/api"), "/"),
		StaticDir:       env("STATIC_DIR", "static"),
		PSGCBase:        env("PSGC_BASE", filepath.Join("static", "ecom")),
		PSGCPreset:      env("PSGC_PRESET", "combined"),
		PSGCFieldsFile:  os.Getenv("PSGC_FIELDS_FILE"),
		FetchTimeout:    time.Duration(envInt("PSGC_FETCH_TIMEOUT_S", 10)) * time.Second,
		RedisHost:       os.Getenv("REDIS_HOST"),
		RedisPort:       env("REDIS_PORT", "6379"),
		RedisPass:       os.Getenv("REDIS_PASS"),
		RedisDB:         envInt("REDIS_DB", 0),
		AdminCacheTTL:   time.Duration(envInt("ADMIN_CACHE_TTL_S", int(adminguard.DefaultTTL/time.Second))) * time.Second,
		AdminVerifyURL:  os.Getenv("ADMIN_VERIFY_URL"),
		AdminLoginURL:   env("ADMIN_LOGIN_URL", "/adminlogin"),
		AdminHintHeader: os.Getenv("ADMIN_HINT_HEADER"),
		GeoIPCityPath:   os.Getenv("GEOIP_CITY_PATH"),
		ReloadToken:     os.Getenv("RELOAD_TOKEN"),
	}
	if s := os.Getenv("ADMIN_PATHS"); s != "" {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.AdminPaths = append(c.AdminPaths, p)
			}
		}
	}
	proxies, err := parsePrefixes(env("ADMIN_HINT_PROXIES", "127.0.0.1/32,::1/128"))
	if err != nil {
		return Config{}, err
	}
	c.AdminHintProxies = proxies
	if os.Getenv("RATE_LIMIT_ENABLED") == "true" {
		c.RateLimitQPS = envInt("RATE_LIMIT_QPS", 200)
	}
	if c.APIBase == "" {
		c.APIBase = "/api"
	}
	layout, err := psgc.ParseLayout(os.Getenv("PSGC_LAYOUT"))
	if err != nil {
		return Config{}, err
	}
	c.PSGCLayout = layout
	return c, nil
}

// parsePrefixes 逗号分隔的 CIDR 或单个 IP
func parsePrefixes(s string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			a, err := netip.ParseAddr(p)
			if err != nil {
				return nil, fmt.Errorf("ADMIN_HINT_PROXIES %q: %w", p, err)
			}
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		pfx, err := netip.ParsePrefix(p)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_HINT_PROXIES %q: %w", p, err)
		}
		out = append(out, pfx.Masked())
	}
	return out, nil
}

// FieldMap 预置映射叠加可选的 YAML 映射文件
func (c Config) FieldMap() (psgc.FieldMap, error) {
	m, err := psgc.Preset(c.PSGCPreset)
	if err != nil {
		return psgc.FieldMap{}, err
	}
	if c.PSGCFieldsFile == "" {
		return m, nil
	}
	m, err = psgc.LoadFieldMap(c.PSGCFieldsFile, m)
	if err != nil {
		return psgc.FieldMap{}, fmt.Errorf("fields file %s: %w", c.PSGCFieldsFile, err)
	}
	return m, nil
}

// RedisAddr 未配置主机时返回空串（禁用 Redis）
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
