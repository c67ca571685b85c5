// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"ph-address/internal/adminguard"
	"ph-address/internal/alias"
	"ph-address/internal/api"
	"ph-address/internal/config"
	"ph-address/internal/geohint"
	"ph-address/internal/logger"
	"ph-address/internal/metrics"
	"ph-address/internal/middleware"
	"ph-address/internal/psgc"
	"ph-address/internal/utils"
	"ph-address/internal/version"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok", "commit", version.Commit)

	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	fields, err := cfg.FieldMap()
	if err != nil {
		l.Error("field_map_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_psgc", "base", cfg.PSGCBase, "layout", cfg.PSGCLayout, "preset", cfg.PSGCPreset)

	loader := &psgc.Loader{
		Fetcher: psgc.NewFetcher(cfg.PSGCBase, cfg.FetchTimeout),
		Layout:  cfg.PSGCLayout,
		Fields:  fields,
	}
	reload := func(ctx context.Context) (*psgc.Index, error) {
		recs, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		idx := psgc.Build(recs)
		l.Info("psgc_index_ready",
			"records", idx.Stats.Records,
			"skipped", idx.Stats.Skipped,
			"regions", idx.Stats.Units[psgc.TierRegion],
			"provinces", idx.Stats.Units[psgc.TierProvince],
			"cities", idx.Stats.Units[psgc.TierCity],
			"barangays", idx.Stats.Units[psgc.TierBarangay],
		)
		return idx, nil
	}

	// 加载失败不退出：联动渲染为不可用占位，可通过 /reload 恢复
	holder := psgc.NewHolder(nil)
	lctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout+5*time.Second)
	if idx, err := reload(lctx); err == nil {
		holder.Store(idx)
	} else {
		l.Error("psgc_initial_load_failed", "err", err)
	}
	cancel()

	var hint *geohint.Hinter
	if cfg.GeoIPCityPath != "" {
		if h, err := geohint.Open(cfg.GeoIPCityPath); err == nil {
			hint = h
			defer h.Close()
		} else {
			l.Error("geohint_open_error", "path", cfg.GeoIPCityPath, "err", err)
		}
	}

	var cache adminguard.Cache = adminguard.NewMemoryCache(4096)
	if rc := utils.OpenRedis(context.Background(), cfg.RedisAddr(), cfg.RedisPass, cfg.RedisDB); rc != nil {
		defer rc.Close()
		cache = adminguard.NewRedisCache(rc)
	}
	var guard *adminguard.Guard
	if cfg.AdminVerifyURL != "" {
		guard = &adminguard.Guard{
			Paths:       cfg.AdminPaths,
			Verifier:    &adminguard.Verifier{URL: cfg.AdminVerifyURL, Client: &http.Client{Timeout: 3 * time.Second}},
			Cache:       cache,
			TTL:         cfg.AdminCacheTTL,
			LoginURL:    cfg.AdminLoginURL,
			HintHeader:  cfg.AdminHintHeader,
			HintProxies: cfg.AdminHintProxies,
		}
		l.Info("admin_guard_enabled", "verify_url", cfg.AdminVerifyURL, "ttl_s", int(cfg.AdminCacheTTL/time.Second))
	} else {
		l.Info("admin_guard_disabled")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(logger.AccessMiddleware(l))
	r.Use(middleware.RateLimit(cfg.RateLimitQPS))

	apiRoutes := api.BuildRoutes(&api.Server{
		Index:       holder,
		Aliases:     alias.Default,
		Hint:        hint,
		Reload:      reload,
		ReloadToken: cfg.ReloadToken,
	})
	apiRoutes.Handle("/metrics", metrics.Handler())
	r.Mount(cfg.APIBase, apiRoutes)

	// NOTE: 向前端暴露 API 基础路径，避免硬编码
	r.Get("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + cfg.APIBase + "'\n"))
		_, _ = w.Write([]byte("window.__COMMIT_SHA__='" + version.Commit + "'"))
	})

	var static http.Handler = http.FileServer(http.Dir(cfg.StaticDir))
	if guard != nil {
		static = guard.Middleware(static)
	}
	r.Handle("/*", static)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	}()
	l.Info("listening", "addr", cfg.Addr, "api_base", cfg.APIBase, "static", cfg.StaticDir)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
}
