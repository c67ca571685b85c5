package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ph-address/internal/logger"
	"ph-address/internal/psgc"
)

type options struct {
	Base     string
	Layout   string
	Preset   string
	Fields   string
	Timeout  time.Duration
	LogLevel string
}

var opts options

var rootCmd = &cobra.Command{
	Use:           "psgc-check",
	Short:         "Inspect a PSGC reference dataset the way the address cascade sees it",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetupWith(cmd.ErrOrStderr(), opts.LogLevel, "text")
	},
}

func init() {
	_ = godotenv.Load(".env")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.Base, "base", envOr("PSGC_BASE", "static/ecom"), "Dataset base path: directory or http(s) URL (or set PSGC_BASE)")
	pf.StringVar(&opts.Layout, "layout", envOr("PSGC_LAYOUT", "combined"), "Dataset layout: combined or tiered")
	pf.StringVar(&opts.Preset, "preset", envOr("PSGC_PRESET", "combined"), "Field preset: combined or psgc")
	pf.StringVar(&opts.Fields, "fields", os.Getenv("PSGC_FIELDS_FILE"), "YAML field map overriding the preset")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Fetch timeout")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// loadIndex 按命令行参数加载并构建索引
func loadIndex(ctx context.Context, o options) (*psgc.Index, error) {
	layout, err := psgc.ParseLayout(o.Layout)
	if err != nil {
		return nil, err
	}
	fields, err := psgc.Preset(o.Preset)
	if err != nil {
		return nil, err
	}
	if o.Fields != "" {
		if fields, err = psgc.LoadFieldMap(o.Fields, fields); err != nil {
			return nil, err
		}
	}
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	l := &psgc.Loader{Fetcher: psgc.NewFetcher(o.Base, o.Timeout), Layout: layout, Fields: fields}
	recs, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return psgc.Build(recs), nil
}
