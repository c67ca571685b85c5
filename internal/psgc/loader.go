package psgc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ph-address/internal/logger"
	"ph-address/internal/metrics"
)

// Layout 参考数据的文件组织方式
type Layout string

const (
	// LayoutCombined 单文件：每行携带四个层级
	LayoutCombined Layout = "combined"
	// LayoutTiered 四个分层文件：每行仅携带本层与上级编码
	LayoutTiered Layout = "tiered"
)

// ParseLayout 解析布局名称，空值视为 combined
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(LayoutCombined):
		return LayoutCombined, nil
	case string(LayoutTiered):
		return LayoutTiered, nil
	}
	return "", fmt.Errorf("unknown psgc layout %q", s)
}

// CombinedFile 单文件布局的默认文件名
const CombinedFile = "refbrgy.json"

// TierFiles 分层布局下各层级的文件名
var TierFiles = [...]string{
	TierRegion:   "refregion.json",
	TierProvince: "refprovince.json",
	TierCity:     "refcitymun.json",
	TierBarangay: "refbrgy.json",
}

// LoadError 参考数据拉取或解析失败
// 约束：Status 仅在 HTTP 返回非 2xx 时非零；调用方据此降级为不可用占位
type LoadError struct {
	Source string
	Status int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("load %s: status %d", e.Source, e.Status)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Fetcher 按文件名读取参考数据原文
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// NewFetcher 根据基础路径选择实现：http(s):// 走网络，其余视为本地目录
func NewFetcher(base string, timeout time.Duration) Fetcher {
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		return &HTTPFetcher{Base: base, Client: &http.Client{Timeout: timeout}}
	}
	if base == "" {
		base = "."
	}
	return &DirFetcher{Dir: base}
}

// HTTPFetcher 通过 GET 拉取 Base+name
type HTTPFetcher struct {
	Base   string
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	u := joinBase(f.Base, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &LoadError{Source: u, Err: err}
	}
	req.Header.Set("accept", "application/json")
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: u, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{Source: u, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{Source: u, Err: err}
	}
	return b, nil
}

// DirFetcher 从本地目录读取
type DirFetcher struct {
	Dir string
}

func (f *DirFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	p := filepath.Join(f.Dir, name)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, &LoadError{Source: p, Err: err}
	}
	return b, nil
}

func joinBase(base, name string) string {
	if base == "" || strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + "/" + name
}

// Loader 参考数据加载器：拉取 → 形状归一化 → 字段适配
type Loader struct {
	Fetcher Fetcher
	Layout  Layout
	Fields  FieldMap
	// File 覆盖单文件布局的文件名，空值使用 CombinedFile
	File string
}

// Load 拉取并归一化全部记录
// 约束：任何拉取或解析失败都以 *LoadError 返回，不做重试
func (l *Loader) Load(ctx context.Context) ([]Record, error) {
	t0 := time.Now()
	recs, err := l.load(ctx)
	metrics.PSGCLoadDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.PSGCLoadTotal.WithLabelValues("error").Inc()
		logger.L().Error("psgc_load_error", "layout", l.Layout, "err", err)
		return nil, err
	}
	metrics.PSGCLoadTotal.WithLabelValues("ok").Inc()
	logger.L().Info("psgc_load_ok", "layout", l.Layout, "records", len(recs), "duration_ms", time.Since(t0).Milliseconds())
	return recs, nil
}

func (l *Loader) load(ctx context.Context) ([]Record, error) {
	if err := l.Fields.Validate(); err != nil {
		return nil, &LoadError{Source: "fields", Err: err}
	}
	switch l.Layout {
	case LayoutTiered:
		var out []Record
		var prev map[string]Record
		for _, t := range Tiers {
			recs, err := l.fetchFile(ctx, TierFiles[t], t)
			if err != nil {
				return nil, err
			}
			cur := make(map[string]Record, len(recs))
			for i := range recs {
				fillAncestors(&recs[i], t, prev)
				if c := recs[i].At(t).Code; c != "" {
					if _, ok := cur[c]; !ok {
						cur[c] = recs[i]
					}
				}
			}
			out = append(out, recs...)
			prev = cur
		}
		return out, nil
	case LayoutCombined, "":
		name := l.File
		if name == "" {
			name = CombinedFile
		}
		return l.fetchFile(ctx, name, TierBarangay)
	}
	return nil, &LoadError{Source: string(l.Layout), Err: fmt.Errorf("unknown layout")}
}

func (l *Loader) fetchFile(ctx context.Context, name string, depth Tier) ([]Record, error) {
	b, err := l.Fetcher.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(b)
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	logger.L().Debug("psgc_file_decoded", "file", name, "rows", len(rows), "depth", depth.String())
	return adapt(rows, l.Fields, depth), nil
}

// fillAncestors 分层文件的行可能只携带直接上级编码（如市级文件缺少区域编码），
// 依据上一层已加载的记录补齐更高层级
func fillAncestors(r *Record, t Tier, upper map[string]Record) {
	if t == TierRegion || upper == nil {
		return
	}
	p, ok := upper[r.At(t-1).Code]
	if !ok {
		return
	}
	for a := TierRegion; a < t-1; a++ {
		if r.At(a).Code == "" {
			r.set(a, p.At(a))
		}
	}
	if r.At(t-1).Name == "" {
		r.set(t-1, Unit{Code: p.At(t - 1).Code, Name: p.At(t - 1).Name})
	}
}
