package cascade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ph-address/internal/alias"
	"ph-address/internal/logger"
	"ph-address/internal/metrics"
	"ph-address/internal/psgc"
)

// Initial 初始选择，四项均可为空；Region 可为简称或编码
type Initial struct {
	Region   string `json:"region"`
	Province string `json:"province"`
	City     string `json:"citymun"`
	Barangay string `json:"barangay"`
}

// Config 联动配置
type Config struct {
	Region   string
	Province string
	City     string
	Barangay string
	// HiddenRegionAlias 可选：同步区域简称的隐藏输入 id；不存在时忽略
	HiddenRegionAlias string

	// StaticPath 参考数据基础路径（URL 或本地目录）
	StaticPath   string
	Layout       psgc.Layout
	Fields       psgc.FieldMap
	FetchTimeout time.Duration

	Initial Initial
	// Aliases 为空时使用 alias.Default
	Aliases *alias.Table
}

// DefaultIDs 服务端渲染使用的控件 id
func DefaultIDs() Config {
	return Config{
		Region:            "region",
		Province:          "province",
		City:              "citymun",
		Barangay:          "barangay",
		HiddenRegionAlias: "region_alias",
	}
}

func (c Config) ids() [4]string { return [4]string{c.Region, c.Province, c.City, c.Barangay} }

// Selection 四个层级的当前编码；空串表示停留在占位
type Selection struct {
	Region   string `json:"region"`
	Province string `json:"province"`
	City     string `json:"citymun"`
	Barangay string `json:"barangay"`
}

// Controller 绑定到四个控件的联动控制器
type Controller struct {
	idx     *psgc.Index
	aliases *alias.Table
	w       [4]Widget
	hidden  Field
}

// resolve 解析全部控件；任何一个缺失即返回 ErrMissingWidget
func resolve(doc Document, cfg Config) ([4]Widget, error) {
	var w [4]Widget
	for i, id := range cfg.ids() {
		x, ok := doc.Widget(id)
		if !ok || x == nil {
			return w, fmt.Errorf("%w: %q", ErrMissingWidget, id)
		}
		w[i] = x
	}
	return w, nil
}

// Attach 基于已构建的索引接线：填充区域、注册监听、应用初始选择、同步隐藏简称
// 约束：任何控件缺失时返回 ErrMissingWidget 且不改动任何控件
func Attach(doc Document, cfg Config, idx *psgc.Index) (*Controller, error) {
	w, err := resolve(doc, cfg)
	if err != nil {
		return nil, err
	}
	c := &Controller{idx: idx, aliases: cfg.Aliases, w: w}
	if c.aliases == nil {
		c.aliases = alias.Default
	}
	if cfg.HiddenRegionAlias != "" {
		if f, ok := doc.Field(cfg.HiddenRegionAlias); ok {
			c.hidden = f
		}
	}

	c.w[psgc.TierRegion].Fill(PlaceholderRegion, c.options(psgc.TierRegion, ""))
	for _, t := range psgc.Tiers[1:] {
		c.w[t].Fill(Placeholders[t], nil)
	}
	for _, t := range psgc.Tiers[:3] {
		child := t + 1
		c.w[t].OnChange(func() { c.refresh(child) })
	}
	c.w[psgc.TierRegion].OnChange(c.syncAlias)

	c.Apply(cfg.Initial)
	c.syncAlias()
	return c, nil
}

// refresh 以上一层当前值重建 t 层：先清空更深层级，再填充 t 层，随后向下级联
func (c *Controller) refresh(t psgc.Tier) {
	for d := psgc.TierBarangay; d > t; d-- {
		c.w[d].Fill(Placeholders[d], nil)
	}
	parent := c.w[t-1].Value()
	c.w[t].Fill(Placeholders[t], c.options(t, parent))
	if t < psgc.TierBarangay {
		c.w[t].Dispatch()
	}
}

func (c *Controller) options(t psgc.Tier, parent string) []Option {
	if c.idx == nil {
		return nil
	}
	if t != psgc.TierRegion && parent == "" {
		return nil
	}
	children := c.idx.Children(t, parent)
	out := make([]Option, 0, children.Len())
	children.Each(func(code, name string) {
		out = append(out, Option{Value: code, Label: name})
	})
	return out
}

// ResolveRegion 将简称或编码解析为当前区域选项中的编码
// 优先精确编码，其次简称对应的 9 位编码，最后其 2 位短编码
func (c *Controller) ResolveRegion(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || c.idx == nil {
		return "", false
	}
	regions := c.idx.Children(psgc.TierRegion, "")
	if regions.Has(v) {
		return v, true
	}
	for _, cand := range c.aliases.Candidates(v) {
		if regions.Has(cand) {
			return cand, true
		}
	}
	return "", false
}

func (c *Controller) syncAlias() {
	if c.hidden == nil {
		return
	}
	code := c.w[psgc.TierRegion].Value()
	if code == "" {
		c.hidden.SetValue("")
		return
	}
	c.hidden.SetValue(c.aliases.AliasOr(code))
}

// State 当前选择
func (c *Controller) State() Selection {
	return Selection{
		Region:   c.w[psgc.TierRegion].Value(),
		Province: c.w[psgc.TierProvince].Value(),
		City:     c.w[psgc.TierCity].Value(),
		Barangay: c.w[psgc.TierBarangay].Value(),
	}
}

// Select 模拟用户在 t 层选择 v 并触发级联；v 不在选项中时回落为占位，未知层级返回 false
func (c *Controller) Select(t psgc.Tier, v string) bool {
	if t < psgc.TierRegion || t > psgc.TierBarangay {
		return false
	}
	if t == psgc.TierRegion {
		if code, ok := c.ResolveRegion(v); ok {
			v = code
		}
	}
	ok := c.w[t].SetValue(v)
	c.w[t].Dispatch()
	return ok
}

// Init 加载参考数据、构建索引并接线
// 约束：控件缺失时直接返回 ErrMissingWidget；加载失败时四个控件降级为禁用占位并返回 *psgc.LoadError
func Init(ctx context.Context, doc Document, cfg Config) (*Controller, error) {
	w, err := resolve(doc, cfg)
	if err != nil {
		return nil, err
	}
	l := &psgc.Loader{
		Fetcher: psgc.NewFetcher(cfg.StaticPath, cfg.FetchTimeout),
		Layout:  cfg.Layout,
		Fields:  cfg.Fields,
	}
	recs, err := l.Load(ctx)
	if err != nil {
		var le *psgc.LoadError
		if errors.As(err, &le) {
			degrade(w)
		}
		return nil, err
	}
	return Attach(doc, cfg, psgc.Build(recs))
}

// Degrade 将四个控件置为禁用的不可用占位
func Degrade(doc Document, cfg Config) error {
	w, err := resolve(doc, cfg)
	if err != nil {
		return err
	}
	degrade(w)
	return nil
}

func degrade(w [4]Widget) {
	for _, x := range w {
		x.Disable(Unavailable)
	}
	metrics.CascadeDegradedTotal.Inc()
	logger.L().Warn("cascade_degraded")
}
