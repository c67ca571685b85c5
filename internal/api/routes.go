// 包 api：地址联动 HTTP API；路由集中注册，由主入口挂载到 API_BASE 前缀下
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ph-address/internal/alias"
	"ph-address/internal/cascade"
	"ph-address/internal/form"
	"ph-address/internal/geohint"
	"ph-address/internal/logger"
	"ph-address/internal/metrics"
	"ph-address/internal/psgc"
	"ph-address/internal/version"
)

// Server 路由依赖
type Server struct {
	// Index 当前索引；为 nil 时所有联动渲染为不可用占位
	Index   *psgc.Holder
	Aliases *alias.Table
	// Hint 可选：未提供初始区域时按客户端 IP 推断
	Hint *geohint.Hinter
	// Reload 重新加载并构建索引；为 nil 时 /reload 返回 404
	Reload      func(ctx context.Context) (*psgc.Index, error)
	ReloadToken string
}

func (s *Server) aliases() *alias.Table {
	if s.Aliases != nil {
		return s.Aliases
	}
	return alias.Default
}

func (s *Server) index() *psgc.Index {
	if s.Index == nil {
		return nil
	}
	return s.Index.Load()
}

// BuildRoutes 构建 API 路由
func BuildRoutes(s *Server) chi.Router {
	r := chi.NewRouter()
	r.Get("/regions", instrument("regions", s.handleTier(psgc.TierRegion, "")))
	r.Get("/provinces", instrument("provinces", s.handleTier(psgc.TierProvince, "region")))
	r.Get("/cities", instrument("cities", s.handleTier(psgc.TierCity, "province")))
	r.Get("/barangays", instrument("barangays", s.handleTier(psgc.TierBarangay, "city")))
	r.Get("/cascade", instrument("cascade", s.handleCascade))
	r.Get("/fragments/{tier}", instrument("fragments", s.handleFragment))
	r.Get("/region-alias", instrument("region_alias", s.handleRegionAlias))
	r.Post("/reload", s.handleReload)
	r.Get("/healthz", s.handleHealth)
	return r
}

// instrument 按端点记录请求数与耗时
func instrument(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		metrics.CascadeRequestsTotal.WithLabelValues(name).Inc()
		h(w, r)
		metrics.CascadeRequestDurationMs.WithLabelValues(name).Observe(float64(time.Since(t0).Milliseconds()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// tierView 渲染单个层级的选项；parent 为空（非区域层）时仅含占位
func (s *Server) tierView(idx *psgc.Index, t psgc.Tier, parent string) form.SelectView {
	sel := form.NewSelect(t.String())
	if idx == nil {
		sel.Disable(cascade.Unavailable)
		return sel.View()
	}
	var opts []cascade.Option
	if t == psgc.TierRegion || parent != "" {
		idx.Children(t, parent).Each(func(code, name string) {
			opts = append(opts, cascade.Option{Value: code, Label: name})
		})
	}
	sel.Fill(cascade.Placeholders[t], opts)
	return sel.View()
}

// resolveParent 省级查询的上级为区域，可传简称
func (s *Server) resolveParent(idx *psgc.Index, t psgc.Tier, parent string) string {
	parent = strings.TrimSpace(parent)
	if t != psgc.TierProvince || idx == nil || parent == "" {
		return parent
	}
	regions := idx.Children(psgc.TierRegion, "")
	if regions.Has(parent) {
		return parent
	}
	for _, c := range s.aliases().Candidates(parent) {
		if regions.Has(c) {
			return c
		}
	}
	return parent
}

func (s *Server) handleTier(t psgc.Tier, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx := s.index()
		parent := ""
		if param != "" {
			parent = s.resolveParent(idx, t, r.URL.Query().Get(param))
		}
		writeJSON(w, http.StatusOK, optionsResult{Tier: t.String(), Parent: parent, SelectView: s.tierView(idx, t, parent)})
	}
}

func (s *Server) handleCascade(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cfg := cascade.DefaultIDs()
	cfg.Aliases = s.aliases()
	cfg.Initial = cascade.Initial{
		Region:   q.Get("region"),
		Province: q.Get("province"),
		City:     firstNonEmpty(q.Get("citymun"), q.Get("city")),
		Barangay: q.Get("barangay"),
	}
	var res cascadeResult
	if cfg.Initial.Region == "" && s.Hint != nil {
		if a, ok := s.Hint.Region(clientIP(r)); ok {
			cfg.Initial.Region = a
			res.Hinted = true
		}
	}
	doc := form.NewCascadeDocument(cfg)
	idx := s.index()
	if idx == nil {
		_ = cascade.Degrade(doc, cfg)
		res.Hinted = false
	} else {
		c, err := cascade.Attach(doc, cfg, idx)
		if err != nil {
			logger.L().Error("cascade_attach_error", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResult{Error: "cascade_unavailable"})
			return
		}
		res.Selection = c.State()
		res.Available = true
	}
	res.Region = doc.Select(cfg.Region).View()
	res.Province = doc.Select(cfg.Province).View()
	res.City = doc.Select(cfg.City).View()
	res.Barangay = doc.Select(cfg.Barangay).View()
	res.RegionAlias = doc.Hidden(cfg.HiddenRegionAlias).Value()
	if res.Hinted && res.Selection.Region == "" {
		res.Hinted = false
	}
	writeJSON(w, http.StatusOK, res)
}

var fragmentTmpl = template.Must(template.New("options").Parse(
	`{{range .Options}}<option value="{{.Value}}"{{if and $.Value (eq .Value $.Value)}} selected{{end}}{{if $.Disabled}} disabled{{end}}>{{.Label}}</option>
{{end}}`))

// handleFragment 返回 <option> 片段，供页面局部替换
func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	t, ok := psgc.ParseTier(chi.URLParam(r, "tier"))
	if !ok {
		http.Error(w, "unknown tier", http.StatusNotFound)
		return
	}
	idx := s.index()
	parent := s.resolveParent(idx, t, r.URL.Query().Get("parent"))
	v := s.tierView(idx, t, parent)
	if sel := strings.TrimSpace(r.URL.Query().Get("selected")); sel != "" {
		for _, o := range v.Options {
			if o.Value == sel {
				v.Value = sel
			}
		}
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	if err := fragmentTmpl.Execute(w, v); err != nil {
		logger.L().Error("fragment_render_error", "tier", t.String(), "err", err)
	}
}

// handleRegionAlias 简称与编码互查
func (s *Server) handleRegionAlias(w http.ResponseWriter, r *http.Request) {
	v := strings.TrimSpace(r.URL.Query().Get("value"))
	tb := s.aliases()
	if code, ok := tb.Code(v); ok {
		a, _ := tb.Alias(code)
		writeJSON(w, http.StatusOK, aliasResult{Code: code, Alias: a})
		return
	}
	if a, ok := tb.Alias(v); ok {
		writeJSON(w, http.StatusOK, aliasResult{Code: v, Alias: a})
		return
	}
	writeJSON(w, http.StatusNotFound, errorResult{Error: "unknown_region"})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.Reload == nil || s.Index == nil {
		http.NotFound(w, r)
		return
	}
	tok := r.Header.Get("x-admin-token")
	if s.ReloadToken == "" || subtle.ConstantTimeCompare([]byte(tok), []byte(s.ReloadToken)) != 1 {
		writeJSON(w, http.StatusForbidden, errorResult{Error: "forbidden"})
		return
	}
	idx, err := s.Reload(r.Context())
	if err != nil {
		logger.L().Error("psgc_reload_error", "err", err)
		var le *psgc.LoadError
		if errors.As(err, &le) {
			writeJSON(w, http.StatusBadGateway, errorResult{Error: le.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResult{Error: err.Error()})
		return
	}
	s.Index.Store(idx)
	logger.L().Info("psgc_reloaded", "records", idx.Stats.Records)
	writeJSON(w, http.StatusOK, reloadResult{Records: idx.Stats.Records, Skipped: idx.Stats.Skipped, Units: units(idx)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	idx := s.index()
	res := healthResult{OK: true, IndexReady: idx != nil, Commit: version.Commit}
	if idx != nil {
		res.Units = units(idx)
	}
	writeJSON(w, http.StatusOK, res)
}

func units(idx *psgc.Index) map[string]int {
	out := make(map[string]int, len(psgc.Tiers))
	for _, t := range psgc.Tiers {
		out[t.String()] = idx.Stats.Units[t]
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
