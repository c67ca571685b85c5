package adminguard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"net/netip"
	"time"

	"ph-address/internal/logger"
	"ph-address/internal/metrics"
)

// Verifier 调用验证端点查询管理员状态
type Verifier struct {
	URL    string
	Client *http.Client
}

type verifyResp struct {
	IsAdmin bool `json:"is_admin"`
}

// Verify 以原请求的 Cookie 访问验证端点
// 约束：携带 X-Requested-With 与取自 csrftoken Cookie 的 X-CSRFToken；非 200 或无法解析视为错误
func (v *Verifier) Verify(ctx context.Context, r *http.Request) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("accept", "application/json")
	if c, err := r.Cookie("csrftoken"); err == nil {
		req.Header.Set("X-CSRFToken", c.Value)
	}
	for _, c := range r.Cookies() {
		req.AddCookie(c)
	}
	client := v.Client
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("verify admin: status %d", resp.StatusCode)
	}
	var out verifyResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("verify admin: decode: %w", err)
	}
	return out.IsAdmin, nil
}

// Decision 守卫判定
type Decision int

const (
	Allow Decision = iota
	Deny
)

// Guard 管理路径守卫
type Guard struct {
	Paths    []string
	Verifier *Verifier
	Cache    Cache
	TTL      time.Duration
	LoginURL string
	// HintHeader 上游已确认管理员身份时设置的请求头（值为 "true"），命中则跳过验证
	// 约束：上游代理必须剥离客户端自带的同名请求头；仅当直连对端位于 HintProxies 内时生效
	HintHeader string
	// HintProxies 可信上游网段；为空时忽略 HintHeader
	HintProxies []netip.Prefix
	Now         func() time.Time
}

func (g *Guard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Guard) ttl() time.Duration {
	if g.TTL > 0 {
		return g.TTL
	}
	return DefaultTTL
}

// trustedPeer 直连对端（RemoteAddr，不看转发头）是否为可信上游
func (g *Guard) trustedPeer(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	for _, p := range g.HintProxies {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// cacheKey 以会话 Cookie 的摘要区分用户；无会话时不缓存
func cacheKey(r *http.Request) string {
	c, err := r.Cookie("sessionid")
	if err != nil || c.Value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(c.Value))
	return hex.EncodeToString(sum[:16])
}

// Check 判定请求是否放行
// 顺序：非管理路径 → 上游提示 → 缓存中的正向结果 → 验证端点；验证出错时放行
// 仅缓存正向结果
func (g *Guard) Check(r *http.Request) (Decision, Status) {
	paths := g.Paths
	if paths == nil {
		paths = DefaultPaths
	}
	if !IsAdminPath(paths, r.URL.Path) {
		return Allow, Status{}
	}
	now := g.now()
	if g.HintHeader != "" && r.Header.Get(g.HintHeader) == "true" && g.trustedPeer(r) {
		return Allow, Status{IsAdmin: true, CheckedAt: now, TTL: g.ttl(), Source: "hint"}
	}
	key := cacheKey(r)
	if key != "" && g.Cache != nil {
		if s, ok := g.Cache.Get(r.Context(), key); ok && s.IsAdmin && s.Fresh(now) {
			s.Source = "cache"
			return Allow, s
		}
	}
	if g.Verifier == nil {
		return Allow, Status{Source: "error"}
	}
	isAdmin, err := g.Verifier.Verify(r.Context(), r)
	if err != nil {
		metrics.AdminVerifyTotal.WithLabelValues("error").Inc()
		logger.L().Warn("admin_verify_failed", "path", r.URL.Path, "err", err)
		return Allow, Status{Source: "error"}
	}
	s := Status{IsAdmin: isAdmin, CheckedAt: now, TTL: g.ttl(), Source: "verify"}
	if !isAdmin {
		metrics.AdminVerifyTotal.WithLabelValues("deny").Inc()
		logger.L().Info("admin_access_denied", "path", r.URL.Path)
		return Deny, s
	}
	metrics.AdminVerifyTotal.WithLabelValues("allow").Inc()
	if key != "" && g.Cache != nil {
		g.Cache.Set(r.Context(), key, s)
	}
	return Allow, s
}

// Middleware 拒绝时返回拒绝访问页面，3 秒后跳转登录页；放行时状态写入上下文
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, s := g.Check(r)
		if d == Deny {
			login := g.LoginURL
			if login == "" {
				login = "/adminlogin"
			}
			writeDenied(w, login)
			return
		}
		if s.Source != "" {
			r = r.WithContext(WithStatus(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}

var deniedTmpl = template.Must(template.New("denied").Parse(`<!doctype html><html lang="en"><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"><meta http-equiv="refresh" content="3;url={{.}}"><title>Access Denied</title><style>body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial,sans-serif;display:flex;align-items:center;justify-content:center;height:100vh;margin:0;background:rgba(0,0,0,.8)}.card{background:#fff;padding:30px;border-radius:10px;text-align:center;max-width:400px;box-shadow:0 4px 20px rgba(0,0,0,.3)}h2{color:#dc3545}.desc{color:#666}.count{background:#f8f9fa;padding:10px;border-radius:5px;font-size:14px;color:#666}</style><div class="card" id="accessDeniedModal"><h2>Access Denied</h2><p class="desc">You do not have administrator privileges to access this page. You will be redirected to the login page.</p><div class="count">Redirecting in <span id="countdown">3</span> seconds...</div></div></html>`))

// writeDenied 返回统一拒绝页面
func writeDenied(w http.ResponseWriter, login string) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(http.StatusForbidden)
	_ = deniedTmpl.Execute(w, login)
}
