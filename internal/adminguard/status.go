// 包 adminguard：管理后台路径的提示性访问守卫
// 背景：仅做体验层面的拦截（向验证端点询问是否为管理员并短时缓存正向结果），
// 真正的鉴权由上游服务负责；验证失败时放行，避免误踢已登录的管理员。
package adminguard

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL 正向结果缓存时长
const DefaultTTL = 5 * time.Minute

// CacheKeyPrefix 缓存键前缀
const CacheKeyPrefix = "admin_status_v1:"

// DefaultPaths 管理后台路径前缀
var DefaultPaths = []string{
	"/admin/",
	"/admin-dashboard",
	"/admin-products",
	"/admin-view-users",
	"/admin-view-processing-orders",
	"/admin-view-confirmed-orders",
	"/admin-view-shipping-orders",
	"/admin-view-delivered-orders",
	"/admin-view-booking",
}

// IsAdminPath 路径是否以任一前缀开头
func IsAdminPath(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Status 管理员状态及其检查时间
type Status struct {
	IsAdmin   bool          `json:"is_admin"`
	CheckedAt time.Time     `json:"checked_at"`
	TTL       time.Duration `json:"ttl"`
	// Source 结果来源：hint | cache | verify | error
	Source string `json:"-"`
}

// Fresh 是否仍在有效期内
func (s Status) Fresh(now time.Time) bool {
	if s.CheckedAt.IsZero() || s.TTL <= 0 {
		return false
	}
	return now.Sub(s.CheckedAt) <= s.TTL
}

type ctxKey struct{}

// WithStatus 将状态写入请求上下文
func WithStatus(ctx context.Context, s Status) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// StatusFrom 读取请求上下文中的状态
func StatusFrom(ctx context.Context) (Status, bool) {
	s, ok := ctx.Value(ctxKey{}).(Status)
	return s, ok
}
