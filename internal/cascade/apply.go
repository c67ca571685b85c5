package cascade

import (
	"strings"

	"ph-address/internal/logger"
	"ph-address/internal/metrics"
	"ph-address/internal/psgc"
)

// Apply 依次应用初始选择：区域 → 级联 → 省 → 级联 → 市 → 级联 → 村
// 约束：未知编码静默回落为占位（仅 debug 日志与计数），不返回错误；村级值只在末尾设置一次
func (c *Controller) Apply(in Initial) {
	if v := strings.TrimSpace(in.Region); v != "" {
		if code, ok := c.ResolveRegion(v); ok {
			c.w[psgc.TierRegion].SetValue(code)
		} else {
			c.unknown(psgc.TierRegion, v)
		}
	}
	c.w[psgc.TierRegion].Dispatch()

	c.applyTier(psgc.TierProvince, in.Province)
	c.w[psgc.TierProvince].Dispatch()

	c.applyTier(psgc.TierCity, in.City)
	c.w[psgc.TierCity].Dispatch()

	c.applyTier(psgc.TierBarangay, in.Barangay)
}

func (c *Controller) applyTier(t psgc.Tier, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	if !c.w[t].SetValue(v) {
		c.unknown(t, v)
	}
}

func (c *Controller) unknown(t psgc.Tier, v string) {
	metrics.CascadeUnknownCodeTotal.WithLabelValues(t.String()).Inc()
	logger.L().Debug("cascade_unknown_code", "tier", t.String(), "value", v)
}
