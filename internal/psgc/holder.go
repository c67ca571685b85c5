package psgc

import (
	"sync/atomic"

	"ph-address/internal/metrics"
)

// 文档注释：索引持有者
// 背景：通过 atomic.Pointer 无锁切换当前索引（热重载），读路径不阻塞。
// 约束：Load 在未设置时返回 nil，调用方据此渲染不可用占位。
type Holder struct{ p atomic.Pointer[Index] }

func NewHolder(idx *Index) *Holder {
	h := &Holder{}
	if idx != nil {
		h.Store(idx)
	}
	return h
}

func (h *Holder) Load() *Index { return h.p.Load() }

// Store 切换当前索引并刷新层级单元数指标
// WARNING: 传入 nil 会使后续请求全部降级
func (h *Holder) Store(idx *Index) {
	h.p.Store(idx)
	if idx == nil {
		return
	}
	for _, t := range Tiers {
		metrics.PSGCIndexUnits.WithLabelValues(t.String()).Set(float64(idx.Stats.Units[t]))
	}
}
