// 包 form：服务端渲染用的内存控件（下拉框与隐藏输入）及其文档容器
package form

import (
	"ph-address/internal/cascade"
)

// Select 内存下拉框，实现 cascade.Widget
// 约束：非并发安全；每个请求持有自己的实例
type Select struct {
	id          string
	placeholder string
	opts        []cascade.Option
	known       map[string]bool
	value       string
	disabled    bool
	listeners   []func()
}

func NewSelect(id string) *Select { return &Select{id: id, known: map[string]bool{}} }

func (s *Select) ID() string { return s.id }

// Fill 清空并重建选项，值重置为占位，解除禁用
func (s *Select) Fill(placeholder string, opts []cascade.Option) {
	s.placeholder = placeholder
	s.opts = append(s.opts[:0:0], opts...)
	s.known = make(map[string]bool, len(opts))
	for _, o := range opts {
		s.known[o.Value] = true
	}
	s.value = ""
	s.disabled = false
}

func (s *Select) Value() string { return s.value }

// SetValue 值不在选项中时回落为占位
func (s *Select) SetValue(v string) bool {
	if v != "" && s.known[v] {
		s.value = v
		return true
	}
	s.value = ""
	return v == ""
}

func (s *Select) OnChange(fn func()) { s.listeners = append(s.listeners, fn) }

func (s *Select) Dispatch() {
	for _, fn := range s.listeners {
		fn()
	}
}

// Disable 仅保留一条禁用的占位
func (s *Select) Disable(label string) {
	s.placeholder = label
	s.opts = nil
	s.known = map[string]bool{}
	s.value = ""
	s.disabled = true
}

// SelectView 渲染快照：Options 首项为占位
type SelectView struct {
	ID       string           `json:"id"`
	Value    string           `json:"value"`
	Disabled bool             `json:"disabled"`
	Options  []cascade.Option `json:"options"`
}

func (s *Select) View() SelectView {
	opts := make([]cascade.Option, 0, len(s.opts)+1)
	opts = append(opts, cascade.Option{Value: "", Label: s.placeholder})
	opts = append(opts, s.opts...)
	return SelectView{ID: s.id, Value: s.value, Disabled: s.disabled, Options: opts}
}

// Hidden 隐藏输入，实现 cascade.Field
type Hidden struct {
	id    string
	value string
}

func NewHidden(id string) *Hidden { return &Hidden{id: id} }

func (h *Hidden) SetValue(v string) { h.value = v }
func (h *Hidden) Value() string     { return h.value }
func (h *Hidden) ID() string        { return h.id }

// Document id → 控件，实现 cascade.Document
type Document struct {
	selects map[string]*Select
	hidden  map[string]*Hidden
}

func NewDocument() *Document {
	return &Document{selects: map[string]*Select{}, hidden: map[string]*Hidden{}}
}

// NewCascadeDocument 按配置中的 id 创建四个下拉框与可选隐藏输入
func NewCascadeDocument(cfg cascade.Config) *Document {
	d := NewDocument()
	for _, id := range []string{cfg.Region, cfg.Province, cfg.City, cfg.Barangay} {
		d.AddSelect(id)
	}
	if cfg.HiddenRegionAlias != "" {
		d.AddHidden(cfg.HiddenRegionAlias)
	}
	return d
}

func (d *Document) AddSelect(id string) *Select {
	s := NewSelect(id)
	d.selects[id] = s
	return s
}

func (d *Document) AddHidden(id string) *Hidden {
	h := NewHidden(id)
	d.hidden[id] = h
	return h
}

func (d *Document) Select(id string) *Select { return d.selects[id] }
func (d *Document) Hidden(id string) *Hidden { return d.hidden[id] }

// Widget 未找到时返回 (nil, false)，避免带类型的 nil 接口
func (d *Document) Widget(id string) (cascade.Widget, bool) {
	s, ok := d.selects[id]
	if !ok {
		return nil, false
	}
	return s, true
}

func (d *Document) Field(id string) (cascade.Field, bool) {
	h, ok := d.hidden[id]
	if !ok {
		return nil, false
	}
	return h, true
}
