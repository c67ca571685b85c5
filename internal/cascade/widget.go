// 包 cascade：四级地址联动（区域 → 省 → 市/自治市 → 村）
package cascade

import "errors"

// Option 下拉选项：Value 提交 PSGC 编码，Label 展示名称
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Widget 可选择控件
// 约束：Fill 清空后重建（占位选项 value="" 在首位），并把当前值重置为空；
// SetValue 仅在值属于当前选项时生效，否则回落为占位并返回 false；
// Dispatch 同步触发已注册的变更监听
type Widget interface {
	Fill(placeholder string, opts []Option)
	Value() string
	SetValue(v string) bool
	OnChange(fn func())
	Dispatch()
	Disable(label string)
}

// Field 隐藏输入
type Field interface {
	SetValue(v string)
}

// Document 按 id 解析控件
type Document interface {
	Widget(id string) (Widget, bool)
	Field(id string) (Field, bool)
}

// ErrMissingWidget 配置的控件 id 无法解析；此时不改动任何控件
var ErrMissingWidget = errors.New("cascade: widget not found")

// 占位文案
const (
	PlaceholderRegion   = "Select Region"
	PlaceholderProvince = "Select Province"
	PlaceholderCity     = "Select City/Municipality"
	PlaceholderBarangay = "Select Barangay"

	// Unavailable 参考数据加载失败时四个控件的禁用占位
	Unavailable = "Address data unavailable"
)

// Placeholders 按层级排列的占位文案
var Placeholders = [4]string{PlaceholderRegion, PlaceholderProvince, PlaceholderCity, PlaceholderBarangay}
