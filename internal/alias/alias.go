// 包 alias：区域简称（NCR、CAR、R1…、BARMM）与官方 PSGC 编码的双向映射
package alias

import "strings"

// Table 双向映射；同时索引 9 位完整编码与 2 位短编码
// 约束：构造后只读
type Table struct {
	toCode  map[string]string // 大写简称 → 9 位编码
	toAlias map[string]string // 9 位或 2 位编码 → 简称
	order   []Entry
}

// Entry 单条映射
type Entry struct {
	Alias string
	Code  string
}

// New 由条目构造映射表；重复简称或编码以首次出现为准
func New(entries []Entry) *Table {
	t := &Table{toCode: map[string]string{}, toAlias: map[string]string{}}
	for _, e := range entries {
		a := strings.ToUpper(strings.TrimSpace(e.Alias))
		c := strings.TrimSpace(e.Code)
		if a == "" || c == "" {
			continue
		}
		if _, ok := t.toCode[a]; ok {
			continue
		}
		t.toCode[a] = c
		t.order = append(t.order, Entry{Alias: strings.TrimSpace(e.Alias), Code: c})
		if _, ok := t.toAlias[c]; !ok {
			t.toAlias[c] = strings.TrimSpace(e.Alias)
		}
		if s := short(c); s != c {
			if _, ok := t.toAlias[s]; !ok {
				t.toAlias[s] = strings.TrimSpace(e.Alias)
			}
		}
	}
	return t
}

// Default PSGC 区域简称表
var Default = New([]Entry{
	{"NCR", "130000000"},
	{"CAR", "140000000"},
	{"R1", "010000000"},
	{"R2", "020000000"},
	{"R3", "030000000"},
	{"R4A", "040000000"},
	{"R4B", "170000000"},
	{"R5", "050000000"},
	{"R6", "060000000"},
	{"R7", "070000000"},
	{"R8", "080000000"},
	{"R9", "090000000"},
	{"R10", "100000000"},
	{"R11", "110000000"},
	{"R12", "120000000"},
	{"R13", "160000000"},
	{"BARMM", "150000000"},
})

// short 9 位区域编码的 2 位短形式（数据集常以 2 位区域编码出现）
func short(code string) string {
	if len(code) == 9 && strings.HasSuffix(code, "0000000") {
		return code[:2]
	}
	return code
}

// Code 简称 → 9 位编码（大小写不敏感）
func (t *Table) Code(alias string) (string, bool) {
	c, ok := t.toCode[strings.ToUpper(strings.TrimSpace(alias))]
	return c, ok
}

// Alias 编码（9 位或 2 位）→ 简称
func (t *Table) Alias(code string) (string, bool) {
	a, ok := t.toAlias[strings.TrimSpace(code)]
	return a, ok
}

// AliasOr 返回编码对应的简称，没有则原样返回编码
func (t *Table) AliasOr(code string) string {
	if a, ok := t.Alias(code); ok {
		return a
	}
	return code
}

// Candidates 简称可能对应的编码，按优先级：9 位完整编码、2 位短编码
// 非简称返回 nil
func (t *Table) Candidates(v string) []string {
	c, ok := t.Code(v)
	if !ok {
		return nil
	}
	if s := short(c); s != c {
		return []string{c, s}
	}
	return []string{c}
}

// Entries 按声明顺序返回全部条目
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.order))
	copy(out, t.order)
	return out
}
