package psgc

// Options 有序的 子编码 → 名称 映射，保留插入顺序
type Options struct {
	codes []string
	names map[string]string
}

func newOptions() *Options { return &Options{names: map[string]string{}} }

// add 仅在编码不存在时插入；返回是否插入
func (o *Options) add(code, name string) bool {
	if _, ok := o.names[code]; ok {
		return false
	}
	o.codes = append(o.codes, code)
	o.names[code] = name
	return true
}

func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.codes)
}

func (o *Options) Has(code string) bool {
	if o == nil {
		return false
	}
	_, ok := o.names[code]
	return ok
}

// Name 返回展示名称；不存在时返回空串
func (o *Options) Name(code string) string {
	if o == nil {
		return ""
	}
	return o.names[code]
}

// Each 按插入顺序遍历
func (o *Options) Each(fn func(code, name string)) {
	if o == nil {
		return
	}
	for _, c := range o.codes {
		fn(c, o.names[c])
	}
}

// Codes 返回编码副本
func (o *Options) Codes() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.codes))
	copy(out, o.codes)
	return out
}

// TierIndex 单层索引：上级编码 → 有序子项
type TierIndex struct {
	tier     Tier
	byParent map[string]*Options
	// parents 记录上级编码首次出现的顺序，供遍历与孤儿检查
	parents []string
}

var emptyOptions = newOptions()

func newTierIndex(t Tier) *TierIndex {
	return &TierIndex{tier: t, byParent: map[string]*Options{}}
}

func (ti *TierIndex) Tier() Tier { return ti.tier }

// Children 返回上级编码下的子项；不存在时返回共享的空集合（不为 nil）
func (ti *TierIndex) Children(parent string) *Options {
	if o, ok := ti.byParent[parent]; ok {
		return o
	}
	return emptyOptions
}

// Parents 按首次出现顺序返回全部上级编码
func (ti *TierIndex) Parents() []string {
	out := make([]string, len(ti.parents))
	copy(out, ti.parents)
	return out
}

// Units 本层去重后的行政单元数量
func (ti *TierIndex) Units() int {
	n := 0
	for _, o := range ti.byParent {
		n += o.Len()
	}
	return n
}

func (ti *TierIndex) insert(parent, code, name string) bool {
	o, ok := ti.byParent[parent]
	if !ok {
		o = newOptions()
		ti.byParent[parent] = o
		ti.parents = append(ti.parents, parent)
	}
	return o.add(code, name)
}

// Stats 构建统计
type Stats struct {
	Records int
	// Skipped 区域编码缺失、无任何贡献的记录数
	Skipped int
	Units   [len(Tiers)]int
	// Conflicts 重复出现的单元数：本层为记录末级时重复编码，或同一编码名称不一致（已按首次出现折叠）
	Conflicts [len(Tiers)]int
}

// Index 四层索引；区域层的上级编码为空串
// 约束：构建完成后只读，可被并发请求共享
type Index struct {
	Regions   *TierIndex
	Provinces *TierIndex
	Cities    *TierIndex
	Barangays *TierIndex
	Stats     Stats
}

// Build 单次遍历记录构建索引
// 约束：逐层自上而下，遇到第一个空编码即停止（更浅层级仍然生效）；首次出现的名称胜出；
// 名称为空时以编码作为展示名称；不做排序
func Build(records []Record) *Index {
	idx := &Index{
		Regions:   newTierIndex(TierRegion),
		Provinces: newTierIndex(TierProvince),
		Cities:    newTierIndex(TierCity),
		Barangays: newTierIndex(TierBarangay),
	}
	idx.Stats.Records = len(records)
	for _, r := range records {
		parent := ""
		for _, t := range Tiers {
			u := r.At(t)
			if u.Code == "" {
				if t == TierRegion {
					idx.Stats.Skipped++
				}
				break
			}
			name := u.Name
			if name == "" {
				name = u.Code
			}
			ti := idx.Tier(t)
			if !ti.insert(parent, u.Code, name) {
				leaf := t == TierBarangay || r.At(t+1).Code == ""
				if leaf || ti.Children(parent).Name(u.Code) != name {
					idx.Stats.Conflicts[t]++
				}
			}
			parent = u.Code
		}
	}
	for _, t := range Tiers {
		idx.Stats.Units[t] = idx.Tier(t).Units()
	}
	return idx
}

// Tier 返回指定层级的索引
func (idx *Index) Tier(t Tier) *TierIndex {
	switch t {
	case TierRegion:
		return idx.Regions
	case TierProvince:
		return idx.Provinces
	case TierCity:
		return idx.Cities
	case TierBarangay:
		return idx.Barangays
	}
	return nil
}

// Children 返回 t 层在 parent 下的子项；t 为区域层时忽略 parent
func (idx *Index) Children(t Tier, parent string) *Options {
	if t == TierRegion {
		parent = ""
	}
	ti := idx.Tier(t)
	if ti == nil {
		return emptyOptions
	}
	return ti.Children(parent)
}

// Orphan 上级编码在上一层中不存在的子项分组
type Orphan struct {
	Tier   Tier
	Parent string
	Count  int
}

// Orphans 检查每个非空上级编码都作为上一层的子项出现过
func (idx *Index) Orphans() []Orphan {
	var out []Orphan
	for _, t := range Tiers[1:] {
		known := map[string]bool{}
		up := idx.Tier(t - 1)
		for _, p := range up.parents {
			up.byParent[p].Each(func(code, _ string) { known[code] = true })
		}
		ti := idx.Tier(t)
		for _, p := range ti.parents {
			if !known[p] {
				out = append(out, Orphan{Tier: t, Parent: p, Count: ti.byParent[p].Len()})
			}
		}
	}
	return out
}
