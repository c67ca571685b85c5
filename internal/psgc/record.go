// 包 psgc：PSGC 行政区参考数据的加载、归一化与分层索引
package psgc

// Tier 行政层级：区域 → 省 → 市/自治市 → 村（barangay）
type Tier int

const (
	TierRegion Tier = iota
	TierProvince
	TierCity
	TierBarangay
)

// Tiers 按从浅到深的顺序列出全部层级
var Tiers = [...]Tier{TierRegion, TierProvince, TierCity, TierBarangay}

func (t Tier) String() string {
	switch t {
	case TierRegion:
		return "region"
	case TierProvince:
		return "province"
	case TierCity:
		return "citymun"
	case TierBarangay:
		return "barangay"
	}
	return "unknown"
}

// ParseTier 解析层级名称，兼容 city 与 brgy 简写
func ParseTier(s string) (Tier, bool) {
	switch s {
	case "region":
		return TierRegion, true
	case "province":
		return TierProvince, true
	case "citymun", "city":
		return TierCity, true
	case "barangay", "brgy":
		return TierBarangay, true
	}
	return 0, false
}

// Unit 单个行政单元：PSGC 编码与展示名称
type Unit struct {
	Code string
	Name string
}

// Record 归一化后的行政区记录，四个层级各一组编码/名称
// 约束：加载完成后只读；缺失层级以空编码表示
type Record struct {
	Region   Unit
	Province Unit
	City     Unit
	Barangay Unit
}

// At 返回指定层级的行政单元
func (r Record) At(t Tier) Unit {
	switch t {
	case TierRegion:
		return r.Region
	case TierProvince:
		return r.Province
	case TierCity:
		return r.City
	case TierBarangay:
		return r.Barangay
	}
	return Unit{}
}

func (r *Record) set(t Tier, u Unit) {
	switch t {
	case TierRegion:
		r.Region = u
	case TierProvince:
		r.Province = u
	case TierCity:
		r.City = u
	case TierBarangay:
		r.Barangay = u
	}
}
