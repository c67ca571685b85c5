package psgc

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TierFields 单个层级在源数据中的字段名
type TierFields struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// FieldMap 四个层级的字段映射；不同数据集变体通过不同映射适配到 Record
type FieldMap struct {
	Region   TierFields `yaml:"region"`
	Province TierFields `yaml:"province"`
	City     TierFields `yaml:"citymun"`
	Barangay TierFields `yaml:"barangay"`
}

// At 返回指定层级的字段名
func (m FieldMap) At(t Tier) TierFields {
	switch t {
	case TierRegion:
		return m.Region
	case TierProvince:
		return m.Province
	case TierCity:
		return m.City
	case TierBarangay:
		return m.Barangay
	}
	return TierFields{}
}

// Validate 每个层级都必须声明编码字段；名称字段可为空（展示时回落为编码）
func (m FieldMap) Validate() error {
	for _, t := range Tiers {
		if m.At(t).Code == "" {
			return fmt.Errorf("field map: missing code field for tier %s", t)
		}
	}
	return nil
}

// 预置映射：combined 为单文件 refbrgy.json 的下划线命名；psgc 为分层文件的驼峰命名
var presets = map[string]FieldMap{
	"combined": {
		Region:   TierFields{Code: "reg_code", Name: "reg_name"},
		Province: TierFields{Code: "prov_code", Name: "prov_name"},
		City:     TierFields{Code: "citymun_code", Name: "citymun_name"},
		Barangay: TierFields{Code: "brgy_code", Name: "brgy_name"},
	},
	"psgc": {
		Region:   TierFields{Code: "regCode", Name: "regDesc"},
		Province: TierFields{Code: "provCode", Name: "provDesc"},
		City:     TierFields{Code: "citymunCode", Name: "citymunDesc"},
		Barangay: TierFields{Code: "brgyCode", Name: "brgyDesc"},
	},
}

// ErrUnknownPreset 未注册的预置映射名
var ErrUnknownPreset = errors.New("psgc: unknown field preset")

// Preset 返回预置映射
func Preset(name string) (FieldMap, error) {
	m, ok := presets[name]
	if !ok {
		return FieldMap{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownPreset, name, PresetNames())
	}
	return m, nil
}

// PresetNames 已注册的预置映射名（有序）
func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for k := range presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// fieldsFile 映射文件的磁盘结构：可选 preset 作为基底，其余字段逐项覆盖
type fieldsFile struct {
	Preset string `yaml:"preset"`
	FieldMap `yaml:",inline"`
}

// LoadFieldMap 读取 YAML 字段映射文件并覆盖到 base 上
// 约束：文件中 preset 非空时以该预置为基底；空字段不覆盖
func LoadFieldMap(path string, base FieldMap) (FieldMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FieldMap{}, fmt.Errorf("read field map: %w", err)
	}
	var ff fieldsFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return FieldMap{}, fmt.Errorf("parse field map: %w", err)
	}
	out := base
	if ff.Preset != "" {
		p, err := Preset(ff.Preset)
		if err != nil {
			return FieldMap{}, err
		}
		out = p
	}
	out.Region = overlay(out.Region, ff.Region)
	out.Province = overlay(out.Province, ff.Province)
	out.City = overlay(out.City, ff.City)
	out.Barangay = overlay(out.Barangay, ff.Barangay)
	if err := out.Validate(); err != nil {
		return FieldMap{}, err
	}
	return out, nil
}

func overlay(dst, src TierFields) TierFields {
	if src.Code != "" {
		dst.Code = src.Code
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	return dst
}
