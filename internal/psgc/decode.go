package psgc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrShape 顶层结构既不是数组也不是带 RECORDS 字段的对象
var ErrShape = errors.New("psgc: unsupported document shape")

var utf8BOM = []byte("\xef\xbb\xbf")

// decodeRows 将单个 JSON 文档归一化为行列表
// 约束：支持裸数组与 {"RECORDS": [...]}（字段名大小写不敏感）；数值保留为 json.Number；
// 忽略 UTF-8 BOM
func decodeRows(b []byte) ([]map[string]any, error) {
	b = bytes.TrimSpace(bytes.TrimPrefix(b, utf8BOM))
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrShape)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	switch b[0] {
	case '[':
		var rows []map[string]any
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return rows, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		for k, raw := range obj {
			if !strings.EqualFold(k, "records") {
				continue
			}
			d2 := json.NewDecoder(bytes.NewReader(raw))
			d2.UseNumber()
			var rows []map[string]any
			if err := d2.Decode(&rows); err != nil {
				return nil, fmt.Errorf("decode %s: %w", k, err)
			}
			return rows, nil
		}
		return nil, fmt.Errorf("%w: object without RECORDS field", ErrShape)
	}
	return nil, fmt.Errorf("%w: leading %q", ErrShape, b[0])
}

// adapt 按字段映射把原始行转换为 Record，只读取 0..depth 层
func adapt(rows []map[string]any, m FieldMap, depth Tier) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		var r Record
		for _, t := range Tiers {
			if t > depth {
				break
			}
			f := m.At(t)
			u := Unit{Code: toString(row[f.Code])}
			if f.Name != "" {
				u.Name = cleanName(toString(row[f.Name]))
			}
			r.set(t, u)
		}
		out = append(out, r)
	}
	return out
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

// cleanName 去除首尾空白并统一为 NFC，使组合/分解形式的 Ñ 等字符一致
func cleanName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
