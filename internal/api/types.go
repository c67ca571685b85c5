package api

import (
	"ph-address/internal/cascade"
	"ph-address/internal/form"
)

// 文档注释：对外返回结构
// 约束：字段稳定；widget 结构与服务端渲染的 form.SelectView 一致，前端可直接渲染

type optionsResult struct {
	Tier   string `json:"tier"`
	Parent string `json:"parent"`
	form.SelectView
}

type cascadeResult struct {
	Region      form.SelectView   `json:"region"`
	Province    form.SelectView   `json:"province"`
	City        form.SelectView   `json:"citymun"`
	Barangay    form.SelectView   `json:"barangay"`
	RegionAlias string            `json:"region_alias"`
	Selection   cascade.Selection `json:"selection"`
	// Hinted 区域由客户端 IP 推断
	Hinted    bool `json:"hinted,omitempty"`
	Available bool `json:"available"`
}

type aliasResult struct {
	Code  string `json:"code"`
	Alias string `json:"alias"`
}

type reloadResult struct {
	Records int            `json:"records"`
	Skipped int            `json:"skipped"`
	Units   map[string]int `json:"units"`
}

type healthResult struct {
	OK         bool           `json:"ok"`
	IndexReady bool           `json:"index_ready"`
	Commit     string         `json:"commit"`
	Units      map[string]int `json:"units,omitempty"`
}

type errorResult struct {
	Error string `json:"error"`
}
