package ism

import (
	"sort"
	"strings"
)

// Tables holds the keyword->classification lookups the normalizer and
// merger consult. They are data, not code: callers can swap or extend
// them (e.g. from configuration) without touching the merge or compile
// algorithms. The zero value is unusable; start from DefaultTables.
type Tables struct {
	// ExpressionLexicon maps well-known field names to expressions.
	ExpressionLexicon map[string]string
	// TimeKeywords mark a field name as time-like (dataType "date").
	TimeKeywords []string
	// RequiredKeywords mark a field as required.
	RequiredKeywords []string
	// NameSynonyms maps interface-name synonyms to canonical tokens.
	NameSynonyms map[string]string
	// TypeAliases maps raw interface types to normalized tokens.
	TypeAliases []TypeAlias
	// DescriptiveKeywords back the shared-keyword merge condition.
	DescriptiveKeywords []string
	// AllowedTypes enumerates raw types admitted to the canonical set.
	AllowedTypes []string
	// MetadataKeywords strictly identify pure document-metadata blocks.
	MetadataKeywords []string
	// DocumentIndicators weakly identify document metadata; two or more
	// matches classify a candidate as metadata.
	DocumentIndicators []string
	// MetadataTypes are interface types that are metadata by definition.
	MetadataTypes []string
	// BusinessKeywords veto a metadata classification.
	BusinessKeywords []string
}

// TypeAlias is one raw-type to normalized-token mapping.
type TypeAlias struct {
	Raw        string
	Normalized string
}

// DefaultTables returns the built-in lookup tables.
func DefaultTables() Tables {
	return Tables{
		ExpressionLexicon: map[string]string{
			"公司ID":  "companyId",
			"公司名称":  "companyName",
			"公司":    "company",
			"时间":    "time",
			"日期":    "date",
			"消耗":    "cost",
			"ROI":   "roi",
			"GMV":   "gmv",
			"点击量":   "clicks",
			"曝光量":   "impressions",
			"转化率":   "conversionRate",
			"收入":    "revenue",
			"利润":    "profit",
		},
		TimeKeywords:     []string{"时间", "日期", "时间戳", "time", "date"},
		RequiredKeywords: []string{"公司", "公司id", "时间", "日期", "消耗", "company", "time", "date", "cost"},
		NameSynonyms: map[string]string{
			"总筛选项":    "total_filter",
			"筛选条件":    "filter_condition",
			"查询条件":    "query_condition",
			"过滤器":     "filter",
			"消耗趋势":    "consumption_trend",
			"消耗波动":    "consumption_trend",
			"消耗波动详情":  "consumption_trend",
			"广告消耗":    "ad_consumption",
			"交易趋势":    "transaction_trend",
			"成交趋势":    "transaction_trend",
			"订单趋势":    "transaction_trend",
			"素材明细":    "material_detail",
			"数据明细":    "material_detail",
			"列表详情":    "material_detail",
			"分析":      "analysis",
			"统计":      "statistics",
			"报表":      "report",
			"列表":      "list",
		},
		TypeAliases: []TypeAlias{
			{"filter_dimension", "filter"},
			{"data_display", "data"},
			{"trend_analysis", "trend"},
			{"analytics_metric", "metric"},
			{"export_report", "export"},
			{"custom_action", "action"},
			{"crud", "crud"},
			{"fallback", "fallback"},
			{"emergency", "emergency"},
			{"custom", "custom"},
			{"unknown", "unknown"},
		},
		DescriptiveKeywords: []string{"趋势", "分析", "统计", "明细", "列表", "筛选", "查询"},
		AllowedTypes: []string{
			"filter_dimension", "data_display", "trend_analysis",
			"analytics_metric", "export_report", "custom_action",
			"crud", "config", "analytics", "fallback", "basic", "emergency",
		},
		MetadataKeywords: []string{
			"文档头部", "文档信息", "元数据", "文档metadata", "document header",
			"document info", "文档overview", "文档introduction",
		},
		DocumentIndicators: []string{
			"文档id", "doc_id", "source", "url", "背景", "概述", "介绍",
			"documentid", "docid", "sourceurl", "background", "overview", "introduction",
		},
		MetadataTypes: []string{"info", "metadata", "document", "header"},
		BusinessKeywords: []string{
			"筛选", "查询", "列表", "分析", "统计", "报表", "导出", "管理",
			"明细", "详情", "趋势", "消耗", "素材", "广告", "投放", "效果",
		},
	}
}

// NormalizeName maps an interface name to its canonical synonym token,
// falling back to a slugified form of the raw name. Exact table matches
// win; otherwise a containment match against the table is attempted.
func (t Tables) NormalizeName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := t.NameSynonyms[lower]; ok {
		return canonical
	}
	if lower != "" {
		// Containment fallback; sorted scan keeps the result stable.
		patterns := make([]string, 0, len(t.NameSynonyms))
		for pattern := range t.NameSynonyms {
			patterns = append(patterns, pattern)
		}
		sort.Strings(patterns)
		for _, pattern := range patterns {
			if strings.Contains(lower, pattern) || strings.Contains(pattern, lower) {
				return t.NameSynonyms[pattern]
			}
		}
	}
	replacer := strings.NewReplacer(" ", "_", "-", "_")
	return replacer.Replace(lower)
}

// NormalizeType maps a raw interface type to its canonical token;
// unrecognized types normalize to "custom".
func (t Tables) NormalizeType(rawType string) string {
	lower := strings.ToLower(strings.TrimSpace(rawType))
	for _, alias := range t.TypeAliases {
		if alias.Raw == lower {
			return alias.Normalized
		}
	}
	return "custom"
}

// trendNameKeywords mark an interface name as trend-like for type
// inference.
var trendNameKeywords = []string{"趋势", "波动", "trend"}

// InferInterfaceType guesses a raw type for a candidate that declares
// none. Trend-like names become trend interfaces; everything else falls
// back to the display default.
func (t Tables) InferInterfaceType(name string) string {
	if containsAny(strings.ToLower(name), trendNameKeywords) {
		return "trend_analysis"
	}
	return DefaultInterfaceType
}

// TypeAllowed reports whether a raw interface type is admitted to the
// canonical set.
func (t Tables) TypeAllowed(rawType string) bool {
	for _, allowed := range t.AllowedTypes {
		if rawType == allowed {
			return true
		}
	}
	return false
}

// IsTimeLike reports whether a field name names a time-like column.
func (t Tables) IsTimeLike(name string) bool {
	return containsAny(strings.ToLower(name), t.TimeKeywords)
}

// IsRequiredName reports whether a field name is on the required allowlist.
func (t Tables) IsRequiredName(name string) bool {
	return containsAny(strings.ToLower(name), t.RequiredKeywords)
}

// IsMetadata classifies a candidate as pure document metadata. Business
// keywords in the name or description veto the classification.
func (t Tables) IsMetadata(iface Interface) bool {
	name := strings.ToLower(iface.Name)
	typ := strings.ToLower(iface.Type)
	id := strings.ToLower(iface.ID)
	desc := strings.ToLower(iface.Description)

	for _, kw := range t.MetadataKeywords {
		if strings.Contains(name, kw) || strings.Contains(typ, kw) ||
			strings.Contains(id, kw) || strings.Contains(desc, kw) {
			return true
		}
	}

	for _, kw := range t.BusinessKeywords {
		if strings.Contains(name, kw) || strings.Contains(desc, kw) {
			return false
		}
	}

	matches := 0
	for _, indicator := range t.DocumentIndicators {
		if strings.Contains(id, indicator) || strings.Contains(desc, indicator) {
			matches++
		}
	}
	if matches >= 2 {
		return true
	}

	for _, mt := range t.MetadataTypes {
		if typ == mt {
			return true
		}
	}

	return false
}

// SharedDescriptiveKeyword reports whether both names contain at least
// one keyword from the descriptive set.
func (t Tables) SharedDescriptiveKeyword(name1, name2 string) bool {
	n1 := strings.ToLower(name1)
	n2 := strings.ToLower(name2)
	for _, kw := range t.DescriptiveKeywords {
		if strings.Contains(n1, kw) && strings.Contains(n2, kw) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
