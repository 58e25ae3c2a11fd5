package ism_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/gaiac/pkg/ism"
)

func TestNormalizeName_Synonyms(t *testing.T) {
	tables := ism.DefaultTables()

	// All members of one synonym group normalize to the same token.
	assert.Equal(t, "consumption_trend", tables.NormalizeName("消耗趋势"))
	assert.Equal(t, "consumption_trend", tables.NormalizeName("消耗波动"))
	assert.Equal(t, "consumption_trend", tables.NormalizeName("消耗波动详情"))

	assert.Equal(t, "total_filter", tables.NormalizeName("总筛选项"))
	assert.Equal(t, "material_detail", tables.NormalizeName("素材明细"))
}

func TestNormalizeName_Fallback(t *testing.T) {
	tables := ism.DefaultTables()

	assert.Equal(t, "order_export", tables.NormalizeName("Order Export"))
	assert.Equal(t, "ad_report", tables.NormalizeName("ad-report"))
}

func TestNormalizeType(t *testing.T) {
	tables := ism.DefaultTables()

	assert.Equal(t, "trend", tables.NormalizeType("trend_analysis"))
	assert.Equal(t, "filter", tables.NormalizeType("filter_dimension"))
	assert.Equal(t, "data", tables.NormalizeType("data_display"))
	assert.Equal(t, "custom", tables.NormalizeType("something_else"))
}

func TestInferInterfaceType(t *testing.T) {
	tables := ism.DefaultTables()

	assert.Equal(t, "trend_analysis", tables.InferInterfaceType("消耗趋势"))
	assert.Equal(t, "trend_analysis", tables.InferInterfaceType("cost trend"))
	assert.Equal(t, ism.DefaultInterfaceType, tables.InferInterfaceType("素材明细"))
}

func TestIsTimeLike(t *testing.T) {
	tables := ism.DefaultTables()

	assert.True(t, tables.IsTimeLike("日期"))
	assert.True(t, tables.IsTimeLike("创建时间"))
	assert.True(t, tables.IsTimeLike("update_date"))
	assert.False(t, tables.IsTimeLike("消耗"))
}

func TestIsRequiredName(t *testing.T) {
	tables := ism.DefaultTables()

	assert.True(t, tables.IsRequiredName("公司ID"))
	assert.True(t, tables.IsRequiredName("消耗"))
	assert.False(t, tables.IsRequiredName("ROI"))
}

func TestIsMetadata(t *testing.T) {
	tables := ism.DefaultTables()

	meta := ism.Interface{Name: "文档头部", Type: "info"}
	assert.True(t, tables.IsMetadata(meta))

	// Business keywords veto weak metadata signals.
	business := ism.Interface{
		Name:        "消耗趋势",
		Type:        "info",
		Description: "background overview of the document",
	}
	assert.False(t, tables.IsMetadata(business))

	// Two document indicators classify as metadata.
	weak := ism.Interface{
		ID:          "doc_id_1",
		Name:        "header",
		Type:        "data_display",
		Description: "overview section",
	}
	assert.True(t, tables.IsMetadata(weak))

	regular := ism.Interface{Name: "素材明细", Type: "data_display"}
	assert.False(t, tables.IsMetadata(regular))
}

func TestSharedDescriptiveKeyword(t *testing.T) {
	tables := ism.DefaultTables()

	assert.True(t, tables.SharedDescriptiveKeyword("消耗趋势", "交易趋势"))
	assert.False(t, tables.SharedDescriptiveKeyword("消耗趋势", "素材明细"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "companyid", ism.Slugify("Company ID"))
	assert.Equal(t, "roi", ism.Slugify("ROI"))
	assert.Equal(t, "cafe", ism.Slugify("café"))
	// Pure CJK names keep their lowercased original form.
	assert.Equal(t, "消耗", ism.Slugify("消耗"))
}

func TestStableID(t *testing.T) {
	id1 := ism.StableID("消耗趋势")
	id2 := ism.StableID("消耗趋势")
	other := ism.StableID("素材明细")

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, other)
	assert.Regexp(t, `^iface_[0-9a-f]{8}$`, id1)
}
