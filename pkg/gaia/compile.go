package gaia

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/leapstack-labs/gaiac/pkg/ism"
)

// Defaults for the source-query node configs.
const (
	DefaultEngine = "doris"
	DefaultPSM    = "var:CLUSTER_DSN"
)

// CompileOptions tune the generated source node. Zero values select the
// defaults.
type CompileOptions struct {
	Engine string
	PSM    string
}

func (o CompileOptions) engine() string {
	if o.Engine == "" {
		return DefaultEngine
	}
	return o.Engine
}

func (o CompileOptions) psm() string {
	if o.PSM == "" {
		return DefaultPSM
	}
	return o.PSM
}

// Compile lowers a normalized interface to a Gaia graph: one SQL source
// node carrying the full field list, dimensions before measures. The
// returned result is the shared rule set run over the fresh graph;
// compilation itself never fails.
func Compile(iface ism.Interface, opts CompileOptions) (Graph, ValidationResult) {
	fieldList := compileFieldList(iface.Fields)

	cols := make([]string, 0, len(fieldList))
	for _, f := range fieldList {
		cols = append(cols, f.DataIndex)
	}

	sqlID := "n_sql_" + hash8(iface.ID+"_sql")
	node := Node{
		ID:            sqlID,
		ComponentID:   ComponentSourceQuery,
		ComponentType: 2,
		Name:          "SQL-" + iface.Name,
		Type:          "lowcode",
		Configs: map[string]any{
			ConfigEngine:    opts.engine(),
			ConfigPSM:       opts.psm(),
			ConfigQueryBody: buildQueryBody(iface.Type, cols),
			"lang":          "",
			"retryConfig":   map[string]any{},
			"version":       "v1.0",
		},
		FieldFromList: []any{},
		FieldList:     fieldList,
	}

	g := Graph{
		InterfaceID:   iface.ID,
		InterfaceName: iface.Name,
		Nodes:         []Node{node},
		Edges:         []Edge{},
	}

	return g, Validate(g)
}

// compileFieldList lowers ISM fields to wire fields, dimensions first
// so table layouts group them, preserving relative order within each
// analysis type.
func compileFieldList(fields []ism.Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Kind != ism.KindMeasure {
			out = append(out, compileField(f, AnalysisDimension, "string"))
		}
	}
	for _, f := range fields {
		if f.Kind == ism.KindMeasure {
			out = append(out, compileField(f, AnalysisMeasure, "number"))
		}
	}
	return out
}

func compileField(f ism.Field, analysisType, defaultDataType string) Field {
	dataType := f.DataType
	if dataType == "" {
		dataType = defaultDataType
	}
	title := f.Name
	if title == "" {
		title = f.Expression
	}
	return Field{
		AnalysisType: analysisType,
		Title:        title,
		Type:         MapType(dataType),
		DataIndex:    f.Expression,
		Expression:   f.Expression,

		CalType:  "normal",
		ShowType: "default",
	}
}

// buildQueryBody renders the minimal runnable SQL template. Trend
// interfaces with a time column get an ORDER BY on the first one.
func buildQueryBody(ifaceType string, cols []string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM tab WHERE 1=1")

	if ifaceType == "trend" || ifaceType == "trend_analysis" {
		if col := firstTimeColumn(cols); col != "" {
			b.WriteString(" ORDER BY ")
			b.WriteString(col)
		}
	}

	b.WriteString(" /* TODO: replace with real source table */")
	return b.String()
}

var timeColumnKeywords = []string{"day", "date", "time", "month", "year"}

func firstTimeColumn(cols []string) string {
	for _, col := range cols {
		lower := strings.ToLower(col)
		for _, kw := range timeColumnKeywords {
			if strings.Contains(lower, kw) {
				return col
			}
		}
	}
	return ""
}

// hash8 is the stable node-id digest: the first 8 hex characters of the
// input's SHA-256.
func hash8(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}
