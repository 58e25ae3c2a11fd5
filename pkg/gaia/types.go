package gaia

import "strings"

// Type is one of the five wire types Gaia accepts for a field.
type Type string

// The closed Gaia type enumeration.
const (
	TypeString  Type = "string"
	TypeInt64   Type = "int64"
	TypeFloat64 Type = "float64"
	TypeList    Type = "list"
	TypeMap     Type = "map"
)

// Valid reports whether t is a member of the closed type enumeration.
func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeInt64, TypeFloat64, TypeList, TypeMap:
		return true
	}
	return false
}

// MapType maps an abstract data type to a Gaia type. The mapping is
// total: unrecognized inputs map to string, never to an error.
func MapType(dataType string) Type {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "number", "float", "double", "decimal", "real":
		return TypeFloat64
	case "int", "integer", "long", "bigint":
		return TypeInt64
	case "date", "datetime", "timestamp", "time":
		return TypeString
	case "array", "list", "vector":
		return TypeList
	case "object", "json", "map", "dict":
		return TypeMap
	case "string":
		return TypeString
	case "int64":
		return TypeInt64
	case "float64":
		return TypeFloat64
	}
	return TypeString
}

// Analysis type values for Field.AnalysisType.
const (
	AnalysisDimension = "dimension"
	AnalysisMeasure   = "measure"
)

// Component ids with validator-visible semantics.
const (
	// ComponentSourceQuery is the source node every graph must contain.
	ComponentSourceQuery = "lowcode.sql_raw"
	// ComponentJoin carries per-relation configs the validator checks.
	ComponentJoin = "native.join"
)

// Config keys every source-query node must carry.
const (
	ConfigEngine    = "engine"
	ConfigPSM       = "psm"
	ConfigQueryBody = "reqBody"
)

// Field is one entry of a node's fieldList. The metadata keys after
// Expression are always present on the wire, defaulted to empty/zero
// values even when unused. Unknown keys ride in Extra and round-trip.
type Field struct {
	AnalysisType string `json:"analysisType"`
	Title        string `json:"title"`
	Type         Type   `json:"type"`
	DataIndex    string `json:"dataIndex"`
	Expression   string `json:"expression"`

	CalType            string `json:"calType"`
	DataPath           string `json:"dataPath"`
	DateFormat         string `json:"dateFormat"`
	ExtraInfo          string `json:"extra"`
	Help               string `json:"help"`
	ID                 string `json:"id"`
	NuwaAppID          int    `json:"nuwaAppId"`
	NuwaAppIDs         string `json:"nuwaAppIds"`
	NuwaID             int    `json:"nuwaId"`
	NuwaUUID           int    `json:"nuwaUuid"`
	PartitionFieldFlag bool   `json:"partitionFieldFlag"`
	PartitionFormat    string `json:"partitionFormat"`
	ShowType           string `json:"showType"`
	Source             string `json:"source"`

	// Extra holds unrecognized wire keys for forward compatibility.
	Extra map[string]any `json:"-"`
}

// Node is one component instance of a graph. Unknown keys ride in Extra.
type Node struct {
	ID            string         `json:"id"`
	ComponentID   string         `json:"componentId"`
	ComponentType int            `json:"componentType"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Configs       map[string]any `json:"configs"`
	FieldFromList []any          `json:"fieldFromList"`
	FieldList     []Field        `json:"fieldList"`

	// Extra holds unrecognized wire keys for forward compatibility.
	Extra map[string]any `json:"-"`
}

// Edge is a directed dependency between two nodes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Key returns the identity of the edge for dedup purposes.
func (e Edge) Key() string {
	return e.Source + "->" + e.Target
}

// Graph is the compiled, patchable representation of an interface.
type Graph struct {
	InterfaceID   string `json:"interface_id,omitempty"`
	InterfaceName string `json:"interface_name,omitempty"`
	Nodes         []Node `json:"nodes"`
	Edges         []Edge `json:"edges"`
}

// RuleError is a single validation violation.
type RuleError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Error implements the error interface.
func (e RuleError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return e.Path + ": " + e.Reason
}

// ValidationResult is the outcome of running the shared rule set.
// Warnings never affect OK.
type ValidationResult struct {
	OK       bool        `json:"ok"`
	Errors   []RuleError `json:"errors"`
	Warnings []string    `json:"warnings"`
}

// Patch is a structured diff applied to a graph.
type Patch struct {
	AddNodes    []Node       `json:"add_nodes,omitempty"`
	RemoveNodes []NodeRef    `json:"remove_nodes,omitempty"`
	UpdateNodes []NodeUpdate `json:"update_nodes,omitempty"`
	AddEdges    []Edge       `json:"add_edges,omitempty"`
	RemoveEdges []Edge       `json:"remove_edges,omitempty"`
}

// Empty reports whether every section of the patch is empty.
func (p Patch) Empty() bool {
	return len(p.AddNodes) == 0 && len(p.RemoveNodes) == 0 &&
		len(p.UpdateNodes) == 0 && len(p.AddEdges) == 0 && len(p.RemoveEdges) == 0
}

// NodeRef names a node by id.
type NodeRef struct {
	ID string `json:"id"`
}

// NodeUpdate mutates one node via three independent sub-patches.
type NodeUpdate struct {
	ID             string          `json:"id"`
	Set            map[string]any  `json:"set,omitempty"`
	ConfigsPatch   *ConfigsPatch   `json:"configs_patch,omitempty"`
	FieldListPatch *FieldListPatch `json:"fieldList_patch,omitempty"`
}

// ConfigsPatch sets and unsets keys of a node's configs map.
type ConfigsPatch struct {
	Set   map[string]any `json:"set,omitempty"`
	Unset []string       `json:"unset,omitempty"`
}

// FieldListPatch edits a node's fieldList. Fields are keyed by dataIndex.
type FieldListPatch struct {
	Add    []Field       `json:"add,omitempty"`
	Remove []FieldRef    `json:"remove,omitempty"`
	Update []FieldUpdate `json:"update,omitempty"`
}

// FieldRef names a field by its dataIndex key.
type FieldRef struct {
	DataIndex string `json:"dataIndex"`
}

// FieldUpdate applies Set to the field matched by Where.
type FieldUpdate struct {
	Where FieldRef       `json:"where"`
	Set   map[string]any `json:"set"`
}

// PatchResult is the complete outcome of a patch application. Callers
// always get an inspectable value; nothing is raised across this API.
type PatchResult struct {
	OK          bool        `json:"ok"`
	GraphNew    Graph       `json:"graph_new"`
	Payload     string      `json:"payload,omitempty"`
	Errors      []RuleError `json:"errors"`
	Warnings    []string    `json:"warnings"`
	DiffApplied Patch       `json:"diff_applied"`
	Version     string      `json:"version,omitempty"`
}
