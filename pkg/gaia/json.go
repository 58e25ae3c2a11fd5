package gaia

import "encoding/json"

// fieldKnownKeys are the wire keys owned by Field's struct fields.
var fieldKnownKeys = []string{
	"analysisType", "title", "type", "dataIndex", "expression",
	"calType", "dataPath", "dateFormat", "extra", "help", "id",
	"nuwaAppId", "nuwaAppIds", "nuwaId", "nuwaUuid",
	"partitionFieldFlag", "partitionFormat", "showType", "source",
}

// nodeKnownKeys are the wire keys owned by Node's struct fields.
var nodeKnownKeys = []string{
	"id", "componentId", "componentType", "name", "type",
	"configs", "fieldFromList", "fieldList",
}

type fieldAlias Field

// MarshalJSON emits all fixed metadata keys and folds Extra back in.
// Known keys always win over Extra on conflict.
func (f Field) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(fieldAlias(f))
	if err != nil {
		return nil, err
	}
	if len(f.Extra) == 0 {
		return base, nil
	}
	return mergeExtra(base, f.Extra)
}

// UnmarshalJSON captures unrecognized keys into Extra so they survive a
// round trip through the patch engine.
func (f *Field) UnmarshalJSON(data []byte) error {
	var a fieldAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*f = Field(a)
	extra, err := splitExtra(data, fieldKnownKeys)
	if err != nil {
		return err
	}
	f.Extra = extra
	return nil
}

type nodeAlias Node

// MarshalJSON guarantees configs, fieldFromList and fieldList are present
// on the wire even when empty, and folds Extra back in.
func (n Node) MarshalJSON() ([]byte, error) {
	a := nodeAlias(n)
	if a.Configs == nil {
		a.Configs = map[string]any{}
	}
	if a.FieldFromList == nil {
		a.FieldFromList = []any{}
	}
	if a.FieldList == nil {
		a.FieldList = []Field{}
	}
	base, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	if len(n.Extra) == 0 {
		return base, nil
	}
	return mergeExtra(base, n.Extra)
}

// UnmarshalJSON captures unrecognized keys into Extra.
func (n *Node) UnmarshalJSON(data []byte) error {
	var a nodeAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = Node(a)
	extra, err := splitExtra(data, nodeKnownKeys)
	if err != nil {
		return err
	}
	n.Extra = extra
	return nil
}

// mergeExtra overlays unknown keys onto the marshaled known keys. The
// result is re-marshaled through a map, so keys come out sorted.
func mergeExtra(base []byte, extra map[string]any) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, known := m[k]; !known {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// splitExtra returns the keys of data not claimed by known, or nil.
func splitExtra(data []byte, known []string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(m, k)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

// Clone deep-copies the graph through its wire form. Every mutating
// operation clones first; callers must not alias a pre-patch graph.
func (g Graph) Clone() (Graph, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return Graph{}, err
	}
	var out Graph
	if err := json.Unmarshal(b, &out); err != nil {
		return Graph{}, err
	}
	return out, nil
}

// Payload serializes the {nodes, edges} payload submitted to the graph
// store. Empty collections serialize as [] rather than null.
func (g Graph) Payload() (string, error) {
	p := struct {
		Nodes []Node `json:"nodes"`
		Edges []Edge `json:"edges"`
	}{g.Nodes, g.Edges}
	if p.Nodes == nil {
		p.Nodes = []Node{}
	}
	if p.Edges == nil {
		p.Edges = []Edge{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// canonicalNodeJSON is the identity used to decide whether a re-added
// node is byte-identical to the existing one.
func canonicalNodeJSON(n Node) (string, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return "", err
	}
	out, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
