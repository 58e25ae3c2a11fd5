package ism

import (
	"encoding/json"
	"fmt"
)

// DecodeCandidates decodes raw extractor output into candidates. The
// input may be a bare JSON array of candidate objects or an object
// wrapping one under "candidates" or "interfaces". Malformed entries
// are converted to pending diagnostics and excluded; they never abort
// the document.
func DecodeCandidates(data []byte) ([]Candidate, []string, error) {
	items, err := candidateItems(data)
	if err != nil {
		return nil, nil, err
	}

	var candidates []Candidate
	var pending []string
	for i, item := range items {
		cand, err := decodeCandidate(item)
		if err != nil {
			pending = append(pending, fmt.Sprintf("candidate[%d]: %v", i, err))
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates, pending, nil
}

// candidateItems unwraps the supported envelope shapes.
func candidateItems(data []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	var envelope struct {
		Candidates []json.RawMessage `json:"candidates"`
		Interfaces []json.RawMessage `json:"interfaces"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("candidates must be a JSON array or envelope object: %w", err)
	}
	if envelope.Candidates != nil {
		return envelope.Candidates, nil
	}
	return envelope.Interfaces, nil
}

// rawCandidate is the loose wire shape of one candidate. List-valued
// keys stay raw so a wrong container type degrades only that key.
type rawCandidate struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Fields      json.RawMessage   `json:"fields"`
	Dimensions  json.RawMessage   `json:"dimensions"`
	Metrics     json.RawMessage   `json:"metrics"`
	Operations  []string          `json:"operations"`
	Provenance  provenanceList    `json:"provenance"`
	BatchIndex  *int              `json:"batchIndex"`
	Batch       []json.RawMessage `json:"batch"`
}

// provenanceList accepts either a single string or a list of strings.
type provenanceList []string

func (p *provenanceList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			*p = provenanceList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("provenance must be a string or string array")
	}
	*p = provenanceList(many)
	return nil
}

// rawField tolerates loosely typed field entries.
type rawField struct {
	Name        string `json:"name"`
	Expression  string `json:"expression"`
	DataType    string `json:"data_type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

func decodeCandidate(data json.RawMessage) (Candidate, error) {
	var raw rawCandidate
	if err := json.Unmarshal(data, &raw); err != nil {
		return Candidate{}, fmt.Errorf("candidate must be an object: %v", err)
	}

	cand := Candidate{
		ID:          raw.ID,
		Name:        raw.Name,
		Type:        raw.Type,
		Description: raw.Description,
		Operations:  raw.Operations,
		Provenance:  []string(raw.Provenance),
		BatchIndex:  -1,
	}
	if raw.BatchIndex != nil {
		cand.BatchIndex = *raw.BatchIndex
	}

	decodeFieldList(&cand, raw.Fields, "fields", "")
	decodeFieldList(&cand, raw.Dimensions, "dimensions", KindDimension)
	decodeFieldList(&cand, raw.Metrics, "metrics", KindMeasure)

	for i, sub := range raw.Batch {
		subCand, err := decodeCandidate(sub)
		if err != nil {
			cand.decodeWarnings = append(cand.decodeWarnings,
				fmt.Sprintf("batch[%d]: %v", i, err))
			continue
		}
		cand.Batch = append(cand.Batch, subCand)
	}

	return cand, nil
}

// decodeFieldList appends one list-valued key's fields onto the
// candidate. A non-array container is a structural error against the
// candidate; a non-object element is skipped with a warning.
func decodeFieldList(cand *Candidate, data json.RawMessage, key string, kind FieldKind) {
	if len(data) == 0 || string(data) == "null" {
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		cand.containerErrors = append(cand.containerErrors,
			fmt.Sprintf("%s must be an array", key))
		return
	}

	for i, item := range items {
		var rf rawField
		if err := json.Unmarshal(item, &rf); err != nil {
			cand.decodeWarnings = append(cand.decodeWarnings,
				fmt.Sprintf("skip non-object field %s[%d]", key, i))
			continue
		}
		cand.Fields = append(cand.Fields, Field{
			Name:        rf.Name,
			Expression:  rf.Expression,
			DataType:    rf.DataType,
			Required:    rf.Required,
			Description: rf.Description,
			Kind:        kind,
		})
	}
}
