package documents

import (
	"encoding/json"
	"reflect"
	"time"
)

// ID tipe untuk Document
type DocID string

// Metadata value object persisted alongside every stored blob
type Metadata struct {
	ID          DocID          `json:"id"`
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	Size        int64          `json:"size"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Checksum    string         `json:"checksum"`
	Tags        []string       `json:"tags"`
	Attributes  map[string]any `json:"attributes"`
}

// HasTags reports whether every tag in want is present on the document.
func (m *Metadata) HasTags(want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(m.Tags))
	for _, t := range m.Tags {
		have[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

// MatchesAttributes reports whether every key/value pair in want is present
// in Attributes with an equal value. A missing key never matches. Values are
// compared in their JSON shape: attributes round-trip through a catalog's
// JSON encoding, so a stored int comes back as float64 and must still equal
// an int filter value.
func (m *Metadata) MatchesAttributes(want map[string]any) bool {
	for k, v := range want {
		got, ok := m.Attributes[k]
		if !ok || !reflect.DeepEqual(jsonShape(got), jsonShape(v)) {
			return false
		}
	}
	return true
}

// jsonShape maps a value onto its decoded-JSON form: numbers become float64,
// slices []any, maps map[string]any.
func jsonShape(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// Aggregate Root: Reference, the immutable handle issued by store/search
type Reference struct {
	ID       DocID    `json:"id"`
	Location string   `json:"location"`
	Metadata Metadata `json:"metadata"`
}
