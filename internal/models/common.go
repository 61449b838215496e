package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SpecMap is a freely-keyed JSONB-backed map used for the per-category specs
// payloads returned by the Catalog Accessor and for the specs column of each
// *_specs table. Identity fields (id, component_id, created_at) are stripped
// before a SpecMap crosses the catalog package boundary.
type SpecMap map[string]interface{}

// Value implements driver.Valuer for JSONB storage.
func (s SpecMap) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(SpecMap{})
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (s *SpecMap) Scan(value interface{}) error {
	if value == nil {
		*s = make(SpecMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into SpecMap", value)
	}

	return json.Unmarshal(bytes, s)
}

// ComponentMap is a JSONB-backed category -> component id map, used to
// persist a Temp Build's or Saved Build's component selection.
type ComponentMap map[string]uuid.UUID

// Value implements driver.Valuer for JSONB storage.
func (c ComponentMap) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal(ComponentMap{})
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (c *ComponentMap) Scan(value interface{}) error {
	if value == nil {
		*c = make(ComponentMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into ComponentMap", value)
	}

	return json.Unmarshal(bytes, c)
}

// Clone returns a deep copy so callers can mutate without aliasing the
// original map.
func (c ComponentMap) Clone() ComponentMap {
	clone := make(ComponentMap, len(c))
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// ErrorResponse is the minimum shape of every error response (spec.md §7:
// "Error responses always have {error: string} at minimum").
type ErrorResponse struct {
	Error   string            `json:"error"`
	Reason  string            `json:"reason,omitempty"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse wraps a payload with success:true, matching the teacher's
// response envelope.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
