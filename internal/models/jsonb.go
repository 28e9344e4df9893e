package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// JSONB stores arbitrary JSON in a jsonb (postgres) or text (sqlite) column.
type JSONB []byte

func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	return string(j), nil
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = JSONB("{}")
	case []byte:
		*j = append(JSONB(nil), v...)
	case string:
		*j = JSONB(v)
	default:
		return fmt.Errorf("jsonb scan: unsupported type %T", value)
	}
	return nil
}

// MarshalJSON emits the stored document as-is instead of base64.
func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("{}"), nil
	}
	return []byte(j), nil
}

func (j *JSONB) UnmarshalJSON(b []byte) error {
	*j = append(JSONB(nil), b...)
	return nil
}

// NewJSONB marshals v into a JSONB value.
func NewJSONB(v any) (JSONB, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsonb marshal: %w", err)
	}
	return JSONB(b), nil
}

// Map decodes the document into a generic map.
func (j JSONB) Map() (map[string]any, error) {
	m := map[string]any{}
	if len(j) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(j, &m); err != nil {
		return nil, fmt.Errorf("jsonb unmarshal: %w", err)
	}
	return m, nil
}
