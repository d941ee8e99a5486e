package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// EmailEvents stores a lead's ordered email history as a JSON column.
// Serialized by hand so the same schema works on postgres and the
// sqlite databases the tests run against.
type EmailEvents []EmailEvent

// Value implements driver.Valuer
func (e EmailEvents) Value() (driver.Value, error) {
	if len(e) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(e)
	return string(b), err
}

// Scan implements sql.Scanner
func (e *EmailEvents) Scan(src interface{}) error {
	return scanJSON(src, e)
}

// StringList is a JSON-encoded []string column (lead tags)
type StringList []string

// Value implements driver.Valuer
func (s StringList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

// Scan implements sql.Scanner
func (s *StringList) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// JSONMap is a free-form JSON object column
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(src interface{}) error {
	return scanJSON(src, m)
}

func scanJSON(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}
