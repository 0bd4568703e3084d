package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an identifier the backend sends either as a JSON number or a string.
// Numeric ids are written back as numbers.
type ID string

// UnmarshalJSON accepts numbers and strings
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids as numbers. Forms like "0123"
// or "+7" stay strings since they are not valid JSON numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// FlexInt is an integer the backend sometimes sends as a string
type FlexInt int

// UnmarshalJSON accepts numbers, numeric strings, and null
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("flexint %q: %w", s, err)
		}
		*f = FlexInt(n)
		return nil
	}
	var fl float64
	if err := json.Unmarshal(data, &fl); err != nil {
		return fmt.Errorf("flexint: %w", err)
	}
	*f = FlexInt(int(fl))
	return nil
}
