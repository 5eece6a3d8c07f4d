package league

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is an ordered list of ids stored as a JSON array in relational
// columns. Document stores encode it as a native array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	encoded, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("string list: unsupported type %T", value)
	}

	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	*l = items
	return nil
}

func (l StringList) Contains(value string) bool {
	for _, item := range l {
		if item == value {
			return true
		}
	}
	return false
}

// With returns a copy of l with value appended when absent.
func (l StringList) With(value string) StringList {
	if l.Contains(value) {
		return append(StringList{}, l...)
	}
	out := make(StringList, 0, len(l)+1)
	out = append(out, l...)
	return append(out, value)
}
