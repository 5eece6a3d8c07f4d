package editrequest

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Payload is the raw proposedData JSON object, stored as text.
type Payload []byte

func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	return string(p), nil
}

func (p *Payload) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = Payload("{}")
	case string:
		*p = Payload(v)
	case []byte:
		*p = append(Payload(nil), v...)
	default:
		return fmt.Errorf("payload: unsupported type %T", value)
	}
	return nil
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("{}"), nil
	}
	return p, nil
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("payload: invalid json")
	}
	*p = append(Payload(nil), data...)
	return nil
}
