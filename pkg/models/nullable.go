package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/fxamacker/cbor/v2"
)

// NullableString is an optional string field whose domain representation of
// "unset" is the empty string, while both backends persist unset as NULL.
// The mapping happens at the marshaling boundary so callers never see a nil
// and stores never see "". This is the single most load-bearing
// normalization rule in the data model: foreign-key-like columns must be
// absent, not empty-string, or referential queries on the remote backend
// silently match nothing.
type NullableString string

func (n NullableString) IsSet() bool { return n != "" }

func (n NullableString) Value() (driver.Value, error) {
	if n == "" {
		return nil, nil
	}
	return string(n), nil
}

func (n *NullableString) Scan(value any) error {
	if value == nil {
		*n = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*n = NullableString(v)
	case []byte:
		*n = NullableString(v)
	default:
		return fmt.Errorf("cannot scan type %T into NullableString", value)
	}
	return nil
}

func (n NullableString) MarshalCBOR() ([]byte, error) {
	if n == "" {
		return cbor.Marshal(nil)
	}
	return cbor.Marshal(string(n))
}

func (n *NullableString) UnmarshalCBOR(data []byte) error {
	var s *string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*n = ""
		return nil
	}
	*n = NullableString(*s)
	return nil
}

// Millis is a wall-clock timestamp in milliseconds since the Unix epoch.
// Some backends return large integers as strings to avoid precision loss, so
// unmarshaling accepts both forms.
type Millis int64

func (m Millis) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *Millis) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*m = 0
	case int64:
		*m = Millis(v)
	case float64:
		*m = Millis(v)
	case string:
		return m.parse(v)
	case []byte:
		return m.parse(string(v))
	default:
		return fmt.Errorf("cannot scan type %T into Millis", value)
	}
	return nil
}

func (m *Millis) parse(s string) error {
	if s == "" {
		*m = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid millisecond timestamp %q: %w", s, err)
	}
	*m = Millis(n)
	return nil
}

func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(m))
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*m = Millis(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid millisecond timestamp %s", data)
	}
	return m.parse(s)
}

func (m Millis) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(int64(m))
}

func (m *Millis) UnmarshalCBOR(data []byte) error {
	var n int64
	if err := cbor.Unmarshal(data, &n); err == nil {
		*m = Millis(n)
		return nil
	}
	var s *string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*m = 0
		return nil
	}
	return m.parse(*s)
}

// Factor is a computed floating-point field (demand factor, elapsed time)
// that can legitimately be NaN or infinite after in-memory arithmetic.
// Those values are unrepresentable in JSON and rejected by the remote
// backend, so they persist as NULL and read back as zero.
type Factor float64

func (f Factor) finite() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (f Factor) Value() (driver.Value, error) {
	if !f.finite() {
		return nil, nil
	}
	return float64(f), nil
}

func (f *Factor) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*f = 0
	case float64:
		*f = Factor(v)
	case int64:
		*f = Factor(v)
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid factor %q: %w", v, err)
		}
		*f = Factor(n)
	default:
		return fmt.Errorf("cannot scan type %T into Factor", value)
	}
	return nil
}

func (f Factor) MarshalJSON() ([]byte, error) {
	if !f.finite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

func (f *Factor) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Factor(v)
	return nil
}

func (f Factor) MarshalCBOR() ([]byte, error) {
	if !f.finite() {
		return cbor.Marshal(nil)
	}
	return cbor.Marshal(float64(f))
}

func (f *Factor) UnmarshalCBOR(data []byte) error {
	var v *float64
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*f = 0
		return nil
	}
	*f = Factor(*v)
	return nil
}
