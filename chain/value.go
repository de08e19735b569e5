package chain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Value is a chain argument as delivered by the block source, kept in its
// JSON form until a reader asks for a concrete shape.
type Value json.RawMessage

// MarshalJSON returns the raw JSON of the value.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// UnmarshalJSON keeps a copy of the raw JSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = append((*v)[0:0], data...)
	return nil
}

// IsNull reports whether the value is absent or JSON null.
func (v Value) IsNull() bool {
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Field returns a named field of a structured value.
func (v Value) Field(name string) (Value, error) {
	var fields map[string]Value
	if err := json.Unmarshal(v, &fields); err != nil {
		return nil, fmt.Errorf("not a structure: %w", err)
	}
	f, ok := fields[name]
	if !ok || f.IsNull() {
		return nil, fmt.Errorf("missing field %q", name)
	}
	return f, nil
}

// Decimal returns the value as a decimal numeral. Both JSON strings and
// JSON numbers are accepted; u128 values usually arrive as strings.
func (v Value) Decimal() (string, error) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return "", fmt.Errorf("not a number: %w", err)
	}
	switch t := raw.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(strings.TrimSpace(t))
	default:
		return "", errors.New("not a number")
	}
	return n.String(), nil
}

// Bytes returns the value as a byte blob. Hex strings ("0x...") and JSON
// arrays of bytes are accepted.
func (v Value) Bytes() ([]byte, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
			return nil, errors.New("byte string without 0x prefix")
		}
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid hex: %w", err)
		}
		return b, nil
	}
	var ints []int
	if err := json.Unmarshal(v, &ints); err != nil {
		return nil, errors.New("not a byte blob")
	}
	b := make([]byte, len(ints))
	for i, x := range ints {
		if x < 0 || x > 255 {
			return nil, fmt.Errorf("byte %d out of range: %d", i, x)
		}
		b[i] = byte(x)
	}
	return b, nil
}

// Text decodes a byte blob as UTF-8.
func (v Value) Text() (string, error) {
	b, err := v.Bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("invalid UTF-8")
	}
	return string(b), nil
}

// Hex renders a byte blob as a lowercase 0x-prefixed hex string.
func (v Value) Hex() (string, error) {
	b, err := v.Bytes()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}
