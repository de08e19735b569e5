package chain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// ExtrinsicError marks an extrinsic that failed on-chain.
type ExtrinsicError struct {
	Module string `json:"module"`
	Name   string `json:"name"`
}

func (e ExtrinsicError) String() string {
	return e.Module + "." + e.Name
}

// Extrinsic is one on-chain call of a block, normalized by the block source.
type Extrinsic struct {
	Index  int             `json:"index"`
	Pallet string          `json:"pallet"`
	Method string          `json:"method"`
	Args   Args            `json:"args"`
	Signer string          `json:"signer,omitempty"`
	Tip    string          `json:"tip,omitempty"`
	Fee    string          `json:"fee,omitempty"`
	Events []Event         `json:"events,omitempty"`
	Error  *ExtrinsicError `json:"error,omitempty"`
}

// Event is emitted while an extrinsic is applied.
type Event struct {
	Pallet string  `json:"pallet"`
	Method string  `json:"method"`
	Data   []Value `json:"data"`
}

// Reserved returns the amount the extrinsic's balances.Reserved events
// reserved on account, as a decimal numeral.
func (e Extrinsic) Reserved(account string) string {
	total := new(big.Int)
	for _, ev := range e.Events {
		if ev.Pallet != "balances" || ev.Method != "Reserved" || len(ev.Data) < 2 {
			continue
		}
		var who string
		if err := json.Unmarshal(ev.Data[0], &who); err != nil || who != account {
			continue
		}
		amount, err := ev.Data[1].Decimal()
		if err != nil {
			continue
		}
		if n, ok := new(big.Int).SetString(amount, 10); ok {
			total.Add(total, n)
		}
	}
	return total.String()
}

// Failed reports whether the call failed on-chain.
func (e Extrinsic) Failed() bool {
	return e.Error != nil
}

func (e Extrinsic) String() string {
	s := fmt.Sprintf("%s.%s", e.Pallet, e.Method)
	if e.Signer != "" {
		s += " signed by " + e.Signer
	}
	if e.Error != nil {
		s += " failed with " + e.Error.String()
	}
	return s
}

// ArgumentDecodeError is returned when an extrinsic argument is absent or
// does not have the expected shape.
type ArgumentDecodeError struct {
	Path string
	Err  error
}

func (e *ArgumentDecodeError) Error() string {
	return fmt.Sprintf("argument %q: %v", e.Path, e.Err)
}

func (e *ArgumentDecodeError) Unwrap() error {
	return e.Err
}

// Args are the named arguments of an extrinsic.
type Args map[string]Value

// Lookup resolves a dotted path like "file.hash" to a value.
func (a Args) Lookup(path string) (Value, error) {
	parts := strings.Split(path, ".")
	v, ok := a[parts[0]]
	if !ok || v.IsNull() {
		return nil, &ArgumentDecodeError{Path: path, Err: fmt.Errorf("missing argument %q", parts[0])}
	}
	for _, p := range parts[1:] {
		f, err := v.Field(p)
		if err != nil {
			return nil, &ArgumentDecodeError{Path: path, Err: err}
		}
		v = f
	}
	return v, nil
}

// DecimalID reads a top-level numeric identifier and converts it to the
// external UUID form.
func (a Args) DecimalID(key string) (string, error) {
	return a.NestedDecimalID(key)
}

// NestedDecimalID reads a numeric identifier at a dotted path (e.g. "link.id")
// and converts it to the external UUID form.
func (a Args) NestedDecimalID(path string) (string, error) {
	v, err := a.Lookup(path)
	if err != nil {
		return "", err
	}
	decimal, err := v.Decimal()
	if err != nil {
		return "", &ArgumentDecodeError{Path: path, Err: err}
	}
	id, err := DecimalToUUID(decimal)
	if err != nil {
		return "", &ArgumentDecodeError{Path: path, Err: err}
	}
	return id.String(), nil
}

// UTF8 reads a byte blob at path and decodes it as UTF-8 text.
func (a Args) UTF8(path string) (string, error) {
	v, err := a.Lookup(path)
	if err != nil {
		return "", err
	}
	s, err := v.Text()
	if err != nil {
		return "", &ArgumentDecodeError{Path: path, Err: err}
	}
	return s, nil
}

// Hex reads a byte blob at path and renders it as a 0x-prefixed hex string.
func (a Args) Hex(path string) (string, error) {
	v, err := a.Lookup(path)
	if err != nil {
		return "", err
	}
	s, err := v.Hex()
	if err != nil {
		return "", &ArgumentDecodeError{Path: path, Err: err}
	}
	return s, nil
}

// Decimal reads a numeric argument at path as a decimal numeral, without
// identifier conversion (balances, amounts).
func (a Args) Decimal(path string) (string, error) {
	v, err := a.Lookup(path)
	if err != nil {
		return "", err
	}
	s, err := v.Decimal()
	if err != nil {
		return "", &ArgumentDecodeError{Path: path, Err: err}
	}
	return s, nil
}

// Account reads a plain JSON string argument at path (account ids).
func (a Args) Account(path string) (string, error) {
	v, err := a.Lookup(path)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", &ArgumentDecodeError{Path: path, Err: err}
	}
	return s, nil
}
