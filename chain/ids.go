package chain

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// maxID is the exclusive upper bound of on-chain identifiers (u128).
var maxID = new(big.Int).Lsh(big.NewInt(1), 128)

// DecodeError is returned when a decimal on-chain identifier cannot be converted.
type DecodeError struct {
	Input  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid decimal identifier %q: %s", e.Input, e.Reason)
}

// DecimalToUUID maps a decimal on-chain identifier to the UUID used off-chain.
// Numerals differing only by leading zeros map to the same UUID.
func DecimalToUUID(decimal string) (uuid.UUID, error) {
	if decimal == "" {
		return uuid.Nil, &DecodeError{Input: decimal, Reason: "empty"}
	}
	for _, c := range decimal {
		if c < '0' || c > '9' {
			return uuid.Nil, &DecodeError{Input: decimal, Reason: "not a decimal numeral"}
		}
	}
	n, ok := new(big.Int).SetString(decimal, 10)
	if !ok {
		return uuid.Nil, &DecodeError{Input: decimal, Reason: "not a decimal numeral"}
	}
	if n.Cmp(maxID) >= 0 {
		return uuid.Nil, &DecodeError{Input: decimal, Reason: "exceeds 128 bits"}
	}
	var id uuid.UUID
	n.FillBytes(id[:])
	return id, nil
}

// UUIDToDecimal is the inverse of DecimalToUUID.
func UUIDToDecimal(id uuid.UUID) string {
	return new(big.Int).SetBytes(id[:]).String()
}
