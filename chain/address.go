package chain

import (
	"bytes"
	"math/big"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var ss58Prefix = []byte("SS58PRE")

// ValidAddress reports whether s is a well-formed SS58 account address
// carrying a 32-byte public key and a valid checksum.
func ValidAddress(s string) bool {
	raw, ok := decodeBase58(s)
	if !ok {
		return false
	}
	var prefixLen int
	switch len(raw) {
	case 1 + 32 + 2:
		prefixLen = 1
	case 2 + 32 + 2:
		prefixLen = 2
	default:
		return false
	}
	if prefixLen == 1 && raw[0] >= 64 {
		return false
	}
	if prefixLen == 2 && raw[0]&0b0100_0000 == 0 {
		return false
	}
	payload := raw[:len(raw)-2]
	sum := blake2b.Sum512(append(append([]byte{}, ss58Prefix...), payload...))
	return bytes.Equal(sum[:2], raw[len(raw)-2:])
}

func decodeBase58(s string) ([]byte, bool) {
	if s == "" {
		return nil, false
	}
	n := new(big.Int)
	radix := big.NewInt(58)
	for _, c := range s {
		i := strings.IndexRune(base58Alphabet, c)
		if i < 0 {
			return nil, false
		}
		n.Mul(n, radix)
		n.Add(n, big.NewInt(int64(i)))
	}
	zeros := 0
	for zeros < len(s) && s[zeros] == '1' {
		zeros++
	}
	return append(make([]byte, zeros), n.Bytes()...), true
}
