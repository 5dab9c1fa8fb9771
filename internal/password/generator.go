// Package password produces random passwords for forced resets.
package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrPoolExhausted is returned when a character pool cannot supply enough
// distinct characters for the requested number of rounds.
var ErrPoolExhausted = errors.New("password: character pool exhausted")

// Candidate pools. Visually ambiguous characters (I, O, l, 0, 1) and
// transport-unsafe symbols are excluded.
const (
	upperPool  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerPool  = "abcdefghijkmnopqrstuvwxyz"
	symbolPool = "#$%&*+-=?@_"
	digitPool  = "23456789"
)

// DefaultRounds matches the historical default of Generate(8).
const DefaultRounds = 8

// Generate produces a random password. The rounds parameter is a repeat
// count, not the output length: each of rounds−1 rounds draws one character
// without replacement from each of the four pools in the fixed order
// uppercase, lowercase, symbol, digit, so the result is 4×(rounds−1)
// characters long. Every pool must hold at least rounds−1 characters or
// ErrPoolExhausted is returned.
func Generate(rounds int) (string, error) {
	n := rounds - 1
	if n < 0 {
		n = 0
	}
	pools := [][]byte{
		[]byte(upperPool),
		[]byte(lowerPool),
		[]byte(symbolPool),
		[]byte(digitPool),
	}
	for _, pool := range pools {
		if len(pool) < n {
			return "", ErrPoolExhausted
		}
	}

	var out strings.Builder
	out.Grow(4 * n)
	for i := 0; i < n; i++ {
		for pi := range pools {
			j, err := randIndex(len(pools[pi]))
			if err != nil {
				return "", err
			}
			out.WriteByte(pools[pi][j])
			pools[pi] = append(pools[pi][:j], pools[pi][j+1:]...)
		}
	}
	return out.String(), nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("password: random source: %w", err)
	}
	return int(v.Int64()), nil
}
