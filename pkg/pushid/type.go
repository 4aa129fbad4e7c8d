package pushid

import (
	"errors"
	"fmt"
)

// Alphabet is the push-id character set, in ascending sort order.
const Alphabet = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

const (
	// TimestampLength is the number of leading characters carrying the time.
	TimestampLength = 8
	// RandomLength is the number of trailing disambiguation characters.
	RandomLength = 12
)

var ErrTooShort = errors.New("push id shorter than timestamp prefix")

// DecodeError reports an id whose timestamp prefix cannot be decoded.
type DecodeError struct {
	ID       string
	Position int
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("decode push id %q: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("decode push id %q: invalid character at position %d", e.ID, e.Position)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
