package xdiskv

import "errors"

var (
	// ErrRangeBoundsExceeded selector resolution walked past either end of the
	// key space; recoverable, caller should clamp or treat as no such key.
	ErrRangeBoundsExceeded = errors.New("key selector resolves outside the key space")

	// ErrInvalidRange range bounds resolve to begin > end, or a next sibling
	// was requested for a key with no sibling.
	ErrInvalidRange = errors.New("invalid key range")

	// ErrKeyTooLong encoded key exceeds MaxKeySize.
	ErrKeyTooLong = errors.New("key exceeds max key size")

	// ErrEmptyKey operation needs a non empty key.
	ErrEmptyKey = errors.New("empty key")

	// ErrEncodingMismatch a typed numeric mutation hit a stored value whose
	// length does not match the expected fixed width.
	ErrEncodingMismatch = errors.New("stored value width mismatch")

	// ErrValueTooLong operand/value exceeds MaxValueSize.
	ErrValueTooLong = errors.New("value exceeds max value size")

	// ErrTxnDone the transaction was already committed or rolled back.
	ErrTxnDone = errors.New("transaction already committed or rolled back")
)
