package tikv

import "errors"

var (
	ErrKeyExist     = errors.New("key exist")
	ErrTxnConflict  = errors.New("txn commit conflict, retries exhausted")
	ErrNilTxnHandle = errors.New("nil txn handle")
)

const (
	// DefaultScanLimit pairs fetched by one Scan when the caller passes <= 0
	DefaultScanLimit = 256
)
