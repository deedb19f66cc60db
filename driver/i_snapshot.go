package driver

import "context"

// ISnapshot is a point-in-time ordered read view over stored keys.
// All seek methods return nil when no stored key satisfies the bound.
type ISnapshot interface {
	// Get returns the stored value, nil if the key is absent.
	Get(ctx context.Context, key []byte) (val []byte, err error)

	// SeekGE returns the first stored key >= key.
	SeekGE(ctx context.Context, key []byte) ([]byte, error)
	// SeekGT returns the first stored key > key.
	SeekGT(ctx context.Context, key []byte) ([]byte, error)
	// SeekLE returns the last stored key <= key.
	SeekLE(ctx context.Context, key []byte) ([]byte, error)
	// SeekLT returns the last stored key < key.
	SeekLT(ctx context.Context, key []byte) ([]byte, error)
}
