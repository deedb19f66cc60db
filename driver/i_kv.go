package driver

import "context"

// KVPair is a stored key value pair.
type KVPair struct {
	Key   []byte
	Value []byte
}

// IKV is the non-transactional surface of the backing store client.
type IKV interface {
	Get(ctx context.Context, key []byte) (val []byte, err error)
	BatchGet(ctx context.Context, keys [][]byte) (vals [][]byte, err error)

	Put(ctx context.Context, key, value []byte) error
	PutNotExists(ctx context.Context, key, value []byte) error
	BatchPut(ctx context.Context, keys, values [][]byte) error

	Delete(ctx context.Context, key []byte) error
	BatchDelete(ctx context.Context, keys [][]byte) error

	// Scan queries continuous kv pairs in range [startKey, endKey), up to limit pairs.
	// The returned keys are in lexicographical order.
	// If endKey is empty, it means unbounded.
	Scan(ctx context.Context, startKey, endKey []byte, limit int) (keys [][]byte, values [][]byte, err error)

	// ReverseScan queries continuous kv pairs in range [endKey, startKey), up to limit pairs.
	// The returned keys are in reversed lexicographical order.
	ReverseScan(ctx context.Context, startKey, endKey []byte, limit int) (keys [][]byte, values [][]byte, err error)

	Close() error
}

// IKVTxn is one open transaction on the backing store. Reads observe the
// transaction's own prior writes; commit fails on write conflict and the
// caller owns the retry policy.
type IKVTxn interface {
	Get(ctx context.Context, key []byte) (val []byte, err error)
	Set(key, value []byte) error
	Delete(key []byte) error

	// Iter iterates stored keys in [begin, end) ascending; empty end means unbounded.
	Iter(ctx context.Context, begin, end []byte) (IIterator, error)
	// IterReverse iterates stored keys below end descending.
	IterReverse(ctx context.Context, end []byte) (IIterator, error)

	Commit(ctx context.Context) error
	Rollback() error
}
