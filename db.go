package xdiskv

import (
	"context"
	"encoding/binary"

	"github.com/weedge/xdis-kv/driver"
	"github.com/weedge/xdis-kv/tikv"
)

// DB is one logical keyspace on the shared kv store engine, framed by the
// storager prefix key and the db index.
type DB struct {
	store *Storager
	// database index
	index int
	// database index to varint buffer
	indexVarBuf []byte
	// kv client
	kvClient *tikv.Client
}

func NewDB(store *Storager, idx int) *DB {
	db := &DB{store: store}
	db.SetIndex(idx)
	db.kvClient = store.kvClient

	return db
}

// SetIndex set db index and encode the index to varint buffer
func (db *DB) SetIndex(index int) {
	db.index = index
	db.indexVarBuf = encodeIndex(index)
}

func (db *DB) Index() int {
	return db.index
}

func (db *DB) Close() error {
	return nil
}

// DataRange covers every data key of this db: the framed prefix and all
// keys nested under it.
func (db *DB) DataRange() (KeyRange, error) {
	return PrefixRange(db.dataKeyPrefix())
}

// SingleRange covers exactly one user key of this db.
func (db *DB) SingleRange(key []byte) (KeyRange, error) {
	return SingleKeyRange(db.encodeDataKey(key))
}

// KeyPrefixRange covers every user key of this db prefixed by key.
func (db *DB) KeyPrefixRange(key []byte) (KeyRange, error) {
	return PrefixRange(db.encodeDataKey(key))
}

// HeadRange covers this db's user keys sorting strictly before key.
func (db *DB) HeadRange(key []byte) (KeyRange, error) {
	return HeadRange(db.dataKeyPrefix(), key)
}

// TailRange covers this db's user keys from key (inclusive) to the end of
// the namespace.
func (db *DB) TailRange(key []byte) (KeyRange, error) {
	return TailRange(db.dataKeyPrefix(), key)
}

// Set writes one key value pair in its own transaction.
func (db *DB) Set(ctx context.Context, key, value []byte) error {
	_, err := db.store.ExecuteTxn(ctx, func(ctx context.Context, t *Txn) (interface{}, error) {
		return nil, t.Set(db.encodeDataKey(key), value)
	}, tikv.WithTryOnePcCommit(true), tikv.WithAsyncCommit(true))
	return err
}

// Get reads one user key from a fresh snapshot.
func (db *DB) Get(ctx context.Context, key []byte) ([]byte, error) {
	snap, err := db.kvClient.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Get(ctx, db.encodeDataKey(key))
}

// Del removes user keys, returns how many were present.
func (db *DB) Del(ctx context.Context, keys ...[]byte) (int64, error) {
	res, err := db.store.ExecuteTxn(ctx, func(ctx context.Context, t *Txn) (interface{}, error) {
		var n int64
		for _, key := range keys {
			ek := db.encodeDataKey(key)
			v, err := t.Get(ctx, ek)
			if err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			if err = t.Clear(ek); err != nil {
				return nil, err
			}
			n++
		}
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// Exists reports whether the user key is stored.
func (db *DB) Exists(ctx context.Context, key []byte) (int64, error) {
	v, err := db.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return 1, nil
}

// Add64 folds a 64 bit wrapping add into the stored value and returns the
// merged result, read back through the txn's own pending writes.
func (db *DB) Add64(ctx context.Context, key []byte, delta int64) (int64, error) {
	res, err := db.store.ExecuteTxn(ctx, func(ctx context.Context, t *Txn) (interface{}, error) {
		ek := db.encodeDataKey(key)
		if err := t.Add64(ek, delta); err != nil {
			return nil, err
		}
		merged, err := t.Get(ctx, ek)
		if err != nil {
			return nil, err
		}
		return int64(binary.LittleEndian.Uint64(merged)), nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// Mutate applies one atomic mutation to a user key in its own transaction.
func (db *DB) Mutate(ctx context.Context, op MutationOp, key, operand []byte) error {
	_, err := db.store.ExecuteTxn(ctx, func(ctx context.Context, t *Txn) (interface{}, error) {
		return nil, t.Atomic(op, db.encodeDataKey(key), operand)
	})
	return err
}

// GetRange reads a resolved range of this db's keys, returning pairs with
// decoded user keys.
func (db *DB) GetRange(ctx context.Context, r KeyRange, opts RangeOptions) ([]driver.KVPair, error) {
	kv, err := db.kvClient.GetTxnKVClient().Begin()
	if err != nil {
		return nil, err
	}
	t := NewTxn(kv)
	defer t.Rollback()

	pairs, err := t.GetRange(ctx, r, opts)
	if err != nil {
		return nil, err
	}
	out := make([]driver.KVPair, 0, len(pairs))
	for _, p := range pairs {
		uk, err := db.decodeDataKey(p.Key)
		if err != nil {
			// key inside the range but outside this db's frame
			continue
		}
		out = append(out, driver.KVPair{Key: uk, Value: p.Value})
	}
	return out, nil
}

// GetRangeSelectors resolves a selector pair over this db's stored keys,
// clamped to the db namespace, then reads the range.
func (db *DB) GetRangeSelectors(ctx context.Context, begin, end KeySelector, opts RangeOptions) ([]driver.KVPair, error) {
	kv, err := db.kvClient.GetTxnKVClient().Begin()
	if err != nil {
		return nil, err
	}
	t := NewTxn(kv)
	defer t.Rollback()

	ns, err := db.DataRange()
	if err != nil {
		return nil, err
	}
	snap := t.Snapshot()
	beginKey, err := resolveClamped(ctx, snap, begin)
	if err != nil {
		return nil, err
	}
	endKey, err := resolveClamped(ctx, snap, end)
	if err != nil {
		return nil, err
	}
	// begin past the last stored key
	if beginKey == nil {
		return nil, nil
	}
	// clamp to this db's namespace
	if beginKey.Compare(ns.BeginKey()) < 0 {
		beginKey = ns.BeginKey()
	}
	if endKey == nil || endKey.Compare(ns.EndKey()) > 0 {
		endKey = ns.EndKey()
	}
	if beginKey.Compare(endKey) >= 0 {
		return nil, nil
	}
	r, err := RangeBetween(beginKey, Inclusive, endKey, Exclusive)
	if err != nil {
		return nil, err
	}

	pairs, err := t.GetRange(ctx, r, opts)
	if err != nil {
		return nil, err
	}
	out := make([]driver.KVPair, 0, len(pairs))
	for _, p := range pairs {
		uk, err := db.decodeDataKey(p.Key)
		if err != nil {
			continue
		}
		out = append(out, driver.KVPair{Key: uk, Value: p.Value})
	}
	return out, nil
}

// ClearAll drops every data key of this db, returns cleared pair count.
func (db *DB) ClearAll(ctx context.Context) (int64, error) {
	r, err := db.DataRange()
	if err != nil {
		return 0, err
	}
	res, err := db.store.ExecuteTxn(ctx, func(ctx context.Context, t *Txn) (interface{}, error) {
		pairs, err := t.GetRange(ctx, r, RangeOptions{Limit: -1})
		if err != nil {
			return nil, err
		}
		if err = t.ClearRange(r); err != nil {
			return nil, err
		}
		return int64(len(pairs)), nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}
