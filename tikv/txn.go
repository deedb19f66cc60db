package tikv

import (
	"context"

	tikverr "github.com/tikv/client-go/v2/error"
	"github.com/tikv/client-go/v2/txnkv/transaction"

	"github.com/weedge/xdis-kv/driver"
)

// kvTxn adapts one open tikv transaction to driver.IKVTxn. Reads go through
// the txn's union store, so the txn's own pending writes are visible.
type kvTxn struct {
	txn *transaction.KVTxn
}

func (m *kvTxn) Get(ctx context.Context, key []byte) ([]byte, error) {
	val, err := m.txn.Get(ctx, key)
	if tikverr.IsErrNotFound(err) {
		return nil, nil
	}
	return val, err
}

func (m *kvTxn) Set(key, value []byte) error {
	return m.txn.Set(key, value)
}

func (m *kvTxn) Delete(key []byte) error {
	return m.txn.Delete(key)
}

func (m *kvTxn) Iter(ctx context.Context, begin, end []byte) (driver.IIterator, error) {
	it, err := m.txn.Iter(begin, end)
	if err != nil {
		return nil, err
	}
	return &kvIter{it: it}, nil
}

func (m *kvTxn) IterReverse(ctx context.Context, end []byte) (driver.IIterator, error) {
	it, err := m.txn.IterReverse(end)
	if err != nil {
		return nil, err
	}
	return &kvIter{it: it}, nil
}

func (m *kvTxn) Commit(ctx context.Context) error {
	return m.txn.Commit(ctx)
}

func (m *kvTxn) Rollback() error {
	return m.txn.Rollback()
}
