package tikv

import (
	"context"

	tikverr "github.com/tikv/client-go/v2/error"
	"github.com/tikv/client-go/v2/txnkv/txnsnapshot"
)

// kvSnapshot adapts a tikv point-in-time snapshot to driver.ISnapshot.
// Seeks are one-row scans from the seek key.
type kvSnapshot struct {
	snap *txnsnapshot.KVSnapshot
}

func (m *kvSnapshot) Get(ctx context.Context, key []byte) ([]byte, error) {
	val, err := m.snap.Get(ctx, key)
	if tikverr.IsErrNotFound(err) {
		return nil, nil
	}
	return val, err
}

func (m *kvSnapshot) firstFrom(begin []byte) ([]byte, error) {
	it, err := m.snap.Iter(begin, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	if !it.Valid() {
		return nil, nil
	}
	return append([]byte{}, it.Key()...), nil
}

func (m *kvSnapshot) lastBelow(end []byte) ([]byte, error) {
	it, err := m.snap.IterReverse(end)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	if !it.Valid() {
		return nil, nil
	}
	return append([]byte{}, it.Key()...), nil
}

func (m *kvSnapshot) SeekGE(ctx context.Context, key []byte) ([]byte, error) {
	return m.firstFrom(key)
}

func (m *kvSnapshot) SeekGT(ctx context.Context, key []byte) ([]byte, error) {
	next := make([]byte, len(key)+1)
	copy(next, key)
	return m.firstFrom(next)
}

func (m *kvSnapshot) SeekLE(ctx context.Context, key []byte) ([]byte, error) {
	next := make([]byte, len(key)+1)
	copy(next, key)
	return m.lastBelow(next)
}

func (m *kvSnapshot) SeekLT(ctx context.Context, key []byte) ([]byte, error) {
	return m.lastBelow(key)
}
