package xdiskv

import (
	"bytes"
	"context"
	"sort"
)

// MemSnapshot is an in-memory ordered key space implementing
// driver.ISnapshot. Used by selector resolution tests and as the local
// overlay source for read-your-writes range merges. Not safe for concurrent
// mutation; a fully built snapshot is safe to share for reads.
type MemSnapshot struct {
	keys [][]byte
	vals [][]byte
}

func NewMemSnapshot() *MemSnapshot {
	return &MemSnapshot{}
}

// Put inserts or replaces a pair, keeping keys sorted. Key and value are
// copied so later caller mutation of the slices cannot leak in.
func (m *MemSnapshot) Put(key, value []byte) {
	i := sort.Search(len(m.keys), func(i int) bool {
		return bytes.Compare(m.keys[i], key) >= 0
	})
	if i < len(m.keys) && bytes.Equal(m.keys[i], key) {
		m.vals[i] = cloneBytes(value)
		return
	}
	m.keys = append(m.keys, nil)
	m.vals = append(m.vals, nil)
	copy(m.keys[i+1:], m.keys[i:])
	copy(m.vals[i+1:], m.vals[i:])
	m.keys[i] = cloneBytes(key)
	m.vals[i] = cloneBytes(value)
}

// Delete removes a key if present.
func (m *MemSnapshot) Delete(key []byte) {
	i := sort.Search(len(m.keys), func(i int) bool {
		return bytes.Compare(m.keys[i], key) >= 0
	})
	if i >= len(m.keys) || !bytes.Equal(m.keys[i], key) {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
}

func (m *MemSnapshot) Len() int { return len(m.keys) }

func (m *MemSnapshot) Get(ctx context.Context, key []byte) ([]byte, error) {
	i := sort.Search(len(m.keys), func(i int) bool {
		return bytes.Compare(m.keys[i], key) >= 0
	})
	if i < len(m.keys) && bytes.Equal(m.keys[i], key) {
		return cloneBytes(m.vals[i]), nil
	}
	return nil, nil
}

func (m *MemSnapshot) SeekGE(ctx context.Context, key []byte) ([]byte, error) {
	i := sort.Search(len(m.keys), func(i int) bool {
		return bytes.Compare(m.keys[i], key) >= 0
	})
	if i >= len(m.keys) {
		return nil, nil
	}
	return cloneBytes(m.keys[i]), nil
}

func (m *MemSnapshot) SeekGT(ctx context.Context, key []byte) ([]byte, error) {
	i := sort.Search(len(m.keys), func(i int) bool {
		return bytes.Compare(m.keys[i], key) > 0
	})
	if i >= len(m.keys) {
		return nil, nil
	}
	return cloneBytes(m.keys[i]), nil
}

func (m *MemSnapshot) SeekLE(ctx context.Context, key []byte) ([]byte, error) {
	i := sort.Search(len(m.keys), func(i int) bool {
		return bytes.Compare(m.keys[i], key) > 0
	})
	if i == 0 {
		return nil, nil
	}
	return cloneBytes(m.keys[i-1]), nil
}

func (m *MemSnapshot) SeekLT(ctx context.Context, key []byte) ([]byte, error) {
	i := sort.Search(len(m.keys), func(i int) bool {
		return bytes.Compare(m.keys[i], key) >= 0
	})
	if i == 0 {
		return nil, nil
	}
	return cloneBytes(m.keys[i-1]), nil
}
