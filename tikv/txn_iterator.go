package tikv

import (
	"bytes"

	"github.com/weedge/xdis-kv/driver"
)

// rawIter is the iterator surface of tikv txn and snapshot iterators.
type rawIter interface {
	Valid() bool
	Key() []byte
	Value() []byte
	Next() error
	Close()
}

// kvIter adapts a tikv iterator to driver.IIterator.
type kvIter struct {
	it rawIter
}

func (m *kvIter) Valid() bool {
	return m.it.Valid()
}

func (m *kvIter) Key() []byte {
	return m.it.Key()
}

func (m *kvIter) Value() []byte {
	return m.it.Value()
}

func (m *kvIter) Next() error {
	return m.it.Next()
}

func (m *kvIter) Close() {
	m.it.Close()
}

// RangeIter windows an iterator with offset/limit and hard key bounds,
// for paging resolved [begin, end) ranges.
type RangeIter struct {
	it        driver.IIterator
	offset    int
	limit     int
	minKey    []byte
	maxKey    []byte
	isReverse bool

	// for iter step++ instead of limit-- when limit < 0
	step int
}

func NewRangeIter(it driver.IIterator, offset, limit int, minKey, maxKey []byte, reverse bool) (*RangeIter, error) {
	m := &RangeIter{
		it:        it,
		offset:    offset,
		limit:     limit,
		minKey:    minKey,
		maxKey:    maxKey,
		isReverse: reverse,
	}
	if err := m.skipOffset(); err != nil {
		it.Close()
		return nil, err
	}
	return m, nil
}

func (m *RangeIter) Valid() bool {
	if m.offset < 0 {
		return false
	}
	if !m.it.Valid() {
		return false
	}
	if m.limit >= 0 && m.step >= m.limit {
		return false
	}
	if m.isReverse && bytes.Compare(m.minKey, m.it.Key()) > 0 {
		return false
	}
	if !m.isReverse && len(m.maxKey) > 0 && bytes.Compare(m.maxKey, m.it.Key()) <= 0 {
		return false
	}

	return true
}

func (m *RangeIter) Key() []byte {
	return m.it.Key()
}

func (m *RangeIter) Value() []byte {
	return m.it.Value()
}

func (m *RangeIter) Next() error {
	m.step++
	return m.it.Next()
}

func (m *RangeIter) Close() {
	m.it.Close()
}

func (m *RangeIter) skipOffset() error {
	for i := 0; i < m.offset; i++ {
		if !m.it.Valid() {
			break
		}
		if err := m.it.Next(); err != nil {
			return err
		}
	}
	return nil
}
