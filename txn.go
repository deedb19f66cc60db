package xdiskv

import (
	"context"
	"fmt"

	"github.com/weedge/xdis-kv/driver"
)

type txnOpKind byte

const (
	opSet txnOpKind = iota
	opClear
	opClearRange
	opMutate
)

type bufferedOp struct {
	kind    txnOpKind
	key     Key
	op      MutationOp
	operand []byte
	// width > 0 means a typed numeric mutation, stored value must be absent
	// or exactly width bytes
	width int
	rng   KeyRange
}

// RangeOptions bound one range read.
type RangeOptions struct {
	// Limit max pairs returned; 0 means DefaultScanCount, negative unlimited.
	Limit int
	// Reverse returns pairs in reversed lexicographical order.
	Reverse bool
}

func (o RangeOptions) limit() int {
	if o.Limit == 0 {
		return DefaultScanCount
	}
	return o.Limit
}

// Txn buffers sets, clears and atomic mutations in program order on top of
// one open engine transaction. Reads merge the buffer over the engine
// snapshot so the transaction observes its own pending writes; commit
// replays the buffer into the engine transaction and commits it.
// A Txn is single goroutine; separate Txns may run concurrently.
type Txn struct {
	kv   driver.IKVTxn
	ops  []bufferedOp
	done bool
}

func NewTxn(kv driver.IKVTxn) *Txn {
	return &Txn{kv: kv}
}

// Snapshot exposes the engine transaction's ordered view of stored keys.
// Selector resolution over it considers stored keys only; buffered writes
// are merged when reading, not when resolving anchors.
func (t *Txn) Snapshot() driver.ISnapshot {
	return kvTxnSnapshot{kv: t.kv}
}

func (t *Txn) checkUsable(key Key) error {
	if t.done {
		return ErrTxnDone
	}
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return key.checkSize()
}

// Set buffers a plain last-write-wins set.
func (t *Txn) Set(key Key, value []byte) error {
	if err := t.checkUsable(key); err != nil {
		return err
	}
	if len(value) > MaxValueSize {
		return ErrValueTooLong
	}
	t.ops = append(t.ops, bufferedOp{kind: opSet, key: key.Clone(), operand: cloneBytes(value)})
	return nil
}

// Clear buffers removal of a single key.
func (t *Txn) Clear(key Key) error {
	if err := t.checkUsable(key); err != nil {
		return err
	}
	t.ops = append(t.ops, bufferedOp{kind: opClear, key: key.Clone()})
	return nil
}

// ClearRange buffers removal of every key in r.
func (t *Txn) ClearRange(r KeyRange) error {
	if t.done {
		return ErrTxnDone
	}
	t.ops = append(t.ops, bufferedOp{kind: opClearRange, rng: r})
	return nil
}

// Atomic buffers one atomic mutation. MutationSet/MutationClear belong to
// Set/Clear and are rejected here.
func (t *Txn) Atomic(op MutationOp, key Key, operand []byte) error {
	if err := t.checkUsable(key); err != nil {
		return err
	}
	if op == MutationSet || op == MutationClear {
		return fmt.Errorf("op %s is not an atomic mutation", op)
	}
	if len(operand) > MaxValueSize {
		return ErrValueTooLong
	}
	t.ops = append(t.ops, bufferedOp{kind: opMutate, key: key.Clone(), op: op, operand: cloneBytes(operand)})
	return nil
}

// Add32 buffers a typed 32 bit little-endian wrapping add. The stored value
// must be absent or exactly 4 bytes when the mutation is applied.
func (t *Txn) Add32(key Key, delta int32) error {
	if err := t.checkUsable(key); err != nil {
		return err
	}
	operand, _ := AddInt32LE(nil, delta)
	t.ops = append(t.ops, bufferedOp{kind: opMutate, key: key.Clone(), op: MutationAdd, operand: operand, width: 4})
	return nil
}

// Add64 buffers a typed 64 bit little-endian wrapping add.
func (t *Txn) Add64(key Key, delta int64) error {
	if err := t.checkUsable(key); err != nil {
		return err
	}
	operand, _ := AddInt64LE(nil, delta)
	t.ops = append(t.ops, bufferedOp{kind: opMutate, key: key.Clone(), op: MutationAdd, operand: operand, width: 8})
	return nil
}

func applyBuffered(base []byte, o bufferedOp) ([]byte, error) {
	// zero-length counts as absent, same as AddInt32LE/AddInt64LE
	if o.kind == opMutate && o.width > 0 && len(base) != 0 && len(base) != o.width {
		return nil, fmt.Errorf("%w: add%d on %d byte value", ErrEncodingMismatch, o.width*8, len(base))
	}
	switch o.kind {
	case opSet:
		return cloneBytes(o.operand), nil
	case opClear, opClearRange:
		return nil, nil
	case opMutate:
		return o.op.Apply(base, o.operand), nil
	}
	return base, nil
}

// Get reads a key with read-your-writes visibility: the stored value is
// folded through every buffered op touching the key, in program order.
func (t *Txn) Get(ctx context.Context, key Key) ([]byte, error) {
	if t.done {
		return nil, ErrTxnDone
	}
	base, err := t.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	for _, o := range t.ops {
		switch o.kind {
		case opClearRange:
			if o.rng.Contains(key) {
				base = nil
			}
		default:
			if o.key.Equal(key) {
				if base, err = applyBuffered(base, o); err != nil {
					return nil, err
				}
			}
		}
	}
	return base, nil
}

// GetRange reads [r.BeginKey, r.EndKey) with read-your-writes visibility.
func (t *Txn) GetRange(ctx context.Context, r KeyRange, opts RangeOptions) ([]driver.KVPair, error) {
	return t.getRangeSpan(ctx, r.BeginKey(), r.EndKey(), opts)
}

// getRangeSpan reads [begin, end) merging the buffer; nil end is unbounded.
func (t *Txn) getRangeSpan(ctx context.Context, begin, end Key, opts RangeOptions) ([]driver.KVPair, error) {
	if t.done {
		return nil, ErrTxnDone
	}
	inSpan := func(k Key) bool {
		return begin.Compare(k) <= 0 && (end == nil || k.Compare(end) < 0)
	}

	// base pairs from the engine snapshot; with a non empty buffer the
	// whole span is fetched so clears and sets merge correctly before the
	// limit is applied. A reverse read walks the span from the top so a
	// limited fetch keeps the last pairs, not the first.
	merged := NewMemSnapshot()
	var it driver.IIterator
	var err error
	if opts.Reverse {
		it, err = t.kv.IterReverse(ctx, end)
	} else {
		it, err = t.kv.Iter(ctx, begin, end)
	}
	if err != nil {
		return nil, err
	}
	baseLimit := -1
	if len(t.ops) == 0 {
		baseLimit = opts.limit()
	}
	for n := 0; it.Valid() && (baseLimit <= 0 || n < baseLimit); n++ {
		if opts.Reverse && begin.Compare(it.Key()) > 0 {
			break
		}
		merged.Put(it.Key(), it.Value())
		if err = it.Next(); err != nil {
			it.Close()
			return nil, err
		}
	}
	it.Close()

	for _, o := range t.ops {
		switch o.kind {
		case opSet:
			if inSpan(o.key) {
				merged.Put(o.key, o.operand)
			}
		case opClear:
			if inSpan(o.key) {
				merged.Delete(o.key)
			}
		case opClearRange:
			for i := 0; i < len(merged.keys); {
				if o.rng.Contains(Key(merged.keys[i])) {
					merged.Delete(merged.keys[i])
					continue
				}
				i++
			}
		case opMutate:
			if !inSpan(o.key) {
				continue
			}
			base, err := merged.Get(ctx, o.key)
			if err != nil {
				return nil, err
			}
			merged.Put(o.key, o.op.Apply(base, o.operand))
		}
	}

	limit := opts.limit()
	var pairs []driver.KVPair
	if !opts.Reverse {
		for i := 0; i < merged.Len() && (limit < 0 || len(pairs) < limit); i++ {
			pairs = append(pairs, driver.KVPair{Key: merged.keys[i], Value: merged.vals[i]})
		}
		return pairs, nil
	}
	for i := merged.Len() - 1; i >= 0 && (limit < 0 || len(pairs) < limit); i-- {
		pairs = append(pairs, driver.KVPair{Key: merged.keys[i], Value: merged.vals[i]})
	}
	return pairs, nil
}

// GetRangeSelectors resolves a selector pair against the stored key space
// and reads the resulting range. Out of range selectors clamp to the key
// space edges instead of failing, matching server side scan behavior.
func (t *Txn) GetRangeSelectors(ctx context.Context, begin, end KeySelector, opts RangeOptions) ([]driver.KVPair, error) {
	if t.done {
		return nil, ErrTxnDone
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
	if endKey != nil && beginKey.Compare(endKey) >= 0 {
		return nil, nil
	}
	return t.getRangeSpan(ctx, beginKey, endKey, opts)
}

// resolveClamped resolves like KeySelector.Resolve but clamps: before the
// first stored key resolves to the empty key, past the last stored key
// resolves to nil (unbounded above).
func resolveClamped(ctx context.Context, snap driver.ISnapshot, s KeySelector) (Key, error) {
	k, err := s.Resolve(ctx, snap)
	if err == nil {
		return k, nil
	}
	if err != ErrRangeBoundsExceeded {
		return nil, err
	}
	if s.Offset > 0 {
		return nil, nil
	}
	return Key{}, nil
}

// Flush replays the buffer into the engine transaction in program order and
// empties it; the engine transaction stays open.
func (t *Txn) Flush(ctx context.Context) error {
	if t.done {
		return ErrTxnDone
	}
	defer func() { t.ops = nil }()
	for _, o := range t.ops {
		var err error
		switch o.kind {
		case opSet:
			err = t.kv.Set(o.key, o.operand)
		case opClear:
			err = t.kv.Delete(o.key)
		case opClearRange:
			err = t.clearRangeInKV(ctx, o.rng)
		case opMutate:
			var base, val []byte
			if base, err = t.kv.Get(ctx, o.key); err == nil {
				if val, err = applyBuffered(base, o); err == nil {
					err = t.kv.Set(o.key, val)
				}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Commit replays the buffer into the engine transaction and commits it.
// Conflict retry policy belongs to the caller.
func (t *Txn) Commit(ctx context.Context) error {
	if err := t.Flush(ctx); err != nil {
		if err != ErrTxnDone {
			t.done = true
			t.kv.Rollback()
		}
		return err
	}
	t.done = true
	return t.kv.Commit(ctx)
}

func (t *Txn) clearRangeInKV(ctx context.Context, r KeyRange) error {
	it, err := t.kv.Iter(ctx, r.BeginKey(), r.EndKey())
	if err != nil {
		return err
	}
	defer it.Close()
	for it.Valid() {
		if err = t.kv.Delete(it.Key()); err != nil {
			return err
		}
		if err = it.Next(); err != nil {
			return err
		}
	}
	return nil
}

// Rollback discards the buffer and aborts the engine transaction.
func (t *Txn) Rollback() error {
	if t.done {
		return ErrTxnDone
	}
	t.done = true
	t.ops = nil
	return t.kv.Rollback()
}

// kvTxnSnapshot adapts an engine transaction iterator surface to the seek
// based ISnapshot used by selector resolution.
type kvTxnSnapshot struct {
	kv driver.IKVTxn
}

func (s kvTxnSnapshot) Get(ctx context.Context, key []byte) ([]byte, error) {
	return s.kv.Get(ctx, key)
}

func (s kvTxnSnapshot) firstFrom(ctx context.Context, begin []byte) ([]byte, error) {
	it, err := s.kv.Iter(ctx, begin, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	if !it.Valid() {
		return nil, nil
	}
	return cloneBytes(it.Key()), nil
}

func (s kvTxnSnapshot) lastBelow(ctx context.Context, end []byte) ([]byte, error) {
	it, err := s.kv.IterReverse(ctx, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	if !it.Valid() {
		return nil, nil
	}
	return cloneBytes(it.Key()), nil
}

func (s kvTxnSnapshot) SeekGE(ctx context.Context, key []byte) ([]byte, error) {
	return s.firstFrom(ctx, key)
}

func (s kvTxnSnapshot) SeekGT(ctx context.Context, key []byte) ([]byte, error) {
	return s.firstFrom(ctx, Key(key).Successor())
}

func (s kvTxnSnapshot) SeekLE(ctx context.Context, key []byte) ([]byte, error) {
	return s.lastBelow(ctx, Key(key).Successor())
}

func (s kvTxnSnapshot) SeekLT(ctx context.Context, key []byte) ([]byte, error) {
	return s.lastBelow(ctx, key)
}
