package tikv

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/kitex/pkg/klog"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	tikverr "github.com/tikv/client-go/v2/error"
	"github.com/tikv/client-go/v2/oracle"
	"github.com/tikv/client-go/v2/txnkv"
	"github.com/tikv/client-go/v2/txnkv/transaction"
	"github.com/tikv/client-go/v2/txnkv/txnsnapshot"

	"github.com/weedge/xdis-kv/config"
	"github.com/weedge/xdis-kv/driver"
)

type TxnKVClientWrapper struct {
	opts      *config.TikvClientOptions
	retryOpts *config.TxnRetryOptions
	client    *txnkv.Client
}

func NewTxnKVClient(opts *config.TikvClientOptions, retryOpts *config.TxnRetryOptions) (*TxnKVClientWrapper, error) {
	txnCli, err := txnkv.NewClient(strings.Split(opts.PDAddrs, ","))
	if err != nil {
		return nil, err
	}

	cli := &TxnKVClientWrapper{
		opts:      opts,
		retryOpts: retryOpts,
		client:    txnCli,
	}

	return cli, nil
}

func (m *TxnKVClientWrapper) Close() error {
	return m.client.Close()
}

// Begin opens one engine transaction exposed through driver.IKVTxn.
// The caller owns commit/rollback and the retry policy; use ExecuteTxn for
// the managed path.
func (m *TxnKVClientWrapper) Begin(txnOpts ...TxnOpt) (driver.IKVTxn, error) {
	opts := m.beginOptions(txnOpts...)
	tx, err := m.client.Begin()
	if err != nil {
		return nil, err
	}
	m.applyTxnOptions(tx, opts)
	return &kvTxn{txn: tx}, nil
}

func (m *TxnKVClientWrapper) beginOptions(txnOpts ...TxnOpt) *options {
	opts := &options{
		tryOnePcCommit: m.opts.TryOnePcCommit,
		asyncCommit:    m.opts.UseAsyncCommit,
		pessimisticTxn: m.opts.UsePessimisticTxn,
	}
	for _, opt := range txnOpts {
		opt(opts)
	}
	return opts
}

func (m *TxnKVClientWrapper) applyTxnOptions(tx *transaction.KVTxn, opts *options) {
	tx.SetEnable1PC(opts.tryOnePcCommit)
	tx.SetEnableAsyncCommit(opts.asyncCommit)
	tx.SetPessimistic(opts.pessimisticTxn)
}

type TxHandle func(txn driver.IKVTxn) (interface{}, error)

// ExecuteTxn runs handle inside one transaction and commits it, retrying
// the whole handle with exponential backoff when the commit hits a write
// conflict. The handle must be safe to re-run.
func (m *TxnKVClientWrapper) ExecuteTxn(ctx context.Context, handle TxHandle, txnOpts ...TxnOpt) (res interface{}, err error) {
	if handle == nil {
		return nil, ErrNilTxnHandle
	}
	opts := m.beginOptions(txnOpts...)
	traceID := uuid.New()

	run := func(ctx context.Context) error {
		tx, err := m.client.Begin()
		if err != nil {
			return err
		}
		m.applyTxnOptions(tx, opts)

		kv := &kvTxn{txn: tx}
		res, err = handle(kv)
		if err != nil {
			tx.Rollback()
			return err
		}

		err = tx.Commit(ctx)
		if err != nil && !opts.noRetry && tikverr.IsErrWriteConflict(err) {
			klog.CtxInfof(ctx, "txn %s commit conflict, will retry: %s", traceID, err.Error())
			return retry.RetryableError(err)
		}
		return err
	}

	if opts.noRetry {
		err = run(ctx)
		return
	}

	backoff := retry.NewExponential(time.Duration(m.retryOpts.BackoffMs) * time.Millisecond)
	backoff = retry.WithCappedDuration(time.Duration(m.retryOpts.MaxBackoffMs)*time.Millisecond, backoff)
	backoff = retry.WithMaxRetries(m.retryOpts.MaxRetries, backoff)

	start := time.Now()
	err = retry.Do(ctx, backoff, run)
	if err != nil {
		if tikverr.IsErrWriteConflict(err) {
			klog.CtxErrorf(ctx, "txn %s conflict retries exhausted after %s: %s", traceID, time.Since(start), err.Error())
			return nil, ErrTxnConflict
		}
		return nil, err
	}
	return
}

func (m *TxnKVClientWrapper) Get(ctx context.Context, key []byte) (val []byte, err error) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Get(ctx, key)
}

func (m *TxnKVClientWrapper) BatchGet(ctx context.Context, keys [][]byte) (vals [][]byte, err error) {
	snap, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	kvMap, err := snap.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	vals = make([][]byte, len(keys))
	for i, key := range keys {
		if v, ok := kvMap[string(key)]; ok {
			vals[i] = v
		}
	}
	return vals, nil
}

func (m *TxnKVClientWrapper) Put(ctx context.Context, key, value []byte) error {
	_, err := m.ExecuteTxn(ctx, func(txn driver.IKVTxn) (interface{}, error) {
		return nil, txn.Set(key, value)
	}, WithAsyncCommit(true), WithTryOnePcCommit(true))

	return err
}

func (m *TxnKVClientWrapper) PutNotExists(ctx context.Context, key, value []byte) error {
	_, err := m.ExecuteTxn(ctx, func(txn driver.IKVTxn) (interface{}, error) {
		v, err := txn.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return nil, ErrKeyExist
		}

		return nil, txn.Set(key, value)
	}, WithAsyncCommit(true), WithTryOnePcCommit(true))

	return err
}

func (m *TxnKVClientWrapper) BatchPut(ctx context.Context, keys, values [][]byte) error {
	_, err := m.ExecuteTxn(ctx, func(txn driver.IKVTxn) (interface{}, error) {
		for i, key := range keys {
			if err := txn.Set(key, values[i]); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}, WithAsyncCommit(true))

	return err
}

func (m *TxnKVClientWrapper) Delete(ctx context.Context, key []byte) error {
	_, err := m.ExecuteTxn(ctx, func(txn driver.IKVTxn) (interface{}, error) {
		return nil, txn.Delete(key)
	}, WithAsyncCommit(true), WithTryOnePcCommit(true))

	return err
}

func (m *TxnKVClientWrapper) BatchDelete(ctx context.Context, keys [][]byte) error {
	_, err := m.ExecuteTxn(ctx, func(txn driver.IKVTxn) (interface{}, error) {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}, WithAsyncCommit(true))

	return err
}

// Scan queries continuous kv pairs in range [startKey, endKey), up to limit pairs.
// The returned keys are in lexicographical order.
// If endKey is empty, it means unbounded.
func (m *TxnKVClientWrapper) Scan(ctx context.Context, startKey, endKey []byte, limit int) (keys [][]byte, values [][]byte, err error) {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	snap, err := m.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	rawIt, err := snap.Iter(startKey, endKey)
	if err != nil {
		return nil, nil, err
	}
	it, err := NewRangeIter(&kvIter{it: rawIt}, 0, limit, nil, endKey, false)
	if err != nil {
		return nil, nil, err
	}
	defer it.Close()

	for it.Valid() {
		keys = append(keys, append([]byte{}, it.Key()...))
		values = append(values, append([]byte{}, it.Value()...))
		if err = it.Next(); err != nil {
			return nil, nil, err
		}
	}
	return
}

// ReverseScan queries continuous kv pairs below endKey, up to limit pairs.
// The returned keys are in reversed lexicographical order.
func (m *TxnKVClientWrapper) ReverseScan(ctx context.Context, startKey, endKey []byte, limit int) (keys [][]byte, values [][]byte, err error) {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	snap, err := m.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	rawIt, err := snap.IterReverse(endKey)
	if err != nil {
		return nil, nil, err
	}
	it, err := NewRangeIter(&kvIter{it: rawIt}, 0, limit, startKey, nil, true)
	if err != nil {
		return nil, nil, err
	}
	defer it.Close()

	for it.Valid() {
		keys = append(keys, append([]byte{}, it.Key()...))
		values = append(values, append([]byte{}, it.Value()...))
		if err = it.Next(); err != nil {
			return nil, nil, err
		}
	}
	return
}

// Snapshot returns a point-in-time ordered read view at the current ts.
func (m *TxnKVClientWrapper) Snapshot(ctx context.Context) (driver.ISnapshot, error) {
	snap, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &kvSnapshot{snap: snap}, nil
}

func (m *TxnKVClientWrapper) snapshot(ctx context.Context) (*txnsnapshot.KVSnapshot, error) {
	ts, err := m.client.CurrentTimestamp(oracle.GlobalTxnScope)
	if err != nil {
		return nil, err
	}
	return m.client.GetSnapshot(ts), nil
}
