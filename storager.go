package xdiskv

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudwego/kitex/pkg/klog"

	"github.com/weedge/pkg/safer"
	"github.com/weedge/xdis-kv/config"
	"github.com/weedge/xdis-kv/driver"
	"github.com/weedge/xdis-kv/tikv"
)

// Storager core store struct, multiple logical dbs on one kv store engine
type Storager struct {
	opts *config.StoragerOptions

	// tikv store client
	kvClient *tikv.Client
	// every key this store writes starts with this frame
	prefixKey []byte

	// multi db instances on one kv store engine
	dbs map[int]*DB
	// dbs map lock for get and set map[int]*DB
	dbLock sync.Mutex

	// txn stats for the watchdog loop
	txnCn     atomic.Int64
	slowTxnCn atomic.Int64

	wg   sync.WaitGroup
	quit chan struct{}
}

func Open(opts *config.StoragerOptions) (store *Storager, err error) {
	store = &Storager{}
	store.InitOpts(opts)

	defer func(s *Storager) {
		if err != nil {
			if e := s.Close(); e != nil {
				klog.Errorf("close store err: %s", e.Error())
			}
		}
	}(store)

	store.dbs = make(map[int]*DB, opts.Databases)
	store.quit = make(chan struct{})

	if store.kvClient, err = tikv.NewClient(&opts.TiKVClient, &opts.TxnRetry); err != nil {
		return nil, err
	}

	store.watchTxnStats()

	return
}

func (m *Storager) InitOpts(opts *config.StoragerOptions) {
	if opts.Databases == 0 {
		opts.Databases = config.DefaultDatabases
	} else if opts.Databases > MaxDatabases {
		opts.Databases = MaxDatabases
	}
	if opts.SlowTxnMs <= 0 {
		opts.SlowTxnMs = config.DefaultSlowTxnMs
	}
	m.opts = opts
	m.prefixKey = encodePrefixKey(opts.PrefixKey)
}

// Close close kv store engine client
func (m *Storager) Close() (err error) {
	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	m.wg.Wait()

	errs := []error{}
	if m.kvClient != nil {
		errs = append(errs, m.kvClient.Close())
		m.kvClient = nil
	}

	for _, db := range m.dbs {
		errs = append(errs, db.Close())
	}

	errStrs := []string{}
	for _, er := range errs {
		if er != nil {
			errStrs = append(errStrs, er.Error())
		}
	}
	if len(errStrs) > 0 {
		err = fmt.Errorf("errs: %s", strings.Join(errStrs, " | "))
	}
	return
}

// Select chooses a database.
func (m *Storager) Select(ctx context.Context, index int) (db *DB, err error) {
	if index < 0 || index >= m.opts.Databases {
		return nil, fmt.Errorf("invalid db index %d, must in [0, %d]", index, m.opts.Databases-1)
	}

	m.dbLock.Lock()
	db, ok := m.dbs[index]
	if ok {
		m.dbLock.Unlock()
		return
	}
	db = NewDB(m, index)
	m.dbs[index] = db
	m.dbLock.Unlock()

	return
}

// Begin opens one client transaction on the store engine.
func (m *Storager) Begin(txnOpts ...tikv.TxnOpt) (*Txn, error) {
	kv, err := m.kvClient.GetTxnKVClient().Begin(txnOpts...)
	if err != nil {
		return nil, err
	}
	return NewTxn(kv), nil
}

// TxnHandle runs against one open client transaction; it must be safe to
// re-run, the whole handle is retried on commit conflict.
type TxnHandle func(ctx context.Context, t *Txn) (interface{}, error)

// ExecuteTxn runs handle inside one transaction with the store's retry
// policy, flushing the txn buffer before commit.
func (m *Storager) ExecuteTxn(ctx context.Context, handle TxnHandle, txnOpts ...tikv.TxnOpt) (interface{}, error) {
	start := time.Now()
	res, err := m.kvClient.GetTxnKVClient().ExecuteTxn(ctx, func(kv driver.IKVTxn) (interface{}, error) {
		t := NewTxn(kv)
		res, err := handle(ctx, t)
		if err != nil {
			return nil, err
		}
		return res, t.Flush(ctx)
	}, txnOpts...)

	m.txnCn.Add(1)
	if cost := time.Since(start); cost > time.Duration(m.opts.SlowTxnMs)*time.Millisecond {
		m.slowTxnCn.Add(1)
		klog.CtxWarnf(ctx, "slow txn cost %s", cost)
	}
	return res, err
}

// Snapshot returns a point-in-time ordered read view of the store.
func (m *Storager) Snapshot(ctx context.Context) (driver.ISnapshot, error) {
	return m.kvClient.Snapshot(ctx)
}

func (m *Storager) watchTxnStats() {
	quit := m.quit
	safer.GoSafely(&m.wg, false, func() {
		tick := time.NewTicker(30 * time.Second)
		defer tick.Stop()

		for {
			select {
			case <-tick.C:
				klog.Debugf("txn stats: total %d slow %d", m.txnCn.Load(), m.slowTxnCn.Load())
			case <-quit:
				return
			}
		}
	}, nil, os.Stderr)
}
