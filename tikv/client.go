package tikv

import (
	"context"

	"github.com/weedge/xdis-kv/config"
	"github.com/weedge/xdis-kv/driver"
)

// Client is the store engine client used by the storager.
type Client struct {
	txnCli *TxnKVClientWrapper
}

func NewClient(opts *config.TikvClientOptions, retryOpts *config.TxnRetryOptions) (client *Client, err error) {
	txnCli, err := NewTxnKVClient(opts, retryOpts)
	if err != nil {
		return nil, err
	}
	return &Client{txnCli: txnCli}, nil
}

func (m *Client) GetTxnKVClient() *TxnKVClientWrapper {
	return m.txnCli
}

func (m *Client) Get(ctx context.Context, key []byte) (val []byte, err error) {
	return m.txnCli.Get(ctx, key)
}

func (m *Client) BatchGet(ctx context.Context, keys [][]byte) (vals [][]byte, err error) {
	return m.txnCli.BatchGet(ctx, keys)
}

func (m *Client) Put(ctx context.Context, key, value []byte) error {
	return m.txnCli.Put(ctx, key, value)
}

func (m *Client) PutNotExists(ctx context.Context, key, value []byte) error {
	return m.txnCli.PutNotExists(ctx, key, value)
}

func (m *Client) BatchPut(ctx context.Context, keys, values [][]byte) error {
	return m.txnCli.BatchPut(ctx, keys, values)
}

func (m *Client) Delete(ctx context.Context, key []byte) error {
	return m.txnCli.Delete(ctx, key)
}

func (m *Client) BatchDelete(ctx context.Context, keys [][]byte) error {
	return m.txnCli.BatchDelete(ctx, keys)
}

func (m *Client) Scan(ctx context.Context, startKey, endKey []byte, limit int) (keys [][]byte, values [][]byte, err error) {
	return m.txnCli.Scan(ctx, startKey, endKey, limit)
}

func (m *Client) ReverseScan(ctx context.Context, startKey, endKey []byte, limit int) (keys [][]byte, values [][]byte, err error) {
	return m.txnCli.ReverseScan(ctx, startKey, endKey, limit)
}

func (m *Client) Snapshot(ctx context.Context) (driver.ISnapshot, error) {
	return m.txnCli.Snapshot(ctx)
}

func (m *Client) Close() (err error) {
	if m.txnCli != nil {
		err = m.txnCli.Close()
		m.txnCli = nil
	}
	return
}
