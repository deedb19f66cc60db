package tikv

import (
	"bytes"
	"context"
	"testing"

	"github.com/weedge/xdis-kv/config"
	"github.com/weedge/xdis-kv/driver"
)

// needs a running pd/tikv cluster, skipped otherwise
func openTestClient(t *testing.T) *TxnKVClientWrapper {
	t.Helper()
	cli, err := NewTxnKVClient(config.DefaultTikvClientOptions(), config.DefaultTxnRetryOptions())
	if err != nil {
		t.Skipf("no tikv cluster reachable: %s", err.Error())
	}
	return cli
}

func TestTxnKVClient_PutGetDelete(t *testing.T) {
	cli := openTestClient(t)
	defer cli.Close()
	ctx := context.TODO()

	key, val := []byte("tikv_test_key"), []byte("tikv_test_val")
	if err := cli.Put(ctx, key, val); err != nil {
		t.Fatalf("put err:%s", err.Error())
	}
	got, err := cli.Get(ctx, key)
	if err != nil {
		t.Fatalf("get err:%s", err.Error())
	}
	if !bytes.Equal(got, val) {
		t.Fatalf("get %q expected %q", got, val)
	}
	if err = cli.Delete(ctx, key); err != nil {
		t.Fatalf("delete err:%s", err.Error())
	}
	got, err = cli.Get(ctx, key)
	if err != nil {
		t.Fatalf("get after delete err:%s", err.Error())
	}
	if got != nil {
		t.Fatalf("get after delete %q expected nil", got)
	}
}

func TestTxnKVClient_SnapshotSeeks(t *testing.T) {
	cli := openTestClient(t)
	defer cli.Close()
	ctx := context.TODO()

	keys := [][]byte{[]byte("tikv_seek_b"), []byte("tikv_seek_d"), []byte("tikv_seek_f")}
	vals := [][]byte{[]byte("1"), []byte("2"), []byte("3")}
	if err := cli.BatchPut(ctx, keys, vals); err != nil {
		t.Fatalf("batch put err:%s", err.Error())
	}
	defer cli.BatchDelete(ctx, keys)

	snap, err := cli.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot err:%s", err.Error())
	}
	k, err := snap.SeekGE(ctx, []byte("tikv_seek_c"))
	if err != nil {
		t.Fatalf("seek ge err:%s", err.Error())
	}
	if !bytes.Equal(k, []byte("tikv_seek_d")) {
		t.Fatalf("seek ge get %q expected tikv_seek_d", k)
	}
	k, err = snap.SeekLT(ctx, []byte("tikv_seek_d"))
	if err != nil {
		t.Fatalf("seek lt err:%s", err.Error())
	}
	if !bytes.Equal(k, []byte("tikv_seek_b")) {
		t.Fatalf("seek lt get %q expected tikv_seek_b", k)
	}
}

func TestTxnKVClient_ExecuteTxn(t *testing.T) {
	cli := openTestClient(t)
	defer cli.Close()
	ctx := context.TODO()

	key := []byte("tikv_txn_key")
	defer cli.Delete(ctx, key)

	res, err := cli.ExecuteTxn(ctx, func(txn driver.IKVTxn) (interface{}, error) {
		if err := txn.Set(key, []byte("v1")); err != nil {
			return nil, err
		}
		// the txn sees its own write
		return txn.Get(ctx, key)
	})
	if err != nil {
		t.Fatalf("execute txn err:%s", err.Error())
	}
	if !bytes.Equal(res.([]byte), []byte("v1")) {
		t.Fatalf("res get %q expected v1", res)
	}
}
