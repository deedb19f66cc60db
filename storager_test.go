package xdiskv

import (
	"context"
	"testing"

	"github.com/weedge/xdis-kv/config"
)

func TestStorager_InitOpts(t *testing.T) {
	store := &Storager{}
	opts := config.DefaultStoragerOptions()
	opts.Databases = 0
	opts.SlowTxnMs = 0
	store.InitOpts(opts)

	if store.opts.Databases != config.DefaultDatabases {
		t.Fatalf("databases get %d expected %d", store.opts.Databases, config.DefaultDatabases)
	}
	if store.opts.SlowTxnMs != config.DefaultSlowTxnMs {
		t.Fatalf("slow txn ms get %d expected %d", store.opts.SlowTxnMs, config.DefaultSlowTxnMs)
	}

	opts.Databases = MaxDatabases + 1
	store.InitOpts(opts)
	if store.opts.Databases != MaxDatabases {
		t.Fatalf("databases get %d expected clamp to %d", store.opts.Databases, MaxDatabases)
	}
}

func TestStorager_PrefixFraming(t *testing.T) {
	store := &Storager{}
	opts := config.DefaultStoragerOptions()
	opts.PrefixKey = "teststore"
	store.InitOpts(opts)

	if len(store.prefixKey) != 2+len("teststore") {
		t.Fatalf("prefix key len get %d expected %d", len(store.prefixKey), 2+len("teststore"))
	}

	// stores with different prefixes never overlap in the key space
	other := &Storager{}
	otherOpts := config.DefaultStoragerOptions()
	otherOpts.PrefixKey = "otherstore"
	other.InitOpts(otherOpts)

	db := NewDB(store, 0)
	r, err := db.DataRange()
	if err != nil {
		t.Fatalf("data range err:%s", err.Error())
	}
	odb := NewDB(other, 0)
	if r.Contains(odb.encodeDataKey([]byte("k"))) {
		t.Fatalf("prefix framed ranges overlap across stores")
	}
}

func TestStorager_SelectBounds(t *testing.T) {
	ctx := context.TODO()
	store := &Storager{}
	store.InitOpts(config.DefaultStoragerOptions())
	store.dbs = make(map[int]*DB)

	if _, err := store.Select(ctx, -1); err == nil {
		t.Fatalf("negative index must fail")
	}
	if _, err := store.Select(ctx, store.opts.Databases); err == nil {
		t.Fatalf("index past databases must fail")
	}

	db, err := store.Select(ctx, 1)
	if err != nil {
		t.Fatalf("select err:%s", err.Error())
	}
	again, err := store.Select(ctx, 1)
	if err != nil {
		t.Fatalf("select err:%s", err.Error())
	}
	if db != again {
		t.Fatalf("select must reuse the db instance")
	}
}
