package config

type TikvClientOptions struct {
	// tikv client conf
	PDAddrs string `mapstructure:"pdAddrs"`

	// txn conf
	UseAsyncCommit    bool `mapstructure:"useAsyncCommit"`
	TryOnePcCommit    bool `mapstructure:"tryOnePcCommit"`
	UsePessimisticTxn bool `mapstructure:"usePessimisticTxn"`
}

type TxnRetryOptions struct {
	// MaxRetries max commit retries on write conflict
	MaxRetries uint64 `mapstructure:"maxRetries"`
	// BackoffMs initial backoff between retries
	BackoffMs int `mapstructure:"backoffMs"`
	// MaxBackoffMs cap for the exponential backoff
	MaxBackoffMs int `mapstructure:"maxBackoffMs"`
}

type StoragerOptions struct {
	Databases int `mapstructure:"databases"`
	// PrefixKey namespaces every key this store writes, so several stores
	// can share one kv cluster
	PrefixKey string `mapstructure:"prefixKey"`
	// SlowTxnMs log transactions running longer than this
	SlowTxnMs int `mapstructure:"slowTxnMs"`

	TiKVClient TikvClientOptions `mapstructure:"tikvClientOpts"`
	TxnRetry   TxnRetryOptions   `mapstructure:"txnRetryOpts"`
}

const (
	DefaultDatabases = 16
	DefaultSlowTxnMs = 1000
)

func DefaultTikvClientOptions() *TikvClientOptions {
	return &TikvClientOptions{
		PDAddrs:           "127.0.0.1:2379",
		UseAsyncCommit:    false,
		TryOnePcCommit:    false,
		UsePessimisticTxn: false,
	}
}

func DefaultTxnRetryOptions() *TxnRetryOptions {
	return &TxnRetryOptions{
		MaxRetries:   10,
		BackoffMs:    2,
		MaxBackoffMs: 500,
	}
}

func DefaultStoragerOptions() *StoragerOptions {
	return &StoragerOptions{
		Databases:  DefaultDatabases,
		PrefixKey:  "xdiskv",
		SlowTxnMs:  DefaultSlowTxnMs,
		TiKVClient: *DefaultTikvClientOptions(),
		TxnRetry:   *DefaultTxnRetryOptions(),
	}
}
