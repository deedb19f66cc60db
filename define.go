package xdiskv

// DataType is the framing byte for user data keys inside a db namespace.
// keep a single byte like other kv layer framing, leave room for meta types
const (
	DataType byte = 'd'
)

// TypeName get the data type name
var TypeName = map[byte]string{
	DataType: "data",
}

const (
	// MaxDatabases max logical db instances on one kv store engine
	MaxDatabases int = 10240

	// MaxKeySize max encoded key size accepted by range builders
	MaxKeySize int = 10000
	// MaxValueSize max operand/value size accepted by the mutation engine
	MaxValueSize int = 100000

	// DefaultScanCount default kv pairs returned by one range read
	DefaultScanCount int = 10
)

var (
	// SystemPrefix keys under 0xff are reserved for the store engine
	SystemPrefix = Key{0xff}
	// SpecialPrefix keys under 0xff 0xff are server computed, not persisted
	SpecialPrefix = Key{0xff, 0xff}
)
