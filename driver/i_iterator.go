package driver

// IIterator walks stored kv pairs in key order. Valid reports whether the
// cursor is on a pair; Next after the last pair leaves the iterator invalid.
type IIterator interface {
	Valid() bool
	Key() []byte
	Value() []byte
	Next() error
	Close()
}
