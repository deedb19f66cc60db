package xdiskv

import "bytes"

// Key is an immutable byte sequence ordered lexicographically by unsigned
// byte value. Helpers return fresh slices, the receiver is never mutated.
type Key []byte

func (k Key) Compare(o Key) int {
	return bytes.Compare(k, o)
}

func (k Key) Equal(o Key) bool {
	return bytes.Equal(k, o)
}

func (k Key) Clone() Key {
	if k == nil {
		return nil
	}
	c := make(Key, len(k))
	copy(c, k)
	return c
}

// Successor returns k + 0x00, the smallest key strictly greater than k.
func (k Key) Successor() Key {
	s := make(Key, len(k)+1)
	copy(s, k)
	return s
}

// Last returns k + 0xff, an upper bound that still sorts below any key
// lexicographically greater than every descendant of k.
func (k Key) Last() Key {
	s := make(Key, len(k)+1)
	copy(s, k)
	s[len(k)] = 0xff
	return s
}

// NextSibling returns the smallest key greater than every key prefixed by k:
// strip trailing 0xff bytes and increment the last remaining byte.
// Fails on an empty key and on a key consisting entirely of 0xff bytes.
func (k Key) NextSibling() (Key, error) {
	if len(k) == 0 {
		return nil, ErrEmptyKey
	}
	i := len(k) - 1
	for ; i >= 0; i-- {
		if k[i] != 0xff {
			break
		}
	}
	if i < 0 {
		return nil, ErrInvalidRange
	}
	s := make(Key, i+1)
	copy(s, k[:i+1])
	s[i]++
	return s, nil
}

// IsSystem reports whether k lives in the reserved 0xff engine namespace.
func (k Key) IsSystem() bool {
	return len(k) > 0 && k[0] == 0xff
}

// IsSpecial reports whether k lives in the 0xff 0xff namespace of server
// computed, non persisted keys.
func (k Key) IsSpecial() bool {
	return len(k) > 1 && k[0] == 0xff && k[1] == 0xff
}

func (k Key) checkSize() error {
	if len(k) > MaxKeySize {
		return ErrKeyTooLong
	}
	return nil
}

// concatKey joins a prefix key and already encoded suffix parts.
func concatKey(prefix Key, parts ...[]byte) Key {
	n := len(prefix)
	for _, p := range parts {
		n += len(p)
	}
	buf := make(Key, 0, n)
	buf = append(buf, prefix...)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}
