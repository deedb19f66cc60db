package xdiskv

import "fmt"

// BoundMode says how a range endpoint key maps to the resolved bound.
type BoundMode byte

const (
	// Inclusive the endpoint key itself is inside the range.
	Inclusive BoundMode = iota
	// Exclusive the endpoint key itself is outside the range.
	Exclusive
	// NextSibling the bound is the smallest key greater than every key
	// prefixed by the endpoint key.
	NextSibling
	// Last the bound is endpoint + 0xff, covering all nested descendants.
	Last
)

func (m BoundMode) String() string {
	switch m {
	case Inclusive:
		return "inclusive"
	case Exclusive:
		return "exclusive"
	case NextSibling:
		return "nextSibling"
	case Last:
		return "last"
	}
	return fmt.Sprintf("boundMode(%d)", byte(m))
}

// KeyRange is a resolved [begin, end) interval over the key space together
// with the endpoint keys and modes it was built from. Values are immutable.
type KeyRange struct {
	lower     Key
	lowerMode BoundMode
	upper     Key
	upperMode BoundMode

	begin Key
	end   Key
}

// resolveLowerBound maps (key, mode) to the first key inside the range.
func resolveLowerBound(k Key, mode BoundMode) (Key, error) {
	switch mode {
	case Inclusive:
		return k.Clone(), nil
	case Exclusive:
		return k.Successor(), nil
	case NextSibling:
		return k.NextSibling()
	case Last:
		return k.Last(), nil
	}
	return nil, fmt.Errorf("%w: unknown lower bound mode %d", ErrInvalidRange, mode)
}

// resolveUpperBound maps (key, mode) to the first key past the range.
func resolveUpperBound(k Key, mode BoundMode) (Key, error) {
	switch mode {
	case Exclusive:
		return k.Clone(), nil
	case Inclusive:
		return k.Successor(), nil
	case NextSibling:
		return k.NextSibling()
	case Last:
		return k.Last(), nil
	}
	return nil, fmt.Errorf("%w: unknown upper bound mode %d", ErrInvalidRange, mode)
}

// RangeBetween builds a range from explicit endpoint keys and modes.
// Fails with ErrInvalidRange when the resolved bounds cross and with
// ErrKeyTooLong when a resolved bound exceeds MaxKeySize.
func RangeBetween(lower Key, lowerMode BoundMode, upper Key, upperMode BoundMode) (KeyRange, error) {
	begin, err := resolveLowerBound(lower, lowerMode)
	if err != nil {
		return KeyRange{}, err
	}
	end, err := resolveUpperBound(upper, upperMode)
	if err != nil {
		return KeyRange{}, err
	}
	if err = begin.checkSize(); err != nil {
		return KeyRange{}, err
	}
	if err = end.checkSize(); err != nil {
		return KeyRange{}, err
	}
	if begin.Compare(end) > 0 {
		return KeyRange{}, fmt.Errorf("%w: begin %q > end %q", ErrInvalidRange, []byte(begin), []byte(end))
	}
	return KeyRange{
		lower: lower.Clone(), lowerMode: lowerMode,
		upper: upper.Clone(), upperMode: upperMode,
		begin: begin, end: end,
	}, nil
}

// SingleKeyRange covers exactly one key: [k, k+0x00).
func SingleKeyRange(k Key) (KeyRange, error) {
	return RangeBetween(k, Inclusive, k, Inclusive)
}

// PrefixRange covers every key prefixed by p: [p, nextSibling(p)).
func PrefixRange(p Key) (KeyRange, error) {
	return RangeBetween(p, Inclusive, p, NextSibling)
}

// HeadRange covers [prefix, prefix+suffix): everything under prefix sorting
// strictly before the extended key.
func HeadRange(prefix Key, suffix ...[]byte) (KeyRange, error) {
	return RangeBetween(prefix, Inclusive, concatKey(prefix, suffix...), Exclusive)
}

// HeadRangeInclusive is HeadRange plus the extended key and all its
// descendants: [prefix, prefix+suffix+0xff).
func HeadRangeInclusive(prefix Key, suffix ...[]byte) (KeyRange, error) {
	return RangeBetween(prefix, Inclusive, concatKey(prefix, suffix...), Last)
}

// TailRange covers [prefix+suffix, prefix+0xff): from the extended key to
// the end of everything under prefix.
func TailRange(prefix Key, suffix ...[]byte) (KeyRange, error) {
	return RangeBetween(concatKey(prefix, suffix...), Inclusive, prefix, Last)
}

// TailRangeExclusive is TailRange minus the extended key and its
// descendants: starts strictly after them.
func TailRangeExclusive(prefix Key, suffix ...[]byte) (KeyRange, error) {
	return RangeBetween(concatKey(prefix, suffix...), NextSibling, prefix, Last)
}

// BeginKey first key inside the range.
func (r KeyRange) BeginKey() Key { return r.begin }

// EndKey first key past the range.
func (r KeyRange) EndKey() Key { return r.end }

// Contains reports begin <= k < end.
func (r KeyRange) Contains(k Key) bool {
	return r.begin.Compare(k) <= 0 && k.Compare(r.end) < 0
}

// BeginSelector drives a server side scan to the first key of the range.
func (r KeyRange) BeginSelector() KeySelector {
	switch r.lowerMode {
	case Inclusive:
		return FirstGreaterOrEqual(r.lower)
	case Exclusive:
		return FirstGreaterThan(r.lower)
	}
	return FirstGreaterOrEqual(r.begin)
}

// EndSelector drives a server side scan to the first key past the range.
func (r KeyRange) EndSelector() KeySelector {
	switch r.upperMode {
	case Exclusive:
		return FirstGreaterOrEqual(r.upper)
	case Inclusive:
		return FirstGreaterThan(r.upper)
	}
	return FirstGreaterOrEqual(r.end)
}

func (r KeyRange) String() string {
	return fmt.Sprintf("range[%q, %q)", []byte(r.begin), []byte(r.end))
}
