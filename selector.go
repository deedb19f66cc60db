package xdiskv

import (
	"context"
	"fmt"

	"github.com/weedge/xdis-kv/driver"
)

// KeySelector addresses a stored key relative to a reference key: anchor at
// the last stored key <= Key (OrEqual) or < Key (!OrEqual), then advance
// Offset positions in sorted key order. Values are immutable.
type KeySelector struct {
	Key     Key
	OrEqual bool
	Offset  int
}

// FirstGreaterOrEqual selects the first stored key >= k.
func FirstGreaterOrEqual(k Key) KeySelector {
	return KeySelector{Key: k, OrEqual: false, Offset: 1}
}

// FirstGreaterThan selects the first stored key > k.
func FirstGreaterThan(k Key) KeySelector {
	return KeySelector{Key: k, OrEqual: true, Offset: 1}
}

// LastLessOrEqual selects the last stored key <= k.
func LastLessOrEqual(k Key) KeySelector {
	return KeySelector{Key: k, OrEqual: true, Offset: 0}
}

// LastLessThan selects the last stored key < k.
func LastLessThan(k Key) KeySelector {
	return KeySelector{Key: k, OrEqual: false, Offset: 0}
}

// Add returns a selector shifted n positions in the key space.
// FirstGreaterOrEqual(k).Add(-1) resolves like LastLessThan(k),
// FirstGreaterOrEqual(k).Add(1) skips one stored key, and so on.
func (s KeySelector) Add(n int) KeySelector {
	return KeySelector{Key: s.Key, OrEqual: s.OrEqual, Offset: s.Offset + n}
}

func (s KeySelector) String() string {
	return fmt.Sprintf("sel(%q orEqual:%v offset:%d)", []byte(s.Key), s.OrEqual, s.Offset)
}

// Resolve walks the snapshot to the concrete stored key the selector names.
// Walking past either end of the key space returns ErrRangeBoundsExceeded.
func (s KeySelector) Resolve(ctx context.Context, snap driver.ISnapshot) (Key, error) {
	var cur []byte
	var err error
	if s.OrEqual {
		cur, err = snap.SeekLE(ctx, s.Key)
	} else {
		cur, err = snap.SeekLT(ctx, s.Key)
	}
	if err != nil {
		return nil, err
	}

	// nil cur anchors one position before the first stored key
	for off := s.Offset; off > 0; off-- {
		var next []byte
		if cur == nil {
			next, err = snap.SeekGE(ctx, nil)
		} else {
			next, err = snap.SeekGT(ctx, cur)
		}
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, ErrRangeBoundsExceeded
		}
		cur = next
	}
	for off := s.Offset; off < 0; off++ {
		if cur == nil {
			return nil, ErrRangeBoundsExceeded
		}
		cur, err = snap.SeekLT(ctx, cur)
		if err != nil {
			return nil, err
		}
	}

	if cur == nil {
		return nil, ErrRangeBoundsExceeded
	}
	return Key(cur), nil
}
