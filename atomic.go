package xdiskv

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// MutationOp tags one buffered mutation on a key. Ops other than
// MutationSet are applied against the stored value at commit time by the
// engine; the Apply funcs here define the merged result so the client can
// honor read-your-writes before commit.
type MutationOp byte

const (
	// MutationSet last-write-wins plain set, resets the baseline.
	MutationSet MutationOp = iota
	// MutationClear removes the key.
	MutationClear
	// MutationAdd little-endian addition with carry, wrapping.
	MutationAdd
	// MutationBitAnd byte-wise and, shorter side zero extended.
	MutationBitAnd
	// MutationBitOr byte-wise or, shorter side zero extended.
	MutationBitOr
	// MutationBitXor byte-wise xor, shorter side zero extended.
	MutationBitXor
	// MutationMax keep the byte-lexicographically larger value.
	MutationMax
	// MutationMin keep the byte-lexicographically smaller value.
	MutationMin
)

var mutationName = map[MutationOp]string{
	MutationSet:    "set",
	MutationClear:  "clear",
	MutationAdd:    "add",
	MutationBitAnd: "and",
	MutationBitOr:  "or",
	MutationBitXor: "xor",
	MutationMax:    "max",
	MutationMin:    "min",
}

func (op MutationOp) String() string {
	if s, ok := mutationName[op]; ok {
		return s
	}
	return fmt.Sprintf("mutationOp(%d)", byte(op))
}

// Apply folds the operand into the stored value per the op's algebra.
// A nil old means the key was absent: the operand is stored as-is for
// Max/Min, and acts against all-zero bytes for Add/And/Or/Xor.
// Add/And/Or/Xor/Max/Min are associative; Max/Min/And/Or are also
// idempotent; Set is neither, it discards old entirely.
func (op MutationOp) Apply(old, operand []byte) []byte {
	switch op {
	case MutationSet:
		return cloneBytes(operand)
	case MutationClear:
		return nil
	case MutationAdd:
		return mutateAdd(old, operand)
	case MutationBitAnd:
		return mutateBitwise(old, operand, func(a, b byte) byte { return a & b })
	case MutationBitOr:
		return mutateBitwise(old, operand, func(a, b byte) byte { return a | b })
	case MutationBitXor:
		return mutateBitwise(old, operand, func(a, b byte) byte { return a ^ b })
	case MutationMax:
		if old == nil || bytes.Compare(operand, old) > 0 {
			return cloneBytes(operand)
		}
		return cloneBytes(old)
	case MutationMin:
		if old == nil || bytes.Compare(operand, old) < 0 {
			return cloneBytes(operand)
		}
		return cloneBytes(old)
	}
	return cloneBytes(old)
}

// mutateAdd adds two little-endian integers of arbitrary length. The result
// has the length of the longer operand, the final carry is dropped.
func mutateAdd(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	var carry uint16
	for i := 0; i < n; i++ {
		sum := carry
		if i < len(a) {
			sum += uint16(a[i])
		}
		if i < len(b) {
			sum += uint16(b[i])
		}
		out[i] = byte(sum)
		carry = sum >> 8
	}
	return out
}

func mutateBitwise(a, b []byte, f func(x, y byte) byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var x, y byte
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		out[i] = f(x, y)
	}
	return out
}

// AddInt32LE folds a typed 32 bit wrapping add into a stored value. The
// stored value must be absent (treated as zero) or exactly 4 bytes
// little-endian, otherwise ErrEncodingMismatch.
func AddInt32LE(old []byte, delta int32) ([]byte, error) {
	var base int32
	switch len(old) {
	case 0:
	case 4:
		base = int32(binary.LittleEndian.Uint32(old))
	default:
		return nil, fmt.Errorf("%w: add32 on %d byte value", ErrEncodingMismatch, len(old))
	}
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, uint32(base+delta))
	return out, nil
}

// AddInt64LE folds a typed 64 bit wrapping add into a stored value. The
// stored value must be absent or exactly 8 bytes little-endian.
func AddInt64LE(old []byte, delta int64) ([]byte, error) {
	var base int64
	switch len(old) {
	case 0:
	case 8:
		base = int64(binary.LittleEndian.Uint64(old))
	default:
		return nil, fmt.Errorf("%w: add64 on %d byte value", ErrEncodingMismatch, len(old))
	}
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(base+delta))
	return out, nil
}

// Big-endian fixed-width encodings sort byte-lexicographically in numeric
// order, so MutationMax/MutationMin over them are numeric max/min. The
// little-endian encodings used by AddInt32LE/AddInt64LE do NOT have this
// property; never feed them to Max/Min expecting numeric comparison.

func EncodeUint32BE(v uint32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, v)
	return out
}

func EncodeUint64BE(v uint64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, v)
	return out
}

// DecodeUint32BE rejects values of the wrong width with ErrEncodingMismatch.
func DecodeUint32BE(v []byte) (uint32, error) {
	if len(v) != 4 {
		return 0, fmt.Errorf("%w: u32be on %d byte value", ErrEncodingMismatch, len(v))
	}
	return binary.BigEndian.Uint32(v), nil
}

func DecodeUint64BE(v []byte) (uint64, error) {
	if len(v) != 8 {
		return 0, fmt.Errorf("%w: u64be on %d byte value", ErrEncodingMismatch, len(v))
	}
	return binary.BigEndian.Uint64(v), nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
