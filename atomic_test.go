package xdiskv

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestMutationOp_Apply(t *testing.T) {
	tests := []struct {
		name    string
		op      MutationOp
		old     []byte
		operand []byte
		want    []byte
	}{
		{"set over value", MutationSet, []byte{1, 2}, []byte{9}, []byte{9}},
		{"clear", MutationClear, []byte{1, 2}, nil, nil},
		{"add le carry", MutationAdd, []byte{0xff, 0x00}, []byte{0x01, 0x00}, []byte{0x00, 0x01}},
		{"add wrap drops carry", MutationAdd, []byte{0xff, 0xff}, []byte{0x01, 0x00}, []byte{0x00, 0x00}},
		{"add zero extend", MutationAdd, []byte{0x01}, []byte{0x01, 0x01}, []byte{0x02, 0x01}},
		{"add absent", MutationAdd, nil, []byte{0x05}, []byte{0x05}},
		{"and", MutationBitAnd, []byte{0xf0, 0x0f}, []byte{0xff, 0xf0}, []byte{0xf0, 0x00}},
		{"and zero extend", MutationBitAnd, []byte{0xff}, []byte{0xff, 0xff}, []byte{0xff, 0x00}},
		{"or", MutationBitOr, []byte{0xf0}, []byte{0x0f}, []byte{0xff}},
		{"xor", MutationBitXor, []byte{0xff, 0x00}, []byte{0x0f, 0x0f}, []byte{0xf0, 0x0f}},
		{"max keeps larger", MutationMax, []byte{0x46, 0x46}, []byte{0x45, 0x45}, []byte{0x46, 0x46}},
		{"max takes larger", MutationMax, []byte{0x45, 0x45}, []byte{0x46, 0x46}, []byte{0x46, 0x46}},
		{"max absent", MutationMax, nil, []byte{0x01}, []byte{0x01}},
		{"min takes smaller", MutationMin, []byte{0x46}, []byte{0x45}, []byte{0x45}},
		{"min absent", MutationMin, nil, []byte{0x7f}, []byte{0x7f}},
	}
	for _, tt := range tests {
		got := tt.op.Apply(tt.old, tt.operand)
		if !bytes.Equal(got, tt.want) {
			t.Fatalf("%s: get %x expected %x", tt.name, got, tt.want)
		}
	}
}

// two maxes fold to the max of the operands, order independent
func TestMutationMax_Associative(t *testing.T) {
	v1 := []byte{0x45, 0x45, 0x45, 0x45}
	v2 := []byte{0x46, 0x46, 0x46, 0x46}

	ab := MutationMax.Apply(MutationMax.Apply(nil, v1), v2)
	ba := MutationMax.Apply(MutationMax.Apply(nil, v2), v1)
	folded := MutationMax.Apply(nil, MutationMax.Apply(v1, v2))

	if !bytes.Equal(ab, v2) || !bytes.Equal(ba, v2) || !bytes.Equal(folded, v2) {
		t.Fatalf("max fold get %x / %x / %x expected %x", ab, ba, folded, v2)
	}
}

func TestMutationAdd_Commutative(t *testing.T) {
	base := []byte{0x10, 0x20, 0x30, 0x40}
	d1 := []byte{0xff, 0x00, 0x00, 0x00}
	d2 := []byte{0x02, 0x01, 0x00, 0x00}

	ab := MutationAdd.Apply(MutationAdd.Apply(base, d1), d2)
	ba := MutationAdd.Apply(MutationAdd.Apply(base, d2), d1)
	if !bytes.Equal(ab, ba) {
		t.Fatalf("add not commutative: %x vs %x", ab, ba)
	}
}

// set discards everything folded before it
func TestMutationSet_ResetsBaseline(t *testing.T) {
	v := MutationMax.Apply(nil, []byte{0xee})
	v = MutationSet.Apply(v, []byte{0x01})
	v = MutationMax.Apply(v, []byte{0x02})
	if !bytes.Equal(v, []byte{0x02}) {
		t.Fatalf("get %x expected 02", v)
	}
}

func TestAddInt64LE(t *testing.T) {
	v, err := AddInt64LE(nil, 5)
	if err != nil {
		t.Fatalf("add64 on absent err:%s", err.Error())
	}
	v, err = AddInt64LE(v, -2)
	if err != nil {
		t.Fatalf("add64 err:%s", err.Error())
	}
	if !reflect.DeepEqual(v, []byte{3, 0, 0, 0, 0, 0, 0, 0}) {
		t.Fatalf("get %x expected 3 le64", v)
	}

	if _, err = AddInt64LE([]byte{1, 2, 3}, 1); !errors.Is(err, ErrEncodingMismatch) {
		t.Fatalf("err get %v expected %v", err, ErrEncodingMismatch)
	}
}

func TestAddInt32LE_Wraparound(t *testing.T) {
	base := []byte{0xff, 0xff, 0xff, 0x7f} // math.MaxInt32
	v, err := AddInt32LE(base, 1)
	if err != nil {
		t.Fatalf("add32 err:%s", err.Error())
	}
	if !bytes.Equal(v, []byte{0x00, 0x00, 0x00, 0x80}) {
		t.Fatalf("get %x expected min int32 le", v)
	}
}

// big-endian fixed width values sort byte-lexicographically in numeric
// order, so Max over them is numeric max; little-endian values do not
func TestMaxEncodingContract(t *testing.T) {
	be256, be3 := EncodeUint32BE(256), EncodeUint32BE(3)
	if got := MutationMax.Apply(be3, be256); !bytes.Equal(got, be256) {
		t.Fatalf("be max get %x expected %x", got, be256)
	}

	le256 := []byte{0x00, 0x01, 0x00, 0x00}
	le3 := []byte{0x03, 0x00, 0x00, 0x00}
	if got := MutationMax.Apply(le3, le256); bytes.Equal(got, le256) {
		t.Fatalf("le max unexpectedly numeric, byte order must win")
	}
}

func TestDecodeUintBE(t *testing.T) {
	n, err := DecodeUint64BE(EncodeUint64BE(1 << 40))
	if err != nil {
		t.Fatalf("decode err:%s", err.Error())
	}
	if n != 1<<40 {
		t.Fatalf("get %d expected %d", n, uint64(1)<<40)
	}
	if _, err = DecodeUint32BE([]byte{1}); !errors.Is(err, ErrEncodingMismatch) {
		t.Fatalf("err get %v expected %v", err, ErrEncodingMismatch)
	}
}
