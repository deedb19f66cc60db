package xdiskv

import (
	"bytes"
	"testing"
)

func TestKey_Successor(t *testing.T) {
	k := Key("alpha")
	s := k.Successor()
	if !bytes.Equal(s, append([]byte("alpha"), 0)) {
		t.Fatalf("successor get %q expected %q", s, "alpha\x00")
	}
	if s.Compare(k) <= 0 {
		t.Fatalf("successor %q not greater than %q", s, k)
	}
}

func TestKey_Last(t *testing.T) {
	k := Key("alpha")
	l := k.Last()
	if !bytes.Equal(l, append([]byte("alpha"), 0xff)) {
		t.Fatalf("last get %q expected %q", l, "alpha\xff")
	}
	if l.Compare(k.Successor()) < 0 {
		t.Fatalf("last %q sorts before successor %q", l, k.Successor())
	}
}

func TestKey_NextSibling(t *testing.T) {
	tests := []struct {
		name    string
		key     Key
		want    Key
		wantErr error
	}{
		{"simple", Key("alpha"), Key("alphb"), nil},
		{"trailing ff", Key{'a', 0xff}, Key{'b'}, nil},
		{"multi trailing ff", Key{'a', 0xff, 0xff}, Key{'b'}, nil},
		{"all ff", Key{0xff, 0xff}, nil, ErrInvalidRange},
		{"empty", Key{}, nil, ErrEmptyKey},
	}
	for _, tt := range tests {
		got, err := tt.key.NextSibling()
		if err != tt.wantErr {
			t.Fatalf("%s: err get %v expected %v", tt.name, err, tt.wantErr)
		}
		if tt.wantErr != nil {
			continue
		}
		if !got.Equal(tt.want) {
			t.Fatalf("%s: get %q expected %q", tt.name, got, tt.want)
		}
		if got.Compare(tt.key.Last()) <= 0 {
			t.Fatalf("%s: next sibling %q not greater than last %q", tt.name, got, tt.key.Last())
		}
	}
}

func TestKey_NextSiblingImmutable(t *testing.T) {
	k := Key{'a', 0xff}
	if _, err := k.NextSibling(); err != nil {
		t.Fatalf("next sibling err:%s", err.Error())
	}
	if !k.Equal(Key{'a', 0xff}) {
		t.Fatalf("receiver mutated: %q", k)
	}
}

func TestKey_SuccessorOrderingDense(t *testing.T) {
	// no byte string sorts strictly between k and k+0x00
	k := Key("k")
	s := k.Successor()
	candidates := []Key{Key("k"), Key{'k', 0}, Key{'k', 0, 0}, Key("k0"), Key("l")}
	for _, c := range candidates {
		if k.Compare(c) < 0 && c.Compare(s) < 0 {
			t.Fatalf("found %q strictly between %q and its successor", c, k)
		}
	}
}

func TestKey_Namespaces(t *testing.T) {
	ordinary := Key("user")
	system := Key{0xff, 'm', 'e', 't', 'a'}
	special := Key{0xff, 0xff, 's', 't', 'a', 't', 'u', 's'}

	if ordinary.IsSystem() || ordinary.IsSpecial() {
		t.Fatalf("ordinary key classified reserved")
	}
	if !system.IsSystem() || system.IsSpecial() {
		t.Fatalf("system key misclassified")
	}
	if !special.IsSystem() || !special.IsSpecial() {
		t.Fatalf("special key misclassified")
	}

	// plain lexicographic: ordinary < system < special
	if ordinary.Compare(system) >= 0 {
		t.Fatalf("ordinary %q not below system %q", ordinary, system)
	}
	if system.Compare(special) >= 0 {
		t.Fatalf("system %q not below special %q", system, special)
	}
}
