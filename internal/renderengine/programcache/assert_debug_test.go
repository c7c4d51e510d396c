//go:build programcache_debug

package programcache

import (
	"strings"
	"testing"
)

func TestSetOutsideMaskPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Set with a value outside its mask should panic in debug builds")
		}
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "outside mask") {
			t.Errorf("unexpected panic value %v", r)
		}
	}()
	Bits(0).Set(OpacityMask, BlurOn)
}

func TestEncodeValidKeysDoesNotPanic(t *testing.T) {
	for b := Bits(0); b <= FieldsMask; b++ {
		k := Decode(b)
		if !k.Valid() {
			continue
		}
		if got := k.Encode(); got != b {
			t.Errorf("Decode(%#x).Encode() = %#x", uint32(b), uint32(got))
		}
	}
}

func TestPrimeDoesNotPanic(t *testing.T) {
	l := &fakeLinker{}
	c := New(l, Config{Prime: true})
	if c.Len() != 24 {
		t.Errorf("primed %d programs, want 24", c.Len())
	}
}
