package monitor

import "testing"

func TestDecodeStatusEmpty(t *testing.T) {
	if got := DecodeStatus(0); len(got) != 0 {
		t.Fatalf("decode(0) should be empty, got %v", got)
	}
}

func TestDecodeStatusLowBits(t *testing.T) {
	got := DecodeStatus(0b11)
	if len(got) != 2 {
		t.Fatalf("decode(0b11) should yield two conditions, got %v", got)
	}
	if got[0] != StatusTurbineOK || got[1] != StatusGridConnection {
		t.Fatalf("decode(0b11) = %v", got)
	}
}

func TestDecodeStatusEachBit(t *testing.T) {
	for bit, name := range statusBitNames {
		got := DecodeStatus(1 << bit)
		if len(got) != 1 || got[0] != name {
			t.Fatalf("bit %d should decode to %q, got %v", bit, name, got)
		}
	}
}

func TestDecodeStatusAllBits(t *testing.T) {
	got := DecodeStatus(0xFFFF)
	if len(got) != 16 {
		t.Fatalf("decode(0xFFFF) should yield 16 conditions, got %d", len(got))
	}
	for _, name := range statusBitNames {
		if !got.Contains(name) {
			t.Fatalf("decode(0xFFFF) missing %q", name)
		}
	}
}

func TestStatusContains(t *testing.T) {
	s := DecodeStatus(1 << 10)
	if !s.Contains(StatusEmergencyStop) {
		t.Fatal("emergency stop bit should decode")
	}
	if s.Contains(StatusTurbineOK) {
		t.Fatal("turbine ok should not be present")
	}
}
