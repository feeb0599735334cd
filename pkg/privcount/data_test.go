package privcount

import (
	"encoding/binary"
	"testing"

	"github.com/nmathewson/privcount-shamir/pkg/field"
	"github.com/nmathewson/privcount-shamir/pkg/perrors"
)

func TestTrKeysXCoordinate(t *testing.T) {
	var keys TrKeys
	binary.BigEndian.PutUint64(keys.SigningKey[:8], 12345)
	want := field.New(12345)
	if got := keys.XCoordinate(); !got.Equal(want) {
		t.Errorf("XCoordinate() = %v, want %v", got, want)
	}
}

func TestSeedFromBytesLength(t *testing.T) {
	if _, err := SeedFromBytes(make([]byte, 31)); !perrors.Is(err, perrors.BadParameter) {
		t.Fatalf("SeedFromBytes(31 bytes) = %v, want BadParameter", err)
	}
	s, err := SeedFromBytes(make([]byte, SeedLen))
	if err != nil {
		t.Fatalf("SeedFromBytes(32 bytes): %v", err)
	}
	if len(s.Bytes()) != SeedLen {
		t.Fatalf("len(Bytes()) = %d, want %d", len(s.Bytes()), SeedLen)
	}
}

func TestCounterMasksDeterministic(t *testing.T) {
	s, err := SeedFromBytes(make([]byte, SeedLen))
	if err != nil {
		t.Fatalf("SeedFromBytes: %v", err)
	}
	m1, err := s.CounterMasks(10)
	if err != nil {
		t.Fatalf("CounterMasks: %v", err)
	}
	m2, err := s.CounterMasks(10)
	if err != nil {
		t.Fatalf("CounterMasks: %v", err)
	}
	if len(m1) != 10 || len(m2) != 10 {
		t.Fatalf("len(masks) = %d,%d, want 10,10", len(m1), len(m2))
	}
	for i := range m1 {
		if !m1[i].Equal(m2[i]) {
			t.Errorf("mask %d not deterministic: %v != %v", i, m1[i], m2[i])
		}
	}
}

func TestCounterMasksDifferentSeeds(t *testing.T) {
	a, _ := SeedFromBytes(make([]byte, SeedLen))
	bBytes := make([]byte, SeedLen)
	bBytes[0] = 1
	b, _ := SeedFromBytes(bBytes)

	ma, err := a.CounterMasks(4)
	if err != nil {
		t.Fatalf("CounterMasks: %v", err)
	}
	mb, err := b.CounterMasks(4)
	if err != nil {
		t.Fatalf("CounterMasks: %v", err)
	}
	same := true
	for i := range ma {
		if !ma[i].Equal(mb[i]) {
			same = false
		}
	}
	if same {
		t.Fatal("two different seeds produced identical mask streams")
	}
}

func TestCounterMasksTooMany(t *testing.T) {
	s, _ := SeedFromBytes(make([]byte, SeedLen))
	if _, err := s.CounterMasks(MaxCounters + 1); !perrors.Is(err, perrors.BadParameter) {
		t.Fatalf("CounterMasks(MaxCounters+1) = %v, want BadParameter", err)
	}
}

func TestCounterMasksZero(t *testing.T) {
	s, _ := SeedFromBytes(make([]byte, SeedLen))
	masks, err := s.CounterMasks(0)
	if err != nil {
		t.Fatalf("CounterMasks(0): %v", err)
	}
	if len(masks) != 0 {
		t.Fatalf("len(masks) = %d, want 0", len(masks))
	}
}

func TestZeroNoise(t *testing.T) {
	n, err := ZeroNoise(nil)
	if err != nil {
		t.Fatalf("ZeroNoise: %v", err)
	}
	if !n.IsZero() {
		t.Fatalf("ZeroNoise() = %v, want zero", n)
	}
}
