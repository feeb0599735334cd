package field

import (
	"bytes"
	"math/big"
	"testing"
)

func bigP() *big.Int {
	return new(big.Int).SetUint64(PrimeOrder)
}

// refMod reduces a uint64 modulo P using math/big, as an independent
// reference for New's bit-trick reduction.
func refMod(v uint64) uint64 {
	r := new(big.Int).Mod(new(big.Int).SetUint64(v), bigP())
	return r.Uint64()
}

func TestPrimeOrderValue(t *testing.T) {
	want := uint64(1)<<nBits - uint64(1)<<offsetBit - 1
	if PrimeOrder != want {
		t.Fatalf("PrimeOrder = %d, want %d", PrimeOrder, want)
	}
}

func TestValueCanonicalizes(t *testing.T) {
	tests := []struct {
		in   uint64
		want uint64
	}{
		{0, 0},
		{1, 1},
		{PrimeOrder - 1, PrimeOrder - 1},
		{PrimeOrder, 0},
		{PrimeOrder + 1, 1},
		{PrimeOrder * 2, 0},
		{1 << 62, refMod(1 << 62)},
		{^uint64(0), refMod(^uint64(0))},
	}
	for _, tt := range tests {
		got := New(tt.in).Value()
		if got != tt.want {
			t.Errorf("New(%d).Value() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestZeroOne(t *testing.T) {
	if !Zero().IsZero() {
		t.Error("Zero() is not IsZero()")
	}
	if One().Value() != 1 {
		t.Errorf("One().Value() = %d, want 1", One().Value())
	}
	if One().IsZero() {
		t.Error("One() reported IsZero()")
	}
}

func TestAddSubAgainstBig(t *testing.T) {
	inputs := []uint64{0, 1, 2, 12345, PrimeOrder - 1, PrimeOrder / 2, 1 << 40}
	for _, x := range inputs {
		for _, y := range inputs {
			a, b := New(x), New(y)

			wantAdd := new(big.Int).Add(new(big.Int).SetUint64(refMod(x)), new(big.Int).SetUint64(refMod(y)))
			wantAdd.Mod(wantAdd, bigP())
			if got := a.Add(b).Value(); got != wantAdd.Uint64() {
				t.Errorf("New(%d).Add(New(%d)) = %d, want %d", x, y, got, wantAdd.Uint64())
			}

			wantSub := new(big.Int).Sub(new(big.Int).SetUint64(refMod(x)), new(big.Int).SetUint64(refMod(y)))
			wantSub.Mod(wantSub, bigP())
			if got := a.Sub(b).Value(); got != wantSub.Uint64() {
				t.Errorf("New(%d).Sub(New(%d)) = %d, want %d", x, y, got, wantSub.Uint64())
			}
		}
	}
}

func TestNeg(t *testing.T) {
	for _, x := range []uint64{0, 1, PrimeOrder - 1, 12345} {
		a := New(x)
		if sum := a.Add(a.Neg()).Value(); sum != 0 {
			t.Errorf("New(%d) + Neg = %d, want 0", x, sum)
		}
	}
}

func TestMulAgainstBig(t *testing.T) {
	inputs := []uint64{0, 1, 2, 12345, PrimeOrder - 1, PrimeOrder / 2, 1 << 40, 1<<61 - 1}
	for _, x := range inputs {
		for _, y := range inputs {
			want := new(big.Int).Mul(new(big.Int).SetUint64(refMod(x)), new(big.Int).SetUint64(refMod(y)))
			want.Mod(want, bigP())

			a, b := New(x), New(y)
			if got := a.Mul(b).Value(); got != want.Uint64() {
				t.Errorf("New(%d).Mul(New(%d)) = %d, want %d", x, y, got, want.Uint64())
			}
			if got := a.MulKaratsuba(b).Value(); got != want.Uint64() {
				t.Errorf("New(%d).MulKaratsuba(New(%d)) = %d, want %d", x, y, got, want.Uint64())
			}
		}
	}
}

func TestMulPathsAgreeOnRange(t *testing.T) {
	for x := uint64(0); x < 2000; x++ {
		a := New(x)
		b := New(PrimeOrder - 1 - x%997)
		if got, want := a.Mul(b).Value(), a.MulKaratsuba(b).Value(); got != want {
			t.Fatalf("Mul/MulKaratsuba disagree for x=%d: %d != %d", x, got, want)
		}
	}
}

func TestRecipIsInverse(t *testing.T) {
	inputs := []uint64{1, 2, 3, 999, 12345, PrimeOrder - 1, PrimeOrder / 2}
	for _, x := range inputs {
		a := New(x)
		inv := a.Recip()
		if got := a.Mul(inv).Value(); got != 1 {
			t.Errorf("New(%d) * Recip() = %d, want 1", x, got)
		}
	}
}

func TestRecipOfOneIsOne(t *testing.T) {
	if got := One().Recip().Value(); got != 1 {
		t.Errorf("One().Recip() = %d, want 1", got)
	}
}

func TestDivRoundTrip(t *testing.T) {
	inputs := []uint64{1, 2, 3, 999, 12345, PrimeOrder - 1}
	for _, x := range inputs {
		for _, y := range inputs {
			a, b := New(x), New(y)
			q := a.Div(b)
			if got := q.Mul(b).Value(); got != a.Value() {
				t.Errorf("(New(%d)/New(%d))*New(%d) = %d, want %d", x, y, y, got, a.Value())
			}
		}
	}
}

func TestEqual(t *testing.T) {
	a := New(PrimeOrder + 5)
	b := New(5)
	if !a.Equal(b) {
		t.Error("lazily-reduced equivalent values not reported Equal")
	}
	if a.Equal(New(6)) {
		t.Error("distinct values reported Equal")
	}
}

func TestString(t *testing.T) {
	if got, want := New(42).String(), "42"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := New(PrimeOrder+7).String(), "7"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFromReduced(t *testing.T) {
	if _, ok := FromReduced(PrimeOrder); ok {
		t.Error("FromReduced(PrimeOrder) reported ok")
	}
	if _, ok := FromReduced(PrimeOrder + 1); ok {
		t.Error("FromReduced(PrimeOrder+1) reported ok")
	}
	fe, ok := FromReduced(PrimeOrder - 1)
	if !ok || fe.Value() != PrimeOrder-1 {
		t.Errorf("FromReduced(PrimeOrder-1) = (%v, %v), want (%d, true)", fe, ok, PrimeOrder-1)
	}
}

func TestRandomRejectsOutOfRange(t *testing.T) {
	// A reader that first yields a value >= fullBitsMask's range boundary,
	// then a value well within range, exercises the rejection loop.
	r := bytes.NewReader([]byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, // rejected: masked value >= PrimeOrder
		0, 0, 0, 0, 0, 0, 0, 7, // accepted: 7
	})
	fe, err := Random(r)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if fe.Value() != 7 {
		t.Errorf("Random() = %d, want 7", fe.Value())
	}
}

func TestRandomPropagatesReadError(t *testing.T) {
	if _, err := Random(bytes.NewReader(nil)); err == nil {
		t.Error("expected error from empty reader")
	}
}
