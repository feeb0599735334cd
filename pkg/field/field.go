// Package field implements arithmetic over the pseudo-Mersenne prime field
// used by the privcount-shamir protocol: the residues modulo
// P = 2^N - 2^O - 1, for N = 62 and O = 30.
//
// Values are kept in a lazily-reduced representation to save a conditional
// subtraction on every operation: an FE's internal repr sits in
// [0, feValMax], one bit-reduction step short of canonical. Canonicalization
// to [0, P) happens on Value, Equal, and String — never on addition,
// subtraction, or multiplication. Mixing up lazy and canonical
// representations is the most common way to introduce a silent bug in this
// package; equality and hashing must always canonicalize first.
package field

import "fmt"

const (
	// nBits is the number of bits in a field element's canonical range.
	// Must be even, at most 62, at least 34.
	nBits = 62
	// offsetBit is the bit (other than bit 0) cleared in the prime. Must
	// be less than nBits/2 and not equal to 2 (recip's square-and-multiply
	// sequence assumes this).
	offsetBit = 30

	// PrimeOrder is P = 2^nBits - 2^offsetBit - 1, the order of the field.
	PrimeOrder uint64 = (1 << nBits) - (1 << offsetBit) - 1

	// fullBitsMask masks off every bit not used by a field element's
	// canonical range.
	fullBitsMask uint64 = (1 << nBits) - 1

	// remainingBits is the number of high bits of a uint64 unused by the
	// canonical range.
	remainingBits = 64 - nBits
	// maxExcess is the largest possible value of those unused high bits.
	maxExcess uint64 = (1 << remainingBits) - 1
	// feValMax is the largest value an FE's lazy representation can hold:
	// one bit-reduction step short of canonical.
	feValMax uint64 = fullBitsMask + (maxExcess << offsetBit) + maxExcess
)

// FE is an element of the prime field. The zero value is the field's
// additive identity.
type FE struct {
	// val is kept in the lazily-reduced range [0, feValMax]; it is
	// equivalent modulo PrimeOrder to the element's true value.
	val uint64
}

// bitReduceOnce maps a value in [0, 2^64) to an equivalent (mod PrimeOrder)
// value in [0, feValMax], using the identity 2^nBits ≡ 2^offsetBit + 1
// (mod PrimeOrder).
func bitReduceOnce(v uint64) uint64 {
	excess := v >> nBits
	lowpart := v & fullBitsMask
	return lowpart + excess + (excess << offsetBit)
}

// reduceByP maps a value in [0, 2*PrimeOrder) to [0, PrimeOrder), in
// constant time: it never branches on the (potentially secret) value of v.
func reduceByP(v uint64) uint64 {
	difference := v - PrimeOrder // wraps, as intended, if v < PrimeOrder
	overflowBit := difference & (1 << 63)
	mask := uint64(int64(overflowBit) >> 63)
	return (mask & v) | (^mask & difference)
}

// New constructs an FE equivalent to v modulo PrimeOrder.
func New(v uint64) FE {
	return FE{val: bitReduceOnce(v)}
}

// newRaw constructs an FE directly from an already bit-reduced
// representation. Callers must ensure v <= feValMax.
func newRaw(v uint64) FE {
	return FE{val: v}
}

// Zero is the field's additive identity.
func Zero() FE { return newRaw(0) }

// One is the field's multiplicative identity.
func One() FE { return newRaw(1) }

// FromUint8 constructs an FE from a byte. The result is always in range,
// since 255 < PrimeOrder.
func FromUint8(v uint8) FE { return newRaw(uint64(v)) }

// FromUint16 constructs an FE from a uint16. The result is always in range.
func FromUint16(v uint16) FE { return newRaw(uint64(v)) }

// FromUint32 constructs an FE from a uint32. The result is always in
// range, since 2^32-1 < PrimeOrder.
func FromUint32(v uint32) FE { return newRaw(uint64(v)) }

// Value returns this element's canonical representative in [0, PrimeOrder).
func (a FE) Value() uint64 {
	// a.val is already bit-reduced once; one more application plus the
	// conditional subtraction yields the canonical value.
	return reduceByP(bitReduceOnce(a.val))
}

// IsZero reports whether this element's canonical value is zero.
func (a FE) IsZero() bool {
	return a.Value() == 0
}

// Equal reports whether a and b represent the same residue, comparing
// canonical values rather than lazy representations.
func (a FE) Equal(b FE) bool {
	return a.Value() == b.Value()
}

// Add returns a + b.
func (a FE) Add(b FE) FE {
	// feValMax*2 < 2^64, so this sum cannot overflow a uint64.
	return New(a.val + b.val)
}

// Neg returns -a.
func (a FE) Neg() FE {
	return New(PrimeOrder*2 - a.val)
}

// Sub returns a - b.
func (a FE) Sub(b FE) FE {
	return a.Add(b.Neg())
}

// String renders the element's canonical value in decimal.
func (a FE) String() string {
	return fmt.Sprintf("%d", a.Value())
}
