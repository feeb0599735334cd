package field

import "math/bits"

// Mul returns a * b, computed via 64x64->128-bit hardware multiplication
// (math/bits.Mul64) followed by two rounds of bit reduction. This is the
// preferred multiplication path: platforms with a native wide multiply
// (which is to say, every platform math/bits targets) should use it.
func (a FE) Mul(b FE) FE {
	hi, lo := bits.Mul64(bitReduceOnce(a.val), bitReduceOnce(b.val))
	r1 := bitReduceOnce128(u128{hi: hi, lo: lo})
	r2 := bitReduceOnce128(r1)
	// r2 is bounded well under 2^64 by construction; see bitReduceOnce128.
	return New(r2.lo)
}

// MulKaratsuba returns a * b via a 32x32 Karatsuba decomposition, using only
// plain uint64 arithmetic with no 128-bit intermediate. Kept alongside Mul
// as a second, independently-derived implementation of the same
// operation — environments without math/bits.Mul64 (or a wide multiply
// instruction) would use this path instead. MulKaratsuba and Mul must agree
// on every input; see the property test that checks exactly that.
func (a FE) MulKaratsuba(b FE) FE {
	const halfBits = nBits / 2 // 31
	const halfMask = (uint64(1) << halfBits) - 1

	x := bitReduceOnce(a.val)
	y := bitReduceOnce(b.val)

	xLo, xHi := x&halfMask, x>>halfBits
	yLo, yHi := y&halfMask, y>>halfBits

	z0 := xLo * yLo
	z2 := xHi * yHi
	// (xLo+xHi) and (yLo+yHi) each fit in halfBits+1 bits, so their
	// product fits comfortably under 2^64 given halfBits <= 31.
	z1 := (xLo+xHi)*(yLo+yHi) - z0 - z2

	z1Lo := z1 & halfMask
	z1Hi := z1 >> halfBits

	productLow := z0 + bitReduceOnce(z1Lo<<halfBits)
	productHigh := bitReduceOnce(z2 + bitReduceOnce(z1Hi))

	const highSplit = nBits - offsetBit // 32
	const highSplitMask = (uint64(1) << highSplit) - 1
	productHighLo := productHigh & highSplitMask
	productHighHi := productHigh >> highSplit

	result := New(productLow)
	result = result.Add(New(productHigh))
	result = result.Add(New(productHighLo << offsetBit))
	result = result.Add(New(productHighHi))
	result = result.Add(New(productHighHi << offsetBit))
	return result
}

// u128 is a minimal 128-bit unsigned integer, represented as two uint64
// limbs, used only to carry the exact 128-bit product through the
// bit-reduction steps in Mul.
type u128 struct {
	hi, lo uint64
}

// shr64 returns v >> n as a u128. Used only with n < 64 in this package.
func (v u128) shr64(n uint) u128 {
	if n == 0 {
		return v
	}
	lo := (v.lo >> n) | (v.hi << (64 - n))
	hi := v.hi >> n
	return u128{hi: hi, lo: lo}
}

// shl64 returns x << n as a u128, for a plain uint64 x.
func shl64(x uint64, n uint) u128 {
	if n == 0 {
		return u128{lo: x}
	}
	if n < 64 {
		return u128{hi: x >> (64 - n), lo: x << n}
	}
	return u128{hi: x << (n - 64)}
}

// addU64 returns v + x as a u128.
func (v u128) addU64(x uint64) u128 {
	lo, carry := bits.Add64(v.lo, x, 0)
	hi, _ := bits.Add64(v.hi, 0, carry)
	return u128{hi: hi, lo: lo}
}

// bitReduceOnce128 is the 128-bit analogue of bitReduceOnce: it maps v to
// an equivalent (mod PrimeOrder) value, using the same identity
// 2^nBits ≡ 2^offsetBit + 1 (mod PrimeOrder). Two applications, starting
// from the exact 128-bit product of two field elements, bring the result
// below 2^64 (the first application alone need not: the high part can
// itself still span more than offsetBit bits).
func bitReduceOnce128(v u128) u128 {
	low := v.lo & fullBitsMask
	// v < 2^124 at every call site in this file, so v>>nBits < 2^62 and
	// fits entirely in the low limb.
	high := v.shr64(nBits).lo

	result := shl64(high, offsetBit)
	result = result.addU64(low)
	result = result.addU64(high)
	return result
}
