package field

// Recip returns a^-1 via Fermat's little theorem: a^(P-2) == a^-1 (mod P)
// for any nonzero a. The exponentiation walks the fixed bit pattern of
// P-2 from the low bit up, in a constant number of squarings regardless of
// a's value — square-and-multiply over secret data must not branch on the
// bits of the base, only on the (compile-time-known) bits of the exponent.
//
// Recip(Zero()) returns Zero() (0^(P-2) mod P == 0), which callers should
// treat as an error case rather than a real inverse; this package does not
// track zero-ness specially here because the caller always knows whether a
// is a Shamir share's x-coordinate or similar value expected to be nonzero.
func (a FE) Recip() FE {
	x := a
	y := One()

	// bit 0 of P-2 is set.
	y = x.Mul(y)
	x = x.Mul(x)

	// bit 1 of P-2 is clear.
	x = x.Mul(x)

	// bits 2..offsetBit-1 of P-2 are set.
	for i := 2; i < offsetBit; i++ {
		y = x.Mul(y)
		x = x.Mul(x)
	}

	// bit offsetBit of P-2 is clear.
	x = x.Mul(x)

	// bits offsetBit+1..nBits-2 of P-2 are set.
	for i := offsetBit + 1; i < nBits-1; i++ {
		y = x.Mul(y)
		x = x.Mul(x)
	}

	return x.Mul(y)
}

// Div returns a / b, i.e. a * b.Recip(). Dividing by zero returns Zero(),
// matching Recip's behavior at zero rather than panicking: this package
// has no invalid-value signal built into FE, by design (see the field
// package doc comment on lazy vs. canonical representation).
func (a FE) Div(b FE) FE {
	return a.Mul(b.Recip())
}
