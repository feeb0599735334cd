package field

import (
	"encoding/binary"
	"io"
)

// Random draws a uniformly distributed field element from rng, via
// rejection sampling: never reduce a uniform word modulo P, since that
// biases the low values. rng is always caller-supplied (crypto/rand.Reader
// in production, a deterministic source in tests) — this package never
// reads a package-global RNG.
func Random(rng io.Reader) (FE, error) {
	var buf [8]byte
	for {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return FE{}, err
		}
		if fe, ok := CandidateFromUint64(binary.BigEndian.Uint64(buf[:])); ok {
			return fe, nil
		}
		// the candidate fell in [PrimeOrder, fullBitsMask]; draw again.
		// fullBitsMask+1 is within a factor of two of PrimeOrder, so this
		// loop terminates in an expected one to two iterations.
	}
}

// FromReduced constructs an FE from a value already known to be less than
// PrimeOrder, reporting false if it is not. Used when decoding field
// elements from the wire (share coordinates, recovered sums): those values
// must be rejected outright if out of range, never silently reduced.
func FromReduced(v uint64) (FE, bool) {
	if v >= PrimeOrder {
		return FE{}, false
	}
	return newRaw(v), true
}

// CandidateFromUint64 masks v down to the field's bit width and applies
// FromReduced, rejecting it outright (rather than reducing it) if that
// still leaves it at or above PrimeOrder. This is the rejection step
// shared by Random and by the mask-stream rejection sampling in
// pkg/privcount: both draw 64-bit big-endian words from a source of
// uniform bytes and need the same no-bias acceptance rule applied to each
// one.
func CandidateFromUint64(v uint64) (FE, bool) {
	return FromReduced(v & fullBitsMask)
}
