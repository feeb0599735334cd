package hybrid

import (
	"io"

	"golang.org/x/crypto/curve25519"

	"github.com/nmathewson/privcount-shamir/pkg/perrors"
)

// GenerateCurve25519SecretKey draws a fresh Curve25519 scalar from rng and
// clamps it per RFC 7748 section 5: clear the low 3 bits (cofactor
// clearing), clear the top bit, and set the second-highest bit. rng is
// always caller-supplied — crypto/rand.Reader in production — never a
// package default.
func GenerateCurve25519SecretKey(rng io.Reader) ([32]byte, error) {
	const op = "hybrid.GenerateCurve25519SecretKey"
	var sk [32]byte
	if _, err := io.ReadFull(rng, sk[:]); err != nil {
		return [32]byte{}, perrors.Wrap(perrors.Internal, op, err)
	}
	clamp(&sk)
	return sk, nil
}

// clamp applies the RFC 7748 clamping transform to a Curve25519 scalar in
// place.
func clamp(sk *[32]byte) {
	sk[0] &= 248
	sk[31] &= 127
	sk[31] |= 64
}

// DerivePublicKey computes the Curve25519 public key corresponding to a
// clamped secret scalar.
func DerivePublicKey(secretKey [32]byte) ([32]byte, error) {
	const op = "hybrid.DerivePublicKey"
	pub, err := curve25519.X25519(secretKey[:], curve25519.Basepoint)
	if err != nil {
		return [32]byte{}, perrors.Wrap(perrors.Internal, op, err)
	}
	var out [32]byte
	copy(out[:], pub)
	return out, nil
}
