// Package security provides the constant-time comparison and best-effort
// secret-zeroing helpers used by the hybrid-encryption and aggregation
// layers.
package security

import (
	"crypto/subtle"
	"fmt"
	"math"
)

// ConstantTimeCompare reports whether a and b are equal, without leaking
// timing information about where they first differ. Used to check a
// hybrid-ciphertext MAC tag against the value received.
func ConstantTimeCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Zero overwrites data with zero bytes. This is a best-effort measure that
// the cryptographic contract does not require. pkg/hybrid uses it to zero
// the ephemeral Curve25519 secret, the ECDH shared secret, and the derived
// encryption and MAC keys when an Encrypt or Decrypt call is done with
// them; the seeds and per-counter random values held by pkg/privcount are
// not zeroed.
func Zero(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// SafeIntToUint32 converts a non-negative int to uint32, failing if it is
// negative or would overflow. Used to enforce the "counter_ids and tr_ids
// lists must each fit in uint32" precondition.
func SafeIntToUint32(val int) (uint32, error) {
	if val < 0 {
		return 0, fmt.Errorf("negative value cannot be converted to uint32: %d", val)
	}
	if val > math.MaxUint32 {
		return 0, fmt.Errorf("value exceeds uint32 range: %d", val)
	}
	return uint32(val), nil
}
