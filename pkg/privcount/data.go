// Package privcount ties pkg/field, pkg/shamir, and pkg/hybrid together into
// the client- and server-side halves of the blinded counter-aggregation
// protocol: a client blinds each of its counters against a committee of
// tally reporters (TRs) using a per-TR pseudorandom mask plus a Shamir
// sharing of zero, so that fewer than the committee's threshold of TRs
// learn nothing about any individual counter, while the server-side
// reducer at each TR can still recover the sum of a batch of clients'
// counters once enough TRs combine their results.
package privcount

import (
	"encoding/binary"
	"io"

	"golang.org/x/crypto/sha3"

	"github.com/nmathewson/privcount-shamir/pkg/field"
	"github.com/nmathewson/privcount-shamir/pkg/perrors"
)

const (
	// SeedLen is the length, in bytes, of a client's per-TR mask-stream
	// seed.
	SeedLen = 32

	// MaxCounters bounds how many distinct counters a single CounterSet
	// may track, and how many masks Seed.CounterMasks will derive.
	MaxCounters = 1 << 28

	// ExtraMasks is the number of whole additional candidate frames drawn
	// beyond the number requested, to absorb the (rare) rejections in
	// Seed.CounterMasks's sampling without needing a second pass over the
	// XOF stream.
	ExtraMasks = 4

	// ExtraBytesPerMask over-provisions the XOF read by one byte per
	// requested mask, on top of the ExtraMasks whole frames. Candidate
	// frames themselves stay 8 bytes wide; the padding just makes the
	// fixed-length read long enough that running out of candidates before
	// nMasks are accepted is overwhelmingly improbable.
	ExtraBytesPerMask = 1
)

var (
	// SeedEncryptionTweak domain-separates a client's encrypted per-TR
	// seed from its encrypted counter vector, so the same ephemeral
	// keypair and salt can never be replayed to make one ciphertext look
	// like the other.
	SeedEncryptionTweak = []byte("privctr-seed-v1")
	// YEncryptionTweak domain-separates a client's encrypted blinded
	// counter vector.
	YEncryptionTweak = []byte("privctr-shares-v1")
)

// CtrId identifies one counter within a CounterSet or CounterData. Counter
// identity is caller-assigned; this package never infers or collides two
// clients' counter IDs against each other.
type CtrId uint32

// ClientKey identifies a client to a TR by the client's signing public
// key. Signature verification of client submissions (authenticating that a
// ClientKey in fact belongs to the client presenting it) happens above
// this package, as part of the transport layer; ClientKey here is just the
// 32-byte identity tag carried alongside a client's shares.
type ClientKey struct {
	SigningKey [32]byte
}

// TrKeys identifies one TR: its Curve25519 encryption public key and its
// Ed25519 signing public key. Both are embedded directly in each TrData a
// client addresses to that TR — there is no separate key-distribution
// mechanism in this package.
type TrKeys struct {
	EncKey     [32]byte
	SigningKey [32]byte
}

// XCoordinate derives this TR's Shamir X coordinate directly from the
// leading 8 bytes of its signing key, read as a big-endian integer and
// reduced into the field. This is a derivation, not a hash: any two TRs
// whose signing keys share a first 8 bytes would collide, which is the
// caller's responsibility to avoid (by generating signing keys normally,
// this is astronomically unlikely).
func (k TrKeys) XCoordinate() field.FE {
	return field.New(binary.BigEndian.Uint64(k.SigningKey[:8]))
}

// Seed is a client's per-TR mask-stream seed: 32 bytes of randomness from
// which Seed.CounterMasks derives that TR's blinding masks for every
// counter the client reports.
type Seed struct {
	bytes [SeedLen]byte
}

// NewSeed draws a fresh Seed from rng.
func NewSeed(rng io.Reader) (Seed, error) {
	const op = "privcount.NewSeed"
	var s Seed
	if _, err := io.ReadFull(rng, s.bytes[:]); err != nil {
		return Seed{}, perrors.Wrap(perrors.Internal, op, err)
	}
	return s, nil
}

// SeedFromBytes wraps an existing 32-byte seed, failing if b is the wrong
// length.
func SeedFromBytes(b []byte) (Seed, error) {
	const op = "privcount.SeedFromBytes"
	if len(b) != SeedLen {
		return Seed{}, perrors.New(perrors.BadParameter, op)
	}
	var s Seed
	copy(s.bytes[:], b)
	return s, nil
}

// Bytes returns the seed's raw 32 bytes.
func (s Seed) Bytes() []byte {
	out := make([]byte, SeedLen)
	copy(out, s.bytes[:])
	return out
}

// CounterMasks derives nMasks field elements from this seed via a
// SHAKE-256 XOF stream, by rejection sampling: candidate 8-byte big-endian
// words are drawn from the stream, masked to the field's bit width, and
// accepted only if the result lands below PrimeOrder, exactly as
// field.Random does for an external RNG (see field.CandidateFromUint64). The XOF is
// read exactly once, into a buffer of (nMasks+ExtraMasks)*(8+
// ExtraBytesPerMask) bytes; if that buffer runs out of 8-byte frames
// before nMasks are accepted, CounterMasks fails with MaskExhaustion
// rather than drawing more from the stream — this keeps mask derivation a
// pure function of the seed and nMasks. Since rejection happens for only a
// 2^-32-ish fraction of candidates at the reference field parameters,
// MaskExhaustion should never be observed in practice.
func (s Seed) CounterMasks(nMasks uint32) ([]field.FE, error) {
	const op = "privcount.Seed.CounterMasks"
	if nMasks > MaxCounters {
		return nil, perrors.New(perrors.BadParameter, op)
	}

	bytesNeeded := (uint64(nMasks) + ExtraMasks) * (8 + ExtraBytesPerMask)
	buf := make([]byte, bytesNeeded)

	xof := sha3.NewShake256()
	xof.Write(s.bytes[:])
	if _, err := io.ReadFull(xof, buf); err != nil {
		return nil, perrors.Wrap(perrors.Internal, op, err)
	}

	masks := make([]field.FE, 0, nMasks)
	rest := buf
	for uint32(len(masks)) < nMasks {
		if len(rest) < 8 {
			return nil, perrors.New(perrors.MaskExhaustion, op)
		}
		if fe, ok := field.CandidateFromUint64(binary.BigEndian.Uint64(rest[:8])); ok {
			masks = append(masks, fe)
		}
		rest = rest[8:]
	}
	return masks, nil
}

// NoiseFunc draws the per-counter secret shared as "noise" across a
// counter's TR committee: the invariant the rest of this package relies on
// is only that every TR's share of it sums (via Shamir's homomorphism) to
// something a correct server-side reduction can still cancel out — for
// zero noise, it cancels to exactly zero; a differentially-private
// CounterSet would instead draw from a calibrated noise distribution here,
// and reconstruction would then need to account for it. Generating actual
// DP noise is out of scope for this package; ZeroNoise is the only
// implementation provided.
type NoiseFunc func(rng io.Reader) (field.FE, error)

// ZeroNoise always returns the additive identity, and is the default
// NoiseFunc for a CounterSet.
func ZeroNoise(rng io.Reader) (field.FE, error) {
	return field.Zero(), nil
}

// TrData is the wire bundle a client sends to one TR: that TR's keys (so
// the TR can confirm the bundle was addressed to it), the client's seed
// encrypted to that TR, the client's Shamir X coordinate for that TR
// (derived from, and so redundant with, Keys.SigningKey — carried
// explicitly so a TR need not recompute it), and the client's blinded
// counter vector encrypted to that TR.
type TrData struct {
	Keys              TrKeys
	EncryptedSeed     []byte
	X                 field.FE
	EncryptedCounters []byte
}

// CounterData is a client's complete submission: the counter IDs it is
// reporting (in the order their values appear within each TrData's
// encrypted counter vector) and one TrData per TR in its committee.
type CounterData struct {
	CounterIDs []CtrId
	TrData     []TrData
}
