package privcount

import (
	"encoding/binary"

	"github.com/nmathewson/privcount-shamir/pkg/field"
	"github.com/nmathewson/privcount-shamir/pkg/hybrid"
	"github.com/nmathewson/privcount-shamir/pkg/perrors"
	"github.com/nmathewson/privcount-shamir/pkg/plog"
	"github.com/nmathewson/privcount-shamir/pkg/security"
)

// CounterShare is one client's unmasked, but not yet cross-client-summed,
// contribution to one counter, as held by a single TR.
type CounterShare struct {
	ID CtrId
	Y  field.FE
}

// ClientData is what one TR learns about one client's submission after
// decoding that client's TrData addressed to it: the client's identity
// key and, for each counter the client reported, that TR's unmasked share.
type ClientData struct {
	ClientKey ClientKey
	Shares    []CounterShare
}

// ServerKeys holds one TR's Curve25519 secret key alongside its public
// identity (EncKey's corresponding public key, and its signing key),
// letting it decode TrData addressed to it.
type ServerKeys struct {
	EncSecret [32]byte
	Public    TrKeys
	logger    *plog.Logger
}

// NewServerKeys builds a ServerKeys for the TR identified by public,
// holding encSecret. A nil logger defaults to a discarding one.
func NewServerKeys(encSecret [32]byte, public TrKeys, logger *plog.Logger) *ServerKeys {
	if logger == nil {
		logger = plog.NewDiscard()
	}
	return &ServerKeys{EncSecret: encSecret, Public: public, logger: logger}
}

// DecodeFrom decodes one client's TrData addressed to this TR, recovering
// that client's unmasked share of each of counterIDs. It fails with
// BadParameter if data was not in fact addressed to this TR (its Keys or X
// coordinate do not match), and with DecryptionFailure — tagged by
// segment, "seed" or "counters" — if either ciphertext fails to
// authenticate. A malformed decrypted counter value (one at or above
// PrimeOrder) is reported the same way as a MAC failure on the counters
// segment: both indicate the client's submission cannot be trusted, and
// this package does not distinguish "corrupt" from "malicious" beyond
// the seed/counters segment tag.
func (s *ServerKeys) DecodeFrom(clientKey ClientKey, data TrData, counterIDs []CtrId) (ClientData, error) {
	const op = "privcount.ServerKeys.DecodeFrom"

	nCounters, err := security.SafeIntToUint32(len(counterIDs))
	if err != nil {
		return ClientData{}, perrors.New(perrors.BadParameter, op)
	}
	if data.Keys.EncKey != s.Public.EncKey || data.Keys.SigningKey != s.Public.SigningKey {
		return ClientData{}, perrors.New(perrors.BadParameter, op)
	}
	if !data.X.Equal(s.Public.XCoordinate()) {
		return ClientData{}, perrors.New(perrors.BadParameter, op)
	}

	dec := hybrid.NewDecryptor(s.EncSecret, s.Public.SigningKey)

	seedBytes, err := dec.Decrypt(data.EncryptedSeed, SeedEncryptionTweak)
	if err != nil {
		return ClientData{}, perrors.WrapSegment(op, "seed", err)
	}
	seed, err := SeedFromBytes(seedBytes)
	if err != nil {
		return ClientData{}, perrors.WrapSegment(op, "seed", err)
	}

	masks, err := seed.CounterMasks(nCounters)
	if err != nil {
		return ClientData{}, err
	}

	countersBytes, err := dec.Decrypt(data.EncryptedCounters, YEncryptionTweak)
	if err != nil {
		return ClientData{}, perrors.WrapSegment(op, "counters", err)
	}
	if len(countersBytes) != 8*len(counterIDs) {
		return ClientData{}, perrors.WrapSegment(op, "counters", perrors.New(perrors.DecryptionFailure, op))
	}

	shares := make([]CounterShare, len(counterIDs))
	for i, id := range counterIDs {
		raw := binary.BigEndian.Uint64(countersBytes[i*8 : i*8+8])
		yEncoded, ok := field.FromReduced(raw)
		if !ok {
			return ClientData{}, perrors.WrapSegment(op, "counters", perrors.New(perrors.DecryptionFailure, op))
		}
		shares[i] = CounterShare{ID: id, Y: masks[i].Add(yEncoded)}
	}

	s.logger.Debug("decoded client submission", "counters", len(counterIDs))
	return ClientData{ClientKey: clientKey, Shares: shares}, nil
}

// SumShares sums, per CtrId, the shares held across a batch of clients'
// ClientData at this TR. Because every client shared its per-counter
// noise using the same Params (the same TR committee and X coordinates),
// the resulting per-counter sum is itself a valid Shamir share, at this
// TR's X coordinate, of the sum of the batch's counter values — see
// shamir.RecoverSecret for how a quorum of TRs turns a set of these sums
// back into the aggregate count.
func SumShares(batch []ClientData) map[CtrId]field.FE {
	sums := make(map[CtrId]field.FE)
	for _, cd := range batch {
		for _, share := range cd.Shares {
			sums[share.ID] = sums[share.ID].Add(share.Y)
		}
	}
	return sums
}
