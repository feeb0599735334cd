// Package wire marshals and unmarshals the privcount protocol's data
// bundles (TrData, CounterData, ClientData) to and from CBOR, via
// github.com/fxamacker/cbor/v2. It exists as a boundary layer so that
// pkg/field and pkg/privcount never need to import an encoding library
// themselves: field.FE keeps its internal representation private, and
// this package is the one place that converts it to and from a canonical
// wire integer.
package wire

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/nmathewson/privcount-shamir/pkg/field"
	"github.com/nmathewson/privcount-shamir/pkg/perrors"
	"github.com/nmathewson/privcount-shamir/pkg/privcount"
)

// trKeysWire mirrors privcount.TrKeys for CBOR encoding.
type trKeysWire struct {
	EncKey     []byte
	SigningKey []byte
}

// trDataWire mirrors privcount.TrData for CBOR encoding: X is carried as
// its canonical uint64 value, since field.FE has no exported fields for
// cbor to walk.
type trDataWire struct {
	Keys              trKeysWire
	EncryptedSeed     []byte
	X                 uint64
	EncryptedCounters []byte
}

// counterDataWire mirrors privcount.CounterData.
type counterDataWire struct {
	CounterIDs []uint32
	TrData     []trDataWire
}

// counterShareWire mirrors privcount.CounterShare.
type counterShareWire struct {
	ID uint32
	Y  uint64
}

// clientDataWire mirrors privcount.ClientData.
type clientDataWire struct {
	ClientSigningKey []byte
	Shares           []counterShareWire
}

func toTrKeysWire(k privcount.TrKeys) trKeysWire {
	return trKeysWire{EncKey: k.EncKey[:], SigningKey: k.SigningKey[:]}
}

func fromTrKeysWire(op string, w trKeysWire) (privcount.TrKeys, error) {
	if len(w.EncKey) != 32 || len(w.SigningKey) != 32 {
		return privcount.TrKeys{}, perrors.New(perrors.BadParameter, op)
	}
	var k privcount.TrKeys
	copy(k.EncKey[:], w.EncKey)
	copy(k.SigningKey[:], w.SigningKey)
	return k, nil
}

func toTrDataWire(d privcount.TrData) trDataWire {
	return trDataWire{
		Keys:              toTrKeysWire(d.Keys),
		EncryptedSeed:     d.EncryptedSeed,
		X:                 d.X.Value(),
		EncryptedCounters: d.EncryptedCounters,
	}
}

func fromTrDataWire(op string, w trDataWire) (privcount.TrData, error) {
	keys, err := fromTrKeysWire(op, w.Keys)
	if err != nil {
		return privcount.TrData{}, err
	}
	x, ok := field.FromReduced(w.X)
	if !ok {
		return privcount.TrData{}, perrors.New(perrors.BadParameter, op)
	}
	return privcount.TrData{
		Keys:              keys,
		EncryptedSeed:     w.EncryptedSeed,
		X:                 x,
		EncryptedCounters: w.EncryptedCounters,
	}, nil
}

// MarshalTrData encodes one client-to-TR bundle as CBOR.
func MarshalTrData(d privcount.TrData) ([]byte, error) {
	b, err := cbor.Marshal(toTrDataWire(d))
	if err != nil {
		return nil, perrors.Wrap(perrors.Internal, "wire.MarshalTrData", err)
	}
	return b, nil
}

// UnmarshalTrData decodes a TrData bundle previously produced by
// MarshalTrData.
func UnmarshalTrData(b []byte) (privcount.TrData, error) {
	const op = "wire.UnmarshalTrData"
	var w trDataWire
	if err := cbor.Unmarshal(b, &w); err != nil {
		return privcount.TrData{}, perrors.Wrap(perrors.Internal, op, err)
	}
	return fromTrDataWire(op, w)
}

// MarshalCounterData encodes a client's complete submission as CBOR.
func MarshalCounterData(d *privcount.CounterData) ([]byte, error) {
	w := counterDataWire{
		CounterIDs: make([]uint32, len(d.CounterIDs)),
		TrData:     make([]trDataWire, len(d.TrData)),
	}
	for i, id := range d.CounterIDs {
		w.CounterIDs[i] = uint32(id)
	}
	for i, td := range d.TrData {
		w.TrData[i] = toTrDataWire(td)
	}
	b, err := cbor.Marshal(w)
	if err != nil {
		return nil, perrors.Wrap(perrors.Internal, "wire.MarshalCounterData", err)
	}
	return b, nil
}

// UnmarshalCounterData decodes a CounterData bundle previously produced by
// MarshalCounterData.
func UnmarshalCounterData(b []byte) (*privcount.CounterData, error) {
	const op = "wire.UnmarshalCounterData"
	var w counterDataWire
	if err := cbor.Unmarshal(b, &w); err != nil {
		return nil, perrors.Wrap(perrors.Internal, op, err)
	}
	out := &privcount.CounterData{
		CounterIDs: make([]privcount.CtrId, len(w.CounterIDs)),
		TrData:     make([]privcount.TrData, len(w.TrData)),
	}
	for i, id := range w.CounterIDs {
		out.CounterIDs[i] = privcount.CtrId(id)
	}
	for i, td := range w.TrData {
		decoded, err := fromTrDataWire(op, td)
		if err != nil {
			return nil, err
		}
		out.TrData[i] = decoded
	}
	return out, nil
}

// MarshalClientData encodes a TR's decoded view of one client's submission
// as CBOR. This is an internal, TR-to-TR-reducer format (e.g. for shipping
// decoded shares to a separate aggregation process); it is never sent to,
// or accepted from, a client.
func MarshalClientData(d privcount.ClientData) ([]byte, error) {
	w := clientDataWire{
		ClientSigningKey: d.ClientKey.SigningKey[:],
		Shares:           make([]counterShareWire, len(d.Shares)),
	}
	for i, s := range d.Shares {
		w.Shares[i] = counterShareWire{ID: uint32(s.ID), Y: s.Y.Value()}
	}
	b, err := cbor.Marshal(w)
	if err != nil {
		return nil, perrors.Wrap(perrors.Internal, "wire.MarshalClientData", err)
	}
	return b, nil
}

// UnmarshalClientData decodes a ClientData bundle previously produced by
// MarshalClientData.
func UnmarshalClientData(b []byte) (privcount.ClientData, error) {
	const op = "wire.UnmarshalClientData"
	var w clientDataWire
	if err := cbor.Unmarshal(b, &w); err != nil {
		return privcount.ClientData{}, perrors.Wrap(perrors.Internal, op, err)
	}
	if len(w.ClientSigningKey) != 32 {
		return privcount.ClientData{}, perrors.New(perrors.BadParameter, op)
	}
	var ck privcount.ClientKey
	copy(ck.SigningKey[:], w.ClientSigningKey)

	shares := make([]privcount.CounterShare, len(w.Shares))
	for i, s := range w.Shares {
		y, ok := field.FromReduced(s.Y)
		if !ok {
			return privcount.ClientData{}, perrors.New(perrors.BadParameter, op)
		}
		shares[i] = privcount.CounterShare{ID: privcount.CtrId(s.ID), Y: y}
	}
	return privcount.ClientData{ClientKey: ck, Shares: shares}, nil
}
