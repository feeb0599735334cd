package privcount

import (
	"encoding/binary"
	"io"

	"github.com/nmathewson/privcount-shamir/pkg/field"
	"github.com/nmathewson/privcount-shamir/pkg/hybrid"
	"github.com/nmathewson/privcount-shamir/pkg/perrors"
	"github.com/nmathewson/privcount-shamir/pkg/plog"
	"github.com/nmathewson/privcount-shamir/pkg/security"
	"github.com/nmathewson/privcount-shamir/pkg/shamir"
)

// Counter is one running count a client is building up to report. Val
// starts at a uniformly random field element drawn when the CounterSet is
// built — the client's private additive share of this counter, already
// subtracted back out of every TR's blinded vector — so Val on its own
// never reveals the count, and the increments only ever exist as the
// difference between Val and that initial draw.
type Counter struct {
	ID  CtrId
	Val field.FE
}

// Inc increments the counter by v.
func (c *Counter) Inc(v uint32) {
	c.Val = c.Val.Add(field.FromUint32(v))
}

// Dec decrements the counter by v. Since the field wraps modulo
// PrimeOrder, decrementing below the running total does not panic or
// saturate — it wraps, same as any other field subtraction. Counters are
// expected to stay within a range the surrounding application defines;
// this package enforces none.
func (c *Counter) Dec(v uint32) {
	c.Val = c.Val.Sub(field.FromUint32(v))
}

// trState is the client's working state for one TR across the life of a
// CounterSet: the TR's identity, its already-encrypted seed ciphertext,
// its Shamir X coordinate, the per-counter masks derived from that seed,
// and the accumulating blinded vector that Finalize encrypts and ships.
type trState struct {
	keys          TrKeys
	x             field.FE
	encryptedSeed []byte
	masks         []field.FE
	blinded       []field.FE
}

// CounterSet is a client's in-progress report: one Counter per CtrId, and
// one trState per TR in the committee, blinded as each counter is
// constructed so that no intermediate state other than the final Finalize
// output is ever meant to leave the client's process.
type CounterSet struct {
	counterIDs []CtrId
	counters   map[CtrId]*Counter
	trStates   []*trState
	params     *shamir.Params
	noise      NoiseFunc
	logger     *plog.Logger
}

// NewCounterSet builds a fresh CounterSet over counterIDs, blinded against
// the TR committee trKeys with threshold k: any k of the len(trKeys) TRs
// can later recover the sum of a batch of clients' counters, but any k-1
// of them learn nothing about the client's values. rng is used throughout:
// to generate each TR's seed, to encrypt it, to share the per-counter
// noise, to draw each counter's starting value, and (if noise is non-nil)
// to draw that noise; pass nil for noise to use ZeroNoise. A nil logger
// defaults to a discarding one — nothing in this function logs key
// material, only counts.
func NewCounterSet(counterIDs []CtrId, trKeys []TrKeys, k int, rng io.Reader, noise NoiseFunc, logger *plog.Logger) (*CounterSet, error) {
	const op = "privcount.NewCounterSet"

	nCounters, err := security.SafeIntToUint32(len(counterIDs))
	if err != nil || nCounters > MaxCounters {
		return nil, perrors.New(perrors.BadParameter, op)
	}
	if len(trKeys) == 0 || len(trKeys) > shamir.MaxShares {
		return nil, perrors.New(perrors.BadParameter, op)
	}
	if noise == nil {
		noise = ZeroNoise
	}
	if logger == nil {
		logger = plog.NewDiscard()
	}

	builder := shamir.NewParamBuilder(len(trKeys))
	for _, tk := range trKeys {
		if err := builder.AddXCoordinate(tk.XCoordinate()); err != nil {
			return nil, perrors.Wrap(perrors.BadParameter, op, err)
		}
	}
	params, err := builder.Finalize(k)
	if err != nil {
		return nil, perrors.Wrap(perrors.BadParameter, op, err)
	}

	trStates := make([]*trState, len(trKeys))
	for i, tk := range trKeys {
		seed, err := NewSeed(rng)
		if err != nil {
			return nil, perrors.Wrap(perrors.Internal, op, err)
		}
		masks, err := seed.CounterMasks(nCounters)
		if err != nil {
			return nil, err
		}
		enc := hybrid.NewEncryptor(tk.EncKey, tk.SigningKey)
		encryptedSeed, err := enc.Encrypt(seed.Bytes(), SeedEncryptionTweak, rng)
		if err != nil {
			return nil, perrors.Wrap(perrors.Internal, op, err)
		}
		trStates[i] = &trState{
			keys:          tk,
			x:             tk.XCoordinate(),
			encryptedSeed: encryptedSeed,
			masks:         masks,
			blinded:       make([]field.FE, len(counterIDs)),
		}
	}

	cs := &CounterSet{
		counterIDs: append([]CtrId{}, counterIDs...),
		counters:   make(map[CtrId]*Counter, len(counterIDs)),
		trStates:   trStates,
		params:     params,
		noise:      noise,
		logger:     logger,
	}

	for i, id := range counterIDs {
		n, err := cs.noise(rng)
		if err != nil {
			return nil, perrors.Wrap(perrors.Internal, op, err)
		}
		shares, err := params.ShareSecret(n, rng)
		if err != nil {
			return nil, perrors.Wrap(perrors.Internal, op, err)
		}
		if len(shares) != len(trStates) {
			return nil, perrors.New(perrors.Internal, op)
		}

		// The counter starts at a uniform random value r, and every TR's
		// blinded entry has that same r subtracted out. Finalize adds the
		// counter's final value (r plus the increments) back in, so r
		// cancels and only the increments survive into the shares.
		r, err := field.Random(rng)
		if err != nil {
			return nil, perrors.Wrap(perrors.Internal, op, err)
		}
		cs.counters[id] = &Counter{ID: id, Val: r}

		for j, share := range shares {
			if !share.X.Equal(trStates[j].x) {
				return nil, perrors.New(perrors.Internal, op)
			}
			trStates[j].blinded[i] = share.Y.Sub(trStates[j].masks[i]).Sub(r)
		}
	}

	logger.Debug("counter set initialized", "counters", len(counterIDs), "trs", len(trKeys), "threshold", k)
	return cs, nil
}

// Ctr returns the Counter for id, so the caller can Inc or Dec it.
func (cs *CounterSet) Ctr(id CtrId) (*Counter, error) {
	c, ok := cs.counters[id]
	if !ok {
		return nil, perrors.New(perrors.BadParameter, "privcount.CounterSet.Ctr")
	}
	return c, nil
}

// Finalize folds each counter's final value into its blinded vectors,
// encrypts the result to each TR, and returns the client's complete
// submission. A CounterSet should not be used again after Finalize: the
// blinded vectors it returns have already had the counters' values added
// in, so accumulating further increments into them would double-count.
func (cs *CounterSet) Finalize(rng io.Reader) (*CounterData, error) {
	const op = "privcount.CounterSet.Finalize"

	for i, id := range cs.counterIDs {
		c, ok := cs.counters[id]
		if !ok {
			return nil, perrors.New(perrors.Internal, op)
		}
		for _, ts := range cs.trStates {
			ts.blinded[i] = ts.blinded[i].Add(c.Val)
		}
	}

	trData := make([]TrData, len(cs.trStates))
	for j, ts := range cs.trStates {
		buf := make([]byte, 8*len(ts.blinded))
		for i, y := range ts.blinded {
			binary.BigEndian.PutUint64(buf[i*8:i*8+8], y.Value())
		}
		enc := hybrid.NewEncryptor(ts.keys.EncKey, ts.keys.SigningKey)
		encryptedCounters, err := enc.Encrypt(buf, YEncryptionTweak, rng)
		if err != nil {
			return nil, perrors.Wrap(perrors.Internal, op, err)
		}
		trData[j] = TrData{
			Keys:              ts.keys,
			EncryptedSeed:     ts.encryptedSeed,
			X:                 ts.x,
			EncryptedCounters: encryptedCounters,
		}
	}

	cs.logger.Debug("counter set finalized", "counters", len(cs.counterIDs), "trs", len(cs.trStates))
	return &CounterData{CounterIDs: append([]CtrId{}, cs.counterIDs...), TrData: trData}, nil
}
