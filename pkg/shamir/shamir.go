// Package shamir implements (K, N) Shamir secret sharing over the prime
// field in pkg/field, with caller-supplied X coordinates rather than the
// usual 1, 2, 3, ... — the aggregation protocol needs each TR's share
// evaluated at an X coordinate derived from that TR's own signing key, not
// from its position in a list, and needs share sets built against the same
// Params to add share-wise and still reconstruct to the sum of the
// underlying secrets.
package shamir

import (
	"io"

	"github.com/nmathewson/privcount-shamir/pkg/field"
	"github.com/nmathewson/privcount-shamir/pkg/perrors"
)

// MaxShares bounds N, the number of shares a single Params may describe.
const MaxShares = 1024

// Params fixes the threshold K, the share count N, and the N X coordinates
// that ShareSecret and RecoverSecret operate against. Two share sets built
// from Params with the same X slice (even if obtained independently, e.g.
// by different clients sharing against the same ordered TR list) sum
// share-wise to a valid sharing of the sum of their secrets.
type Params struct {
	K int
	N int
	X []field.FE
}

// Share is one (x, y) pair: a participant's share of a Params-shared
// secret.
type Share struct {
	X field.FE
	Y field.FE
}

// ParamBuilder accumulates X coordinates one at a time — from a list of TR
// signing keys, from caller-chosen constants, or from a random source
// during tests — validating as it goes that no coordinate is zero (a zero
// X coordinate makes a share reveal the secret outright: y = p(0) is the
// secret itself) and that no two coordinates collide (a repeated X makes
// Lagrange recovery divide by zero).
type ParamBuilder struct {
	n    int
	x    []field.FE
	seen map[uint64]bool
}

// NewParamBuilder starts a builder for a Params with exactly n shares.
func NewParamBuilder(n int) *ParamBuilder {
	return &ParamBuilder{
		n:    n,
		seen: make(map[uint64]bool, n),
	}
}

// AddXCoordinate appends x as the next share's coordinate.
func (b *ParamBuilder) AddXCoordinate(x field.FE) error {
	const op = "shamir.AddXCoordinate"
	if len(b.x) >= b.n {
		return perrors.New(perrors.BadParameter, op)
	}
	if x.IsZero() {
		return perrors.New(perrors.BadParameter, op)
	}
	v := x.Value()
	if b.seen[v] {
		return perrors.New(perrors.BadParameter, op)
	}
	b.seen[v] = true
	b.x = append(b.x, x)
	return nil
}

// FillXCoordinates draws random, distinct, nonzero X coordinates from rng
// until this builder holds n of them. Used by tests and by any caller that
// has no externally meaningful X coordinates to assign (production
// callers, deriving X from TR signing keys, use AddXCoordinate instead).
func (b *ParamBuilder) FillXCoordinates(rng io.Reader) error {
	const op = "shamir.FillXCoordinates"
	for len(b.x) < b.n {
		x, err := field.Random(rng)
		if err != nil {
			return perrors.Wrap(perrors.Internal, op, err)
		}
		if x.IsZero() {
			continue
		}
		v := x.Value()
		if b.seen[v] {
			continue
		}
		b.seen[v] = true
		b.x = append(b.x, x)
	}
	return nil
}

// Finalize validates K against the accumulated X coordinates and produces
// an immutable Params. It fails if the builder has not yet collected n
// coordinates, if k is out of [1, n], or if n exceeds MaxShares.
func (b *ParamBuilder) Finalize(k int) (*Params, error) {
	const op = "shamir.Finalize"
	n := len(b.x)
	if n != b.n {
		return nil, perrors.New(perrors.BadParameter, op)
	}
	if n > MaxShares {
		return nil, perrors.New(perrors.BadParameter, op)
	}
	if k < 1 || k > n {
		return nil, perrors.New(perrors.BadParameter, op)
	}
	x := make([]field.FE, n)
	copy(x, b.x)
	return &Params{K: k, N: n, X: x}, nil
}

// ShareSecret splits secret into p.N shares at p.K-1 degree, evaluated at
// p.X, drawing the random coefficients from rng. Every (k-1)-subset of the
// resulting shares is information-theoretically independent of secret;
// every k-subset recovers it exactly (see RecoverSecret).
func (p *Params) ShareSecret(secret field.FE, rng io.Reader) ([]Share, error) {
	const op = "shamir.ShareSecret"
	coeffs := make([]field.FE, p.K)
	coeffs[0] = secret
	for i := 1; i < p.K; i++ {
		c, err := field.Random(rng)
		if err != nil {
			return nil, perrors.Wrap(perrors.Internal, op, err)
		}
		coeffs[i] = c
	}

	shares := make([]Share, p.N)
	for i, x := range p.X {
		shares[i] = Share{X: x, Y: evaluatePolyAt(coeffs, x)}
	}
	return shares, nil
}

// evaluatePolyAt evaluates the polynomial with coefficients coeffs
// (coeffs[i] is the coefficient of x^i) at x, via Horner's rule folding
// from the highest-order term down.
func evaluatePolyAt(coeffs []field.FE, x field.FE) field.FE {
	result := field.Zero()
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(coeffs[i])
	}
	return result
}

// RecoverSecret reconstructs the shared secret from shares via Lagrange
// interpolation at x = 0:
//
//	secret = sum_i ( y_i * prod_{j != i} x_j / (x_j - x_i) )
//
// Shares need not all come from the same ShareSecret call, and RecoverSecret
// takes no K: it uses whatever shares it is given, and the result is
// meaningful only if there are at least the threshold's worth of
// consistent shares. This is also how the server recovers a per-counter
// sum from a set of per-client, per-TR shares summed share-wise: the sum
// of several Params-consistent share sets is itself a valid share set for
// the sum of their secrets.
func RecoverSecret(shares []Share) (field.FE, error) {
	const op = "shamir.RecoverSecret"
	if len(shares) == 0 {
		return field.FE{}, perrors.New(perrors.BadParameter, op)
	}

	seen := make(map[uint64]bool, len(shares))
	for _, s := range shares {
		v := s.X.Value()
		if seen[v] {
			return field.FE{}, perrors.New(perrors.BadParameter, op)
		}
		seen[v] = true
	}

	result := field.Zero()
	for i, si := range shares {
		num := field.One()
		den := field.One()
		for j, sj := range shares {
			if i == j {
				continue
			}
			num = num.Mul(sj.X)
			den = den.Mul(sj.X.Sub(si.X))
		}
		result = result.Add(si.Y.Mul(num).Div(den))
	}
	return result, nil
}
