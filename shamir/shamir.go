// Package shamir implements Shamir's t-out-of-n threshold secret sharing
// scheme over the integers modulo a public modulus.
//
// A secret S is encoded among the n parties in the form of a degree t-1
// polynomial f(x) = a_0 + a_1 x + ... + a_{t-1} x^{t-1} with f(0) = S; the
// party at sorted index i owns the share f(i+1). Any t shares determine the
// polynomial by Lagrange interpolation, while fewer than t shares reveal
// nothing about the secret.
//
// The evaluation points 1..n are fixed for the lifetime of a scheme, which
// lets the interpolation weights for the all-parties case be precomputed in
// closed form and cached.
package shamir

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	sharing "github.com/Quitlox/FuturePET-PET-Lab-Demo"
	"github.com/Quitlox/FuturePET-PET-Lab-Demo/poly"
	"github.com/Quitlox/FuturePET-PET-Lab-Demo/pool"
)

// Kind identifies the Shamir scheme family in network message ids.
const Kind = "shamir"

// Scheme implements Shamir secret sharing. It supports the linear operations
// synchronously, multiplication of two shared values through a resharing
// protocol, and reconstruction from any subset of at least Threshold
// parties.
type Scheme struct {
	sharing.Base
	enc       sharing.Encoding
	threshold int

	weightsOnce sync.Once
	weights     []*big.Int
}

var (
	_ sharing.Scheme          = (*Scheme)(nil)
	_ sharing.LinearScheme    = (*Scheme)(nil)
	_ sharing.ThresholdScheme = (*Scheme)(nil)
)

// New constructs a Shamir scheme for n parties over the given modulus. A
// threshold of 0 selects the default of 1 + n/2, a simple majority;
// otherwise the threshold must satisfy 1 <= t <= n. The pool may be nil, in
// which case only local operations are available.
//
// Reconstruction from a strict subset of parties computes modular inverses,
// which requires the modulus to be prime (or at least coprime to the
// interpolation denominators). This is not validated at construction;
// partial reconstruction fails explicitly when an inverse does not exist.
func New(n int, modulus *big.Int, threshold int, p pool.Pool) (*Scheme, error) {
	base, err := sharing.NewBase(n, p)
	if err != nil {
		return nil, err
	}
	enc, err := sharing.NewEncoding(modulus)
	if err != nil {
		return nil, err
	}
	if threshold == 0 {
		threshold = 1 + n/2
	}
	if threshold < 1 || threshold > n {
		return nil, fmt.Errorf("threshold must satisfy 1 <= t <= n, got t = %d with n = %d", threshold, n)
	}
	return &Scheme{Base: base, enc: enc, threshold: threshold}, nil
}

// Kind implements the sharing.Scheme interface.
func (s *Scheme) Kind() string { return Kind }

// Threshold implements the sharing.ThresholdScheme interface.
func (s *Scheme) Threshold() int { return s.threshold }

// Modulus returns the public modulus.
func (s *Scheme) Modulus() *big.Int { return s.enc.Modulus() }

// MinValue returns the smallest encodable value.
func (s *Scheme) MinValue() *big.Int { return s.enc.MinValue() }

// MaxValue returns the largest encodable value.
func (s *Scheme) MaxValue() *big.Int { return s.enc.MaxValue() }

// Encode implements the sharing.Scheme interface.
func (s *Scheme) Encode(value *big.Int) (*big.Int, error) { return s.enc.Encode(value) }

// Decode implements the sharing.Scheme interface.
func (s *Scheme) Decode(raw *big.Int) *big.Int { return s.enc.Decode(raw) }

// Weights returns the Lagrange weights for reconstructing a secret from all
// n shares. With the evaluation points fixed at 1..n, the weight of the
// party at index i simplifies to the closed form
//
//	w_i = n! / ((i+1) * Π_{j≠i} (j-i))
//
// reduced modulo the modulus, so that the secret is Σ w_i * s_i (mod
// modulus). The weights are computed once per scheme and cached.
func (s *Scheme) Weights() []*big.Int {
	s.weightsOnce.Do(func() {
		n := s.NumParties()
		modulus := s.enc.Modulus()

		nFactorial := big.NewInt(1)
		for i := int64(1); i <= int64(n); i++ {
			nFactorial.Mul(nFactorial, big.NewInt(i))
		}

		weights := make([]*big.Int, n)
		for i := 0; i < n; i++ {
			denominator := big.NewInt(int64(i + 1))
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				denominator.Mul(denominator, big.NewInt(int64(j-i)))
			}
			// The division is exact: the denominator divides n!.
			w := new(big.Int).Quo(nFactorial, denominator)
			weights[i] = w.Mod(w, modulus)
		}
		s.weights = weights
	})
	return s.weights
}

// ShareSecret implements the sharing.Scheme interface. It draws a random
// polynomial of degree t-1 with the secret as the constant term and
// evaluates it at the fixed points 1..n.
func (s *Scheme) ShareSecret(raw *big.Int) ([]*big.Int, error) {
	modulus := s.enc.Modulus()
	f, err := poly.Random(raw, s.threshold, modulus)
	if err != nil {
		return nil, err
	}

	shares := make([]*big.Int, s.NumParties())
	for i := range shares {
		shares[i] = f.Evaluate(big.NewInt(int64(i+1)), modulus)
	}
	return shares, nil
}

// AddEncoded implements the sharing.LinearScheme interface. Shares are
// polynomial evaluations, so pointwise addition of shares adds the
// underlying polynomials.
func (s *Scheme) AddEncoded(a, b *big.Int) *big.Int {
	sum := new(big.Int).Add(a, b)
	return sum.Mod(sum, s.enc.Modulus())
}

// ScalarAddEncoded implements the sharing.LinearScheme interface. Every
// party adds the constant to its own share: f(x)+c evaluated anywhere shifts
// the value by c, so the shared constant term moves by c as well. Note the
// contrast with additive sharing, where only one party may absorb a
// constant.
func (s *Scheme) ScalarAddEncoded(share, constant *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(share, constant)
	return sum.Mod(sum, s.enc.Modulus()), nil
}

// ScalarMulEncoded implements the sharing.LinearScheme interface.
func (s *Scheme) ScalarMulEncoded(share, constant *big.Int) *big.Int {
	product := new(big.Int).Mul(share, constant)
	return product.Mod(product, s.enc.Modulus())
}

// MulEncoded implements the sharing.LinearScheme interface using a resharing
// protocol.
//
// If f and g encode secrets a = f(0) and b = g(0) and both have degree t-1,
// the pointwise product h = f·g satisfies h(0) = ab but has degree 2(t-1).
// Repeated multiplication would keep doubling the degree until the n
// available shares can no longer interpolate the result, so h is never
// reconstructed directly. Instead each party computes its term of the
// all-party interpolation of h(0) — its Lagrange weight times the product of
// its two input shares — and reshares that term as a fresh degree t-1
// secret. Summing the received fragments yields a degree t-1 sharing of ab.
//
// The doubled degree must still be interpolatable by the n parties before
// reduction, giving the constraint 2t-1 <= n.
//
// The resharing id must be unique to this multiplication: it namespaces the
// fragment messages, so concurrent multiplications between the same parties
// would otherwise cross-deliver.
func (s *Scheme) MulEncoded(ctx context.Context, a, b *big.Int, resharingID string) (*big.Int, error) {
	n := s.NumParties()
	if 2*s.threshold-1 > n {
		return nil, fmt.Errorf(
			"multiplication is not possible with n = %d parties and threshold t = %d: it requires 2t-1 <= n",
			n, s.threshold,
		)
	}
	if resharingID == "" {
		return nil, sharing.ErrMissingResharingID
	}

	p, err := s.Pool()
	if err != nil {
		return nil, err
	}
	index, err := s.LocalIndex()
	if err != nil {
		return nil, err
	}
	modulus := s.enc.Modulus()

	local := new(big.Int).Mul(s.Weights()[index], a)
	local.Mul(local, b)
	local.Mod(local, modulus)

	resharing, err := sharing.ShareAndSendRaw(
		ctx, s, fmt.Sprintf("resharing_%s_%s", p.Name(), resharingID), local,
	)
	if err != nil {
		return nil, err
	}
	result, err := resharing.LocalShare()
	if err != nil {
		return nil, err
	}
	result = new(big.Int).Set(result)

	parties, err := s.PartyNames()
	if err != nil {
		return nil, err
	}
	for _, party := range parties {
		if party == p.Name() {
			continue
		}
		fragment, err := sharing.Receive(ctx, s, party, fmt.Sprintf("resharing_%s_%s", party, resharingID))
		if err != nil {
			return nil, err
		}
		share, err := fragment.LocalShare()
		if err != nil {
			return nil, err
		}
		result.Add(result, share)
	}
	return result.Mod(result, modulus), nil
}

// ReconstructRaw implements the sharing.Scheme interface.
//
// With a nil otherParties slice all n shares contribute, using the cached
// closed-form weights. Otherwise the local party and the named peers form
// the contributor set, and the weight of the contributor at index i is
//
//	w_i = (Π_{c∈C} (c+1)) * ((i+1) * Π_{j∈C, j≠i} (j-i))^-1 (mod modulus)
//
// where C is the set of contributor indices. The modular inverse exists for
// a prime modulus; if it does not exist, an explicit error is returned.
func (s *Scheme) ReconstructRaw(shares []*big.Int, otherParties []string) (*big.Int, error) {
	modulus := s.enc.Modulus()

	if otherParties == nil {
		weights := s.Weights()
		sum := new(big.Int)
		tmp := new(big.Int)
		for i, share := range shares {
			if share == nil {
				continue
			}
			tmp.Mul(weights[i], share)
			sum.Add(sum, tmp)
		}
		return sum.Mod(sum, modulus), nil
	}

	contributors, err := s.contributorIndices(otherParties)
	if err != nil {
		return nil, err
	}

	numerator := big.NewInt(1)
	for _, c := range contributors {
		numerator.Mul(numerator, big.NewInt(int64(c+1)))
	}

	sum := new(big.Int)
	for _, i := range contributors {
		denominator := big.NewInt(int64(i + 1))
		for _, j := range contributors {
			if j == i {
				continue
			}
			denominator.Mul(denominator, big.NewInt(int64(j-i)))
		}
		denominator.Mod(denominator, modulus)
		inverse := new(big.Int).ModInverse(denominator, modulus)
		if inverse == nil {
			return nil, fmt.Errorf(
				"no modular inverse for %v modulo %v: reconstruction from a subset requires a prime modulus",
				denominator, modulus,
			)
		}

		weight := new(big.Int).Mul(numerator, inverse)
		weight.Mod(weight, modulus)
		if shares[i] == nil {
			continue
		}
		weight.Mul(weight, shares[i])
		sum.Add(sum, weight)
	}
	return sum.Mod(sum, modulus), nil
}

// contributorIndices maps the named peers plus the local party to their
// sorted indices, deduplicated and in ascending order.
func (s *Scheme) contributorIndices(otherParties []string) ([]int, error) {
	p, err := s.Pool()
	if err != nil {
		return nil, err
	}

	distinct := make(map[string]struct{}, len(otherParties)+1)
	for _, party := range otherParties {
		distinct[party] = struct{}{}
	}
	distinct[p.Name()] = struct{}{}

	contributors := make([]int, 0, len(distinct))
	for party := range distinct {
		i, err := s.PartyIndex(party)
		if err != nil {
			return nil, err
		}
		contributors = append(contributors, i)
	}
	sort.Ints(contributors)
	return contributors, nil
}

// Equal returns true if the other scheme is a Shamir scheme with the same
// parameters. Scheme equality is defined by parameters, not identity.
func (s *Scheme) Equal(other sharing.Scheme) bool {
	o, ok := other.(*Scheme)
	if !ok {
		return false
	}
	return s.NumParties() == o.NumParties() &&
		s.threshold == o.threshold &&
		s.Modulus().Cmp(o.Modulus()) == 0
}

// String implements the Stringer interface.
func (s *Scheme) String() string {
	return fmt.Sprintf("ShamirScheme(n=%d, modulus=%v, threshold=%d)", s.NumParties(), s.Modulus(), s.threshold)
}
