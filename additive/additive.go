// Package additive implements the n-out-of-n additive secret sharing scheme.
//
// A secret S is split among n parties by making the shares sum to the
// secret: S = s_0 + s_1 + ... + s_{n-1} (mod modulus). Even knowing all but
// one share reveals nothing about the secret, as each possible value of the
// missing share leads to a different unique secret. Reconstruction requires
// every share; there is no threshold.
package additive

import (
	"context"
	"fmt"
	"math/big"

	sharing "github.com/Quitlox/FuturePET-PET-Lab-Demo"
	"github.com/Quitlox/FuturePET-PET-Lab-Demo/pool"
)

// Kind identifies the additive scheme family in network message ids.
const Kind = "additive"

// Scheme implements additive secret sharing over the integers modulo a
// public modulus. It supports the linear operations (addition, scalar
// addition, scalar multiplication) synchronously; multiplication of two
// shared values is not supported, since additive sharing alone admits no
// secure multiplication without an additional primitive such as precomputed
// correlated randomness.
type Scheme struct {
	sharing.Base
	enc sharing.Encoding
}

var (
	_ sharing.Scheme       = (*Scheme)(nil)
	_ sharing.LinearScheme = (*Scheme)(nil)
)

// New constructs an additive scheme for n parties over the given modulus.
// The pool may be nil, in which case only local operations are available.
func New(n int, modulus *big.Int, p pool.Pool) (*Scheme, error) {
	base, err := sharing.NewBase(n, p)
	if err != nil {
		return nil, err
	}
	enc, err := sharing.NewEncoding(modulus)
	if err != nil {
		return nil, err
	}
	return &Scheme{Base: base, enc: enc}, nil
}

// Kind implements the sharing.Scheme interface.
func (s *Scheme) Kind() string { return Kind }

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

// ShareSecret implements the sharing.Scheme interface. All shares but the
// first are drawn independently and uniformly at random; the share at index
// 0 is chosen so that the shares sum to the secret.
func (s *Scheme) ShareSecret(raw *big.Int) ([]*big.Int, error) {
	modulus := s.enc.Modulus()
	shares := make([]*big.Int, s.NumParties())

	sum := new(big.Int)
	for i := 1; i < len(shares); i++ {
		share, err := sharing.RandomBelow(modulus)
		if err != nil {
			return nil, err
		}
		shares[i] = share
		sum.Add(sum, share)
	}

	correction := new(big.Int).Sub(raw, sum)
	shares[0] = correction.Mod(correction, modulus)
	return shares, nil
}

// AddEncoded implements the sharing.LinearScheme interface.
func (s *Scheme) AddEncoded(a, b *big.Int) *big.Int {
	sum := new(big.Int).Add(a, b)
	return sum.Mod(sum, s.enc.Modulus())
}

// ScalarAddEncoded implements the sharing.LinearScheme interface. A public
// constant must be absorbed by exactly one share, and the convention is that
// the party at sorted index 0 absorbs it; every other party keeps its share
// unchanged. All parties derive the index from the same sorted name
// ordering, so they agree on who absorbs the constant.
func (s *Scheme) ScalarAddEncoded(share, constant *big.Int) (*big.Int, error) {
	index, err := s.LocalIndex()
	if err != nil {
		return nil, err
	}
	if index != 0 {
		return new(big.Int).Set(share), nil
	}
	sum := new(big.Int).Add(share, constant)
	return sum.Mod(sum, s.enc.Modulus()), nil
}

// ScalarMulEncoded implements the sharing.LinearScheme interface.
func (s *Scheme) ScalarMulEncoded(share, constant *big.Int) *big.Int {
	product := new(big.Int).Mul(share, constant)
	return product.Mod(product, s.enc.Modulus())
}

// MulEncoded implements the sharing.LinearScheme interface. The additive
// scheme does not support multiplication of two shared values.
func (s *Scheme) MulEncoded(ctx context.Context, a, b *big.Int, resharingID string) (*big.Int, error) {
	return nil, fmt.Errorf("the additive scheme does not support multiplication of two shared values")
}

// ReconstructRaw implements the sharing.Scheme interface. By construction
// the sum of all shares equals the secret. Naming a contributor subset is
// rejected: this is not a threshold scheme, all shares are required.
func (s *Scheme) ReconstructRaw(shares []*big.Int, otherParties []string) (*big.Int, error) {
	if otherParties != nil {
		return nil, fmt.Errorf("the additive scheme is not a threshold scheme, so a contributor subset cannot be named")
	}
	sum := new(big.Int)
	for _, share := range shares {
		if share == nil {
			continue
		}
		sum.Add(sum, share)
	}
	return sum.Mod(sum, s.enc.Modulus()), nil
}

// Equal returns true if the other scheme is an additive scheme with the same
// parameters. Scheme equality is defined by parameters, not identity.
func (s *Scheme) Equal(other sharing.Scheme) bool {
	o, ok := other.(*Scheme)
	if !ok {
		return false
	}
	return s.NumParties() == o.NumParties() && s.Modulus().Cmp(o.Modulus()) == 0
}

// String implements the Stringer interface.
func (s *Scheme) String() string {
	return fmt.Sprintf("AdditiveScheme(n=%d, modulus=%v)", s.NumParties(), s.Modulus())
}
