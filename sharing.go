// Package sharing provides the generic framework for secret sharing schemes:
// the capability contracts every scheme satisfies, the shared-value handle
// used to compute on shared secrets, and the signed encoding into modular
// arithmetic.
//
// A scheme splits a secret value among n parties such that sub-threshold
// coalitions learn nothing. Parties are identified by name; all parties of a
// scheme instance (the local party plus its peers) are sorted alphabetically
// once, and the sorted position is the canonical index used everywhere shares
// are indexed by party. Every participant must compute the identical
// ordering; use SecureNumber.ValidateIdentifiers to cross-check.
package sharing

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/Quitlox/FuturePET-PET-Lab-Demo/pool"
)

// Scheme is the contract every secret sharing scheme satisfies. Secrets, raw
// (encoded) values and shares are all arbitrary-precision integers.
//
// A scheme owns no mutable state across secrets: it is a holder of the
// sharing and reconstruction algorithms plus a party-index mapping that is
// computed once and immutable thereafter.
type Scheme interface {
	// Kind returns a short identifier for the scheme family, used to
	// namespace network message ids.
	Kind() string

	// NumParties returns the number of parties participating in the scheme.
	NumParties() int

	// HasPool reports whether the scheme was set up for communication.
	HasPool() bool

	// Pool returns the messaging capability, or ErrNoCommunication if the
	// scheme was constructed without one.
	Pool() (pool.Pool, error)

	// PartyNames returns the alphabetically sorted names of all parties,
	// including the local party.
	PartyNames() ([]string, error)

	// PartyIndex returns the sorted position of the named party.
	PartyIndex(party string) (int, error)

	// Encode maps a signed value into the scheme's raw domain. It fails with
	// a DomainError for values outside the representable range.
	Encode(value *big.Int) (*big.Int, error)

	// Decode maps a raw value back to the signed range.
	Decode(raw *big.Int) *big.Int

	// ShareSecret applies the sharing algorithm to an already-encoded value
	// and returns one share per party, indexed by sorted party position.
	ShareSecret(raw *big.Int) ([]*big.Int, error)

	// ReconstructRaw recombines shares into the raw secret. A nil
	// otherParties slice means all known parties contribute; otherwise it
	// names the peers collaborating with the local party.
	ReconstructRaw(shares []*big.Int, otherParties []string) (*big.Int, error)
}

// LinearScheme is implemented by schemes whose shares admit linear operations
// without communication. The synchronous primitives operate on single shares;
// MulEncoded is the only network-requiring primitive and must be
// disambiguated by a caller-supplied resharing id.
type LinearScheme interface {
	Scheme

	// AddEncoded adds two shares of the same party.
	AddEncoded(a, b *big.Int) *big.Int

	// ScalarAddEncoded adds a public constant to the local party's share.
	// Which parties actually absorb the constant is a scheme convention.
	ScalarAddEncoded(share, constant *big.Int) (*big.Int, error)

	// ScalarMulEncoded multiplies a share by a public constant.
	ScalarMulEncoded(share, constant *big.Int) *big.Int

	// MulEncoded multiplies two shares of the same party, performing whatever
	// communication the scheme needs to keep the result a well-formed share.
	// The resharing id must be unique to this multiplication among all
	// concurrently in-flight multiplications.
	MulEncoded(ctx context.Context, a, b *big.Int, resharingID string) (*big.Int, error)
}

// ThresholdScheme is implemented by schemes where any subset of at least
// Threshold parties can reconstruct a secret.
type ThresholdScheme interface {
	Scheme

	// Threshold returns the minimum number of parties required to
	// reconstruct a secret.
	Threshold() int
}

// Base carries the party bookkeeping shared by all schemes: the party count,
// the optional messaging capability, and the lazily computed sorted party
// list with its name-to-index mapping. Concrete schemes embed a Base by
// value and use it through pointer receivers.
type Base struct {
	n int
	p pool.Pool

	once  sync.Once
	names []string
	index map[string]int
}

// NewBase constructs the shared bookkeeping for a scheme with n parties. The
// pool may be nil, in which case only local operations are available.
func NewBase(n int, p pool.Pool) (Base, error) {
	if n <= 0 {
		return Base{}, fmt.Errorf("the number of parties must be positive, got %d", n)
	}
	return Base{n: n, p: p}, nil
}

// NumParties returns the number of parties participating in the scheme.
func (b *Base) NumParties() int { return b.n }

// HasPool reports whether the scheme is set up for communication.
func (b *Base) HasPool() bool { return b.p != nil }

// Pool returns the messaging capability, or ErrNoCommunication if none was
// configured.
func (b *Base) Pool() (pool.Pool, error) {
	if b.p == nil {
		return nil, ErrNoCommunication
	}
	return b.p, nil
}

func (b *Base) initParties() error {
	if b.p == nil {
		return fmt.Errorf("cannot determine the party ordering: %w", ErrNoCommunication)
	}
	b.once.Do(func() {
		names := append([]string{b.p.Name()}, b.p.Clients()...)
		sort.Strings(names)
		index := make(map[string]int, len(names))
		for i, name := range names {
			index[name] = i
		}
		b.names = names
		b.index = index
	})
	return nil
}

// PartyNames returns the alphabetically sorted names of all parties in the
// pool, including the local party. The ordering is computed once and cached;
// the peer set cannot change after construction.
func (b *Base) PartyNames() ([]string, error) {
	if err := b.initParties(); err != nil {
		return nil, err
	}
	return b.names, nil
}

// PartyIndex returns the sorted position of the named party.
func (b *Base) PartyIndex(party string) (int, error) {
	if err := b.initParties(); err != nil {
		return 0, err
	}
	i, ok := b.index[party]
	if !ok {
		return 0, fmt.Errorf("unknown party %q", party)
	}
	return i, nil
}

// LocalIndex returns the sorted position of the local party.
func (b *Base) LocalIndex() (int, error) {
	if b.p == nil {
		return 0, fmt.Errorf("cannot determine the local party's index: %w", ErrNoCommunication)
	}
	return b.PartyIndex(b.p.Name())
}

// RandomBelow samples a uniformly random value in [0, modulus) from a
// cryptographically secure source.
func RandomBelow(modulus *big.Int) (*big.Int, error) {
	v, err := rand.Int(rand.Reader, modulus)
	if err != nil {
		return nil, fmt.Errorf("sampling randomness: %w", err)
	}
	return v, nil
}
