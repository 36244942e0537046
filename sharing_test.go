package sharing_test

import (
	"context"
	"fmt"
	"math/big"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	sharing "github.com/Quitlox/FuturePET-PET-Lab-Demo"
	"github.com/Quitlox/FuturePET-PET-Lab-Demo/pool"
	"github.com/Quitlox/FuturePET-PET-Lab-Demo/testutil"
)

// replicatedScheme is a deliberately trivial scheme for exercising the
// framework: every party holds a full copy of the raw secret, and any single
// share reconstructs it. It implements Scheme but not LinearScheme.
type replicatedScheme struct {
	sharing.Base
	enc sharing.Encoding
}

func newReplicated(n int, p pool.Pool) (*replicatedScheme, error) {
	base, err := sharing.NewBase(n, p)
	if err != nil {
		return nil, err
	}
	enc, err := sharing.NewEncoding(big.NewInt(1679))
	if err != nil {
		return nil, err
	}
	return &replicatedScheme{Base: base, enc: enc}, nil
}

func (s *replicatedScheme) Kind() string { return "replicated" }

func (s *replicatedScheme) Encode(v *big.Int) (*big.Int, error) { return s.enc.Encode(v) }

func (s *replicatedScheme) Decode(raw *big.Int) *big.Int { return s.enc.Decode(raw) }

func (s *replicatedScheme) ShareSecret(raw *big.Int) ([]*big.Int, error) {
	shares := make([]*big.Int, s.NumParties())
	for i := range shares {
		shares[i] = new(big.Int).Set(raw)
	}
	return shares, nil
}

func (s *replicatedScheme) ReconstructRaw(shares []*big.Int, otherParties []string) (*big.Int, error) {
	for _, share := range shares {
		if share != nil {
			return new(big.Int).Set(share), nil
		}
	}
	return nil, fmt.Errorf("no shares to reconstruct from")
}

func runParties(parties ...func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return testutil.RunParties(ctx, parties...)
}

var _ = Describe("Scheme bookkeeping", func() {
	It("should reject a non-positive number of parties", func() {
		_, err := sharing.NewBase(0, nil)
		Expect(err).To(MatchError(ContainSubstring("must be positive")))

		_, err = sharing.NewBase(-3, nil)
		Expect(err).To(HaveOccurred())
	})

	Context("without a pool", func() {
		var scheme *replicatedScheme

		BeforeEach(func() {
			var err error
			scheme, err = newReplicated(3, nil)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should report the missing communication capability", func() {
			Expect(scheme.HasPool()).To(BeFalse())

			_, err := scheme.Pool()
			Expect(err).To(MatchError(sharing.ErrNoCommunication))

			_, err = scheme.PartyNames()
			Expect(err).To(MatchError(ContainSubstring("not configured for communication")))

			_, err = scheme.LocalIndex()
			Expect(err).To(MatchError(ContainSubstring("not configured for communication")))
		})

		It("should still share and reconstruct locally", func() {
			x, err := sharing.Share(scheme, "x", big.NewInt(-17))
			Expect(err).ToNot(HaveOccurred())
			Expect(x.Shares()).To(HaveLen(3))

			value, err := x.Reconstruct(nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(value.Int64()).To(Equal(int64(-17)))
		})

		It("should refuse to wrap a share when the owner slot is unknowable", func() {
			_, err := sharing.FromShare(scheme, "x", big.NewInt(5))
			Expect(err).To(MatchError(ContainSubstring("not configured for communication")))
		})
	})

	Context("with a pool", func() {
		var scheme *replicatedScheme

		BeforeEach(func() {
			pools := testutil.Pools("charlie", "alice", "bob")
			var err error
			scheme, err = newReplicated(3, pools[0])
			Expect(err).ToNot(HaveOccurred())
		})

		It("should order the parties alphabetically, local party included", func() {
			names, err := scheme.PartyNames()
			Expect(err).ToNot(HaveOccurred())
			Expect(names).To(Equal([]string{"alice", "bob", "charlie"}))
		})

		It("should index parties by sorted position", func() {
			Expect(scheme.PartyIndex("alice")).To(Equal(0))
			Expect(scheme.PartyIndex("bob")).To(Equal(1))
			Expect(scheme.PartyIndex("charlie")).To(Equal(2))
			Expect(scheme.LocalIndex()).To(Equal(2))

			_, err := scheme.PartyIndex("dave")
			Expect(err).To(MatchError(ContainSubstring(`unknown party "dave"`)))
		})
	})
})

var _ = Describe("Shared value handles", func() {
	var scheme *replicatedScheme

	BeforeEach(func() {
		pools := testutil.Pools("alice", "bob", "charlie")
		var err error
		scheme, err = newReplicated(3, pools[0])
		Expect(err).ToNot(HaveOccurred())
	})

	It("should expose its name and scheme", func() {
		x, err := sharing.Share(scheme, "x", big.NewInt(42))
		Expect(err).ToNot(HaveOccurred())
		Expect(x.Name()).To(Equal("x"))
		Expect(x.Scheme()).To(Equal(sharing.Scheme(scheme)))
		Expect(x.String()).To(Equal("SecureNumber(x)"))
	})

	It("should wrap a single share in the owner's slot", func() {
		x, err := sharing.FromShareOwnedBy(scheme, "x", big.NewInt(5), "bob")
		Expect(err).ToNot(HaveOccurred())

		Expect(x.ShareAt(0)).To(BeNil())
		share, err := x.ShareAt(1)
		Expect(err).ToNot(HaveOccurred())
		Expect(share.Int64()).To(Equal(int64(5)))

		share, err = x.Share("bob")
		Expect(err).ToNot(HaveOccurred())
		Expect(share.Int64()).To(Equal(int64(5)))
	})

	It("should bound-check slot access", func() {
		x, err := sharing.Share(scheme, "x", big.NewInt(42))
		Expect(err).ToNot(HaveOccurred())

		_, err = x.ShareAt(-1)
		Expect(err).To(MatchError(ContainSubstring("out of bounds")))
		_, err = x.ShareAt(3)
		Expect(err).To(MatchError(ContainSubstring("out of bounds")))

		Expect(x.SetShareAt(3, big.NewInt(1))).To(MatchError(ContainSubstring("out of bounds")))
		Expect(x.SetShareAt(1, big.NewInt(7))).To(Succeed())

		Expect(x.SetShare("dave", big.NewInt(1))).To(MatchError(ContainSubstring(`unknown party "dave"`)))
	})

	It("should reject local operations when the local slot is unset", func() {
		x, err := sharing.FromShareOwnedBy(scheme, "x", big.NewInt(5), "bob")
		Expect(err).ToNot(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(x.Exchange(ctx, nil)).To(MatchError(ContainSubstring(`this party has no share of "x"`)))
	})

	It("should reject linear operations on a scheme without them", func() {
		x, err := sharing.Share(scheme, "x", big.NewInt(1))
		Expect(err).ToNot(HaveOccurred())
		y, err := sharing.Share(scheme, "y", big.NewInt(2))
		Expect(err).ToNot(HaveOccurred())

		_, err = x.Add(y)
		Expect(err).To(MatchError(ContainSubstring("does not support linear operations")))
		_, err = x.Scale(big.NewInt(2))
		Expect(err).To(MatchError(ContainSubstring("does not support linear operations")))
		_, err = x.AddConstant(big.NewInt(2))
		Expect(err).To(MatchError(ContainSubstring("does not support linear operations")))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err = sharing.Mul(ctx, x, y)
		Expect(err).To(MatchError(ContainSubstring("does not support multiplication")))
	})
})

var _ = Describe("Distributing shares", func() {
	names := []string{"alice", "bob", "charlie"}

	newSchemes := func() []*replicatedScheme {
		pools := testutil.Pools(names...)
		schemes := make([]*replicatedScheme, len(pools))
		for i, p := range pools {
			var err error
			schemes[i], err = newReplicated(len(pools), p)
			Expect(err).ToNot(HaveOccurred())
		}
		return schemes
	}

	It("should deliver each party its share of a sent secret", func() {
		schemes := newSchemes()
		received := make([]*big.Int, len(schemes))

		parties := make([]func(context.Context) error, len(schemes))
		parties[0] = func(ctx context.Context) error {
			_, err := sharing.ShareAndSend(ctx, schemes[0], "x", big.NewInt(42))
			return err
		}
		for i := 1; i < len(schemes); i++ {
			i := i
			parties[i] = func(ctx context.Context) error {
				x, err := sharing.Receive(ctx, schemes[i], "alice", "x")
				if err != nil {
					return err
				}
				received[i], err = x.LocalShare()
				return err
			}
		}

		Expect(runParties(parties...)).To(Succeed())
		for i := 1; i < len(schemes); i++ {
			Expect(received[i].Int64()).To(Equal(int64(42)))
		}
	})

	It("should refuse to receive from a party outside the pool", func() {
		schemes := newSchemes()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := sharing.Receive(ctx, schemes[0], "dave", "x")
		Expect(err).To(MatchError(ContainSubstring(`party "dave" is not in the pool`)))
	})

	It("should reveal a distributed secret to every party", func() {
		schemes := newSchemes()
		results := make([]*big.Int, len(schemes))

		parties := make([]func(context.Context) error, len(schemes))
		for i := range schemes {
			i := i
			parties[i] = func(ctx context.Context) error {
				var x *sharing.SecureNumber
				var err error
				if i == 0 {
					x, err = sharing.ShareAndSend(ctx, schemes[i], "x", big.NewInt(-273))
				} else {
					x, err = sharing.Receive(ctx, schemes[i], "alice", "x")
				}
				if err != nil {
					return err
				}
				results[i], err = x.ExchangeAndReconstruct(ctx, nil)
				return err
			}
		}

		Expect(runParties(parties...)).To(Succeed())
		for i := range results {
			Expect(results[i].Int64()).To(Equal(int64(-273)))
		}
	})

	It("should let every party input a secret symmetrically", func() {
		schemes := newSchemes()
		inputs := map[string]*big.Int{
			"alice":   big.NewInt(17),
			"bob":     big.NewInt(29),
			"charlie": big.NewInt(61),
		}
		outputs := make([][]*sharing.SecureNumber, len(schemes))

		parties := make([]func(context.Context) error, len(schemes))
		for i, scheme := range schemes {
			i, scheme := i, scheme
			parties[i] = func(ctx context.Context) error {
				p, err := scheme.Pool()
				if err != nil {
					return err
				}
				shared, err := sharing.ShareEach(ctx, scheme, "input", inputs[p.Name()])
				if err != nil {
					return err
				}
				outputs[i] = shared
				return nil
			}
		}

		Expect(runParties(parties...)).To(Succeed())
		for i := range outputs {
			Expect(outputs[i]).To(HaveLen(3))
			Expect(outputs[i][0].Name()).To(Equal("input_alice"))
			Expect(outputs[i][1].Name()).To(Equal("input_bob"))
			Expect(outputs[i][2].Name()).To(Equal("input_charlie"))

			// Replicated sharing: the local share is the encoded input.
			for j, owner := range names {
				share, err := outputs[i][j].LocalShare()
				Expect(err).ToNot(HaveOccurred())
				Expect(share.Cmp(inputs[owner])).To(Equal(0))
			}
		}
	})
})

var _ = Describe("Validating identifiers", func() {
	It("should succeed when all parties agree on the ordering", func() {
		pools := testutil.Pools("alice", "bob", "charlie")

		parties := make([]func(context.Context) error, len(pools))
		for i, p := range pools {
			p := p
			parties[i] = func(ctx context.Context) error {
				scheme, err := newReplicated(3, p)
				if err != nil {
					return err
				}
				x, err := sharing.Share(scheme, "x", big.NewInt(1))
				if err != nil {
					return err
				}
				return x.ValidateIdentifiers(ctx)
			}
		}
		Expect(runParties(parties...)).To(Succeed())
	})

	It("should report a peer with a different view of the parties", func() {
		net := pool.NewNetwork()
		pools := []*pool.LocalPool{
			net.Attach("alice", []string{"bob", "charlie"}),
			net.Attach("bob", []string{"alice", "charlie"}),
			// Misconfigured: charlie believes a fourth party exists.
			net.Attach("charlie", []string{"alice", "bob", "dave"}),
		}
		net.Attach("dave", []string{"alice", "bob", "charlie"})

		parties := make([]func(context.Context) error, len(pools))
		for i, p := range pools {
			p := p
			parties[i] = func(ctx context.Context) error {
				scheme, err := newReplicated(len(p.Clients())+1, p)
				if err != nil {
					return err
				}
				x, err := sharing.Share(scheme, "x", big.NewInt(1))
				if err != nil {
					return err
				}
				return x.ValidateIdentifiers(ctx)
			}
		}

		err := runParties(parties...)
		Expect(err).To(MatchError(ContainSubstring("mismatch in party names")))
	})
})
