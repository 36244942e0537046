package sharing

import (
	"context"
	"fmt"
	"math/big"

	"github.com/renproject/surge"
)

// validateIdentifiersMsgID tags the broadcast used by ValidateIdentifiers.
// The payload of every well-configured party is identical, so a single id
// suffices.
const validateIdentifiersMsgID = "securenumber_validate_identifiers"

// SecureNumber represents one secret shared through a scheme. It holds a slot
// for every party's share; a given process typically has only the slots it
// owns or has received filled, the others remain unset.
//
// A SecureNumber is not the same as a share: the party that created the
// secret holds all shares, while parties that received it or computed it hold
// only their own.
//
// Handles are not constructed directly. Use Share or ShareAndSend to share a
// new secret, Receive to obtain a secret shared by a peer, and FromShare to
// wrap a raw share.
type SecureNumber struct {
	name   string
	scheme Scheme
	shares []*big.Int
}

// Name returns the name of the secret. Derived handles record the operation
// that produced them in their name, which also namespaces their network
// messages.
func (x *SecureNumber) Name() string { return x.name }

// Scheme returns the scheme the secret is shared with.
func (x *SecureNumber) Scheme() Scheme { return x.scheme }

// Shares returns the underlying share slots. Slot i corresponds to the party
// at sorted index i; nil marks an unset slot.
func (x *SecureNumber) Shares() []*big.Int { return x.shares }

// ShareAt returns the share in slot i, or nil if the slot is unset.
func (x *SecureNumber) ShareAt(i int) (*big.Int, error) {
	if i < 0 || i >= len(x.shares) {
		return nil, fmt.Errorf("owner index %d is out of bounds, valid range is [0,%d)", i, len(x.shares))
	}
	return x.shares[i], nil
}

// Share returns the share belonging to the named party, or nil if unset.
func (x *SecureNumber) Share(owner string) (*big.Int, error) {
	i, err := x.scheme.PartyIndex(owner)
	if err != nil {
		return nil, err
	}
	return x.shares[i], nil
}

// SetShareAt sets the share in slot i.
func (x *SecureNumber) SetShareAt(i int, share *big.Int) error {
	if i < 0 || i >= len(x.shares) {
		return fmt.Errorf("owner index %d is out of bounds, valid range is [0,%d)", i, len(x.shares))
	}
	x.shares[i] = share
	return nil
}

// SetShare sets the share belonging to the named party.
func (x *SecureNumber) SetShare(owner string, share *big.Int) error {
	i, err := x.scheme.PartyIndex(owner)
	if err != nil {
		return err
	}
	x.shares[i] = share
	return nil
}

// LocalShare returns the share belonging to the local party, or nil if the
// local slot is unset.
func (x *SecureNumber) LocalShare() (*big.Int, error) {
	p, err := x.scheme.Pool()
	if err != nil {
		return nil, fmt.Errorf("cannot determine which share belongs to the local party: %w", err)
	}
	return x.Share(p.Name())
}

// setLocalShare is LocalShare with unset slots turned into errors; the local
// operations require an actual share to work on.
func (x *SecureNumber) setLocalShare() (*big.Int, error) {
	share, err := x.LocalShare()
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, fmt.Errorf("this party has no share of %q", x.name)
	}
	return share, nil
}

func (x *SecureNumber) linearScheme() (LinearScheme, error) {
	lin, ok := x.scheme.(LinearScheme)
	if !ok {
		return nil, fmt.Errorf("scheme %q does not support linear operations", x.scheme.Kind())
	}
	return lin, nil
}

// Add synchronously adds two shared values. No communication takes place:
// each party adds its own shares. The result holds only the local party's
// share.
func (x *SecureNumber) Add(y *SecureNumber) (*SecureNumber, error) {
	lin, err := x.linearScheme()
	if err != nil {
		return nil, err
	}
	a, err := x.setLocalShare()
	if err != nil {
		return nil, err
	}
	b, err := y.setLocalShare()
	if err != nil {
		return nil, err
	}
	return FromShare(x.scheme, fmt.Sprintf("%s+%s", x.name, y.name), lin.AddEncoded(a, b))
}

// AddConstant synchronously adds a public constant to a shared value. The
// constant is applied according to the scheme's scalar-addition convention.
func (x *SecureNumber) AddConstant(constant *big.Int) (*SecureNumber, error) {
	lin, err := x.linearScheme()
	if err != nil {
		return nil, err
	}
	share, err := x.setLocalShare()
	if err != nil {
		return nil, err
	}
	sum, err := lin.ScalarAddEncoded(share, constant)
	if err != nil {
		return nil, err
	}
	return FromShare(x.scheme, fmt.Sprintf("%s+%v", x.name, constant), sum)
}

// Scale synchronously multiplies a shared value by a public constant.
func (x *SecureNumber) Scale(constant *big.Int) (*SecureNumber, error) {
	lin, err := x.linearScheme()
	if err != nil {
		return nil, err
	}
	share, err := x.setLocalShare()
	if err != nil {
		return nil, err
	}
	return FromShare(x.scheme, fmt.Sprintf("(%s)*%v", x.name, constant), lin.ScalarMulEncoded(share, constant))
}

// Negate synchronously negates a shared value. Defined as scaling by -1.
func (x *SecureNumber) Negate() (*SecureNumber, error) {
	return x.Scale(big.NewInt(-1))
}

// Sub synchronously subtracts one shared value from another. Defined as the
// addition of the negation.
func (x *SecureNumber) Sub(y *SecureNumber) (*SecureNumber, error) {
	negated, err := y.Negate()
	if err != nil {
		return nil, err
	}
	return x.Add(negated)
}

// SubConstant synchronously subtracts a public constant from a shared value.
func (x *SecureNumber) SubConstant(constant *big.Int) (*SecureNumber, error) {
	return x.AddConstant(new(big.Int).Neg(constant))
}

// Send distributes the shares of this secret to all peers in the pool. It
// should be called on a handle created by Share; peers call Receive to obtain
// their share.
func (x *SecureNumber) Send(ctx context.Context) error {
	p, err := x.scheme.Pool()
	if err != nil {
		return err
	}
	msgID := sendRecvMsgID(x.scheme, x.name)
	for _, party := range p.Clients() {
		share, err := x.Share(party)
		if err != nil {
			return err
		}
		if share == nil {
			return fmt.Errorf("no share of %q to send to %q", x.name, party)
		}
		data, err := surge.ToBinary(&ShareMessage{Value: share})
		if err != nil {
			return fmt.Errorf("encoding share of %q: %w", x.name, err)
		}
		if err := p.Send(ctx, party, data, msgID); err != nil {
			return fmt.Errorf("sending share of %q to %q: %w", x.name, party, err)
		}
	}
	return nil
}

// Exchange broadcasts the local party's share and fills the remaining slots
// with the shares collected from the designated peers. A nil otherParties
// slice means all peers. After Exchange, Reconstruct can recombine the
// secret.
func (x *SecureNumber) Exchange(ctx context.Context, otherParties []string) error {
	p, err := x.scheme.Pool()
	if err != nil {
		return err
	}
	local, err := x.setLocalShare()
	if err != nil {
		return err
	}

	msgID := exchangeMsgID(x.scheme, x.name)
	data, err := surge.ToBinary(&ShareMessage{Value: local})
	if err != nil {
		return fmt.Errorf("encoding share of %q: %w", x.name, err)
	}
	if err := p.Broadcast(ctx, data, msgID); err != nil {
		return fmt.Errorf("broadcasting share of %q: %w", x.name, err)
	}

	senders := otherParties
	if senders != nil {
		// The local party never receives from itself.
		filtered := make([]string, 0, len(senders))
		for _, sender := range senders {
			if sender != p.Name() {
				filtered = append(filtered, sender)
			}
		}
		senders = filtered
	}
	messages, err := p.RecvAll(ctx, msgID, senders)
	if err != nil {
		return fmt.Errorf("collecting shares of %q: %w", x.name, err)
	}
	for _, message := range messages {
		var msg ShareMessage
		if err := surge.FromBinary(&msg, message.Data); err != nil {
			return fmt.Errorf("decoding share of %q from %q: %w", x.name, message.Sender, err)
		}
		if err := x.SetShare(message.Sender, msg.Value); err != nil {
			return err
		}
	}
	return nil
}

// ReconstructRaw recombines the currently filled slots into the raw secret.
// It performs no communication. A nil otherParties slice means all known
// parties contribute; otherwise it names the peers collaborating with the
// local party, and threshold schemes require the resulting contributor count
// to reach the threshold.
func (x *SecureNumber) ReconstructRaw(otherParties []string) (*big.Int, error) {
	if otherParties != nil {
		if ts, ok := x.scheme.(ThresholdScheme); ok {
			supplied := x.contributorCount(otherParties)
			if supplied < ts.Threshold() {
				return nil, &ThresholdError{Threshold: ts.Threshold(), Supplied: supplied}
			}
		}
	}
	return x.scheme.ReconstructRaw(x.shares, otherParties)
}

// Reconstruct is ReconstructRaw followed by decoding into the signed range.
func (x *SecureNumber) Reconstruct(otherParties []string) (*big.Int, error) {
	raw, err := x.ReconstructRaw(otherParties)
	if err != nil {
		return nil, err
	}
	return x.scheme.Decode(raw), nil
}

// ExchangeAndReconstruct exchanges shares with the designated peers and
// reconstructs the secret: the common way to reveal the result of a
// computation.
func (x *SecureNumber) ExchangeAndReconstruct(ctx context.Context, otherParties []string) (*big.Int, error) {
	if err := x.Exchange(ctx, otherParties); err != nil {
		return nil, err
	}
	return x.Reconstruct(otherParties)
}

// contributorCount counts the distinct contributing parties: the named peers
// plus the local party.
func (x *SecureNumber) contributorCount(otherParties []string) int {
	distinct := make(map[string]struct{}, len(otherParties)+1)
	for _, party := range otherParties {
		distinct[party] = struct{}{}
	}
	if p, err := x.scheme.Pool(); err == nil {
		distinct[p.Name()] = struct{}{}
		return len(distinct)
	}
	return len(distinct) + 1
}

// ValidateIdentifiers cross-checks that all parties computed the identical
// sorted party-name ordering. Mismatched orderings silently corrupt
// computations, since shares are indexed by sorted position. It returns an
// error naming the first disagreeing peer.
func (x *SecureNumber) ValidateIdentifiers(ctx context.Context) error {
	p, err := x.scheme.Pool()
	if err != nil {
		return err
	}
	names, err := x.scheme.PartyNames()
	if err != nil {
		return err
	}

	msg := NamesMessage(names)
	data, err := surge.ToBinary(&msg)
	if err != nil {
		return fmt.Errorf("encoding party names: %w", err)
	}
	if err := p.Broadcast(ctx, data, validateIdentifiersMsgID); err != nil {
		return err
	}
	messages, err := p.RecvAll(ctx, validateIdentifiersMsgID, nil)
	if err != nil {
		return err
	}

	for _, message := range messages {
		var got NamesMessage
		if err := surge.FromBinary(&got, message.Data); err != nil {
			return fmt.Errorf("decoding party names from %q: %w", message.Sender, err)
		}
		if !namesEqual(names, got) {
			return fmt.Errorf(
				"mismatch in party names: this party expected %v, but %q returned %v",
				names, message.Sender, []string(got),
			)
		}
	}
	return nil
}

func namesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String implements the Stringer interface.
func (x *SecureNumber) String() string {
	return fmt.Sprintf("SecureNumber(%s)", x.name)
}
