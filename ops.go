package sharing

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/renproject/surge"
)

func sendRecvMsgID(s Scheme, name string) string {
	return fmt.Sprintf("%s_send/recv_%s", s.Kind(), name)
}

func exchangeMsgID(s Scheme, name string) string {
	return fmt.Sprintf("%s_exchange_%s", s.Kind(), name)
}

func shareEachMsgID(s Scheme, name string) string {
	return fmt.Sprintf("%s_share_each_%s", s.Kind(), name)
}

// Share encodes a secret and applies the scheme's sharing algorithm. The
// returned handle has all n share slots filled; use Send to distribute them
// to the other parties.
func Share(s Scheme, name string, secret *big.Int) (*SecureNumber, error) {
	raw, err := s.Encode(secret)
	if err != nil {
		return nil, err
	}
	return ShareRaw(s, name, raw)
}

// ShareRaw is Share without the encoding step; the secret must already lie in
// the scheme's raw domain.
func ShareRaw(s Scheme, name string, raw *big.Int) (*SecureNumber, error) {
	shares, err := s.ShareSecret(raw)
	if err != nil {
		return nil, fmt.Errorf("sharing %q: %w", name, err)
	}
	return &SecureNumber{name: name, scheme: s, shares: shares}, nil
}

// ShareAndSend shares a secret and distributes the shares to all peers. Peers
// must call Receive under the same secret name.
func ShareAndSend(ctx context.Context, s Scheme, name string, secret *big.Int) (*SecureNumber, error) {
	x, err := Share(s, name, secret)
	if err != nil {
		return nil, err
	}
	if err := x.Send(ctx); err != nil {
		return nil, err
	}
	return x, nil
}

// ShareAndSendRaw is ShareAndSend without the encoding step.
func ShareAndSendRaw(ctx context.Context, s Scheme, name string, raw *big.Int) (*SecureNumber, error) {
	x, err := ShareRaw(s, name, raw)
	if err != nil {
		return nil, err
	}
	if err := x.Send(ctx); err != nil {
		return nil, err
	}
	return x, nil
}

// Receive blocks until the named party delivers this party's share of the
// named secret. The secret must be known under the same name by both parties.
func Receive(ctx context.Context, s Scheme, from, name string) (*SecureNumber, error) {
	p, err := s.Pool()
	if err != nil {
		return nil, err
	}
	known := false
	for _, client := range p.Clients() {
		if client == from {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("party %q is not in the pool", from)
	}

	data, err := p.Recv(ctx, from, sendRecvMsgID(s, name))
	if err != nil {
		return nil, fmt.Errorf("receiving %q from %q: %w", name, from, err)
	}
	var msg ShareMessage
	if err := surge.FromBinary(&msg, data); err != nil {
		return nil, fmt.Errorf("decoding share of %q from %q: %w", name, from, err)
	}
	return FromShare(s, name, msg.Value)
}

// FromShare wraps a single share, owned by the local party, into a handle so
// that computation on the secret it represents becomes possible.
func FromShare(s Scheme, name string, share *big.Int) (*SecureNumber, error) {
	p, err := s.Pool()
	if err != nil {
		return nil, fmt.Errorf("cannot determine which slot the share belongs to: %w", err)
	}
	return FromShareOwnedBy(s, name, share, p.Name())
}

// FromShareOwnedBy wraps a single share owned by the named party into a
// handle. All other slots remain unset.
func FromShareOwnedBy(s Scheme, name string, share *big.Int, owner string) (*SecureNumber, error) {
	i, err := s.PartyIndex(owner)
	if err != nil {
		return nil, err
	}
	shares := make([]*big.Int, s.NumParties())
	shares[i] = share
	return &SecureNumber{name: name, scheme: s, shares: shares}, nil
}

// ShareEach lets every party input a secret symmetrically: each party shares
// its own value under "name_<party>" and distributes the shares, then
// collects its shares of all peers' secrets. The returned handles are sorted
// by secret name.
func ShareEach(ctx context.Context, s Scheme, name string, secret *big.Int) ([]*SecureNumber, error) {
	p, err := s.Pool()
	if err != nil {
		return nil, err
	}

	local, err := Share(s, fmt.Sprintf("%s_%s", name, p.Name()), secret)
	if err != nil {
		return nil, err
	}

	msgID := shareEachMsgID(s, name)
	for _, party := range p.Clients() {
		share, err := local.Share(party)
		if err != nil {
			return nil, err
		}
		data, err := surge.ToBinary(&ShareMessage{Value: share})
		if err != nil {
			return nil, err
		}
		if err := p.Send(ctx, party, data, msgID); err != nil {
			return nil, err
		}
	}

	messages, err := p.RecvAll(ctx, msgID, nil)
	if err != nil {
		return nil, err
	}
	secrets := []*SecureNumber{local}
	for _, message := range messages {
		var msg ShareMessage
		if err := surge.FromBinary(&msg, message.Data); err != nil {
			return nil, fmt.Errorf("decoding share from %q: %w", message.Sender, err)
		}
		received, err := FromShare(s, fmt.Sprintf("%s_%s", name, message.Sender), msg.Value)
		if err != nil {
			return nil, err
		}
		secrets = append(secrets, received)
	}
	sort.Slice(secrets, func(i, j int) bool { return secrets[i].Name() < secrets[j].Name() })
	return secrets, nil
}

// Mul asynchronously multiplies two shared values. Unlike the linear
// operations this involves communication: the scheme reshares the product so
// that the result remains a well-formed share. The resharing id is derived
// from both operand names, so multiplications of distinctly named operands
// may safely be in flight concurrently.
//
// To multiply a shared value by a public constant, use the synchronous
// SecureNumber.Scale instead.
func Mul(ctx context.Context, x, y *SecureNumber) (*SecureNumber, error) {
	lin, ok := x.scheme.(LinearScheme)
	if !ok {
		return nil, fmt.Errorf("scheme %q does not support multiplication of shared values", x.scheme.Kind())
	}

	a, err := x.setLocalShare()
	if err != nil {
		return nil, err
	}
	b, err := y.setLocalShare()
	if err != nil {
		return nil, err
	}

	resharingID := fmt.Sprintf("(%s)*%s", x.name, y.name)
	product, err := lin.MulEncoded(ctx, a, b, resharingID)
	if err != nil {
		return nil, err
	}
	return FromShare(x.scheme, resharingID, product)
}
