package pool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// mailboxCap is the number of undelivered messages a single mailbox can hold
// before sends to it start failing. Protocol rounds exchange at most one
// message per (sender, recipient, id) triple, so the buffer only needs to
// absorb short-lived bursts.
const mailboxCap = 64

// ErrMailboxFull is returned by Send when the recipient has too many
// undelivered messages under the same message id.
var ErrMailboxFull = errors.New("mailbox full")

type mailboxKey struct {
	recipient string
	sender    string
	msgID     string
}

// Network is an in-process message switch connecting a set of local pools. It
// is intended for tests, demos and single-process simulations; every party
// attached to the same Network can exchange messages with every other.
//
// Messages are routed through per-(recipient, sender, id) mailboxes, so
// concurrent operations with distinct message ids never interfere.
type Network struct {
	mu    sync.Mutex
	boxes map[mailboxKey]chan []byte
}

// NewNetwork constructs an empty in-process network.
func NewNetwork() *Network {
	return &Network{boxes: map[mailboxKey]chan []byte{}}
}

// Attach registers a party with the given name and known peers, and returns
// its pool. The caller is responsible for attaching every named peer with a
// consistent view of the network.
func (n *Network) Attach(name string, clients []string) *LocalPool {
	sorted := make([]string, len(clients))
	copy(sorted, clients)
	sort.Strings(sorted)
	return &LocalPool{name: name, clients: sorted, net: n}
}

func (n *Network) mailbox(k mailboxKey) chan []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	box, ok := n.boxes[k]
	if !ok {
		box = make(chan []byte, mailboxCap)
		n.boxes[k] = box
	}
	return box
}

// LocalPool is one party's endpoint on an in-process Network. It implements
// the Pool interface.
type LocalPool struct {
	name    string
	clients []string
	net     *Network
}

var _ Pool = (*LocalPool)(nil)

// Name implements the Pool interface.
func (p *LocalPool) Name() string { return p.name }

// Clients implements the Pool interface.
func (p *LocalPool) Clients() []string {
	clients := make([]string, len(p.clients))
	copy(clients, p.clients)
	return clients
}

func (p *LocalPool) knows(party string) bool {
	for _, client := range p.clients {
		if client == party {
			return true
		}
	}
	return false
}

// Send implements the Pool interface. The payload is copied, so the caller
// may reuse the backing slice.
func (p *LocalPool) Send(ctx context.Context, recipient string, data []byte, msgID string) error {
	if !p.knows(recipient) {
		return fmt.Errorf("unknown recipient %q", recipient)
	}
	msg := make([]byte, len(data))
	copy(msg, data)

	box := p.net.mailbox(mailboxKey{recipient: recipient, sender: p.name, msgID: msgID})
	select {
	case box <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send %q to %q: %w", msgID, recipient, ctx.Err())
	default:
		return fmt.Errorf("send %q to %q: %w", msgID, recipient, ErrMailboxFull)
	}
}

// Recv implements the Pool interface.
func (p *LocalPool) Recv(ctx context.Context, sender string, msgID string) ([]byte, error) {
	if !p.knows(sender) {
		return nil, fmt.Errorf("unknown sender %q", sender)
	}
	box := p.net.mailbox(mailboxKey{recipient: p.name, sender: sender, msgID: msgID})
	select {
	case msg := <-box:
		return msg, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("recv %q from %q: %w", msgID, sender, ctx.Err())
	}
}

// Broadcast implements the Pool interface.
func (p *LocalPool) Broadcast(ctx context.Context, data []byte, msgID string) error {
	for _, client := range p.clients {
		if err := p.Send(ctx, client, data, msgID); err != nil {
			return err
		}
	}
	return nil
}

// RecvAll implements the Pool interface. Messages are returned ordered by
// sender name.
func (p *LocalPool) RecvAll(ctx context.Context, msgID string, senders []string) ([]Message, error) {
	if senders == nil {
		senders = p.clients
	}
	expected := make([]string, len(senders))
	copy(expected, senders)
	sort.Strings(expected)

	messages := make([]Message, 0, len(expected))
	for _, sender := range expected {
		data, err := p.Recv(ctx, sender, msgID)
		if err != nil {
			return nil, err
		}
		messages = append(messages, Message{Sender: sender, Data: data})
	}
	return messages, nil
}
