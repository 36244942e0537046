// Package pool provides the peer-messaging capability used by the secret
// sharing schemes. A Pool represents one party's view of the network: its own
// identity, the identities of its peers, and point-to-point delivery of
// payloads tagged with application-chosen message ids.
//
// The message id is the sole disambiguator of concurrently in-flight
// operations. Two messages between the same pair of parties never
// cross-deliver as long as they carry distinct ids.
package pool

import "context"

// Message pairs a received payload with the name of the party that sent it.
type Message struct {
	Sender string
	Data   []byte
}

// Pool is the messaging capability of a single party. Implementations must be
// safe for concurrent use; a party may have several protocol operations in
// flight at once.
type Pool interface {
	// Name returns this party's identity.
	Name() string

	// Clients returns the identities of all known peers. The local party is
	// not included.
	Clients() []string

	// Send delivers a payload to the named peer, tagged with the given
	// message id. Delivery is best effort and non-blocking.
	Send(ctx context.Context, recipient string, data []byte, msgID string) error

	// Recv blocks until a payload tagged with the given message id arrives
	// from the named peer, or the context is cancelled.
	Recv(ctx context.Context, sender string, msgID string) ([]byte, error)

	// Broadcast sends a payload to all known peers under the given message
	// id.
	Broadcast(ctx context.Context, data []byte, msgID string) error

	// RecvAll blocks until one payload tagged with the given message id has
	// arrived from every expected sender. A nil senders slice means all known
	// peers.
	RecvAll(ctx context.Context, msgID string, senders []string) ([]Message, error)
}
