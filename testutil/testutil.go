// Package testutil provides helpers for exercising secret sharing protocols
// with several parties in a single process.
package testutil

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Quitlox/FuturePET-PET-Lab-Demo/pool"
)

// Pools returns one fully connected in-process pool per party name. Every
// returned pool knows every other named party as a peer.
func Pools(names ...string) []pool.Pool {
	net := pool.NewNetwork()
	pools := make([]pool.Pool, len(names))
	for i, name := range names {
		clients := make([]string, 0, len(names)-1)
		for _, other := range names {
			if other != name {
				clients = append(clients, other)
			}
		}
		pools[i] = net.Attach(name, clients)
	}
	return pools
}

// RunParties runs one function per party concurrently and waits for all of
// them. The first error cancels the shared context, unblocking parties that
// are suspended on a receive.
func RunParties(ctx context.Context, parties ...func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, party := range parties {
		party := party
		g.Go(func() error { return party(ctx) })
	}
	return g.Wait()
}
