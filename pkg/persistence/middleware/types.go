// Package middleware wraps snapshot stores to change what is persisted, e.g.
// to encrypt user state or mask sensitive fields.
package middleware

import "github.com/aretw0/screengraph/pkg/ports"

// Middleware allows wrapping a SnapshotStore to add behavior.
type Middleware func(ports.SnapshotStore) ports.SnapshotStore

// Chain applies mws to store. The first middleware is the outermost.
func Chain(store ports.SnapshotStore, mws ...Middleware) ports.SnapshotStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
