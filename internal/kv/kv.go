// Package kv provides the opaque key-value persistence boundary. The catalog
// keeps exactly two values behind it: the serialized selection store and the
// serialized manual draft. Backends: Redis, Postgres, and in-memory.
package kv

import "context"

// Store is the persistence boundary. Get reports absence via the bool rather
// than an error; a missing key is a normal first-run state.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// Well-known keys. Values are whole JSON documents written through on every
// mutation.
const (
	KeySelections = "catalog:selections"
	KeyManual     = "catalog:manual"
)
