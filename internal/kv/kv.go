// Package kv is the durable key-value port behind the persistence gateway.
// Backends are picked at startup: in-memory for tests and zero-config runs,
// redis or postgres for durable deployments.
package kv

import "context"

type Store interface {
	// Get returns the stored value and whether the key exists. A missing key
	// is (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
