package ports

import "context"

// Contract for storing serialized optimization responses by key.
type ResultCache interface {
	// Return the cached value. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}
