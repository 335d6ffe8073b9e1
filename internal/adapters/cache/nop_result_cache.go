package cache

import "context"

// Cache that never stores anything. Used when no Redis URL is configured.
type NopResultCache struct{}

func (NopResultCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NopResultCache) Put(context.Context, string, []byte) error { return nil }
