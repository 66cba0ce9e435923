package ports

import "context"

// KeyValueStore is the durable side of the session. Get returns domain.ErrKeyNotFound when
// the key is absent and Remove is idempotent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}
