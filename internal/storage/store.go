package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get for an absent key.
var ErrKeyNotFound = errors.New("key not found")

// Store is the string-keyed persistence contract the engine consumes.
// There are no transactions; callers read the whole value, mutate in memory,
// and write the whole value back.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
}
