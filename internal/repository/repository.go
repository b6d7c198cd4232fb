package repository

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// StateRepository is the durable key-value store that mirrors session state.
// Values are opaque serialized strings and every Set replaces the whole value.
type StateRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
