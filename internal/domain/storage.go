package domain

import (
	"context"
	"errors"
)

var ErrStoreClosed = errors.New("store is closed")

// KeyValueStore is the durable client-side storage (token, user, filters)
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
