// Package storage provides the durable key-value stores used to keep the
// session token, the current user and saved filters between runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rooms-client/internal/domain"
	"rooms-client/internal/observability"
)

const (
	KeyAuthToken = "auth_token"
	KeyUser      = "user"
	KeyFilters   = "roomFilters"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// observe records the duration of a store operation and counts failures
func observe(driver, op string, start time.Time, err error) {
	observability.StorageOpDuration.WithLabelValues(driver, op).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.StorageErrorsTotal.WithLabelValues(driver, op).Inc()
	}
}

// TokenSource reads the bearer token saved by the auth store
type TokenSource struct {
	Store domain.KeyValueStore
}

// Token returns the saved token, or "" when there is none
func (s TokenSource) Token(ctx context.Context) (string, error) {
	tok, ok, err := s.Store.Get(ctx, KeyAuthToken)
	if err != nil {
		return "", fmt.Errorf("failed to read auth token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return tok, nil
}
