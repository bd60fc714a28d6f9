// Package kv is the durable key/value storage used for the session record.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")

// Store persists opaque string values. Get returns ErrNotFound for a key
// that was never set or has been deleted. Delete of a missing key is not
// an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
