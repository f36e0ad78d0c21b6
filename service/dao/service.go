// Package dao defines a generic keyed store used by in-process brokers to keep
// results and worker presence entries.
package dao

import (
	"context"
)

// Service is a keyed entity store. Load returns nil without error when the key
// is absent.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context) ([]*T, error)
}
