// Package storage provides the durable string key-value backends that cart
// blobs are written through to.
package storage

import (
	"context"
)

// Store is a string-valued key-value store. Read reports a missing key with
// ok=false and a nil error.
type Store interface {
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	Write(ctx context.Context, key, value string) error
}
