package services

import (
	"context"
	"io"
)

// ObjectStore is the narrow surface this core needs from the object
// storage backend. Upload/download/delete of bytes is otherwise outside
// the core's scope.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
