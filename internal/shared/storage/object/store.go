package object

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when the requested key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore is a bucket that clients upload into directly and that the
// service later reads from for ingestion.
type ObjectStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
}
