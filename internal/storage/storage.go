package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Backend selection modes for Open.
const (
	// BackendAuto picks the gocloud driver registered for the location's
	// scheme.
	BackendAuto = "auto"
	// BackendGsutil shells out to the gsutil CLI. Only valid for gs
	// locations.
	BackendGsutil = "gsutil"
)

// ErrNotExist is returned when a key does not exist in the store.
var ErrNotExist = errors.New("storage: object does not exist")

// ObjectInfo describes a single object in a store.
type ObjectInfo struct {
	// Key is the object's full path within its container.
	Key string
	// Size is the object size in bytes. Size is -1 when the backend could
	// not determine it during listing.
	Size int64
}

// Backend is the read-side interface of an object store. Implementations
// must be safe for concurrent use across distinct keys.
type Backend interface {
	// List visits every object whose key starts with prefix, in lexical
	// key order. Listing stops at the first error returned by visit.
	List(ctx context.Context, prefix string, visit func(ObjectInfo) error) error

	// Stat resolves metadata for a single key. Missing keys report
	// ErrNotExist.
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// NewReader streams the content of a single key. The caller owns the
	// reader and must close it; a close error means the stream did not
	// deliver the full object.
	NewReader(ctx context.Context, key string) (io.ReadCloser, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Open returns a Backend for the location. mode is one of BackendAuto or
// BackendGsutil.
func Open(ctx context.Context, loc Location, mode string) (Backend, error) {
	switch mode {
	case "", BackendAuto:
		return OpenBlob(ctx, loc)
	case BackendGsutil:
		return OpenGsutil(loc)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", mode)
	}
}
