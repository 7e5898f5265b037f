package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// BlobBackend reads from any bucket gocloud.dev/blob can open. The driver
// for the location's scheme must be linked into the binary (blank import).
type BlobBackend struct {
	bucket *blob.Bucket
	owned  bool
}

// OpenBlob opens the location's container through gocloud.dev/blob.
func OpenBlob(ctx context.Context, loc Location) (*BlobBackend, error) {
	bucket, err := blob.OpenBucket(ctx, loc.BucketURL())
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", loc.BucketURL(), err)
	}
	return &BlobBackend{bucket: bucket, owned: true}, nil
}

// NewBlobBackend wraps an already opened bucket. The caller keeps ownership
// and must close the bucket itself.
func NewBlobBackend(bucket *blob.Bucket) *BlobBackend {
	return &BlobBackend{bucket: bucket}
}

// List visits the objects under prefix in lexical key order. Placeholder
// entries whose key ends in a slash (zero-byte "directory" markers) are
// skipped.
func (b *BlobBackend) List(ctx context.Context, prefix string, visit func(ObjectInfo) error) error {
	iter := b.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("list %q: %w", prefix, err)
		}
		if obj.IsDir || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if err := visit(ObjectInfo{Key: obj.Key, Size: obj.Size}); err != nil {
			return err
		}
	}
}

// Stat resolves the size of a single key.
func (b *BlobBackend) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	attrs, err := b.bucket.Attributes(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return ObjectInfo{}, fmt.Errorf("stat %q: %w", key, ErrNotExist)
		}
		return ObjectInfo{}, fmt.Errorf("stat %q: %w", key, err)
	}
	return ObjectInfo{Key: key, Size: attrs.Size}, nil
}

// NewReader streams the content of a single key.
func (b *BlobBackend) NewReader(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := b.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("read %q: %w", key, ErrNotExist)
		}
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return r, nil
}

// IsAccessible probes whether the container can be reached with the
// current credentials.
func (b *BlobBackend) IsAccessible(ctx context.Context) (bool, error) {
	return b.bucket.IsAccessible(ctx)
}

// Close closes the underlying bucket when this backend opened it.
func (b *BlobBackend) Close() error {
	if !b.owned {
		return nil
	}
	return b.bucket.Close()
}
