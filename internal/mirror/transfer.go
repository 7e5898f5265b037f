package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/veldin/siphon/internal/progress"
	"github.com/veldin/siphon/internal/storage"
	"github.com/veldin/siphon/pkg/batch"
)

// copyBufferSize bounds the memory used per worker for streaming, no
// matter how large the objects are.
const copyBufferSize = 1 << 20 // 1 MiB

// errEmptyKey rejects objects whose key cannot map to a file path.
var errEmptyKey = errors.New("empty object key")

// transferGroup downloads the group's objects sequentially, in listing
// order. The first failure aborts the group; files written before it stay
// where they are. Cancellation is checked between objects.
func transferGroup(ctx context.Context, backend storage.Backend, idx int, group batch.Group, destRoot string, reporter *progress.Reporter) (objects int, bytes int64, gerr *GroupError) {
	if reporter != nil {
		reporter.GroupStarted()
	}

	buf := make([]byte, copyBufferSize)
	for _, obj := range group.Objects {
		err := ctx.Err()
		if err == nil {
			var n int64
			n, err = transferObject(ctx, backend, obj.Key, destRoot, buf)
			if err == nil {
				objects++
				bytes += n
				if reporter != nil {
					reporter.ObjectCompleted(n)
				}
				continue
			}
		}

		if reporter != nil {
			reporter.GroupFailed()
		}
		return objects, bytes, &GroupError{Group: idx, Key: obj.Key, Err: err}
	}

	if reporter != nil {
		reporter.GroupCompleted()
	}
	return objects, bytes, nil
}

// transferObject streams one object into its destination file through a
// fixed-size buffer.
func transferObject(ctx context.Context, backend storage.Backend, key, destRoot string, buf []byte) (int64, error) {
	dest, err := destPath(destRoot, key)
	if err != nil {
		return 0, err
	}

	// MkdirAll is idempotent, so concurrent groups sharing a parent
	// directory are fine.
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %q: %w", key, err)
	}

	r, err := backend.NewReader(ctx, key)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(dest)
	if err != nil {
		r.Close()
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}

	n, err := io.CopyBuffer(f, r, buf)

	// The reader's close error matters: for subprocess-backed streams
	// that is where a failed read surfaces.
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("transfer %q: %w", key, err)
	}
	return n, nil
}

// destPath maps an object key to its file path under destRoot, mirroring
// the key's full container path. Keys that would land outside destRoot
// are rejected.
func destPath(destRoot, key string) (string, error) {
	if key == "" {
		return "", errEmptyKey
	}
	dest := filepath.Join(destRoot, filepath.FromSlash(key))

	rel, err := filepath.Rel(filepath.Clean(destRoot), dest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object key %q escapes destination %q", key, destRoot)
	}
	return dest, nil
}

