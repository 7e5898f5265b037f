//go:build integration

package mirror_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "gocloud.dev/blob/s3blob"

	"github.com/veldin/siphon/internal/mirror"
	"github.com/veldin/siphon/internal/storage"
	"github.com/veldin/siphon/internal/testutils"
)

func TestDownloadFromMinio(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	env := testutils.StartMinioContainer(t, ctx, "siphon-test")
	defer env.Close(ctx)

	// 10 objects of 1KB each; a 4KB budget forces 3 groups (4+4+2).
	objects := make(map[string][]byte)
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("exports/day-%02d/part-%d.dat", i/5, i)
		objects[key] = testutils.GenerateTestData(t, 1024)
	}
	env.SeedObjects(t, ctx, objects)

	bucket, err := env.OpenBucket(ctx)
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()
	backend := storage.NewBlobBackend(bucket)

	dest := t.TempDir()
	res, err := mirror.Download(ctx, backend, "exports/", dest, mirror.Options{
		Workers:      2,
		MaxGroupSize: 4 * 1024,
	})
	if err != nil {
		t.Fatalf("download: %v", err)
	}

	if res.Groups != 3 {
		t.Errorf("groups = %d, want 3", res.Groups)
	}
	if res.CompletedGroups != 3 || len(res.Failures) != 0 {
		t.Errorf("completed = %d, failures = %d, want 3 and 0", res.CompletedGroups, len(res.Failures))
	}
	if res.CompletedObjects != 10 {
		t.Errorf("objects = %d, want 10", res.CompletedObjects)
	}

	for key, want := range objects {
		got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(key)))
		if err != nil {
			t.Fatalf("read %q: %v", key, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("content mismatch for %q", key)
		}
	}
}

func TestDownloadPerObjectFromMinio(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	env := testutils.StartMinioContainer(t, ctx, "siphon-test")
	defer env.Close(ctx)

	objects := map[string][]byte{
		"big/one.bin": testutils.GenerateTestData(t, 256*1024),
		"big/two.bin": testutils.GenerateTestData(t, 128*1024),
	}
	env.SeedObjects(t, ctx, objects)

	bucket, err := env.OpenBucket(ctx)
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()
	backend := storage.NewBlobBackend(bucket)

	dest := t.TempDir()
	res, err := mirror.Download(ctx, backend, "big/", dest, mirror.Options{
		Workers:   2,
		PerObject: true,
	})
	if err != nil {
		t.Fatalf("download: %v", err)
	}

	if res.Groups != 2 || res.CompletedGroups != 2 {
		t.Errorf("groups = %d completed = %d, want 2 and 2", res.Groups, res.CompletedGroups)
	}
	for key, want := range objects {
		got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(key)))
		if err != nil {
			t.Fatalf("read %q: %v", key, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("content mismatch for %q", key)
		}
	}
}
