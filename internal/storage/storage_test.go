package storage

import (
	"context"
	"testing"

	_ "gocloud.dev/blob/memblob"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	backend, err := Open(ctx, Location{Scheme: "mem"}, BackendAuto)
	if err != nil {
		t.Fatalf("Open auto: %v", err)
	}
	if _, ok := backend.(*BlobBackend); !ok {
		t.Fatalf("expected *BlobBackend, got %T", backend)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Empty mode means auto.
	backend, err = Open(ctx, Location{Scheme: "mem"}, "")
	if err != nil {
		t.Fatalf("Open default: %v", err)
	}
	backend.Close()

	backend, err = Open(ctx, Location{Scheme: "gs", Bucket: "data-lake"}, BackendGsutil)
	if err != nil {
		t.Fatalf("Open gsutil: %v", err)
	}
	if _, ok := backend.(*GsutilBackend); !ok {
		t.Fatalf("expected *GsutilBackend, got %T", backend)
	}

	if _, err := Open(ctx, Location{Scheme: "mem"}, "rsync"); err == nil {
		t.Fatal("expected error for unknown backend mode")
	}
}
