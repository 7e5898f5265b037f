package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/veldin/siphon/internal/storage"
)

// seedDir writes files under a fresh directory that a file:// location can
// serve as a bucket.
func seedDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %q: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %q: %v", name, err)
		}
	}
	return dir
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitGeneralError},
		{"exit error", exitErr(ExitPartialFailure, errors.New("boom")), ExitPartialFailure},
		{"wrapped exit error", exitErr(ExitSourceNotAccess, errors.New("boom")), ExitSourceNotAccess},
		{"malformed location", storage.ErrMalformedLocation, ExitInvalidArgs},
		{"unsupported scheme", storage.ErrUnsupportedScheme, ExitInvalidArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRunDownloadFileBucket(t *testing.T) {
	src := seedDir(t, map[string]string{
		"a.txt":          "alpha",
		"sub/b.txt":      "bravo",
		"sub/deep/c.txt": "charlie",
	})
	dest := t.TempDir()

	code := run([]string{"download", "file://" + src, dest, "--workers", "2"})
	if code != ExitSuccess {
		t.Fatalf("run = %d, want %d", code, ExitSuccess)
	}

	for name, want := range map[string]string{
		"a.txt":          "alpha",
		"sub/b.txt":      "bravo",
		"sub/deep/c.txt": "charlie",
	} {
		got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("read %q: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%q = %q, want %q", name, got, want)
		}
	}
}

func TestRunDownloadEmptyBucket(t *testing.T) {
	code := run([]string{"download", "mem://scratch", t.TempDir()})
	if code != ExitSuccess {
		t.Fatalf("run = %d, want %d", code, ExitSuccess)
	}
}

func TestRunDownloadInvalidLocation(t *testing.T) {
	tests := []string{
		"not-a-url",
		"ftp://bucket/prefix",
		"gs://",
	}
	for _, loc := range tests {
		if code := run([]string{"download", loc, t.TempDir()}); code != ExitInvalidArgs {
			t.Errorf("run(download %q) = %d, want %d", loc, code, ExitInvalidArgs)
		}
	}
}

func TestRunDownloadBadFlags(t *testing.T) {
	if code := run([]string{"download", "gs://bucket/p"}); code != ExitInvalidArgs {
		t.Errorf("missing dest: run = %d, want %d", code, ExitInvalidArgs)
	}
	if code := run([]string{"download", "gs://bucket/p", t.TempDir(), "--max-group-size", "huge"}); code != ExitInvalidArgs {
		t.Errorf("bad group size: run = %d, want %d", code, ExitInvalidArgs)
	}
	if code := run([]string{"download", "gs://bucket/p", t.TempDir(), "--workers", "-1"}); code != ExitInvalidArgs {
		t.Errorf("bad workers: run = %d, want %d", code, ExitInvalidArgs)
	}
}

func TestRunDownloadGsutilBackendRequiresGS(t *testing.T) {
	src := seedDir(t, map[string]string{"a.txt": "alpha"})
	code := run([]string{"download", "file://" + src, t.TempDir(), "--backend", "gsutil"})
	if code != ExitInvalidArgs {
		t.Fatalf("run = %d, want %d", code, ExitInvalidArgs)
	}
}

func TestRunPlanFileBucket(t *testing.T) {
	src := seedDir(t, map[string]string{
		"x/1.dat": "0123456789",
		"x/2.dat": "0123456789",
	})

	if code := run([]string{"plan", "file://" + src}); code != ExitSuccess {
		t.Fatalf("run = %d, want %d", code, ExitSuccess)
	}
	if code := run([]string{"plan", "file://" + src, "--groups", "--per-object"}); code != ExitSuccess {
		t.Fatalf("run (per-object) = %d, want %d", code, ExitSuccess)
	}

	// plan must not write anything anywhere near the source.
	entries, err := os.ReadDir(src)
	if err != nil {
		t.Fatalf("read src: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "x" {
		t.Errorf("source directory changed: %v", entries)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if code := run([]string{"frobnicate"}); code == ExitSuccess {
		t.Fatal("unknown command reported success")
	}
}
