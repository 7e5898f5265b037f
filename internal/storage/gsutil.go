package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// GsutilBackend serves gs locations by shelling out to the gsutil CLI.
// It exists for environments where credentials are configured for gsutil
// but not for the process itself. Listing uses `gsutil ls -l` so sizes
// arrive with the keys, and reads stream through `gsutil cat`.
type GsutilBackend struct {
	bucket string
	run    runner
}

// OpenGsutil returns a gsutil-backed Backend for a gs location.
func OpenGsutil(loc Location) (*GsutilBackend, error) {
	if loc.Scheme != "gs" {
		return nil, fmt.Errorf("storage: gsutil backend requires a gs location, got %q", loc.Scheme)
	}
	return &GsutilBackend{bucket: loc.Bucket, run: execRunner{}}, nil
}

func (g *GsutilBackend) url(key string) string {
	return "gs://" + g.bucket + "/" + key
}

// List runs `gsutil ls -l gs://bucket/prefix**` and visits one object per
// output line. gsutil reports an error when the pattern matches nothing;
// that case is an empty listing, not a failure.
func (g *GsutilBackend) List(ctx context.Context, prefix string, visit func(ObjectInfo) error) error {
	out, err := g.run.output(ctx, "ls", "-l", g.url(prefix)+"**")
	if err != nil {
		if isNoMatch(err) {
			return nil
		}
		return fmt.Errorf("list %q: %w", prefix, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "TOTAL:") {
			continue
		}
		// Lines look like "  1234  2024-03-01T10:00:00Z  gs://bucket/key".
		// The URL is everything from "gs://" on, so keys may contain spaces.
		i := strings.Index(line, "gs://")
		if i < 0 {
			continue
		}
		url := line[i:]
		if strings.HasSuffix(url, "/") {
			continue
		}
		key := strings.TrimPrefix(url, "gs://"+g.bucket+"/")

		size := int64(-1)
		if fields := strings.Fields(line[:i]); len(fields) > 0 {
			if n, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
				size = n
			}
		}
		if err := visit(ObjectInfo{Key: key, Size: size}); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("list %q: %w", prefix, err)
	}
	return nil
}

// Stat runs `gsutil stat` and parses the Content-Length line.
func (g *GsutilBackend) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	out, err := g.run.output(ctx, "stat", g.url(key))
	if err != nil {
		if isNoMatch(err) {
			return ObjectInfo{}, fmt.Errorf("stat %q: %w", key, ErrNotExist)
		}
		return ObjectInfo{}, fmt.Errorf("stat %q: %w", key, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		value, found := strings.CutPrefix(line, "Content-Length:")
		if !found {
			continue
		}
		size, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return ObjectInfo{}, fmt.Errorf("stat %q: bad Content-Length %q", key, strings.TrimSpace(value))
		}
		return ObjectInfo{Key: key, Size: size}, nil
	}
	return ObjectInfo{}, fmt.Errorf("stat %q: no Content-Length in gsutil output", key)
}

// NewReader streams `gsutil cat`. A failed cat may look like an empty
// stream until Close, so Close errors mean the object did not transfer.
func (g *GsutilBackend) NewReader(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := g.run.stream(ctx, "cat", g.url(key))
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return rc, nil
}

// Close is a no-op; each operation runs its own process.
func (g *GsutilBackend) Close() error {
	return nil
}

// runner abstracts process execution so tests can substitute canned
// gsutil output.
type runner interface {
	// output runs gsutil with args and returns its collected stdout.
	output(ctx context.Context, args ...string) ([]byte, error)
	// stream runs gsutil with args and returns its stdout as a stream.
	// Closing the stream reaps the process; a nonzero exit surfaces as
	// the close error.
	stream(ctx context.Context, args ...string) (io.ReadCloser, error)
}

// execRunner invokes the real gsutil binary from PATH.
type execRunner struct{}

func (execRunner) output(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "gsutil", args...).Output()
	if err != nil {
		stderr := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = string(exitErr.Stderr)
		}
		return nil, &commandError{args: args, stderr: stderr, err: err}
	}
	return out, nil
}

func (execRunner) stream(ctx context.Context, args ...string) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, "gsutil", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &commandError{args: args, err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &commandError{args: args, err: err}
	}
	return &procReader{cmd: cmd, stdout: stdout, stderr: &stderr, args: args}, nil
}

// procReader streams a child process's stdout. Close waits for the process
// and reports a nonzero exit as an error.
type procReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	args   []string
}

func (r *procReader) Read(p []byte) (int, error) {
	return r.stdout.Read(p)
}

func (r *procReader) Close() error {
	r.stdout.Close()
	if err := r.cmd.Wait(); err != nil {
		cmdErr := &commandError{args: r.args, stderr: r.stderr.String(), err: err}
		if isNoMatch(cmdErr) {
			return fmt.Errorf("%w: %v", ErrNotExist, cmdErr)
		}
		return cmdErr
	}
	return nil
}

// commandError carries a failed gsutil invocation together with whatever
// it printed to stderr.
type commandError struct {
	args   []string
	stderr string
	err    error
}

func (e *commandError) Error() string {
	msg := fmt.Sprintf("gsutil %s: %v", strings.Join(e.args, " "), e.err)
	if s := strings.TrimSpace(e.stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *commandError) Unwrap() error {
	return e.err
}

// isNoMatch recognizes gsutil's "nothing there" failures, which it reports
// as command errors rather than empty results.
func isNoMatch(err error) bool {
	var cmdErr *commandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return strings.Contains(cmdErr.stderr, "matched no objects") ||
		strings.Contains(cmdErr.stderr, "No URLs matched")
}
