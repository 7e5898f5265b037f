package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedLocation is returned by ParseLocation for strings that do not
// look like scheme://container/prefix.
var ErrMalformedLocation = errors.New("storage: malformed location")

// ErrUnsupportedScheme is returned by ParseLocation for schemes no backend
// can serve.
var ErrUnsupportedScheme = errors.New("storage: unsupported scheme")

// supportedSchemes are the URL schemes ParseLocation accepts. Each one has
// a gocloud driver wired into the CLI.
var supportedSchemes = []string{"gs", "s3", "file", "mem"}

// Location identifies a prefix inside an object store container.
type Location struct {
	// Scheme is the URL scheme, e.g. "gs".
	Scheme string
	// Bucket is the container name. For file locations it holds the root
	// directory path instead.
	Bucket string
	// Prefix is the key prefix within the container, without a leading
	// slash. Empty addresses the whole container.
	Prefix string
	// Query holds driver options passed through to the bucket URL
	// untouched, e.g. "endpoint=..." for S3-compatible stores. It is
	// never part of the prefix.
	Query string
}

// ParseLocation splits a location string of the form
// scheme://container/prefix?query into its parts. The prefix and query
// parts are optional. Unknown schemes, a missing scheme separator, and an
// empty container are all rejected.
func ParseLocation(raw string) (Location, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return Location{}, fmt.Errorf("%w: %q has no scheme", ErrMalformedLocation, raw)
	}
	if !schemeSupported(scheme) {
		return Location{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedScheme, scheme, strings.Join(supportedSchemes, ", "))
	}

	rest, query, _ := strings.Cut(rest, "?")
	loc := Location{Scheme: scheme, Query: query}
	switch scheme {
	case "file":
		// The whole path is the container directory.
		if rest == "" {
			return Location{}, fmt.Errorf("%w: %q has no directory", ErrMalformedLocation, raw)
		}
		loc.Bucket = rest
	case "mem":
		// In-memory buckets have no real container; keep whatever was
		// given for display purposes.
		loc.Bucket, loc.Prefix = splitBucket(rest)
	default:
		loc.Bucket, loc.Prefix = splitBucket(rest)
		if loc.Bucket == "" {
			return Location{}, fmt.Errorf("%w: %q has no container", ErrMalformedLocation, raw)
		}
	}
	return loc, nil
}

// splitBucket separates container/prefix, dropping any leading slashes from
// the prefix.
func splitBucket(rest string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, strings.TrimLeft(prefix, "/")
}

func schemeSupported(scheme string) bool {
	for _, s := range supportedSchemes {
		if s == scheme {
			return true
		}
	}
	return false
}

// BucketURL returns the container part, with any driver options, as a URL
// suitable for blob.OpenBucket.
func (l Location) BucketURL() string {
	url := l.Scheme + "://" + l.Bucket
	if l.Query != "" {
		url += "?" + l.Query
	}
	return url
}

// String reassembles the location. The result parses back to the same
// Location.
func (l Location) String() string {
	url := l.Scheme + "://" + l.Bucket
	if l.Prefix != "" {
		url += "/" + l.Prefix
	}
	if l.Query != "" {
		url += "?" + l.Query
	}
	return url
}
