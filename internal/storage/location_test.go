package storage

import (
	"errors"
	"testing"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw  string
		want Location
	}{
		{"gs://data-lake/exports/2024/", Location{Scheme: "gs", Bucket: "data-lake", Prefix: "exports/2024/"}},
		{"gs://data-lake/exports/2024", Location{Scheme: "gs", Bucket: "data-lake", Prefix: "exports/2024"}},
		{"gs://data-lake", Location{Scheme: "gs", Bucket: "data-lake"}},
		{"gs://data-lake/", Location{Scheme: "gs", Bucket: "data-lake"}},
		{"gs://data-lake//exports", Location{Scheme: "gs", Bucket: "data-lake", Prefix: "exports"}},
		{"s3://backups/db/weekly", Location{Scheme: "s3", Bucket: "backups", Prefix: "db/weekly"}},
		{"file:///var/spool/dumps", Location{Scheme: "file", Bucket: "/var/spool/dumps"}},
		{"mem://", Location{Scheme: "mem"}},
		{"mem://scratch/keys", Location{Scheme: "mem", Bucket: "scratch", Prefix: "keys"}},
		{
			"s3://backups?endpoint=http://localhost:9000&use_path_style=true",
			Location{Scheme: "s3", Bucket: "backups", Query: "endpoint=http://localhost:9000&use_path_style=true"},
		},
		{
			"s3://backups/db/weekly?region=us-east-1",
			Location{Scheme: "s3", Bucket: "backups", Prefix: "db/weekly", Query: "region=us-east-1"},
		},
		{"file:///var/spool/dumps?create_dir=true", Location{Scheme: "file", Bucket: "/var/spool/dumps", Query: "create_dir=true"}},
	}

	for _, tt := range tests {
		got, err := ParseLocation(tt.raw)
		if err != nil {
			t.Errorf("ParseLocation(%q): unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLocation(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestParseLocationErrors(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{"", ErrMalformedLocation},
		{"data-lake/exports", ErrMalformedLocation},
		{"://data-lake", ErrMalformedLocation},
		{"gs:/data-lake", ErrMalformedLocation},
		{"http://example.com/file", ErrUnsupportedScheme},
		{"gcs://data-lake/x", ErrUnsupportedScheme},
		{"gs://", ErrMalformedLocation},
		{"gs:///exports", ErrMalformedLocation},
		{"s3://", ErrMalformedLocation},
		{"file://", ErrMalformedLocation},
	}

	for _, tt := range tests {
		_, err := ParseLocation(tt.raw)
		if err == nil {
			t.Errorf("ParseLocation(%q): expected error, got none", tt.raw)
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("ParseLocation(%q): expected %v, got %v", tt.raw, tt.want, err)
		}
	}
}

func TestLocationString(t *testing.T) {
	for _, raw := range []string{
		"gs://data-lake/exports/2024/",
		"gs://data-lake",
		"s3://backups/db",
		"s3://backups/db?endpoint=http://localhost:9000&use_path_style=true",
		"file:///var/spool/dumps",
	} {
		loc, err := ParseLocation(raw)
		if err != nil {
			t.Fatalf("ParseLocation(%q): %v", raw, err)
		}
		again, err := ParseLocation(loc.String())
		if err != nil {
			t.Fatalf("reparse %q: %v", loc.String(), err)
		}
		if again != loc {
			t.Errorf("round trip %q: got %+v, want %+v", raw, again, loc)
		}
	}
}

func TestLocationBucketURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"gs://data-lake/exports", "gs://data-lake"},
		{"s3://backups/db", "s3://backups"},
		{"file:///var/spool/dumps", "file:///var/spool/dumps"},
		{"mem://", "mem://"},
		// Driver options stay on the bucket URL; the prefix does not.
		{
			"s3://backups/db?endpoint=http://localhost:9000&use_path_style=true",
			"s3://backups?endpoint=http://localhost:9000&use_path_style=true",
		},
	}
	for _, tt := range tests {
		loc, err := ParseLocation(tt.raw)
		if err != nil {
			t.Fatalf("ParseLocation(%q): %v", tt.raw, err)
		}
		if got := loc.BucketURL(); got != tt.want {
			t.Errorf("BucketURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
