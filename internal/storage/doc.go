// Package storage abstracts the object stores a mirror run can read from.
//
// A Backend provides the three operations the pipeline needs: list the keys
// under a prefix, resolve the size of a single key, and stream a key's
// content. Two implementations exist: one on gocloud.dev/blob (any
// registered driver: gs, s3, file, mem) and one that shells out to the
// gsutil CLI for environments where only gsutil credentials are set up.
//
// # Usage
//
//	loc, err := storage.ParseLocation("gs://my-bucket/exports/2024/")
//	backend, err := storage.Open(ctx, loc, storage.BackendAuto)
//	defer backend.Close()
//
//	err = backend.List(ctx, loc.Prefix, func(obj storage.ObjectInfo) error {
//	    fmt.Println(obj.Key, obj.Size)
//	    return nil
//	})
//
// # Locations
//
// A location is scheme://container/prefix. The prefix may be empty to
// address the whole container. For file:// locations the entire path is
// the container (a local directory) and the prefix is empty.
//
// # Listing Contract
//
// List visits objects in lexical key order, one call per object, and
// stops at the first visit error. Sizes are reported when the store
// returns them with the listing; a negative size means the caller has to
// Stat the key separately.
package storage
