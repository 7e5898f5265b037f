// Package mirror orchestrates parallel transfers from an object store
// prefix into a local directory tree.
//
// A run has two phases. The planning phase lists the prefix, resolves any
// object sizes the listing did not provide, and packs the objects into
// size-bounded groups. The transfer phase dispatches one task per group to
// a fixed worker pool and collects every outcome.
//
// # Usage
//
//	plan, err := mirror.BuildPlan(ctx, backend, "exports/", opts)
//	result := mirror.Run(ctx, backend, plan.Groups, "/data/mirror", opts)
//	if err := result.Err(); err != nil {
//	    // some groups failed; result.Failures has the details
//	}
//
// Download combines both phases for callers that do not need the plan.
//
// # Worker Pool
//
// Exactly opts.Workers goroutines consume a task channel fed in group
// order. Completion order is whatever the workers make of it. Within a
// group, objects transfer sequentially in listing order.
//
// # Failure Handling
//
// Planning failures (listing, size resolution) abort the run before any
// transfer starts. Transfer failures stay contained: the first failing
// object aborts its own group, the other workers keep going, and every
// failure is reported in the final Result. Files written before a group
// failed are left on disk.
package mirror
