package mirror

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/veldin/siphon/internal/logging"
	"github.com/veldin/siphon/internal/progress"
	"github.com/veldin/siphon/internal/storage"
	"github.com/veldin/siphon/pkg/batch"
)

// Options configures a mirror run.
type Options struct {
	// Workers is the number of parallel transfer workers.
	Workers int

	// MaxGroupSize is the byte budget for a single transfer group.
	MaxGroupSize int64

	// PerObject disables grouping and size resolution; every object
	// becomes its own transfer task.
	PerObject bool

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// withDefaults fills unset fields.
func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 16
	}
	if o.MaxGroupSize <= 0 && !o.PerObject {
		o.MaxGroupSize = 100 * 1024 * 1024
	}
	return o
}

// GroupError records one failed transfer group: which group, which object
// broke it, and why. Objects written before the failure stay on disk.
//
// Use errors.As to extract it from a Result error.
type GroupError struct {
	Group int    // group index in dispatch order
	Key   string // object that failed
	Err   error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("group %d: object %q: %v", e.Group, e.Key, e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

// Result sums up the transfer phase of a run.
type Result struct {
	Groups           int // groups dispatched
	Objects          int // objects across all groups
	CompletedGroups  int
	CompletedObjects int
	Bytes            int64 // bytes written, including partial groups
	Failures         []*GroupError
}

// Err folds all group failures into one error, nil when every group
// succeeded.
func (r *Result) Err() error {
	var merr *multierror.Error
	for _, f := range r.Failures {
		merr = multierror.Append(merr, f)
	}
	return merr.ErrorOrNil()
}

// Run transfers the groups into destRoot using a fixed pool of
// opts.Workers goroutines. Groups are dispatched in order; completion
// order is unconstrained. A failed group never stops the others: failures
// are collected and reported together in the Result, ordered by group
// index. Run returns once every dispatched group has finished.
func Run(ctx context.Context, backend storage.Backend, groups []batch.Group, destRoot string, opts Options) *Result {
	opts = opts.withDefaults()

	res := &Result{Groups: len(groups)}
	for _, g := range groups {
		res.Objects += g.Len()
	}
	if len(groups) == 0 {
		return res
	}

	type task struct {
		idx   int
		group batch.Group
	}
	type outcome struct {
		objects int
		bytes   int64
		err     *GroupError
	}

	jobs := make(chan task, opts.Workers)
	results := make(chan outcome, opts.Workers)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				objects, bytes, gerr := transferGroup(ctx, backend, job.idx, job.group, destRoot, opts.Progress)
				results <- outcome{objects: objects, bytes: bytes, err: gerr}
			}
		}()
	}

	// Feed jobs in group order. On cancellation the remaining groups are
	// simply never dispatched.
	go func() {
		defer close(jobs)
		for i, g := range groups {
			select {
			case jobs <- task{idx: i, group: g}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for out := range results {
		res.CompletedObjects += out.objects
		res.Bytes += out.bytes
		if out.err != nil {
			res.Failures = append(res.Failures, out.err)
			logging.Log.Warn().Int("group", out.err.Group).Str("object", out.err.Key).
				Err(out.err.Err).Msg("group failed")
		} else {
			res.CompletedGroups++
			logging.Log.Debug().Int("completed", res.CompletedGroups).Int("total", res.Groups).
				Msg("group completed")
		}
	}

	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].Group < res.Failures[j].Group
	})
	return res
}
