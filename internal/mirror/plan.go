package mirror

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/veldin/siphon/internal/logging"
	"github.com/veldin/siphon/internal/storage"
	"github.com/veldin/siphon/pkg/batch"
)

// Plan is the outcome of the listing and grouping phase: what would be
// transferred, and how it is grouped.
type Plan struct {
	Objects []batch.Object
	Groups  []batch.Group
	// Bytes is the byte total across all groups. Objects whose size was
	// not resolved (per-object mode) count as zero.
	Bytes int64
}

// LargestGroup returns the byte size of the biggest group.
func (p *Plan) LargestGroup() int64 {
	var largest int64
	for _, g := range p.Groups {
		if g.Size > largest {
			largest = g.Size
		}
	}
	return largest
}

// BuildPlan lists the objects under prefix, resolves any sizes the
// listing did not provide, and packs them into groups. A listing or size
// resolution failure aborts the whole plan; nothing is transferred for a
// prefix that cannot be fully described.
func BuildPlan(ctx context.Context, backend storage.Backend, prefix string, opts Options) (*Plan, error) {
	opts = opts.withDefaults()

	var objects []batch.Object
	err := backend.List(ctx, prefix, func(info storage.ObjectInfo) error {
		objects = append(objects, batch.Object{Key: info.Key, Size: info.Size})
		if len(objects)%1000 == 0 {
			logging.Log.Debug().Str("prefix", prefix).Int("objects", len(objects)).Msg("listing")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing failed: %w", err)
	}
	logging.Log.Info().Str("prefix", prefix).Int("objects", len(objects)).Msg("listing complete")

	var groups []batch.Group
	if opts.PerObject {
		// Per-object dispatch needs no sizes; whatever the listing gave
		// us is kept for display.
		groups = batch.Singletons(objects)
	} else {
		if err := resolveSizes(ctx, backend, objects, opts.Workers); err != nil {
			return nil, fmt.Errorf("size resolution failed: %w", err)
		}
		groups = batch.Pack(objects, opts.MaxGroupSize)
	}

	_, bytes := batch.Total(groups)
	logging.Log.Info().Int("groups", len(groups)).Int64("bytes", bytes).Msg("grouping complete")
	return &Plan{Objects: objects, Groups: groups, Bytes: bytes}, nil
}

// resolveSizes stats every object the listing could not size, with at
// most workers calls in flight. Object order is never changed; the first
// failure cancels the rest and aborts the plan.
func resolveSizes(ctx context.Context, backend storage.Backend, objects []batch.Object, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range objects {
		if objects[i].Size >= 0 {
			continue
		}
		g.Go(func() error {
			info, err := backend.Stat(ctx, objects[i].Key)
			if err != nil {
				return err
			}
			objects[i].Size = info.Size
			return nil
		})
	}
	return g.Wait()
}

// Download is the one-call form: plan, then run. The returned error
// covers the planning phase only; transfer failures are in the Result.
func Download(ctx context.Context, backend storage.Backend, prefix, destRoot string, opts Options) (*Result, error) {
	plan, err := BuildPlan(ctx, backend, prefix, opts)
	if err != nil {
		return nil, err
	}
	return Run(ctx, backend, plan.Groups, destRoot, opts), nil
}
