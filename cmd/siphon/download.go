package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veldin/siphon/internal/logging"
	"github.com/veldin/siphon/internal/mirror"
	"github.com/veldin/siphon/internal/progress"
	"github.com/veldin/siphon/internal/storage"
)

func (a *app) newDownloadCmd() *cobra.Command {
	var (
		workers      int
		maxGroupSize string
		perObject    bool
		backend      string
		showProgress bool
	)

	cmd := &cobra.Command{
		Use:   "download <location> <dest>",
		Short: "Mirror every object under a location into a local directory",
		Long: `Download all objects under <location> to <dest>, preserving each object's
path relative to its container. Objects are listed, sized, packed into
groups within the byte budget, and the groups are transferred by a fixed
worker pool. Failed groups are reported at the end; they never stop the
other groups.`,
		Example: `  siphon download gs://my-bucket/exports/2024/ /data/exports
  siphon download gs://my-bucket/tiles /data/tiles --max-group-size 250MB --workers 32
  siphon download gs://my-bucket/archives /data --per-object
  siphon download gs://my-bucket/exports /data --backend gsutil`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("workers") {
				a.cfg.Workers = workers
			}
			if cmd.Flags().Changed("max-group-size") {
				size, err := progress.ParseBytes(maxGroupSize)
				if err != nil {
					return exitErr(ExitInvalidArgs, fmt.Errorf("parse --max-group-size: %w", err))
				}
				a.cfg.MaxGroupSize = size
			}
			if cmd.Flags().Changed("per-object") {
				a.cfg.PerObject = perObject
			}
			if cmd.Flags().Changed("backend") {
				a.cfg.Backend = backend
			}
			if cmd.Flags().Changed("progress") {
				a.cfg.Progress = showProgress
			}
			if err := a.validate(); err != nil {
				return err
			}
			return a.runDownload(cmd, args[0], args[1])
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 16, "Number of parallel transfer workers")
	cmd.Flags().StringVar(&maxGroupSize, "max-group-size", "100MB", "Byte budget per transfer group (e.g. 100MB, 2GB)")
	cmd.Flags().BoolVar(&perObject, "per-object", false, "One transfer task per object, skipping size resolution")
	cmd.Flags().StringVar(&backend, "backend", storage.BackendAuto, "Storage backend: auto or gsutil")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Show live transfer progress")

	return cmd
}

func (a *app) runDownload(cmd *cobra.Command, location, dest string) error {
	ctx := cmd.Context()

	loc, err := storage.ParseLocation(location)
	if err != nil {
		return exitErr(ExitInvalidArgs, err)
	}
	if a.cfg.Backend == storage.BackendGsutil && loc.Scheme != "gs" {
		return exitErr(ExitInvalidArgs,
			fmt.Errorf("backend gsutil requires a gs:// location, got %s", location))
	}

	backend, err := storage.Open(ctx, loc, a.cfg.Backend)
	if err != nil {
		return exitErr(ExitSourceNotAccess, err)
	}
	defer backend.Close()

	opts := mirror.Options{
		Workers:      a.cfg.Workers,
		MaxGroupSize: a.cfg.MaxGroupSize,
		PerObject:    a.cfg.PerObject,
	}

	plan, err := mirror.BuildPlan(ctx, backend, loc.Prefix, opts)
	if err != nil {
		return exitErr(ExitSourceNotAccess, fmt.Errorf("%s: %w", loc, err))
	}
	if len(plan.Groups) == 0 {
		fmt.Fprintf(os.Stderr, "[siphon] No objects under %s, nothing to do\n", loc)
		return nil
	}

	var reporter *progress.Reporter
	if a.cfg.Progress {
		reporter = progress.NewReporter(progress.Options{
			TotalBytes:   plan.Bytes,
			TotalObjects: len(plan.Objects),
			TotalGroups:  len(plan.Groups),
			GroupSize:    a.cfg.MaxGroupSize,
			Workers:      a.cfg.Workers,
			Source:       loc.String(),
		})
		reporter.Start()
		opts.Progress = reporter
	}

	res := mirror.Run(ctx, backend, plan.Groups, dest, opts)
	if reporter != nil {
		reporter.Stop()
	}

	logging.Log.Info().
		Int("groups", res.Groups).
		Int("completed", res.CompletedGroups).
		Int("failed", len(res.Failures)).
		Int("objects", res.CompletedObjects).
		Str("bytes", progress.FormatBytes(res.Bytes)).
		Msg("run finished")

	if len(res.Failures) > 0 {
		fmt.Fprintf(os.Stderr, "[siphon] %d of %d groups failed:\n", len(res.Failures), res.Groups)
		for _, f := range res.Failures {
			fmt.Fprintf(os.Stderr, "  group %d: object %q: %v\n", f.Group, f.Key, f.Err)
		}
		return exitErr(ExitPartialFailure, res.Err())
	}
	if err := ctx.Err(); err != nil {
		return exitErr(ExitGeneralError, fmt.Errorf("run interrupted: %w", err))
	}

	fmt.Fprintf(os.Stderr, "[siphon] Downloaded %d objects (%s) in %d groups to %s\n",
		res.CompletedObjects, progress.FormatBytes(res.Bytes), res.CompletedGroups, dest)
	return nil
}
