package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldin/siphon/internal/mirror"
	"github.com/veldin/siphon/internal/progress"
	"github.com/veldin/siphon/internal/storage"
)

func (a *app) newPlanCmd() *cobra.Command {
	var (
		workers      int
		maxGroupSize string
		perObject    bool
		backend      string
		showGroups   bool
	)

	cmd := &cobra.Command{
		Use:   "plan <location>",
		Short: "List, size, and group the objects under a location without downloading",
		Long: `Run the listing and grouping phase only and print what a download would
transfer: object count, byte total, group count, and the largest group.
Nothing is written locally.`,
		Example: `  siphon plan gs://my-bucket/exports/2024/
  siphon plan gs://my-bucket/tiles --max-group-size 250MB --groups`,
		Args: exactArgs(1),
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
			if err := a.validate(); err != nil {
				return err
			}
			return a.runPlan(cmd, args[0], showGroups)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 16, "Number of parallel size-resolution workers")
	cmd.Flags().StringVar(&maxGroupSize, "max-group-size", "100MB", "Byte budget per transfer group (e.g. 100MB, 2GB)")
	cmd.Flags().BoolVar(&perObject, "per-object", false, "One transfer task per object, skipping size resolution")
	cmd.Flags().StringVar(&backend, "backend", storage.BackendAuto, "Storage backend: auto or gsutil")
	cmd.Flags().BoolVar(&showGroups, "groups", false, "Print every group with its size and object count")

	return cmd
}

func (a *app) runPlan(cmd *cobra.Command, location string, showGroups bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

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

	fmt.Fprintf(out, "Source:  %s\n", loc)
	fmt.Fprintf(out, "Objects: %d (%s)\n", len(plan.Objects), progress.FormatBytes(plan.Bytes))
	if a.cfg.PerObject {
		fmt.Fprintf(out, "Groups:  %d (per-object mode)\n", len(plan.Groups))
	} else {
		fmt.Fprintf(out, "Groups:  %d (budget %s, largest %s)\n",
			len(plan.Groups),
			progress.FormatBytes(a.cfg.MaxGroupSize),
			progress.FormatBytes(plan.LargestGroup()))
	}
	fmt.Fprintf(out, "Workers: %d\n", a.cfg.Workers)

	if showGroups {
		for i, g := range plan.Groups {
			fmt.Fprintf(out, "  group %d: %d objects, %s\n", i, g.Len(), progress.FormatBytes(g.Size))
		}
	}
	return nil
}
