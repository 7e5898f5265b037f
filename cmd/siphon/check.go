package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veldin/siphon/internal/storage"
)

// errFirstKey stops a listing after its first object.
var errFirstKey = errors.New("first key seen")

func (a *app) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <location>",
		Short: "Verify that a location is reachable with the current credentials",
		Long: `Check connectivity to a location: report whether credentials are visible,
whether the container can be opened and accessed, and show the first object
key under the prefix. Use this to diagnose credential problems before a
long download.`,
		Example: `  siphon check gs://my-bucket/exports/`,
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validate(); err != nil {
				return err
			}
			return runCheck(cmd, args[0])
		},
	}
	return cmd
}

func runCheck(cmd *cobra.Command, location string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	loc, err := storage.ParseLocation(location)
	if err != nil {
		return exitErr(ExitInvalidArgs, err)
	}

	if loc.Scheme == "gs" {
		if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
			if _, err := os.Stat(creds); err != nil {
				fmt.Fprintf(out, "credentials: GOOGLE_APPLICATION_CREDENTIALS=%s (NOT readable: %v)\n", creds, err)
				return exitErr(ExitSourceNotAccess, fmt.Errorf("credentials file %s: %w", creds, err))
			}
			fmt.Fprintf(out, "credentials: GOOGLE_APPLICATION_CREDENTIALS=%s (ok)\n", creds)
		} else {
			fmt.Fprintln(out, "credentials: GOOGLE_APPLICATION_CREDENTIALS not set, using ambient credentials")
		}
	}

	backend, err := storage.OpenBlob(ctx, loc)
	if err != nil {
		fmt.Fprintf(out, "container:   %s (open FAILED)\n", loc.BucketURL())
		return exitErr(ExitSourceNotAccess, err)
	}
	defer backend.Close()

	ok, err := backend.IsAccessible(ctx)
	if err != nil || !ok {
		fmt.Fprintf(out, "container:   %s (NOT accessible)\n", loc.BucketURL())
		if err == nil {
			err = fmt.Errorf("container %s is not accessible", loc.BucketURL())
		}
		return exitErr(ExitSourceNotAccess, err)
	}
	fmt.Fprintf(out, "container:   %s (accessible)\n", loc.BucketURL())

	var first string
	err = backend.List(ctx, loc.Prefix, func(info storage.ObjectInfo) error {
		first = info.Key
		return errFirstKey
	})
	if err != nil && !errors.Is(err, errFirstKey) {
		fmt.Fprintf(out, "listing:     FAILED under prefix %q\n", loc.Prefix)
		return exitErr(ExitSourceNotAccess, err)
	}
	if first == "" {
		fmt.Fprintf(out, "listing:     no objects under prefix %q\n", loc.Prefix)
		return nil
	}
	fmt.Fprintf(out, "listing:     first key %q\n", first)
	return nil
}
