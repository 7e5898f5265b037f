// Package progress provides progress reporting for mirror runs.
//
// This package outputs human-readable progress information to stdout,
// including completion percentage, transfer speed, and ETA when the byte
// total is known.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    TotalBytes:   totalBytes,
//	    TotalObjects: objectCount,
//	    TotalGroups:  groupCount,
//	    Workers:      16,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as work completes
//	reporter.GroupStarted()
//	reporter.ObjectCompleted(size)
//	reporter.GroupCompleted()
//
// # Output Format
//
//	[siphon] Mirroring: gs://data-lake/exports/2024/
//	[siphon] Total: 4.82 GB in 1293 objects | Groups: 50 (budget 100.00 MB) | Workers: 16
//	[siphon] Progress: 45.2% | 2.18 GB / 4.82 GB | Speed: 210.00 MB/s | ETA: 12s
//	[siphon] Groups: 22 completed | 0 failed | 16 in-progress | 12 pending
package progress
