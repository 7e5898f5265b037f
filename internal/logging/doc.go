// Package logging holds the process-wide logger.
//
// Commands configure the level once at startup; everything else writes
// through the shared instance. Output goes to stderr so stdout stays free
// for progress and plan listings.
//
// # Usage
//
//	logging.SetLevel("debug")
//	logging.Log.Info().Str("bucket", bucket).Msg("listing objects")
package logging
