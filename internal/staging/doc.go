// Package staging reclaims scratch files that interrupted runs leave behind.
//
// Renders and transcriptions create storyreel-* files and directories under
// paths.temp_dir and remove them when the operation returns. A killed process
// skips that cleanup, as does a crash between writing a speed-adjusted
// narration and releasing it. CleanStale and CleanEpisodeLeftovers remove such
// leftovers once they are older than a cutoff so an active run is never
// touched.
package staging
