// Package logs reads the JSON log file storyreel writes under
// paths.log_dir.
//
// Last and Follow handle the file mechanics (ring-buffered tail, polling
// follow that survives truncation). Parse and Filter turn JSON records into
// compact one-line summaries narrowed to an episode, run id or level.
package logs
