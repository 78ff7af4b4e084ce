// Package history persists a record of every episode run in SQLite.
//
// Each ProcessEpisode call produces one episode_runs row (run id, episode,
// outcome, failing stage and error classification) plus one stage_runs row
// per script/audio/video stage, including skipped ones. The CLI "history"
// command reads it back. The database is advisory: the pipeline keeps going
// when it cannot be written.
package history
