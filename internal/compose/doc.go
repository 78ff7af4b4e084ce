// Package compose turns narration audio and a pool of background assets into
// a captioned episode video.
//
// The flow per episode is:
//
//	NormalizeNarration -> SelectMusic + ComposeReel (same target duration)
//	-> MixAudio -> RenderBase -> CaptionBuilder.Build -> RenderCaptions
//	-> WriteManifest
//
// Handles returned by the selectors are lazy: they describe which files,
// offsets and gains to use, and the renderers turn them into a single
// ffmpeg filter graph. Random choices go through a Chooser so a seeded
// source reproduces the same segment manifest.
//
// Errors carry services markers: a missing narration file is ErrNotFound,
// an empty asset directory is ErrNoAssets, and encoder or filesystem
// failures are ErrIO. Nothing is retried and partial outputs are left on
// disk.
package compose
