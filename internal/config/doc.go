// Package config loads, normalizes, and validates storyreel configuration data.
//
// It supplies repository defaults (canvas size, frame rate, subtitle style,
// mix levels), expands user paths including tilde shortcuts, reads TOML files,
// imports a working-directory .env file, and honours environment fallbacks such
// as OPENAI_API_KEY, ELEVENLABS_API_KEY and VIDEO_FPS.
//
// Components never read process-wide settings directly: callers obtain a
// Config here and pass the relevant sections down explicitly.
package config
