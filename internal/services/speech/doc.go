// Package speech synthesizes narration audio through an ElevenLabs-compatible
// text-to-speech API.
//
// The client posts the script text, model id and voice settings to
// {base_url}/v1/text-to-speech/{voice_id}/stream and copies the MP3 stream to
// the caller's writer. Non-OK responses surface as *StatusError and match
// services.ErrUpstream. Requests are never retried.
package speech
