// Package videogen implements the video stage. It measures (and optionally
// speeds up) the narration, fills narration plus padding with looped music
// and a random background reel, renders video.mp4, derives word captions
// from that render, burns them into video_with_subs.mp4 and records the
// assets used in video_info.txt.
package videogen
