// Package episode describes the on-disk layout of a single episode and
// guards it against concurrent writers.
//
// Episode N lives in <episodes_dir>/N and accumulates, in order:
// script.txt, audio.mp3, video.mp4, video_with_subs.mp4 and video_info.txt.
// A speed-adjusted narration (script_temp.mp3) may exist transiently while
// the video stage runs.
package episode
