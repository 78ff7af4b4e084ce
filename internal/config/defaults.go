package config

const (
	defaultEpisodesDir      = "episodes"
	defaultMusicDir         = "bg_music"
	defaultVideosDir        = "bg_videos"
	defaultStoriesFile      = "data/stories/100_stories.txt"
	defaultPromptFile       = "data/prompts/script_system_prompt.txt"
	defaultStateDir         = "~/.local/share/storyreel"
	defaultLogDir           = "~/.local/share/storyreel/logs"
	defaultVideoWidth       = 1620
	defaultVideoHeight      = 2880
	defaultVideoFPS         = 64
	defaultMusicVolume      = 0.1
	defaultSpeedFactor      = 1.0
	defaultExtraDuration    = 5.0
	defaultMaxReelSegments  = 1000
	defaultVideoCodec       = "libx264"
	defaultAudioCodec       = "aac"
	defaultPreset           = "medium"
	defaultCRF              = 18
	defaultSubtitleFontSize = 110
	defaultSubtitleColor    = "white"
	defaultSubtitleFont     = "Arial-Bold"
	defaultSubtitleOutline  = "black"
	defaultSubtitleStroke   = 2.0
	defaultSubtitleOffsetY  = 862.5
	defaultWhisperModel     = "base"
	defaultWhisperDevice    = "cpu"
	defaultLLMBaseURL       = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel         = "gpt-4o"
	defaultLLMTemperature   = 1.0
	defaultLLMTimeout       = 120
	defaultSpeechBaseURL    = "https://api.elevenlabs.io"
	defaultSpeechVoiceID    = "TxGEqnHWrfWFTfGW9XjX"
	defaultSpeechModelID    = "eleven_multilingual_v2"
	defaultSpeechTimeout    = 300
	defaultNtfyTimeout      = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			EpisodesDir: defaultEpisodesDir,
			MusicDir:    defaultMusicDir,
			VideosDir:   defaultVideosDir,
			StoriesFile: defaultStoriesFile,
			PromptFile:  defaultPromptFile,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		Video: Video{
			Width:           defaultVideoWidth,
			Height:          defaultVideoHeight,
			FPS:             defaultVideoFPS,
			MusicVolume:     defaultMusicVolume,
			SpeedFactor:     defaultSpeedFactor,
			ExtraDuration:   defaultExtraDuration,
			MaxReelSegments: defaultMaxReelSegments,
			VideoCodec:      defaultVideoCodec,
			AudioCodec:      defaultAudioCodec,
			Preset:          defaultPreset,
			CRF:             defaultCRF,
		},
		Subtitles: Subtitles{
			FontSize:     defaultSubtitleFontSize,
			Color:        defaultSubtitleColor,
			Font:         defaultSubtitleFont,
			OutlineColor: defaultSubtitleOutline,
			OutlineWidth: defaultSubtitleStroke,
			OffsetY:      defaultSubtitleOffsetY,
		},
		Transcription: Transcription{
			Model:  defaultWhisperModel,
			Device: defaultWhisperDevice,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Temperature:    defaultLLMTemperature,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Speech: Speech{
			BaseURL:         defaultSpeechBaseURL,
			VoiceID:         defaultSpeechVoiceID,
			ModelID:         defaultSpeechModelID,
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.0,
			SpeakerBoost:    false,
			TimeoutSeconds:  defaultSpeechTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
