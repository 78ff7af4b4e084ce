package whisperx

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the Whisper model size (e.g. "base", "small", "large-v3").
	Model string
	// Device is "cpu" or "cuda".
	Device string
	// Language pins the transcription language; empty lets WhisperX detect it.
	Language string
}

// WhisperX configuration constants.
const (
	DefaultModel      = "base"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	CUDAComputeType   = "float16"
	ExtractSampleRate = "16000"
)

// Command names for external tools.
const (
	UVXCommand    = "uvx"
	FFmpegCommand = "ffmpeg"
)
