package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ResolverRapidAPI = "rapidapi"
	ResolverYtDlp    = "ytdlp"
)

// Config is read once at startup and passed to every component.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	Resolver        string
	RapidAPIKey     string
	RapidAPIHost    string
	RapidAPIBaseURL string
	YtDlpPath       string
	ResolverTimeout time.Duration

	OpenAIKey         string
	OpenAIBaseURL     string
	WhisperModel      string
	TranscribeTimeout time.Duration

	FFmpegPath   string
	AudioCodec   string
	AudioBitrate string

	ScratchDir      string
	SourceDomain    string
	FetchTimeout    time.Duration
	PipelineTimeout time.Duration

	BatchConcurrency int
	BatchRPS         float64
}

// Load builds a Config from the process environment. API keys may be empty;
// components report that as a configuration error when they are called.
func Load() Config {
	host := envOr("RAPIDAPI_HOST", "instagram-downloader-download-instagram-stories-videos4.p.rapidapi.com")
	return Config{
		Port:        envOr("PORT", "3000"),
		Environment: envOr("ENVIRONMENT", "local"),
		LogLevel:    envOr("LOG_LEVEL", "info"),

		Resolver:        strings.ToLower(envOr("RESOLVER", ResolverRapidAPI)),
		RapidAPIKey:     os.Getenv("RAPIDAPI_KEY"),
		RapidAPIHost:    host,
		RapidAPIBaseURL: envOr("RAPIDAPI_BASE_URL", "https://"+host),
		YtDlpPath:       envOr("YTDLP_PATH", "yt-dlp"),
		ResolverTimeout: envDuration("RESOLVER_TIMEOUT", 60*time.Second),

		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		WhisperModel:      envOr("WHISPER_MODEL", "whisper-1"),
		TranscribeTimeout: envDuration("TRANSCRIBE_TIMEOUT", 5*time.Minute),

		FFmpegPath:   envOr("FFMPEG_PATH", "ffmpeg"),
		AudioCodec:   envOr("AUDIO_CODEC", "libmp3lame"),
		AudioBitrate: envOr("AUDIO_BITRATE", "128k"),

		ScratchDir:      envOr("SCRATCH_DIR", os.TempDir()),
		SourceDomain:    envOr("SOURCE_DOMAIN", "instagram.com"),
		FetchTimeout:    envDuration("FETCH_TIMEOUT", 30*time.Second),
		PipelineTimeout: envDuration("PIPELINE_TIMEOUT", 10*time.Minute),

		BatchConcurrency: envInt("BATCH_CONCURRENCY", 2),
		BatchRPS:         envFloat("BATCH_RPS", 1),
	}
}

// KeyStatus reports "SET" or "NOT SET" for startup diagnostics.
func KeyStatus(v string) string {
	if v == "" {
		return "NOT SET"
	}
	return "SET"
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envFloat(k string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// envDuration accepts Go durations ("45s") or a plain number of seconds.
func envDuration(k string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
