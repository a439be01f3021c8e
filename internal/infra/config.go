package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	StorageBasePath string
	StorageBaseURL  string
	WorkDir         string

	GeoIPDBPath     string
	DefaultLanguage string

	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string

	FalAPIKey  string
	FalModel   string
	FalBaseURL string

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	ElevenLabsVoiceID string

	FFmpegPath  string
	FFprobePath string

	PlannerRetries      int
	UnitWorkers         int
	GlobalGenerationCap int

	LLMTimeout   time.Duration
	ImageTimeout time.Duration
	TTSTimeout   time.Duration
	JobTimeout   time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		StorageBasePath: getEnv("STORAGE_BASE_PATH", "./storage"),
		StorageBaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		WorkDir:         getEnv("WORK_DIR", os.TempDir()),

		GeoIPDBPath:     os.Getenv("GEOIP_DB_PATH"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),

		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "x-ai/grok-4.1-fast"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),

		FalAPIKey:  os.Getenv("FAL_KEY"),
		FalModel:   getEnv("FAL_MODEL", "fal-ai/nano-banana"),
		FalBaseURL: getEnv("FAL_BASE_URL", "https://fal.run"),

		ElevenLabsAPIKey:  os.Getenv("ELEVEN_LABS_API_KEY"),
		ElevenLabsBaseURL: getEnv("ELEVEN_LABS_BASE_URL", "https://api.elevenlabs.io/v1"),
		ElevenLabsVoiceID: getEnv("ELEVEN_LABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),

		FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),

		PlannerRetries:      getEnvInt("PLANNER_RETRIES", 2),
		UnitWorkers:         getEnvInt("UNIT_WORKERS", 3),
		GlobalGenerationCap: getEnvInt("GLOBAL_GENERATION_CAP", 8),

		LLMTimeout:   time.Second * time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)),
		ImageTimeout: time.Second * time.Duration(getEnvInt("IMAGE_TIMEOUT_SECONDS", 60)),
		TTSTimeout:   time.Second * time.Duration(getEnvInt("TTS_TIMEOUT_SECONDS", 30)),
		JobTimeout:   time.Minute * time.Duration(getEnvInt("JOB_TIMEOUT_MINUTES", 15)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   getEnvList("ALLOWED_ORIGINS", nil),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if cfg.FalAPIKey == "" {
		return nil, fmt.Errorf("FAL_KEY is required")
	}
	if cfg.ElevenLabsAPIKey == "" {
		return nil, fmt.Errorf("ELEVEN_LABS_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
