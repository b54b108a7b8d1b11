package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Paths      PathsConfig      `yaml:"paths"`
	Media      MediaConfig      `yaml:"media"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Limits     LimitsConfig     `yaml:"limits"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Credentials come from the environment only, never from the file.
	OpenAIAPIKey string `yaml:"-"`
	GeminiAPIKey string `yaml:"-"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type PathsConfig struct {
	WorkDir  string `yaml:"work_dir"`
	WatchDir string `yaml:"watch_dir"`
}

type MediaConfig struct {
	MaxPayloadBytes   int64  `yaml:"max_payload_bytes"`
	MaxSegmentSeconds int    `yaml:"max_segment_seconds"`
	MaxSegmentBytes   int64  `yaml:"max_segment_bytes"`
	Language          string `yaml:"language"`
}

type SummarizerConfig struct {
	Provider     string  `yaml:"provider"`
	WhisperModel string  `yaml:"whisper_model"`
	ChatModel    string  `yaml:"chat_model"`
	GeminiModel  string  `yaml:"gemini_model"`
	ChunkWords   int     `yaml:"chunk_words"`
	Temperature  float32 `yaml:"temperature"`
}

type LimitsConfig struct {
	MaxConcurrentJobs          int `yaml:"max_concurrent_jobs"`
	MaxConcurrentTranscription int `yaml:"max_concurrent_transcriptions"`
	CallTimeoutSeconds         int `yaml:"call_timeout_seconds"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML config at path and applies environment credentials.
// A missing file is not an error; defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to defaults
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills defaults and rejects configurations the service cannot
// start with. A missing OpenAI key is fatal: transcription always needs it.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Paths.WorkDir == "" {
		c.Paths.WorkDir = "data/work"
	}
	if c.Media.MaxPayloadBytes == 0 {
		c.Media.MaxPayloadBytes = 1 << 30
	}
	if c.Media.MaxSegmentSeconds == 0 {
		c.Media.MaxSegmentSeconds = 1390
	}
	if c.Media.MaxSegmentBytes == 0 {
		c.Media.MaxSegmentBytes = 25 << 20
	}
	if c.Media.Language == "" {
		c.Media.Language = "pt"
	}
	if c.Summarizer.Provider == "" {
		c.Summarizer.Provider = "openai"
	}
	if c.Summarizer.WhisperModel == "" {
		c.Summarizer.WhisperModel = "whisper-1"
	}
	if c.Summarizer.ChatModel == "" {
		c.Summarizer.ChatModel = "gpt-4o"
	}
	if c.Summarizer.GeminiModel == "" {
		c.Summarizer.GeminiModel = "gemini-2.5-flash"
	}
	if c.Summarizer.ChunkWords == 0 {
		c.Summarizer.ChunkWords = 2000
	}
	if c.Summarizer.Temperature == 0 {
		c.Summarizer.Temperature = 0.3
	}
	if c.Limits.MaxConcurrentJobs == 0 {
		c.Limits.MaxConcurrentJobs = 2
	}
	if c.Limits.MaxConcurrentTranscription == 0 {
		c.Limits.MaxConcurrentTranscription = 2
	}
	if c.Limits.CallTimeoutSeconds == 0 {
		c.Limits.CallTimeoutSeconds = 600
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	switch c.Summarizer.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("summarizer.provider must be \"openai\" or \"gemini\", got %q", c.Summarizer.Provider)
	}

	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Summarizer.Provider == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when summarizer.provider is \"gemini\"")
	}

	return nil
}
