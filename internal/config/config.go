package config

import "time"

// Config holds all application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Media    MediaConfig    `mapstructure:"media"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	History  HistoryConfig  `mapstructure:"history"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// ServerConfig configures the HTTP front door.
type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
}

// GeminiConfig configures the model client.
type GeminiConfig struct {
	APIKey               string  `mapstructure:"api_key"`
	Model                string  `mapstructure:"model"`
	Temperature          float32 `mapstructure:"temperature"`
	SynthesisTemperature float32 `mapstructure:"synthesis_temperature"`
	Timeout              string  `mapstructure:"timeout"`
	MaxRetries           int     `mapstructure:"max_retries"`
	RateLimitRPM         int     `mapstructure:"rate_limit_rpm"`
}

// MediaConfig configures the external media tools.
type MediaConfig struct {
	FFprobePath        string `mapstructure:"ffprobe_path"`
	FFmpegPath         string `mapstructure:"ffmpeg_path"`
	PDFToTextPath      string `mapstructure:"pdftotext_path"`
	KeyFrames          int    `mapstructure:"key_frames"`
	TranscriptLanguage string `mapstructure:"transcript_language"`
}

// AnalysisConfig configures judging.
type AnalysisConfig struct {
	ItemTimeout    string  `mapstructure:"item_timeout"`
	MaxConcurrency int     `mapstructure:"max_concurrency"`
	MaxUploadMB    int64   `mapstructure:"max_upload_mb"`
	ConsensusShare float64 `mapstructure:"consensus_share"`
}

// HistoryConfig configures the optional judgment history.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// APIConfigured reports whether a Gemini API key is available.
func (c *Config) APIConfigured() bool {
	return c.Gemini.APIKey != ""
}

// GeminiTimeout returns the per-call model timeout.
func (c *Config) GeminiTimeout() time.Duration {
	return parseDuration(c.Gemini.Timeout)
}

// ItemTimeout returns the per-item analysis timeout.
func (c *Config) ItemTimeout() time.Duration {
	return parseDuration(c.Analysis.ItemTimeout)
}

// ShutdownTimeout returns the graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout)
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Analysis.MaxUploadMB << 20
}

// parseDuration returns zero for empty or invalid values; the validator
// reports invalid ones.
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
