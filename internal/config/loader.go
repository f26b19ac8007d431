package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return NewLoaderWithViper(viper.New())
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "JURADO",
		lookupEnv: os.LookupEnv,
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (JURADO_*)
// 3. Project config (.jurado.yaml in current directory)
// 4. User config (~/.config/jurado/config.yaml)
// 5. Defaults
//
// When no API key is configured, GOOGLE_API_KEY and then GEMINI_API_KEY are
// consulted.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(".jurado")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "jurado"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Gemini.APIKey == "" {
		for _, name := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"} {
			if key, ok := l.lookupEnv(name); ok && strings.TrimSpace(key) != "" {
				cfg.Gemini.APIKey = strings.TrimSpace(key)
				break
			}
		}
	}

	return &cfg, nil
}

// setDefaults configures default values.
func (l *Loader) setDefaults() {
	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	l.v.SetDefault("server.host", "0.0.0.0")
	l.v.SetDefault("server.port", 8000)
	l.v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	l.v.SetDefault("server.shutdown_timeout", "10s")

	l.v.SetDefault("gemini.api_key", "")
	l.v.SetDefault("gemini.model", "gemini-2.5-flash")
	l.v.SetDefault("gemini.temperature", 0.7)
	l.v.SetDefault("gemini.synthesis_temperature", 0.3)
	l.v.SetDefault("gemini.timeout", "2m")
	l.v.SetDefault("gemini.max_retries", 2)
	l.v.SetDefault("gemini.rate_limit_rpm", 60)

	l.v.SetDefault("media.ffprobe_path", "ffprobe")
	l.v.SetDefault("media.ffmpeg_path", "ffmpeg")
	l.v.SetDefault("media.pdftotext_path", "pdftotext")
	l.v.SetDefault("media.key_frames", 3)
	l.v.SetDefault("media.transcript_language", "pt")

	l.v.SetDefault("analysis.item_timeout", "5m")
	l.v.SetDefault("analysis.max_concurrency", 0)
	l.v.SetDefault("analysis.max_upload_mb", 50)
	l.v.SetDefault("analysis.consensus_share", 0.5)

	l.v.SetDefault("history.enabled", false)
	l.v.SetDefault("history.path", filepath.Join(".jurado", "history.db"))
}

// ConfigFile returns the config file used, if any.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}
