package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration. A missing API key is not an
// error: the service starts and reports it through the status endpoint.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateServer(&cfg.Server)
	v.validateGemini(&cfg.Gemini)
	v.validateMedia(&cfg.Media)
	v.validateAnalysis(&cfg.Analysis)
	v.validateHistory(&cfg.History)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

// Errors returns the collected validation errors.
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

func (v *Validator) addError(field string, value interface{}, msg string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: msg,
	})
}

func (v *Validator) validateLog(cfg *LogConfig) {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		v.addError("log.level", cfg.Level, "must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"auto": true, "text": true, "json": true,
	}
	if !validFormats[cfg.Format] {
		v.addError("log.format", cfg.Format, "must be one of: auto, text, json")
	}

	if cfg.File != "" && !isValidPath(cfg.File) {
		v.addError("log.file", cfg.File, "invalid file path")
	}
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		v.addError("server.port", cfg.Port, "must be between 1 and 65535")
	}
	v.validateDuration("server.shutdown_timeout", cfg.ShutdownTimeout, false)
}

func (v *Validator) validateGemini(cfg *GeminiConfig) {
	if strings.TrimSpace(cfg.Model) == "" {
		v.addError("gemini.model", cfg.Model, "required")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		v.addError("gemini.temperature", cfg.Temperature, "must be between 0 and 2")
	}
	if cfg.SynthesisTemperature < 0 || cfg.SynthesisTemperature > 2 {
		v.addError("gemini.synthesis_temperature", cfg.SynthesisTemperature, "must be between 0 and 2")
	}
	v.validateDuration("gemini.timeout", cfg.Timeout, true)
	if cfg.MaxRetries < 0 || cfg.MaxRetries > 10 {
		v.addError("gemini.max_retries", cfg.MaxRetries, "must be between 0 and 10")
	}
	if cfg.RateLimitRPM < 0 {
		v.addError("gemini.rate_limit_rpm", cfg.RateLimitRPM, "must be non-negative")
	}
}

func (v *Validator) validateMedia(cfg *MediaConfig) {
	if cfg.KeyFrames < 1 || cfg.KeyFrames > 30 {
		v.addError("media.key_frames", cfg.KeyFrames, "must be between 1 and 30")
	}
}

func (v *Validator) validateAnalysis(cfg *AnalysisConfig) {
	v.validateDuration("analysis.item_timeout", cfg.ItemTimeout, true)
	if cfg.MaxConcurrency < 0 {
		v.addError("analysis.max_concurrency", cfg.MaxConcurrency, "must be non-negative")
	}
	if cfg.MaxUploadMB < 1 {
		v.addError("analysis.max_upload_mb", cfg.MaxUploadMB, "must be at least 1")
	}
	if cfg.ConsensusShare <= 0 || cfg.ConsensusShare > 1 {
		v.addError("analysis.consensus_share", cfg.ConsensusShare, "must be in (0, 1]")
	}
}

func (v *Validator) validateHistory(cfg *HistoryConfig) {
	if !cfg.Enabled {
		return
	}
	if cfg.Path == "" {
		v.addError("history.path", cfg.Path, "required when history is enabled")
	} else if !isValidPath(cfg.Path) {
		v.addError("history.path", cfg.Path, "invalid file path")
	}
}

// validateDuration checks a duration string. Empty values are accepted when
// allowEmpty is set and mean "no limit".
func (v *Validator) validateDuration(field, value string, allowEmpty bool) {
	if value == "" {
		if !allowEmpty {
			v.addError(field, value, "required")
		}
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		v.addError(field, value, "invalid duration format")
		return
	}
	if d < 0 {
		v.addError(field, value, "must be non-negative")
	}
}

func isValidPath(path string) bool {
	dir := filepath.Dir(path)
	_, err := os.Stat(dir)
	return err == nil || os.IsNotExist(err)
}

// ValidateConfig is a convenience function that creates a validator and validates config.
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}
