package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/adapters/gemini"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/adapters/history"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/adapters/media"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/agents"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/config"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/diagnostics"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

// app holds the wired judging pipeline shared by every command.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	judge   *service.Judge
	health  *service.HealthReporter
	history *history.Store
	metrics *service.MetricsCollector
	host    *diagnostics.HostCollector
	closers []func() error
}

// loadConfig loads and validates the configuration using the global viper,
// so bound flags take precedence.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// newLogger creates the logger described by cfg. The returned closer
// releases the log file, if any.
func newLogger(cfg *config.Config) (*logging.Logger, func() error, error) {
	var out io.Writer = os.Stderr
	closer := func() error { return nil }

	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = f, f.Close
	}

	return logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  out,
		NoColor: noColor,
	}), closer, nil
}

// newApp wires the judging pipeline. Without an API key the pipeline still
// starts; model backed analyses then fail with an authentication error.
func newApp(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	prompts, err := service.NewPromptRenderer()
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}

	var (
		model     core.ModelClient = gemini.Unavailable{}
		speech    core.Transcriber = gemini.Unavailable{}
		modelPing core.Pinger      = gemini.Unavailable{}
	)
	if cfg.APIConfigured() {
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:       cfg.Gemini.APIKey,
			Model:        cfg.Gemini.Model,
			Timeout:      cfg.GeminiTimeout(),
			MaxRetries:   cfg.Gemini.MaxRetries,
			RateLimitRPM: cfg.Gemini.RateLimitRPM,
			Language:     cfg.Media.TranscriptLanguage,
		}, prompts, logger)
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		model, speech, modelPing = client, client, client
		a.closers = append(a.closers, client.Close)
	} else {
		logger.Warn("gemini API key not configured, analyses will fail")
	}

	tk := media.New(media.Config{
		FFprobePath:   cfg.Media.FFprobePath,
		FFmpegPath:    cfg.Media.FFmpegPath,
		PDFToTextPath: cfg.Media.PDFToTextPath,
	}, logger)

	analyzers := agents.All(agents.Deps{
		Model:       model,
		Prompts:     prompts,
		Temperature: cfg.Gemini.Temperature,
		Logger:      logger,
	}, agents.Collaborators{
		AudioInfo: tk.Audio(),
		VideoInfo: tk.Video(),
		Frames:    tk,
		Speech:    speech,
		Documents: tk,
	}, agents.Options{KeyFrames: cfg.Media.KeyFrames})

	dispatcher := service.NewDispatcher(logger, analyzers...)
	a.metrics = service.NewMetricsCollector()
	dispatcher.SetMetrics(a.metrics)
	fanout := service.NewFanOut(dispatcher,
		service.WithItemTimeout(cfg.ItemTimeout()),
		service.WithMaxConcurrency(cfg.Analysis.MaxConcurrency),
		service.WithFanOutLogger(logger),
	)
	synthesis := service.NewSynthesisEngine(model, prompts,
		service.NewConsensusChecker(cfg.Analysis.ConsensusShare, service.DefaultWeights()), logger)
	if cfg.Gemini.SynthesisTemperature > 0 {
		synthesis.SetTemperature(cfg.Gemini.SynthesisTemperature)
	}

	judgeOpts := []service.JudgeOption{service.WithJudgeLogger(logger), service.WithMetrics(a.metrics)}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("opening history: %w", err)
		}
		a.history = store
		a.closers = append(a.closers, store.Close)
		judgeOpts = append(judgeOpts, service.WithRecorder(store))
	}
	a.judge = service.NewJudge(dispatcher, fanout, synthesis, judgeOpts...)

	a.health = service.NewHealthReporter(dispatcher, cfg.APIConfigured())
	a.health.AddProbe("gemini", modelPing)
	for name, p := range tk.Probes() {
		a.health.AddProbe(name, p)
	}
	if a.history != nil {
		a.health.AddProbe("history", a.history)
	}
	a.host = diagnostics.NewHostCollector(os.TempDir())
	a.health.AddProbe("spool_disk", diagnostics.DiskProbe{
		Path:      os.TempDir(),
		MinFreeMB: uint64(cfg.MaxUploadBytes() >> 20),
	})
	a.health.AddProbe("memory", diagnostics.MemoryProbe{MinAvailableMB: minAvailableMemoryMB})

	return a, nil
}

// minAvailableMemoryMB is the headroom needed to decode an inline image.
const minAvailableMemoryMB = 64

// Close releases every resource the app opened, newest first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// setup loads the configuration and wires the app. The returned cleanup
// closes the app and the log file.
func setup(ctx context.Context) (*app, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing resources", "error", err)
		}
		_ = closeLog()
	}
	return a, cleanup, nil
}

// itemsFromArgs turns command line paths into batch items. Every path must
// exist; the content type is resolved later from the extension.
func itemsFromArgs(args []string) ([]core.Item, error) {
	items := make([]core.Item, 0, len(args))
	for _, p := range args {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		items = append(items, core.Item{
			Input: core.Input{Path: p},
			Name:  filepath.Base(p),
		})
	}
	return items, nil
}
