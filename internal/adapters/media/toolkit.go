// Package media extracts technical metadata, key frames and document text by
// driving ffprobe, ffmpeg and pdftotext as external processes.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
)

// Config holds the tool locations. Empty paths are looked up on PATH.
type Config struct {
	FFprobePath   string
	FFmpegPath    string
	PDFToTextPath string
}

func (c Config) withDefaults() Config {
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.PDFToTextPath == "" {
		c.PDFToTextPath = "pdftotext"
	}
	return c
}

// Toolkit runs the external media tools.
type Toolkit struct {
	cfg    Config
	logger *logging.Logger
}

// New creates a toolkit.
func New(cfg Config, logger *logging.Logger) *Toolkit {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Toolkit{cfg: cfg.withDefaults(), logger: logger.With("component", "media")}
}

// Probes returns one availability check per tool, keyed by tool name.
func (t *Toolkit) Probes() map[string]core.Pinger {
	return map[string]core.Pinger{
		"ffprobe":   toolPinger(t.cfg.FFprobePath),
		"ffmpeg":    toolPinger(t.cfg.FFmpegPath),
		"pdftotext": toolPinger(t.cfg.PDFToTextPath),
	}
}

type toolPinger string

// Ping reports whether the tool can be found.
func (p toolPinger) Ping(_ context.Context) error {
	if _, err := exec.LookPath(string(p)); err != nil {
		return core.ErrExtraction(core.CodeToolMissing, fmt.Sprintf("%s not found", p)).WithCause(err)
	}
	return nil
}

// run executes tool with args and returns its stdout.
func (t *Toolkit) run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	resolved, err := exec.LookPath(tool)
	if err != nil {
		return nil, core.ErrExtraction(core.CodeToolMissing, fmt.Sprintf("%s not found", tool)).WithCause(err)
	}

	var stdout, stderr bytes.Buffer
	// #nosec G204 -- tool path comes from config and is resolved via LookPath
	cmd := exec.CommandContext(ctx, resolved, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			t.logger.Debug("tool exited with error", "tool", tool, "exit_code", exitErr.ExitCode(), "stderr", msg)
		}
		return nil, fmt.Errorf("%s: %s", tool, lastLine(msg))
	}
	return stdout.Bytes(), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
