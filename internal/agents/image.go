package agents

import (
	"context"
	"fmt"
	"os"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/salvage"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

// ImageAgentName is reported on image verdicts.
const ImageAgentName = "ImageAnalysisAgent"

// DefaultMaxImageBytes bounds inline image payloads.
const DefaultMaxImageBytes int64 = 20 << 20

// ImageAnalyzer sends the image itself to a vision model.
type ImageAnalyzer struct {
	base
	maxBytes int64
}

// NewImageAnalyzer creates an image analyzer. maxBytes <= 0 uses
// DefaultMaxImageBytes.
func NewImageAnalyzer(deps Deps, maxBytes int64) *ImageAnalyzer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &ImageAnalyzer{
		base:     newBase(ImageAgentName, core.ContentImage, deps),
		maxBytes: maxBytes,
	}
}

// Analyze judges the image at in.Path.
func (a *ImageAnalyzer) Analyze(ctx context.Context, in core.Input, criteria string) core.Verdict {
	media, err := readMedia(in.Path, a.maxBytes)
	if err != nil {
		return a.fail(err)
	}

	prompt, err := a.deps.Prompts.RenderImageAnalysis(service.ImagePromptParams{Criteria: criteria})
	if err != nil {
		return a.fail(err)
	}

	raw, err := a.complete(ctx, prompt, media)
	if err != nil {
		return a.fail(err)
	}

	record, outcome := salvage.SalvageTiered(raw, rawFallback(raw), rawFallback(raw))
	info := map[string]any{
		"formato":    media.MIMEType,
		"tamanho_mb": float64(len(media.Data)) / (1024 * 1024),
	}
	return a.verdict(record, outcome, info)
}

// readMedia loads a file as an inline media payload.
func readMedia(path string, maxBytes int64) (core.Media, error) {
	if path == "" {
		return core.Media{}, core.ErrValidation(core.CodeEmptyInput, "nenhum arquivo informado")
	}
	st, err := os.Stat(path)
	if err != nil {
		return core.Media{}, core.ErrExtraction(core.CodeMetadataFailed, "não foi possível abrir o arquivo").WithCause(err)
	}
	if maxBytes > 0 && st.Size() > maxBytes {
		return core.Media{}, core.ErrValidation(core.CodeTooLarge,
			fmt.Sprintf("arquivo excede o limite de %d bytes", maxBytes))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Media{}, core.ErrExtraction(core.CodeMetadataFailed, "não foi possível ler o arquivo").WithCause(err)
	}
	return core.Media{MIMEType: core.MIMEType(path), Data: data}, nil
}
