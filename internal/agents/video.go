package agents

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/salvage"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

// VideoAgentName is reported on video verdicts.
const VideoAgentName = "VideoAnalysisAgent"

// DefaultKeyFrames is the number of frames described per video.
const DefaultKeyFrames = 3

// VideoAnalyzer judges a video from descriptions of its key frames and its
// technical metadata.
type VideoAnalyzer struct {
	base
	info      core.FeatureExtractor
	frames    core.FrameExtractor
	numFrames int
}

// NewVideoAnalyzer creates a video analyzer. numFrames <= 0 uses
// DefaultKeyFrames.
func NewVideoAnalyzer(deps Deps, info core.FeatureExtractor, frames core.FrameExtractor, numFrames int) *VideoAnalyzer {
	if numFrames <= 0 {
		numFrames = DefaultKeyFrames
	}
	return &VideoAnalyzer{
		base:      newBase(VideoAgentName, core.ContentVideo, deps),
		info:      info,
		frames:    frames,
		numFrames: numFrames,
	}
}

// Analyze judges the video at in.Path. An unreadable file stops the analysis
// before any frame is extracted or any model is called.
func (a *VideoAnalyzer) Analyze(ctx context.Context, in core.Input, criteria string) core.Verdict {
	if in.Path == "" {
		return a.fail(core.ErrValidation(core.CodeEmptyInput, "nenhum arquivo de vídeo informado"))
	}

	info, err := a.info.Extract(ctx, in.Path)
	if err != nil {
		return a.fail(core.ErrExtraction(core.CodeMetadataFailed, "Erro ao extrair informações do vídeo").WithCause(err))
	}

	frames, err := a.frames.ExtractFrames(ctx, in.Path, a.numFrames)
	if err != nil {
		a.deps.Logger.Warn("frame extraction failed", "path", in.Path, "error", err)
		frames = nil
	}

	descriptions := a.describeFrames(ctx, frames)

	prompt, err := a.deps.Prompts.RenderVideoAnalysis(service.VideoPromptParams{
		Frames:   descriptions,
		Info:     infoJSON(info),
		Criteria: criteria,
	})
	if err != nil {
		return a.fail(err)
	}

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return a.fail(err)
	}

	record, outcome := salvage.SalvageTiered(raw, rawFallback(raw), rawFallback(raw))
	return a.verdict(record, outcome, info)
}

// describeFrames asks the vision model about each frame concurrently. A
// frame that cannot be described keeps its slot with the error text.
func (a *VideoAnalyzer) describeFrames(ctx context.Context, frames []core.Media) []string {
	out := make([]string, len(frames))
	if len(frames) == 0 {
		return out
	}

	prompt, err := a.deps.Prompts.RenderFrameDescription()
	if err != nil {
		for i := range out {
			out[i] = frameError(i+1, err)
		}
		return out
	}

	var g errgroup.Group
	for i, frame := range frames {
		g.Go(func() error {
			temp := a.deps.Temperature
			text, err := a.deps.Model.Complete(ctx, core.ModelRequest{
				Prompt:      prompt,
				Media:       []core.Media{frame},
				Temperature: &temp,
			})
			if err != nil {
				out[i] = frameError(i+1, err)
				return nil
			}
			out[i] = fmt.Sprintf("Frame %d: %s", i+1, text)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func frameError(n int, err error) string {
	return fmt.Sprintf("Frame %d: Erro na análise - %s", n, core.Message(err))
}
