package agents

import (
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// Collaborators are the feature extractors the media analyzers depend on.
type Collaborators struct {
	AudioInfo core.FeatureExtractor
	VideoInfo core.FeatureExtractor
	Frames    core.FrameExtractor
	Speech    core.Transcriber
	Documents core.TextExtractor
}

// Options tune the analyzers built by All.
type Options struct {
	KeyFrames     int
	MaxImageBytes int64
}

// All builds one analyzer per supported content type. Analyzers whose
// collaborators are missing are left out.
func All(deps Deps, c Collaborators, opts Options) []core.Analyzer {
	list := []core.Analyzer{
		NewTextAnalyzer(deps),
		NewImageAnalyzer(deps, opts.MaxImageBytes),
	}
	if c.Documents != nil {
		list = append(list, NewDocumentAnalyzer(deps, c.Documents))
	}
	if c.AudioInfo != nil && c.Speech != nil {
		list = append(list, NewAudioAnalyzer(deps, c.AudioInfo, c.Speech))
	}
	if c.VideoInfo != nil && c.Frames != nil {
		list = append(list, NewVideoAnalyzer(deps, c.VideoInfo, c.Frames, opts.KeyFrames))
	}
	return list
}
