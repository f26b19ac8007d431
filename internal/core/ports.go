package core

import (
	"context"
)

// =============================================================================
// Model Port
// =============================================================================

// Media is an inline binary payload sent alongside a prompt.
type Media struct {
	MIMEType string
	Data     []byte
}

// ModelRequest is a single prompt sent to a generative model.
type ModelRequest struct {
	Prompt string
	System string
	Media  []Media

	// Temperature overrides the client default when non-nil.
	Temperature *float32

	// JSON asks the model for an application/json response.
	JSON bool
}

// ModelClient sends one request and returns the raw text answer.
type ModelClient interface {
	Complete(ctx context.Context, req ModelRequest) (string, error)
}

// =============================================================================
// Feature Extraction Ports
// =============================================================================

// FeatureExtractor returns technical metadata for a media file.
type FeatureExtractor interface {
	Extract(ctx context.Context, path string) (map[string]any, error)
}

// FrameExtractor returns up to n evenly spaced still frames of a video,
// encoded as images.
type FrameExtractor interface {
	ExtractFrames(ctx context.Context, path string, n int) ([]Media, error)
}

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// TextExtractor pulls plain text out of a document.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Pinger is implemented by collaborators that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// =============================================================================
// Analysis Port
// =============================================================================

// Input is one submission. Text carries inline content; Path points at a file
// on disk. Preset selects a predefined criteria set where an analyzer has one.
type Input struct {
	Text   string
	Path   string
	Preset string
}

// Item is one entry of a batch.
type Item struct {
	Input Input
	Type  ContentType
	Name  string
}

// Analyzer judges one modality. Analyze never returns an error: failures are
// reported through Verdict.Error.
type Analyzer interface {
	Name() string
	ContentType() ContentType
	Analyze(ctx context.Context, in Input, criteria string) Verdict
}
