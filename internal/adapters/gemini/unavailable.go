package gemini

import (
	"context"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// Unavailable stands in for the client when no API key is configured. Every
// call fails with an authentication error, so analyses report it as a
// verdict error instead of the service refusing to start.
type Unavailable struct{}

func (Unavailable) err() error {
	return core.ErrAuth("API Key do Gemini não configurada")
}

// Complete always fails.
func (u Unavailable) Complete(context.Context, core.ModelRequest) (string, error) {
	return "", u.err()
}

// Transcribe always fails.
func (u Unavailable) Transcribe(context.Context, string) (string, error) {
	return "", u.err()
}

// Ping always fails.
func (u Unavailable) Ping(context.Context) error {
	return u.err()
}
