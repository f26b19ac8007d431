// Package agents implements one analyzer per content modality. Every
// analyzer converts its own failures into error verdicts.
package agents

import (
	"context"
	"encoding/json"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/salvage"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

// DefaultTemperature is the sampling temperature for analysis calls.
const DefaultTemperature float32 = 0.7

// Deps are the collaborators shared by every analyzer.
type Deps struct {
	Model       core.ModelClient
	Prompts     *service.PromptRenderer
	Temperature float32
	Logger      *logging.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Temperature <= 0 {
		d.Temperature = DefaultTemperature
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	return d
}

type base struct {
	name        string
	contentType core.ContentType
	deps        Deps
}

func newBase(name string, ct core.ContentType, deps Deps) base {
	deps = deps.withDefaults()
	deps.Logger = deps.Logger.WithAgent(name)
	return base{name: name, contentType: ct, deps: deps}
}

// Name returns the analyzer's agent name.
func (b *base) Name() string {
	return b.name
}

// ContentType returns the modality the analyzer handles.
func (b *base) ContentType() core.ContentType {
	return b.contentType
}

func (b *base) fail(err error) core.Verdict {
	return core.ErrorVerdict(b.contentType, b.name, err)
}

// complete asks the model for a JSON verdict.
func (b *base) complete(ctx context.Context, prompt string, media ...core.Media) (string, error) {
	temp := b.deps.Temperature
	return b.deps.Model.Complete(ctx, core.ModelRequest{
		Prompt:      prompt,
		Media:       media,
		Temperature: &temp,
		JSON:        true,
	})
}

// verdict decodes a salvaged record and stamps the analyzer identity.
func (b *base) verdict(record map[string]any, outcome salvage.Outcome, info map[string]any) core.Verdict {
	v := salvage.DecodeVerdict(record)
	v.ContentType = b.contentType
	v.AgentName = b.name
	if len(info) > 0 {
		v.TechnicalInfo = info
	}
	if outcome != salvage.Parsed {
		b.deps.Logger.Debug("model response was not valid JSON, using fallback", "outcome", outcome.String())
	}
	return v
}

// infoJSON renders technical metadata for a prompt.
func infoJSON(info map[string]any) string {
	if len(info) == 0 {
		return "{}"
	}
	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// rawFallback is the fallback for modalities without a richer default:
// a zero score and the raw response as feedback.
func rawFallback(raw string) func() map[string]any {
	return func() map[string]any {
		return map[string]any{
			salvage.KeyScore:    0,
			salvage.KeyFeedback: raw,
		}
	}
}
