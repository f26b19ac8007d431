package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/salvage"
)

// DefaultSynthesisTemperature keeps the consolidated verdict conservative.
const DefaultSynthesisTemperature float32 = 0.3

// agreementKey is the Extra key carrying the consensus score.
const agreementKey = "indice_concordancia"

// Projection is the compact view of a verdict sent to the synthesis model.
// Full feedback is left out to bound the prompt size.
type Projection struct {
	Item     int              `json:"item"`
	Name     string           `json:"nome"`
	Type     core.ContentType `json:"tipo"`
	Score    float64          `json:"pontuacao"`
	MaxScore float64          `json:"pontuacao_maxima"`
	Summary  string           `json:"veredicto"`
	Failed   bool             `json:"falhou,omitempty"`
}

// Project builds the synthesis projection of verdicts.
func Project(verdicts []core.Verdict) []Projection {
	out := make([]Projection, len(verdicts))
	for i, v := range verdicts {
		name := v.ItemName
		if name == "" {
			name = fmt.Sprintf("Item %d", i+1)
		}
		maxScore := v.MaxScore
		if maxScore <= 0 {
			maxScore = core.DefaultMaxScore
		}
		out[i] = Projection{
			Item:     i + 1,
			Name:     name,
			Type:     v.ContentType,
			Score:    v.EffectiveScore(),
			MaxScore: maxScore,
			Summary:  v.Summary,
			Failed:   v.Failed(),
		}
	}
	return out
}

// MeanScore averages effective scores; failed or unscored verdicts count as
// zero and an empty list averages to zero.
func MeanScore(verdicts []core.Verdict) float64 {
	if len(verdicts) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range verdicts {
		sum += v.EffectiveScore()
	}
	return sum / float64(len(verdicts))
}

// SynthesisEngine consolidates the verdicts of a batch with one model call.
type SynthesisEngine struct {
	model       core.ModelClient
	prompts     *PromptRenderer
	consensus   *ConsensusChecker
	temperature float32
	logger      *logging.Logger
}

// NewSynthesisEngine creates a synthesis engine.
func NewSynthesisEngine(model core.ModelClient, prompts *PromptRenderer, consensus *ConsensusChecker, logger *logging.Logger) *SynthesisEngine {
	if consensus == nil {
		consensus = NewConsensusChecker(0.5, DefaultWeights())
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SynthesisEngine{
		model:       model,
		prompts:     prompts,
		consensus:   consensus,
		temperature: DefaultSynthesisTemperature,
		logger:      logger,
	}
}

// SetTemperature overrides the sampling temperature for synthesis calls.
func (s *SynthesisEngine) SetTemperature(t float32) {
	s.temperature = t
}

// Synthesize returns the consolidated verdict. It never fails: when the
// model call cannot be made the result carries Error and the mean score.
func (s *SynthesisEngine) Synthesize(ctx context.Context, verdicts []core.Verdict, criteria string) (out core.SynthesisVerdict) {
	mean := MeanScore(verdicts)
	agreement := s.consensus.Evaluate(verdicts)

	if len(verdicts) == 0 {
		return core.SynthesisVerdict{
			FinalScore:            0,
			OverallSummary:        "Nenhum item para sintetizar",
			ConsensusStrengths:    []string{},
			ConsensusImprovements: []string{},
		}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.WithContext(ctx).Error("synthesis panicked", "panic", fmt.Sprint(r))
			out = failedSynthesis(mean, agreement, fmt.Errorf("synthesis panic: %v", r))
		}
	}()

	payload, err := json.MarshalIndent(Project(verdicts), "", "  ")
	if err != nil {
		return failedSynthesis(mean, agreement, err)
	}

	prompt, err := s.prompts.RenderSynthesis(SynthesisPromptParams{
		Analyses: string(payload),
		Criteria: criteria,
	})
	if err != nil {
		return failedSynthesis(mean, agreement, err)
	}

	temp := s.temperature
	raw, err := s.model.Complete(ctx, core.ModelRequest{
		Prompt:      prompt,
		Temperature: &temp,
		JSON:        true,
	})
	if err != nil {
		s.logger.WithContext(ctx).Warn("synthesis model call failed", "error", err)
		return failedSynthesis(mean, agreement, err)
	}

	record := salvage.Salvage(raw, map[string]any{
		salvage.KeyFinalScore:     mean,
		salvage.KeyOverallSummary: raw,
	})
	var ok bool
	out, ok = salvage.DecodeSynthesis(record)
	if !ok {
		out.FinalScore = mean
	}
	applyConsensus(&out, agreement)
	return out
}

func failedSynthesis(mean float64, agreement ConsensusResult, err error) core.SynthesisVerdict {
	out := core.SynthesisVerdict{
		FinalScore: mean,
		Error:      core.Message(err),
	}
	applyConsensus(&out, agreement)
	return out
}

// applyConsensus fills consensus lists the model left out with the items the
// individual verdicts share.
func applyConsensus(out *core.SynthesisVerdict, agreement ConsensusResult) {
	if out.ConsensusStrengths == nil {
		out.ConsensusStrengths = agreement.Strengths
	}
	if out.ConsensusImprovements == nil {
		out.ConsensusImprovements = agreement.Improvements
	}
	if agreement.Considered < 2 {
		return
	}
	if out.Extra == nil {
		out.Extra = make(map[string]any)
	}
	if _, taken := out.Extra[agreementKey]; !taken {
		out.Extra[agreementKey] = math.Round(agreement.Score*100) / 100
	}
}
