package salvage

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// Keys the model is asked to produce.
const (
	KeyScore        = "pontuacao"
	KeyMaxScore     = "pontuacao_maxima"
	KeyFeedback     = "feedback"
	KeyStrengths    = "pontos_fortes"
	KeyImprovements = "pontos_melhoria"
	KeySummary      = "veredicto"

	KeyFinalScore            = "pontuacao_final"
	KeyOverallSummary        = "veredicto_geral"
	KeyConsensusStrengths    = "pontos_fortes_consenso"
	KeyConsensusImprovements = "pontos_melhoria_consenso"
	KeyRecommendation        = "recomendacao"
)

// English spellings some models answer with despite the prompt.
var aliases = map[string]string{
	"score":                  KeyScore,
	"max_score":              KeyMaxScore,
	"strengths":              KeyStrengths,
	"improvements":           KeyImprovements,
	"verdict":                KeySummary,
	"summary":                KeySummary,
	"final_score":            KeyFinalScore,
	"overall_verdict":        KeyOverallSummary,
	"consensus_strengths":    KeyConsensusStrengths,
	"consensus_improvements": KeyConsensusImprovements,
	"recommendation":         KeyRecommendation,
}

type modelVerdict struct {
	Score        *float64       `mapstructure:"pontuacao"`
	MaxScore     float64        `mapstructure:"pontuacao_maxima"`
	Feedback     string         `mapstructure:"feedback"`
	Strengths    []string       `mapstructure:"pontos_fortes"`
	Improvements []string       `mapstructure:"pontos_melhoria"`
	Summary      string         `mapstructure:"veredicto"`
	Rest         map[string]any `mapstructure:",remain"`
}

type modelSynthesis struct {
	FinalScore            *float64       `mapstructure:"pontuacao_final"`
	OverallSummary        string         `mapstructure:"veredicto_geral"`
	ConsensusStrengths    []string       `mapstructure:"pontos_fortes_consenso"`
	ConsensusImprovements []string       `mapstructure:"pontos_melhoria_consenso"`
	Recommendation        string         `mapstructure:"recomendacao"`
	Rest                  map[string]any `mapstructure:",remain"`
}

// DecodeVerdict maps a salvaged record onto a Verdict. Values are coerced
// loosely: numeric strings become scores, single strings become one-element
// lists, nested objects become JSON text. Fields that cannot be coerced are
// left empty; unknown keys are kept in Extra unless the verdict owns them.
func DecodeVerdict(m map[string]any) core.Verdict {
	var mv modelVerdict
	_ = decode(normalizeKeys(m), &mv)

	v := core.Verdict{
		Score:        mv.Score,
		MaxScore:     mv.MaxScore,
		Feedback:     mv.Feedback,
		Strengths:    nonNil(mv.Strengths),
		Improvements: nonNil(mv.Improvements),
		Summary:      mv.Summary,
	}
	if v.MaxScore <= 0 {
		v.MaxScore = core.DefaultMaxScore
	}
	for k := range mv.Rest {
		if core.IsReservedKey(k) {
			delete(mv.Rest, k)
		}
	}
	if len(mv.Rest) > 0 {
		v.Extra = mv.Rest
	}
	return v
}

// DecodeSynthesis maps a salvaged record onto a SynthesisVerdict. The
// reported bool is false when the record carried no usable final score.
func DecodeSynthesis(m map[string]any) (core.SynthesisVerdict, bool) {
	var ms modelSynthesis
	_ = decode(normalizeKeys(m), &ms)

	s := core.SynthesisVerdict{
		OverallSummary:        ms.OverallSummary,
		ConsensusStrengths:    ms.ConsensusStrengths,
		ConsensusImprovements: ms.ConsensusImprovements,
		Recommendation:        ms.Recommendation,
	}
	if len(ms.Rest) > 0 {
		s.Extra = ms.Rest
	}
	if ms.FinalScore == nil {
		return s, false
	}
	s.FinalScore = *ms.FinalScore
	return s, true
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       looseHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for alias, key := range aliases {
		v, ok := out[alias]
		if !ok {
			continue
		}
		if _, taken := out[key]; !taken {
			out[key] = v
			delete(out, alias)
		}
	}
	return out
}

func looseHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.String:
		switch data.(type) {
		case map[string]any, []any:
			b, err := json.Marshal(data)
			if err != nil {
				return data, nil
			}
			return string(b), nil
		}
	case reflect.Float64:
		if s, ok := data.(string); ok {
			if f, ok := ParseScore(s); ok {
				return f, nil
			}
		}
	case reflect.Slice:
		if to.Elem().Kind() != reflect.String {
			return data, nil
		}
		items, ok := data.([]any)
		if !ok {
			return data, nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, stringify(item))
		}
		return out, nil
	}
	return data, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

// ParseScore reads scores written as text, such as "85", "85%", "8,5" or
// "85/100".
func ParseScore(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
