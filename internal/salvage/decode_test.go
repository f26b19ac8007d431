package salvage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

func TestDecodeVerdict_WellFormed(t *testing.T) {
	v := DecodeVerdict(map[string]any{
		"pontuacao":         float64(82),
		"pontuacao_maxima":  float64(25),
		"feedback":          "Texto claro",
		"pontos_fortes":     []any{"clareza", "ritmo"},
		"pontos_melhoria":   []any{"revisão"},
		"veredicto":         "Aprovado",
		"qualidade_tecnica": "alta",
	})

	require.NotNil(t, v.Score)
	assert.Equal(t, 82.0, *v.Score)
	assert.Equal(t, 25.0, v.MaxScore)
	assert.Equal(t, "Texto claro", v.Feedback)
	assert.Equal(t, []string{"clareza", "ritmo"}, v.Strengths)
	assert.Equal(t, []string{"revisão"}, v.Improvements)
	assert.Equal(t, "Aprovado", v.Summary)
	assert.Equal(t, map[string]any{"qualidade_tecnica": "alta"}, v.Extra)
}

func TestDecodeVerdict_LooseTypes(t *testing.T) {
	v := DecodeVerdict(map[string]any{
		"pontuacao":       "85/100",
		"feedback":        map[string]any{"geral": "bom"},
		"pontos_fortes":   "apenas um",
		"pontos_melhoria": []any{map[string]any{"item": "x"}, float64(3)},
	})

	require.NotNil(t, v.Score)
	assert.Equal(t, 85.0, *v.Score)
	assert.Equal(t, core.DefaultMaxScore, v.MaxScore)
	assert.JSONEq(t, `{"geral":"bom"}`, v.Feedback)
	assert.Equal(t, []string{"apenas um"}, v.Strengths)
	assert.Equal(t, []string{`{"item":"x"}`, "3"}, v.Improvements)
}

func TestDecodeVerdict_EnglishAliases(t *testing.T) {
	v := DecodeVerdict(map[string]any{
		"score":     float64(60),
		"strengths": []any{"a"},
		"verdict":   "ok",
	})

	require.NotNil(t, v.Score)
	assert.Equal(t, 60.0, *v.Score)
	assert.Equal(t, []string{"a"}, v.Strengths)
	assert.Equal(t, "ok", v.Summary)
	assert.Nil(t, v.Extra)
}

func TestDecodeVerdict_DropsVerdictOwnedKeys(t *testing.T) {
	m, outcome := Parse(`Aqui: {"pontuacao": "85%", "erro": "nenhum", "feedback":"bom", "medalha": "ouro", "estilo": "formal"}`)
	require.Equal(t, Parsed, outcome)

	v := DecodeVerdict(m)

	require.NotNil(t, v.Score)
	assert.Equal(t, 85.0, *v.Score)
	assert.False(t, v.Failed())
	assert.Equal(t, map[string]any{"estilo": "formal"}, v.Extra)
}

func TestDecodeVerdict_Empty(t *testing.T) {
	v := DecodeVerdict(map[string]any{})

	assert.Nil(t, v.Score)
	assert.Equal(t, core.DefaultMaxScore, v.MaxScore)
	assert.NotNil(t, v.Strengths)
	assert.NotNil(t, v.Improvements)
}

func TestDecodeSynthesis(t *testing.T) {
	s, ok := DecodeSynthesis(map[string]any{
		"pontuacao_final":        "77,5",
		"veredicto_geral":        "Bom conjunto",
		"pontos_fortes_consenso": []any{"criatividade"},
		"recomendacao":           "Seguir",
		"destaque":               "Item 2",
	})

	require.True(t, ok)
	assert.Equal(t, 77.5, s.FinalScore)
	assert.Equal(t, "Bom conjunto", s.OverallSummary)
	assert.Equal(t, []string{"criatividade"}, s.ConsensusStrengths)
	assert.Equal(t, "Seguir", s.Recommendation)
	assert.Equal(t, "Item 2", s.Extra["destaque"])

	_, ok = DecodeSynthesis(map[string]any{"veredicto_geral": "sem nota"})
	assert.False(t, ok)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"85", 85, true},
		{" 85% ", 85, true},
		{"8,5", 8.5, true},
		{"18/25", 18, true},
		{"oitenta", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseScore(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
