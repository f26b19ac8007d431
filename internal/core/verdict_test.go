package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorVerdict(t *testing.T) {
	v := ErrorVerdict(ContentImage, "ImageAnalysisAgent", errors.New("boom"))

	assert.Equal(t, ContentImage, v.ContentType)
	assert.Equal(t, "ImageAnalysisAgent", v.AgentName)
	assert.Equal(t, "boom", v.Error)
	require.NotNil(t, v.Score)
	assert.Equal(t, 0.0, *v.Score)
	assert.True(t, v.Failed())
}

func TestVerdict_EffectiveScore(t *testing.T) {
	assert.Equal(t, 0.0, Verdict{}.EffectiveScore())
	assert.Equal(t, 42.0, Verdict{Score: Float(42)}.EffectiveScore())
	assert.Equal(t, 0.0, Verdict{Score: Float(42), Error: "x"}.EffectiveScore())
}

func TestVerdict_MarshalInlinesExtra(t *testing.T) {
	v := Verdict{
		ContentType: ContentVideo,
		Score:       Float(80),
		MaxScore:    100,
		Feedback:    "bom",
		Extra: map[string]any{
			"cinematografia": "boa",
			"feedback":       "shadowed",
		},
	}

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "boa", got["cinematografia"])
	assert.Equal(t, "bom", got["feedback"])
	assert.Equal(t, "video", got["tipo"])
	assert.NotContains(t, got, "erro")
}

func TestVerdict_MarshalSkipsReservedExtra(t *testing.T) {
	e := RankedEntry{
		Verdict: Verdict{
			ContentType: ContentText,
			Score:       Float(85),
			Extra: map[string]any{
				"erro":         "nenhum",
				"info_tecnica": "x",
				"posicao":      float64(9),
				"estilo":       "formal",
			},
		},
		Rank:           2,
		PlacementLabel: "🥈 Prata",
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.NotContains(t, got, "erro")
	assert.NotContains(t, got, "info_tecnica")
	assert.Equal(t, float64(2), got["posicao"])
	assert.Equal(t, "formal", got["estilo"])
}

func TestRankedEntry_Marshal(t *testing.T) {
	e := RankedEntry{
		Verdict:        Verdict{ContentType: ContentText, Score: Float(90), ItemName: "a.txt"},
		Rank:           1,
		PlacementLabel: "🥇 Ouro",
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(1), got["posicao"])
	assert.Equal(t, "🥇 Ouro", got["medalha"])
	assert.Equal(t, "a.txt", got["content_name"])
	assert.Equal(t, float64(90), got["pontuacao"])
}
