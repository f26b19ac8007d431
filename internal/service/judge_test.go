package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/testutil"
)

type memoryRecorder struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (m *memoryRecorder) Record(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return m.err
}

type judgeFixture struct {
	judge    *Judge
	model    *testutil.MockModel
	recorder *memoryRecorder
	text     *testutil.MockAnalyzer
	image    *testutil.MockAnalyzer
}

func newJudgeFixture(t *testing.T) judgeFixture {
	t.Helper()
	f := judgeFixture{
		model:    testutil.NewMockModel().WithResponse(`{"pontuacao_final": 66, "veredicto_geral": "ok"}`),
		recorder: &memoryRecorder{},
		text:     testutil.NewMockAnalyzer("TextAnalysisAgent", core.ContentText, 70),
		image:    testutil.NewMockAnalyzer("ImageAnalysisAgent", core.ContentImage, 90),
	}
	prompts, err := NewPromptRenderer()
	require.NoError(t, err)

	d := NewDispatcher(nil, f.text, f.image)
	f.judge = NewJudge(d, NewFanOut(d), NewSynthesisEngine(f.model, prompts, nil, nil), WithRecorder(f.recorder))
	return f
}

func TestResolveType(t *testing.T) {
	tests := []struct {
		name string
		item core.Item
		want core.ContentType
	}{
		{"explicit", core.Item{Type: core.ContentVideo, Input: core.Input{Path: "a.png"}}, core.ContentVideo},
		{"from path", core.Item{Input: core.Input{Path: "/tmp/x.JPG"}}, core.ContentImage},
		{"pdf is document", core.Item{Input: core.Input{Path: "r.pdf"}}, core.ContentDocument},
		{"from name", core.Item{Name: "faixa.mp3", Input: core.Input{Text: "..."}}, core.ContentAudio},
		{"inline text", core.Item{Input: core.Input{Text: "olá"}}, core.ContentText},
		{"unknown path", core.Item{Input: core.Input{Path: "a.xyz"}}, core.ContentUnknown},
		{"nothing", core.Item{}, core.ContentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveType(tt.item))
		})
	}
}

func TestJudge_AnalyzeSingle(t *testing.T) {
	f := newJudgeFixture(t)

	v := f.judge.AnalyzeSingle(context.Background(), core.Item{Input: core.Input{Path: "foto.png"}, Name: "foto.png"}, "")

	assert.Equal(t, 90.0, v.EffectiveScore())
	assert.Equal(t, "foto.png", v.ItemName)
	assert.Equal(t, 1, f.image.CallCount("Analyze"))
	assert.Equal(t, 0, f.model.CallCount("Complete"), "single analysis has no synthesis")

	require.Len(t, f.recorder.records, 1)
	rec := f.recorder.records[0]
	assert.Equal(t, KindSingle, rec.Kind)
	assert.Equal(t, DefaultCriteria, rec.Criteria)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Nil(t, rec.Synthesis)
}

func TestJudge_AnalyzeMultiple(t *testing.T) {
	f := newJudgeFixture(t)

	res := f.judge.AnalyzeMultiple(context.Background(), []core.Item{
		{Input: core.Input{Text: "um conto"}},
		{Input: core.Input{Path: "capa.png"}, Name: "capa.png"},
		{Input: core.Input{Path: "dados.xyz"}, Name: "dados.xyz"},
	}, "")

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, DefaultBatchCriteria, res.Criteria)
	require.Len(t, res.Verdicts, 3)
	assert.Equal(t, 70.0, res.Verdicts[0].EffectiveScore())
	assert.Equal(t, "Item 1", res.Verdicts[0].ItemName)
	assert.Equal(t, 90.0, res.Verdicts[1].EffectiveScore())
	assert.True(t, res.Verdicts[2].Failed(), "unsupported type fails in isolation")
	assert.Equal(t, "dados.xyz", res.Verdicts[2].ItemName)

	assert.Equal(t, 66.0, res.Synthesis.FinalScore)
	assert.Equal(t, 1, f.model.CallCount("Complete"))

	require.Len(t, f.recorder.records, 1)
	rec := f.recorder.records[0]
	assert.Equal(t, KindBatch, rec.Kind)
	assert.Equal(t, res.ID, rec.ID)
	require.NotNil(t, rec.Synthesis)
	assert.Len(t, rec.Verdicts, 3)
}

func TestJudge_JudgeCompetition(t *testing.T) {
	f := newJudgeFixture(t)

	res := f.judge.JudgeCompetition(context.Background(), []core.Item{
		{Input: core.Input{Text: "conto A"}, Name: "a.txt"},
		{Input: core.Input{Path: "b.png"}, Name: "b.png"},
		{Input: core.Input{Text: "conto C"}, Name: "c.txt"},
	}, "Melhor obra")

	assert.Equal(t, 3, res.Participants)
	assert.Equal(t, "Melhor obra", res.Criteria)
	require.Len(t, res.Ranking, 3)
	assert.Equal(t, "b.png", res.Ranking[0].ItemName)
	assert.Equal(t, "a.txt", res.Ranking[1].ItemName)
	assert.Equal(t, "c.txt", res.Ranking[2].ItemName)
	assert.Equal(t, "🥇 Ouro", res.Ranking[0].PlacementLabel)
	require.NotNil(t, res.Winner)
	assert.Equal(t, "b.png", res.Winner.ItemName)
	assert.Equal(t, 66.0, res.Synthesis.FinalScore)

	require.Len(t, f.recorder.records, 1)
	assert.Equal(t, KindCompetition, f.recorder.records[0].Kind)
}

func TestJudge_EmptyCompetition(t *testing.T) {
	f := newJudgeFixture(t)

	res := f.judge.JudgeCompetition(context.Background(), nil, "")
	assert.Equal(t, 0, res.Participants)
	assert.Empty(t, res.Ranking)
	assert.Nil(t, res.Winner)
	assert.Equal(t, 0.0, res.Synthesis.FinalScore)
	assert.Equal(t, 0, f.model.CallCount("Complete"))
}

func TestJudge_RecorderFailureIsNotFatal(t *testing.T) {
	f := newJudgeFixture(t)
	f.recorder.err = testutil.ErrTest

	v := f.judge.AnalyzeSingle(context.Background(), core.Item{Input: core.Input{Text: "x"}}, "c")
	assert.False(t, v.Failed())
}

func TestJudge_WithoutRecorder(t *testing.T) {
	prompts, err := NewPromptRenderer()
	require.NoError(t, err)
	d := NewDispatcher(nil, testutil.NewMockAnalyzer("T", core.ContentText, 10))
	j := NewJudge(d, NewFanOut(d), NewSynthesisEngine(testutil.NewMockModel(), prompts, nil, nil))

	v := j.AnalyzeSingle(context.Background(), core.Item{Input: core.Input{Text: "x"}}, "c")
	assert.Equal(t, 10.0, v.EffectiveScore())
}
