package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/adapters/history"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/diagnostics"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

func sampleVerdict() core.Verdict {
	return core.Verdict{
		ContentType:  core.ContentText,
		Score:        core.Float(82),
		MaxScore:     100,
		Feedback:     "Texto claro e bem estruturado.",
		Strengths:    []string{"Clareza"},
		Improvements: []string{"Conclusão"},
		Summary:      "Bom texto",
		AgentName:    "TextAnalysisAgent",
		ItemName:     "conto.txt",
	}
}

func sampleCompetition() core.CompetitionResult {
	first := core.RankedEntry{Verdict: sampleVerdict(), Rank: 1, PlacementLabel: "🥇"}
	second := core.RankedEntry{
		Verdict:        core.ErrorVerdict(core.ContentImage, "ImageAnalysisAgent", assert.AnError),
		Rank:           2,
		PlacementLabel: "🥈",
	}
	second.ItemName = "foto.png"
	return core.CompetitionResult{
		Ranking:      []core.RankedEntry{first, second},
		Synthesis:    core.SynthesisVerdict{FinalScore: 41, OverallSummary: "Disputa desigual"},
		Criteria:     "originalidade",
		Participants: 2,
		Winner:       &first,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPretty, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatJSON, false).Render(sampleVerdict()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 82.0, got["pontuacao"])
	assert.Equal(t, "conto.txt", got["content_name"])
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatYAML, false).Render(core.BatchResult{
		Verdicts:  []core.Verdict{sampleVerdict()},
		Synthesis: core.SynthesisVerdict{FinalScore: 82, OverallSummary: "ok"},
		Total:     1,
		Criteria:  "123",
	}))

	out := buf.String()
	assert.NotContains(t, out, "{", "flow style must be dropped")
	assert.Contains(t, out, "total_itens: 1")

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "123", got["criterios"], "numeric-looking strings stay strings")
	synth := got["sintese_final"].(map[string]any)
	assert.Equal(t, 82, synth["pontuacao_final"])
}

func TestRender_PrettyVerdict(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatPretty, false).Render(sampleVerdict()))

	out := buf.String()
	assert.Contains(t, out, "conto.txt · TextAnalysisAgent")
	assert.Contains(t, out, "82.0/100")
	assert.Contains(t, out, "• Clareza")
	assert.Contains(t, out, "• Conclusão")
	assert.Contains(t, out, "Bom texto")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

func TestRender_PrettyFailedVerdict(t *testing.T) {
	var buf bytes.Buffer
	v := core.ErrorVerdict(core.ContentAudio, "AudioAnalysisAgent", core.ErrValidation("X", "preset inválido"))
	require.NoError(t, New(&buf, FormatPretty, false).Render(v))

	assert.Contains(t, buf.String(), "preset inválido")
	assert.NotContains(t, buf.String(), "Pontuação")
}

func TestRender_PrettyCompetition(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatPretty, false).Render(sampleCompetition()))

	out := buf.String()
	assert.Contains(t, out, "Competição com 2 participantes")
	assert.Less(t, strings.Index(out, "conto.txt"), strings.Index(out, "foto.png"))
	assert.Contains(t, out, "Vencedor")
	assert.Contains(t, out, "Disputa desigual")
}

func TestRender_PrettyStatusAndProbes(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatPretty, false)

	require.NoError(t, r.Render(map[string]string{
		"text_agent":        service.StatusActive,
		"gemini_connection": service.StatusMissingAPIKey,
	}))
	out := buf.String()
	assert.Less(t, strings.Index(out, "gemini_connection"), strings.Index(out, "text_agent"))

	buf.Reset()
	require.NoError(t, r.Render([]service.ProbeResult{
		{Name: "ffmpeg", Available: true, LatencyMS: 3},
		{Name: "gemini", Available: false, Error: "sem chave"},
	}))
	out = buf.String()
	assert.Contains(t, out, "✓ ffmpeg")
	assert.Contains(t, out, "✗ gemini")
	assert.Contains(t, out, "sem chave")
}

func TestRender_PrettyHistory(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatPretty, false)

	require.NoError(t, r.Render([]history.Summary{}))
	assert.Contains(t, buf.String(), "Nenhum julgamento registrado")

	buf.Reset()
	raw, err := json.Marshal(sampleVerdict())
	require.NoError(t, err)
	require.NoError(t, r.Render(&history.Entry{
		Summary:  history.Summary{ID: "abc", Kind: "single", Criteria: "geral", CreatedAt: time.Now()},
		Verdicts: []json.RawMessage{raw},
	}))
	assert.Contains(t, buf.String(), "abc")
	assert.Contains(t, buf.String(), "82.0/100")
}

func TestRender_PrettyHost(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatPretty, false).Render(diagnostics.HostMetrics{
		CPUThreads: 8,
		MemPercent: 50,
		MemUsedMB:  1024,
		MemTotalMB: 2048,
		SpoolPath:  "/tmp",
		DiskFreeGB: 12.5,
		Goroutines: 7,
	}))

	out := buf.String()
	assert.Contains(t, out, "8 threads")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "1024/2048 MB")
	assert.Contains(t, out, "12.5 GB livres em /tmp")
	assert.Contains(t, out, "7 goroutines")
}

func TestRender_PrettyFallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatPretty, false).Render(map[string]int{"a": 1}))
	assert.Equal(t, "a: 1\n", buf.String())
}

func TestRender_Markdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatMarkdown, false).Render(sampleCompetition()))

	out := buf.String()
	assert.Contains(t, out, "Competição")
	assert.Contains(t, out, "conto.txt")
	assert.Contains(t, out, "Disputa desigual")
}

func TestMarkdownDocuments(t *testing.T) {
	md := Markdown(sampleVerdict())
	assert.True(t, strings.HasPrefix(md, "# conto.txt\n"))
	assert.Contains(t, md, "**Pontuação:** 82.0/100")
	assert.Contains(t, md, "- Clareza")

	comp := CompetitionMarkdown(sampleCompetition())
	assert.Contains(t, comp, "| 🥇 | conto.txt | 82.0 |")
	assert.Contains(t, comp, "| 🥈 | foto.png | 0.0 |")
	assert.Contains(t, comp, "**Vencedor:** conto.txt")

	batch := BatchMarkdown(core.BatchResult{
		Verdicts:  []core.Verdict{sampleVerdict()},
		Synthesis: core.SynthesisVerdict{FinalScore: 82, Error: "falhou"},
		Total:     1,
	})
	assert.Contains(t, batch, "# Análise de 1 itens")
	assert.Contains(t, batch, "**Erro:** falhou")
}

func TestBar(t *testing.T) {
	tests := []struct {
		score, max float64
		width      int
		want       string
	}{
		{50, 100, 4, "██░░"},
		{100, 100, 4, "████"},
		{150, 100, 4, "████"},
		{-5, 100, 4, "░░░░"},
		{10, 0, 2, "░░"},
		{10, 100, 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bar(tt.score, tt.max, tt.width))
	}
}
