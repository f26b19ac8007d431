package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

func (r *Renderer) markdown(v any) error {
	var doc string
	switch val := v.(type) {
	case core.Verdict:
		doc = Markdown(val)
	case core.BatchResult:
		doc = BatchMarkdown(val)
	case core.CompetitionResult:
		doc = CompetitionMarkdown(val)
	default:
		return r.pretty(v)
	}

	style := glamourstyles.ASCIIStyleConfig
	if r.color {
		style = glamourstyles.DraculaStyleConfig
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := tr.Render(doc)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(r.out, out)
	return err
}

// Markdown returns a markdown report of one verdict.
func Markdown(v core.Verdict) string {
	var b strings.Builder
	writeVerdictMarkdown(&b, v, "#")
	return b.String()
}

// BatchMarkdown returns a markdown report of a multiple analysis.
func BatchMarkdown(res core.BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Análise de %d itens\n\n_%s_\n\n", res.Total, res.Criteria)
	for _, v := range res.Verdicts {
		writeVerdictMarkdown(&b, v, "##")
	}
	writeSynthesisMarkdown(&b, res.Synthesis, "## Síntese")
	return b.String()
}

// CompetitionMarkdown returns a markdown report of a competition.
func CompetitionMarkdown(res core.CompetitionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Competição\n\n_%s_\n\n", res.Criteria)
	b.WriteString("| Posição | Participante | Pontuação |\n|---|---|---|\n")
	for _, e := range res.Ranking {
		fmt.Fprintf(&b, "| %s | %s | %.1f |\n", e.PlacementLabel, escapeCell(e.ItemName), e.EffectiveScore())
	}
	b.WriteString("\n")
	if res.Winner != nil {
		fmt.Fprintf(&b, "**Vencedor:** %s\n\n", res.Winner.ItemName)
	}
	writeSynthesisMarkdown(&b, res.Synthesis, "## Síntese da competição")
	return b.String()
}

func writeVerdictMarkdown(b *strings.Builder, v core.Verdict, level string) {
	title := v.ItemName
	if title == "" {
		title = v.AgentName
	}
	fmt.Fprintf(b, "%s %s\n\n", level, title)
	if v.Failed() {
		fmt.Fprintf(b, "**Erro:** %s\n\n", v.Error)
		return
	}
	maxScore := v.MaxScore
	if maxScore <= 0 {
		maxScore = core.DefaultMaxScore
	}
	fmt.Fprintf(b, "**Pontuação:** %.1f/%.0f\n\n", v.EffectiveScore(), maxScore)
	if v.Summary != "" {
		fmt.Fprintf(b, "> %s\n\n", v.Summary)
	}
	writeBullets(b, "Pontos fortes", v.Strengths)
	writeBullets(b, "Pontos de melhoria", v.Improvements)
	if v.Feedback != "" {
		fmt.Fprintf(b, "%s\n\n", v.Feedback)
	}
}

func writeSynthesisMarkdown(b *strings.Builder, s core.SynthesisVerdict, heading string) {
	fmt.Fprintf(b, "%s\n\n**Pontuação final:** %.1f\n\n", heading, s.FinalScore)
	if s.Error != "" {
		fmt.Fprintf(b, "**Erro:** %s\n\n", s.Error)
	}
	if s.OverallSummary != "" {
		fmt.Fprintf(b, "%s\n\n", s.OverallSummary)
	}
	writeBullets(b, "Consenso: pontos fortes", s.ConsensusStrengths)
	writeBullets(b, "Consenso: pontos de melhoria", s.ConsensusImprovements)
	if s.Recommendation != "" {
		fmt.Fprintf(b, "**Recomendação:** %s\n\n", s.Recommendation)
	}
}

func writeBullets(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
