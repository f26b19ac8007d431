package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/adapters/history"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/diagnostics"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

// Palette
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorAccent  = lipgloss.Color("#F59E0B") // Amber
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#9CA3AF") // Muted gray
)

const (
	barWidth   = 20
	labelWidth = 14
	wrapWidth  = 78
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	fair    lipgloss.Style
	poor    lipgloss.Style
	accent  lipgloss.Style
	body    lipgloss.Style
	section lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		label:   r.NewStyle().Foreground(colorMuted).Width(labelWidth),
		muted:   r.NewStyle().Foreground(colorMuted),
		good:    r.NewStyle().Bold(true).Foreground(colorSuccess),
		fair:    r.NewStyle().Bold(true).Foreground(colorWarning),
		poor:    r.NewStyle().Bold(true).Foreground(colorError),
		accent:  r.NewStyle().Bold(true).Foreground(colorAccent),
		body:    r.NewStyle().Width(wrapWidth).PaddingLeft(2),
		section: r.NewStyle().Bold(true).Underline(true),
	}
}

// scoreStyle colors a score by its share of the maximum.
func (s styles) scoreStyle(score, maxScore float64) lipgloss.Style {
	if maxScore <= 0 {
		maxScore = core.DefaultMaxScore
	}
	switch ratio := score / maxScore; {
	case ratio >= 0.8:
		return s.good
	case ratio >= 0.6:
		return s.fair
	default:
		return s.poor
	}
}

func (r *Renderer) pretty(v any) error {
	var b strings.Builder
	switch val := v.(type) {
	case core.Verdict:
		r.writeVerdict(&b, val, "")
	case *core.Verdict:
		r.writeVerdict(&b, *val, "")
	case core.BatchResult:
		r.writeBatch(&b, val)
	case core.CompetitionResult:
		r.writeCompetition(&b, val)
	case map[string]string:
		r.writeStatus(&b, val)
	case []service.ProbeResult:
		r.writeProbes(&b, val)
	case []history.Summary:
		r.writeHistory(&b, val)
	case *history.Entry:
		r.writeEntry(&b, val)
	case diagnostics.HostMetrics:
		r.writeHost(&b, val)
	default:
		return writeYAML(r.out, v)
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *Renderer) writeVerdict(b *strings.Builder, v core.Verdict, heading string) {
	st := r.styles
	if heading == "" {
		heading = v.AgentName
		if v.ItemName != "" {
			heading = v.ItemName + " · " + v.AgentName
		}
	}
	fmt.Fprintf(b, "%s %s\n", st.title.Render(heading), st.muted.Render("("+string(v.ContentType)+")"))

	if v.Failed() {
		fmt.Fprintf(b, "%s%s\n\n", st.label.Render("Erro"), st.poor.Render(v.Error))
		return
	}

	r.writeScore(b, "Pontuação", v.EffectiveScore(), v.MaxScore)
	if v.Summary != "" {
		fmt.Fprintf(b, "%s%s\n", st.label.Render("Veredicto"), v.Summary)
	}
	r.writeList(b, "Pontos fortes", v.Strengths)
	r.writeList(b, "Pontos de melhoria", v.Improvements)
	if v.Feedback != "" {
		fmt.Fprintf(b, "%s\n%s\n", st.section.Render("Feedback"), st.body.Render(v.Feedback))
	}
	if v.Transcript != "" {
		fmt.Fprintf(b, "%s\n%s\n", st.section.Render("Transcrição"), st.body.Render(v.Transcript))
	}
	if len(v.TechnicalInfo) > 0 {
		fmt.Fprintf(b, "%s\n", st.section.Render("Informações técnicas"))
		for _, k := range sortedKeys(v.TechnicalInfo) {
			fmt.Fprintf(b, "  %s%v\n", st.label.Render(k), v.TechnicalInfo[k])
		}
	}
	b.WriteString("\n")
}

func (r *Renderer) writeScore(b *strings.Builder, label string, score, maxScore float64) {
	if maxScore <= 0 {
		maxScore = core.DefaultMaxScore
	}
	st := r.styles.scoreStyle(score, maxScore)
	fmt.Fprintf(b, "%s%s %s\n",
		r.styles.label.Render(label),
		st.Render(fmt.Sprintf("%.1f/%.0f", score, maxScore)),
		st.Render(Bar(score, maxScore, barWidth)))
}

func (r *Renderer) writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n", r.styles.section.Render(title))
	for _, it := range items {
		fmt.Fprintf(b, "  • %s\n", it)
	}
}

func (r *Renderer) writeSynthesis(b *strings.Builder, s core.SynthesisVerdict, title string) {
	st := r.styles
	fmt.Fprintf(b, "%s\n", st.title.Render(title))
	if s.Error != "" {
		fmt.Fprintf(b, "%s%s\n", st.label.Render("Erro"), st.poor.Render(s.Error))
	}
	r.writeScore(b, "Final", s.FinalScore, core.DefaultMaxScore)
	if s.OverallSummary != "" {
		fmt.Fprintf(b, "%s\n", st.body.Render(s.OverallSummary))
	}
	r.writeList(b, "Consenso: pontos fortes", s.ConsensusStrengths)
	r.writeList(b, "Consenso: pontos de melhoria", s.ConsensusImprovements)
	if s.Recommendation != "" {
		fmt.Fprintf(b, "%s%s\n", st.label.Render("Recomendação"), s.Recommendation)
	}
	b.WriteString("\n")
}

func (r *Renderer) writeBatch(b *strings.Builder, res core.BatchResult) {
	fmt.Fprintf(b, "%s %s\n\n", r.styles.title.Render(fmt.Sprintf("%d itens analisados", res.Total)),
		r.styles.muted.Render("· "+res.Criteria))
	for _, v := range res.Verdicts {
		r.writeVerdict(b, v, "")
	}
	r.writeSynthesis(b, res.Synthesis, "Síntese")
}

func (r *Renderer) writeCompetition(b *strings.Builder, res core.CompetitionResult) {
	st := r.styles
	fmt.Fprintf(b, "%s %s\n\n", st.title.Render(fmt.Sprintf("Competição com %d participantes", res.Participants)),
		st.muted.Render("· "+res.Criteria))

	for _, e := range res.Ranking {
		name := e.ItemName
		if name == "" {
			name = fmt.Sprintf("Item %d", e.Position)
		}
		score := e.EffectiveScore()
		line := fmt.Sprintf("%-4s %-30s %6.1f", e.PlacementLabel, name, score)
		if e.Failed() {
			line += "  " + st.poor.Render(e.Error)
		}
		fmt.Fprintf(b, "%s\n", st.scoreStyle(score, e.MaxScore).Render(line))
	}
	b.WriteString("\n")

	if res.Winner != nil {
		fmt.Fprintf(b, "%s%s\n\n", st.label.Render("Vencedor"), st.accent.Render(res.Winner.ItemName))
	}
	r.writeSynthesis(b, res.Synthesis, "Síntese da competição")
}

func (r *Renderer) writeStatus(b *strings.Builder, status map[string]string) {
	for _, k := range sortedKeys(status) {
		val := status[k]
		st := r.styles.good
		if val != service.StatusActive && val != service.StatusConnectionOK {
			st = r.styles.poor
		}
		fmt.Fprintf(b, "%s %s\n", r.styles.label.Width(20).Render(k), st.Render(val))
	}
}

func (r *Renderer) writeProbes(b *strings.Builder, probes []service.ProbeResult) {
	for _, p := range probes {
		mark, st := "✓", r.styles.good
		if !p.Available {
			mark, st = "✗", r.styles.poor
		}
		line := fmt.Sprintf("%s %s", st.Render(mark), r.styles.label.Render(p.Name))
		line += r.styles.muted.Render(fmt.Sprintf("%dms", p.LatencyMS))
		if p.Error != "" {
			line += "  " + st.Render(p.Error)
		}
		fmt.Fprintln(b, line)
	}
}

func (r *Renderer) writeHost(b *strings.Builder, h diagnostics.HostMetrics) {
	usage := func(name string, percent float64, detail string) {
		st := r.styles.good
		switch {
		case percent >= 90:
			st = r.styles.poor
		case percent >= 70:
			st = r.styles.fair
		}
		fmt.Fprintf(b, "%s %s %s %s\n", r.styles.label.Width(10).Render(name),
			st.Render(Bar(percent, 100, 20)), st.Render(fmt.Sprintf("%5.1f%%", percent)), r.styles.muted.Render(detail))
	}

	cpu := fmt.Sprintf("%d threads", h.CPUThreads)
	if h.CPUModel != "" {
		cpu = h.CPUModel + ", " + cpu
	}
	usage("CPU", h.CPUPercent, cpu)
	usage("Memória", h.MemPercent, fmt.Sprintf("%.0f/%.0f MB", h.MemUsedMB, h.MemTotalMB))
	usage("Disco", h.DiskPercent, fmt.Sprintf("%.1f GB livres em %s", h.DiskFreeGB, h.SpoolPath))
	fmt.Fprintf(b, "%s %.2f %.2f\n", r.styles.label.Width(10).Render("Carga"), h.LoadAvg1, h.LoadAvg5)
	fmt.Fprintf(b, "%s %d goroutines, %.1f MB heap\n", r.styles.label.Width(10).Render("Processo"), h.Goroutines, h.HeapMB)
}

func (r *Renderer) writeHistory(b *strings.Builder, list []history.Summary) {
	if len(list) == 0 {
		fmt.Fprintln(b, r.styles.muted.Render("Nenhum julgamento registrado"))
		return
	}
	for _, s := range list {
		score := "-"
		if s.FinalScore != nil {
			score = fmt.Sprintf("%.1f", *s.FinalScore)
		}
		fmt.Fprintf(b, "%s  %s  %-11s %3d  %6s  %s\n",
			s.ID,
			r.styles.muted.Render(s.CreatedAt.Local().Format("2006-01-02 15:04")),
			s.Kind, s.Total, score, s.Criteria)
	}
}

func (r *Renderer) writeEntry(b *strings.Builder, e *history.Entry) {
	fmt.Fprintf(b, "%s %s\n", r.styles.title.Render(e.ID), r.styles.muted.Render("· "+e.Kind+" · "+e.Criteria))
	fmt.Fprintf(b, "%s\n\n", r.styles.muted.Render(e.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	for _, raw := range e.Verdicts {
		var v core.Verdict
		if err := json.Unmarshal(raw, &v); err != nil {
			fmt.Fprintf(b, "%s\n", r.styles.poor.Render("registro ilegível: "+err.Error()))
			continue
		}
		r.writeVerdict(b, v, "")
	}
	if len(e.Synthesis) > 0 {
		var s core.SynthesisVerdict
		if err := json.Unmarshal(e.Synthesis, &s); err == nil {
			r.writeSynthesis(b, s, "Síntese")
		}
	}
}

// Bar draws a horizontal gauge of score out of maxScore.
func Bar(score, maxScore float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if maxScore > 0 {
		filled = int(score / maxScore * float64(width))
	}
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
