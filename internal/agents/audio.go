package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/salvage"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

// AudioAgentName is reported on audio verdicts.
const AudioAgentName = "AudioAnalysisAgent"

// Transcript placeholders used when no speech can be turned into text.
const (
	NoSpeechTranscript = "[Áudio não contém fala detectável]"
	transcriptErrorFmt = "[Erro na transcrição: %s]"
)

// Audio presets.
const (
	PresetMusic  = "music"
	PresetSpeech = "speech"
)

var presetCriteria = map[string]string{
	PresetMusic: "Análise específica para conteúdo musical considerando:\n" +
		"- Qualidade da composição, Harmonia e melodia, Ritmo e timing\n" +
		"- Qualidade da gravação, Criatividade e originalidade, Técnica instrumental/vocal",
	PresetSpeech: "Análise específica para fala e apresentação considerando:\n" +
		"- Clareza da dicção, Fluência e ritmo da fala, Conteúdo da mensagem\n" +
		"- Persuasão e engajamento, Qualidade técnica da gravação, Naturalidade da apresentação",
}

// PresetCriteria returns the fixed criteria of an audio preset.
func PresetCriteria(preset string) (string, bool) {
	c, ok := presetCriteria[strings.ToLower(strings.TrimSpace(preset))]
	return c, ok
}

// maxContentPreview bounds the transcript excerpt used by the fallbacks.
const maxContentPreview = 200

// AudioAnalyzer judges recorded audio through its transcript and technical
// metadata.
type AudioAnalyzer struct {
	base
	info   core.FeatureExtractor
	speech core.Transcriber
}

// NewAudioAnalyzer creates an audio analyzer.
func NewAudioAnalyzer(deps Deps, info core.FeatureExtractor, speech core.Transcriber) *AudioAnalyzer {
	return &AudioAnalyzer{
		base:   newBase(AudioAgentName, core.ContentAudio, deps),
		info:   info,
		speech: speech,
	}
}

// Analyze judges the audio file at in.Path. A preset replaces criteria.
// Metadata and transcription failures are reported to the model, not fatal.
func (a *AudioAnalyzer) Analyze(ctx context.Context, in core.Input, criteria string) core.Verdict {
	if in.Preset != "" {
		c, ok := PresetCriteria(in.Preset)
		if !ok {
			return a.fail(core.ErrValidation(core.CodeInvalidPreset,
				fmt.Sprintf("preset de áudio desconhecido: %q", in.Preset)))
		}
		criteria = c
	}
	if in.Path == "" {
		return a.fail(core.ErrValidation(core.CodeEmptyInput, "nenhum arquivo de áudio informado"))
	}

	info, err := a.info.Extract(ctx, in.Path)
	if err != nil {
		a.deps.Logger.Warn("audio metadata extraction failed", "path", in.Path, "error", err)
		info = map[string]any{"erro": "Erro ao extrair informações: " + core.Message(err)}
	}

	transcript := a.transcribe(ctx, in.Path)

	prompt, err := a.deps.Prompts.RenderAudioAnalysis(service.AudioPromptParams{
		Transcript: transcript,
		Info:       infoJSON(info),
		Criteria:   criteria,
	})
	if err != nil {
		return a.fail(err)
	}

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return a.fail(err)
	}

	preview := Truncate(transcript, maxContentPreview)
	record, outcome := salvage.SalvageTiered(raw,
		func() map[string]any {
			return map[string]any{
				salvage.KeyScore:        75,
				salvage.KeyFeedback:     raw,
				"qualidade_audio":       "Qualidade avaliada",
				"conteudo":              preview,
				"performance":           "Performance analisada",
				salvage.KeyStrengths:    []any{"Áudio analisado"},
				salvage.KeyImprovements: []any{"Verificar estrutura da resposta"},
				salvage.KeySummary:      "Análise concluída",
			}
		},
		func() map[string]any {
			return map[string]any{
				salvage.KeyScore:        70,
				salvage.KeyFeedback:     raw,
				"qualidade_audio":       "Avaliação técnica realizada",
				"conteudo":              preview,
				"performance":           "Performance avaliada",
				salvage.KeyStrengths:    []any{"Conteúdo de áudio analisado"},
				salvage.KeyImprovements: []any{"Melhorar formatação"},
				salvage.KeySummary:      "Análise realizada com formatação alternativa",
			}
		},
	)

	v := a.verdict(record, outcome, info)
	v.Transcript = transcript
	return v
}

func (a *AudioAnalyzer) transcribe(ctx context.Context, path string) string {
	text, err := a.speech.Transcribe(ctx, path)
	if err != nil {
		a.deps.Logger.Warn("transcription failed", "path", path, "error", err)
		return fmt.Sprintf(transcriptErrorFmt, core.Message(err))
	}
	if strings.TrimSpace(text) == "" {
		return NoSpeechTranscript
	}
	return text
}

// Truncate shortens s to n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
