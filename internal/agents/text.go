package agents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/salvage"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

// Agent names reported on verdicts.
const (
	TextAgentName     = "TextAnalysisAgent"
	DocumentAgentName = "DocumentAnalysisAgent"
)

// TextAnalyzer judges inline text or plain text files.
type TextAnalyzer struct {
	base
}

// NewTextAnalyzer creates a text analyzer.
func NewTextAnalyzer(deps Deps) *TextAnalyzer {
	return &TextAnalyzer{base: newBase(TextAgentName, core.ContentText, deps)}
}

// Analyze judges in.Text, or the contents of in.Path when no text is given.
func (a *TextAnalyzer) Analyze(ctx context.Context, in core.Input, criteria string) core.Verdict {
	text := in.Text
	if text == "" && in.Path != "" {
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return a.fail(core.ErrExtraction(core.CodeDocumentFailed, "não foi possível ler o arquivo").WithCause(err))
		}
		if !utf8.Valid(data) {
			return a.fail(core.ErrExtraction(core.CodeDocumentFailed,
				fmt.Sprintf("o arquivo %s não contém texto UTF-8", filepath.Base(in.Path))))
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return a.fail(core.ErrValidation(core.CodeEmptyInput, "texto vazio"))
	}
	return analyzeText(ctx, &a.base, text, criteria, "", nil)
}

// analyzeText runs the text prompt for b. Responses without JSON get the
// optimistic default, malformed JSON a slightly lower one.
func analyzeText(ctx context.Context, b *base, text, criteria, source string, info map[string]any) core.Verdict {
	prompt, err := b.deps.Prompts.RenderTextAnalysis(service.TextPromptParams{
		Text:     text,
		Criteria: criteria,
		Source:   source,
	})
	if err != nil {
		return b.fail(err)
	}

	raw, err := b.complete(ctx, prompt)
	if err != nil {
		return b.fail(err)
	}

	record, outcome := salvage.SalvageTiered(raw,
		func() map[string]any {
			return map[string]any{
				salvage.KeyScore:        75,
				salvage.KeyFeedback:     raw,
				salvage.KeyStrengths:    []any{"Análise realizada"},
				salvage.KeyImprovements: []any{"Verificar estrutura da resposta"},
				salvage.KeySummary:      "Análise concluída",
			}
		},
		func() map[string]any {
			return map[string]any{
				salvage.KeyScore:        70,
				salvage.KeyFeedback:     raw,
				salvage.KeyStrengths:    []any{"Conteúdo analisado"},
				salvage.KeyImprovements: []any{"Melhorar formatação"},
				salvage.KeySummary:      "Análise realizada com formatação alternativa",
			}
		},
	)
	return b.verdict(record, outcome, info)
}

// DocumentAnalyzer extracts the text of a PDF and judges it as text.
type DocumentAnalyzer struct {
	base
	extractor core.TextExtractor
}

// NewDocumentAnalyzer creates a document analyzer.
func NewDocumentAnalyzer(deps Deps, extractor core.TextExtractor) *DocumentAnalyzer {
	return &DocumentAnalyzer{
		base:      newBase(DocumentAgentName, core.ContentDocument, deps),
		extractor: extractor,
	}
}

// Analyze judges the document at in.Path.
func (a *DocumentAnalyzer) Analyze(ctx context.Context, in core.Input, criteria string) core.Verdict {
	ext := strings.ToLower(filepath.Ext(in.Path))
	if ext != ".pdf" {
		return a.fail(core.ErrValidation(core.CodeUnsupportedType,
			fmt.Sprintf("Tipo de documento '%s' não suportado.", ext)))
	}

	text, err := a.extractor.ExtractText(ctx, in.Path)
	if err != nil {
		return a.fail(core.ErrExtraction(core.CodeDocumentFailed, "Erro ao processar o documento").WithCause(err))
	}
	if strings.TrimSpace(text) == "" {
		return a.fail(core.ErrExtraction(core.CodeNoDocumentText, "Nenhum texto pôde ser extraído do documento."))
	}

	info := map[string]any{
		"formato":    "pdf",
		"caracteres": utf8.RuneCountInString(text),
	}
	return analyzeText(ctx, &a.base, text, criteria, filepath.Base(in.Path), info)
}
