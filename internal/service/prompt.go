package service

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed prompts/*.md.tmpl
var promptsFS embed.FS

// PromptRenderer renders prompts from templates.
type PromptRenderer struct {
	templates map[string]*template.Template
	mu        sync.RWMutex
}

// NewPromptRenderer creates a new prompt renderer.
func NewPromptRenderer() (*PromptRenderer, error) {
	r := &PromptRenderer{
		templates: make(map[string]*template.Template),
	}

	if err := r.loadTemplates(); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return r, nil
}

// loadTemplates loads all templates from the embedded filesystem.
func (r *PromptRenderer) loadTemplates() error {
	return fs.WalkDir(promptsFS, "prompts", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, ".md.tmpl") {
			return nil
		}

		content, err := promptsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		name := strings.TrimPrefix(path, "prompts/")
		name = strings.TrimSuffix(name, ".md.tmpl")

		tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}

		r.templates[name] = tmpl
		return nil
	})
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":      strings.Join,
		"trimSpace": strings.TrimSpace,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
	}
}

// TextPromptParams contains parameters for the text analysis template.
type TextPromptParams struct {
	Text     string
	Criteria string
	Source   string // Optional: document name when the text was extracted from a file
}

// RenderTextAnalysis renders the text analysis prompt.
func (r *PromptRenderer) RenderTextAnalysis(params TextPromptParams) (string, error) {
	return r.render("analyze-text", params)
}

// ImagePromptParams contains parameters for the image analysis template.
type ImagePromptParams struct {
	Criteria string
}

// RenderImageAnalysis renders the image analysis prompt.
func (r *PromptRenderer) RenderImageAnalysis(params ImagePromptParams) (string, error) {
	return r.render("analyze-image", params)
}

// AudioPromptParams contains parameters for the audio analysis template.
type AudioPromptParams struct {
	Transcript string
	Info       string // JSON encoded technical metadata
	Criteria   string
}

// RenderAudioAnalysis renders the audio analysis prompt.
func (r *PromptRenderer) RenderAudioAnalysis(params AudioPromptParams) (string, error) {
	return r.render("analyze-audio", params)
}

// VideoPromptParams contains parameters for the video analysis template.
type VideoPromptParams struct {
	Frames   []string
	Info     string // JSON encoded technical metadata
	Criteria string
}

// RenderVideoAnalysis renders the video analysis prompt.
func (r *PromptRenderer) RenderVideoAnalysis(params VideoPromptParams) (string, error) {
	return r.render("analyze-video", params)
}

// RenderFrameDescription renders the single-frame description prompt.
func (r *PromptRenderer) RenderFrameDescription() (string, error) {
	return r.render("describe-frame", nil)
}

// TranscribePromptParams contains parameters for the transcription template.
type TranscribePromptParams struct {
	Language string
}

// RenderTranscription renders the audio transcription prompt.
func (r *PromptRenderer) RenderTranscription(params TranscribePromptParams) (string, error) {
	return r.render("transcribe-audio", params)
}

// SynthesisPromptParams contains parameters for the synthesis template.
type SynthesisPromptParams struct {
	Analyses string // JSON encoded verdict projections
	Criteria string
}

// RenderSynthesis renders the cross-item synthesis prompt.
func (r *PromptRenderer) RenderSynthesis(params SynthesisPromptParams) (string, error) {
	return r.render("synthesize", params)
}

func (r *PromptRenderer) render(name string, data interface{}) (string, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

// ListTemplates returns available template names, sorted.
func (r *PromptRenderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasTemplate checks if a template exists.
func (r *PromptRenderer) HasTemplate(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[name]
	return ok
}
