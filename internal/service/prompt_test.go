package service

import (
	"strings"
	"testing"
)

func TestPromptRenderer_Load(t *testing.T) {
	renderer, err := NewPromptRenderer()
	if err != nil {
		t.Fatalf("NewPromptRenderer() error = %v", err)
	}

	expected := []string{
		"analyze-audio",
		"analyze-image",
		"analyze-text",
		"analyze-video",
		"describe-frame",
		"synthesize",
		"transcribe-audio",
	}
	got := renderer.ListTemplates()
	if len(got) != len(expected) {
		t.Fatalf("ListTemplates() = %v, want %v", got, expected)
	}
	for i, name := range expected {
		if got[i] != name {
			t.Errorf("ListTemplates()[%d] = %q, want %q", i, got[i], name)
		}
		if !renderer.HasTemplate(name) {
			t.Errorf("HasTemplate(%q) = false", name)
		}
	}
	if renderer.HasTemplate("nonexistent") {
		t.Error("HasTemplate(nonexistent) = true")
	}
}

func TestPromptRenderer_TextAnalysis(t *testing.T) {
	renderer, err := NewPromptRenderer()
	if err != nil {
		t.Fatalf("NewPromptRenderer() error = %v", err)
	}

	prompt, err := renderer.RenderTextAnalysis(TextPromptParams{
		Text:     "Era uma vez um rei.",
		Criteria: "Originalidade",
	})
	if err != nil {
		t.Fatalf("RenderTextAnalysis() error = %v", err)
	}
	for _, want := range []string{"Era uma vez um rei.", "Originalidade", "pontuacao_maxima", "veredicto"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "ORIGEM") {
		t.Error("prompt should not mention a source document")
	}

	prompt, err = renderer.RenderTextAnalysis(TextPromptParams{Text: "x", Criteria: "y", Source: "relatorio.pdf"})
	if err != nil {
		t.Fatalf("RenderTextAnalysis() error = %v", err)
	}
	if !strings.Contains(prompt, "ORIGEM: documento relatorio.pdf") {
		t.Error("prompt should name the source document")
	}
}

func TestPromptRenderer_MediaPrompts(t *testing.T) {
	renderer, err := NewPromptRenderer()
	if err != nil {
		t.Fatalf("NewPromptRenderer() error = %v", err)
	}

	tests := []struct {
		name   string
		render func() (string, error)
		want   []string
	}{
		{
			name: "image",
			render: func() (string, error) {
				return renderer.RenderImageAnalysis(ImagePromptParams{Criteria: "Composição"})
			},
			want: []string{"CRITÉRIOS DE AVALIAÇÃO: Composição", "elementos_visuais"},
		},
		{
			name: "audio",
			render: func() (string, error) {
				return renderer.RenderAudioAnalysis(AudioPromptParams{
					Transcript: "olá mundo",
					Info:       `{"duracao": 3}`,
					Criteria:   "Dicção",
				})
			},
			want: []string{"olá mundo", `{"duracao": 3}`, "Dicção", "qualidade_audio"},
		},
		{
			name: "video",
			render: func() (string, error) {
				return renderer.RenderVideoAnalysis(VideoPromptParams{
					Frames:   []string{"Frame 1: praia", "Frame 2: pôr do sol"},
					Info:     `{"fps": 30}`,
					Criteria: "Narrativa",
				})
			},
			want: []string{"Frame 1: praia\n\nFrame 2: pôr do sol", `{"fps": 30}`, "Narrativa", "cinematografia"},
		},
		{
			name:   "frame",
			render: renderer.RenderFrameDescription,
			want:   []string{"frame de um vídeo"},
		},
		{
			name: "transcription",
			render: func() (string, error) {
				return renderer.RenderTranscription(TranscribePromptParams{Language: "pt"})
			},
			want: []string{"(idioma: pt)"},
		},
		{
			name: "synthesis",
			render: func() (string, error) {
				return renderer.RenderSynthesis(SynthesisPromptParams{Analyses: `[{"item":1}]`, Criteria: "Coerência"})
			},
			want: []string{`[{"item":1}]`, "Coerência", "pontuacao_final", "pontos_fortes_consenso"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := tt.render()
			if err != nil {
				t.Fatalf("render error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(prompt, want) {
					t.Errorf("prompt missing %q:\n%s", want, prompt)
				}
			}
		})
	}
}

func TestPromptRenderer_TranscriptionWithoutLanguage(t *testing.T) {
	renderer, err := NewPromptRenderer()
	if err != nil {
		t.Fatalf("NewPromptRenderer() error = %v", err)
	}
	prompt, err := renderer.RenderTranscription(TranscribePromptParams{})
	if err != nil {
		t.Fatalf("RenderTranscription() error = %v", err)
	}
	if strings.Contains(prompt, "idioma") {
		t.Error("no language hint expected")
	}
}

func TestPromptRenderer_UnknownTemplate(t *testing.T) {
	renderer, err := NewPromptRenderer()
	if err != nil {
		t.Fatalf("NewPromptRenderer() error = %v", err)
	}
	if _, err := renderer.render("missing", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}
