package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/config"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	return cfg
}

func TestRootCmd_Structure(t *testing.T) {
	assert.Equal(t, "jurado", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)

	want := []string{"serve", "analyze [FILE]", "compare FILE...", "judge FILE...", "status", "history [ID]", "version"}
	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Use)
	}
	for _, w := range want {
		assert.Contains(t, got, w)
	}

	for _, flag := range []string{"config", "log-level", "log-format", "no-color", "output"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("v1.2.3", "abc123", "2026-01-15")
	defer SetVersion("", "", "")

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)
	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	assert.Contains(t, out, "jurado-ai v1.2.3")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built:  2026-01-15")
	assert.Equal(t, "v1.2.3", GetVersion())
}

func TestAnalyzeItem(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "faixa.mp3")
	require.NoError(t, os.WriteFile(file, []byte("ID3"), 0o600))

	t.Run("inline text", func(t *testing.T) {
		item, err := analyzeItem(nil, "Era uma vez", "", "")
		require.NoError(t, err)
		assert.Equal(t, core.ContentText, item.Type)
		assert.Equal(t, "Era uma vez", item.Input.Text)
	})

	t.Run("file with preset", func(t *testing.T) {
		item, err := analyzeItem([]string{file}, "", "", "music")
		require.NoError(t, err)
		assert.Equal(t, file, item.Input.Path)
		assert.Equal(t, "faixa.mp3", item.Name)
		assert.Equal(t, "music", item.Input.Preset)
		assert.Empty(t, item.Type, "type is resolved from the extension later")
	})

	t.Run("type override", func(t *testing.T) {
		item, err := analyzeItem([]string{file}, "", "video", "")
		require.NoError(t, err)
		assert.Equal(t, core.ContentVideo, item.Type)
	})

	errs := []struct {
		name string
		args []string
		text string
		typ  string
	}{
		{"nothing", nil, "", ""},
		{"both", []string{file}, "x", ""},
		{"missing file", []string{filepath.Join(dir, "nope.txt")}, "", ""},
		{"directory", []string{dir}, "", ""},
		{"bad type", []string{file}, "", "hologram"},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzeItem(tt.args, tt.text, tt.typ, "")
			assert.Error(t, err)
		})
	}
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		in   string
		want core.ContentType
	}{
		{"text", core.ContentText},
		{" IMAGE ", core.ContentImage},
		{"document", core.ContentDocument},
		{".mp3", core.ContentAudio},
		{".pdf", core.ContentDocument},
	}
	for _, tt := range tests {
		got, err := parseContentType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseContentType(".xyz")
	assert.Error(t, err)
}

func TestItemsFromArgs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(a, []byte("um"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("dois"), 0o600))

	items, err := itemsFromArgs([]string{a, b})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a.txt", items[0].Name)
	assert.Equal(t, "b.png", items[1].Name)
	assert.Equal(t, b, items[1].Input.Path)
}

func TestNewApp_WithoutAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Gemini.APIKey = ""
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	a, err := newApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	status := a.health.Status()
	assert.Equal(t, service.StatusMissingAPIKey, status["gemini_connection"])
	for _, ct := range []core.ContentType{core.ContentText, core.ContentImage, core.ContentAudio, core.ContentVideo, core.ContentDocument} {
		assert.Equal(t, service.StatusActive, status[service.AgentStatusKey(ct)], ct)
	}

	v := a.judge.AnalyzeSingle(context.Background(), core.Item{Input: core.Input{Text: "um conto"}}, "")
	assert.True(t, v.Failed())
	assert.Contains(t, v.Error, "API Key")

	list, err := a.history.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, service.KindSingle, list[0].Kind)

	var gemini *service.ProbeResult
	for _, p := range a.health.Probe(context.Background(), 0) {
		if p.Name == "gemini" {
			gemini = &p
		}
	}
	require.NotNil(t, gemini)
	assert.False(t, gemini.Available)

	snap := a.metrics.Snapshot()
	assert.Equal(t, 1, snap.Totals.Analyses)
	assert.Equal(t, 1, snap.Totals.FailedAnalyses)
}

func TestSaveResult(t *testing.T) {
	prevOutput, prevSave, prevCopy := output, savePath, copyOut
	t.Cleanup(func() { output, savePath, copyOut = prevOutput, prevSave, prevCopy })
	copyOut = false

	output = "json"
	savePath = ""
	require.NoError(t, saveResult(&cobra.Command{}, core.Verdict{AgentName: "X"}))

	savePath = filepath.Join(t.TempDir(), "out", "verdict.json")
	require.NoError(t, saveResult(&cobra.Command{}, core.Verdict{AgentName: "TextAnalysisAgent", Score: core.Float(70)}))

	data, err := os.ReadFile(savePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"TextAnalysisAgent"`)

	output = "xml"
	assert.Error(t, saveResult(&cobra.Command{}, core.Verdict{}))
}
