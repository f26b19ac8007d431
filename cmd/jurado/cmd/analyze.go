package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [FILE]",
	Short: "Analyze a single item",
	Long: `Analyze one file, or inline text given with --text.

The content type is taken from the file extension unless --type is set.

Examples:
  jurado analyze poema.txt --criteria "Originalidade e ritmo"
  jurado analyze --text "Era uma vez..."
  jurado analyze faixa.mp3 --preset music
  jurado analyze relatorio.pdf -o markdown`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeText     string
	analyzeType     string
	analyzeCriteria string
	analyzePreset   string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "Inline text to analyze instead of a file")
	analyzeCmd.Flags().StringVarP(&analyzeType, "type", "t", "",
		"Content type (text, image, audio, video, document)")
	analyzeCmd.Flags().StringVarP(&analyzeCriteria, "criteria", "c", "", "Evaluation criteria")
	analyzeCmd.Flags().StringVar(&analyzePreset, "preset", "", "Audio criteria preset (music, speech)")
	analyzeCmd.Flags().StringVar(&savePath, "save", "", "Also write the result to this file")
	analyzeCmd.Flags().BoolVar(&copyOut, "copy", false, "Also copy the result to the clipboard")
}

// errAnalysisFailed is returned after printing a verdict that carries an
// error, so the process exits non-zero.
var errAnalysisFailed = errors.New("analysis failed")

func runAnalyze(cmd *cobra.Command, args []string) error {
	item, err := analyzeItem(args, analyzeText, analyzeType, analyzePreset)
	if err != nil {
		return err
	}
	r, err := newRenderer(cmd)
	if err != nil {
		return err
	}

	a, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	v := a.judge.AnalyzeSingle(cmd.Context(), item, analyzeCriteria)
	if err := r.Render(v); err != nil {
		return err
	}
	if err := saveResult(cmd, v); err != nil {
		return err
	}
	if v.Failed() {
		return errAnalysisFailed
	}
	return nil
}

// analyzeItem builds the item for the analyze command.
func analyzeItem(args []string, text, typ, preset string) (core.Item, error) {
	if len(args) == 0 && text == "" {
		return core.Item{}, errors.New("a FILE argument or --text is required")
	}
	if len(args) > 0 && text != "" {
		return core.Item{}, errors.New("FILE and --text are mutually exclusive")
	}

	var item core.Item
	if text != "" {
		item = core.Item{Input: core.Input{Text: text}, Type: core.ContentText}
	} else {
		items, err := itemsFromArgs(args)
		if err != nil {
			return core.Item{}, err
		}
		item = items[0]
	}
	item.Input.Preset = preset

	if typ != "" {
		ct, err := parseContentType(typ)
		if err != nil {
			return core.Item{}, err
		}
		item.Type = ct
	}
	return item, nil
}

func parseContentType(s string) (core.ContentType, error) {
	ct := core.ContentType(strings.ToLower(strings.TrimSpace(s)))
	switch ct {
	case core.ContentText, core.ContentImage, core.ContentAudio, core.ContentVideo, core.ContentDocument:
		return ct, nil
	}
	// Accept an extension such as ".mp3" as well.
	if strings.HasPrefix(string(ct), ".") {
		if c := core.Classify("x" + string(ct)); c != core.ContentUnknown {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown content type %q (valid: text, image, audio, video, document)", s)
}
