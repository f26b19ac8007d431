// Package render writes judgment results for the command line as JSON, YAML,
// styled terminal text or rendered markdown.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// Format selects how results are written.
type Format string

// Supported formats.
const (
	FormatPretty   Format = "pretty"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name. Empty means pretty.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPretty, nil
	case FormatPretty, FormatJSON, FormatYAML, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: pretty, json, yaml, markdown)", s)
	}
}

// Renderer writes values to one output.
type Renderer struct {
	out    io.Writer
	format Format
	color  bool
	styles styles
}

// New creates a renderer. Colors are used only when color is set and out is a
// terminal that supports them.
func New(out io.Writer, format Format, color bool) *Renderer {
	lr := lipgloss.NewRenderer(out)
	if !color {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		out:    out,
		format: format,
		color:  color && lr.ColorProfile() != termenv.Ascii,
		styles: newStyles(lr),
	}
}

// Format returns the renderer's output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render writes v in the configured format.
func (r *Renderer) Render(v any) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(r.out, v)
	case FormatYAML:
		return writeYAML(r.out, v)
	case FormatMarkdown:
		return r.markdown(v)
	default:
		return r.pretty(v)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeYAML goes through the JSON encoding so the field names and their
// order match the HTTP responses.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("converting result to yaml: %w", err)
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles inherited from JSON.
func blockStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style = 0
	case yaml.ScalarNode:
		if n.Tag == "!!str" {
			n.Style = 0
		}
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}
