// Package salvage recovers structured records from model responses that were
// asked for JSON but may wrap it in prose, code fences or nothing at all.
package salvage

import (
	"encoding/json"
	"strings"
)

// Outcome describes how a response was interpreted.
type Outcome int

const (
	// Parsed means a JSON object was found and decoded.
	Parsed Outcome = iota
	// NoBraces means the response had no opening or closing brace.
	NoBraces
	// Invalid means braces were present but the span between them did not
	// decode as a JSON object.
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case NoBraces:
		return "no_braces"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Parse locates the span from the first '{' to the last '}' in raw and
// decodes it. The outermost span is used so nested and pretty-printed objects
// survive surrounding text.
func Parse(raw string) (map[string]any, Outcome) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 {
		return nil, NoBraces
	}
	if start > end {
		return nil, Invalid
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil || out == nil {
		return nil, Invalid
	}
	return out, Parsed
}

// Salvage returns the JSON object embedded in raw, or a copy of fallback when
// none can be decoded. It never fails.
func Salvage(raw string, fallback map[string]any) map[string]any {
	if out, outcome := Parse(raw); outcome == Parsed {
		return out
	}
	return clone(fallback)
}

// SalvageTiered is Salvage with separate fallbacks for a response with no
// braces and one whose braces enclose invalid JSON. Either builder may be nil,
// in which case an empty record is used.
func SalvageTiered(raw string, noBraces, invalid func() map[string]any) (map[string]any, Outcome) {
	out, outcome := Parse(raw)
	switch outcome {
	case Parsed:
		return out, outcome
	case NoBraces:
		return build(noBraces), outcome
	default:
		return build(invalid), outcome
	}
}

func build(fn func() map[string]any) map[string]any {
	if fn == nil {
		return map[string]any{}
	}
	if m := fn(); m != nil {
		return m
	}
	return map[string]any{}
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
