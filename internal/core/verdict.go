package core

import (
	"encoding/json"
)

// DefaultMaxScore is the scale assumed when the model does not report one.
const DefaultMaxScore = 100.0

// Verdict is the normalized result of analyzing one item.
//
// Field names on the wire keep the Portuguese keys the web front end reads.
// Keys returned by the model that have no field here are preserved in Extra
// and written back inline.
type Verdict struct {
	ContentType   ContentType    `json:"tipo"`
	Score         *float64       `json:"pontuacao"`
	MaxScore      float64        `json:"pontuacao_maxima"`
	Feedback      string         `json:"feedback"`
	Strengths     []string       `json:"pontos_fortes"`
	Improvements  []string       `json:"pontos_melhoria"`
	Summary       string         `json:"veredicto"`
	AgentName     string         `json:"agente"`
	TechnicalInfo map[string]any `json:"info_tecnica,omitempty"`
	Transcript    string         `json:"transcricao,omitempty"`
	Error         string         `json:"erro,omitempty"`
	ItemName      string         `json:"content_name,omitempty"`
	Position      int            `json:"item_id,omitempty"`
	Extra         map[string]any `json:"-"`
}

// Keys the verdict writes itself. Model replies carrying them are never
// passed through Extra.
var reservedKeys = map[string]struct{}{
	"tipo":         {},
	"agente":       {},
	"erro":         {},
	"info_tecnica": {},
	"transcricao":  {},
	"content_name": {},
	"item_id":      {},
	"posicao":      {},
	"medalha":      {},
}

// IsReservedKey reports whether key is owned by Verdict or RankedEntry.
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// ErrorVerdict builds the verdict returned when analysis could not complete.
func ErrorVerdict(ct ContentType, agent string, err error) Verdict {
	msg := Message(err)
	return Verdict{
		ContentType:  ct,
		Score:        Float(0),
		MaxScore:     DefaultMaxScore,
		Feedback:     "Erro na análise: " + msg,
		Strengths:    []string{},
		Improvements: []string{},
		AgentName:    agent,
		Error:        msg,
	}
}

// Failed reports whether the verdict carries an error.
func (v Verdict) Failed() bool {
	return v.Error != ""
}

// EffectiveScore is the score used for ranking and averaging: failed
// verdicts and verdicts without a score count as zero.
func (v Verdict) EffectiveScore() float64 {
	if v.Failed() || v.Score == nil {
		return 0
	}
	return *v.Score
}

// MarshalJSON writes the verdict with Extra keys inlined. Declared fields win
// over Extra keys with the same name and reserved keys in Extra are dropped.
func (v Verdict) MarshalJSON() ([]byte, error) {
	m, err := v.toMap()
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (v Verdict) toMap() (map[string]any, error) {
	type plain Verdict
	raw, err := json.Marshal(plain(v))
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(v.Extra)+12)
	for k, val := range v.Extra {
		if IsReservedKey(k) {
			continue
		}
		out[k] = val
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, val := range fields {
		out[k] = val
	}
	return out, nil
}

// SynthesisVerdict aggregates the verdicts of one batch.
type SynthesisVerdict struct {
	FinalScore            float64        `json:"pontuacao_final"`
	OverallSummary        string         `json:"veredicto_geral"`
	ConsensusStrengths    []string       `json:"pontos_fortes_consenso"`
	ConsensusImprovements []string       `json:"pontos_melhoria_consenso"`
	Recommendation        string         `json:"recomendacao,omitempty"`
	Error                 string         `json:"erro,omitempty"`
	Extra                 map[string]any `json:"-"`
}

// MarshalJSON writes the synthesis with Extra keys inlined.
func (s SynthesisVerdict) MarshalJSON() ([]byte, error) {
	type plain SynthesisVerdict
	raw, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return raw, nil
	}
	out := make(map[string]any, len(s.Extra)+7)
	for k, val := range s.Extra {
		out[k] = val
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, val := range fields {
		out[k] = val
	}
	return json.Marshal(out)
}

// RankedEntry is a verdict with its competition placement.
type RankedEntry struct {
	Verdict
	Rank           int    `json:"posicao"`
	PlacementLabel string `json:"medalha"`
}

// MarshalJSON flattens the verdict and adds the placement keys.
func (e RankedEntry) MarshalJSON() ([]byte, error) {
	m, err := e.Verdict.toMap()
	if err != nil {
		return nil, err
	}
	m["posicao"] = e.Rank
	m["medalha"] = e.PlacementLabel
	return json.Marshal(m)
}

// Ranking is the ordered outcome of a competition. Winner points at
// Entries[0] and is nil when there are no entries.
type Ranking struct {
	Entries []RankedEntry
	Winner  *RankedEntry
}

// BatchResult is the outcome of analyzing several items together.
type BatchResult struct {
	ID        string           `json:"id,omitempty"`
	Verdicts  []Verdict        `json:"analises_individuais"`
	Synthesis SynthesisVerdict `json:"sintese_final"`
	Total     int              `json:"total_itens"`
	Criteria  string           `json:"criterios"`
}

// CompetitionResult is the outcome of judging a competition.
type CompetitionResult struct {
	ID           string           `json:"id,omitempty"`
	Ranking      []RankedEntry    `json:"ranking"`
	Synthesis    SynthesisVerdict `json:"sintese_competicao"`
	Criteria     string           `json:"criterios_competicao"`
	Participants int              `json:"total_participantes"`
	Winner       *RankedEntry     `json:"vencedor"`
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}
