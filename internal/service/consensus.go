package service

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// ConsensusChecker measures how much the individual verdicts of a batch agree
// and extracts the points they have in common.
type ConsensusChecker struct {
	// MinShare is the fraction of successful verdicts an item must appear in
	// to count as recurring.
	MinShare float64
	Weights  CategoryWeights
}

// CategoryWeights defines the importance of each category.
type CategoryWeights struct {
	Strengths    float64
	Improvements float64
}

// DefaultWeights returns the default category weights.
func DefaultWeights() CategoryWeights {
	return CategoryWeights{
		Strengths:    0.5,
		Improvements: 0.5,
	}
}

// NewConsensusChecker creates a new consensus checker.
func NewConsensusChecker(minShare float64, weights CategoryWeights) *ConsensusChecker {
	if minShare <= 0 || minShare > 1 {
		minShare = 0.5
	}
	return &ConsensusChecker{
		MinShare: minShare,
		Weights:  weights,
	}
}

// ConsensusResult contains the consensus evaluation results.
type ConsensusResult struct {
	// Score is the weighted mean pairwise Jaccard similarity, 1 when fewer
	// than two verdicts succeeded.
	Score          float64
	CategoryScores map[string]float64
	Strengths      []string
	Improvements   []string
	ScoreSpread    float64
	Considered     int
}

// Evaluate calculates consensus between the successful verdicts. Failed
// verdicts carry no opinion and are skipped.
func (c *ConsensusChecker) Evaluate(verdicts []core.Verdict) ConsensusResult {
	ok := make([]core.Verdict, 0, len(verdicts))
	for _, v := range verdicts {
		if !v.Failed() {
			ok = append(ok, v)
		}
	}

	result := ConsensusResult{
		Score:          1.0,
		CategoryScores: make(map[string]float64),
		Strengths:      c.recurring(ok, func(v core.Verdict) []string { return v.Strengths }),
		Improvements:   c.recurring(ok, func(v core.Verdict) []string { return v.Improvements }),
		ScoreSpread:    scoreSpread(ok),
		Considered:     len(ok),
	}
	if len(ok) < 2 {
		return result
	}

	strengthsAvg := average(pairwiseJaccard(ok, func(v core.Verdict) []string { return v.Strengths }))
	improvementsAvg := average(pairwiseJaccard(ok, func(v core.Verdict) []string { return v.Improvements }))

	result.CategoryScores["strengths"] = strengthsAvg
	result.CategoryScores["improvements"] = improvementsAvg
	result.Score = strengthsAvg*c.Weights.Strengths + improvementsAvg*c.Weights.Improvements
	return result
}

// recurring returns items present in at least MinShare of the verdicts,
// most frequent first. The first spelling seen is kept.
func (c *ConsensusChecker) recurring(verdicts []core.Verdict, extract func(core.Verdict) []string) []string {
	if len(verdicts) == 0 {
		return []string{}
	}

	type entry struct {
		text  string
		count int
		first int
	}
	seen := make(map[string]*entry)
	order := 0
	for _, v := range verdicts {
		inThis := make(map[string]bool)
		for _, item := range extract(v) {
			key := NormalizeText(item)
			if key == "" || inThis[key] {
				continue
			}
			inThis[key] = true
			if e, ok := seen[key]; ok {
				e.count++
				continue
			}
			seen[key] = &entry{text: strings.TrimSpace(item), count: 1, first: order}
			order++
		}
	}

	need := c.MinShare * float64(len(verdicts))
	entries := make([]*entry, 0, len(seen))
	for _, e := range seen {
		if float64(e.count) >= need {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].first < entries[j].first
	})

	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = e.text
	}
	return items
}

// pairwiseJaccard calculates Jaccard similarity for all pairs.
func pairwiseJaccard(verdicts []core.Verdict, extract func(core.Verdict) []string) []float64 {
	scores := make([]float64, 0)

	for i := 0; i < len(verdicts); i++ {
		for j := i + 1; j < len(verdicts); j++ {
			set1 := normalizeSet(extract(verdicts[i]))
			set2 := normalizeSet(extract(verdicts[j]))
			scores = append(scores, JaccardSimilarity(set1, set2))
		}
	}

	return scores
}

// JaccardSimilarity calculates Jaccard index: |A ∩ B| / |A ∪ B|
func JaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	setA := toSet(a)
	setB := toSet(b)

	intersection := 0
	for item := range setA {
		if setB[item] {
			intersection++
		}
	}

	union := len(setA)
	for item := range setB {
		if !setA[item] {
			union++
		}
	}

	if union == 0 {
		return 1.0
	}

	return float64(intersection) / float64(union)
}

// normalizeSet normalizes items for comparison.
func normalizeSet(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		normalized := NormalizeText(item)
		if normalized != "" {
			result = append(result, normalized)
		}
	}
	return result
}

// NormalizeText lowercases text and collapses punctuation and whitespace
// runs into single spaces.
func NormalizeText(text string) string {
	text = strings.ToLower(text)

	var builder strings.Builder
	prevSpace := true
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			builder.WriteRune(r)
			prevSpace = false
		} else if !prevSpace {
			builder.WriteRune(' ')
			prevSpace = true
		}
	}

	return strings.TrimSpace(builder.String())
}

func toSet(items []string) map[string]bool {
	result := make(map[string]bool)
	for _, item := range items {
		result[item] = true
	}
	return result
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func scoreSpread(verdicts []core.Verdict) float64 {
	if len(verdicts) == 0 {
		return 0
	}
	lo, hi := verdicts[0].EffectiveScore(), verdicts[0].EffectiveScore()
	for _, v := range verdicts[1:] {
		s := v.EffectiveScore()
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return hi - lo
}
