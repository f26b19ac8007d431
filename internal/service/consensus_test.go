package service

import (
	"math"
	"testing"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

func verdictWith(score float64, strengths, improvements []string) core.Verdict {
	return core.Verdict{
		Score:        core.Float(score),
		MaxScore:     100,
		Strengths:    strengths,
		Improvements: improvements,
	}
}

func TestJaccardSimilarity_Identical(t *testing.T) {
	a := []string{"apple", "banana", "cherry"}
	b := []string{"apple", "banana", "cherry"}

	score := JaccardSimilarity(a, b)
	if score != 1.0 {
		t.Errorf("JaccardSimilarity() = %v, want 1.0", score)
	}
}

func TestJaccardSimilarity_Disjoint(t *testing.T) {
	a := []string{"apple", "banana"}
	b := []string{"cherry", "date"}

	score := JaccardSimilarity(a, b)
	if score != 0.0 {
		t.Errorf("JaccardSimilarity() = %v, want 0.0", score)
	}
}

func TestJaccardSimilarity_Overlap(t *testing.T) {
	a := []string{"apple", "banana", "cherry"}
	b := []string{"banana", "cherry", "date"}

	// intersection 2, union 4
	score := JaccardSimilarity(a, b)
	if math.Abs(score-0.5) > 1e-9 {
		t.Errorf("JaccardSimilarity() = %v, want 0.5", score)
	}
}

func TestJaccardSimilarity_Empty(t *testing.T) {
	if score := JaccardSimilarity(nil, nil); score != 1.0 {
		t.Errorf("JaccardSimilarity(nil, nil) = %v, want 1.0", score)
	}
	if score := JaccardSimilarity([]string{"a"}, nil); score != 0.0 {
		t.Errorf("JaccardSimilarity(a, nil) = %v, want 0.0", score)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Boa Clareza", "boa clareza"},
		{"  Ritmo,   cadência! ", "ritmo cadência"},
		{"Coesão-textual", "coesão textual"},
		{"...", ""},
		{"Nota 10", "nota 10"},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	if w.Strengths+w.Improvements != 1.0 {
		t.Errorf("weights sum = %v, want 1.0", w.Strengths+w.Improvements)
	}
}

func TestNewConsensusChecker_ClampsShare(t *testing.T) {
	for _, share := range []float64{0, -1, 1.5} {
		if c := NewConsensusChecker(share, DefaultWeights()); c.MinShare != 0.5 {
			t.Errorf("NewConsensusChecker(%v).MinShare = %v, want 0.5", share, c.MinShare)
		}
	}
	if c := NewConsensusChecker(0.75, DefaultWeights()); c.MinShare != 0.75 {
		t.Errorf("MinShare = %v, want 0.75", c.MinShare)
	}
}

func TestConsensusChecker_FullAgreement(t *testing.T) {
	checker := NewConsensusChecker(0.5, DefaultWeights())
	result := checker.Evaluate([]core.Verdict{
		verdictWith(80, []string{"Clareza", "Ritmo"}, []string{"Final"}),
		verdictWith(90, []string{"clareza.", "RITMO"}, []string{"final"}),
	})

	if result.Score != 1.0 {
		t.Errorf("Score = %v, want 1.0", result.Score)
	}
	if result.Considered != 2 {
		t.Errorf("Considered = %d, want 2", result.Considered)
	}
	if result.ScoreSpread != 10 {
		t.Errorf("ScoreSpread = %v, want 10", result.ScoreSpread)
	}
	if len(result.Strengths) != 2 || result.Strengths[0] != "Clareza" || result.Strengths[1] != "Ritmo" {
		t.Errorf("Strengths = %v, want [Clareza Ritmo] with first spelling kept", result.Strengths)
	}
	if len(result.Improvements) != 1 || result.Improvements[0] != "Final" {
		t.Errorf("Improvements = %v, want [Final]", result.Improvements)
	}
}

func TestConsensusChecker_PartialAgreement(t *testing.T) {
	checker := NewConsensusChecker(0.5, DefaultWeights())
	result := checker.Evaluate([]core.Verdict{
		verdictWith(70, []string{"a", "b"}, []string{"x"}),
		verdictWith(70, []string{"b", "c"}, []string{"y"}),
	})

	// strengths 1/3, improvements 0
	want := (1.0/3.0)*0.5 + 0*0.5
	if math.Abs(result.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", result.Score, want)
	}
	if got := result.CategoryScores["strengths"]; math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("CategoryScores[strengths] = %v, want 1/3", got)
	}
	if got := result.CategoryScores["improvements"]; got != 0 {
		t.Errorf("CategoryScores[improvements] = %v, want 0", got)
	}
}

func TestConsensusChecker_RecurringOrder(t *testing.T) {
	checker := NewConsensusChecker(0.5, DefaultWeights())
	result := checker.Evaluate([]core.Verdict{
		verdictWith(70, []string{"a", "b"}, nil),
		verdictWith(70, []string{"b", "c"}, nil),
		verdictWith(70, []string{"b", "c", "d"}, nil),
		verdictWith(70, []string{"a", "a"}, nil),
	})

	// b:3, a:2, c:2 (a seen first), d:1 is under half of four.
	want := []string{"b", "a", "c"}
	if len(result.Strengths) != len(want) {
		t.Fatalf("Strengths = %v, want %v", result.Strengths, want)
	}
	for i := range want {
		if result.Strengths[i] != want[i] {
			t.Errorf("Strengths[%d] = %q, want %q", i, result.Strengths[i], want[i])
		}
	}
	if len(result.Improvements) != 0 {
		t.Errorf("Improvements = %v, want empty", result.Improvements)
	}
}

func TestConsensusChecker_SkipsFailedVerdicts(t *testing.T) {
	checker := NewConsensusChecker(0.5, DefaultWeights())
	failed := core.ErrorVerdict(core.ContentText, "x", core.ErrTimeout("late"))
	result := checker.Evaluate([]core.Verdict{
		verdictWith(60, []string{"a"}, nil),
		failed,
	})

	if result.Considered != 1 {
		t.Errorf("Considered = %d, want 1", result.Considered)
	}
	if result.Score != 1.0 {
		t.Errorf("Score = %v, want 1.0 with a single opinion", result.Score)
	}
	if len(result.Strengths) != 1 || result.Strengths[0] != "a" {
		t.Errorf("Strengths = %v, want [a]", result.Strengths)
	}
}

func TestConsensusChecker_EmptyInput(t *testing.T) {
	result := NewConsensusChecker(0.5, DefaultWeights()).Evaluate(nil)

	if result.Score != 1.0 || result.Considered != 0 || result.ScoreSpread != 0 {
		t.Errorf("unexpected result for empty input: %+v", result)
	}
	if result.Strengths == nil || len(result.Strengths) != 0 {
		t.Errorf("Strengths = %#v, want empty non-nil slice", result.Strengths)
	}
}
