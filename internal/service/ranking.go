package service

import (
	"fmt"
	"sort"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// Rank orders verdicts by effective score, highest first. Equal scores keep
// their input order and still receive distinct consecutive ranks.
func Rank(verdicts []core.Verdict) core.Ranking {
	entries := make([]core.RankedEntry, len(verdicts))
	for i, v := range verdicts {
		entries[i] = core.RankedEntry{Verdict: v}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EffectiveScore() > entries[j].EffectiveScore()
	})

	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].PlacementLabel = PlacementLabel(i + 1)
	}

	r := core.Ranking{Entries: entries}
	if len(entries) > 0 {
		r.Winner = &r.Entries[0]
	}
	return r
}

// PlacementLabel returns the medal for the podium and "#N" below it.
func PlacementLabel(rank int) string {
	switch rank {
	case 1:
		return "🥇 Ouro"
	case 2:
		return "🥈 Prata"
	case 3:
		return "🥉 Bronze"
	default:
		return fmt.Sprintf("#%d", rank)
	}
}
