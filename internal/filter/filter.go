package filter

import (
	"sort"
	"time"

	"paperdigest/internal/domain"
)

// Params bound the admission policy for one run.
type Params struct {
	Now         time.Time
	Window      time.Duration
	AnalysisCap int
}

// Admit selects the candidates eligible for classification: entries with
// a missing identifier or publish time are dropped, entries already in
// history are skipped, and the walk stops at the first entry older than
// the admission window. The feed contract says entries arrive newest
// first, but a stable re-sort is applied before the walk so a misordered
// feed cannot silently truncate the batch through the early exit.
// The result is capped at AnalysisCap when the cap is positive.
func Admit(raw []domain.Paper, history domain.History, p Params) []domain.Paper {
	candidates := make([]domain.Paper, len(raw))
	copy(candidates, raw)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PublishedAt.After(candidates[j].PublishedAt)
	})

	cutoff := p.Now.Add(-p.Window)
	admitted := make([]domain.Paper, 0, len(candidates))

	for _, paper := range candidates {
		if paper.ID == "" || paper.PublishedAt.IsZero() {
			continue
		}
		if _, seen := history[paper.ID]; seen {
			continue
		}
		if paper.PublishedAt.Before(cutoff) {
			break
		}
		admitted = append(admitted, paper)
		if p.AnalysisCap > 0 && len(admitted) >= p.AnalysisCap {
			break
		}
	}

	return admitted
}
