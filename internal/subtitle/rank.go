package subtitle

import (
	"math"
	"sort"
)

// Mode selects how many candidates to materialize per language.
type Mode int

const (
	// Best downloads only the top-ranked candidate for each language.
	Best Mode = iota
	// All downloads every candidate, each tagged with a 1-based index.
	All
)

func (m Mode) String() string {
	if m == All {
		return "all"
	}
	return "best"
}

// RankByLanguage returns the candidates whose language equals lang (exact,
// case-sensitive comparison, no normalization), ordered best first.
//
// Scores sort descending under a total order that places NaN last: two NaNs
// compare equal, a single NaN loses to any number. The sort is stable, so
// candidates with equal scores (and NaN pairs) keep their response order and
// the output is fully deterministic.
func RankByLanguage(candidates []Candidate, lang string) []Candidate {
	group := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Lang == lang {
			group = append(group, candidate)
		}
	}
	sort.SliceStable(group, func(i, j int) bool {
		return scoreBefore(group[i].Score, group[j].Score)
	})
	return group
}

// scoreBefore reports whether a ranks strictly ahead of b.
func scoreBefore(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a > b
	}
}
