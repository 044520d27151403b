package matching

import (
	"math"

	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
)

// Lookup resolves a posting by id.
type Lookup func(id int64) (*posting.Posting, bool)

// Reconcile merges judgments into the similarity-ordered candidates.
// Candidates without a judgment (or without a posting) are dropped, a
// duplicate judgment id keeps the last record, and the output keeps
// candidate order. topN truncates after merging; topN <= 0 keeps all.
func Reconcile(candidates []match.Candidate, judgments []match.Judgment, lookup Lookup, topN int) []match.Result {
	byID := make(map[int64]match.Judgment, len(judgments))
	for _, j := range judgments {
		byID[j.JobID] = j
	}

	results := make([]match.Result, 0, min(len(candidates), len(byID)))
	for _, c := range candidates {
		j, ok := byID[c.JobID()]
		if !ok {
			continue
		}
		p, ok := lookup(c.JobID())
		if !ok {
			continue
		}
		results = append(results, match.Result{
			Posting:                *p,
			MatchScore:             roundScore(c.Score()),
			MatchedSkills:          j.MatchedSkills,
			MatchReason:            j.MatchReason,
			SkillMatchPercent:      j.SkillMatchPercent,
			IndustryMatchPercent:   j.IndustryMatchPercent,
			ExperienceMatchPercent: j.ExperienceMatchPercent,
		})
	}

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results
}

func roundScore(s float64) float64 {
	return math.Round(s*100) / 100
}
