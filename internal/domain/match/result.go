package match

import "github.com/kailas-cloud/jobmatch/internal/domain/posting"

// Result is a reconciled match: posting fields plus the judge annotations
// and the rounded similarity score.
type Result struct {
	posting.Posting

	MatchScore             float64  `json:"matchScore"`
	MatchedSkills          []string `json:"matchedSkills"`
	MatchReason            string   `json:"matchReason"`
	SkillMatchPercent      float64  `json:"skillMatchPercent"`
	IndustryMatchPercent   float64  `json:"industryMatchPercent"`
	ExperienceMatchPercent float64  `json:"experienceMatchPercent"`
}

// Report is the outcome of a retrieve-and-rank run. The counts tell
// "nothing was similar" apart from "the judge returned nothing".
type Report struct {
	RunID              string      `json:"runId"`
	Matches            []Result    `json:"matches"`
	CandidateCount     int         `json:"candidateCount"`
	JudgedCount        int         `json:"judgedCount"`
	DiscardedJudgments int         `json:"discardedJudgments"`
	JudgeStatus        JudgeStatus `json:"judgeStatus"`
	Degraded           bool        `json:"degraded"`
}

// Titles returns the unique job titles of the matches in order.
func (r Report) Titles() []string {
	return UniqueTitles(r.Matches)
}

// UniqueTitles returns each result's title once, in first-seen order.
func UniqueTitles(results []Result) []string {
	titles := make([]string, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for i := range results {
		t := results[i].Title
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		titles = append(titles, t)
	}
	return titles
}
