package match

// Judgment is one record returned by the generative judge.
type Judgment struct {
	JobID                  int64    `json:"jobId"`
	MatchReason            string   `json:"matchReason"`
	MatchedSkills          []string `json:"matchedSkills"`
	SkillMatchPercent      float64  `json:"skillMatchPercent"`
	IndustryMatchPercent   float64  `json:"industryMatchPercent"`
	ExperienceMatchPercent float64  `json:"experienceMatchPercent"`
}

// JudgeStatus is the outcome of the judge stage of a run.
type JudgeStatus string

// Judge outcomes. Everything except JudgeOK and JudgeNotCalled is a degraded run.
const (
	JudgeNotCalled   JudgeStatus = "not_called"
	JudgeOK          JudgeStatus = "ok"
	JudgeEmpty       JudgeStatus = "empty"
	JudgeUnparseable JudgeStatus = "unparseable"
	JudgeFailed      JudgeStatus = "failed"
	JudgeTimeout     JudgeStatus = "timeout"
)

// Degraded reports whether the judge stage lost information.
func (s JudgeStatus) Degraded() bool {
	switch s {
	case JudgeOK, JudgeNotCalled:
		return false
	default:
		return true
	}
}

// Verdict is what the judge stage hands to reconciliation.
type Verdict struct {
	Judgments []Judgment
	Discarded int
	Status    JudgeStatus
}
