// Package match holds the request-scoped types of a match run and its
// caller-visible result.
package match

// Candidate is a posting that passed the similarity threshold.
type Candidate struct {
	jobID int64
	score float64
}

// NewCandidate creates a similarity candidate.
func NewCandidate(jobID int64, score float64) Candidate {
	return Candidate{jobID: jobID, score: score}
}

// JobID returns the posting identifier.
func (c Candidate) JobID() int64 { return c.jobID }

// Score returns the cosine similarity to the query.
func (c Candidate) Score() float64 { return c.score }
