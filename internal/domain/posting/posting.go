// Package posting holds the job posting record read from the corpus.
package posting

import "strings"

// VectorState describes what the corpus holds for a posting's embedding.
type VectorState int

const (
	// VectorAbsent means the posting has not been indexed yet.
	VectorAbsent VectorState = iota
	// VectorValid means the stored vector decoded cleanly.
	VectorValid
	// VectorCorrupt means a vector is stored but cannot be decoded or scored.
	VectorCorrupt
)

func (s VectorState) String() string {
	switch s {
	case VectorValid:
		return "valid"
	case VectorCorrupt:
		return "corrupt"
	default:
		return "absent"
	}
}

// Posting is a job posting. It is owned by the corpus and read-only here.
// JSON names match the caller-visible match record.
type Posting struct {
	ID               int64    `json:"jobId"`
	Title            string   `json:"jobTitle"`
	Company          string   `json:"company"`
	Description      string   `json:"jobDescription"`
	Skills           []string `json:"skills"`
	Experience       string   `json:"experience"`
	SalaryRange      string   `json:"salaryRange"`
	Location         string   `json:"location"`
	Qualifications   string   `json:"qualifications"`
	Country          string   `json:"country"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	WorkType         string   `json:"workType"`
	CompanySize      int64    `json:"companySize"`
	JobPostingDate   string   `json:"jobPostingDate"`
	Preference       string   `json:"preference"`
	ContactPerson    string   `json:"contactPerson"`
	Contact          string   `json:"contact"`
	Role             string   `json:"role"`
	JobPortal        string   `json:"jobPortal"`
	Benefits         string   `json:"benefits"`
	Responsibilities string   `json:"responsibilities"`
	CompanyProfile   string   `json:"companyProfile"`

	// Embedding is nil when the posting is not indexed.
	Embedding []float32 `json:"-"`
	// EmbeddingErr is set when a vector is stored but unusable.
	EmbeddingErr error `json:"-"`
}

// VectorState classifies the stored embedding.
func (p *Posting) VectorState() VectorState {
	switch {
	case p.EmbeddingErr != nil:
		return VectorCorrupt
	case p.Embedding == nil:
		return VectorAbsent
	default:
		return VectorValid
	}
}

// Snippet is the subset of a posting sent to the generative judge.
type Snippet struct {
	JobID       int64    `json:"jobId"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// Snippet builds the judge view of the posting. Skills is never nil.
func (p *Posting) Snippet() Snippet {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return Snippet{
		JobID:       p.ID,
		Title:       p.Title,
		Company:     p.Company,
		Description: p.Description,
		Skills:      skills,
	}
}

// EmbeddingText is the text a posting is indexed under.
func (p *Posting) EmbeddingText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.Description, strings.Join(p.Skills, ", ")} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
