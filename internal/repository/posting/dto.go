package posting

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	domposting "github.com/kailas-cloud/jobmatch/internal/domain/posting"
)

// jsonDoc is the stored document shape. Field names follow the corpus
// column names; the embedding stays raw so a bad array only taints its
// own posting.
type jsonDoc struct {
	ID               int64           `json:"id"`
	JobTitle         string          `json:"job_title"`
	Company          string          `json:"company"`
	JobDescription   string          `json:"job_description"`
	Skills           []string        `json:"skills"`
	Experience       string          `json:"experience"`
	SalaryRange      string          `json:"salary_range"`
	Location         string          `json:"location"`
	Qualifications   string          `json:"qualifications"`
	Country          string          `json:"country"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	WorkType         string          `json:"work_type"`
	CompanySize      int64           `json:"company_size"`
	JobPostingDate   string          `json:"job_posting_date"`
	Preference       string          `json:"preference"`
	ContactPerson    string          `json:"contact_person"`
	Contact          string          `json:"contact"`
	Role             string          `json:"role"`
	JobPortal        string          `json:"job_portal"`
	Benefits         string          `json:"benefits"`
	Responsibilities string          `json:"responsibilities"`
	CompanyProfile   string          `json:"company_profile"`
	Embedding        json.RawMessage `json:"embedding"`
}

var jsonNull = []byte("null")

func buildJSONDoc(p *domposting.Posting) (jsonDoc, error) {
	emb := json.RawMessage(jsonNull)
	if p.Embedding != nil {
		raw, err := json.Marshal(p.Embedding)
		if err != nil {
			return jsonDoc{}, fmt.Errorf("marshal embedding: %w", err)
		}
		emb = raw
	}
	return jsonDoc{
		ID:               p.ID,
		JobTitle:         p.Title,
		Company:          p.Company,
		JobDescription:   p.Description,
		Skills:           p.Skills,
		Experience:       p.Experience,
		SalaryRange:      p.SalaryRange,
		Location:         p.Location,
		Qualifications:   p.Qualifications,
		Country:          p.Country,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		WorkType:         p.WorkType,
		CompanySize:      p.CompanySize,
		JobPostingDate:   p.JobPostingDate,
		Preference:       p.Preference,
		ContactPerson:    p.ContactPerson,
		Contact:          p.Contact,
		Role:             p.Role,
		JobPortal:        p.JobPortal,
		Benefits:         p.Benefits,
		Responsibilities: p.Responsibilities,
		CompanyProfile:   p.CompanyProfile,
		Embedding:        emb,
	}, nil
}

// parseJSONDoc decodes a stored document. A malformed document is an error;
// a malformed embedding is recorded on the posting instead.
func parseJSONDoc(raw []byte) (domposting.Posting, error) {
	var d jsonDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return domposting.Posting{}, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}
	p := domposting.Posting{
		ID:               d.ID,
		Title:            d.JobTitle,
		Company:          d.Company,
		Description:      d.JobDescription,
		Skills:           d.Skills,
		Experience:       d.Experience,
		SalaryRange:      d.SalaryRange,
		Location:         d.Location,
		Qualifications:   d.Qualifications,
		Country:          d.Country,
		Latitude:         d.Latitude,
		Longitude:        d.Longitude,
		WorkType:         d.WorkType,
		CompanySize:      d.CompanySize,
		JobPostingDate:   d.JobPostingDate,
		Preference:       d.Preference,
		ContactPerson:    d.ContactPerson,
		Contact:          d.Contact,
		Role:             d.Role,
		JobPortal:        d.JobPortal,
		Benefits:         d.Benefits,
		Responsibilities: d.Responsibilities,
		CompanyProfile:   d.CompanyProfile,
	}
	p.Embedding, p.EmbeddingErr = decodeEmbedding(d.Embedding)
	return p, nil
}

func decodeEmbedding(raw json.RawMessage) ([]float32, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return nil, nil
	}
	var vec []float32
	if err := json.Unmarshal(trimmed, &vec); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptVector, err)
	}
	if err := domain.ValidateVector(vec); err != nil {
		return nil, err
	}
	return vec, nil
}
