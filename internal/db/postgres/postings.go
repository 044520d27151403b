package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/jobmatch/internal/db"
)

// Row is a job_postings row. Vector is nil when embedding IS NULL;
// VectorErr is set when the stored text does not decode.
type Row struct {
	ID               int64
	Title            string
	Company          string
	Description      string
	Skills           []string
	Experience       string
	SalaryRange      string
	Location         string
	Qualifications   string
	Country          string
	Latitude         float64
	Longitude        float64
	WorkType         string
	CompanySize      int64
	JobPostingDate   string
	Preference       string
	ContactPerson    string
	Contact          string
	Role             string
	JobPortal        string
	Benefits         string
	Responsibilities string
	CompanyProfile   string

	Vector    []float32
	VectorErr error
}

var columns = []string{
	"id", "job_title", "company", "job_description", "skills", "experience",
	"salary_range", "location", "qualifications", "country", "latitude", "longitude",
	"work_type", "company_size", "job_posting_date", "preference", "contact_person",
	"contact", "role", "job_portal", "benefits", "responsibilities", "company_profile",
}

// selectList reads every column null-safe; embedding comes back as text.
func selectList() string {
	parts := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		switch c {
		case "id":
			parts = append(parts, c)
		case "skills":
			parts = append(parts, "COALESCE(skills, '{}')")
		case "latitude", "longitude":
			parts = append(parts, "COALESCE("+c+", 0)")
		case "company_size":
			parts = append(parts, "COALESCE(company_size, 0)")
		default:
			parts = append(parts, "COALESCE("+c+"::text, '')")
		}
	}
	parts = append(parts, "embedding::text")
	return strings.Join(parts, ", ")
}

// ListPostings returns every posting ordered by id.
func (s *Store) ListPostings(ctx context.Context) ([]Row, error) {
	query := "SELECT " + selectList() + " FROM job_postings ORDER BY id"
	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r   Row
			emb *string
		)
		if err := rows.Scan(
			&r.ID, &r.Title, &r.Company, &r.Description, &r.Skills, &r.Experience,
			&r.SalaryRange, &r.Location, &r.Qualifications, &r.Country, &r.Latitude, &r.Longitude,
			&r.WorkType, &r.CompanySize, &r.JobPostingDate, &r.Preference, &r.ContactPerson,
			&r.Contact, &r.Role, &r.JobPortal, &r.Benefits, &r.Responsibilities, &r.CompanyProfile,
			&emb,
		); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("scan posting: %w", err)}
		}
		if emb != nil {
			r.Vector, r.VectorErr = decodeVector(*emb)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

func decodeVector(text string) ([]float32, error) {
	var v pgvector.Vector
	if err := v.Scan(text); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	return v.Slice(), nil
}

// UpsertPosting inserts or replaces a posting's metadata. The embedding
// column is left untouched.
func (s *Store) UpsertPosting(ctx context.Context, r Row) error {
	placeholders := make([]string, len(columns))
	updates := make([]string, 0, len(columns)-1)
	for i, c := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if c != "id" {
			updates = append(updates, c+" = EXCLUDED."+c)
		}
	}
	query := "INSERT INTO job_postings (" + strings.Join(columns, ", ") + ") VALUES (" +
		strings.Join(placeholders, ", ") + ") ON CONFLICT (id) DO UPDATE SET " + strings.Join(updates, ", ")

	_, err := s.q.Exec(ctx, query,
		r.ID, r.Title, r.Company, r.Description, r.Skills, r.Experience,
		r.SalaryRange, r.Location, r.Qualifications, r.Country, r.Latitude, r.Longitude,
		r.WorkType, r.CompanySize, r.JobPostingDate, r.Preference, r.ContactPerson,
		r.Contact, r.Role, r.JobPortal, r.Benefits, r.Responsibilities, r.CompanyProfile,
	)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("upsert posting %d: %w", r.ID, err)}
	}
	return nil
}

// SetEmbedding stores the vector for one posting.
func (s *Store) SetEmbedding(ctx context.Context, id int64, vec []float32) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE job_postings SET embedding = $2 WHERE id = $1`,
		id, pgvector.NewVector(vec),
	)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("set embedding %d: %w", id, err)}
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNoRows
	}
	return nil
}
