package posting

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/jobmatch/internal/db"
	"github.com/kailas-cloud/jobmatch/internal/db/postgres"
	"github.com/kailas-cloud/jobmatch/internal/domain"
	domposting "github.com/kailas-cloud/jobmatch/internal/domain/posting"
)

// pgStore is the consumer interface over the postgres store (ISP).
type pgStore interface {
	ListPostings(ctx context.Context) ([]postgres.Row, error)
	UpsertPosting(ctx context.Context, r postgres.Row) error
	SetEmbedding(ctx context.Context, id int64, vec []float32) error
}

// PGRepo keeps postings in the job_postings table.
type PGRepo struct {
	store pgStore
}

// NewPostgres creates a PostgreSQL-backed posting repository.
func NewPostgres(s pgStore) *PGRepo {
	return &PGRepo{store: s}
}

// LoadPostings returns every row as a posting.
func (r *PGRepo) LoadPostings(ctx context.Context) ([]domposting.Posting, error) {
	rows, err := r.store.ListPostings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	out := make([]domposting.Posting, len(rows))
	for i := range rows {
		out[i] = fromRow(&rows[i])
	}
	return out, nil
}

// Upsert writes posting metadata; embeddings go through SetEmbeddings.
func (r *PGRepo) Upsert(ctx context.Context, postings []domposting.Posting) error {
	for i := range postings {
		if err := r.store.UpsertPosting(ctx, toRow(&postings[i])); err != nil {
			return err
		}
		if postings[i].Embedding != nil {
			if err := r.store.SetEmbedding(ctx, postings[i].ID, postings[i].Embedding); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetEmbeddings stores vectors for existing rows.
func (r *PGRepo) SetEmbeddings(ctx context.Context, vectors map[int64][]float32) error {
	for id, vec := range vectors {
		if err := r.store.SetEmbedding(ctx, id, vec); err != nil {
			if errors.Is(err, db.ErrNoRows) {
				return fmt.Errorf("posting %d: %w", id, domain.ErrNotFound)
			}
			return err
		}
	}
	return nil
}

func fromRow(r *postgres.Row) domposting.Posting {
	p := domposting.Posting{
		ID:               r.ID,
		Title:            r.Title,
		Company:          r.Company,
		Description:      r.Description,
		Skills:           r.Skills,
		Experience:       r.Experience,
		SalaryRange:      r.SalaryRange,
		Location:         r.Location,
		Qualifications:   r.Qualifications,
		Country:          r.Country,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		WorkType:         r.WorkType,
		CompanySize:      r.CompanySize,
		JobPostingDate:   r.JobPostingDate,
		Preference:       r.Preference,
		ContactPerson:    r.ContactPerson,
		Contact:          r.Contact,
		Role:             r.Role,
		JobPortal:        r.JobPortal,
		Benefits:         r.Benefits,
		Responsibilities: r.Responsibilities,
		CompanyProfile:   r.CompanyProfile,
	}
	switch {
	case r.VectorErr != nil:
		p.EmbeddingErr = fmt.Errorf("%w: %w", domain.ErrCorruptVector, r.VectorErr)
	case r.Vector != nil:
		if err := domain.ValidateVector(r.Vector); err != nil {
			p.EmbeddingErr = err
		} else {
			p.Embedding = r.Vector
		}
	}
	return p
}

func toRow(p *domposting.Posting) postgres.Row {
	return postgres.Row{
		ID:               p.ID,
		Title:            p.Title,
		Company:          p.Company,
		Description:      p.Description,
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
	}
}
