// Package corpus holds the immutable, process-wide view of the job corpus.
// It is loaded once at start and shared by concurrent requests without locks.
package corpus

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
)

// Source loads the full corpus from a backing store.
type Source interface {
	LoadPostings(ctx context.Context) ([]posting.Posting, error)
}

// Stats counts postings by vector state.
type Stats struct {
	Total   int `json:"total"`
	Indexed int `json:"indexed"`
	Absent  int `json:"absent"`
	Corrupt int `json:"corrupt"`
	// Dimensions is the length of the first valid vector, 0 when none.
	Dimensions int `json:"dimensions"`
}

// Snapshot is a read-only corpus. Returned slices are shared and must not
// be modified.
type Snapshot struct {
	postings []posting.Posting
	byID     map[int64]int
	byTitle  map[string][]int
	stats    Stats
	loadedAt time.Time
}

// New builds a snapshot from postings. Postings are ordered by id; a
// duplicate id keeps the last occurrence.
func New(postings []posting.Posting) *Snapshot {
	dedup := make(map[int64]int, len(postings))
	ordered := make([]posting.Posting, 0, len(postings))
	for i := range postings {
		if j, ok := dedup[postings[i].ID]; ok {
			ordered[j] = postings[i]
			continue
		}
		dedup[postings[i].ID] = len(ordered)
		ordered = append(ordered, postings[i])
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	s := &Snapshot{
		postings: ordered,
		byID:     make(map[int64]int, len(ordered)),
		byTitle:  make(map[string][]int),
		loadedAt: time.Now(),
	}
	for i := range ordered {
		p := &ordered[i]
		s.byID[p.ID] = i
		s.byTitle[p.Title] = append(s.byTitle[p.Title], i)

		s.stats.Total++
		switch p.VectorState() {
		case posting.VectorValid:
			s.stats.Indexed++
			if s.stats.Dimensions == 0 {
				s.stats.Dimensions = len(p.Embedding)
			}
		case posting.VectorCorrupt:
			s.stats.Corrupt++
		default:
			s.stats.Absent++
		}
	}
	return s
}

// Load reads the corpus from src and logs its composition.
func Load(ctx context.Context, src Source, logger *zap.Logger) (*Snapshot, error) {
	postings, err := src.LoadPostings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	s := New(postings)
	if logger != nil {
		logger.Info("Corpus loaded",
			zap.Int("postings", s.stats.Total),
			zap.Int("indexed", s.stats.Indexed),
			zap.Int("absent", s.stats.Absent),
			zap.Int("corrupt", s.stats.Corrupt),
			zap.Int("dimensions", s.stats.Dimensions),
		)
	}
	return s, nil
}

// Postings returns all postings in ascending id order.
func (s *Snapshot) Postings() []posting.Posting { return s.postings }

// Get returns the posting with the given id.
func (s *Snapshot) Get(id int64) (*posting.Posting, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.postings[i], true
}

// ByTitle returns every posting whose title equals title exactly.
func (s *Snapshot) ByTitle(title string) []posting.Posting {
	idx := s.byTitle[title]
	out := make([]posting.Posting, len(idx))
	for i, j := range idx {
		out[i] = s.postings[j]
	}
	return out
}

// Len returns the number of postings.
func (s *Snapshot) Len() int { return len(s.postings) }

// Stats returns the vector state counts.
func (s *Snapshot) Stats() Stats { return s.stats }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }
