// Package keyword extracts weighted key phrases from free text by embedding
// n-gram candidates and scoring them against the whole document.
package keyword

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	bleveunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	domkw "github.com/kailas-cloud/jobmatch/internal/domain/keyword"
	"github.com/kailas-cloud/jobmatch/internal/logger"
)

// Defaults used when Options fields are zero.
const (
	DefaultTopN          = 25
	DefaultMaxNgram      = 3
	DefaultMaxCandidates = 2000
)

// Options configures extraction.
type Options struct {
	TopN          int
	MaxNgram      int
	MaxCandidates int
}

// Extractor is safe for concurrent use; its analyzers are stateless.
type Extractor struct {
	embed     domain.Embedder
	tokenizer analysis.Tokenizer
	lower     analysis.TokenFilter
	stop      analysis.TokenMap
	opts      Options
}

// New creates an extractor backed by embed.
func New(embed domain.Embedder, opts Options) (*Extractor, error) {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.MaxNgram <= 0 {
		opts.MaxNgram = DefaultMaxNgram
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = DefaultMaxCandidates
	}
	stop := analysis.NewTokenMap()
	if err := stop.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, err //nolint:wrapcheck // static word list
	}
	return &Extractor{
		embed:     embed,
		tokenizer: bleveunicode.NewUnicodeTokenizer(),
		lower:     lowercase.NewLowerCaseFilter(),
		stop:      stop,
		opts:      opts,
	}, nil
}

// Extract returns up to topN phrases (topN <= 0 means the configured
// default) weighted 0..100. Empty text or any embedding failure yields an
// empty slice.
func (e *Extractor) Extract(ctx context.Context, text string, topN int) []domkw.Weight {
	out := []domkw.Weight{}
	if strings.TrimSpace(text) == "" {
		return out
	}
	if topN <= 0 {
		topN = e.opts.TopN
	}
	log := logger.FromContext(ctx)

	phrases := e.Candidates(text)
	if len(phrases) == 0 {
		return out
	}

	inputs := make([]string, 0, len(phrases)+1)
	inputs = append(inputs, text)
	inputs = append(inputs, phrases...)
	vecs, err := domain.EmbedAll(ctx, e.embed, inputs)
	if err != nil {
		log.Warn("Keyword extraction failed", zap.Int("candidates", len(phrases)), zap.Error(err))
		return out
	}

	doc := vecs[0]
	type scored struct {
		phrase string
		score  float64
	}
	ranked := make([]scored, len(phrases))
	for i, p := range phrases {
		ranked[i] = scored{phrase: p, score: domain.Cosine(doc, vecs[i+1])}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].phrase < ranked[j].phrase
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for _, r := range ranked {
		out = append(out, domkw.Weight{Text: r.phrase, Value: weight(r.score)})
	}
	return out
}

// Candidates returns the distinct 1..MaxNgram word phrases of text in
// first-seen order. Phrases never span a stop word, a token without
// letters, or punctuation between tokens.
func (e *Extractor) Candidates(text string) []string {
	src := []byte(text)
	tokens := e.lower.Filter(e.tokenizer.Tokenize(src))

	var runs [][]string
	var cur []string
	prevEnd := -1
	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, cur)
			cur = nil
		}
	}
	for _, tok := range tokens {
		if prevEnd >= 0 && !onlySpace(src[prevEnd:tok.Start]) {
			flush()
		}
		prevEnd = tok.End

		term := string(tok.Term)
		if e.stop[term] || !hasLetter(term) {
			flush()
			continue
		}
		cur = append(cur, term)
	}
	flush()

	seen := make(map[string]struct{})
	var out []string
	for _, run := range runs {
		for i := range run {
			for n := 1; n <= e.opts.MaxNgram && i+n <= len(run); n++ {
				p := strings.Join(run[i:i+n], " ")
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				out = append(out, p)
				if len(out) == e.opts.MaxCandidates {
					return out
				}
			}
		}
	}
	return out
}

// weight scales a cosine score to 0..100, truncating like int(score*100).
func weight(score float64) int {
	v := int(score * 100)
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func onlySpace(b []byte) bool {
	for _, c := range string(b) {
		if !unicode.IsSpace(c) {
			return false
		}
	}
	return true
}
