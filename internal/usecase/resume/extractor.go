// Package resume turns raw resume text into a skill list and a free-form
// profile using the generative model.
package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/profile"
	"github.com/kailas-cloud/jobmatch/internal/logger"
	"github.com/kailas-cloud/jobmatch/internal/usecase/rerank"
)

var skillKeys = []string{"skills", "resumeSkills", "professionalSkills"}

// Extractor calls the generator once per extraction. Failures are logged
// and yield empty results.
type Extractor struct {
	gen      domain.Generator
	provider string
	model    string
	timeout  time.Duration
}

// DefaultTimeout bounds each extraction call unless WithTimeout overrides it.
const DefaultTimeout = 60 * time.Second

// NewExtractor creates an extractor.
func NewExtractor(gen domain.Generator, provider, model string) *Extractor {
	return &Extractor{gen: gen, provider: provider, model: model, timeout: DefaultTimeout}
}

// WithTimeout overrides the per-call deadline. Non-positive values are ignored.
func (e *Extractor) WithTimeout(d time.Duration) *Extractor {
	if d > 0 {
		e.timeout = d
	}
	return e
}

// ExtractSkills returns lowercased, trimmed, deduplicated skills in the
// order the model listed them.
func (e *Extractor) ExtractSkills(ctx context.Context, text string) []string {
	log := logger.WithCommonFields(logger.FromContext(ctx), e.provider, e.model)

	raw, err := e.generate(ctx, skillsPrompt+text)
	if err != nil {
		log.Warn("Skill extraction failed", zap.Error(err))
		return []string{}
	}
	skills, err := ParseSkills(raw)
	if err != nil {
		log.Warn("Skill extraction unparseable",
			zap.String("response_preview", logger.TruncateForLog(raw, 200)),
			zap.Error(err),
		)
		return []string{}
	}
	return skills
}

// ExtractProfile returns the model's JSON profile, or an empty map.
func (e *Extractor) ExtractProfile(ctx context.Context, text string) map[string]any {
	log := logger.WithCommonFields(logger.FromContext(ctx), e.provider, e.model)

	raw, err := e.generate(ctx, profilePrompt+text)
	if err != nil {
		log.Warn("Profile extraction failed", zap.Error(err))
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(rerank.StripCodeFences(raw)), &out); err != nil || out == nil {
		log.Warn("Profile extraction unparseable",
			zap.String("response_preview", logger.TruncateForLog(raw, 200)),
			zap.Error(err),
		)
		return map[string]any{}
	}
	return out
}

func (e *Extractor) generate(ctx context.Context, prompt string) (string, error) {
	if e.gen == nil {
		return "", domain.ErrJudgeUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.gen.Generate(ctx, prompt) //nolint:wrapcheck // logged by caller
}

var errNotList = errors.New("response is not a list")

// ParseSkills reads a list literal, optionally fenced or wrapped in an
// object under one of the known skill keys. Non-string items are dropped.
func ParseSkills(raw string) ([]string, error) {
	cleaned := rerank.StripCodeFences(raw)

	var items []any
	if strings.HasPrefix(cleaned, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
			return nil, fmt.Errorf("wrapped object: %w", err)
		}
		for _, k := range skillKeys {
			if list, ok := obj[k].([]any); ok {
				items = list
				break
			}
		}
	} else {
		start, end := strings.Index(cleaned, "["), strings.LastIndex(cleaned, "]")
		if start >= 0 && end > start {
			cleaned = cleaned[start : end+1]
		}
		if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
			if err2 := json.Unmarshal([]byte(requote(cleaned)), &items); err2 != nil {
				return nil, fmt.Errorf("%w: %v", errNotList, err)
			}
		}
	}

	strs := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			strs = append(strs, s)
		}
	}
	return profile.NormalizeSkills(strs), nil
}

// requote rewrites single-quoted string literals as JSON strings so
// ['go', "sql"] decodes. Escaped quotes inside strings are kept.
func requote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var quote rune
	escaped := false
	for _, r := range s {
		switch {
		case quote == 0:
			if r == '\'' || r == '"' {
				quote = r
				b.WriteRune('"')
				continue
			}
			b.WriteRune(r)
		case escaped:
			escaped = false
			if r == '\'' {
				b.WriteRune(r)
				continue
			}
			b.WriteRune('\\')
			b.WriteRune(r)
		case r == '\\':
			escaped = true
		case r == quote:
			quote = 0
			b.WriteRune('"')
		case r == '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
