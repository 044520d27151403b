// Package profile models the candidate side of a match request.
package profile

import "strings"

// Candidate is the input to a match run: an ordered skill list and an
// open-ended profile mapping. Neither is validated against a schema.
type Candidate struct {
	Skills  []string
	Profile map[string]any
}

// NormalizeSkills trims and lowercases skills, dropping empties and
// duplicates while keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// QueryText joins skills into the text encoded as the retrieval query.
func QueryText(skills []string) string {
	return strings.Join(skills, ", ")
}

// ProfileOrEmpty never returns nil so the profile always renders as an object.
func (c Candidate) ProfileOrEmpty() map[string]any {
	if c.Profile == nil {
		return map[string]any{}
	}
	return c.Profile
}
