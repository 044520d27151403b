package rerank

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
)

//go:embed prompt.md
var promptTemplate string

// BuildPrompt renders the judge request. profile is sent as-is; a nil
// profile renders as an empty object.
func BuildPrompt(skills []string, profile map[string]any, snippets []posting.Snippet, maxMatches int) (string, error) {
	if profile == nil {
		profile = map[string]any{}
	}
	if snippets == nil {
		snippets = []posting.Snippet{}
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	jobsJSON, err := json.MarshalIndent(snippets, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snippets: %w", err)
	}

	r := strings.NewReplacer(
		"{{SKILLS}}", strings.Join(skills, ", "),
		"{{PROFILE_JSON}}", string(profileJSON),
		"{{JOBS_JSON}}", string(jobsJSON),
		"{{MAX_MATCHES}}", strconv.Itoa(maxMatches),
	)
	return r.Replace(promptTemplate), nil
}
