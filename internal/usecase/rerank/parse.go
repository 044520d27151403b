package rerank

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/kailas-cloud/jobmatch/internal/domain/match"
)

// ErrNoList means the judge text held no recognizable list of records.
var ErrNoList = errors.New("no judgment list in response")

const fence = "```"

var langTag = regexp.MustCompile(`^[a-zA-Z0-9_+\-]*\s*`)

// StripCodeFences returns the text between the first and last fence with a
// leading language tag removed. A lone opening fence (cut-off reply) is
// dropped the same way; text without fences is only trimmed.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	first := strings.Index(s, fence)
	if first < 0 {
		return s
	}
	inner := s[first+len(fence):]
	if last := strings.LastIndex(s, fence); last > first {
		inner = s[first+len(fence) : last]
	}
	return strings.TrimSpace(langTag.ReplaceAllString(inner, ""))
}

// listKeys are tried in order when the judge wraps the list in an object.
var listKeys = []string{"matches", "results", "jobs", "rankings", "recommendations", "data"}

// ParseJudgments leniently decodes the judge reply. It returns at most max
// valid records in judge order and the number of records it dropped.
// An error means no list could be located at all.
func ParseJudgments(raw string, max int) ([]match.Judgment, int, error) {
	text := StripCodeFences(raw)

	records, err := locateRecords(text)
	if err != nil {
		return nil, 0, err
	}

	out := make([]match.Judgment, 0, min(len(records), max))
	discarded := 0
	for _, rec := range records {
		if len(out) == max {
			break
		}
		j, ok := decodeRecord(rec)
		if !ok {
			discarded++
			continue
		}
		out = append(out, j)
	}
	return out, discarded, nil
}

func locateRecords(text string) ([]json.RawMessage, error) {
	if strings.HasPrefix(text, "{") {
		if list, ok := unwrapObject(text); ok {
			return streamArray(string(list))
		}
	}

	// The stream decoder stops at the matching close bracket, so trailing
	// prose and a missing bracket are both handled without slicing.
	start := strings.Index(text, "[")
	if start < 0 {
		return nil, ErrNoList
	}
	return streamArray(text[start:])
}

// unwrapObject picks the list field of a wrapping object.
func unwrapObject(text string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	for _, k := range listKeys {
		if v, ok := obj[k]; ok && isArray(v) {
			return v, true
		}
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if isArray(obj[k]) {
			return obj[k], true
		}
	}
	return nil, false
}

func isArray(v json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(v)), "[")
}

// streamArray decodes array elements one by one and stops at the first
// element that does not decode, keeping the complete ones before it.
func streamArray(text string) ([]json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoList, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, ErrNoList
	}

	var records []json.RawMessage
	for dec.More() {
		var rec json.RawMessage
		if err := dec.Decode(&rec); err != nil {
			break
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeRecord discards a record only for a bad jobId. Any other field that
// fails to decode falls back to its zero value.
func decodeRecord(rec json.RawMessage) (match.Judgment, bool) {
	dec := json.NewDecoder(strings.NewReader(string(rec)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return match.Judgment{}, false
	}

	id, ok := coerceJobID(fields["jobId"])
	if !ok {
		return match.Judgment{}, false
	}

	var (
		reason  string
		matched []string
	)
	if !weakDecode(fields["matchReason"], &reason) {
		reason = ""
	}
	if !weakDecode(fields["matchedSkills"], &matched) {
		matched = nil
	}
	skills := make([]string, 0, len(matched))
	for _, sk := range matched {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}
	return match.Judgment{
		JobID:                  id,
		MatchReason:            reason,
		MatchedSkills:          skills,
		SkillMatchPercent:      percentField(fields, "skillMatchPercent"),
		IndustryMatchPercent:   percentField(fields, "industryMatchPercent"),
		ExperienceMatchPercent: percentField(fields, "experienceMatchPercent"),
	}, true
}

// weakDecode decodes one field with weak typing, so a lone string becomes a
// one-element list and numbers become strings.
func weakDecode(v, out any) bool {
	if v == nil {
		return true
	}
	md, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       percentHook,
		Result:           out,
	})
	if err != nil {
		return false
	}
	return md.Decode(v) == nil
}

// percentField reads a percent, clamped to [0,100]. Missing or garbage is 0.
func percentField(fields map[string]any, key string) float64 {
	var f float64
	if !weakDecode(fields[key], &f) {
		return 0
	}
	return clampPercent(f)
}

var stringType = reflect.TypeOf("")

// percentHook turns "87.5%" and " 90 " into floats before weak decoding.
// Text that is not a number ("high") decodes as 0.
func percentHook(from, to reflect.Type, data any) (any, error) {
	if from != stringType || to.Kind() != reflect.Float64 {
		return data, nil
	}
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(data.(string)), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0, nil
	}
	return f, nil
}

func coerceJobID(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case float64:
		return integral(t)
	case int64:
		return t, true
	case int:
		return int64(t), true
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return integral(f)
	default:
		return 0, false
	}
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

func clampPercent(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 100:
		return 100
	default:
		return f
	}
}
