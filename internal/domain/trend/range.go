// Package trend holds the salary-trend types and the best-effort parsers for
// the loosely formatted salary and experience columns.
package trend

import (
	"regexp"
	"strconv"
	"strings"
)

// Range is a parsed two-sided numeric range.
type Range struct {
	Low  int
	High int
}

// Midpoint returns the arithmetic mean of both ends.
func (r Range) Midpoint() float64 {
	return (float64(r.Low) + float64(r.High)) / 2
}

var integerRe = regexp.MustCompile(`\d+`)

// ParseExperienceRange extracts a range from text such as "3 to 5 Years".
// The text must embed exactly two integers; any other count is a failure.
func ParseExperienceRange(text string) (Range, bool) {
	nums := integerRe.FindAllString(text, -1)
	if len(nums) != 2 {
		return Range{}, false
	}
	low, err := strconv.Atoi(nums[0])
	if err != nil {
		return Range{}, false
	}
	high, err := strconv.Atoi(nums[1])
	if err != nil {
		return Range{}, false
	}
	return Range{Low: low, High: high}, true
}

// ParseSalaryRange extracts a range from text such as "$60,000-$90,000".
// The text must split on "-" into exactly two parts, and each part must keep
// at least one digit after every non-digit is stripped.
func ParseSalaryRange(text string) (Range, bool) {
	parts := strings.Split(text, "-")
	if len(parts) != 2 {
		return Range{}, false
	}
	low, ok := digitsOnly(parts[0])
	if !ok {
		return Range{}, false
	}
	high, ok := digitsOnly(parts[1])
	if !ok {
		return Range{}, false
	}
	return Range{Low: low, High: high}, true
}

func digitsOnly(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}
