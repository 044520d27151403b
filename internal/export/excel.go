// Package export writes match runs to xlsx workbooks.
package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	domtrend "github.com/kailas-cloud/jobmatch/internal/domain/trend"
)

// Sheet names.
const (
	MatchesSheet     = "Matches"
	ProgressionSheet = "Progression"
	LocationsSheet   = "Locations"
)

var matchHeaders = []string{
	"Rank", "Job ID", "Title", "Company", "Location", "Salary Range", "Experience",
	"Match Score", "Skill %", "Industry %", "Experience %", "Matched Skills", "Reason",
}

// WriteMatches saves matches and per-title salary trends to path. A missing
// .xlsx extension is appended.
func WriteMatches(path string, matches []match.Result, trends map[string]domtrend.Trend) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MatchesSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{ProgressionSheet, LocationsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return "", fmt.Errorf("header style: %w", err)
	}

	if err := writeMatches(f, header, matches); err != nil {
		return "", err
	}
	if err := writeTrends(f, header, trends); err != nil {
		return "", err
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func writeMatches(f *excelize.File, header int, matches []match.Result) error {
	if err := writeRow(f, MatchesSheet, 1, toAny(matchHeaders), header); err != nil {
		return err
	}
	for i := range matches {
		m := &matches[i]
		row := []any{
			i + 1, m.ID, m.Title, m.Company, m.Location, m.SalaryRange, m.Experience,
			m.MatchScore, m.SkillMatchPercent, m.IndustryMatchPercent, m.ExperienceMatchPercent,
			strings.Join(m.MatchedSkills, ", "), m.MatchReason,
		}
		if err := writeRow(f, MatchesSheet, i+2, row, 0); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(MatchesSheet, "C", "D", 30); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	return f.SetPanes(MatchesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeTrends(f *excelize.File, header int, trends map[string]domtrend.Trend) error {
	titles := make([]string, 0, len(trends))
	for t := range trends {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	if err := writeRow(f, ProgressionSheet, 1, []any{"Title", "Experience (years)", "Average Salary"}, header); err != nil {
		return err
	}
	if err := writeRow(f, LocationsSheet, 1, []any{"Title", "Region", "Average Salary"}, header); err != nil {
		return err
	}

	progRow, locRow := 2, 2
	for _, title := range titles {
		tr := trends[title]

		years := make([]float64, 0, len(tr.Progression))
		for y := range tr.Progression {
			years = append(years, y)
		}
		sort.Float64s(years)
		for _, y := range years {
			if err := writeRow(f, ProgressionSheet, progRow, []any{title, y, tr.Progression[y]}, 0); err != nil {
				return err
			}
			progRow++
		}

		regions := make([]string, 0, len(tr.Location))
		for r := range tr.Location {
			regions = append(regions, r)
		}
		sort.Strings(regions)
		for _, r := range regions {
			if err := writeRow(f, LocationsSheet, locRow, []any{title, r, tr.Location[r]}, 0); err != nil {
				return err
			}
			locRow++
		}
	}
	return nil
}

// writeRow writes values starting at column A. A zero style leaves cells unstyled.
func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	if style == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
