package services

import (
	"regexp"
	"strconv"
	"strings"
)

// AnalysisReport is the heuristic scan stored on a file object and
// returned from the analyze route.
type AnalysisReport struct {
	Lines   int           `json:"lines"`
	Words   int           `json:"words"`
	Bytes   int           `json:"bytes"`
	IsCSV   bool          `json:"is_csv"`
	Columns []ColumnStats `json:"columns,omitempty"`
	PII     PIIFindings   `json:"pii"`
}

// ColumnStats summarizes one detected CSV column.
type ColumnStats struct {
	Name         string `json:"name"`
	NumericCount int    `json:"numeric_count"`
	EmptyCount   int    `json:"empty_count"`
	TotalCount   int    `json:"total_count"`
}

// PIIFindings counts likely personal data in the content. Card numbers
// only count when they pass the Luhn check.
type PIIFindings struct {
	Emails      int `json:"emails"`
	Phones      int `json:"phones"`
	CardNumbers int `json:"card_numbers"`
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{8,14}\d`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ \-]?){13,19}\b`)
)

// AnalyzeContent runs the heuristic scanner over raw text.
func AnalyzeContent(content string) AnalysisReport {
	report := AnalysisReport{
		Bytes: len(content),
		Words: len(strings.Fields(content)),
	}
	if content != "" {
		report.Lines = strings.Count(content, "\n")
		if !strings.HasSuffix(content, "\n") {
			report.Lines++
		}
	}

	report.PII = scanPII(content)

	if cols, ok := detectCSV(content); ok {
		report.IsCSV = true
		report.Columns = cols
	}
	return report
}

func scanPII(content string) PIIFindings {
	findings := PIIFindings{
		Emails: len(emailPattern.FindAllString(content, -1)),
	}
	for _, candidate := range cardPattern.FindAllString(content, -1) {
		if luhnValid(candidate) {
			findings.CardNumbers++
		}
	}
	// Phone matching runs over the content with card candidates blanked
	// out, otherwise every card number also counts as a phone.
	stripped := cardPattern.ReplaceAllString(content, " ")
	findings.Phones = len(phonePattern.FindAllString(stripped, -1))
	return findings
}

func luhnValid(candidate string) bool {
	var digits []int
	for _, r := range candidate {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// detectCSV treats content as CSV when the first few lines contain an
// equal number of commas (at least one). Stats come from a simple
// comma split, which is good enough for the heuristic report.
func detectCSV(content string) ([]ColumnStats, bool) {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) < 2 {
		return nil, false
	}
	header := strings.Split(lines[0], ",")
	if len(header) < 2 {
		return nil, false
	}
	probe := lines[1:]
	if len(probe) > 5 {
		probe = probe[:5]
	}
	for _, line := range probe {
		if strings.Count(line, ",") != len(header)-1 {
			return nil, false
		}
	}

	cols := make([]ColumnStats, len(header))
	for i, name := range header {
		cols[i].Name = strings.TrimSpace(name)
	}
	for _, line := range lines[1:] {
		cells := strings.Split(line, ",")
		for i := range cols {
			if i >= len(cells) {
				cols[i].EmptyCount++
				cols[i].TotalCount++
				continue
			}
			cell := strings.TrimSpace(cells[i])
			cols[i].TotalCount++
			if cell == "" {
				cols[i].EmptyCount++
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				cols[i].NumericCount++
			}
		}
	}
	return cols, true
}
