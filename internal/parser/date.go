package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Date shapes found in KZ and UK statements.
var (
	// YYYY-MM-DD, YYYY.MM.DD or YYYY/MM/DD
	datePatternISO = regexp.MustCompile(`\b(\d{4})[-./](\d{1,2})[-./](\d{1,2})\b`)
	// DD.MM.YYYY, DD/MM/YY, DD-MM-YYYY
	datePatternNumeric = regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})\b`)
	// DD Mon YYYY, DD-Mon-YY, DD Month YYYY
	datePatternText = regexp.MustCompile(`(?i)\b(\d{1,2})[\s-]+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?[\s-]+(\d{2,4})\b`)
)

// Layouts are tried in order, day first. Month-first is only reached when the
// day-first reading is impossible (e.g. 12/31/2024).
var numericLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"1/2/2006",
	"1/2/06",
}

var textLayouts = []string{
	"2 Jan 2006",
	"2 Jan 06",
}

// ResolveDate finds the first date-shaped substring of token and parses it
// day-first. Returns false when nothing parses or the year is outside the
// accepted range.
func ResolveDate(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}

	if m := datePatternISO.FindStringSubmatch(token); m != nil {
		if t, err := time.Parse("2006-1-2", m[1]+"-"+m[2]+"-"+m[3]); err == nil {
			return checkYear(t)
		}
	}

	if m := datePatternNumeric.FindStringSubmatch(token); m != nil {
		value := m[1] + "/" + m[2] + "/" + m[3]
		for _, layout := range numericLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return checkYear(t)
			}
		}
	}

	if m := datePatternText.FindStringSubmatch(token); m != nil {
		value := m[1] + " " + strings.ToLower(m[2]) + " " + m[3]
		for _, layout := range textLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return checkYear(t)
			}
		}
	}

	return time.Time{}, false
}

// FindLineDate returns the first numeric date substring of a text line and
// the index where it ends.
func FindLineDate(line string) (string, int, bool) {
	loc := datePatternNumeric.FindStringIndex(line)
	if loc == nil {
		return "", 0, false
	}
	return line[loc[0]:loc[1]], loc[1], true
}

func checkYear(t time.Time) (time.Time, bool) {
	if !models.ValidYear(t) {
		return time.Time{}, false
	}
	return t, true
}
