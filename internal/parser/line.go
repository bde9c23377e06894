package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Lines shorter than this (after whitespace collapse) are headers or noise.
const minLineLength = 10

// A time of day printed right after the date, e.g. "15.01.2024 14:32".
var leadingTime = regexp.MustCompile(`^\d{1,2}:\d{2}(?::\d{2})?\s*`)

// Characters trimmed from both ends of a text-line description.
const descriptionCutset = " ₸$€£₽|:;,-+*"

// amountToken matches a whitespace-delimited piece of an amount: digits with
// separators, a lone sign, a currency mark or a CR/DR tag.
var amountToken = regexp.MustCompile(`(?i)^(?:[-+(]?\d[\d.,]*\)?|[-+]|[₸$€£₽]|CR|DR)$`)

// ExtractLine turns one line of page text into a transaction.
//
// The first numeric date on the line must resolve; the amount is the first
// amount after it. When that first amount-shaped text does not parse (a second
// date, a dotted reference) the run of amount tokens ending the line is tried
// instead. The matched amount text is removed from the remainder to form the
// description.
func ExtractLine(line string) (models.Transaction, bool) {
	clean := strings.Join(strings.Fields(normalizeSpaces(line)), " ")
	if utf8.RuneCountInString(clean) < minLineLength {
		return models.Transaction{}, false
	}

	dateText, end, ok := FindLineDate(clean)
	if !ok {
		return models.Transaction{}, false
	}
	date, ok := ResolveDate(dateText)
	if !ok {
		return models.Transaction{}, false
	}

	trailing := strings.TrimSpace(clean[end:])
	trailing = leadingTime.ReplaceAllString(trailing, "")

	var description string
	m, ok := findAmount(trailing)
	if ok {
		description = trailing[:m.start] + " " + trailing[m.end:]
	} else {
		m, description, ok = lastAmount(trailing)
		if !ok {
			return models.Transaction{}, false
		}
	}

	description = strings.Trim(strings.Join(strings.Fields(description), " "), descriptionCutset)
	if description == "" {
		description = emptyDescription
	}

	return models.NewTransaction(date, description, m.value, nil)
}

// lastAmount resolves the amount from the trailing run of amount tokens,
// starting with the longest suffix so that "-2 500,00" stays one number. It
// returns the match and the rest of text.
func lastAmount(text string) (amountMatch, string, bool) {
	fields := strings.Fields(text)
	first := len(fields)
	for first > 0 && amountToken.MatchString(fields[first-1]) {
		first--
	}
	for i := first; i < len(fields); i++ {
		candidate := strings.Join(fields[i:], " ")
		m, ok := findAmount(candidate)
		if !ok {
			continue
		}
		rest := strings.Join(fields[:i], " ") + " " + candidate[:m.start] + " " + candidate[m.end:]
		return m, rest, true
	}
	return amountMatch{}, "", false
}
