package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern matches a signed number with optional parentheses and a CR/DR tag.
// Space grouping only joins three-digit groups, so "5 000,00 125 000,00" reads
// as two numbers rather than one.
var amountPattern = regexp.MustCompile(
	`(?i)([-+])?(\()?\s*(\d{1,3}(?: \d{3})+(?:[.,]\d+)?|\d[\d,.]*\d|\d)\s*\)?\s*(?:(CR|DR)\b)?`,
)

// Space variants used as thousands separators in KZT statements.
var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u202f", " ", // narrow no-break space
	"\u2009", " ", // thin space
	"\t", " ",
)

// amountMatch is the located amount inside a token.
type amountMatch struct {
	value      decimal.Decimal
	start, end int // byte offsets in the normalized token
}

// ResolveAmount parses the first amount found in token.
func ResolveAmount(token string) (decimal.Decimal, bool) {
	m, ok := findAmount(normalizeSpaces(token))
	if !ok {
		return decimal.Zero, false
	}
	return m.value, true
}

func normalizeSpaces(s string) string {
	return spaceReplacer.Replace(s)
}

func findAmount(token string) (amountMatch, bool) {
	loc := amountPattern.FindStringSubmatchIndex(token)
	if loc == nil {
		return amountMatch{}, false
	}
	group := func(n int) string {
		if loc[2*n] < 0 {
			return ""
		}
		return token[loc[2*n]:loc[2*n+1]]
	}

	num := strings.ReplaceAll(group(3), " ", "")
	if strings.Contains(num, ",") && !strings.Contains(num, ".") {
		num = strings.ReplaceAll(num, ",", ".")
	} else {
		num = strings.ReplaceAll(num, ",", "")
	}
	value, err := decimal.NewFromString(num)
	if err != nil {
		return amountMatch{}, false
	}

	tag := strings.ToUpper(group(4))
	negative := group(1) == "-" ||
		group(2) == "(" ||
		strings.HasPrefix(strings.TrimSpace(token), "(") ||
		tag == "DR"
	if tag == "CR" {
		negative = false
	}
	if negative {
		value = value.Neg()
	}
	return amountMatch{value: value, start: loc[0], end: loc[1]}, true
}
