package extractor

import (
	"strings"
	"unicode"
)

const (
	minTextLength  = 50
	minTextQuality = 0.6
)

// statementWords appear in virtually every statement. Text that contains
// none of them is most likely a badly decoded font.
var statementWords = []string{
	"bank", "account", "balance", "date", "statement", "amount", "transaction",
	"выписка", "баланс", "остаток", "сумма", "дата", "операци", "пополнение",
	"покупка", "перевод", "счет", "карт", "kaspi", "шот",
}

// textQuality is the share of letters (Latin or Cyrillic), digits,
// whitespace, punctuation and currency signs among all runes.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			switch {
			case unicode.In(r, unicode.Latin, unicode.Cyrillic),
				unicode.IsDigit(r),
				unicode.IsSpace(r),
				unicode.IsPunct(r),
				unicode.Is(unicode.Sc, r):
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func containsStatementWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range statementWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires enough text, mostly readable runes and at least
// one statement word.
func isReadableText(pages []string) bool {
	n := 0
	for _, p := range pages {
		n += len([]rune(strings.TrimSpace(p)))
	}
	if n <= minTextLength {
		return false
	}
	if textQuality(pages) <= minTextQuality {
		return false
	}
	return containsStatementWords(pages)
}
