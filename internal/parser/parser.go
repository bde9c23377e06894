// Package parser turns statement cells and text lines into typed transactions.
//
// Every resolver returns a value plus an ok flag; a failed token is simply
// skipped by the caller.
package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// bankMarkers are checked in order against the statement text.
var bankMarkers = []struct {
	bank    models.BankType
	needles []string
}{
	{models.BankKaspi, []string{"Kaspi Bank", "Kaspi Gold", "kaspi.kz", "Каспи"}},
	{models.BankHalyk, []string{"Halyk Bank", "Народный банк", "halykbank.kz"}},
	{models.BankJusan, []string{"Jusan Bank", "jusan.kz"}},
	{models.BankForte, []string{"ForteBank", "forte.kz"}},
	{models.BankFreedom, []string{"Freedom Bank", "Freedom Finance", "bankffin.kz"}},
}

// ParseBank maps a user supplied bank label to a BankType. "auto" and the
// empty string return ok=false so the caller can detect from text.
func ParseBank(label string) (models.BankType, bool, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "auto":
		return "", false, nil
	case "kaspi":
		return models.BankKaspi, true, nil
	case "halyk", "halykbank":
		return models.BankHalyk, true, nil
	case "jusan":
		return models.BankJusan, true, nil
	case "forte", "fortebank":
		return models.BankForte, true, nil
	case "freedom":
		return models.BankFreedom, true, nil
	case "generic", "other":
		return models.BankGeneric, true, nil
	default:
		return "", false, fmt.Errorf("unsupported bank %q", label)
	}
}

// AutoDetect tries to identify the bank from the page text. Unknown layouts
// fall back to BankGeneric; the extraction heuristics are bank independent.
func AutoDetect(pages []string) models.BankType {
	combined := strings.ToLower(strings.Join(pages, "\n"))
	for _, m := range bankMarkers {
		if containsAny(combined, m.needles) {
			return m.bank
		}
	}
	return models.BankGeneric
}

// containsAny expects text already lower-cased.
func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(text, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}
