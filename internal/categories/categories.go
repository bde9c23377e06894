// Package categories assigns a spending category to a transaction
// description using an ordered list of keyword rules.
package categories

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-analyzer/internal/textmatch"
)

// ErrInvalidRuleSet is returned when a rule file cannot be used.
var ErrInvalidRuleSet = errors.New("invalid category rule set")

const (
	// Other is the category of descriptions no rule matches.
	Other = "other"
	// DefaultVersion tags the built-in Kaspi rules.
	DefaultVersion = "kaspi-v1"
)

// Well-known category names referenced by the detectors.
const (
	Transfers = "transfers"
	Salary    = "salary"
)

// Rule maps a category to its patterns. Any match selects the category.
type Rule struct {
	Category string
	Patterns []*regexp.Regexp
}

// Matches reports whether the lower-cased description matches any pattern.
func (r Rule) Matches(description string) bool {
	return textmatch.MatchAny(r.Patterns, description)
}

// RuleSet is an ordered rule list; the first matching rule wins.
type RuleSet struct {
	Version  string
	Rules    []Rule
	Fallback string
}

// RuleFile is the YAML form of a RuleSet.
type RuleFile struct {
	Version  string `yaml:"version"`
	Fallback string `yaml:"fallback"`
	Rules    []struct {
		Category string   `yaml:"category"`
		Patterns []string `yaml:"patterns"`
	} `yaml:"rules"`
}

func rule(category string, patterns ...string) Rule {
	return Rule{Category: category, Patterns: textmatch.MustCompileAll(patterns...)}
}

// DefaultRuleSet returns the Kaspi (RU/KZ and EN) rules in priority order.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Version:  DefaultVersion,
		Fallback: Other,
		Rules: []Rule{
			rule(Transfers, `\bперевод\b`, `\bперечислен`, `\bkaspi\s*перевод\b`, `\btransfer\b`),
			rule("cash_withdrawal", `\bснятие\b`, `\batm\b`, `\bбанкомат\b`),
			rule(Salary, `\bзарплат`, `\bоклад\b`, `\bsalary\b`),
			rule("fees", `\bкомисси`, `\bfee\b`, `\bservice\s*charge\b`),
			rule("taxes", `\bналог\b`, `\btax\b`),
			rule("utilities", `\bкоммун`, `\bэлектро`, `\bвода\b`, `\bгаз\b`, `\binternet\b`, `\bтелефон\b`),
			rule("groceries", `\bmagnum\b`, `\bsmall\b`, `\bstore\b`, `\bmarket\b`, `\bсупермаркет\b`, `\bпродукт`),
			rule("restaurants", `\bcafe\b`, `\bкофе\b`, `\bресторан\b`, `\bfast\s*food\b`, `\bburger\b`),
			rule("transport", `\btaxi\b`, `\byandex\b`, `\buber\b`, `\btransport\b`, `\bпроезд\b`, `\bавтобус\b`, `\bметро\b`),
			rule("fuel", `\bазс\b`, `\bfuel\b`, `\bpetrol\b`, `\bbenz\b`, `\bgas\s*station\b`),
			rule("health", `\bаптека\b`, `\bpharm`, `\bclinic\b`, `\bмед\b`),
			rule("shopping", `\bkaspi\s*магазин\b`, `\bмагазин\b`, `\bshop\b`, `\bmarketplace\b`),
			rule("subscriptions", `\bnetflix\b`, `\bspotify\b`, `\bsubscription\b`, `\bподписк`),
			rule("education", `\bкурс\b`, `\bшкол`, `\bуниверситет\b`, `\bedu\b`),
		},
	}
}

// ParseRuleSet builds a RuleSet from YAML.
func ParseRuleSet(data []byte) (RuleSet, error) {
	var doc RuleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RuleSet{}, fmt.Errorf("%w: %v", ErrInvalidRuleSet, err)
	}
	if len(doc.Rules) == 0 {
		return RuleSet{}, fmt.Errorf("%w: no rules", ErrInvalidRuleSet)
	}

	rs := RuleSet{
		Version:  strings.TrimSpace(doc.Version),
		Fallback: strings.TrimSpace(doc.Fallback),
	}
	if rs.Version == "" {
		return RuleSet{}, fmt.Errorf("%w: missing version", ErrInvalidRuleSet)
	}
	if rs.Fallback == "" {
		rs.Fallback = Other
	}

	for i, r := range doc.Rules {
		category := strings.TrimSpace(r.Category)
		if category == "" {
			return RuleSet{}, fmt.Errorf("%w: rule %d has no category", ErrInvalidRuleSet, i)
		}
		if len(r.Patterns) == 0 {
			return RuleSet{}, fmt.Errorf("%w: rule %q has no patterns", ErrInvalidRuleSet, category)
		}
		patterns, err := textmatch.CompileAll(r.Patterns)
		if err != nil {
			return RuleSet{}, fmt.Errorf("%w: rule %q: %v", ErrInvalidRuleSet, category, err)
		}
		rs.Rules = append(rs.Rules, Rule{Category: category, Patterns: patterns})
	}
	return rs, nil
}

// LoadRuleSet reads a YAML rule file.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rule set: %w", err)
	}
	return ParseRuleSet(data)
}

// Classifier maps descriptions to categories. It is safe for concurrent use.
type Classifier struct {
	rules RuleSet
}

// NewClassifier returns a classifier over rs.
func NewClassifier(rs RuleSet) *Classifier {
	if rs.Fallback == "" {
		rs.Fallback = Other
	}
	return &Classifier{rules: rs}
}

// Classify returns the category of the first matching rule, or the fallback.
func (c *Classifier) Classify(description string) string {
	for _, r := range c.rules.Rules {
		if r.Matches(description) {
			return r.Category
		}
	}
	return c.rules.Fallback
}

// Version is the rule set's version tag.
func (c *Classifier) Version() string { return c.rules.Version }
