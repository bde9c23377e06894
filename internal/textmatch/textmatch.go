// Package textmatch compiles keyword patterns for RU/KZ/EN statement text and
// provides a literal pre-filter for hot keyword scans.
package textmatch

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// RE2's \b only knows ASCII word characters, so a Cyrillic keyword such as
// `\bкредит\b` would never match. Patterns are rewritten to use this instead.
const wordBoundary = `(?:^|$|[^\p{L}\p{N}_])`

// Compile rewrites \b into a Unicode-aware boundary and compiles the pattern
// case-insensitively.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + rewriteBoundaries(pattern))
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return re, nil
}

// MustCompile is like Compile but panics on error. Use for built-in rule tables.
func MustCompile(pattern string) *regexp.Regexp {
	re, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// CompileAll compiles a list of patterns.
func CompileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

// MustCompileAll is like CompileAll but panics on error.
func MustCompileAll(patterns ...string) []*regexp.Regexp {
	out, err := CompileAll(patterns)
	if err != nil {
		panic(err)
	}
	return out
}

// MatchAny reports whether any pattern matches the lower-cased text.
func MatchAny(patterns []*regexp.Regexp, text string) bool {
	lower := strings.ToLower(text)
	for _, re := range patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func rewriteBoundaries(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '\\' || i+1 >= len(pattern) {
			b.WriteByte(c)
			continue
		}
		next := pattern[i+1]
		if next == 'b' {
			b.WriteString(wordBoundary)
		} else {
			b.WriteByte(c)
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}

// Prefilter is a multi-literal matcher used to skip regex evaluation for text
// that cannot match. The underlying matcher keeps scratch state, so calls are
// serialized.
type Prefilter struct {
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

// NewPrefilter builds a prefilter from literal stems. Stems are lower-cased.
// Returns nil when no stems are given; a nil Prefilter accepts everything.
func NewPrefilter(stems []string) *Prefilter {
	if len(stems) == 0 {
		return nil
	}
	dict := make([][]byte, 0, len(stems))
	for _, s := range stems {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		dict = append(dict, []byte(s))
	}
	if len(dict) == 0 {
		return nil
	}
	return &Prefilter{matcher: ahocorasick.NewMatcher(dict)}
}

// MayMatch reports whether the text contains at least one stem.
func (p *Prefilter) MayMatch(text string) bool {
	if p == nil {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.matcher.Match([]byte(strings.ToLower(text)))) > 0
}
