package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jenian/refscan/internal/analyzer"
	"github.com/jenian/refscan/internal/config"
)

type compiledPattern struct {
	id string
	re *regexp.Regexp
}

// Matcher tests lines against a compiled pattern lexicon.
// It is immutable after Compile and safe for concurrent use.
type Matcher struct {
	patterns []compiledPattern
}

// Compile builds a case-insensitive matcher; literal patterns are quoted first
func Compile(patterns []config.Pattern) (*Matcher, error) {
	m := &Matcher{patterns: make([]compiledPattern, 0, len(patterns))}
	for _, p := range patterns {
		expr := p.Regex
		if p.Literal {
			expr = regexp.QuoteMeta(expr)
		}
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p.ID, err)
		}
		m.patterns = append(m.patterns, compiledPattern{id: p.ID, re: re})
	}
	return m, nil
}

// Len returns the number of patterns in the lexicon
func (m *Matcher) Len() int {
	return len(m.patterns)
}

// MatchLines returns one MatchRecord per (line, pattern) hit, ordered by line
// number and then by lexicon order
func (m *Matcher) MatchLines(lines []string) []analyzer.MatchRecord {
	matches := []analyzer.MatchRecord{}
	for i, line := range lines {
		if line == "" {
			continue
		}
		for _, p := range m.patterns {
			if p.re.MatchString(line) {
				matches = append(matches, analyzer.MatchRecord{
					Line:    i + 1,
					Text:    strings.TrimSpace(line),
					Pattern: p.id,
				})
			}
		}
	}
	return matches
}
