package report

import (
	"strings"

	"github.com/jenian/refscan/internal/config"
)

// Grouper assigns a display group to a path using ordered rules; the first
// matching rule wins and unmatched paths fall into the fallback group
type Grouper struct {
	rules    []config.GroupRule
	fallback string
}

// NewGrouper creates a grouper; an empty fallback defaults to "Other"
func NewGrouper(rules []config.GroupRule, fallback string) *Grouper {
	if fallback == "" {
		fallback = "Other"
	}
	return &Grouper{rules: rules, fallback: fallback}
}

// Group returns the group name for a slash-separated path
func (g *Grouper) Group(path string) string {
	if g == nil {
		return ""
	}
	for _, rule := range g.rules {
		if len(rule.Under) > 0 && !containsAny(path, rule.Under) {
			continue
		}
		if len(rule.Contains) > 0 && !containsAny(path, rule.Contains) {
			continue
		}
		return rule.Name
	}
	return g.fallback
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
