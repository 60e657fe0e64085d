package extractor

import (
	"strings"

	"github.com/jenian/refscan/internal/analyzer"
)

// Extractor classifies lines by prefix and substring heuristics. It never
// parses the source, so arbitrary text is accepted.
type Extractor struct {
	roles []RoleRule
	flags []FlagRule
}

// New creates an extractor; nil rule sets fall back to the defaults
func New(roles []RoleRule, flags []FlagRule) *Extractor {
	if roles == nil {
		roles = DefaultRoles()
	}
	if flags == nil {
		flags = DefaultFlags()
	}
	return &Extractor{roles: roles, flags: flags}
}

// Classify returns the role of the first rule matching the trimmed line
func (e *Extractor) Classify(line string) Role {
	s := strings.TrimSpace(line)
	if s == "" {
		return RoleNone
	}
	for _, rule := range e.roles {
		if rule.matches(s) {
			return rule.Role
		}
	}
	return RoleNone
}

// Flags returns the names of every flag rule the line triggers
func (e *Extractor) Flags(line string) []string {
	var hits []string
	for _, rule := range e.flags {
		if containsAny(line, rule.Contains) {
			hits = append(hits, rule.Flag)
		}
	}
	return hits
}

// Extract collects structural lines and flags for a whole file.
// Every configured flag is present in the result, set or not.
func (e *Extractor) Extract(lines []string) analyzer.Structure {
	st := analyzer.Structure{
		Imports:  []string{},
		Requires: []string{},
		Exports:  []string{},
		Flags:    make(map[string]bool, len(e.flags)),
	}
	for _, rule := range e.flags {
		st.Flags[rule.Flag] = false
	}

	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}

		switch e.Classify(s) {
		case RoleImport:
			st.Imports = append(st.Imports, s)
		case RoleRequire:
			st.Requires = append(st.Requires, s)
		case RoleExport:
			st.Exports = append(st.Exports, s)
		}

		for _, flag := range e.Flags(s) {
			st.Flags[flag] = true
		}
	}

	return st
}

func (r RoleRule) matches(s string) bool {
	if len(r.Prefixes) > 0 && !hasAnyPrefix(s, r.Prefixes) {
		return false
	}
	for _, sub := range r.Contains {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
