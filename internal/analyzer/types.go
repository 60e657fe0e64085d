package analyzer

import "strings"

// Feature flag names set by the default extractor rules
const (
	FlagFrameworkEntry = "usesFrameworkEntry"
	FlagRouter         = "usesRouter"
	FlagDataStore      = "usesDataStore"
	FlagOutboundCall   = "usesOutboundCall"
)

// MatchRecord represents a single pattern hit on one line of a file
type MatchRecord struct {
	Line    int    `json:"line" yaml:"line"`       // 1-based line number
	Text    string `json:"text" yaml:"text"`       // Trimmed line text
	Pattern string `json:"pattern" yaml:"pattern"` // Id of the pattern that matched
}

// Structure holds the structural lines and usage flags extracted from a file
type Structure struct {
	Imports  []string        `json:"imports" yaml:"imports"`
	Requires []string        `json:"requires" yaml:"requires"`
	Exports  []string        `json:"exports" yaml:"exports"`
	Flags    map[string]bool `json:"flags" yaml:"flags"`
}

// FileRecord is everything the pipeline learned about one file
type FileRecord struct {
	Path string `json:"path" yaml:"path"` // Slash-separated path relative to the base directory
	Structure `yaml:",inline"`
	Matches   []MatchRecord `json:"matches" yaml:"matches"`
}

// Classification contains the derived labels for a file
type Classification struct {
	Categories   []string
	IsRoute      bool
	IsController bool
}

// StructuralText joins imports, requires and exports into one block of text
func (r FileRecord) StructuralText() string {
	lines := make([]string, 0, len(r.Imports)+len(r.Requires)+len(r.Exports))
	lines = append(lines, r.Imports...)
	lines = append(lines, r.Requires...)
	lines = append(lines, r.Exports...)
	return strings.Join(lines, "\n")
}

// UsesFlag reports whether the given feature flag is set on the record
func (r FileRecord) UsesFlag(flag string) bool {
	return r.Flags[flag]
}
