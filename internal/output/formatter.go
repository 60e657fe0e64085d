package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jenian/refscan/internal/config"
	"github.com/jenian/refscan/internal/report"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Structured output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	defaultMaxMatches   = 5
	defaultPreviewWidth = 70
	ruleWidth           = 80
)

// Options controls human-readable rendering
type Options struct {
	Color        bool
	MaxMatches   int // Matches shown per file before the "+N more" marker
	PreviewWidth int // Runes of line text shown per match
	PathAliases  []config.PathAlias
	Guidance     string
}

// ColorSupported reports whether stdout is a terminal that accepts ANSI colors
func ColorSupported() bool {
	// Check if stdout is a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}

	// On Windows, enable ANSI escape sequences (handled in formatter_windows.go)
	return enableANSI()
}

// Format writes the report in the requested format
func Format(w io.Writer, rep report.Report, format string, opts Options) error {
	if format == FormatText {
		return FormatHumanReadable(w, rep, opts)
	}
	return FormatStructured(w, rep, format)
}

// FormatStructured writes v as indented JSON or YAML
func FormatStructured(w io.Writer, v any, format string) error {
	switch format {
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	case FormatJSON, "":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

type printer struct {
	w     io.Writer
	color bool
	err   error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// c returns the color code if colors are enabled, empty string otherwise
func (p *printer) c(code string) string {
	if p.color {
		return code
	}
	return ""
}

// FormatHumanReadable writes the grouped, truncated listing of files with matches
func FormatHumanReadable(w io.Writer, rep report.Report, opts Options) error {
	if opts.MaxMatches <= 0 {
		opts.MaxMatches = defaultMaxMatches
	}
	if opts.PreviewWidth <= 0 {
		opts.PreviewWidth = defaultPreviewWidth
	}

	p := &printer{w: w, color: opts.Color}
	s := rep.Summary
	rule := strings.Repeat("=", ruleWidth)

	p.printf("%sResults:%s %d files scanned, %d with matches, %d matches, %d read errors\n",
		p.c(colorBold), p.c(colorReset), s.TotalFiles, s.FilesWithMatches, s.TotalMatches, s.Errors)

	if len(s.MissingRoots) > 0 {
		p.printf("%s%sNote:%s %d root(s) not found: %s\n", p.c(colorGray), p.c(colorBold), p.c(colorReset),
			len(s.MissingRoots), strings.Join(s.MissingRoots, ", "))
		if s.TotalFiles == 0 {
			p.printf("%s%s✗ No scan roots found.%s\n", p.c(colorRed), p.c(colorBold), p.c(colorReset))
			return p.err
		}
	}

	groups, order := groupEntries(rep.Files)
	if len(order) == 0 {
		p.printf("\n%s%s✓ No references found.%s\n", p.c(colorGreen), p.c(colorBold), p.c(colorReset))
		return p.err
	}

	for _, name := range order {
		p.printf("\n%s\n%s%s%s\n%s\n", rule, p.c(colorBold), name, p.c(colorReset), rule)

		for _, e := range groups[name] {
			p.printf("\n%s%s%s (%s)\n", p.c(colorCyan), displayPath(e.Path, opts.PathAliases), p.c(colorReset), plural(len(e.Matches), "match", "matches"))

			shown := e.Matches
			if len(shown) > opts.MaxMatches {
				shown = shown[:opts.MaxMatches]
			}
			for _, m := range shown {
				p.printf("   %sL%4d%s [%-20s] %s\n", p.c(colorYellow), m.Line, p.c(colorReset), m.Pattern, truncate(m.Text, opts.PreviewWidth))
			}
			if rest := len(e.Matches) - len(shown); rest > 0 {
				p.printf("   %s... +%d more%s\n", p.c(colorGray), rest, p.c(colorReset))
			}
		}
	}

	p.printf("\n%s", patternTable(s.MatchesByPattern))

	if opts.Guidance != "" {
		p.printf("\n%s\n%sRemediation%s\n%s\n\n%s\n", rule, p.c(colorBold), p.c(colorReset), rule, strings.TrimRight(opts.Guidance, "\n"))
	}

	return p.err
}

// groupEntries keeps the report order inside each group and sorts group names
func groupEntries(entries []report.Entry) (map[string][]report.Entry, []string) {
	groups := make(map[string][]report.Entry)
	for _, e := range entries {
		if len(e.Matches) == 0 {
			continue
		}
		groups[e.Group] = append(groups[e.Group], e)
	}

	order := make([]string, 0, len(groups))
	for name := range groups {
		order = append(order, name)
	}
	sort.Strings(order)
	return groups, order
}

// patternTable renders the match count per pattern
func patternTable(counts map[string]int) string {
	ids := make([]string, 0, len(counts))
	total := 0
	for id, n := range counts {
		ids = append(ids, id)
		total += n
	}
	sort.Strings(ids)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Pattern", "Matches"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, id := range ids {
		table.Append([]string{id, fmt.Sprintf("%d", counts[id])})
	}
	table.SetFooter([]string{"Total", fmt.Sprintf("%d", total)})
	table.Render()
	return buf.String()
}

// displayPath applies the first matching path alias
func displayPath(path string, aliases []config.PathAlias) string {
	for _, a := range aliases {
		if a.From != "" && strings.HasPrefix(path, a.From) {
			return a.To + strings.TrimPrefix(path, a.From)
		}
	}
	return path
}

// truncate shortens s to at most width runes
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// FormatError formats an error message
func FormatError(err error) string {
	return fmt.Sprintf("Error: %s\n", err)
}
