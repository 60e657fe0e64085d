package report

import (
	"sort"

	"github.com/jenian/refscan/internal/analyzer"
	"github.com/jenian/refscan/internal/extractor"
)

// Build classifies every record and returns the sorted report with its summary.
// Errors and MissingRoots in the summary are left for the caller to fill in.
func Build(records []analyzer.FileRecord, classifier *analyzer.Classifier, grouper *Grouper) Report {
	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, newEntry(record, classifier, grouper))
	}

	Sort(entries)

	return Report{
		Files:   entries,
		Summary: Summarize(entries),
	}
}

// Reclassify derives categories, route/controller labels and groups again with
// the given lexicons. The read-error tally and missing roots are carried over.
func Reclassify(artifact Report, classifier *analyzer.Classifier, grouper *Grouper) Report {
	records := make([]analyzer.FileRecord, 0, len(artifact.Files))
	for _, e := range artifact.Files {
		records = append(records, e.FileRecord)
	}

	rep := Build(records, classifier, grouper)
	rep.Summary.Errors = artifact.Summary.Errors
	if artifact.Summary.MissingRoots != nil {
		rep.Summary.MissingRoots = artifact.Summary.MissingRoots
	}
	return rep
}

func newEntry(record analyzer.FileRecord, classifier *analyzer.Classifier, grouper *Grouper) Entry {
	if record.Flags == nil {
		record.Flags = map[string]bool{}
	}
	if record.Matches == nil {
		record.Matches = []analyzer.MatchRecord{}
	}
	record.Imports = nonNil(record.Imports)
	record.Requires = nonNil(record.Requires)
	record.Exports = nonNil(record.Exports)

	c := classifier.Classify(record)
	return Entry{
		FileRecord:   record,
		Categories:   c.Categories,
		IsRoute:      c.IsRoute,
		IsController: c.IsController,
		Group:        grouper.Group(record.Path),
	}
}

// Sort orders entries route files first, then controllers, then by path
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsRoute != b.IsRoute {
			return a.IsRoute
		}
		if a.IsController != b.IsController {
			return a.IsController
		}
		return a.Path < b.Path
	})
}

// Summarize computes the summary counters in a single pass over the entries
func Summarize(entries []Entry) Summary {
	s := Summary{
		TotalFiles: len(entries),
		FilesByRole: map[string]int{
			string(extractor.RoleImport):  0,
			string(extractor.RoleRequire): 0,
			string(extractor.RoleExport):  0,
		},
		FilesByFlag:      map[string]int{},
		FilesByCategory:  map[string]int{},
		MatchesByPattern: map[string]int{},
		MissingRoots:     []string{},
	}

	for _, e := range entries {
		if len(e.Matches) > 0 {
			s.FilesWithMatches++
		}
		s.TotalMatches += len(e.Matches)
		for _, m := range e.Matches {
			s.MatchesByPattern[m.Pattern]++
		}

		if e.IsRoute {
			s.RoutesFiles++
		}
		if e.IsController {
			s.ControllersFiles++
		}
		if e.UsesFlag(analyzer.FlagDataStore) {
			s.DBUsers++
		}

		if len(e.Imports) > 0 {
			s.FilesByRole[string(extractor.RoleImport)]++
		}
		if len(e.Requires) > 0 {
			s.FilesByRole[string(extractor.RoleRequire)]++
		}
		if len(e.Exports) > 0 {
			s.FilesByRole[string(extractor.RoleExport)]++
		}

		for flag, set := range e.Flags {
			if _, ok := s.FilesByFlag[flag]; !ok {
				s.FilesByFlag[flag] = 0
			}
			if set {
				s.FilesByFlag[flag]++
			}
		}
		for _, cat := range e.Categories {
			s.FilesByCategory[cat]++
		}
	}

	return s
}

// Routes converts a report into the route-first listing of the second stage
func Routes(rep Report) RouteReport {
	out := RouteReport{
		ByRouteFile: make([]RouteEntry, 0, len(rep.Files)),
		Summary: RouteSummary{
			TotalFiles:       rep.Summary.TotalFiles,
			RoutesFiles:      rep.Summary.RoutesFiles,
			ControllersFiles: rep.Summary.ControllersFiles,
			DBUsers:          rep.Summary.DBUsers,
			FilesByCategory:  rep.Summary.FilesByCategory,
		},
	}
	for _, e := range rep.Files {
		out.ByRouteFile = append(out.ByRouteFile, RouteEntry{
			Path:         e.Path,
			IsRoute:      e.IsRoute,
			IsController: e.IsController,
			Flags:        e.Flags,
			Categories:   e.Categories,
			Exports:      e.Exports,
		})
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
