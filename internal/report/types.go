package report

import "github.com/jenian/refscan/internal/analyzer"

// Entry is a file record together with its derived labels
type Entry struct {
	analyzer.FileRecord `yaml:",inline"`
	Categories          []string `json:"categories" yaml:"categories"`
	IsRoute             bool     `json:"is_route" yaml:"is_route"`
	IsController        bool     `json:"is_controller" yaml:"is_controller"`
	Group               string   `json:"group" yaml:"group"`
}

// Summary contains the counters derived from the entries of a report
type Summary struct {
	TotalFiles       int            `json:"total_files" yaml:"total_files"`
	FilesWithMatches int            `json:"files_with_matches" yaml:"files_with_matches"`
	TotalMatches     int            `json:"total_matches" yaml:"total_matches"`
	RoutesFiles      int            `json:"routes_files" yaml:"routes_files"`
	ControllersFiles int            `json:"controllers_files" yaml:"controllers_files"`
	DBUsers          int            `json:"db_users" yaml:"db_users"`
	Errors           int            `json:"errors" yaml:"errors"` // Files that could not be read
	FilesByRole      map[string]int `json:"files_by_role" yaml:"files_by_role"`
	FilesByFlag      map[string]int `json:"files_by_flag" yaml:"files_by_flag"`
	FilesByCategory  map[string]int `json:"files_by_category" yaml:"files_by_category"`
	MatchesByPattern map[string]int `json:"matches_by_pattern" yaml:"matches_by_pattern"`
	MissingRoots     []string       `json:"missing_roots" yaml:"missing_roots"`
}

// Report is the structured artifact produced by one run
type Report struct {
	Files   []Entry `json:"files" yaml:"files"`
	Summary Summary `json:"summary" yaml:"summary"`
}

// RouteEntry is one line of the second-stage route report
type RouteEntry struct {
	Path         string          `json:"path" yaml:"path"`
	IsRoute      bool            `json:"is_route" yaml:"is_route"`
	IsController bool            `json:"is_controller" yaml:"is_controller"`
	Flags        map[string]bool `json:"flags" yaml:"flags"`
	Categories   []string        `json:"categories" yaml:"categories"`
	Exports      []string        `json:"exports" yaml:"exports"`
}

// RouteSummary contains the counters of the route report
type RouteSummary struct {
	TotalFiles       int            `json:"total_files" yaml:"total_files"`
	RoutesFiles      int            `json:"routes_files" yaml:"routes_files"`
	ControllersFiles int            `json:"controllers_files" yaml:"controllers_files"`
	DBUsers          int            `json:"db_users" yaml:"db_users"`
	FilesByCategory  map[string]int `json:"files_by_category" yaml:"files_by_category"`
}

// RouteReport lists route and controller files first, for cleanup of server handlers
type RouteReport struct {
	ByRouteFile []RouteEntry `json:"by_route_file" yaml:"by_route_file"`
	Summary     RouteSummary `json:"summary" yaml:"summary"`
}
