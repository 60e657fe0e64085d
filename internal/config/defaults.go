package config

import (
	"time"

	"github.com/jenian/refscan/internal/analyzer"
	"github.com/jenian/refscan/internal/extractor"
)

// DefaultGuidance is printed at the end of the human-readable report
const DefaultGuidance = `1. Remove the obsolete AVOIR account (id 7) from the database:
     DELETE FROM accounts WHERE id = 7;

2. Clean up the files listed above:
     - drop derived collections such as accountsWithCorrectAvoir
     - drop special cases on the account name "Avoir"
     - drop { name: 'Avoir', type: 'credit' } from DEFAULT_ACCOUNTS seeds

3. Read open credits from the receivables table only, and compute totals
   from it instead of a stored account balance.

4. Re-run this scan; the report should list no remaining references.`

// Default returns the built-in configuration: the receivables cleanup lexicon
func Default() *Config {
	return &Config{
		Roots: []string{"."},
		Ignores: IgnoresConfig{
			Folders: []string{
				"node_modules", ".git", "dist", "build", ".next",
				"coverage", "__pycache__", ".venv", "venv", "uploads", "vendor",
			},
			Globs: []string{},
		},
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".sql", ".json"},
		Include:    []string{},
		Patterns: []Pattern{
			{ID: "Avoir_keyword", Regex: `Avoir`},
			{ID: "Avoir_string", Regex: `["']Avoir["']`},
			{ID: "account_id_7", Regex: `(account_?id|accountId).*[=:].*7\b`},
			{ID: "id_equals_7", Regex: `\bid\s*[=:]\s*7\b`},
			{ID: "type_credit", Regex: `type.*["']credit["']`},
			{ID: "receivables_calc", Regex: `totalOpenReceivables|accountsWithCorrectAvoir`},
		},
		Categories: []analyzer.Category{
			{Name: "solde", Keywords: []string{"balance", "recalculate", "solde", "accounts/recalculate-all"}},
			{Name: "projets", Keywords: []string{"project", "projects", "archive", "toggle-status"}},
			{Name: "avoirs", Keywords: []string{"receivable", "receivables", "avoir"}},
		},
		RouteKeywords: []string{
			"accounts", "transactions", "backup", "receivables",
			"projects", "operator", "content", "auth",
		},
		ControllerKeywords: []string{"controller"},
		Roles:              extractor.DefaultRoles(),
		Flags:              extractor.DefaultFlags(),
		Groups: []GroupRule{
			{Name: "Frontend - Contexts", Under: frontendRoots, Contains: []string{"src/contexts"}},
			{Name: "Frontend - Components", Under: frontendRoots, Contains: []string{"src/components"}},
			{Name: "Frontend - Services", Under: frontendRoots, Contains: []string{"src/services"}},
			{Name: "Frontend - Other", Under: frontendRoots},
			{Name: "Backend - Routes", Under: backendRoots, Contains: []string{"routes"}},
			{Name: "Backend - Services", Under: backendRoots, Contains: []string{"services"}},
			{Name: "Backend - Config/DB", Under: backendRoots, Contains: []string{"config", "db"}},
			{Name: "Backend - Other", Under: backendRoots},
		},
		DefaultGroup: "Other",
		PathAliases: []PathAlias{
			{From: "money-tracker-backend/", To: "backend/"},
			{From: "money-tracker-vite/", To: "frontend/"},
		},
		Guidance:    DefaultGuidance,
		Workers:     10,
		ReadTimeout: 5 * time.Second,
	}
}

var (
	frontendRoots = []string{"money-tracker-vite", "frontend"}
	backendRoots  = []string{"money-tracker-backend", "backend"}
)

// Template is the commented file written by init-config
const Template = `# .refscan.config
# Configuration file for refscan. Keys left out keep their built-in defaults.

# Directories to scan, relative to the working directory
roots:
  - .

ignores:
  # Directory names skipped anywhere in the tree, or relative paths such as src/legacy
  folders:
    - node_modules
    - .git
    - dist
    - build
  # Glob patterns (** supported) matched against file names and relative paths
  globs:
    # - "**/*.min.js"

extensions: [".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".sql", ".json"]

# Patterns are matched case-insensitively against every line
patterns:
  # Plain substring: also catches identifiers such as getAvoirBalance
  - id: Avoir_keyword
    regex: 'Avoir'
  - id: receivables_calc
    regex: 'totalOpenReceivables|accountsWithCorrectAvoir'
  # - id: legacy_helper
  #   regex: 'legacyHelper('
  #   literal: true

# Categories are assigned when a keyword appears in a file's import/require/export lines
categories:
  - name: solde
    keywords: [balance, recalculate, solde]
  - name: avoirs
    keywords: [receivable, avoir]

# File names containing one of these words are reported as routes
route_keywords: [accounts, transactions, receivables, projects, auth]
controller_keywords: [controller]

workers: 10
read_timeout: 5s
`
