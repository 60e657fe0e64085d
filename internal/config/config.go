package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jenian/refscan/internal/analyzer"
	"github.com/jenian/refscan/internal/extractor"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory
const FileName = ".refscan.config"

// ErrInvalid is returned (wrapped) when a configuration value cannot be used
var ErrInvalid = errors.New("invalid configuration")

// Config represents the refscan configuration file
type Config struct {
	Roots              []string             `yaml:"roots"`
	Ignores            IgnoresConfig        `yaml:"ignores"`
	Extensions         []string             `yaml:"extensions"`
	Include            []string             `yaml:"include"` // Glob patterns a file must match (overrides ignores.globs)
	Patterns           []Pattern            `yaml:"patterns"`
	Categories         []analyzer.Category  `yaml:"categories"`
	RouteKeywords      []string             `yaml:"route_keywords"`
	ControllerKeywords []string             `yaml:"controller_keywords"`
	Roles              []extractor.RoleRule `yaml:"roles"`
	Flags              []extractor.FlagRule `yaml:"flags"`
	Groups             []GroupRule          `yaml:"groups"`
	DefaultGroup       string               `yaml:"default_group"`
	PathAliases        []PathAlias          `yaml:"path_aliases"`
	Guidance           string               `yaml:"guidance"`
	Workers            int                  `yaml:"workers"`
	ReadTimeout        time.Duration        `yaml:"read_timeout"`
}

// IgnoresConfig contains exclusion rules for the tree walk
type IgnoresConfig struct {
	Folders []string `yaml:"folders"` // Directory names (e.g. "node_modules") or relative paths (e.g. "src/legacy")
	Globs   []string `yaml:"globs"`   // Glob patterns matched against file names and relative paths
}

// Pattern is one entry of the pattern lexicon
type Pattern struct {
	ID      string `yaml:"id"`
	Regex   string `yaml:"regex"`
	Literal bool   `yaml:"literal"` // Treat Regex as a plain substring
}

// GroupRule assigns a display group to paths in the human-readable report.
// A path belongs to the group when it contains one of Under (if set) and one of Contains (if set).
type GroupRule struct {
	Name     string   `yaml:"name"`
	Under    []string `yaml:"under"`
	Contains []string `yaml:"contains"`
}

// PathAlias rewrites a path prefix for display
type PathAlias struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadConfig loads the .refscan.config file from the specified directory.
// A missing file yields the default configuration.
func LoadConfig(dir string) (*Config, error) {
	configPath := filepath.Join(dir, FileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFile(configPath)
}

// LoadFile loads a configuration file; keys absent from the file keep their default values
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the lexicons can be compiled and the limits are usable
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Patterns))
	for i, p := range c.Patterns {
		if p.ID == "" {
			return fmt.Errorf("%w: pattern #%d has no id", ErrInvalid, i+1)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate pattern id %q", ErrInvalid, p.ID)
		}
		seen[p.ID] = true
		if p.Regex == "" {
			return fmt.Errorf("%w: pattern %q is empty", ErrInvalid, p.ID)
		}
		if !p.Literal {
			if _, err := regexp.Compile(p.Regex); err != nil {
				return fmt.Errorf("%w: pattern %q: %v", ErrInvalid, p.ID, err)
			}
		}
	}

	for i, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("%w: category #%d has no name", ErrInvalid, i+1)
		}
	}

	for i, r := range c.Roles {
		if !r.Role.Valid() {
			return fmt.Errorf("%w: role rule #%d has unknown role %q", ErrInvalid, i+1, r.Role)
		}
	}

	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: read_timeout must not be negative", ErrInvalid)
	}

	return nil
}

// AddExcludeDirs appends directory names or paths to the ignore list, skipping duplicates
func (c *Config) AddExcludeDirs(dirs []string) {
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" || c.ShouldIgnoreFolder(dir) {
			continue
		}
		c.Ignores.Folders = append(c.Ignores.Folders, dir)
	}
}

// ShouldIgnoreFolder checks if a folder entry is already configured
func (c *Config) ShouldIgnoreFolder(name string) bool {
	for _, ignored := range c.Ignores.Folders {
		if ignored == name {
			return true
		}
	}
	return false
}
