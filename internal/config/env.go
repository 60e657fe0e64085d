package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override configuration values
const (
	EnvWorkers     = "REFSCAN_WORKERS"
	EnvReadTimeout = "REFSCAN_READ_TIMEOUT"
	EnvExcludeDirs = "REFSCAN_EXCLUDE_DIRS"
)

// ApplyEnv applies REFSCAN_* overrides from the process environment and from
// a .env file in dir. Non-empty exported variables take precedence over the file.
func (c *Config) ApplyEnv(dir string) error {
	fileVars := map[string]string{}
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		vars, err := godotenv.Read(envPath)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", envPath, err)
		}
		fileVars = vars
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvWorkers, v)
		}
		c.Workers = n
	}

	if v, ok := lookup(EnvReadTimeout); ok && v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvReadTimeout, v, err)
		}
		c.ReadTimeout = d
	}

	if v, ok := lookup(EnvExcludeDirs); ok && v != "" {
		c.AddExcludeDirs(strings.Split(v, ","))
	}

	return nil
}
