package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultArtifact is the file written by the analyze command and read by the report command
const DefaultArtifact = "refscan_analysis.json"

// ErrArtifactMissing is returned when the structured artifact has not been produced yet
var ErrArtifactMissing = errors.New("analysis artifact not found")

// MissingArtifactError names the expected artifact and the command that produces it
type MissingArtifactError struct {
	Path string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("%s not found, run `refscan analyze --output %s` first", e.Path, e.Path)
}

// Is makes MissingArtifactError match ErrArtifactMissing
func (e *MissingArtifactError) Is(target error) bool {
	return target == ErrArtifactMissing
}

// Load reads a structured artifact written in JSON or YAML (by extension)
func Load(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Report{}, &MissingArtifactError{Path: path}
		}
		return Report{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rep Report
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &rep)
	default:
		err = json.Unmarshal(data, &rep)
	}
	if err != nil {
		return Report{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return rep, nil
}
