package scanner

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrRootNotFound is yielded by Walk when a root does not exist
var ErrRootNotFound = errors.New("root not found")

// FileInfo contains information about a file to be scanned
type FileInfo struct {
	Path      string // Path as found on disk (root joined with the relative path)
	Root      string // Root the file was found under
	RelPath   string // Slash-separated path relative to Root
	Extension string // Lowercased extension including the dot
}

// Result is the outcome of scanning a set of roots
type Result struct {
	Files        []FileInfo
	MissingRoots []string
	Errors       []error // Unreadable directories below a root
}

// Scanner handles file discovery and filtering
type Scanner struct {
	excludeDirs  map[string]bool // Directory names to exclude (e.g., "node_modules")
	excludePaths []string        // Path patterns to exclude (e.g., "src/config", "k8s/*")
	extensions   map[string]bool // Accepted extensions; empty accepts every file
	excludeGlobs []string
	includeGlobs []string
}

// NewScanner creates a new scanner with default exclusions
func NewScanner() *Scanner {
	return &Scanner{
		excludeDirs: map[string]bool{
			"node_modules": true,
			".git":         true,
			"dist":         true,
			"build":        true,
		},
		extensions: map[string]bool{},
	}
}

// SetExcludeGlobs sets glob patterns to exclude
func (s *Scanner) SetExcludeGlobs(globs []string) {
	s.excludeGlobs = globs
}

// SetIncludeGlobs sets glob patterns to include (overrides excludes)
func (s *Scanner) SetIncludeGlobs(globs []string) {
	s.includeGlobs = globs
}

// SetExtensions replaces the accepted extension set
func (s *Scanner) SetExtensions(exts []string) {
	s.extensions = make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.extensions[ext] = true
	}
}

// AddExcludeDirs adds additional directories to exclude from scanning
// Can be directory names (e.g., "config") or paths (e.g., "src/config")
func (s *Scanner) AddExcludeDirs(dirs []string) {
	for _, dir := range dirs {
		// If it contains a path separator, treat it as a path pattern
		if strings.Contains(dir, "/") || strings.Contains(dir, "\\") {
			s.excludePaths = append(s.excludePaths, filepath.ToSlash(dir))
		} else {
			// Otherwise treat it as a directory name
			s.excludeDirs[dir] = true
		}
	}
}

// acceptsExtension checks the file extension against the accepted set
func (s *Scanner) acceptsExtension(ext string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	return s.extensions[ext]
}

// matchesGlob checks if a path matches any of the glob patterns
func matchesGlob(relPath string, globs []string) bool {
	base := relPath[strings.LastIndex(relPath, "/")+1:]
	for _, glob := range globs {
		if matched, _ := doublestar.Match(glob, base); matched {
			return true
		}
		// Also try matching against the relative path
		if matched, _ := doublestar.Match(glob, relPath); matched {
			return true
		}
	}
	return false
}

// shouldInclude checks if a file should be included based on include/exclude globs
func (s *Scanner) shouldInclude(relPath string) bool {
	// If include globs are specified, file must match at least one
	if len(s.includeGlobs) > 0 {
		return matchesGlob(relPath, s.includeGlobs)
	}
	// If exclude globs are specified, file must not match any
	if len(s.excludeGlobs) > 0 {
		return !matchesGlob(relPath, s.excludeGlobs)
	}
	return true
}

// isExcludedPath checks if a relative directory path matches a path exclusion
func (s *Scanner) isExcludedPath(relPath string) bool {
	for _, excludePath := range s.excludePaths {
		prefix := strings.TrimSuffix(strings.TrimSuffix(excludePath, "/*"), "/")
		if relPath == prefix || strings.HasPrefix(relPath, prefix+"/") {
			return true
		}
	}
	return false
}

// Walk lazily yields the candidate files under root in lexical order.
// A missing root yields a single ErrRootNotFound and nothing else; other
// walk errors on subdirectories are yielded and the walk continues.
func (s *Scanner) Walk(root string) iter.Seq2[FileInfo, error] {
	return func(yield func(FileInfo, error) bool) {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			yield(FileInfo{Root: root}, &RootError{Root: root, Err: err})
			return
		}

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(FileInfo{Path: path, Root: root}, err) || path == root {
					return filepath.SkipAll
				}
				// Keep walking siblings of an unreadable directory
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if path == root {
					return nil
				}
				if s.excludeDirs[d.Name()] || s.isExcludedPath(rel) {
					return filepath.SkipDir
				}
				return nil
			}

			// Skip device files, sockets and pipes; symlinks are resolved when read
			if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
				return nil
			}

			if s.isExcludedPath(rel) {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(d.Name()))
			if !s.acceptsExtension(ext) {
				return nil
			}

			// A link to a directory is not a file to read; dangling links
			// are still yielded so the read failure gets counted
			if d.Type()&fs.ModeSymlink != 0 {
				if target, err := os.Stat(path); err == nil && target.IsDir() {
					return nil
				}
			}

			// Check include/exclude globs
			if !s.shouldInclude(rel) {
				return nil
			}

			if !yield(FileInfo{Path: path, Root: root, RelPath: rel, Extension: ext}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Scan walks every root and collects the files to read. Missing roots and
// unreadable directories are recorded rather than failing the scan.
func (s *Scanner) Scan(roots ...string) Result {
	result := Result{Files: []FileInfo{}, MissingRoots: []string{}}
	for _, root := range roots {
		for file, err := range s.Walk(root) {
			if err != nil {
				if errors.Is(err, ErrRootNotFound) {
					result.MissingRoots = append(result.MissingRoots, root)
				} else {
					result.Errors = append(result.Errors, err)
				}
				continue
			}
			result.Files = append(result.Files, file)
		}
	}
	return result
}

// RootError reports a root that cannot be walked
type RootError struct {
	Root string
	Err  error
}

func (e *RootError) Error() string {
	if e.Err == nil {
		return e.Root + ": not a directory"
	}
	return e.Root + ": " + e.Err.Error()
}

// Is makes RootError match ErrRootNotFound
func (e *RootError) Is(target error) bool {
	return target == ErrRootNotFound
}

func (e *RootError) Unwrap() error {
	return e.Err
}
