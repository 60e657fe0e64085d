// Package pipeline runs a whole scan: it walks the configured roots, reads and
// analyzes every candidate file on a bounded worker pool, and aggregates the
// records into a sorted report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jenian/refscan/internal/analyzer"
	"github.com/jenian/refscan/internal/config"
	"github.com/jenian/refscan/internal/extractor"
	"github.com/jenian/refscan/internal/matcher"
	"github.com/jenian/refscan/internal/report"
	"github.com/jenian/refscan/internal/scanner"
	"golang.org/x/sync/errgroup"
)

// Pipeline holds the compiled configuration of one or more runs.
// It keeps no state between runs, so Run may be called concurrently.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	baseDir    string
	walker     *scanner.Scanner
	matcher    *matcher.Matcher
	extractor  *extractor.Extractor
	classifier *analyzer.Classifier
	grouper    *report.Grouper
}

// New validates cfg and compiles its lexicons. Record paths are made relative
// to the current working directory; see SetBaseDir.
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m, err := matcher.Compile(cfg.Patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	logger.Debug("compiled pattern lexicon", "patterns", m.Len(), "categories", len(cfg.Categories))

	walker := scanner.NewScanner()
	walker.AddExcludeDirs(cfg.Ignores.Folders)
	walker.SetExtensions(cfg.Extensions)
	if len(cfg.Include) > 0 {
		walker.SetIncludeGlobs(cfg.Include)
	}
	if len(cfg.Ignores.Globs) > 0 {
		walker.SetExcludeGlobs(cfg.Ignores.Globs)
	}

	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = "."
	}

	return &Pipeline{
		cfg:        cfg,
		logger:     logger,
		baseDir:    baseDir,
		walker:     walker,
		matcher:    m,
		extractor:  extractor.New(cfg.Roles, cfg.Flags),
		classifier: analyzer.NewClassifier(cfg.Categories, cfg.RouteKeywords, cfg.ControllerKeywords),
		grouper:    report.NewGrouper(cfg.Groups, cfg.DefaultGroup),
	}, nil
}

// SetBaseDir sets the directory record paths are made relative to
func (p *Pipeline) SetBaseDir(dir string) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	p.baseDir = dir
}

// Classifier returns the classifier built from the keyword lexicon
func (p *Pipeline) Classifier() *analyzer.Classifier {
	return p.classifier
}

// Grouper returns the path grouper built from the group rules
func (p *Pipeline) Grouper() *report.Grouper {
	return p.grouper
}

// Run scans every configured root and returns the sorted report.
// Unreadable files are logged and counted, missing roots are logged and
// listed; neither fails the run. Cancelling ctx stops the run between files
// and returns ctx.Err() without a report.
func (p *Pipeline) Run(ctx context.Context) (report.Report, error) {
	var (
		mu         sync.Mutex
		records    []analyzer.FileRecord
		readErrors int
		missing    = []string{}
		seen       = make(map[string]bool)
	)

	if len(p.cfg.Roots) == 0 {
		p.logger.Warn("no scan roots configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

walk:
	for _, root := range p.cfg.Roots {
		for file, err := range p.walker.Walk(root) {
			if gctx.Err() != nil {
				break walk
			}
			if err != nil {
				if errors.Is(err, scanner.ErrRootNotFound) {
					p.logger.Warn("scan root not found", "root", root)
					missing = append(missing, root)
				} else {
					p.logger.Warn("skipping unreadable directory", "path", file.Path, "error", err)
					mu.Lock()
					readErrors++
					mu.Unlock()
				}
				continue
			}

			relPath := p.relPath(file.Path)
			if seen[relPath] {
				continue
			}
			seen[relPath] = true

			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				record, err := p.ScanFile(gctx, file.Path, relPath)
				if err != nil {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					p.logger.Warn("skipping file", "path", relPath, "error", err)
					mu.Lock()
					readErrors++
					mu.Unlock()
					return nil
				}
				mu.Lock()
				records = append(records, record)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return report.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return report.Report{}, err
	}

	if len(p.cfg.Roots) > 0 && len(missing) == len(p.cfg.Roots) {
		p.logger.Warn("no scan roots found", "searched", strings.Join(p.cfg.Roots, ", "), "cwd", p.baseDir)
	}

	rep := report.Build(records, p.classifier, p.grouper)
	rep.Summary.Errors = readErrors
	rep.Summary.MissingRoots = missing

	p.logger.Info("scan complete",
		"files", rep.Summary.TotalFiles,
		"with_matches", rep.Summary.FilesWithMatches,
		"matches", rep.Summary.TotalMatches,
		"errors", rep.Summary.Errors)

	return rep, nil
}

// ScanFile reads one file and extracts its structure and pattern matches
func (p *Pipeline) ScanFile(ctx context.Context, path string, relPath string) (analyzer.FileRecord, error) {
	start := time.Now()

	lines, err := matcher.ReadLines(ctx, path, p.cfg.ReadTimeout)
	if err != nil {
		return analyzer.FileRecord{}, err
	}

	record := analyzer.FileRecord{
		Path:      relPath,
		Structure: p.extractor.Extract(lines),
		Matches:   p.matcher.MatchLines(lines),
	}

	p.logger.Debug("scanned file", "path", relPath, "lines", len(lines), "matches", len(record.Matches), "duration", time.Since(start))
	return record, nil
}

// relPath returns the slash-separated path relative to the base directory,
// or the cleaned path itself when it lies outside of it
func (p *Pipeline) relPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	rel, err := filepath.Rel(p.baseDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
