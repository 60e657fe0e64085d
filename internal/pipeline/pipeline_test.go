package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jenian/refscan/internal/analyzer"
	"github.com/jenian/refscan/internal/config"
	"github.com/jenian/refscan/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// sampleTree lays out a small backend/frontend project and returns its root
func sampleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, root, "backend/routes/accounts.js", "const express = require('express');\n"+
		"const router = express.Router();\n"+
		"// Avoir handling\n"+
		"router.get('/balance', handler);\n"+
		"module.exports = router;\n")
	writeFile(t, root, "backend/services/loader.js", "import db from './db';\n"+
		"export async function loadProjects() { return db.query('select * from projects'); }\n")
	writeFile(t, root, "frontend/src/App.jsx", "export default function App() {\n"+
		"  const total = totalOpenReceivables(items);\n"+
		"  return fetch('/api/avoir');\n"+
		"}\n")

	// Never scanned
	writeFile(t, root, "backend/node_modules/lib.js", "const Avoir = 1;\n")
	writeFile(t, root, "frontend/dist/bundle.js", "const Avoir = 1;\n")
	writeFile(t, root, "backend/notes.txt", "Avoir\n")

	return root
}

func newPipeline(t *testing.T, root string, roots ...string) *Pipeline {
	t.Helper()
	cfg := config.Default()
	cfg.Roots = nil
	for _, r := range roots {
		cfg.Roots = append(cfg.Roots, filepath.Join(root, r))
	}
	p, err := New(cfg, nil)
	require.NoError(t, err)
	p.SetBaseDir(root)
	return p
}

func entryPaths(rep report.Report) []string {
	out := make([]string, 0, len(rep.Files))
	for _, e := range rep.Files {
		out = append(out, e.Path)
	}
	return out
}

func findEntry(t *testing.T, rep report.Report, path string) report.Entry {
	t.Helper()
	for _, e := range rep.Files {
		if e.Path == path {
			return e
		}
	}
	t.Fatalf("no entry for %s in %v", path, entryPaths(rep))
	return report.Entry{}
}

func TestRun_EndToEnd(t *testing.T) {
	root := sampleTree(t)
	p := newPipeline(t, root, "backend", "frontend")

	rep, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"backend/routes/accounts.js",
		"backend/services/loader.js",
		"frontend/src/App.jsx",
	}, entryPaths(rep))

	accounts := findEntry(t, rep, "backend/routes/accounts.js")
	assert.True(t, accounts.IsRoute)
	assert.False(t, accounts.IsController)
	assert.Equal(t, "Backend - Routes", accounts.Group)
	assert.Equal(t, []string{"const express = require('express');"}, accounts.Requires)
	assert.Equal(t, []string{"module.exports = router;"}, accounts.Exports)
	assert.True(t, accounts.Flags[analyzer.FlagFrameworkEntry])
	assert.True(t, accounts.Flags[analyzer.FlagRouter])
	assert.False(t, accounts.Flags[analyzer.FlagDataStore])
	// "balance" only appears in a handler line, not in structural lines
	assert.Empty(t, accounts.Categories)
	require.Len(t, accounts.Matches, 1)
	assert.Equal(t, analyzer.MatchRecord{Line: 3, Text: "// Avoir handling", Pattern: "Avoir_keyword"}, accounts.Matches[0])

	service := findEntry(t, rep, "backend/services/loader.js")
	assert.Equal(t, []string{"projets"}, service.Categories)
	assert.True(t, service.Flags[analyzer.FlagDataStore])
	assert.Empty(t, service.Matches)
	assert.Equal(t, "Backend - Services", service.Group)

	app := findEntry(t, rep, "frontend/src/App.jsx")
	assert.True(t, app.Flags[analyzer.FlagOutboundCall])
	require.Len(t, app.Matches, 2)
	assert.Equal(t, 2, app.Matches[0].Line)
	assert.Equal(t, "receivables_calc", app.Matches[0].Pattern)
	assert.Equal(t, 3, app.Matches[1].Line)
	assert.Equal(t, "Avoir_keyword", app.Matches[1].Pattern)

	s := rep.Summary
	assert.Equal(t, 3, s.TotalFiles)
	assert.Equal(t, 2, s.FilesWithMatches)
	assert.Equal(t, 3, s.TotalMatches)
	assert.Equal(t, 1, s.RoutesFiles)
	assert.Equal(t, 0, s.ControllersFiles)
	assert.Equal(t, 1, s.DBUsers)
	assert.Equal(t, 0, s.Errors)
	assert.Empty(t, s.MissingRoots)
}

func TestRun_Deterministic(t *testing.T) {
	root := sampleTree(t)
	for i := 0; i < 20; i++ {
		writeFile(t, root, filepath.Join("backend", "gen", string(rune('a'+i))+".js"), "// Avoir\n")
	}

	encode := func() []byte {
		p := newPipeline(t, root, "backend", "frontend")
		rep, err := p.Run(context.Background())
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(rep))
		return buf.Bytes()
	}

	first := encode()
	for i := 0; i < 3; i++ {
		assert.Equal(t, string(first), string(encode()))
	}
}

func TestRun_OverlappingRootsAreDeduplicated(t *testing.T) {
	root := sampleTree(t)
	p := newPipeline(t, root, "backend", "backend/routes")

	rep, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"backend/routes/accounts.js",
		"backend/services/loader.js",
	}, entryPaths(rep))
}

func TestRun_MissingRootsAreNotFatal(t *testing.T) {
	root := sampleTree(t)
	p := newPipeline(t, root, "missing", "frontend")

	rep, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"frontend/src/App.jsx"}, entryPaths(rep))
	assert.Equal(t, []string{filepath.Join(root, "missing")}, rep.Summary.MissingRoots)
}

func TestRun_NoRoots(t *testing.T) {
	root := t.TempDir()
	p := newPipeline(t, root, "a", "b")

	rep, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, rep.Files)
	assert.NotNil(t, rep.Files)
	assert.Equal(t, 0, rep.Summary.TotalFiles)
	assert.Len(t, rep.Summary.MissingRoots, 2)
}

func TestRun_UnreadableFileIsCounted(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on windows")
	}
	root := sampleTree(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "nowhere.js"), filepath.Join(root, "frontend", "dangling.js")))

	p := newPipeline(t, root, "frontend")
	rep, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"frontend/src/App.jsx"}, entryPaths(rep))
	assert.Equal(t, 1, rep.Summary.Errors)
}

func TestRun_DirectoryLinkIsNotAReadError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on windows")
	}
	root := sampleTree(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "frontend", "src"), filepath.Join(root, "frontend", "vendor.js")))

	p := newPipeline(t, root, "frontend")
	rep, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"frontend/src/App.jsx"}, entryPaths(rep))
	assert.Equal(t, 0, rep.Summary.Errors)
}

func TestRun_InvalidBytesAreTolerated(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/legacy.js", "const a = '\xff\xfe\xfd';\nconst label = 'Avoir';\n")

	p := newPipeline(t, root, "src")
	rep, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Files, 1)
	entry := rep.Files[0]
	require.Len(t, entry.Matches, 2)
	assert.Equal(t, 2, entry.Matches[0].Line)
	assert.Equal(t, "Avoir_keyword", entry.Matches[0].Pattern)
	assert.Equal(t, "Avoir_string", entry.Matches[1].Pattern)
	assert.Equal(t, 0, rep.Summary.Errors)
}

func TestRun_Cancelled(t *testing.T) {
	root := sampleTree(t)
	p := newPipeline(t, root, "backend", "frontend")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Patterns = append(cfg.Patterns, config.Pattern{ID: "broken", Regex: "("})

	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRelPath_OutsideBaseDir(t *testing.T) {
	base := t.TempDir()
	other := t.TempDir()

	p, err := New(config.Default(), nil)
	require.NoError(t, err)
	p.SetBaseDir(base)

	abs, err := filepath.Abs(filepath.Join(other, "x.js"))
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(abs), p.relPath(filepath.Join(other, "x.js")))
	assert.Equal(t, "src/x.js", p.relPath(filepath.Join(base, "src", "x.js")))
}
