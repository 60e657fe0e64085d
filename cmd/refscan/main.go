package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jenian/refscan/internal/config"
	"github.com/jenian/refscan/internal/output"
	"github.com/jenian/refscan/internal/pipeline"
	"github.com/jenian/refscan/internal/report"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

// DefaultRouteReport is the file written by the report command
const DefaultRouteReport = "refscan_report.json"

// options holds the flag values of one command invocation
type options struct {
	configPath   string
	roots        []string
	excludeDirs  []string
	excludeGlobs []string
	includeGlobs []string
	extensions   []string
	workers      int
	debug        bool
	silent       bool
	noColor      bool

	jsonOutput    bool
	format        string
	input         string
	analyzeOutput string
	reportOutput  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "refscan",
		Short:         "Scan a source tree for references to clean up",
		Long:          "A CLI tool that scans a source tree for configurable patterns and structural facts, and reports the files to clean up.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	scanCmd := &cobra.Command{
		Use:   "scan [roots...]",
		Short: "Scan the source tree and print the matches",
		Long:  "Walk the scan roots, match every line against the pattern lexicon and print the files with matches, grouped by area.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [roots...]",
		Short: "Write the structured analysis artifact",
		Long:  "Scan the source tree and write every file record (structure, flags, matches, categories) to a JSON or YAML artifact.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Build the route report from an analysis artifact",
		Long:  "Read the artifact written by analyze, classify it again with the current keywords and write the route-first report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config",
		Short: "Create a .refscan.config file in the current directory",
		Long:  "Creates a .refscan.config file with the default configuration in the current directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitConfig(cmd)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "Print the version number of refscan",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file (default: ./"+config.FileName+")")
	flags.StringSliceVarP(&opts.roots, "root", "r", []string{}, "Directory to scan (repeatable, overrides the configured roots)")
	flags.StringSliceVar(&opts.excludeDirs, "exclude-dir", []string{}, "Directory names or relative paths to skip")
	flags.StringSliceVar(&opts.excludeGlobs, "exclude", []string{}, "Glob patterns to exclude")
	flags.StringSliceVar(&opts.includeGlobs, "include", []string{}, "Glob patterns to include")
	flags.StringSliceVar(&opts.extensions, "ext", []string{}, "File extensions to scan (overrides the configured extensions)")
	flags.IntVar(&opts.workers, "workers", 0, "Number of files read in parallel")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&opts.silent, "silent", false, "Silent mode (no diagnostics on stderr)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	scanCmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results in JSON format")
	scanCmd.Flags().StringVarP(&opts.format, "format", "f", output.FormatText, "Output format: text, json or yaml")

	analyzeCmd.Flags().StringVarP(&opts.analyzeOutput, "output", "o", report.DefaultArtifact, "Artifact path (.json, .yaml or .yml)")

	reportCmd.Flags().StringVarP(&opts.input, "input", "i", report.DefaultArtifact, "Artifact written by analyze")
	reportCmd.Flags().StringVarP(&opts.reportOutput, "output", "o", DefaultRouteReport, "Route report path (.json, .yaml or .yml)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

func runScan(cmd *cobra.Command, args []string, opts *options) error {
	format := opts.format
	if opts.jsonOutput {
		format = output.FormatJSON
	}
	switch format {
	case output.FormatText, output.FormatJSON, output.FormatYAML:
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	cfg, rep, err := analyze(cmd, args, opts)
	if err != nil {
		return err
	}

	formatOpts := output.Options{
		Color:       !opts.noColor && output.ColorSupported(),
		PathAliases: cfg.PathAliases,
		Guidance:    cfg.Guidance,
	}
	if err := output.Format(cmd.OutOrStdout(), rep, format, formatOpts); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string, opts *options) error {
	_, rep, err := analyze(cmd, args, opts)
	if err != nil {
		return err
	}

	if err := writeArtifact(opts.analyzeOutput, rep); err != nil {
		return err
	}

	if !opts.silent {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d file records to %s\n", len(rep.Files), opts.analyzeOutput)
	}
	return nil
}

func runReport(cmd *cobra.Command, opts *options) error {
	// The artifact comes first: nothing is read or written without it
	artifact, err := report.Load(opts.input)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, nil, opts)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, newLogger(cmd.ErrOrStderr(), opts))
	if err != nil {
		return err
	}

	routes := report.Routes(report.Reclassify(artifact, p.Classifier(), p.Grouper()))

	if err := writeArtifact(opts.reportOutput, routes); err != nil {
		return err
	}

	if !opts.silent {
		s := routes.Summary
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s: %d files, %d routes, %d controllers, %d data store users\n",
			opts.reportOutput, s.TotalFiles, s.RoutesFiles, s.ControllersFiles, s.DBUsers)
	}
	return nil
}

func runInitConfig(cmd *cobra.Command) error {
	configPath := config.FileName

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists in the current directory", config.FileName)
	}

	if err := os.WriteFile(configPath, []byte(config.Template), 0644); err != nil {
		return fmt.Errorf("failed to create %s: %w", config.FileName, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s in the current directory\n", config.FileName)
	return nil
}

// analyze loads the configuration and runs the pipeline
func analyze(cmd *cobra.Command, args []string, opts *options) (*config.Config, report.Report, error) {
	cfg, err := loadConfig(cmd, args, opts)
	if err != nil {
		return nil, report.Report{}, err
	}

	logger := newLogger(cmd.ErrOrStderr(), opts)
	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return nil, report.Report{}, err
	}

	if !opts.silent {
		fmt.Fprintf(cmd.ErrOrStderr(), "Scanning %s...\n", strings.Join(cfg.Roots, ", "))
	}

	rep, err := p.Run(cmd.Context())
	if err != nil {
		return nil, report.Report{}, fmt.Errorf("scan failed: %w", err)
	}

	if !opts.silent {
		fmt.Fprintln(cmd.ErrOrStderr(), reportFileCounts(rep.Files))
	}
	return cfg, rep, nil
}

// loadConfig reads the configuration file, then applies environment and flag overrides
func loadConfig(cmd *cobra.Command, args []string, opts *options) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	var cfg *config.Config
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.LoadConfig(wd)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(wd); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if roots := append(append([]string{}, opts.roots...), args...); len(roots) > 0 {
		cfg.Roots = roots
	}
	cfg.AddExcludeDirs(opts.excludeDirs)
	cfg.Ignores.Globs = append(cfg.Ignores.Globs, opts.excludeGlobs...)
	cfg.Include = append(cfg.Include, opts.includeGlobs...)
	if flags.Changed("ext") {
		cfg.Extensions = opts.extensions
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}

	return cfg, nil
}

func newLogger(w io.Writer, opts *options) *slog.Logger {
	if opts.silent {
		return slog.New(slog.DiscardHandler)
	}
	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// writeArtifact writes v to path as JSON, or YAML for .yaml/.yml paths
func writeArtifact(path string, v any) error {
	format := output.FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = output.FormatYAML
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := output.FormatStructured(f, v, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// reportFileCounts generates a formatted report string of file counts by extension
func reportFileCounts(entries []report.Entry) string {
	counts := make(map[string]int)
	for _, e := range entries {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Path)), ".")
		if ext == "" {
			ext = "none"
		}
		counts[ext]++
	}

	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		parts = append(parts, fmt.Sprintf("%s: %d", ext, counts[ext]))
	}

	if len(parts) > 0 {
		return fmt.Sprintf("Found %d files (%s)", len(entries), strings.Join(parts, ", "))
	}
	return "Found 0 files"
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprint(os.Stderr, output.FormatError(err))
		os.Exit(1)
	}
}
