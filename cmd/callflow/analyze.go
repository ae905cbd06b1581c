package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/callflow/analyzer"
	"github.com/viant/callflow/emitter/dot"
	"github.com/viant/callflow/emitter/graphviz"
	"github.com/viant/callflow/exporter/neo4j"
	"github.com/viant/callflow/inspector/repository"
)

// analyzeOptions represents analyze and watch command flags
type analyzeOptions struct {
	configURL       string
	entryPoints     []string
	includeTests    bool
	includeExamples bool
	maxDepth        int
	external        bool
	mode            string
	dotFile         string
	imageFile       string
	format          string
	neo4jURI        string
	neo4jUser       string
	neo4jPassword   string
	verbose         bool
}

// report summarizes one analyze run
type report struct {
	Units       int
	Functions   int
	Calls       int
	Fingerprint uint64
	DotFile     string
	ImageFile   string
}

func newAnalyzeCommand() *cobra.Command {
	options := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Analyze a crate or workspace and write its call graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := options.config(cmd)
			if err != nil {
				return err
			}
			_, err = runAnalyze(cmd.Context(), cmd.OutOrStdout(), targetDir(args), config, options)
			return err
		},
	}
	options.bind(cmd)
	return cmd
}

func (o *analyzeOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.configURL, "config", "c", "", "YAML config URL")
	flags.StringSliceVarP(&o.entryPoints, "entry", "e", nil, "entry point name (repeatable)")
	flags.BoolVar(&o.includeTests, "include-tests", false, "include test functions and modules")
	flags.BoolVar(&o.includeExamples, "include-examples", false, "include example targets")
	flags.IntVar(&o.maxDepth, "max-depth", 0, "maximum call chain length, 0 for unbounded")
	flags.BoolVar(&o.external, "external", false, "resolve calls into other workspace crates")
	flags.StringVar(&o.mode, "mode", string(analyzer.ModeReachable), "reachable or full")
	flags.StringVar(&o.dotFile, "dot", "call_graph.dot", "DOT output file")
	flags.StringVar(&o.imageFile, "png", "call_graph.png", "rendered image file, empty to skip")
	flags.StringVar(&o.format, "format", "png", "graphviz output format")
	flags.StringVar(&o.neo4jURI, "neo4j-uri", "", "export graph to Neo4j at URI")
	flags.StringVar(&o.neo4jUser, "neo4j-user", "neo4j", "Neo4j user")
	flags.StringVar(&o.neo4jPassword, "neo4j-pass", "", "Neo4j password")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
}

// config loads the config file if any, then applies explicitly set flags
func (o *analyzeOptions) config(cmd *cobra.Command) (*analyzer.Config, error) {
	config := analyzer.DefaultConfig()
	if o.configURL != "" {
		var err error
		if config, err = analyzer.LoadConfig(cmd.Context(), o.configURL); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("entry") {
		config.EntryPoints = o.entryPoints
	}
	if flags.Changed("include-tests") {
		config.IncludeTests = o.includeTests
	}
	if flags.Changed("include-examples") {
		config.IncludeExamples = o.includeExamples
	}
	if flags.Changed("max-depth") {
		config.MaxDepth = o.maxDepth
	}
	if flags.Changed("external") {
		config.IncludeExternalUnits = o.external
	}
	if flags.Changed("mode") {
		config.Mode = analyzer.Mode(o.mode)
	}
	config.Init()
	return config, config.Validate()
}

func (o *analyzeOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func targetDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func runAnalyze(ctx context.Context, out io.Writer, dir string, config *analyzer.Config, options *analyzeOptions) (*report, error) {
	logger := options.logger()
	fs := afs.New()
	detector := repository.New(repository.WithLogger(logger), repository.WithFileSystem(fs))
	project, err := detector.DetectProject(ctx, dir)
	if err != nil {
		return nil, err
	}
	units, err := detector.Discover(ctx, project.RootPath, repository.DiscoverOptions{IncludeExamples: config.IncludeExamples})
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("no crate targets found in %v", project.RootPath)
	}
	fmt.Fprintf(out, "Analyzing %v\n", project.RootPath)
	fmt.Fprintln(out, "Workspace crates:")
	for _, unit := range units {
		rel, err := filepath.Rel(project.RootPath, unit.Path)
		if err != nil {
			rel = unit.Path
		}
		fmt.Fprintf(out, "  %v (%v) %v\n", unit.Name, unit.Kind, rel)
	}

	service := project.Name
	if service == "" {
		service = filepath.Base(project.RootPath)
	}
	analyzerOptions := []analyzer.Option{
		analyzer.WithConfig(config),
		analyzer.WithLogger(logger),
		analyzer.WithFileSystem(fs),
		analyzer.WithServiceName(service),
	}
	if options.neo4jURI != "" {
		exporter, err := neo4j.New(ctx, options.neo4jURI, options.neo4jUser, options.neo4jPassword,
			neo4j.WithService(service), neo4j.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		defer exporter.Close()
		analyzerOptions = append(analyzerOptions, analyzer.WithGraphExporter(exporter))
	}
	analysis, err := analyzer.New(analyzerOptions...).Analyze(ctx, units)
	if err != nil {
		return nil, err
	}

	for _, failure := range analysis.Failures() {
		fmt.Fprintf(out, "Warning: skipped %v\n", failure.Error())
	}
	fmt.Fprintln(out, "Entry points:")
	for _, entry := range analysis.EntryPoints() {
		fmt.Fprintf(out, "  %v\n", entry)
	}
	if len(units) > 1 {
		cross := analysis.CrossUnitCalls()
		fmt.Fprintf(out, "Cross-crate calls: %d\n", len(cross))
		for _, edge := range cross {
			fmt.Fprintf(out, "  %v -> %v\n", edge.Caller, edge.Callee)
		}
	}

	data, err := dot.New().Emit(analysis.Graph())
	if err != nil {
		return nil, err
	}
	if err = fs.Upload(ctx, options.dotFile, 0o644, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to write %v: %w", options.dotFile, err)
	}
	fingerprint, err := dot.Fingerprint(data)
	if err != nil {
		return nil, err
	}
	ret := &report{
		Units:       len(units),
		Functions:   analysis.NodeCount(),
		Calls:       analysis.EdgeCount(),
		Fingerprint: fingerprint,
		DotFile:     options.dotFile,
	}
	fmt.Fprintf(out, "Call graph written to %v\n", options.dotFile)

	if options.imageFile != "" {
		renderer := graphviz.New()
		if renderer.Installed(ctx) {
			if err = renderer.Render(ctx, options.dotFile, options.imageFile, options.format); err != nil {
				return nil, err
			}
			ret.ImageFile = options.imageFile
			fmt.Fprintf(out, "Image written to %v\n", options.imageFile)
		} else {
			fmt.Fprintln(out, "Warning: graphviz is not installed, skipping image rendering")
		}
	}
	fmt.Fprintf(out, "Summary: %d crates, %d functions, %d calls, fingerprint %016x\n",
		ret.Units, ret.Functions, ret.Calls, ret.Fingerprint)
	return ret, nil
}
