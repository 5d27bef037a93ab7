// Package main is the sanskan CLI entry point.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/sanskan/internal/cli"
	"github.com/hyperjump/sanskan/internal/config"
	"github.com/hyperjump/sanskan/internal/metrics"
	"github.com/hyperjump/sanskan/internal/models"
	"github.com/hyperjump/sanskan/internal/query"
	"github.com/hyperjump/sanskan/internal/scan"
	"github.com/hyperjump/sanskan/internal/server"
	"github.com/hyperjump/sanskan/internal/storage"
	"github.com/hyperjump/sanskan/internal/watcher"
	"github.com/hyperjump/sanskan/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var version = "dev"

// app carries the process streams so commands can be driven from tests.
type app struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
}

func main() {
	a := &app{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
	os.Exit(a.run(os.Args[1:]))
}

func (a *app) run(args []string) int {
	if len(args) < 1 {
		a.printUsage()
		return 1
	}
	switch args[0] {
	case "run":
		return a.runScan(args[1:])
	case "serve", "server":
		return a.runServe(args[1:])
	case "watch":
		return a.runWatch(args[1:])
	case "runs":
		return a.runRuns(args[1:])
	case "version", "--version", "-v":
		fmt.Fprintf(a.stdout, "sanskan version %s\n", version)
		return 0
	case "help", "--help", "-h":
		a.printUsage()
		return 0
	default:
		return a.runScan(args)
	}
}

// argsReorder moves every flag (and its value) in args ahead of the positional
// arguments so that fs.Parse sees them wherever they appear. Go's flag package
// stops at the first non-flag argument. Anything after "--" stays positional and
// the terminator is kept in front of the positional arguments.
func argsReorder(fs *flag.FlagSet, args []string) []string {
	flags := make([]string, 0, len(args))
	var positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(append([]string{a}, positional...), args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if takesValue(fs, name) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, positional...)
}

// takesValue reports whether the flag called name consumes the next argument.
// Unknown flags are left for fs.Parse to reject.
func takesValue(fs *flag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
		return false
	}
	return true
}

// scanFlags are the flags shared by run and watch.
type scanFlags struct {
	configPath     *string
	output         *string
	jobs           *int
	all            *bool
	max            *int
	skipUnreadable *bool
	debug          *bool
}

func registerScanFlags(fs *flag.FlagSet) *scanFlags {
	return &scanFlags{
		configPath:     fs.String("config", "", "config file path (default: "+config.DefaultPath+", then ./config.yaml)"),
		output:         fs.String("output", "text", "output format: text, compact, or json"),
		jobs:           fs.Int("jobs", 0, "files evaluated concurrently (default from config)"),
		all:            fs.Bool("all", false, "report only files containing every fragment"),
		max:            fs.Int("max", -1, "maximum results per file, overriding the query (-1 = keep)"),
		skipUnreadable: fs.Bool("skip-unreadable", false, "skip files that cannot be read instead of failing"),
		debug:          fs.Bool("debug", false, "enable debug logging"),
	}
}

// scanSetup is everything a scan command needs once flags, config and query are loaded.
type scanSetup struct {
	cfg     *config.Config
	logger  *zap.Logger
	format  cli.OutputFormat
	query   *query.Query
	scanner *scan.Scanner
}

func (a *app) setupScan(fs *flag.FlagSet, sf *scanFlags, queryPath string) (*scanSetup, bool) {
	cfg, err := config.Resolve(*sf.configPath)
	if err != nil {
		fmt.Fprintf(a.stderr, "Failed to load config: %v\n", err)
		return nil, false
	}
	format, err := cli.ParseFormat(*sf.output)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return nil, false
	}
	logger, err := utils.NewLogger(cfg.Debug || *sf.debug)
	if err != nil {
		fmt.Fprintf(a.stderr, "Failed to create logger: %v\n", err)
		return nil, false
	}

	var qopts []query.Option
	if *sf.all {
		qopts = append(qopts, query.WithPolicy(query.AllRequired))
	}
	if flagSet(fs, "max") {
		qopts = append(qopts, query.WithMaxResultsPerText(*sf.max))
	}
	q, ok := a.loadQuery(queryPath, qopts...)
	if !ok {
		return nil, false
	}

	opts := scan.ConfigOptions(cfg.Scan)
	if *sf.jobs > 0 {
		opts = append(opts, scan.WithJobs(*sf.jobs))
	}
	if *sf.skipUnreadable {
		opts = append(opts, scan.WithSkipUnreadable(true))
	}
	opts = append(opts, scan.WithLogger(logger), scan.WithObserver(metrics.NewScanRecorder()))

	return &scanSetup{
		cfg:     cfg,
		logger:  logger,
		format:  format,
		query:   q,
		scanner: scan.NewScanner(q, opts...),
	}, true
}

// loadQuery reads and validates the query description, printing the failure the
// way users of the tool expect.
func (a *app) loadQuery(path string, opts ...query.Option) (*query.Query, bool) {
	doc, err := query.LoadFile(path)
	if err != nil {
		var decErr *query.DecodeError
		if errors.As(err, &decErr) {
			fmt.Fprintf(a.stderr, "Error decoding %s from %s: %v\n", decErr.Format, path, decErr.Err)
		} else {
			fmt.Fprintf(a.stderr, "Error reading query from %s: %v\n", path, err)
		}
		return nil, false
	}
	q, err := query.FromDocument(doc, opts...)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error deserializing query from %s: %v\n", path, err)
		return nil, false
	}
	return q, true
}

// parseExitCode maps a flag parse error to an exit status; -h is not a failure.
func parseExitCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 1
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func (a *app) runScan(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	sf := registerScanFlags(fs)
	record := fs.Bool("record", false, "store this run in the history database")
	pause := fs.Bool("pause", false, "wait for enter before exiting (terminal only)")
	noPause := fs.Bool("no-pause", false, "never wait before exiting")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sanskan [run] [flags] <query-file>\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argsReorder(fs, args)); err != nil {
		return parseExitCode(err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}

	setup, ok := a.setupScan(fs, sf, fs.Arg(0))
	if !ok {
		return 1
	}
	defer setup.logger.Sync()

	code := a.scanOnce(setup, *record || setup.cfg.Storage.Record)
	if (setup.cfg.Scan.PauseOnExit || *pause) && !*noPause {
		a.pauseBeforeExit()
	}
	return code
}

func (a *app) scanOnce(setup *scanSetup, record bool) int {
	q := setup.query
	cli.WriteQueryBanner(a.stdout, q.String(), setup.format)

	var reporter scan.Reporter = cli.NewWriter(a.stdout, setup.format)
	var recorder *storage.Recorder
	if record {
		store, err := storage.NewSQLiteStorage(setup.cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return 1
		}
		defer store.Close()
		recorder, err = storage.NewRecorder(context.Background(), store, &models.Run{
			Query:       q.String(),
			Policy:      q.Policy().String(),
			Directories: q.Directories(),
			Fragments:   q.Fragments(),
		})
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return 1
		}
		reporter = cli.Multi(reporter, recorder)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	summary, err := setup.scanner.Run(ctx, reporter)
	if err != nil {
		if recorder != nil {
			if ferr := recorder.Fail(summary, err); ferr != nil {
				setup.logger.Warn("failed to mark run failed", zap.Error(ferr))
			}
		}
		a.printScanError(err)
		return 1
	}
	if recorder != nil {
		setup.logger.Info("run recorded", zap.String("run_id", recorder.RunID()))
	}
	return 0
}

func (a *app) printScanError(err error) {
	var rootErr *scan.InvalidRootError
	if errors.As(err, &rootErr) {
		fmt.Fprintf(a.stderr, "Error: %s is not a directory\n", rootErr.Path)
		return
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
}

// pauseBeforeExit waits for a line on stdin so a console window opened just for
// this run stays visible. It does nothing when stdin is not a terminal.
func (a *app) pauseBeforeExit() {
	if a.isTerminal == nil || !a.isTerminal() {
		return
	}
	fmt.Fprint(a.stderr, "Press <enter> to exit...")
	_, _ = bufio.NewReader(a.stdin).ReadString('\n')
}

func (a *app) runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	record := fs.Bool("record", false, "store scans in the history database")
	if err := fs.Parse(args); err != nil {
		return parseExitCode(err)
	}

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(a.stderr, "Failed to load config: %v\n", err)
		return 1
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(a.stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	logger.Info("config loaded", zap.Bool("debug", debugMode), zap.String("addr", cfg.Server.Addr()))

	var store storage.RunStore
	if *record || cfg.Storage.Record {
		s, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Error("failed to open run history", zap.Error(err))
			return 1
		}
		defer s.Close()
		store = s
	}

	srv := server.NewServer(cfg, store, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		logger.Error("Server failed", zap.Error(err))
		return 1
	}

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
	return 0
}

func (a *app) runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	sf := registerScanFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sanskan watch [flags] <query-file>\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argsReorder(fs, args)); err != nil {
		return parseExitCode(err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	setup, ok := a.setupScan(fs, sf, fs.Arg(0))
	if !ok {
		return 1
	}
	defer setup.logger.Sync()

	if code := a.scanOnce(setup, false); code != 0 {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	w, err := a.startWatch(ctx, setup)
	if err != nil {
		a.printScanError(err)
		return 1
	}
	defer w.Stop()
	<-ctx.Done()
	setup.logger.Info("Shutting down...")
	return 0
}

// startWatch re-evaluates each candidate file as it changes and reports its results.
func (a *app) startWatch(ctx context.Context, setup *scanSetup) (*watcher.Watcher, error) {
	out := cli.NewWriter(a.stdout, setup.format)
	logger := setup.logger
	onChange := func(path string) {
		matches, err := setup.scanner.ScanFile(path)
		if err != nil {
			logger.Warn("re-scan failed", zap.String("path", path), zap.Error(err))
			return
		}
		logger.Debug("file re-scanned", zap.String("path", path), zap.Int("matches", len(matches)))
		for _, m := range matches {
			if err := out.Report(m); err != nil {
				logger.Warn("report failed", zap.Error(err))
				return
			}
		}
	}
	opts := []watcher.WatcherOption{
		watcher.WithDebounce(setup.cfg.Watch.Debounce()),
		watcher.WithRecursive(setup.cfg.Watch.RecursiveOrDefault()),
		watcher.WithRemoveHandler(func(path string) {
			logger.Info("file removed", zap.String("path", path))
		}),
	}
	if setup.cfg.Debug {
		opts = append(opts, watcher.WithLogger(logger))
	}
	w := watcher.NewWatcher(setup.query.Directories(), setup.cfg.Scan.Extensions, onChange, opts...)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	logger.Info("watching for changes", zap.Strings("directories", w.Directories()))
	return w, nil
}

func (a *app) runRuns(args []string) int {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	configPath := fs.String("config", "", "config file path")
	output := fs.String("output", "text", "output format: text or json")
	limit := fs.Int("limit", 20, "number of runs to list")
	offset := fs.Int("offset", 0, "number of runs to skip")
	if err := fs.Parse(argsReorder(fs, args)); err != nil {
		return parseExitCode(err)
	}
	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(a.stderr, "Failed to load config: %v\n", err)
		return 1
	}
	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()
	ctx := context.Background()

	if fs.NArg() > 0 {
		id := fs.Arg(0)
		run, err := store.GetRun(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				fmt.Fprintf(a.stderr, "Run not found: %s\n", id)
			} else {
				fmt.Fprintf(a.stderr, "Error: %v\n", err)
			}
			return 1
		}
		matches, err := store.GetMatches(ctx, id)
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return 1
		}
		if err := cli.WriteRun(a.stdout, run, matches, format); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	runs, err := store.ListRuns(ctx, *offset, *limit)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	if err := cli.WriteRuns(a.stdout, runs, format); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) printUsage() {
	fmt.Fprintln(a.stdout, `sanskan - Literal fragment scanner for .htm files

Usage:
  sanskan [run] [flags] <query-file>   Scan the query's directories and report matches
  sanskan watch [flags] <query-file>   Scan once, then re-scan files as they change
  sanskan serve [flags]                Start the HTTP API
  sanskan runs [flags] [id]            List recorded runs or show one
  sanskan version                      Show version
  sanskan help                         Show this help

Run Flags:
  --config string     Config file path (default: /usr/local/etc/sanskan/config.yaml, then ./config.yaml)
  --output string     Output format: text, compact, or json (default: text)
  --jobs int          Files evaluated concurrently (default from config, 1)
  --all               Report only files containing every fragment
  --max int           Maximum results per file, overriding the query
  --skip-unreadable   Skip files that cannot be read instead of failing
  --record            Store the run in the history database
  --pause             Wait for enter before exiting (terminal only)
  --no-pause          Never wait before exiting

Query file (JSON, or YAML by .yaml/.yml extension):
  {
    "directories": ["/path/to/site"],
    "fragments": ["needle", "other needle"],
    "options": {"max_results_per_text": 10, "match_policy": "any_located"}
  }

Examples:
  sanskan query.json
  sanskan -output compact query.json
  sanskan -all -jobs 4 query.yaml
  sanskan runs
  sanskan runs --output json 3f2b...`)
}
