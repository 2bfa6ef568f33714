package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/altinukshini/kbsearch/internal/api"
	"github.com/altinukshini/kbsearch/internal/cache"
	"github.com/altinukshini/kbsearch/internal/config"
	"github.com/altinukshini/kbsearch/internal/kb"
	"github.com/altinukshini/kbsearch/internal/model"
	"github.com/altinukshini/kbsearch/internal/search"
	"github.com/altinukshini/kbsearch/internal/tui"
	"github.com/altinukshini/kbsearch/internal/ui"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "kbsearch",
		Usage:   "Browse and search a troubleshooting knowledge base",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config.yaml",
				Value:   config.File(),
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Knowledge base file or directory",
			},
			&cli.StringFlag{
				Name:    "repo",
				Aliases: []string{"R"},
				Usage:   "Read the knowledge base from a GitHub repository (owner/repo)",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "File or directory inside the repository",
			},
			&cli.StringFlag{
				Name:  "ref",
				Usage: "Branch, tag or commit to read",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides log.level",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file (the TUI discards logs otherwise); overrides log.file",
			},
		},
		Before: setupLogger,
		Action: runCommand,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search the knowledge base and print the results",
				ArgsUsage: "<query>",
				Action:    searchCommand,
			},
			{
				Name:   "validate",
				Usage:  "Parse the knowledge base and report what it contains",
				Action: validateCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	cfg, err := mergeConfig(c)
	if err != nil {
		return err
	}

	// Get log level from the merged config and normalize to lowercase
	levelStr := strings.ToLower(cfg.Log.Level)

	var level slog.Level
	switch levelStr {
	case "", "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	var out io.Writer = c.App.ErrWriter
	if out == nil {
		out = os.Stderr
	}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = f
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// mergeConfig reads the config file and applies command line overrides.
func mergeConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("file") {
		cfg.Source.File = c.String("file")
	}
	if c.IsSet("repo") {
		cfg.Source.Repo = c.String("repo")
		cfg.Source.File = ""
	}
	if c.IsSet("path") {
		cfg.Source.Path = c.String("path")
	}
	if c.IsSet("ref") {
		cfg.Source.Ref = c.String("ref")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	return cfg, nil
}

// loadConfig is mergeConfig followed by validation.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := mergeConfig(c)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildSource returns the configured knowledge base source. The document
// cache is only created for GitHub sources.
func buildSource(cfg config.Config, logger *slog.Logger) (kb.Source, *cache.Cache, error) {
	if !cfg.IsRemote() {
		return kb.FileSource{Path: cfg.Source.File}, nil, nil
	}

	owner, repo := cfg.RepoParts()
	client, err := api.NewClient(owner, repo)
	if err != nil {
		return nil, nil, fmt.Errorf("auth error: %w (make sure you are authenticated with: gh auth login)", err)
	}

	docCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.SizeMB, cfg.CacheTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("cache error: %w", err)
	}

	return kb.GitHubSource{
		Client:  client,
		Path:    cfg.Source.Path,
		Ref:     cfg.Source.Ref,
		Cache:   docCache,
		Workers: cfg.Source.Workers,
		Logger:  logger,
	}, docCache, nil
}

func runCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// The TUI owns the terminal; only log when a file was asked for.
	logger := slog.New(slog.DiscardHandler)
	if cfg.Log.File != "" {
		logger = slog.Default()
	}

	source, docCache, err := buildSource(cfg, logger)
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.Options{
		Source:        source,
		Cache:         docCache,
		Logger:        logger,
		MarkdownStyle: cfg.UI.MarkdownStyle,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func loadKnowledgeBase(c *cli.Context) (kb.Source, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	source, _, err := buildSource(cfg, slog.Default())
	return source, err
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	source, err := loadKnowledgeBase(c)
	if err != nil {
		return err
	}
	loaded, err := source.Load(c.Context)
	if err != nil {
		return fmt.Errorf("load %s: %w", source, err)
	}

	outcome := search.New().Search(loaded, query)
	slog.Debug("search", "query", outcome.Query, "matches", len(outcome.Matches))
	printOutcome(c.App.Writer, outcome)
	return nil
}

// printOutcome writes a search outcome as plain text: the message line, then
// one block per match.
func printOutcome(w io.Writer, outcome search.Outcome) {
	fmt.Fprintln(w, outcome.Message())
	for _, r := range outcome.Matches {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s  [%s/%d]\n", r.Issue.Title, r.CategoryKey, r.Index)
		fmt.Fprintf(w, "  Severity: %s (%s)  Error Code: %s\n",
			r.Issue.Severity, ui.SeverityBadge(string(r.Issue.Severity)), search.ErrorCodeOrNA(r.Issue.ErrorCode))
		fmt.Fprintf(w, "  %s\n", search.Preview(r.Issue.Content))
	}
}

func validateCommand(c *cli.Context) error {
	source, err := loadKnowledgeBase(c)
	if err != nil {
		return err
	}

	loaded, err := source.Load(c.Context)
	if err != nil {
		return fmt.Errorf("load %s: %w", source, err)
	}

	w := c.App.Writer
	searchable := 0
	for _, cat := range loaded.Categories {
		fmt.Fprintf(w, "%-20s %3d issues", cat.Key, len(cat.Issues))
		if cat.Key == model.DashboardKey {
			fmt.Fprint(w, " (not searched)")
		} else {
			searchable++
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%s: %d categories, %d searchable issues\n", source, searchable, loaded.IssueCount())
	return nil
}
