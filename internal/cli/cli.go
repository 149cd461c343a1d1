// Package cli implements the mcpcrawl command-line interface.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/buildinfo"
	"github.com/mcpcrawl/mcpcrawl/pkg/cache"
	"github.com/mcpcrawl/mcpcrawl/pkg/discovery"
	"github.com/mcpcrawl/mcpcrawl/pkg/httpfetch"
	"github.com/mcpcrawl/mcpcrawl/pkg/intelligence"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/crates"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/github"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/gitlab"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/goproxy"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/maven"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/npm"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/packagist"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/pypi"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/rubygems"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
	"github.com/mcpcrawl/mcpcrawl/pkg/pipeline"
	"github.com/mcpcrawl/mcpcrawl/pkg/scrape"
	"github.com/mcpcrawl/mcpcrawl/pkg/store"
)

const (
	appName = "mcpcrawl"

	// registryCacheTTL is how long a registry or repository-host response
	// stays fresh in the on-disk cache before a client re-fetches it.
	registryCacheTTL = time.Hour
)

// Log levels exported for use by main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands: a logger whose level --verbose
// raises after construction.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI writing to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level in place.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with every subcommand
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "mcpcrawl discovers, validates, and catalogs MCP servers",
		Long:         `mcpcrawl crawls package registries for Model Context Protocol servers, validates them by actually launching and speaking MCP to them, and maintains a searchable catalog of the ones that work.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.statusCommand())
	root.AddCommand(c.enableCommand())
	root.AddCommand(c.disableCommand())
	root.AddCommand(c.runOnceCommand())
	root.AddCommand(c.testCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.healthCheckCommand())
	root.AddCommand(c.scheduleCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// openRunner loads configuration, opens the store, builds every integration
// client, and returns a ready pipeline.Runner plus a cleanup function the
// caller must run before returning.
func (c *CLI) openRunner(ctx context.Context) (*pipeline.Runner, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = cfg.DBURL
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	clients, archiver, err := newClients(ctx, cfg, c.Logger)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("build integration clients: %w", err)
	}

	runner := pipeline.NewRunner(st, clients, cfg, c.Logger)
	cleanup := func() {
		archiver.Close(context.Background())
		st.Close()
	}
	return runner, cleanup, nil
}

// newClients wires every per-ecosystem registry client, the repository-host
// clients, the shared documentation fetcher, and the intelligence collector
// from cfg, all sharing one on-disk response cache.
func newClients(ctx context.Context, cfg *config.Config, logger *log.Logger) (pipeline.Clients, store.Archiver, error) {
	dir, err := cacheDir()
	if err != nil {
		return pipeline.Clients{}, nil, err
	}
	backend, err := cache.NewFileCache(dir)
	if err != nil {
		return pipeline.Clients{}, nil, fmt.Errorf("open cache at %s: %w", dir, err)
	}

	var fetchOpts []httpfetch.Option
	if cfg.RedisURL != "" {
		limiter, err := httpfetch.NewRedisLimiter(cfg.RedisURL, int64(httpfetch.DefaultBurst), time.Second)
		if err != nil {
			logger.Warn("redis rate limiter unavailable, falling back to in-process limiting", "url", cfg.RedisURL, "error", err)
		} else {
			fetchOpts = append(fetchOpts, httpfetch.WithLimiter(limiter))
		}
	}
	if renderer, err := httpfetch.NewRodRenderer(); err != nil {
		logger.Debug("headless renderer unavailable, JS-rendered doc pages will be skipped", "error", err)
	} else {
		fetchOpts = append(fetchOpts, httpfetch.WithRenderer(renderer))
	}
	docs := httpfetch.New(fetchOpts...)

	npmClient := npm.NewClient(backend, registryCacheTTL)
	pypiClient := pypi.NewClient(backend, registryCacheTTL)
	cratesClient := crates.NewClient(backend, registryCacheTTL)
	goproxyClient := goproxy.NewClient(backend, registryCacheTTL)
	githubClient := github.NewClient(backend, cfg.GitHubToken, registryCacheTTL)
	gitlabClient := gitlab.NewClient(backend, "", registryCacheTTL)

	var rubygemsClient *rubygems.Client
	var mavenClient *maven.Client
	var packagistClient *packagist.Client
	for _, eco := range cfg.Ecosystems {
		switch eco {
		case model.EcosystemRubyGems:
			rubygemsClient = rubygems.NewClient(backend, registryCacheTTL)
		case model.EcosystemMaven:
			mavenClient = maven.NewClient(backend, registryCacheTTL)
		case model.EcosystemPackagist:
			packagistClient = packagist.NewClient(backend, registryCacheTTL)
		}
	}

	discoveryClients := discovery.Clients{
		NPM: npmClient, PyPI: pypiClient, Crates: cratesClient, GoProxy: goproxyClient,
		RubyGems: rubygemsClient, Maven: mavenClient, Packagist: packagistClient, GitHub: githubClient,
	}
	scrapeClients := scrape.Clients{
		NPM: npmClient, PyPI: pypiClient, Crates: cratesClient, GoProxy: goproxyClient,
		RubyGems: rubygemsClient, Maven: mavenClient, Packagist: packagistClient,
		GitHub: githubClient, GitLab: gitlabClient, Docs: docs,
	}

	archiver, err := store.NewArchiver(ctx, cfg.ArchiveMongoURL)
	if err != nil {
		return pipeline.Clients{}, nil, fmt.Errorf("open archiver: %w", err)
	}

	return pipeline.Clients{
		Discovery:    discoveryClients,
		Scrape:       scrapeClients,
		Intelligence: intelligence.New(),
		Archiver:     archiver,
	}, archiver, nil
}

// statusCommand prints whether the crawler and scheduler are enabled, and
// the last run.
func (c *CLI) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the crawler is enabled and the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := c.openRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			st := runner.Status()
			printKeyValue("Enabled", boolLabel(st.Enabled))
			printKeyValue("Schedule enabled", boolLabel(st.ScheduleEnabled))
			printKeyValue("Run active", boolLabel(st.Active))
			if st.LastRun == nil {
				printKeyValue("Last run", "never")
				return nil
			}
			printKeyValue("Last run status", st.LastRun.Status)
			printKeyValue("Last run started", st.LastRun.StartedAt.Format(time.RFC3339))
			printKeyValue("Last run completed", st.LastRun.CompletedAt.Format(time.RFC3339))
			printKeyValue("Last run discovered", strconv.Itoa(st.LastRun.Discovered))
			printKeyValue("Last run new/updated", fmt.Sprintf("%d/%d", st.LastRun.New, st.LastRun.Updated))
			return nil
		},
	}
}

// enableCommand enables the crawler after interactive confirmation, exiting
// 2 if the operator aborts.
func (c *CLI) enableCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Enable the crawler",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd.InOrStdin(), "Enable the crawler? This allows run-once and the schedule to reach the network. [y/N] ") {
				printInfo("Aborted")
				os.Exit(2)
			}

			runner, cleanup, err := c.openRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			runner.Enable()
			printSuccess("Crawler enabled")
			printNextStep("Run a pass now", "mcpcrawl run-once")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the interactive confirmation")
	return cmd
}

// disableCommand disables both the crawler and its schedule.
func (c *CLI) disableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Disable the crawler and its schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := c.openRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			runner.DisableSchedule()
			runner.Disable()
			printSuccess("Crawler and schedule disabled")
			return nil
		},
	}
}

// runOnceCommand runs one pipeline pass, exiting 1 on failure.
func (c *CLI) runOnceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run-once",
		Short: "Run one discovery-through-persistence pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := c.openRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			spinner := newSpinnerWithContext(cmd.Context(), "Crawling")
			spinner.Start()
			result, err := runner.RunOnce(cmd.Context())
			spinner.Stop()
			if err != nil {
				printError("Run failed: %v", err)
				os.Exit(1)
			}

			printRunResult(result)
			if result.Status == "failed" {
				os.Exit(1)
			}
			return nil
		},
	}
}

func printRunResult(result *pipeline.RunResult) {
	switch result.Status {
	case "skipped":
		printWarning("Run skipped: %s", result.Cause)
		return
	case "failed":
		printError("Run failed")
	default:
		printSuccess("Run completed")
	}
	printKeyValue("Discovered", strconv.Itoa(result.Discovered))
	printKeyValue("Processed", strconv.Itoa(result.Processed))
	printKeyValue("New", strconv.Itoa(result.New))
	printKeyValue("Updated", strconv.Itoa(result.Updated))
	printKeyValue("Skipped", strconv.Itoa(result.Skipped))
	printKeyValue("Failed", strconv.Itoa(result.Failed))
	printKeyValue("Conflicts", strconv.Itoa(result.Conflicts))
	for _, e := range result.Errors {
		printDetail("error: %s", e)
	}
}

// testCommand validates configuration and backend reachability without
// crawling, exiting 1 on failure.
func (c *CLI) testCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Validate configuration without crawling",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				printError("Configuration invalid: %v", err)
				os.Exit(1)
			}
			printSuccess("Configuration valid")
			printKeyValue("Ecosystems", ecosystemList(cfg.Ecosystems))
			printKeyValue("Max candidates", strconv.Itoa(cfg.MaxCandidates))
			printKeyValue("Concurrency", strconv.Itoa(cfg.Concurrency))
			printKeyValue("Intelligence pool", strconv.Itoa(cfg.IntelligencePool))

			_, cleanup, err := c.openRunner(cmd.Context())
			if err != nil {
				printError("Backend check failed: %v", err)
				os.Exit(1)
			}
			cleanup()
			printSuccess("Store and integration clients reachable")
			return nil
		},
	}
}

// historyCommand prints the last N run records.
func (c *CLI) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history [N]",
		Short: "Print the last N run records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 10
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed <= 0 {
					return fmt.Errorf("invalid run count %q", args[0])
				}
				n = parsed
			}

			runner, cleanup, err := c.openRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := runner.History(cmd.Context(), n)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			if len(runs) == 0 {
				printInfo("No runs recorded yet")
				return nil
			}
			for _, run := range runs {
				completed := "in progress"
				if run.CompletedAt != nil {
					completed = run.CompletedAt.Format(time.RFC3339)
				}
				printInfo("%s -> %s  status=%s discovered=%d new=%d updated=%d failed=%d",
					run.StartedAt.Format(time.RFC3339), completed, run.Status, run.Discovered, run.NewCount, run.UpdatedCount, run.Failed)
				if run.Cause != "" {
					printDetail("cause: %s", run.Cause)
				}
			}
			return nil
		},
	}
}

// healthCheckCommand re-runs C6's live validation on one named MCP, or on
// every persisted MCP if no name is given.
func (c *CLI) healthCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health-check [name]",
		Short: "Re-run live validation for one MCP or every persisted MCP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := c.openRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			var targets []*model.CanonicalMCP
			if len(args) == 1 {
				mcp, found, err := runner.Store.GetBySlug(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("look up %s: %w", args[0], err)
				}
				if !found {
					printError("No MCP with slug %q", args[0])
					os.Exit(1)
				}
				targets = []*model.CanonicalMCP{mcp}
			} else {
				targets, err = runner.Store.All(cmd.Context())
				if err != nil {
					return fmt.Errorf("load all MCPs: %w", err)
				}
			}

			failed := 0
			for _, mcp := range targets {
				status := runner.HealthCheck(cmd.Context(), mcp)
				printInfo("%s -> %s", mcp.Slug, healthStyle(string(status)))
				if status == model.HealthDown || status == model.HealthUnknown {
					failed++
				}
			}
			if failed > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
}

// scheduleCommand groups "schedule enable" and "schedule disable".
func (c *CLI) scheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Toggle the cron-like run schedule",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Enable the daily schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := c.openRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			runner.EnableSchedule(context.Background())
			printSuccess("Schedule enabled")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Disable the schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := c.openRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			runner.DisableSchedule()
			printSuccess("Schedule disabled")
			return nil
		},
	})
	return cmd
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func ecosystemList(ecosystems []model.Ecosystem) string {
	names := make([]string, len(ecosystems))
	for i, e := range ecosystems {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}

// confirm prompts on in and returns true only for an explicit "y"/"yes".
func confirm(in io.Reader, prompt string) bool {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
