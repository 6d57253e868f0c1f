package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/haukened/leaksift/internal/leaks/common/clock"
	"github.com/haukened/leaksift/internal/leaks/common/log"
	"github.com/haukened/leaksift/internal/leaks/config"
	"github.com/haukened/leaksift/internal/leaks/domain"
	"github.com/haukened/leaksift/internal/leaks/gateways/runner"
	"github.com/haukened/leaksift/internal/leaks/repos/suppressions"
	"github.com/haukened/leaksift/internal/leaks/repos/suppressions/lru"
	"github.com/haukened/leaksift/internal/leaks/repos/suppressions/parsers"
	"github.com/haukened/leaksift/internal/leaks/services/filter"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "leaksift"

	usage = "Usage: leaksift <command> [args...]"

	// Exit codes
	exitOK          = 0   // no unsuppressed leak in the filtered output
	exitFailure     = 1   // unsuppressed leak, usage error, or execution error
	exitInterrupted = 130 // interrupted while the child was running
)

// Application holds all the components of the leak filter
type Application struct {
	config *config.AppConfig
	runner *runner.Runner
	filter *filter.Filter
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run is the top-level error boundary: every failure path ends here as an
// exit code, so main stays a single os.Exit call.
func run(argv []string, stdout io.Writer) int {
	// The command to wrap is positional; nothing to do without one.
	// Checked before configuration so a broken environment cannot
	// preempt the usage line.
	if len(argv) == 0 {
		fmt.Fprintln(stdout, usage)
		return exitFailure
	}

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return exitFailure
	}

	// Configure global logging (stderr only; stdout carries filtered output)
	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		return exitFailure
	}

	app, err := buildApplication(cfg)
	if err != nil {
		fmt.Fprintf(stdout, "Error running leak filter: %v\n", err)
		return exitFailure
	}

	return app.Run(context.Background(), argv, stdout)
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Shared clock for run timing and rule timestamps
	clk := clock.RealClock{}

	// Logger is already configured globally
	logger := log.GetLogger()

	rules, err := buildRules(cfg, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build suppression rules: %w", err)
	}

	// Decision cache; size 0 yields the disabled no-op cache
	cacheSize := int(cfg.CacheSize)
	if cfg.DisableCache {
		cacheSize = 0
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision cache: %w", err)
	}

	repo := suppressions.NewRepository(rules, cache, logger)

	filterService, err := filter.New(filter.Options{
		Suppressor: repo,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create filter service: %w", err)
	}

	log.Debug(map[string]any{
		"version":    version,
		"rules":      repo.Rules(),
		"cache_size": cacheSize,
	}, "application wired")

	return &Application{
		config: cfg,
		runner: runner.New(runner.Options{Clock: clk, Logger: logger}),
		filter: filterService,
	}, nil
}

// buildRules assembles the suppression rule list: built-in rules first
// (unless disabled), then any extra patterns from the environment.
func buildRules(cfg *config.AppConfig, clk clock.Clock, logger log.Logger) ([]domain.SuppressionRule, error) {
	now := clk.Now()

	var rules []domain.SuppressionRule
	if !cfg.NoBuiltinRules {
		rules = append(rules, suppressions.DefaultRules(now)...)
	}

	if len(cfg.Rules) > 0 {
		extra, err := parsers.ParseRuleList(strings.NewReader(strings.Join(cfg.Rules, "\n")), "env", logger, now)
		if err != nil {
			return nil, err
		}
		rules = append(rules, extra...)
	}

	return rules, nil
}

// Run executes the wrapped command, filters its captured output, prints the
// result to stdout in a single write, and returns the exit code.
//
// An interrupt while the child runs or while the filtering pass executes
// returns 130 without printing anything; nothing has been written yet
// because output is fully buffered before filtering.
func (app *Application) Run(ctx context.Context, argv []string, stdout io.Writer) int {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)

	type runResult struct {
		capture runner.Capture
		err     error
	}
	done := make(chan runResult, 1)
	go func() {
		capture, err := app.runner.Run(ctx, argv)
		done <- runResult{capture: capture, err: err}
	}()

	select {
	case sig := <-sigChan:
		log.Debug(map[string]any{"signal": sig.String()}, "interrupted")
		return exitInterrupted

	case res := <-done:
		if res.err != nil {
			fmt.Fprintf(stdout, "Error running leak filter: %v\n", res.err)
			return exitFailure
		}

		result := app.filter.FilterText(res.capture.Output)

		// An interrupt that landed while filtering ran still wins over
		// printing; the handler stays installed until Run returns.
		select {
		case sig := <-sigChan:
			log.Debug(map[string]any{"signal": sig.String()}, "interrupted")
			return exitInterrupted
		default:
		}

		fmt.Fprintln(stdout, result.Output)

		log.Debug(map[string]any{
			"child_exit_code":  res.capture.ExitCode,
			"child_duration":   res.capture.Duration,
			"leaks_seen":       result.LeaksSeen,
			"leaks_suppressed": result.LeaksSuppressed,
		}, "filtering complete")

		// The child's own exit code is never propagated: the verdict comes
		// from what survived filtering.
		if result.HasUnsuppressedLeaks() {
			return exitFailure
		}
		return exitOK
	}
}
