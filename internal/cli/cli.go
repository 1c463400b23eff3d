package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/cheltenham-going/internal/api"
	"github.com/pfrederiksen/cheltenham-going/internal/config"
	"github.com/pfrederiksen/cheltenham-going/internal/logger"
	"github.com/pfrederiksen/cheltenham-going/internal/resolver"
	"github.com/pfrederiksen/cheltenham-going/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitNoData  = 2
)

// ErrNoData is returned by check when no source has published going yet
var ErrNoData = errors.New("going data not yet available")

// ExitCode maps a command error to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrNoData):
		return ExitNoData
	default:
		return ExitError
	}
}

// app holds state shared by subcommands
type app struct {
	configPath string
	cfg        *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "cheltenham-going",
		Short: "Track going reports for the Cheltenham Festival",
		Long: `Resolves the current Cheltenham going report from the Jockey Club,
Racing Post and TurfTrax, in that order, and serves it as JSON.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file (default $"+config.EnvConfigFile+")")

	cmd.AddCommand(newServeCmd(a), newCheckCmd(a))
	return cmd
}

// load reads configuration and installs the logger
func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context(), a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	a.cfg = cfg
	return nil
}

// newResolver builds the adapters in trust order and a resolver over them
func (a *app) newResolver() *resolver.Resolver {
	adapters := scraper.Defaults(a.cfg.Sources(),
		scraper.WithTimeout(a.cfg.FetchTimeout),
		scraper.WithUserAgent(a.cfg.UserAgent),
	)

	list := make([]resolver.Adapter, 0, len(adapters))
	for _, ad := range adapters {
		list = append(list, ad)
	}
	return resolver.New(list, resolver.WithTimeout(a.cfg.FetchTimeout))
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the going endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Addr = addr
			}

			var opts []api.Option
			if a.cfg.CacheEnabled {
				opts = append(opts, api.WithCache(a.cfg.CacheFreshTTL, a.cfg.CacheStaleTTL))
			}
			srv := api.New(a.cfg.Addr, a.newResolver(), opts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("Starting going service", logger.Fields{
				"addr":          a.cfg.Addr,
				"cache_enabled": a.cfg.CacheEnabled,
				"fetch_timeout": a.cfg.FetchTimeout.String(),
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		format  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve going once and print it",
		Long: `Resolves going once and prints it.

Exit codes: 0 going available, 2 not yet published, 1 error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat := OutputFormat(strings.ToLower(format))
			if outFormat != FormatText && outFormat != FormatJSON {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
			}

			if verbose {
				logger.SetDefault(logger.New(logger.LevelDebug, cmd.ErrOrStderr()))
			}

			result := a.newResolver().Resolve(cmd.Context())
			if result.Err != nil {
				return result.Err
			}

			if err := WriteOutput(cmd.OutOrStdout(), result, outFormat, verbose); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			if !result.Available() {
				return ErrNoData
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show per-source outcomes and debug logging")
	return cmd
}

// Execute runs the CLI and exits with the mapped exit code
func Execute() {
	err := NewRootCmd().ExecuteContext(context.Background())
	if err != nil && !errors.Is(err, ErrNoData) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(ExitCode(err))
}
