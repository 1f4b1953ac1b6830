package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/insight/internal/config"
	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/insight"
	"github.com/roach88/insight/internal/store"
)

// RootOptions holds global flags for all commands, and the configuration
// they resolve to once a command runs.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	MaxResults int
	LogFormat  string

	// Config and Logger are set in PersistentPreRunE.
	Config *config.Config
	Logger *slog.Logger

	// IDGenerator allows overriding the query id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator insight.QueryIDGenerator
}

// NewRootCommand creates the root command for the insight CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Query course sections and campus rooms",
		Long: `insight stores sections and rooms datasets in a SQLite catalog and
answers queries over them.

A query is a JSON (or CUE) document with WHERE, OPTIONS and an optional
TRANSFORMATIONS clause. Results are capped at 5000 rows or groups unless
--max-results says otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Config = cfg
			opts.Logger = newLogger(cmd.ErrOrStderr(), cfg)
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default insight.yaml if present)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", config.DefaultFormat, "output format (json|text)")
	flags.StringVar(&opts.Database, "db", config.DefaultDatabase, "path to the SQLite catalog")
	flags.IntVar(&opts.MaxResults, "max-results", config.DefaultMaxResults, "maximum result rows or groups")
	flags.StringVar(&opts.LogFormat, "log-format", config.DefaultLogFormat, "log format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewDatasetCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, NewRootCommand(), args, stdout, stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	var exitErr *ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.reported) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	if err != nil && exitErr == nil {
		// Flag and argument errors from cobra.
		return ExitCommandError
	}
	return GetExitCode(err)
}

// newLogger builds the slog logger for a command run.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// newFormatter builds the output formatter from the resolved config.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Config.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Config.Verbose,
	}
}

// openFacade opens the configured catalog and wraps it in a facade. The
// caller must close the returned store.
func openFacade(opts *RootOptions, extra ...insight.FacadeOption) (*insight.Facade, *store.Store, error) {
	st, err := store.Open(opts.Config.Database)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeDatabase, Message: fmt.Sprintf("opening catalog %s: %v", opts.Config.Database, err)}
	}

	facadeOpts := []insight.FacadeOption{
		insight.WithLogger(opts.Logger),
		insight.WithEngineOptions(engine.WithMaxResults(opts.Config.MaxResults)),
	}
	if opts.IDGenerator != nil {
		facadeOpts = append(facadeOpts, insight.WithIDGenerator(opts.IDGenerator))
	}
	facadeOpts = append(facadeOpts, extra...)
	return insight.NewFacade(st, facadeOpts...), st, nil
}

func closeStore(logger *slog.Logger, st *store.Store) {
	if err := st.Close(); err != nil {
		logger.Error("error closing catalog", "error", err)
	}
}
