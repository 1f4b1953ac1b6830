package cli

import (
	"sync"

	"github.com/spf13/cobra"

	"github.com/roach88/insight/internal/compiler"
	"github.com/roach88/insight/internal/insight"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Inline string // --query
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [query-file]",
		Short: "Run a query against the catalog",
		Long: `Run a query against a dataset in the catalog.

The query comes from a JSON or CUE file, from stdin ("-"), or inline via
--query. Text output is a table with one column per OPTIONS.COLUMNS entry;
JSON output carries the rows and the query id used in the logs.`,
		Example: `  insight query q.json
  insight query --query '{"WHERE":{},"OPTIONS":{"COLUMNS":["rooms_name"]}}'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Inline, "query", "q", "", "inline JSON query")

	return cmd
}

func runQuery(opts *QueryOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	switch {
	case opts.Inline != "" && len(args) > 0:
		return NewExitError(ExitCommandError, "pass either a query file or --query, not both")
	case opts.Inline == "" && len(args) == 0:
		return NewExitError(ExitCommandError, "a query file or --query is required")
	}

	var raw any
	var err error
	if opts.Inline != "" {
		raw, err = ParseQuery([]byte(opts.Inline))
	} else {
		raw, err = LoadQuery(args[0], cmd.InOrStdin())
	}
	if err != nil {
		return reportError(formatter, "loading query failed", err)
	}

	// Compile up front for the column order of the text table.
	q, err := compiler.Compile(raw)
	if err != nil {
		return reportError(formatter, "query failed", err)
	}
	columns := columnNames(q.QueryBody().Columns)

	ids := &recordingIDGenerator{next: opts.IDGenerator}
	facade, st, err := openFacade(opts.RootOptions, insight.WithIDGenerator(ids))
	if err != nil {
		return reportError(formatter, "opening catalog failed", err)
	}
	defer closeStore(opts.Logger, st)

	rows, err := facade.PerformQuery(cmd.Context(), raw)
	if err != nil {
		return reportError(formatter, "query failed", err)
	}
	formatter.VerboseLog("Query %s returned %d row(s)", ids.Last(), len(rows))

	return formatter.Rows(ids.Last(), columns, rows)
}

// recordingIDGenerator remembers the last id it handed out so the CLI can
// print the id the facade logged.
type recordingIDGenerator struct {
	next insight.QueryIDGenerator

	mu   sync.Mutex
	last string
}

func (g *recordingIDGenerator) Generate() string {
	next := g.next
	if next == nil {
		next = insight.UUIDv7Generator{}
	}
	id := next.Generate()

	g.mu.Lock()
	g.last = id
	g.mu.Unlock()
	return id
}

// Last returns the most recent id, or "" if none was generated.
func (g *recordingIDGenerator) Last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
