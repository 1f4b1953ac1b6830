package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/insight/internal/compiler"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult describes a compiled query.
type CompilationResult struct {
	Dataset string         `json:"dataset"`
	Kind    ir.Kind        `json:"kind"`
	Type    string         `json:"type"` // "standard" | "aggregate"
	Columns []string       `json:"columns"`
	Query   map[string]any `json:"query"` // normalized query
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query-file>",
		Short: "Validate a query and print its normalized form",
		Long: `Compile a JSON or CUE query without running it.

The compiler checks every clause, resolves keys against the sections and
rooms schemas and prints the query as it will be evaluated. Use "-" to read
JSON from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the normalized query as canonical JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	raw, err := LoadQuery(path, cmd.InOrStdin())
	if err != nil {
		return reportError(formatter, "loading query failed", err)
	}
	formatter.VerboseLog("Loaded query from %s", path)

	q, err := compiler.Compile(raw)
	if err != nil {
		return reportError(formatter, "compilation failed", err)
	}

	result := compilationResult(q)

	if opts.Output != "" {
		data, err := ir.MarshalCanonical(result.Query)
		if err != nil {
			return reportError(formatter, "encoding query failed", err)
		}
		data = append(data, '\n')
		if err := os.WriteFile(opts.Output, data, 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("failed to write output: %v", err), nil)
			return &ExitError{Code: ExitCommandError, Message: "failed to write output", Err: err, reported: true}
		}
		formatter.VerboseLog("Wrote normalized query to %s", opts.Output)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	out := formatter.Writer
	fmt.Fprintf(out, "✓ Compiled %s query over %s (%s)\n", result.Type, result.Dataset, result.Kind)
	fmt.Fprintf(out, "  columns: %s\n", strings.Join(result.Columns, ", "))
	if opts.Output != "" {
		fmt.Fprintf(out, "  output: %s\n", opts.Output)
	}
	return nil
}

func compilationResult(q queryir.Query) CompilationResult {
	body := q.QueryBody()
	typ := "standard"
	if _, ok := q.(queryir.AggregateQuery); ok {
		typ = "aggregate"
	}
	return CompilationResult{
		Dataset: body.Dataset,
		Kind:    body.Kind,
		Type:    typ,
		Columns: columnNames(body.Columns),
		Query:   queryir.Encode(q),
	}
}

func columnNames(keys []queryir.AnyKey) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name()
	}
	return names
}
