package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/insight/internal/dataset"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/store"
)

// NewDatasetCommand creates the dataset command and its add, remove and
// list subcommands.
func NewDatasetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage datasets in the catalog",
	}

	cmd.AddCommand(newDatasetAddCommand(rootOpts))
	cmd.AddCommand(newDatasetRemoveCommand(rootOpts))
	cmd.AddCommand(newDatasetListCommand(rootOpts))

	return cmd
}

func newDatasetAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <sections|rooms> <records-file>",
		Short: "Add a dataset from a JSON or CUE record file",
		Long: `Add a dataset to the catalog.

The record file is a JSON array of records, or a CUE file whose value is
such a list (or a struct with a records field). Every record must have
exactly the fields of the kind's schema. Dataset ids may not be empty,
whitespace only, or contain an underscore.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatasetAdd(opts, args[0], args[1], args[2], cmd)
		},
	}
}

func runDatasetAdd(opts *RootOptions, id, kindArg, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	kind, err := ir.ParseKind(kindArg)
	if err != nil {
		return reportError(formatter, "invalid kind", err)
	}

	records, err := dataset.LoadFile(path, kind)
	if err != nil {
		return reportError(formatter, "loading records failed", err)
	}
	formatter.VerboseLog("Loaded %d %s record(s) from %s", len(records), kind, path)

	facade, st, err := openFacade(opts)
	if err != nil {
		return reportError(formatter, "opening catalog failed", err)
	}
	defer closeStore(opts.Logger, st)

	ids, err := facade.AddDataset(cmd.Context(), id, kind, records)
	if err != nil {
		return reportError(formatter, "adding dataset failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ids)
	}
	fmt.Fprintf(formatter.Writer, "✓ Added dataset %s (%s, %d rows)\n", id, kind, len(records))
	return nil
}

func newDatasetRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <id>",
		Short:         "Remove a dataset from the catalog",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd)

			facade, st, err := openFacade(opts)
			if err != nil {
				return reportError(formatter, "opening catalog failed", err)
			}
			defer closeStore(opts.Logger, st)

			id, err := facade.RemoveDataset(cmd.Context(), args[0])
			if err != nil {
				return reportError(formatter, "removing dataset failed", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(id)
			}
			fmt.Fprintf(formatter.Writer, "✓ Removed dataset %s\n", id)
			return nil
		},
	}
}

func newDatasetListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List datasets in insertion order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd)

			facade, st, err := openFacade(opts)
			if err != nil {
				return reportError(formatter, "opening catalog failed", err)
			}
			defer closeStore(opts.Logger, st)

			infos, err := facade.ListDatasets(cmd.Context())
			if err != nil {
				return reportError(formatter, "listing datasets failed", err)
			}

			if formatter.Format == "json" {
				return formatter.Success(infos)
			}
			printDatasets(formatter, infos)
			return nil
		},
	}
}

func printDatasets(formatter *OutputFormatter, infos []store.DatasetInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "No datasets.")
		return
	}
	rows := make([]table.Row, len(infos))
	for i, info := range infos {
		rows[i] = table.Row{info.ID, info.Kind, info.NumRows}
	}
	formatter.Table(table.Row{"ID", "KIND", "ROWS"}, rows)
}
