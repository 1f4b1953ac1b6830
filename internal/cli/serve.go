package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/insight/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Long: `Start the HTTP server.

Routes:
  PUT    /dataset/{id}/{kind}   add a dataset (body: JSON record array)
  DELETE /dataset/{id}          remove a dataset
  GET    /datasets              list datasets
  POST   /query                 run a query (body: JSON query)
  GET    /echo/{msg}            liveness check
  GET    /metrics               Prometheus metrics

The server runs until interrupted (Ctrl+C or SIGTERM).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, :4321)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.Logger

	facade, st, err := openFacade(opts.RootOptions)
	if err != nil {
		return reportError(formatter, "opening catalog failed", err)
	}
	defer closeStore(logger, st)

	// Setup signal handling for graceful shutdown
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	srv := server.New(server.Config{
		Facade: facade,
		Addr:   opts.Config.Addr,
		Logger: logger,
	})
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return reportError(formatter, "server failed", err)
	}

	logger.Info("server stopped")
	return nil
}
