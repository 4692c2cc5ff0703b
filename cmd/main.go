package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dental-center/cmd/bootstrap"
	"dental-center/internal/delivery/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize application with all dependencies for every command invocation
	factory := func(ctx context.Context, opts cli.Options) (*cli.Session, error) {
		app, err := bootstrap.New(ctx, bootstrap.Options{
			ConfigPath: opts.ConfigPath,
			Verbose:    opts.Verbose,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize application: %w", err)
		}
		return &cli.Session{
			Store:     app.Store,
			Dashboard: app.Dashboard,
			FS:        app.FS,
			Location:  app.Config.Location(),
			Close: func(ctx context.Context) error {
				defer app.Close(ctx)
				return app.Flush(ctx)
			},
		}, nil
	}

	if err := cli.Run(ctx, factory, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
