package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
)

// lifecycle is the part of *fx.App that run drives.
type lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Done() <-chan os.Signal
}

// run starts app and blocks until ctx is cancelled or fx reports a shutdown signal.
func run(ctx context.Context, app lifecycle) error {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start labor service: %v\n", err)
		return err
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if err := app.Stop(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop labor service: %v\n", err)
		return err
	}
	return nil
}

var _ lifecycle = (*fx.App)(nil)
