// Package main is the entry point for the hale environment doctor.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"

	"go.trai.ch/hale/cmd/hale/commands"
	"go.trai.ch/hale/internal/app"
	"go.trai.ch/hale/internal/core/domain"
	_ "go.trai.ch/hale/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		if err := components.Telemetry.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to close telemetry: %v\n", err)
		}
	}()

	// 2. Interface - CLI
	cli := commands.New(components.App)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrDriftDetected) ||
			errors.Is(err, domain.ErrUnsatisfiable) ||
			errors.Is(err, domain.ErrActionFailed) {
			// The command already reported the details on stdout.
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
