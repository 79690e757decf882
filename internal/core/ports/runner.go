package ports

import "context"

// RunResult carries the captured output of a finished process.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner executes external processes on behalf of probes and repairs.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type CommandRunner interface {
	// Run executes argv in dir and returns the captured output.
	//
	// A non-zero exit is returned as an error carrying the exit code; the
	// RunResult is still populated. Context cancellation and deadline expiry
	// terminate the process.
	Run(ctx context.Context, dir string, argv []string) (RunResult, error)
}
