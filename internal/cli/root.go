package cli

import (
	"context"
	"errors"
	"io"
)

// Execute runs the converge CLI with args and returns the first error.
//
// Logging goes to stderr at info level, or debug with --verbose (-v). The
// logger is attached to the command context and reachable from every
// command through loggerFromContext.
//
// Example:
//
//	func main() {
//	    ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer cancel()
//	    if err := cli.Execute(ctx, os.Stderr, os.Args[1:]); err != nil {
//	        os.Exit(cli.ExitCode(err))
//	    }
//	}
func Execute(ctx context.Context, stderr io.Writer, args []string) error {
	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// ExitCode maps an Execute error to a process exit status: 130 when the
// run was interrupted, 1 otherwise.
func ExitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130 // Standard shell convention for SIGINT
	}
	return 1
}
