package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/commands"
)

func newExecCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Run one command locally and print its replies",
		Example: `  awsbot exec launch web t2.micro my-key
  awsbot exec --output-dir ./keys create_keypair my-key`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), args[0], args[1:], outputDir, cmd.OutOrStdout())
		},
	}

	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for images and files (default: write to stdout)")
	return cmd
}

func runExec(ctx context.Context, name string, args []string, outputDir string, out io.Writer) error {
	app, cleanup, err := initializeExec()
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer cleanup()

	if err := app.Config.ValidateCommands(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sink := &cliSink{out: out, dir: outputDir, terminal: isTerminal(out)}
	return dispatchLocal(ctx, app.Dispatcher, sink, name, args)
}

// dispatchLocal runs one command and turns its outcome into an exit status.
func dispatchLocal(ctx context.Context, d *commands.Dispatcher, sink *cliSink, name string, args []string) error {
	res := d.Dispatch(ctx, commands.Request{Name: name, Args: args, Sink: sink})

	switch res.Failure {
	case commands.FailureNone:
		return nil
	case commands.FailureUnknown:
		return fmt.Errorf("%w: %s (run \"awsbot exec help\" for a list)", commands.ErrUnknownCommand, name)
	default:
		return fmt.Errorf("command %s failed: %s", name, res.Failure)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
