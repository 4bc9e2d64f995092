// Command bizstate inspects and drives a bizstate workspace.
package main

import (
	"bizstate/internal/cli"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
