package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ifs-audit/actionplan/internal/cli"
	"github.com/ifs-audit/actionplan/internal/engine"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Workflow refusals render themselves through the formatter;
		// everything else is surfaced here.
		var we *engine.WorkflowError
		if !errors.As(err, &we) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
