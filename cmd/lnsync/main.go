// Command lnsync is a thin cobra-based entry point over pkg/lnsynccore,
// pkg/syncplanner, and pkg/setalgebra. It is wiring only: no flag-layering
// or config-file system sits on top of cobra/pflag, matching the design's
// choice to keep configuration a single struct built per invocation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

var rootCommand = &cobra.Command{
	Use:   "lnsync",
	Short: "Content-addressed file-tree synchronizer and duplicate finder",
}

func main() {
	rootCommand.AddCommand(syncCommand, dupesCommand)
	if err := rootCommand.Execute(); err != nil {
		fatal(err)
	}
}
