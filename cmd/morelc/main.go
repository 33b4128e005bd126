// Command morelc is the CLI front end for the morelc compiler core:
// type-check a program (`check`), compile and evaluate it (`run`), or
// print build metadata (`version`). Subcommands are registered one
// per file under cmd/morelc/cmd via spf13/cobra.
package main

import (
	"fmt"
	"os"

	"github.com/morel-lang/morelc/cmd/morelc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
