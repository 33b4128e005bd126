package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information, set by build flags.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "morelc",
	Short: "Type-check and run morelc programs",
	Long: `morelc is the compiler core for a strongly-typed, polymorphic
functional language with first-class relational query expressions.

It accepts a program expressed as a YAML fixture (see internal/fixture),
type-checks it with Hindley-Milner inference and overload resolution,
grounds its queries into bounded generators, simplifies and lowers it
to an evaluator plan, and either reports its type (check) or runs it
(run).`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a morelc.yaml config file")
}
