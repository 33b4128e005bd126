package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morel-lang/morelc/internal/fixture"
	"github.com/morel-lang/morelc/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run <file.yaml>",
	Short: "Compile and evaluate a program",
	Long: `run reads a YAML fixture (internal/fixture), runs it through the full
pipeline, and evaluates the resulting plan against the prelude environment,
printing each binding's "val name = value : type" line as it is produced.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&checkCoverageWarn, "warn-coverage", false, "downgrade non-exhaustive/redundant match findings to warnings")
	rootCmd.AddCommand(runCmd)
}

func runRun(c *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: cannot read %s: %w", red("Error"), path, err)
	}

	f, err := fixture.File(data)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", red("Error"), path, err)
	}

	s, _, err := loadFile(path)
	if err != nil {
		return err
	}

	typeEnv, runtimeEnv := s.Prelude()
	cs, _, warnings, err := s.PrepareStatement(typeEnv, f, session.DefaultEvaluator)
	if err != nil {
		printReportErr(err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Printf("%s %s\n", yellow("warning:"), w)
	}

	err = cs.Eval(runtimeEnv,
		func(line string) { fmt.Println(line) },
		func(session.Binding) {},
	)
	if err != nil {
		os.Exit(1)
	}
	return nil
}
