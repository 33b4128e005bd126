package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/morel-lang/morelc/internal/errors"
	"github.com/morel-lang/morelc/internal/fixture"
	"github.com/morel-lang/morelc/internal/session"
)

var checkCoverageWarn bool

var checkCmd = &cobra.Command{
	Use:   "check <file.yaml>",
	Short: "Type-check a program without evaluating it",
	Long: `check reads a YAML fixture (internal/fixture), type-checks and lowers
every declaration through the full pipeline short of evaluation — inference,
query grounding, pattern coverage, inlining/simplification, and plan
building — and reports the inferred type of the last declaration.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkCoverageWarn, "warn-coverage", false, "downgrade non-exhaustive/redundant match findings to warnings")
	rootCmd.AddCommand(checkCmd)
}

func loadConfig(path string) (session.Config, error) {
	cfg := session.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	var raw struct {
		CoverageWarn      bool `yaml:"coverageWarn"`
		MaxSimplifyPasses int  `yaml:"maxSimplifyPasses"`
		PrettyWidth       int  `yaml:"prettyWidth"`
		PrettyDepth       int  `yaml:"prettyDepth"`
		PrettyListLength  int  `yaml:"prettyListLength"`
		PrettyStrLength   int  `yaml:"prettyStrLength"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if raw.CoverageWarn {
		cfg.Coverage = session.CoverageWarn
	}
	if raw.MaxSimplifyPasses > 0 {
		cfg.MaxSimplifyPasses = raw.MaxSimplifyPasses
	}
	if raw.PrettyWidth > 0 {
		cfg.PrettyPrint.Width = raw.PrettyWidth
	}
	if raw.PrettyDepth > 0 {
		cfg.PrettyPrint.Depth = raw.PrettyDepth
	}
	if raw.PrettyListLength > 0 {
		cfg.PrettyPrint.ListLength = raw.PrettyListLength
	}
	if raw.PrettyStrLength > 0 {
		cfg.PrettyPrint.StrLength = raw.PrettyStrLength
	}
	return cfg, nil
}

func loadFile(path string) (*session.Session, *session.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if checkCoverageWarn {
		cfg.Coverage = session.CoverageWarn
	}
	return session.New(cfg), &cfg, nil
}

func runCheck(c *cobra.Command, args []string) error {
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

	fmt.Printf("%s Type checking %s...\n", yellow("→"), path)
	typeEnv, _ := s.Prelude()
	cs, _, warnings, err := s.PrepareStatement(typeEnv, f, session.DefaultEvaluator)
	if err != nil {
		printReportErr(err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Printf("%s %s\n", yellow("warning:"), w)
	}
	fmt.Printf("%s %s : %s\n", green("✓"), bold(path), cs.Type())
	return nil
}

// printReportErr formats a structured *errors.Report with its error
// code and source position if present, falling back to the plain
// error string for anything that didn't go through internal/errors.
func printReportErr(err error) {
	if rep, ok := errors.AsReport(err); ok {
		if rep.Pos != nil {
			fmt.Fprintf(os.Stderr, "%s %s [%s] %s: %s\n", red("Error"), rep.Pos, rep.Code, rep.Kind, rep.Message)
		} else {
			fmt.Fprintf(os.Stderr, "%s [%s] %s: %s\n", red("Error"), rep.Code, rep.Kind, rep.Message)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", red("Error"), err)
}
