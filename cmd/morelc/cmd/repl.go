package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/morel-lang/morelc/internal/env"
	"github.com/morel-lang/morelc/internal/fixture"
	"github.com/morel-lang/morelc/internal/session"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long: `repl is a thin external-collaborator shell around session.Session: each
line is decoded as a one-declaration YAML fixture (internal/fixture), run
through PrepareStatement/Eval, and its bindings folded into the session's
running environment for the next line to see. Line editing and history are
provided by github.com/peterh/liner — the REPL loop itself is not part of
the compiler core.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

const replHistoryFile = ".morelc_history"

func runRepl(c *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	s := session.New(cfg)
	typeEnv, runtimeEnv := s.Prelude()

	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	histPath := filepath.Join(os.TempDir(), replHistoryFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("%s\n", bold("morelc"))
	fmt.Println("Type :quit to exit. Each line is a one-declaration YAML fixture.")
	fmt.Println()

	for {
		input, err := line.Prompt("morel> ")
		if err == io.EOF {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == ":quit" || input == ":q" {
			break
		}
		line.AppendHistory(input)

		f, err := fixture.File([]byte("decls:\n  - " + indentContinuation(input)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("Error"), err)
			continue
		}

		cs, newTypeEnv, warnings, err := s.PrepareStatement(typeEnv, f, session.DefaultEvaluator)
		if err != nil {
			printReportErr(err)
			continue
		}
		for _, w := range warnings {
			fmt.Printf("%s %s\n", yellow("warning:"), w)
		}
		typeEnv = newTypeEnv

		err = cs.Eval(runtimeEnv,
			func(l string) { fmt.Println(l) },
			func(b session.Binding) {
				runtimeEnv = runtimeEnv.Bind(&env.Binding{Name: b.Name, Ordinal: b.Ordinal, Value: b.Value, Type: b.Type, Kind: env.VAL})
			},
		)
		_ = err // already reported to stdout by Eval
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
	fmt.Println(green("Goodbye!"))
	return nil
}

// indentContinuation re-indents every line after the first of a
// multi-line REPL entry so it nests correctly under the synthetic
// "decls:\n  - " prefix this file wraps every line in.
func indentContinuation(input string) string {
	lines := strings.Split(input, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = "    " + lines[i]
	}
	return strings.Join(lines, "\n")
}
