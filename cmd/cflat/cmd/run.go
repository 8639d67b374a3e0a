package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cflat-go/cflat/internal/cflat"
	cferrors "github.com/cflat-go/cflat/internal/errors"
	"github.com/cflat-go/cflat/internal/lexer"
)

var (
	runEvalExpr string
	runTrace    bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Cflat program",
	Long: `Execute a Cflat program from a file or inline source.

Examples:
  # Run a script file
  cflat run script.cf

  # Run inline source
  cflat run -e "int x = 1 + 2;"

  # Trace every executed statement's call stack
  cflat run --trace script.cf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "run inline source instead of reading from file")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "print each executed statement's call stack to stderr")
}

func runScript(_ *cobra.Command, args []string) error {
	env := cflat.New()

	if runTrace {
		env.SetExecutionHook(func(frames []cflat.CallFrame) {
			trace := make(cferrors.StackTrace, len(frames))
			for i, f := range frames {
				trace[i] = cferrors.NewStackFrame(f.FunctionName, "", &lexer.Position{Line: f.Line})
			}
			for i, frame := range trace.Reverse() {
				fmt.Fprintf(os.Stderr, "%*s%s\n", i*2, "", frame.String())
			}
			if top := trace.Top(); top != nil {
				fmt.Fprintf(os.Stderr, "  (depth %d, at %s)\n", trace.Depth(), top.String())
			}
		})
	}

	var err error
	switch {
	case runEvalExpr != "":
		err = env.Load("<eval>", runEvalExpr)
	case len(args) == 1:
		err = env.LoadFromFile(args[0])
	default:
		return fmt.Errorf("either provide a file path or use -e flag for inline code")
	}

	if err != nil {
		if runTrace {
			fmt.Fprintln(os.Stderr, env.LastDiagnosticDetail(2, true))
		}
		return fmt.Errorf("%s", env.GetErrorMessage())
	}
	return nil
}
