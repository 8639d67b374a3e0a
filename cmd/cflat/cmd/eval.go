package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cflat-go/cflat/internal/cflat"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate a single Cflat expression and print its value",
	Long: `Evaluate a single expression with no surrounding statement and print
its resulting value.

Example:
  cflat eval "2 + 3 * 4"`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

func runEval(_ *cobra.Command, args []string) error {
	env := cflat.New()
	val, err := env.EvaluateExpression(args[0])
	if err != nil {
		return fmt.Errorf("%s", env.GetErrorMessage())
	}
	fmt.Println(val.String())
	return nil
}
