package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cflat-go/cflat/internal/diagnostics"
	"github.com/cflat-go/cflat/internal/parser"
)

var (
	parseEvalExpr string
	parseDumpAST  bool
	parseJSON     bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse Cflat source and display its statements",
	Long: `Parse Cflat source code and display the resulting statement list.

Examples:
  # Parse a script file
  cflat parse script.cf

  # Parse inline source
  cflat parse -e "int x = 1;"

  # Dump the full AST structure
  cflat parse --dump-ast script.cf

  # Print statements as JSON
  cflat parse --json script.cf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline source instead of reading from file")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST structure")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print statements as a JSON array")
}

func runParse(_ *cobra.Command, args []string) error {
	input, _, err := readSource(parseEvalExpr, args)
	if err != nil {
		return err
	}

	prog, err := parser.Parse(input)
	if err != nil {
		return err
	}

	switch {
	case parseJSON:
		out, err := diagnostics.ProgramJSON(prog)
		if err != nil {
			return err
		}
		fmt.Println(out)
	case parseDumpAST:
		fmt.Print(diagnostics.ProgramDump(prog))
	default:
		fmt.Print(prog.String())
	}
	return nil
}
