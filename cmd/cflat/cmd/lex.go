package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cflat-go/cflat/internal/diagnostics"
	"github.com/cflat-go/cflat/internal/lexer"
)

var (
	lexEvalExpr string
	lexShowPos  bool
	lexJSON     bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize Cflat source and print the resulting tokens",
	Long: `Tokenize (lex) Cflat source code and print the resulting tokens.

Examples:
  # Tokenize a script file
  cflat lex script.cf

  # Tokenize inline source
  cflat lex -e "int x = 42;"

  # Show token positions
  cflat lex --show-pos script.cf

  # Print tokens as JSON
  cflat lex --json script.cf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline source instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexJSON, "json", false, "print tokens as a JSON array")
}

func runLex(_ *cobra.Command, args []string) error {
	input, _, err := readSource(lexEvalExpr, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	var tokens []lexer.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == lexer.EOF {
			break
		}
	}

	if lexJSON {
		out, err := diagnostics.TokensJSON(tokens)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	for _, tok := range tokens {
		printToken(tok)
	}
	return nil
}

func printToken(tok lexer.Token) {
	out := fmt.Sprintf("[%-12s]", tok.Kind)
	if tok.Literal == "" {
		out += fmt.Sprintf(" %s", tok.Kind)
	} else {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if lexShowPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}

func readSource(evalExpr string, args []string) (input, filename string, err error) {
	switch {
	case evalExpr != "":
		return evalExpr, "<eval>", nil
	case len(args) == 1:
		data, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return string(data), args[0], nil
	default:
		return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
	}
}
