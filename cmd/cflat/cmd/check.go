package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cflat-go/cflat/internal/cflat"
	"github.com/cflat-go/cflat/internal/diagnostics"
)

var checkDumpNamespaces bool

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Load a Cflat program and report whether it succeeds",
	Long: `Load (preprocess, parse, and execute) a Cflat program, reporting only
whether it succeeded; on failure, prints the diagnostic.

Examples:
  cflat check script.cf
  cflat check --dump-namespaces script.cf`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkDumpNamespaces, "dump-namespaces", false, "dump the resulting namespace tree as YAML")
}

func runCheck(_ *cobra.Command, args []string) error {
	env := cflat.New()
	err := env.LoadFromFile(args[0])
	if err != nil {
		return fmt.Errorf("%s", env.GetErrorMessage())
	}

	if checkDumpNamespaces {
		out, err := diagnostics.DumpNamespacesYAML(env.Namespace(""))
		if err != nil {
			return err
		}
		fmt.Print(out)
	} else {
		fmt.Println("ok")
	}
	return nil
}
