package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cflat",
	Short: "Cflat scripting engine",
	Long: `cflat is a Go implementation of Cflat, an embeddable C++-subset
scripting engine.

Cflat supports:
  - A fixed C++ grammar: namespaces, structs/classes, templates, operator
    overloading
  - Macro-based preprocessing ("#define", "#if"/"#ifdef" family)
  - A tree-walking evaluator with a uniform host call trampoline

This CLI exercises the engine's public load/evaluate_expression surface
directly; it is not the primary embedding interface (see the cflat
package for that).`,
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

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
