// Command cflat is the reference CLI for the embeddable scripting
// engine: tokenize, parse, check, and run the fixed C++ subset.
package main

import (
	"fmt"
	"os"

	"github.com/cflat-go/cflat/cmd/cflat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
