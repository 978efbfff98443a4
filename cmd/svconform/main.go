// Command svconform runs SystemVerilog conformance fixtures against a
// compiler backend.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/svconform/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "svconform:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
