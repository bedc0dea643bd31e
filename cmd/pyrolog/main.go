// Command pyrolog solves Prolog queries and manages their recorded traces.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pyrolog/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
