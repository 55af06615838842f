// dyntext CLI - expand and select from alternation templates
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/randalmurphal/dyntext/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			// Flag and argument errors are not formatted by the commands.
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
