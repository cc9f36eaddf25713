// Command numtower inspects the numeric capability tower and checks
// declaration manifests against capability claims.
package main

import (
	"fmt"
	"os"

	"github.com/mfield/numtower/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
