// Command jactl is the CLI entry point for the Jactl compiler front-end.
package main

import (
	"os"

	"github.com/cwbudde-labs/jactl/cmd/jactl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
