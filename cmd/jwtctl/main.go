// Command jwtctl signs, verifies and decodes compact tokens.
package main

import (
	"os"

	"github.com/cybergodev/jwtkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
