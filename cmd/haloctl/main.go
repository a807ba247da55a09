// Package main provides haloctl, a command-line client for the Halo
// extension API.
package main

import (
	"os"

	"github.com/yaroslav/haloclient/cmd/haloctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
