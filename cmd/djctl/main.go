package main

import (
	"os"

	"github.com/offbeatlabs/mooddj/cmd/djctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
