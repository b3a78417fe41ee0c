package main

import (
	"os"

	"github.com/omaradly/transmem/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
