package main

import (
	"os"

	"github.com/cwbudde/go-oberon/cmd/oberon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
