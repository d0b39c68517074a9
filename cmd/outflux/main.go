package main

import (
	"os"

	"github.com/outflux/outflux/cmd/outflux/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
