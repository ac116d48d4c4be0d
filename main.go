package main

import (
	"os"

	"github.com/dineshvn/metroplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
