package main

import (
	"os"

	"github.com/loxvm/clox/cmd"
)

func main() {
	if err := cmd.App().Execute(); err != nil {
		os.Exit(1)
	}
}
