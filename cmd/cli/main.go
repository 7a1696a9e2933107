package main

import (
	"os"

	"github.com/myshop-dev/myshop/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
