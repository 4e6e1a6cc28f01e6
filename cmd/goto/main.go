package main

import (
	"os"

	"github.com/dshills/goto/internal/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	os.Exit(cli.Execute(version + " (built " + buildTime + ")"))
}
