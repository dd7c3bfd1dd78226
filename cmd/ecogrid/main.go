package main

import (
	"github.com/tebeka/atexit"

	"ecogrid/internal/cli"
)

func main() {
	atexit.Exit(cli.Execute())
}
