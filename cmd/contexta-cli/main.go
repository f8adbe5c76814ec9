package main

import (
	"os"

	"contexta/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
