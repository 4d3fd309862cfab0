package main

import (
	"os"

	"lifegrid/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCommand()))
}
