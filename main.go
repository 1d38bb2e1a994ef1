package main

import (
	"fmt"
	"os"

	"github.com/rafaelvasco/dindinho/cmd/categorize"
	"github.com/rafaelvasco/dindinho/cmd/ingest"
	"github.com/rafaelvasco/dindinho/cmd/preview"
	"github.com/rafaelvasco/dindinho/cmd/root"
)

func init() {
	root.Cmd.AddCommand(preview.Cmd)
	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
