package main

import (
	"fmt"
	"os"

	"github.com/JeffStuy/cs-layerfilterutil/cmd/layerfilterutil/cli"
	"github.com/JeffStuy/cs-layerfilterutil/cmd/layerfilterutil/cli/document"
	"github.com/JeffStuy/cs-layerfilterutil/cmd/layerfilterutil/cli/setup"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	}))

	root.AddCommand(document.NewCallCommand())
	root.AddCommand(document.NewFilterCommand())
	root.AddCommand(document.NewLayerCommand())
	root.AddCommand(setup.NewConfigCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
