package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/quarterlog/quarterlog/internal/cmd"
	"github.com/quarterlog/quarterlog/internal/config"
	"github.com/quarterlog/quarterlog/version"
)

func main() {
	// Load settings before parsing so defaults can come from the file
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var cli cmd.CLI
	cli.SetSettings(settings)

	ctx := kong.Parse(&cli,
		kong.Name("quarterlog"),
		kong.Description(version.Tagline),
		kong.UsageOnError(),
		kong.Vars{"version": version.Info()},
	)
	defer cli.Close()

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
