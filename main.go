package main

import (
	"context"
	"fmt"
	"os"

	"github.com/databirdlab/densitycal/cmd"
	"github.com/databirdlab/densitycal/internal/buildinfo"
	"github.com/databirdlab/densitycal/internal/conf"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   = ""
	buildDate = ""
)

func main() {
	settings := &conf.Settings{}
	rootCmd := cmd.RootCommand(settings, buildinfo.NewContext(version, buildDate))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
