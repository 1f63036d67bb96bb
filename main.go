package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trailtracker/trailtracker/cmd"
	"github.com/trailtracker/trailtracker/internal/buildinfo"
	"github.com/trailtracker/trailtracker/internal/conf"
)

// Set with -ldflags "-X main.version=... -X main.buildDate=... -X main.commit=..."
var (
	version   string
	buildDate string
	commit    string
)

func main() {
	settings := &conf.Settings{}
	build := buildinfo.NewContext(version, buildDate, commit)

	rootCmd := cmd.RootCommand(settings, build)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
