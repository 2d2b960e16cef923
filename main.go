package main

import (
	"fmt"
	"os"

	"github.com/tphakala/raextract/cmd"
	"github.com/tphakala/raextract/internal/buildinfo"
	"github.com/tphakala/raextract/internal/conf"
)

// version and buildDate are set via -ldflags at build time.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	build := &buildinfo.Context{Version: version, BuildDate: buildDate}

	rootCmd := cmd.RootCommand(settings, build)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
