package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"gatekeeper/internal/platform/config"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "gatekeeper",
		Usage:   "Chat verification gateway: Self proofs in, Discord roles out",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   append([]cli.Flag{config.ConfigFileFlag()}, config.Flags()...),
		Action:  run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
