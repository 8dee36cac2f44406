// cmd/waypoint/main.go
//
// Entry point for the waypoint CLI. With no arguments it opens the
// interactive planner in the current directory.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kingrea/waypoint/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
