package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// Set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := executeCLI(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "dashcache:", err)
		return 1
	}
	return 0
}

func versionString() string {
	return fmt.Sprintf("dashcache %s (%s, %s)", version, commit[:min(7, len(commit))], runtime.Version())
}
