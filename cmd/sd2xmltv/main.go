// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// sd2xmltv fetches Schedules Direct listings and writes an XMLTV guide.
//
// Usage:
//
//	sd2xmltv [run] --config /etc/sd2xmltv/config.yaml
//	sd2xmltv check guide.xml
//	sd2xmltv version
//
// Exit codes:
//   - 0: success
//   - 1: the command failed
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
