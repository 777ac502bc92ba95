package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// cmdContext returns a context cancelled on SIGINT/SIGTERM so a long
// parallel run can stop cleanly between batches. The process exits
// shortly after, so the stop func is left for the OS to reclaim.
func cmdContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}
