package common

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InterruptedContext returns a context canceled on the first interrupt signal.
func InterruptedContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent,
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGQUIT,
	)
}
