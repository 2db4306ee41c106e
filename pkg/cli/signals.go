package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// forceExit is called on the second shutdown signal.
var forceExit = func() { os.Exit(130) }

// SetupSignalHandler returns a context that is cancelled on the first SIGINT
// or SIGTERM. A second signal exits the process immediately. The returned
// cancel function cancels the context and releases the signal registration.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	released := make(chan struct{})
	var once sync.Once

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)

		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
			return
		}

		select {
		case <-sigChan:
			forceExit()
		case <-released:
		}
	}()

	return ctx, func() {
		once.Do(func() { close(released) })
		cancel()
	}
}
