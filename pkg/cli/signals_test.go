package cli

import (
	"context"
	"os"
	"runtime"
	"syscall"
	"testing"
	"time"
)

func TestSetupSignalHandler_NotCancelledInitially(t *testing.T) {
	ctx, cancel := SetupSignalHandler(context.Background())
	defer cancel()

	select {
	case <-ctx.Done():
		t.Error("context cancelled before any signal")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestSetupSignalHandler_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := SetupSignalHandler(parent)
	defer cancel()

	cancelParent()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with parent")
	}
}

func TestSetupSignalHandler_Signals(t *testing.T) {
	if testing.Short() {
		t.Skip("sends signals to the test process")
	}
	if runtime.GOOS == "windows" {
		t.Skip("signals cannot be sent to the own process on windows")
	}

	forced := make(chan struct{}, 1)
	orig := forceExit
	forceExit = func() { forced <- struct{}{} }
	t.Cleanup(func() { forceExit = orig })

	parent, cancelParent := context.WithCancel(context.Background())
	defer cancelParent()
	ctx, cancel := SetupSignalHandler(parent)
	defer cancel()

	self, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatal(err)
	}

	if err := self.Signal(syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled on first signal")
	}

	if err := self.Signal(syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	select {
	case <-forced:
	case <-time.After(2 * time.Second):
		t.Fatal("second signal did not force exit")
	}
}
