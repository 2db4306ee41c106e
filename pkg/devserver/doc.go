// Package devserver launches a Vite development server and tracks the port
// it listens on.
//
// # Components
//
//   - Cell holds the Options shared with the proxy handler. It is created by
//     the caller and passed to everything that needs it.
//   - Resolver finds the Vite executable: VITE_PATH, the project's
//     node_modules/.bin, a package manager on PATH, then a global install.
//   - Supervisor starts the resolved command, reads its stdout on a
//     dedicated OS thread and writes the announced port to the Cell.
//   - Relay republishes the output through slog at the level held in the
//     Cell.
//   - Keeper restarts a crashed process with exponential backoff.
//
// # Usage
//
//	cell := devserver.NewCell(devserver.DefaultOptions())
//	sup := devserver.NewSupervisor(cell, devserver.WithLogger(logger))
//	proc, err := sup.Start(ctx)
//	if err != nil {
//	    return err
//	}
//	defer proc.Stop()
package devserver
