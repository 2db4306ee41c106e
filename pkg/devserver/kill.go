package devserver

import (
	"errors"

	"github.com/shirou/gopsutil/v3/process"
)

// killTree kills pid and all of its descendants. Package manager launchers
// start the dev server as a grandchild, so killing the direct child alone
// would leave it running.
func killTree(pid int) error {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil
		}
		return err
	}
	return killProcess(proc)
}

func killProcess(proc *process.Process) error {
	// Collect children before the parent dies and they get reparented.
	// ErrorNoChildren and lookup failures both leave the list empty.
	children, _ := proc.Children()

	var errs []error
	for _, child := range children {
		if err := killProcess(child); err != nil {
			errs = append(errs, err)
		}
	}

	if err := proc.Kill(); err != nil {
		if running, _ := proc.IsRunning(); running {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
