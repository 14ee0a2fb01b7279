//go:build unix

package executor

import (
	"errors"
	"os"
	"syscall"
)

var terminateSignal os.Signal = syscall.SIGTERM

// signalGroup delivers sig to the whole process group led by p, falling back
// to the process itself when the group is gone.
func signalGroup(p *os.Process, sig os.Signal) error {
	if p == nil {
		return os.ErrProcessDone
	}
	s, ok := sig.(syscall.Signal)
	if !ok {
		return p.Signal(sig)
	}
	if err := syscall.Kill(-p.Pid, s); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return p.Signal(sig)
	}
	return nil
}
