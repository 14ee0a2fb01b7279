//go:build windows

package executor

import (
	"os"
	"os/exec"
	"time"
)

var terminateSignal os.Signal = os.Kill

func configureProcess(cmd *exec.Cmd) {}

func superviseCommand(command string, _ time.Duration) string { return command }

func signalGroup(p *os.Process, sig os.Signal) error {
	if p == nil {
		return os.ErrProcessDone
	}
	return p.Kill()
}
