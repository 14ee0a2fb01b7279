//go:build unix && !linux

package executor

import (
	"os/exec"
	"syscall"
	"time"
)

// configureProcess puts the child in its own process group.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// superviseCommand returns command unchanged; without a parent-death signal
// only the exit hooks stop the process group.
func superviseCommand(command string, _ time.Duration) string {
	return command
}
