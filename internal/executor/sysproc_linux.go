//go:build linux

package executor

import (
	"fmt"
	"math"
	"os/exec"
	"syscall"
	"time"
)

// configureProcess puts the child in its own process group and asks the
// kernel to send it SIGHUP if the parent dies first. The supervisor script
// from superviseCommand turns that SIGHUP into a kill of the whole group.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGHUP,
	}
}

// supervisorScript runs the command as a background job of a group leader
// that stays alive until the job exits. SIGTERM to the group reaches the job
// and is ignored by the leader so its exit status stays the job's. SIGHUP,
// sent by the kernel when the host dies, terminates the whole group and
// escalates to SIGKILL after the grace period.
const supervisorScript = `trap ':' TERM
trap 'kill -TERM -- -$$ 2>/dev/null; sleep %d; kill -KILL -- -$$' HUP
{
%s
} &
child=$!
while :; do
	wait "$child"
	status=$?
	kill -0 "$child" 2>/dev/null || exit "$status"
done
`

// superviseCommand wraps command so no process it spawns outlives the host.
func superviseCommand(command string, grace time.Duration) string {
	secs := int(math.Ceil(grace.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf(supervisorScript, secs, command)
}
