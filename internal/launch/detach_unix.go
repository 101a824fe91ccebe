//go:build !windows

package launch

import (
	"os/exec"
	"syscall"
)

// detach puts the child in its own process group so terminal signals sent to
// dbyview (Ctrl-C) do not reach the launched program.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
