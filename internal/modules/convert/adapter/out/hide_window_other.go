//go:build !windows

package out

import "os/exec"

func hideWindow(cmd *exec.Cmd) {
	_ = cmd
}
