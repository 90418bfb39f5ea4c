//go:build !windows

// Package process stops the headless Chrome started for PDF export.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, which
// takes Chrome's renderer and GPU helpers down with the browser.
func KillProcessGroup(pid int) {
	// Errors ignored: the launcher's own Kill runs afterwards.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
