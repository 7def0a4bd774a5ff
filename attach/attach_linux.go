//go:build linux

package attach

import (
	"nvext/process"
	"nvext/process_linux"
)

// DefaultName is the game executable as seen under Proton
const DefaultName = "cs2.exe"

func open(pid process.ProcessID) (process.Process, error) {
	return process_linux.NewWithPID(pid)
}
