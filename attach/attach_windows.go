//go:build windows

package attach

import (
	"nvext/process"
	"nvext/process_windows"
)

const DefaultName = "cs2.exe"

func open(pid process.ProcessID) (process.Process, error) {
	return process_windows.NewWithPID(pid)
}
