// Package attach opens the game process with the backend for the current OS.
package attach

import (
	"errors"
	"fmt"
	"strings"

	"nvext/process"

	gopsutil "github.com/shirou/gopsutil/v3/process"
)

// ErrNotRunning is returned when no process matches the requested name
var ErrNotRunning = errors.New("process not running")

// Find returns every running process whose executable name matches name, case-insensitively
func Find(name string) ([]process.ProcessInfo, error) {
	procs, err := gopsutil.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var found []process.ProcessInfo
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil || !strings.EqualFold(pname, name) {
			continue
		}

		exe, _ := p.Exe()
		found = append(found, process.ProcessInfo{PID: process.ProcessID(p.Pid), Name: pname, Exe: exe})
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNotRunning)
	}
	return found, nil
}

// ByName opens the first process named name
func ByName(name string) (process.Process, process.ProcessInfo, error) {
	found, err := Find(name)
	if err != nil {
		return nil, process.ProcessInfo{}, err
	}

	p, err := ByPID(found[0].PID)
	if err != nil {
		return nil, process.ProcessInfo{}, err
	}
	return p, found[0], nil
}

// ByPID opens pid with the native backend
func ByPID(pid process.ProcessID) (process.Process, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("invalid pid %d", pid)
	}
	return open(pid)
}

// Open picks ByPID when pid is set, otherwise ByName
func Open(pid int, name string) (process.Process, error) {
	if pid != 0 {
		return ByPID(process.ProcessID(pid))
	}
	p, _, err := ByName(name)
	return p, err
}
