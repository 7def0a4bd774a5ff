//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"sync"

	"nvext/process"
	"nvext/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var _ process.Process = (*LinuxProcess)(nil)

// LinuxProcess implements the process.Process interface for Linux systems
type LinuxProcess struct {
	pid process.ProcessID
	log *logger.Logger
	mm  []memory_map.MemoryMapItem
	mu  sync.Mutex
}

// New creates a new LinuxProcess instance
func New() process.Process {
	return &LinuxProcess{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
}

// NewWithPID creates a new LinuxProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := &LinuxProcess{}
	err := p.Open(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LinuxProcess) Open(pid process.ProcessID) error {
	procPath := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return fmt.Errorf("process with PID %d does not exist", pid)
	}

	p.mu.Lock()
	p.pid = pid
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	if err := p.UpdateMemoryMap(); err != nil {
		return fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened")

	return nil
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pid = 0
	p.mm = nil

	p.log.Infoln("Process closed")
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *LinuxProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	pid := p.pid
	p.mu.Unlock()

	if pid == 0 {
		return process.ErrProcessNotOpen
	}

	// Read memory map without holding the lock
	mm, err := memory_map.NewLinuxMemoryMap().ReadMemoryMap(int(pid))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	p.mu.Lock()
	p.mm = mm
	p.mu.Unlock()
	return nil
}

func (p *LinuxProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.isValidAddressInternal(addr)
}

// Internal helper function that assumes the mutex is already locked
func (p *LinuxProcess) isValidAddressInternal(addr process.ProcessMemoryAddress) bool {
	return inUserSpace(addr) && memory_map.IsReadableAddress(uint64(addr), p.mm)
}

// user space ends at 47 bits
func inUserSpace(addr process.ProcessMemoryAddress) bool {
	return addr > 0x10000 && addr <= 0x7FFFFFFFFFFF
}

func (p *LinuxProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	// Make a copy of the memory map to prevent external modification
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)

	return result, nil
}

// ModuleBase finds a shared object by file name, e.g. "libclient.so"
func (p *LinuxProcess) ModuleBase(name string) (process.ProcessMemoryAddress, process.ProcessMemorySize, error) {
	mm, err := p.GetMemoryMap()
	if err != nil {
		return 0, 0, err
	}

	base, size, ok := memory_map.FindModule(name, mm)
	if !ok {
		return 0, 0, fmt.Errorf("%s: %w", name, process.ErrModuleNotFound)
	}

	return process.ProcessMemoryAddress(base), process.ProcessMemorySize(size), nil
}
