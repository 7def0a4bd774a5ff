//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"nvext/process"
	"nvext/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

const processAccess = windows.PROCESS_VM_READ | windows.PROCESS_QUERY_INFORMATION

var _ process.Process = (*WindowsProcess)(nil)

// WindowsProcess implements the process.Process interface for Windows systems
type WindowsProcess struct {
	pid    process.ProcessID
	handle windows.Handle
	log    *logger.Logger
	mm     []memory_map.MemoryMapItem
	mu     sync.Mutex
}

// New creates a new WindowsProcess instance
func New() process.Process {
	return &WindowsProcess{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
}

// NewWithPID creates a new WindowsProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := &WindowsProcess{}
	err := p.Open(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *WindowsProcess) Open(pid process.ProcessID) error {
	handle, err := windows.OpenProcess(processAccess, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("OpenProcess failed: %w", err)
	}

	p.mu.Lock()
	p.pid = pid
	p.handle = handle
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	if err := p.UpdateMemoryMap(); err != nil {
		p.log.Warn("Failed to initialize memory map: ", err)
	}

	p.log.Infoln("Process opened")
	return nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		if err := windows.CloseHandle(p.handle); err != nil {
			return fmt.Errorf("CloseHandle failed: %w", err)
		}
		p.handle = 0
	}

	p.pid = 0
	p.mm = nil
	p.log.Infoln("Process closed")
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

func (p *WindowsProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// UpdateMemoryMap walks the address space with VirtualQueryEx
func (p *WindowsProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	if handle == 0 {
		return process.ErrProcessNotOpen
	}

	var mm []memory_map.MemoryMapItem
	var mbi windows.MemoryBasicInformation
	address := uintptr(0)

	for {
		err := windows.VirtualQueryEx(handle, address, &mbi, unsafe.Sizeof(mbi))
		if err != nil {
			break
		}

		if mbi.State == windows.MEM_COMMIT {
			mm = append(mm, memory_map.MemoryMapItem{
				Address: uint64(mbi.BaseAddress),
				Size:    uint(mbi.RegionSize),
				Perms:   protectToPerms(mbi.Protect),
			})
		}

		next := mbi.BaseAddress + mbi.RegionSize
		if next <= address {
			break
		}
		address = next
	}

	memory_map.Sort(mm)

	p.mu.Lock()
	p.mm = mm
	p.mu.Unlock()
	return nil
}

// protectToPerms renders PAGE_* protection in maps notation so the shared
// memory_map helpers apply to both platforms
func protectToPerms(protect uint32) string {
	if protect&(windows.PAGE_GUARD|windows.PAGE_NOACCESS) != 0 {
		return "---p"
	}

	switch protect & 0xFF {
	case windows.PAGE_READONLY:
		return "r--p"
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		return "rw-p"
	case windows.PAGE_EXECUTE:
		return "--xp"
	case windows.PAGE_EXECUTE_READ:
		return "r-xp"
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		return "rwxp"
	}
	return "---p"
}

func (p *WindowsProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return memory_map.IsReadableAddress(uint64(addr), p.mm)
}

func (p *WindowsProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)
	return result, nil
}

func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if addr == 0 {
		return nil, process.ErrNullAddress
	}

	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	err := windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead)
	if err != nil && !errors.Is(err, windows.ERROR_PARTIAL_COPY) {
		return nil, fmt.Errorf("ReadProcessMemory failed: %w", err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("read incomplete: expected %d, got %d: %w", size, bytesRead, process.ErrShortRead)
	}

	return buf, nil
}

// ModuleBase looks the module up in a Toolhelp32 snapshot
func (p *WindowsProcess) ModuleBase(name string) (process.ProcessMemoryAddress, process.ProcessMemorySize, error) {
	pid := p.GetPID()
	if pid == 0 {
		return 0, 0, process.ErrProcessNotOpen
	}

	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(pid))
	if err != nil {
		return 0, 0, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var me32 windows.ModuleEntry32
	me32.Size = uint32(unsafe.Sizeof(me32))

	if err := windows.Module32First(snapshot, &me32); err != nil {
		return 0, 0, fmt.Errorf("Module32First failed: %w", err)
	}

	for {
		if strings.EqualFold(windows.UTF16ToString(me32.Module[:]), name) {
			return process.ProcessMemoryAddress(me32.ModBaseAddr), process.ProcessMemorySize(me32.ModBaseSize), nil
		}
		if err := windows.Module32Next(snapshot, &me32); err != nil {
			break
		}
	}

	return 0, 0, fmt.Errorf("%s: %w", name, process.ErrModuleNotFound)
}

func (p *WindowsProcess) Scan(aob process.AOB) ([]process.ProcessMemoryAddress, error) {
	memMap, err := p.GetMemoryMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory map: %w", err)
	}

	p.log.Infoln("Starting memory scan for pattern", aob.String())

	results, skipped, err := process.ScanRegions(p, memMap, aob)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		p.log.Debugln("Skipped", skipped, "unreadable regions")
	}

	p.log.Infoln("Scan complete, found", len(results), "matches")
	return results, nil
}

func (p *WindowsProcess) ScanModule(module string, aob process.AOB) (process.ProcessMemoryAddress, error) {
	base, size, err := p.ModuleBase(module)
	if err != nil {
		return 0, err
	}

	memMap, err := p.GetMemoryMap()
	if err != nil {
		return 0, fmt.Errorf("failed to get memory map: %w", err)
	}

	return process.ScanModuleRegions(p, memMap, base, size, aob)
}
