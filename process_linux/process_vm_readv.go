//go:build linux

package process_linux

import (
	"fmt"
	"unsafe"

	"nvext/process"

	"golang.org/x/sys/unix"
)

// process_vm_readv uses the process_vm_readv syscall to read memory from another process
func process_vm_readv(
	pid process.ProcessID,
	remoteAddr process.ProcessMemoryAddress,
	bytesToRead process.ProcessMemorySize,
) ([]byte, error) {
	localBuf := make([]byte, bytesToRead)

	localIov := unix.Iovec{
		Base: &localBuf[0],
		Len:  uint64(bytesToRead),
	}

	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  int(bytesToRead),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	switch errno {
	case 0:
	case unix.EFAULT:
		return nil, fmt.Errorf("process_vm_readv %s: %w", remoteAddr.ToString(), process.ErrAddressNotMapped)
	case unix.ESRCH:
		return nil, fmt.Errorf("process_vm_readv pid %d: %w", pid, process.ErrProcessNotOpen)
	default:
		return nil, fmt.Errorf("process_vm_readv failed: %s (errno: %d)", errno.Error(), errno)
	}

	if int(n) != int(bytesToRead) {
		return localBuf[:n], fmt.Errorf("partial read: %d of %d bytes: %w", n, bytesToRead, process.ErrShortRead)
	}

	return localBuf, nil
}

// ReadMemory reads memory from the process at the specified address.
// The kernel decides whether the range is readable; the cached memory map is not consulted,
// so regions mapped after Open are readable without UpdateMemoryMap.
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if addr == 0 {
		return nil, process.ErrNullAddress
	}

	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	pid := p.pid
	p.mu.Unlock()

	if pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	if !inUserSpace(addr) {
		return nil, process.ErrAddressNotMapped
	}

	data, err := process_vm_readv(pid, addr, size)
	if err != nil {
		return nil, fmt.Errorf("process_vm_readv: failed to read process memory: %w", err)
	}

	return data, nil
}
