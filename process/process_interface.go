package process

import (
	"nvext/process/memory_map"
)

// Reader is the single raw I/O boundary into the foreign address space.
// Implementations must be safe for concurrent use.
type Reader interface {
	// ReadMemory reads size bytes at addr. A short transfer is an error.
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}

// ModuleLocator resolves loaded module images by file name
type ModuleLocator interface {
	// ModuleBase returns the image base and image size of the named module
	ModuleBase(name string) (ProcessMemoryAddress, ProcessMemorySize, error)
}

// Process is the interface that defines operations for interacting with a system process.
// The relationship with the target is read-only.
type Process interface {
	Reader
	ModuleLocator

	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// UpdateMemoryMap refreshes the memory map for the process
	UpdateMemoryMap() error

	// IsValidAddress checks if the given memory address is valid and readable
	IsValidAddress(addr ProcessMemoryAddress) bool

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	// Memory scanning operations
	MemoryScanner
}

// MemoryScanner defines operations for searching patterns in process memory
type MemoryScanner interface {
	// Scan searches for a pattern in every readable region
	Scan(aob AOB) ([]ProcessMemoryAddress, error)

	// ScanModule returns the first occurrence of a pattern inside the named module image
	ScanModule(module string, aob AOB) (ProcessMemoryAddress, error)
}
