//go:build linux

package process_linux

import (
	"errors"
	"os"
	"testing"
	"unsafe"

	"nvext/process"

	"golang.org/x/sys/unix"
)

func openSelf(t *testing.T) process.Process {
	t.Helper()
	p, err := NewWithPID(process.ProcessID(os.Getpid()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestReadRegionMappedAfterOpen(t *testing.T) {
	p := openSelf(t)

	page, err := unix.Mmap(-1, 0, os.Getpagesize(), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		t.Fatal(err)
	}
	defer unix.Munmap(page)
	page[0] = 0x42

	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&page[0])))

	v, err := process.ReadT[uint8](p, addr)
	if err != nil {
		t.Fatalf("Expected region mapped after open to be readable, got %v", err)
	}
	if v != 0x42 {
		t.Errorf("Expected 0x42, got %#x", v)
	}
}

func TestReadUnmappedRegion(t *testing.T) {
	p := openSelf(t)

	page, err := unix.Mmap(-1, 0, os.Getpagesize(), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		t.Fatal(err)
	}
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&page[0])))
	if err := unix.Munmap(page); err != nil {
		t.Fatal(err)
	}

	if _, err := process.ReadT[uint64](p, addr); !errors.Is(err, process.ErrAddressNotMapped) {
		t.Errorf("Expected ErrAddressNotMapped, got %v", err)
	}
	if _, err := p.ReadMemory(0x1000, 8); !errors.Is(err, process.ErrAddressNotMapped) {
		t.Errorf("Expected low address to be rejected, got %v", err)
	}
}
