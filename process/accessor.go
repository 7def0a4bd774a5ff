package process

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// PointerSize is the width of a pointer in the target process
const PointerSize ProcessMemorySize = 8

// Read reads size bytes at addr. It fails with ErrNullAddress when addr is zero
// and with ErrShortRead when fewer bytes than requested come back.
func Read(r Reader, addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error) {
	if addr == 0 {
		return nil, ErrNullAddress
	}

	if size == 0 {
		return []byte{}, nil
	}

	data, err := r.ReadMemory(addr, size)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at %s: %w", size, addr.ToString(), err)
	}

	if len(data) < int(size) {
		return nil, fmt.Errorf("read %d of %d bytes at %s: %w", len(data), size, addr.ToString(), ErrShortRead)
	}

	return data[:size], nil
}

// ReadT reads sizeof(T) bytes at addr and reinterprets them as T.
// T must be plain old data: no pointers, slices, strings or maps.
func ReadT[T any](r Reader, addr ProcessMemoryAddress) (T, error) {
	var t T
	size := ProcessMemorySize(unsafe.Sizeof(t))

	data, err := Read(r, addr, size)
	if err != nil {
		return t, err
	}

	copyTo(&t, data)
	return t, nil
}

// ReadOffset reads a T at base+offset. A zero base fails with ErrNullAddress
// before any memory access is attempted.
func ReadOffset[T any](r Reader, base ProcessMemoryAddress, offset uint64) (T, error) {
	if base == 0 {
		var zero T
		return zero, ErrNullAddress
	}

	return ReadT[T](r, base.Add(offset))
}

// ReadPointer reads a pointer-sized value at addr
func ReadPointer(r Reader, addr ProcessMemoryAddress) (ProcessMemoryAddress, error) {
	data, err := Read(r, addr, PointerSize)
	if err != nil {
		return 0, err
	}

	return ProcessMemoryAddress(binary.LittleEndian.Uint64(data)), nil
}

// Trace walks a pointer chain. Starting at base, every offset is added to the
// current address and the pointer stored there becomes the next current address.
// A final offset of 0 marks the end of the chain: the currently loaded value is
// returned without another dereference.
//
// Example:
//
//	// *(*(*(pawn + 0x12B0) + 0x10) + 0x20)
//	name, err := process.Trace(r, pawn, 0x12B0, 0x10, 0x20, 0)
//
// The returned address is zero whenever err is non-nil.
func Trace(r Reader, base ProcessMemoryAddress, offsets ...uint64) (ProcessMemoryAddress, error) {
	current := base

	for i, off := range offsets {
		if i == len(offsets)-1 && off == 0 {
			break
		}

		if current == 0 {
			return 0, fmt.Errorf("trace: hop %d has null base: %w", i, ErrNullAddress)
		}

		next, err := ReadPointer(r, current.Add(off))
		if err != nil {
			return 0, fmt.Errorf("trace: hop %d (%s + %#x): %w", i, current.ToString(), off, err)
		}

		current = next
	}

	if current == 0 {
		return 0, fmt.Errorf("trace: chain ended in null: %w", ErrNullAddress)
	}

	return current, nil
}

// ModuleAddress resolves a module-relative offset to an absolute address
func ModuleAddress(l ModuleLocator, module string, offset uint64) (ProcessMemoryAddress, error) {
	base, _, err := l.ModuleBase(module)
	if err != nil {
		return 0, err
	}

	return base.Add(offset), nil
}

// copyTo copies bytes to *T
func copyTo[T any](dst *T, src []byte) {
	size := int(unsafe.Sizeof(*dst))
	if len(src) < size {
		return
	}

	dstBytes := unsafe.Slice((*byte)(unsafe.Pointer(dst)), size)
	copy(dstBytes, src)
}
