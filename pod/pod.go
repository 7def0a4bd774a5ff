// Package pod reads and writes plain-old-data structs laid out exactly as the
// target process stores them.
package pod

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"nvext/process"
)

func SizeOf[T any]() process.ProcessMemorySize {
	var t T
	return process.ProcessMemorySize(unsafe.Sizeof(t))
}

// ReadT reads a POD struct T at addr
func ReadT[T any](r process.Reader, addr process.ProcessMemoryAddress) (T, error) {
	if hasPointers[T]() {
		return *new(T), errors.New("ReadT: T contains pointers; not POD-safe")
	}

	if SizeOf[T]() == 0 {
		return *new(T), errors.New("ReadT: size of T is zero")
	}

	return process.ReadT[T](r, addr)
}

// WriteT serializes a POD struct T into a raw byte slice using the in-memory layout.
// T must be POD (no pointers or Go-managed references) for the bytes to be meaningful
// outside the process. This function uses unsafe to copy the raw bytes directly.
func WriteT[T any](v T) []byte {
	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return []byte{}
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	out := make([]byte, size)
	copy(out, src)
	return out
}

// ReadSliceT reads count contiguous T values starting at addr with a single read
func ReadSliceT[T any](r process.Reader, addr process.ProcessMemoryAddress, count int) ([]T, error) {
	if count < 0 {
		return nil, errors.New("ReadSliceT: count must be positive")
	}

	if hasPointers[T]() {
		return nil, errors.New("ReadSliceT: T contains pointers; not POD-safe")
	}

	size := SizeOf[T]()
	if size == 0 || count == 0 {
		return []T{}, nil
	}

	data, err := process.Read(r, addr, size*process.ProcessMemorySize(count))
	if err != nil {
		return nil, fmt.Errorf("ReadSliceT: %d x %d bytes: %w", count, size, err)
	}

	result := make([]T, count)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&result[0])), int(size)*count)
	copy(dst, data)

	return result, nil
}

// CString decodes a fixed-size char buffer: everything up to the first NUL,
// with invalid UTF-8 replaced
func CString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return strings.ToValidUTF8(string(buf), "�")
}

// hasPointers reports whether T (recursively) contains any pointer-like fields.
func hasPointers[T any]() bool {
	var t T
	return typeHasPointers(reflect.TypeOf(t))
}

func typeHasPointers(rt reflect.Type) bool {
	if rt == nil {
		return false
	}

	switch rt.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.String, reflect.Chan:
		return true
	case reflect.Array:
		return typeHasPointers(rt.Elem())
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			if typeHasPointers(rt.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// bool, ints, uints, floats, complex, etc.
		return false
	}
}
