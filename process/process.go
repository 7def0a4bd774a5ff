// Package process provides the remote memory accessor: typed reads, offset
// composition and pointer tracing against a foreign process.
package process

import "errors"

var (
	// ErrNullAddress is returned when a read is attempted at address zero or from a zero base.
	// It is the "not present" outcome, not a fault.
	ErrNullAddress = errors.New("null address")

	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrShortRead is returned when fewer bytes than requested were transferred.
	ErrShortRead = errors.New("short read")

	ErrModuleNotFound  = errors.New("module not found")
	ErrPatternNotFound = errors.New("pattern not found")
)

// IsAbsent reports whether err only means that a pointer along the way was zero
func IsAbsent(err error) bool {
	return errors.Is(err, ErrNullAddress)
}
