package process

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// Add returns pma displaced by offset
func (pma ProcessMemoryAddress) Add(offset uint64) ProcessMemoryAddress {
	return pma + ProcessMemoryAddress(offset)
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// AOB (Array of Bytes) represents a pattern to search for in memory
type AOB struct {
	Pattern []byte // The byte pattern to search for
	Mask    []byte // Optional mask where 0xFF means exact match and 0x00 means wildcard
}

// IsValid checks if the AOB pattern is valid
func (aob AOB) IsValid() bool {
	return len(aob.Pattern) > 0 && len(aob.Pattern) == len(aob.Mask)
}

func (aob AOB) String() string {
	var sb strings.Builder
	for i := range aob.Pattern {
		if i > 0 {
			sb.WriteString(" ")
		}
		if aob.Mask[i] == 0 {
			sb.WriteString("??")
		} else {
			sb.WriteString(strings.ToUpper(hex.EncodeToString(aob.Pattern[i : i+1])))
		}
	}
	return sb.String()
}

func NewAOB(pattern, mask []byte) (AOB, error) {
	if len(pattern) != len(mask) {
		return AOB{}, fmt.Errorf("pattern and mask must be of the same length")
	}
	return AOB{Pattern: pattern, Mask: mask}, nil
}

// ParseSignature parses an IDA style signature such as "48 8B 0D ?? ?? ?? ?? 48 89".
// Bytes may be separated by spaces or commas; "?" and "??" are wildcards.
func ParseSignature(signature string) (AOB, error) {
	parts := strings.FieldsFunc(signature, func(r rune) bool {
		return r == ',' || r == ' '
	})

	if len(parts) == 0 {
		return AOB{}, fmt.Errorf("empty signature")
	}

	aob := AOB{
		Pattern: make([]byte, 0, len(parts)),
		Mask:    make([]byte, 0, len(parts)),
	}

	for _, part := range parts {
		if part == "??" || part == "?" {
			aob.Pattern = append(aob.Pattern, 0)
			aob.Mask = append(aob.Mask, 0)
			continue
		}

		val, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return AOB{}, fmt.Errorf("invalid hex byte %q in signature: %w", part, err)
		}
		aob.Pattern = append(aob.Pattern, byte(val))
		aob.Mask = append(aob.Mask, 0xFF)
	}

	return aob, nil
}
