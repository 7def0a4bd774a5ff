package process

import (
	"bytes"
	"fmt"

	"nvext/process/memory_map"
)

// ScanRegions reads every readable region and returns the absolute address of each
// match of aob. Regions that fail to read are skipped; the number skipped is returned.
func ScanRegions(r Reader, regions []memory_map.MemoryMapItem, aob AOB) ([]ProcessMemoryAddress, int, error) {
	if len(aob.Pattern) == 0 {
		return nil, 0, fmt.Errorf("empty pattern")
	}

	// If no mask is provided, create a mask of all 0xFF (exact match)
	if len(aob.Mask) == 0 {
		aob.Mask = bytes.Repeat([]byte{0xFF}, len(aob.Pattern))
	} else if len(aob.Mask) != len(aob.Pattern) {
		return nil, 0, fmt.Errorf("mask length (%d) doesn't match pattern length (%d)",
			len(aob.Mask), len(aob.Pattern))
	}

	var results []ProcessMemoryAddress
	skipped := 0

	for _, region := range regions {
		if !region.IsReadable() || region.Size == 0 {
			continue
		}

		data, err := r.ReadMemory(ProcessMemoryAddress(region.Address), ProcessMemorySize(region.Size))
		if err != nil {
			skipped++
			continue
		}

		for _, offset := range FindPatternMatches(data, aob.Pattern, aob.Mask) {
			results = append(results, ProcessMemoryAddress(region.Address+uint64(offset)))
		}
	}

	return results, skipped, nil
}

// ScanModuleRegions finds the first match of aob inside [base, base+size)
func ScanModuleRegions(r Reader, regions []memory_map.MemoryMapItem, base ProcessMemoryAddress, size ProcessMemorySize, aob AOB) (ProcessMemoryAddress, error) {
	clipped := memory_map.Intersect(uint64(base), uint64(size), regions)

	matches, _, err := ScanRegions(r, clipped, aob)
	if err != nil {
		return 0, err
	}

	if len(matches) == 0 {
		return 0, fmt.Errorf("%s: %w", aob.String(), ErrPatternNotFound)
	}

	return matches[0], nil
}

// FindPatternMatches finds all occurrences of the pattern in the data
// and returns the offsets where matches were found
func FindPatternMatches(data, pattern, mask []byte) []uint {
	if len(pattern) == 0 || len(data) < len(pattern) {
		return nil
	}

	var matches []uint

	for i := 0; i <= len(data)-len(pattern); i++ {
		matched := true

		for j := 0; j < len(pattern); j++ {
			// wildcard
			if mask[j] == 0 {
				continue
			}

			if data[i+j]&mask[j] != pattern[j]&mask[j] {
				matched = false
				break
			}
		}

		if matched {
			matches = append(matches, uint(i))
		}
	}

	return matches
}
