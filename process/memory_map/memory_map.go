package memory_map

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint   // The size of the memory region in bytes
	Perms   string // Permissions in maps notation (e.g., "r-xp")
	Path    string // Backing file or module path, empty for anonymous regions
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Path)
}

func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsExecutable() bool {
	return len(mmItem.Perms) > 2 && mmItem.Perms[2] == 'x'
}

// MemoryMap defines the interface for operations related to a process's memory map
type MemoryMap interface {
	// ReadMemoryMap reads and parses the memory map for a process
	ReadMemoryMap(pid int) ([]MemoryMapItem, error)
}

// Sort orders the map by start address, required by FindRegion
func Sort(memoryMap []MemoryMapItem) {
	sort.Slice(memoryMap, func(i, j int) bool {
		return memoryMap[i].Address < memoryMap[j].Address
	})
}

// FindRegion returns the region containing addr. The map must be sorted.
func FindRegion(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// IsReadableAddress checks if an address is within a readable memory region
func IsReadableAddress(addr uint64, memoryMap []MemoryMapItem) bool {
	item := FindRegion(addr, memoryMap)
	return item != nil && item.IsReadable()
}

// FindModule returns the lowest start and the span of every mapping whose backing file
// is named name (case-insensitive). Modules mapped as several segments are merged.
func FindModule(name string, memoryMap []MemoryMapItem) (base uint64, size uint64, ok bool) {
	var end uint64
	for _, item := range memoryMap {
		if item.Path == "" || !strings.EqualFold(filepath.Base(item.Path), name) {
			continue
		}
		if !ok || item.Address < base {
			base = item.Address
		}
		if item.End() > end {
			end = item.End()
		}
		ok = true
	}

	if !ok {
		return 0, 0, false
	}

	return base, end - base, true
}

// Intersect returns the readable parts of memoryMap that overlap [start, start+size)
func Intersect(start, size uint64, memoryMap []MemoryMapItem) []MemoryMapItem {
	end := start + size

	var result []MemoryMapItem
	for _, item := range memoryMap {
		if !item.IsReadable() || item.End() <= start || item.Address >= end {
			continue
		}

		clipped := item
		if clipped.Address < start {
			clipped.Size -= uint(start - clipped.Address)
			clipped.Address = start
		}
		if clipped.End() > end {
			clipped.Size = uint(end - clipped.Address)
		}
		result = append(result, clipped)
	}

	return result
}
