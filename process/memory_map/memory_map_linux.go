//go:build linux

package memory_map

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LinuxMemoryMap implements MemoryMap for Linux
type LinuxMemoryMap struct{}

// NewLinuxMemoryMap creates a new LinuxMemoryMap instance
func NewLinuxMemoryMap() *LinuxMemoryMap {
	return &LinuxMemoryMap{}
}

// ReadMemoryMap reads and parses the memory map for a process from /proc/[pid]/maps
func (l *LinuxMemoryMap) ReadMemoryMap(pid int) ([]MemoryMapItem, error) {
	file, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var memoryMap []MemoryMapItem
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		item, ok := ParseMapsLine(scanner.Text())
		if ok {
			memoryMap = append(memoryMap, item)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	Sort(memoryMap)
	return memoryMap, nil
}

// ParseMapsLine parses one /proc/[pid]/maps line, e.g.
//
//	7f1c2a000000-7f1c2a400000 r-xp 00000000 08:01 1234  /opt/cs2/game/bin/linuxsteamrt64/libclient.so
func ParseMapsLine(line string) (MemoryMapItem, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return MemoryMapItem{}, false
	}

	addrRange := strings.Split(fields[0], "-")
	if len(addrRange) != 2 {
		return MemoryMapItem{}, false
	}

	startAddr, err := strconv.ParseUint(addrRange[0], 16, 64)
	if err != nil {
		return MemoryMapItem{}, false
	}

	endAddr, err := strconv.ParseUint(addrRange[1], 16, 64)
	if err != nil || endAddr < startAddr {
		return MemoryMapItem{}, false
	}

	item := MemoryMapItem{
		Address: startAddr,
		Size:    uint(endAddr - startAddr),
		Perms:   fields[1],
	}

	// paths may contain spaces
	if len(fields) >= 6 {
		item.Path = strings.Join(fields[5:], " ")
	}

	return item, true
}
