// Package process_blob is an in-memory remote process. It backs the same
// process.Process interface as the OS backends so resolution code can be
// exercised against hand-built memory layouts.
package process_blob

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"nvext/pod"
	"nvext/process"
	"nvext/process/memory_map"
)

// ErrAccessDenied is returned for reads touching an address marked with Deny
var ErrAccessDenied = errors.New("access denied")

const (
	allocBase  = process.ProcessMemoryAddress(0x10000000)
	allocAlign = 0x1000
)

type region struct {
	base  process.ProcessMemoryAddress
	data  []byte
	perms string
	path  string
}

func (r *region) end() process.ProcessMemoryAddress {
	return r.base + process.ProcessMemoryAddress(len(r.data))
}

type module struct {
	base process.ProcessMemoryAddress
	size process.ProcessMemorySize
}

type ProcessBlob struct {
	mu      sync.RWMutex
	pid     process.ProcessID
	regions []*region
	modules map[string]module
	denied  map[process.ProcessMemoryAddress]bool
	next    process.ProcessMemoryAddress
	reads   atomic.Int64
}

var _ process.Process = (*ProcessBlob)(nil)

func NewProcessBlob() *ProcessBlob {
	return &ProcessBlob{
		pid:     1,
		modules: make(map[string]module),
		denied:  make(map[process.ProcessMemoryAddress]bool),
		next:    allocBase,
	}
}

// Map creates a zero-filled readable region. Overlapping an existing region is an error.
func (p *ProcessBlob) Map(base process.ProcessMemoryAddress, size process.ProcessMemorySize, path string) error {
	if base == 0 || size == 0 {
		return fmt.Errorf("map: invalid region %s size %d", base.ToString(), size)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	end := base + process.ProcessMemoryAddress(size)
	for _, r := range p.regions {
		if base < r.end() && r.base < end {
			return fmt.Errorf("map: %s overlaps region at %s", base.ToString(), r.base.ToString())
		}
	}

	p.regions = append(p.regions, &region{base: base, data: make([]byte, size), perms: "rw-p", path: path})
	sort.Slice(p.regions, func(i, j int) bool {
		return p.regions[i].base < p.regions[j].base
	})

	if end > p.next {
		p.next = alignUp(end)
	}

	return nil
}

// Alloc maps a fresh zeroed region and returns its base
func (p *ProcessBlob) Alloc(size process.ProcessMemorySize) process.ProcessMemoryAddress {
	p.mu.Lock()
	base := p.next
	p.mu.Unlock()

	if err := p.Map(base, size, ""); err != nil {
		panic(err)
	}
	return base
}

// AddModule maps a zeroed image and registers it under name
func (p *ProcessBlob) AddModule(name string, base process.ProcessMemoryAddress, size process.ProcessMemorySize) error {
	if err := p.Map(base, size, name); err != nil {
		return err
	}

	p.mu.Lock()
	p.modules[strings.ToLower(name)] = module{base: base, size: size}
	p.mu.Unlock()
	return nil
}

// Put copies data into mapped memory at addr
func (p *ProcessBlob) Put(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.find(addr)
	if r == nil || addr+process.ProcessMemoryAddress(len(data)) > r.end() {
		return fmt.Errorf("put %d bytes at %s: %w", len(data), addr.ToString(), process.ErrAddressNotMapped)
	}

	copy(r.data[addr-r.base:], data)
	return nil
}

// PutT writes the raw in-memory layout of v at addr
func PutT[T any](p *ProcessBlob, addr process.ProcessMemoryAddress, v T) error {
	return p.Put(addr, pod.WriteT(v))
}

func (p *ProcessBlob) PutPointer(addr, value process.ProcessMemoryAddress) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(value))
	return p.Put(addr, buf[:])
}

func (p *ProcessBlob) PutUINT32(addr process.ProcessMemoryAddress, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	return p.Put(addr, buf[:])
}

func (p *ProcessBlob) PutINT32(addr process.ProcessMemoryAddress, value int32) error {
	return p.PutUINT32(addr, uint32(value))
}

func (p *ProcessBlob) PutUINT64(addr process.ProcessMemoryAddress, value uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	return p.Put(addr, buf[:])
}

func (p *ProcessBlob) PutFLOAT32(addr process.ProcessMemoryAddress, values ...float32) error {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return p.Put(addr, buf)
}

// PutNTS writes s followed by a NUL terminator
func (p *ProcessBlob) PutNTS(addr process.ProcessMemoryAddress, s string) error {
	return p.Put(addr, append([]byte(s), 0))
}

// Deny makes every read that covers addr fail like a rejected OS read
func (p *ProcessBlob) Deny(addr process.ProcessMemoryAddress) {
	p.mu.Lock()
	p.denied[addr] = true
	p.mu.Unlock()
}

// Reads returns how many ReadMemory calls reached the backing store
func (p *ProcessBlob) Reads() int64 {
	return p.reads.Load()
}

func (p *ProcessBlob) Open(pid process.ProcessID) error {
	p.mu.Lock()
	p.pid = pid
	p.mu.Unlock()
	return nil
}

func (p *ProcessBlob) Close() error {
	p.mu.Lock()
	p.pid = 0
	p.mu.Unlock()
	return nil
}

func (p *ProcessBlob) GetPID() process.ProcessID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pid
}

func (p *ProcessBlob) UpdateMemoryMap() error {
	return nil // regions are the map
}

func (p *ProcessBlob) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.find(addr) != nil
}

func (p *ProcessBlob) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]memory_map.MemoryMapItem, 0, len(p.regions))
	for _, r := range p.regions {
		result = append(result, memory_map.MemoryMapItem{
			Address: uint64(r.base),
			Size:    uint(len(r.data)),
			Perms:   r.perms,
			Path:    r.path,
		})
	}
	return result, nil
}

func (p *ProcessBlob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if addr == 0 {
		return nil, process.ErrNullAddress
	}

	p.reads.Add(1)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	end := addr + process.ProcessMemoryAddress(size)
	for denied := range p.denied {
		if denied >= addr && denied < end {
			return nil, fmt.Errorf("read at %s: %w", addr.ToString(), ErrAccessDenied)
		}
	}

	r := p.find(addr)
	if r == nil {
		return nil, process.ErrAddressNotMapped
	}

	offset := addr - r.base
	avail := process.ProcessMemorySize(len(r.data)) - process.ProcessMemorySize(offset)

	result := make([]byte, min(size, avail))
	copy(result, r.data[offset:])

	if avail < size {
		return result, fmt.Errorf("partial read: %d of %d bytes: %w", avail, size, process.ErrShortRead)
	}

	return result, nil
}

func (p *ProcessBlob) ModuleBase(name string) (process.ProcessMemoryAddress, process.ProcessMemorySize, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, ok := p.modules[strings.ToLower(name)]
	if !ok {
		return 0, 0, fmt.Errorf("%s: %w", name, process.ErrModuleNotFound)
	}
	return m.base, m.size, nil
}

func (p *ProcessBlob) Scan(aob process.AOB) ([]process.ProcessMemoryAddress, error) {
	mm, _ := p.GetMemoryMap()
	results, _, err := process.ScanRegions(p, mm, aob)
	return results, err
}

func (p *ProcessBlob) ScanModule(name string, aob process.AOB) (process.ProcessMemoryAddress, error) {
	base, size, err := p.ModuleBase(name)
	if err != nil {
		return 0, err
	}

	mm, _ := p.GetMemoryMap()
	return process.ScanModuleRegions(p, mm, base, size, aob)
}

// find assumes the lock is held
func (p *ProcessBlob) find(addr process.ProcessMemoryAddress) *region {
	i := sort.Search(len(p.regions), func(i int) bool {
		return p.regions[i].end() > addr
	})
	if i < len(p.regions) && p.regions[i].base <= addr {
		return p.regions[i]
	}
	return nil
}

func alignUp(addr process.ProcessMemoryAddress) process.ProcessMemoryAddress {
	return (addr + allocAlign - 1) &^ (allocAlign - 1)
}
