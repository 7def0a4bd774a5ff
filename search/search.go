// Package search finds pointer paths from a base object to a known value. It is
// how offsets are re-derived after a game update: put a recognisable value in
// game (a name, a health number) and search the controller or pawn for it.
package search

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"unsafe"

	"nvext/process"
)

// Target is what a search walks: raw reads plus a cheap validity check for candidate pointers
type Target interface {
	process.Reader
	IsValidAddress(addr process.ProcessMemoryAddress) bool
}

// Searcher holds configuration for the search
type Searcher struct {
	MaxStructSize uint
	MaxDepth      int
	MinAlignment  uint
	MaxResults    int
	Width         int
	Match         func([]byte) bool
}

// Option is a function that configures a Searcher
type Option func(*Searcher)

func WithMaxStructSize(size uint) Option {
	return func(s *Searcher) {
		s.MaxStructSize = size
	}
}

func WithMaxDepth(depth int) Option {
	return func(s *Searcher) {
		s.MaxDepth = depth
	}
}

func WithMinAlignment(align uint) Option {
	return func(s *Searcher) {
		s.MinAlignment = align
	}
}

func WithMaxResults(n int) Option {
	return func(s *Searcher) {
		s.MaxResults = n
	}
}

// WithValue matches the exact in-memory bytes of val
func WithValue[T any](val T) Option {
	want := make([]byte, unsafe.Sizeof(val))
	copy(want, unsafe.Slice((*byte)(unsafe.Pointer(&val)), len(want)))

	return func(s *Searcher) {
		s.Width = len(want)
		s.Match = func(data []byte) bool {
			return len(data) >= len(want) && bytes.Equal(data[:len(want)], want)
		}
	}
}

// WithString matches a NUL-terminated string, the way names are stored
func WithString(str string) Option {
	want := append([]byte(str), 0)

	return func(s *Searcher) {
		s.Width = len(want)
		s.Match = func(data []byte) bool {
			return len(data) >= len(want) && bytes.Equal(data[:len(want)], want)
		}
	}
}

// WithFloatNear matches a float32 within tolerance, for positions and angles
func WithFloatNear(val, tolerance float32) Option {
	return func(s *Searcher) {
		s.Width = 4
		s.Match = func(data []byte) bool {
			if len(data) < 4 {
				return false
			}
			f := math.Float32frombits(binary.LittleEndian.Uint32(data))
			return f == f && float32(math.Abs(float64(f-val))) <= tolerance
		}
	}
}

// Result is one path to a match. Every element but the last is the offset of a
// pointer; the last is the offset of the value in the final object.
type Result struct {
	Path    []uint64
	Address process.ProcessMemoryAddress
}

// Offsets returns the path in the form process.Trace takes to reach the final
// object, followed by the offset of the value inside it
func (r Result) Offsets() (chain []uint64, field uint64) {
	n := len(r.Path)
	chain = append(append([]uint64{}, r.Path[:n-1]...), 0)
	return chain, r.Path[n-1]
}

func (r Result) String() string {
	parts := make([]string, len(r.Path))
	for i, off := range r.Path {
		parts[i] = fmt.Sprintf("%#x", off)
	}
	return fmt.Sprintf("[%s] @ %s", strings.Join(parts, " -> "), r.Address.ToString())
}

// ErrNoTarget is returned when no match option was given
var ErrNoTarget = errors.New("no search target specified")

// Search walks objects reachable from base breadth first, up to MaxDepth
// pointer hops, and reports every aligned offset where the target matches
func Search(t Target, base process.ProcessMemoryAddress, options ...Option) ([]Result, error) {
	s := &Searcher{
		MaxStructSize: 0x2000,
		MaxDepth:      2,
		MinAlignment:  4,
		MaxResults:    64,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.Match == nil {
		return nil, ErrNoTarget
	}
	if s.MinAlignment == 0 {
		s.MinAlignment = 1
	}

	type node struct {
		addr process.ProcessMemoryAddress
		path []uint64
	}

	var results []Result
	visited := map[process.ProcessMemoryAddress]bool{base: true}
	queue := []node{{addr: base}}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		data, err := t.ReadMemory(n.addr, process.ProcessMemorySize(s.MaxStructSize))
		if err != nil && len(data) == 0 {
			continue
		}

		for off := uint(0); off+uint(s.Width) <= uint(len(data)); off += s.MinAlignment {
			if s.Match(data[off:]) {
				path := append(append([]uint64{}, n.path...), uint64(off))
				results = append(results, Result{Path: path, Address: n.addr.Add(uint64(off))})
				if s.MaxResults > 0 && len(results) >= s.MaxResults {
					return results, nil
				}
			}
		}

		if len(n.path) >= s.MaxDepth {
			continue
		}

		for off := uint(0); off+8 <= uint(len(data)); off += 8 {
			ptr := process.ProcessMemoryAddress(binary.LittleEndian.Uint64(data[off:]))
			if ptr == 0 || visited[ptr] || !t.IsValidAddress(ptr) {
				continue
			}
			visited[ptr] = true
			queue = append(queue, node{addr: ptr, path: append(append([]uint64{}, n.path...), uint64(off))})
		}
	}

	return results, nil
}
