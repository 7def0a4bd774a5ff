// Package hexdump renders remote memory for offset maintenance: offsets,
// hex, ASCII, mapped pointers and the names of known fields.
package hexdump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"nvext/offsets"
	"nvext/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Options controls a dump
type Options struct {
	BytesPerLine int
	Base         uint64 // address of data[0]; printed in the offset column
	Relative     bool   // print offsets from Base instead of absolute addresses
	MaxLines     int    // 0 for no limit
	ShowASCII    bool

	// Regions marks qword-aligned values that point into mapped memory
	Regions []memory_map.MemoryMapItem

	// Labels names known fields by their offset from Base
	Labels map[uint64]string

	Highlight []byte

	OffsetColor    coloransi.ColorCode
	HexColor       coloransi.ColorCode
	ZeroColor      coloransi.ColorCode
	PointerColor   coloransi.ColorCode
	LabelColor     coloransi.ColorCode
	HighlightColor coloransi.ColorCode
	HighlightBG    coloransi.ColorCode
}

func DefaultOptions() Options {
	return Options{
		BytesPerLine:   16,
		ShowASCII:      true,
		OffsetColor:    coloransi.Cyan,
		HexColor:       coloransi.Green,
		ZeroColor:      coloransi.BrightBlack,
		PointerColor:   coloransi.Yellow,
		LabelColor:     coloransi.ColorOrange,
		HighlightColor: coloransi.Yellow,
		HighlightBG:    coloransi.Black,
	}
}

// LabelsFor collects every field of the given classes in p, keyed by offset.
// Fields of later classes sharing an offset are appended with "/".
func LabelsFor(p *offsets.Profile, classes ...string) map[uint64]string {
	labels := make(map[uint64]string)
	for _, class := range classes {
		fields := p.Classes[class]

		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			off := uint64(fields[name])
			if prev, ok := labels[off]; ok {
				labels[off] = prev + "/" + name
			} else {
				labels[off] = name
			}
		}
	}
	return labels
}

// Dump renders data as a string
func Dump(data []byte, o Options) string {
	var buf bytes.Buffer
	Write(&buf, data, o)
	return buf.String()
}

// Write renders data to w
func Write(w io.Writer, data []byte, o Options) {
	if o.BytesPerLine <= 0 || o.BytesPerLine%8 != 0 {
		o.BytesPerLine = 16
	}

	highlighted := highlightMask(data, o.Highlight)

	for line, start := 0, 0; start < len(data); line, start = line+1, start+o.BytesPerLine {
		if o.MaxLines > 0 && line >= o.MaxLines {
			fmt.Fprintf(w, "... %d more bytes\n", len(data)-start)
			return
		}

		end := min(start+o.BytesPerLine, len(data))
		writeLine(w, data, start, end, highlighted, o)
	}
}

func writeLine(w io.Writer, data []byte, start, end int, highlighted []bool, o Options) {
	addr := o.Base + uint64(start)
	if o.Relative {
		addr = uint64(start)
	}
	fmt.Fprint(w, coloransi.Foreground(o.OffsetColor, fmt.Sprintf("%012x", addr)), "  ")

	pointers := make(map[int]bool)
	var notes []string

	for q := start; q+8 <= end; q += 8 {
		if v := binary.LittleEndian.Uint64(data[q:]); v != 0 && memory_map.IsReadableAddress(v, o.Regions) {
			for i := q; i < q+8; i++ {
				pointers[i] = true
			}
			notes = append(notes, coloransi.Foreground(o.PointerColor, fmt.Sprintf("+%x->0x%x", q, v)))
		}
	}

	for i := start; i < start+o.BytesPerLine; i++ {
		if i > start && (i-start)%8 == 0 {
			fmt.Fprint(w, " ")
		}
		if i >= end {
			fmt.Fprint(w, "   ")
			continue
		}

		cell := fmt.Sprintf("%02x", data[i])
		switch {
		case highlighted[i]:
			cell = coloransi.Color(o.HighlightColor, o.HighlightBG, cell)
		case pointers[i]:
			cell = coloransi.Foreground(o.PointerColor, cell)
		case data[i] == 0:
			cell = coloransi.Foreground(o.ZeroColor, cell)
		default:
			cell = coloransi.Foreground(o.HexColor, cell)
		}
		fmt.Fprint(w, cell, " ")
	}

	if o.ShowASCII {
		fmt.Fprint(w, "|")
		for _, b := range data[start:end] {
			if b < 0x80 && unicode.IsPrint(rune(b)) {
				fmt.Fprint(w, string(rune(b)))
			} else {
				fmt.Fprint(w, coloransi.Foreground(o.ZeroColor, "."))
			}
		}
		fmt.Fprint(w, "|")
	}

	for off := start; off < end; off++ {
		if name, ok := o.Labels[uint64(off)]; ok {
			notes = append(notes, coloransi.Foreground(o.LabelColor, fmt.Sprintf("+%x %s", off, name)))
		}
	}

	if len(notes) > 0 {
		fmt.Fprint(w, "  ", strings.Join(notes, " "))
	}
	fmt.Fprintln(w)
}

func highlightMask(data, pattern []byte) []bool {
	mask := make([]bool, len(data))
	if len(pattern) == 0 {
		return mask
	}

	for i := 0; i+len(pattern) <= len(data); i++ {
		if bytes.Equal(data[i:i+len(pattern)], pattern) {
			for j := i; j < i+len(pattern); j++ {
				mask[j] = true
			}
		}
	}
	return mask
}

// StripANSI removes color escape sequences
func StripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
