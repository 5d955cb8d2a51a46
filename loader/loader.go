// Package loader reads program images (hex text, raw binary or ELF32) and
// places them into emulator memory.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sarchlab/rv32sim/emu"
)

// Format names an image file format.
type Format string

// Supported formats. FormatAuto picks by file extension.
const (
	FormatAuto   Format = "auto"
	FormatHex    Format = "hex"
	FormatBinary Format = "bin"
	FormatELF    Format = "elf"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatHex, FormatBinary, FormatELF:
		return f, nil
	case "binary", "raw":
		return FormatBinary, nil
	default:
		return "", fmt.Errorf("unknown image format %q", s)
	}
}

// DetectFormat picks a format from the file extension: .hex is hex text,
// .elf is ELF, anything else is raw binary.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex":
		return FormatHex
	case ".elf":
		return FormatELF
	default:
		return FormatBinary
	}
}

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment is a contiguous piece of a program image.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment bytes, copied verbatim.
	Data []byte
	// Words holds word-oriented contents (hex images). They are packed with
	// the target memory's byte order when the segment is loaded.
	Words []uint32
	// MemSize is the size in memory (may be larger than the contents for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Len returns the number of content bytes.
func (s *Segment) Len() uint32 {
	return uint32(len(s.Data) + 4*len(s.Words))
}

// Program is a parsed image ready to be loaded.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments.
	Segments []Segment
}

// Size returns the number of bytes the program occupies from address 0.
func (p *Program) Size() uint32 {
	var end uint32
	for _, seg := range p.Segments {
		size := seg.MemSize
		if l := seg.Len(); l > size {
			size = l
		}
		if e := seg.VirtAddr + size; e > end {
			end = e
		}
	}
	return end
}

// LoadInto copies every segment into m, growing it as needed. Bytes between
// the contents and MemSize are zeroed.
func (p *Program) LoadInto(m *emu.Memory) error {
	for i := range p.Segments {
		seg := &p.Segments[i]

		data := seg.Data
		if len(seg.Words) > 0 {
			data = make([]byte, 0, 4*len(seg.Words))
			for _, w := range seg.Words {
				b := m.Pack(w)
				data = append(data, b[:]...)
			}
		}

		if seg.MemSize > uint32(len(data)) {
			padded := make([]byte, seg.MemSize)
			copy(padded, data)
			data = padded
		}

		if err := m.LoadBytes(seg.VirtAddr, data); err != nil {
			return fmt.Errorf("load segment at 0x%08x: %w", seg.VirtAddr, err)
		}
	}
	return nil
}

// Load reads the image at path in the given format.
func Load(path string, format Format) (*Program, error) {
	if format == FormatAuto || format == "" {
		format = DetectFormat(path)
	}

	switch format {
	case FormatHex:
		return LoadHex(path)
	case FormatBinary:
		return LoadBinary(path)
	case FormatELF:
		return LoadELF(path)
	default:
		return nil, fmt.Errorf("unknown image format %q", format)
	}
}
