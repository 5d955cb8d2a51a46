// Package emu provides functional RV32I emulation.
package emu

import "fmt"

// Peripheral is a memory-mapped device. Offsets are relative to the base of
// the window the peripheral is mapped at.
type Peripheral interface {
	Read8(offset uint32) uint8
	Write8(offset uint32, value uint8)
}

// Window is a contiguous address range [Base, Base+Size).
type Window struct {
	Base uint32
	Size uint32
}

// Contains reports whether addr falls inside the window.
func (w Window) Contains(addr uint32) bool {
	return addr >= w.Base && addr-w.Base < w.Size
}

// Overlaps reports whether two windows share any address.
func (w Window) Overlaps(other Window) bool {
	if w.Size == 0 || other.Size == 0 {
		return false
	}
	return w.Base <= other.Base+(other.Size-1) && other.Base <= w.Base+(w.Size-1)
}

func (w Window) String() string {
	return fmt.Sprintf("[0x%08x, 0x%08x]", w.Base, w.Base+(w.Size-1))
}

type mapping struct {
	window     Window
	peripheral Peripheral
}

// Bus routes CPU accesses either to a peripheral or to memory. Peripheral
// windows are always checked before memory, so a window shadows any memory
// underneath it.
type Bus struct {
	memory   *Memory
	mappings []mapping
}

// NewBus creates a bus in front of the given memory.
func NewBus(memory *Memory) *Bus {
	return &Bus{memory: memory}
}

// Memory returns the memory behind the bus.
func (b *Bus) Memory() *Memory {
	return b.memory
}

// Map attaches a peripheral to a window.
func (b *Bus) Map(w Window, p Peripheral) error {
	for _, m := range b.mappings {
		if m.window.Overlaps(w) {
			return fmt.Errorf("%w: %v and %v", ErrWindowOverlap, w, m.window)
		}
	}
	b.mappings = append(b.mappings, mapping{window: w, peripheral: p})
	return nil
}

func (b *Bus) lookup(addr uint32) (*mapping, bool) {
	for i := range b.mappings {
		if b.mappings[i].window.Contains(addr) {
			return &b.mappings[i], true
		}
	}
	return nil, false
}

// Read8 reads a byte.
func (b *Bus) Read8(addr uint32) (uint8, error) {
	if m, ok := b.lookup(addr); ok {
		return m.peripheral.Read8(addr - m.window.Base), nil
	}
	return b.memory.Read8(addr)
}

// Write8 writes a byte.
func (b *Bus) Write8(addr uint32, value uint8) error {
	if m, ok := b.lookup(addr); ok {
		m.peripheral.Write8(addr-m.window.Base, value)
		return nil
	}
	return b.memory.Write8(addr, value)
}

// readN reads n sequential bytes starting at addr.
func (b *Bus) readN(addr uint32, buf []byte) error {
	if wraps(addr, len(buf)) {
		return &MemoryError{Addr: addr, Size: len(buf)}
	}
	for i := range buf {
		v, err := b.Read8(addr + uint32(i))
		if err != nil {
			return &MemoryError{Addr: addr, Size: len(buf)}
		}
		buf[i] = v
	}
	return nil
}

// writeN writes the bytes of buf sequentially starting at addr. Bytes
// before a failing address have already been written.
func (b *Bus) writeN(addr uint32, buf []byte) error {
	if wraps(addr, len(buf)) {
		return &MemoryError{Addr: addr, Size: len(buf), Write: true}
	}
	for i, v := range buf {
		if err := b.Write8(addr+uint32(i), v); err != nil {
			return &MemoryError{Addr: addr, Size: len(buf), Write: true}
		}
	}
	return nil
}

// wraps reports whether an n-byte access at addr crosses the top of the
// address space.
func wraps(addr uint32, n int) bool {
	return uint64(addr)+uint64(n) > 1<<32
}

// Read16 reads a halfword as two byte accesses.
func (b *Bus) Read16(addr uint32) (uint16, error) {
	var buf [2]byte
	if err := b.readN(addr, buf[:]); err != nil {
		return 0, err
	}
	return b.memory.endianness.ByteOrder().Uint16(buf[:]), nil
}

// Write16 writes a halfword as two byte accesses.
func (b *Bus) Write16(addr uint32, value uint16) error {
	var buf [2]byte
	b.memory.endianness.ByteOrder().PutUint16(buf[:], value)
	return b.writeN(addr, buf[:])
}

// Read32 reads a word as four byte accesses.
func (b *Bus) Read32(addr uint32) (uint32, error) {
	var buf [4]byte
	if err := b.readN(addr, buf[:]); err != nil {
		return 0, err
	}
	return b.memory.Unpack(buf), nil
}

// Write32 writes a word as four byte accesses.
func (b *Bus) Write32(addr uint32, value uint32) error {
	buf := b.memory.Pack(value)
	return b.writeN(addr, buf[:])
}
