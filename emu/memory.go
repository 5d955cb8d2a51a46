// Package emu provides functional RV32I emulation.
package emu

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/sarchlab/akita/v4/mem/mem"
)

// Endianness selects the byte order used to marshal words.
type Endianness uint8

// Byte orders.
const (
	LittleEndian Endianness = iota
	BigEndian
)

// ByteOrder returns the encoding/binary order for the endianness.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endianness) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// ParseEndianness parses "little" or "big" (case-insensitive).
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(s) {
	case "", "little", "le":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	default:
		return LittleEndian, fmt.Errorf("unknown endianness %q", s)
	}
}

// Memory is the simulated RAM. It is a flat byte array starting at address
// 0 and extending to Size(); bytes are kept in an akita storage.
type Memory struct {
	storage    *mem.Storage
	size       uint32
	endianness Endianness
}

// NewMemory creates a zero-filled little-endian memory of the given size.
func NewMemory(size uint32) *Memory {
	return &Memory{
		storage: mem.NewStorage(uint64(size)),
		size:    size,
	}
}

// Size returns the allocated extent in bytes.
func (m *Memory) Size() uint32 {
	return m.size
}

// Grow extends the memory to at least size bytes. Memory never shrinks.
func (m *Memory) Grow(size uint32) {
	if size <= m.size {
		return
	}
	m.size = size
	m.storage.Capacity = uint64(size)
}

// Endianness returns the current byte order.
func (m *Memory) Endianness() Endianness {
	return m.endianness
}

// SetEndianness changes the byte order used by Pack and Unpack.
func (m *Memory) SetEndianness(e Endianness) {
	m.endianness = e
}

// Contains reports whether addr lies inside the allocated extent.
func (m *Memory) Contains(addr uint32) bool {
	return addr < m.size
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) (uint8, error) {
	if !m.Contains(addr) {
		return 0, &MemoryError{Addr: addr, Size: 1}
	}

	data, err := m.storage.Read(uint64(addr), 1)
	if err != nil {
		return 0, fmt.Errorf("read 0x%08x: %w", addr, err)
	}
	return data[0], nil
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) error {
	if !m.Contains(addr) {
		return &MemoryError{Addr: addr, Size: 1, Write: true}
	}

	if err := m.storage.Write(uint64(addr), []byte{value}); err != nil {
		return fmt.Errorf("write 0x%08x: %w", addr, err)
	}
	return nil
}

// LoadBytes copies data into memory at addr, growing it if needed.
func (m *Memory) LoadBytes(addr uint32, data []byte) error {
	end := uint64(addr) + uint64(len(data))
	if end > math.MaxUint32 {
		return &MemoryError{Addr: addr, Size: len(data), Write: true}
	}
	m.Grow(uint32(end))

	if len(data) == 0 {
		return nil
	}
	return m.storage.Write(uint64(addr), data)
}

// Pack marshals a word into bytes using the memory's byte order.
func (m *Memory) Pack(value uint32) [4]byte {
	var b [4]byte
	m.endianness.ByteOrder().PutUint32(b[:], value)
	return b
}

// Unpack unmarshals bytes into a word using the memory's byte order.
func (m *Memory) Unpack(b [4]byte) uint32 {
	return m.endianness.ByteOrder().Uint32(b[:])
}
