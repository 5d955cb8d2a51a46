// Package emu provides functional RV32I emulation.
package emu

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOpcode is raised for words whose opcode is not in the
	// RV32I base table.
	ErrInvalidOpcode = errors.New("invalid opcode")

	// ErrIllegalInstruction is raised in strict decode mode for a valid
	// opcode whose funct3/funct7 do not name a base-ISA operation.
	ErrIllegalInstruction = errors.New("illegal instruction")

	// ErrMemoryBounds is raised for accesses outside both the allocated
	// memory and every peripheral window.
	ErrMemoryBounds = errors.New("memory access out of bounds")

	// ErrMisalignedFetch is raised when the PC is not word-aligned.
	ErrMisalignedFetch = errors.New("misaligned instruction fetch")

	// ErrMaxInstructions is raised when the instruction limit is reached.
	ErrMaxInstructions = errors.New("max instructions reached")

	// ErrWindowOverlap is returned when mapping a peripheral over another.
	ErrWindowOverlap = errors.New("peripheral window overlaps existing mapping")
)

// MemoryError describes a failed bus access.
type MemoryError struct {
	Addr  uint32
	Size  int
	Write bool
}

func (e *MemoryError) Error() string {
	kind := "read"
	if e.Write {
		kind = "write"
	}
	return fmt.Sprintf("%v: %d-byte %s at 0x%08x", ErrMemoryBounds, e.Size, kind, e.Addr)
}

// Is reports ErrMemoryBounds.
func (e *MemoryError) Is(target error) bool {
	return target == ErrMemoryBounds
}

// Fault is a fatal condition that stops the emulator. Err holds the cause
// (one of the sentinel errors above, possibly wrapped).
type Fault struct {
	PC   uint32
	Word uint32
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v (instruction %08x at pc 0x%08x)", f.Err, f.Word, f.PC)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
