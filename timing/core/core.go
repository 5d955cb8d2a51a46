// Package core provides a cycle-driven CPU core model.
// It wraps the functional emulator and spreads each instruction over the
// cycles its latency and fetch cost add up to.
package core

import (
	"errors"

	"github.com/sarchlab/rv32sim/emu"
)

// ErrMaxCycles is returned when a cycle limit stops the core.
var ErrMaxCycles = errors.New("max cycles reached")

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// BusyCycles is the number of cycles spent waiting on a multi-cycle
	// instruction.
	BusyCycles uint64
}

// CPI returns cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core represents a cycle-driven CPU core model.
type Core struct {
	emulator *emu.Emulator

	busy   uint64
	cycles uint64
	stalls uint64
	halted bool
	err    error
}

// NewCore creates a new Core around the given emulator.
func NewCore(e *emu.Emulator) *Core {
	return &Core{emulator: e}
}

// Emulator returns the wrapped emulator.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// Tick simulates one cycle. An instruction executes on the first cycle of
// its cost; the remaining cycles are busy.
func (c *Core) Tick() {
	if c.halted {
		return
	}
	c.cycles++

	if c.busy > 0 {
		c.busy--
		c.stalls++
		return
	}

	before := c.emulator.Stats().Cycles
	result := c.emulator.Step()
	if cost := c.emulator.Stats().Cycles - before; cost > 0 {
		c.busy = cost - 1
	}

	if result.Halted || result.Err != nil {
		// The last instruction still completes.
		c.cycles += c.busy
		c.stalls += c.busy
		c.busy = 0
		c.halted = true
		c.err = result.Err
	}
}

// Halted returns true once the program halted or faulted.
func (c *Core) Halted() bool {
	return c.halted
}

// Err returns the error that stopped the core, if any.
func (c *Core) Err() error {
	return c.err
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return Stats{
		Cycles:       c.cycles,
		Instructions: c.emulator.InstructionCount(),
		BusyCycles:   c.stalls,
	}
}

// Run executes the core until it halts.
func (c *Core) Run() error {
	for !c.halted {
		c.Tick()
	}
	return c.err
}

// RunCycles executes the core for the specified number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !c.halted; i++ {
		c.Tick()
	}
	return !c.halted
}

// Reset clears the core and the emulator state.
func (c *Core) Reset() {
	c.emulator.Reset()
	c.busy = 0
	c.cycles = 0
	c.stalls = 0
	c.halted = false
	c.err = nil
}
