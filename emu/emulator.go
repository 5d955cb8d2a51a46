// Package emu provides functional RV32I emulation.
package emu

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/timing/cache"
	"github.com/sarchlab/rv32sim/timing/latency"
)

// DefaultMemorySize is the memory allocated when no memory is supplied.
const DefaultMemorySize = 64 * 1024

// cancelCheckInterval is how many instructions RunContext executes between
// checks of its context.
const cancelCheckInterval = 1024

// State is a stage of the instruction cycle.
type State uint8

// Emulator states. A step walks Fetch, Decode, Execute and Retire; Halted
// and Faulted are terminal.
//
//go:generate go tool stringer -linecomment -type=State
const (
	StateFetch   State = iota // fetch
	StateDecode               // decode
	StateExecute              // execute
	StateRetire               // retire
	StateHalted               // halted
	StateFaulted              // faulted
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the program stopped cleanly (self-loop detected).
	Halted bool

	// Err is set if execution cannot continue. Fatal faults are *Fault.
	Err error
}

// Stats collects execution counters.
type Stats struct {
	Instructions  uint64
	Cycles        uint64
	BranchesTaken uint64
	ICache        cache.Statistics
}

// Emulator executes RV32I instructions functionally.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	bus     *Bus
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// Timing
	latency *latency.Table
	icache  *cache.Cache

	logger *logrus.Entry

	strictDecode   bool
	haltOnSelfLoop bool

	// Execution state
	state            State
	fault            error
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
	cycles           uint64
	branchesTaken    uint64
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemory uses the given memory instead of a fresh one.
func WithMemory(m *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
	}
}

// WithLogger sets the logger. Per-instruction traces are emitted at debug
// level.
func WithLogger(l *logrus.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logrus.NewEntry(l).WithField("component", "emu")
	}
}

// WithStrictDecode turns unresolved funct3 encodings into fatal
// ErrIllegalInstruction faults instead of logged no-ops. It also rejects
// funct7 values the base ISA does not assign, which otherwise execute as
// the operation funct3 names.
func WithStrictDecode(strict bool) EmulatorOption {
	return func(e *Emulator) {
		e.strictDecode = strict
	}
}

// WithHaltOnSelfLoop stops the emulator cleanly when a jump or taken branch
// targets its own address, the usual end of a bare-metal program.
func WithHaltOnSelfLoop(halt bool) EmulatorOption {
	return func(e *Emulator) {
		e.haltOnSelfLoop = halt
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithLatencyTable enables cycle accounting with the given table.
func WithLatencyTable(t *latency.Table) EmulatorOption {
	return func(e *Emulator) {
		e.latency = t
	}
}

// WithICache models instruction fetches through the given cache.
func WithICache(c *cache.Cache) EmulatorOption {
	return func(e *Emulator) {
		e.icache = c
	}
}

// NewEmulator creates a new RV32I emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		decoder: insts.NewDecoder(),
		logger:  logrus.NewEntry(logrus.StandardLogger()).WithField("component", "emu"),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.memory == nil {
		e.memory = NewMemory(DefaultMemorySize)
	}
	e.bus = NewBus(e.memory)

	// Create execution units
	e.alu = NewALU(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.bus)
	e.branchUnit = NewBranchUnit(e.regFile)

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Bus returns the bus, for mapping peripherals.
func (e *Emulator) Bus() *Bus {
	return e.bus
}

// State returns the current stage of the instruction cycle.
func (e *Emulator) State() State {
	return e.state
}

// InstructionCount returns the number of instructions retired.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Stats returns the execution counters.
func (e *Emulator) Stats() Stats {
	s := Stats{
		Instructions:  e.instructionCount,
		Cycles:        e.cycles,
		BranchesTaken: e.branchesTaken,
	}
	if e.icache != nil {
		s.ICache = e.icache.Stats()
	}
	return s
}

// SetPC sets the address of the next instruction.
func (e *Emulator) SetPC(pc uint32) {
	e.regFile.PC = pc
}

// LoadProgram copies program into memory at entry and points the PC at it.
func (e *Emulator) LoadProgram(entry uint32, program []byte) error {
	if err := e.memory.LoadBytes(entry, program); err != nil {
		return fmt.Errorf("load program at 0x%08x: %w", entry, err)
	}
	e.regFile.PC = entry
	return nil
}

// Reset clears the registers, counters and terminal state. Memory and bus
// mappings are kept.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.state = StateFetch
	e.fault = nil
	e.instructionCount = 0
	e.cycles = 0
	e.branchesTaken = 0
	if e.icache != nil {
		e.icache.Reset()
	}
}

// fail enters the terminal Faulted state.
func (e *Emulator) fail(word uint32, err error) StepResult {
	fault := &Fault{PC: e.regFile.PC, Word: word, Err: err}
	e.state = StateFaulted
	e.fault = fault
	e.logger.WithFields(logrus.Fields{
		"pc":   fmt.Sprintf("0x%08x", fault.PC),
		"word": fmt.Sprintf("%08x", word),
	}).Error(err)
	return StepResult{Err: fault}
}

// Step executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	switch e.state {
	case StateFaulted:
		return StepResult{Err: e.fault}
	case StateHalted:
		return StepResult{Halted: true}
	}

	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	// 1. Fetch
	e.state = StateFetch
	pc := e.regFile.PC
	if pc&0x3 != 0 {
		return e.fail(0, ErrMisalignedFetch)
	}
	if e.icache != nil {
		e.cycles += e.icache.Access(pc).Latency
	}
	word, err := e.bus.Read32(pc)
	if err != nil {
		return e.fail(0, err)
	}

	// 2. Decode
	e.state = StateDecode
	inst := e.decoder.Decode(word)
	if inst.Format == insts.FormatInvalid {
		return e.fail(word, ErrInvalidOpcode)
	}
	if e.logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		e.logger.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("0x%08x", pc),
			"word": fmt.Sprintf("%08x", word),
		}).Debug(inst.String())
	}

	// 3. Execute
	e.state = StateExecute
	next, redirected, err := e.execute(inst)
	if err != nil {
		return e.fail(word, err)
	}

	// 4. Retire
	e.state = StateRetire
	e.retire(inst, next, redirected)

	if e.haltOnSelfLoop && redirected && next == pc {
		e.state = StateHalted
		e.logger.WithField("pc", fmt.Sprintf("0x%08x", pc)).Info("halted on self loop")
		return StepResult{Halted: true}
	}

	e.state = StateFetch
	return StepResult{}
}

// retire commits the next PC and the counters.
func (e *Emulator) retire(inst *insts.Instruction, next uint32, redirected bool) {
	e.regFile.PC = next
	e.instructionCount++

	if redirected && inst.Op.IsBranch() {
		e.branchesTaken++
	}

	if e.latency != nil {
		e.cycles += e.latency.GetLatency(inst, redirected)
	} else {
		e.cycles++
	}
}

// Run executes instructions until the program halts or an error occurs.
// A clean halt returns nil.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Halted {
			return nil
		}
		if result.Err != nil {
			return result.Err
		}
	}
}

// RunContext is Run that also stops when ctx is done.
func (e *Emulator) RunContext(ctx context.Context) error {
	for i := uint64(0); ; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		result := e.Step()
		if result.Halted {
			return nil
		}
		if result.Err != nil {
			return result.Err
		}
	}
}

// execute dispatches a decoded instruction to its format's semantics. It
// returns the next PC and whether control flow was redirected.
func (e *Emulator) execute(inst *insts.Instruction) (next uint32, redirected bool, err error) {
	pc := e.regFile.PC
	next = pc + 4

	if e.strictDecode && !inst.Canonical() {
		return 0, false, ErrIllegalInstruction
	}

	if inst.Op == insts.OpUnknown {
		e.logger.WithFields(logrus.Fields{
			"pc":     fmt.Sprintf("0x%08x", pc),
			"word":   fmt.Sprintf("%08x", inst.Word),
			"format": inst.Format.String(),
			"funct3": inst.Funct3,
		}).Warn("unsupported encoding, executing as no-op")
		return next, false, nil
	}

	switch inst.Format {
	case insts.FormatR:
		e.alu.ExecuteReg(inst)
	case insts.FormatI:
		return e.executeI(inst)
	case insts.FormatS:
		err = e.lsu.Store(inst)
		if err == nil && e.icache != nil {
			e.icache.Invalidate(e.lsu.EffectiveAddress(inst))
		}
	case insts.FormatB:
		next, redirected = e.branchUnit.Branch(inst)
	case insts.FormatU:
		e.executeU(inst)
	case insts.FormatJ:
		next, redirected = e.branchUnit.JAL(inst), true
	default:
		err = fmt.Errorf("unimplemented format %v", inst.Format)
	}

	return next, redirected, err
}

// executeI handles the three I-type families: loads, ALU immediates, JALR.
func (e *Emulator) executeI(inst *insts.Instruction) (uint32, bool, error) {
	switch inst.Opcode {
	case insts.OpcodeLoad:
		return e.regFile.PC + 4, false, e.lsu.Load(inst)
	case insts.OpcodeJALR:
		return e.branchUnit.JALR(inst), true, nil
	default:
		e.alu.ExecuteImm(inst)
		return e.regFile.PC + 4, false, nil
	}
}

// executeU handles LUI and AUIPC.
func (e *Emulator) executeU(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLUI:
		e.regFile.WriteReg(inst.Rd, uint32(inst.Imm))
	case insts.OpAUIPC:
		e.regFile.WriteReg(inst.Rd, e.regFile.PC+uint32(inst.Imm))
	}
}
