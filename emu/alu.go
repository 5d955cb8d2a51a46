// Package emu provides functional RV32I emulation.
package emu

import "github.com/sarchlab/rv32sim/insts"

// ALU implements RV32I integer arithmetic and logic. All arithmetic wraps
// modulo 2^32.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Compute applies op to the two operands. The immediate forms share the
// semantics of their register forms. ok is false for non-ALU operations.
func (a *ALU) Compute(op insts.Op, x, y uint32) (result uint32, ok bool) {
	switch op {
	case insts.OpADD, insts.OpADDI:
		return x + y, true
	case insts.OpSUB:
		return x - y, true
	case insts.OpSLL, insts.OpSLLI:
		return x << (y & 0x1F), true
	case insts.OpSLT, insts.OpSLTI:
		return boolToWord(int32(x) < int32(y)), true
	case insts.OpSLTU, insts.OpSLTIU:
		return boolToWord(x < y), true
	case insts.OpXOR, insts.OpXORI:
		return x ^ y, true
	case insts.OpSRL, insts.OpSRLI:
		return x >> (y & 0x1F), true
	case insts.OpSRA, insts.OpSRAI:
		return uint32(int32(x) >> (y & 0x1F)), true
	case insts.OpOR, insts.OpORI:
		return x | y, true
	case insts.OpAND, insts.OpANDI:
		return x & y, true
	default:
		return 0, false
	}
}

// ExecuteReg performs an R-type operation: rd = rs1 op rs2.
func (a *ALU) ExecuteReg(inst *insts.Instruction) bool {
	result, ok := a.Compute(inst.Op, a.regFile.ReadReg(inst.Rs1), a.regFile.ReadReg(inst.Rs2))
	if ok {
		a.regFile.WriteReg(inst.Rd, result)
	}
	return ok
}

// ExecuteImm performs an ALU-immediate operation: rd = rs1 op imm.
// SLTIU compares against the sign-extended immediate as an unsigned value.
func (a *ALU) ExecuteImm(inst *insts.Instruction) bool {
	result, ok := a.Compute(inst.Op, a.regFile.ReadReg(inst.Rs1), uint32(inst.Imm))
	if ok {
		a.regFile.WriteReg(inst.Rd, result)
	}
	return ok
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
