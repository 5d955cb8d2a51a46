// Package emu provides functional RV32I emulation.
package emu

import "github.com/sarchlab/rv32sim/insts"

// BranchUnit implements RV32I branches and jumps. It computes the next PC
// but does not retire it; the emulator commits the target.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Taken evaluates a conditional branch on rs1 and rs2.
func (b *BranchUnit) Taken(op insts.Op, rs1, rs2 uint8) bool {
	x := b.regFile.ReadReg(rs1)
	y := b.regFile.ReadReg(rs2)

	switch op {
	case insts.OpBEQ:
		return x == y
	case insts.OpBNE:
		return x != y
	case insts.OpBLT:
		return int32(x) < int32(y)
	case insts.OpBGE:
		return int32(x) >= int32(y)
	case insts.OpBLTU:
		return x < y
	case insts.OpBGEU:
		return x >= y
	default:
		return false
	}
}

// Branch returns the next PC for a conditional branch at the current PC.
func (b *BranchUnit) Branch(inst *insts.Instruction) (next uint32, taken bool) {
	pc := b.regFile.PC
	if b.Taken(inst.Op, inst.Rs1, inst.Rs2) {
		return pc + uint32(inst.Imm), true
	}
	return pc + 4, false
}

// JAL links rd to PC+4 and returns PC+imm.
func (b *BranchUnit) JAL(inst *insts.Instruction) uint32 {
	pc := b.regFile.PC
	b.regFile.WriteReg(inst.Rd, pc+4)
	return pc + uint32(inst.Imm)
}

// JALR links rd to PC+4 and returns (rs1+imm) with bit 0 cleared.
// The target is read before rd is written, so rd may equal rs1.
func (b *BranchUnit) JALR(inst *insts.Instruction) uint32 {
	target := (b.regFile.ReadReg(inst.Rs1) + uint32(inst.Imm)) &^ 1
	b.regFile.WriteReg(inst.Rd, b.regFile.PC+4)
	return target
}
