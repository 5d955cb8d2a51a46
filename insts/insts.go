// Package insts provides RV32I instruction definitions and decoding.
//
// This package implements decoding of RV32I machine code into structured
// instruction representations. It supports the six base formats:
//   - R-type: register-register ALU operations (ADD, SUB, SLL, ...)
//   - I-type: loads, ALU immediates and JALR
//   - S-type: stores
//   - B-type: conditional branches
//   - U-type: LUI and AUIPC
//   - J-type: JAL
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00500093) // ADDI x1, x0, 5
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts

import "fmt"

// Op represents a resolved RV32I operation.
type Op uint8

// RV32I operations.
//
//go:generate go tool stringer -linecomment -type=Op
const (
	OpUnknown Op = iota // unknown

	// U-type
	OpLUI   // lui
	OpAUIPC // auipc

	// Jumps
	OpJAL  // jal
	OpJALR // jalr

	// Branches
	OpBEQ  // beq
	OpBNE  // bne
	OpBLT  // blt
	OpBGE  // bge
	OpBLTU // bltu
	OpBGEU // bgeu

	// Loads
	OpLB  // lb
	OpLH  // lh
	OpLW  // lw
	OpLBU // lbu
	OpLHU // lhu

	// Stores
	OpSB // sb
	OpSH // sh
	OpSW // sw

	// ALU immediate
	OpADDI  // addi
	OpSLTI  // slti
	OpSLTIU // sltiu
	OpXORI  // xori
	OpORI   // ori
	OpANDI  // andi
	OpSLLI  // slli
	OpSRLI  // srli
	OpSRAI  // srai

	// ALU register
	OpADD  // add
	OpSUB  // sub
	OpSLL  // sll
	OpSLT  // slt
	OpSLTU // sltu
	OpXOR  // xor
	OpSRL  // srl
	OpSRA  // sra
	OpOR   // or
	OpAND  // and
)

// IsLoad returns true for the load operations.
func (op Op) IsLoad() bool {
	return op >= OpLB && op <= OpLHU
}

// IsStore returns true for the store operations.
func (op Op) IsStore() bool {
	return op >= OpSB && op <= OpSW
}

// IsBranch returns true for the conditional branch operations.
func (op Op) IsBranch() bool {
	return op >= OpBEQ && op <= OpBGEU
}

// IsJump returns true for JAL and JALR.
func (op Op) IsJump() bool {
	return op == OpJAL || op == OpJALR
}

// String renders the instruction in assembler syntax.
func (inst *Instruction) String() string {
	switch inst.Format {
	case FormatR:
		return fmt.Sprintf("%v x%d, x%d, x%d", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
	case FormatI:
		switch {
		case inst.Op.IsLoad():
			return fmt.Sprintf("%v x%d, %d(x%d)", inst.Op, inst.Rd, inst.Imm, inst.Rs1)
		case inst.Op == OpSLLI || inst.Op == OpSRLI || inst.Op == OpSRAI:
			return fmt.Sprintf("%v x%d, x%d, %d", inst.Op, inst.Rd, inst.Rs1, inst.Imm&0x1F)
		default:
			return fmt.Sprintf("%v x%d, x%d, %d", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
		}
	case FormatS:
		return fmt.Sprintf("%v x%d, %d(x%d)", inst.Op, inst.Rs2, inst.Imm, inst.Rs1)
	case FormatB:
		return fmt.Sprintf("%v x%d, x%d, %d", inst.Op, inst.Rs1, inst.Rs2, inst.Imm)
	case FormatU:
		return fmt.Sprintf("%v x%d, 0x%x", inst.Op, inst.Rd, uint32(inst.Imm)>>12)
	case FormatJ:
		return fmt.Sprintf("%v x%d, %d", inst.Op, inst.Rd, inst.Imm)
	default:
		return fmt.Sprintf("invalid 0x%08x", inst.Word)
	}
}
