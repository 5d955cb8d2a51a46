// Package insts provides RV32I instruction definitions and decoding.
package insts

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats: R is register-register, I covers loads, ALU
// immediates and JALR, S is stores, B conditional branches, U the upper
// immediates and J jumps.
//
//go:generate go tool stringer -linecomment -type=Format
const (
	FormatInvalid Format = iota // invalid
	FormatR                     // R
	FormatI                     // I
	FormatS                     // S
	FormatB                     // B
	FormatU                     // U
	FormatJ                     // J
)

// RV32I major opcodes (bits [6:0]).
const (
	OpcodeLoad   uint8 = 0x03
	OpcodeOpImm  uint8 = 0x13
	OpcodeAUIPC  uint8 = 0x17
	OpcodeStore  uint8 = 0x23
	OpcodeOp     uint8 = 0x33
	OpcodeLUI    uint8 = 0x37
	OpcodeBranch uint8 = 0x63
	OpcodeJALR   uint8 = 0x67
	OpcodeJAL    uint8 = 0x6F
)

// formatTable maps each recognised opcode to its encoding format.
var formatTable = map[uint8]Format{
	OpcodeOp:     FormatR,
	OpcodeLoad:   FormatI,
	OpcodeOpImm:  FormatI,
	OpcodeJALR:   FormatI,
	OpcodeStore:  FormatS,
	OpcodeBranch: FormatB,
	OpcodeAUIPC:  FormatU,
	OpcodeLUI:    FormatU,
	OpcodeJAL:    FormatJ,
}

// funct7Alt is the base-ISA funct7 of SUB, SRA and SRAI.
const funct7Alt = 0x20

// Instruction represents a decoded RV32I instruction.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Format Format // Encoding format
	Op     Op     // Resolved operation (OpUnknown if funct3 doesn't match)

	Opcode uint8 // bits [6:0]
	Funct3 uint8 // bits [14:12]
	Funct7 uint8 // bits [31:25] (R-type, shift immediates)
	Rd     uint8 // Destination register
	Rs1    uint8 // First source register
	Rs2    uint8 // Second source register

	// Imm is the immediate, sign-extended (or positioned, for U-type)
	// according to the format's bit layout.
	Imm int32
}

// Decoder decodes RV32I machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Classify maps the opcode field of a word to its format.
// Unrecognised opcodes return FormatInvalid.
func Classify(word uint32) Format {
	format, ok := formatTable[opcode(word)]
	if !ok {
		return FormatInvalid
	}
	return format
}

// Decode decodes a 32-bit RV32I instruction word. Words with an unrecognised
// opcode come back with FormatInvalid; it is up to the caller to fault.
func (d *Decoder) Decode(word uint32) *Instruction {
	var inst Instruction

	switch Classify(word) {
	case FormatR:
		inst = DecodeR(word)
	case FormatI:
		inst = DecodeI(word)
	case FormatS:
		inst = DecodeS(word)
	case FormatB:
		inst = DecodeB(word)
	case FormatU:
		inst = DecodeU(word)
	case FormatJ:
		inst = DecodeJ(word)
	default:
		inst = Instruction{
			Word:   word,
			Format: FormatInvalid,
			Opcode: opcode(word),
		}
	}

	inst.Op = resolveOp(&inst)

	return &inst
}

func opcode(word uint32) uint8 { return uint8(word & 0x7F) }
func rd(word uint32) uint8     { return uint8((word >> 7) & 0x1F) }
func funct3(word uint32) uint8 { return uint8((word >> 12) & 0x7) }
func rs1(word uint32) uint8    { return uint8((word >> 15) & 0x1F) }
func rs2(word uint32) uint8    { return uint8((word >> 20) & 0x1F) }
func funct7(word uint32) uint8 { return uint8((word >> 25) & 0x7F) }

// signExtend sign-extends the low bits of value.
func signExtend(value uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

// DecodeR extracts R-type fields.
// Format: funct7 | rs2 | rs1 | funct3 | rd | opcode
func DecodeR(word uint32) Instruction {
	return Instruction{
		Word:   word,
		Format: FormatR,
		Opcode: opcode(word),
		Funct3: funct3(word),
		Funct7: funct7(word),
		Rd:     rd(word),
		Rs1:    rs1(word),
		Rs2:    rs2(word),
	}
}

// DecodeI extracts I-type fields.
// Format: imm[11:0] | rs1 | funct3 | rd | opcode
func DecodeI(word uint32) Instruction {
	return Instruction{
		Word:   word,
		Format: FormatI,
		Opcode: opcode(word),
		Funct3: funct3(word),
		Rd:     rd(word),
		Rs1:    rs1(word),
		Imm:    int32(word) >> 20,
	}
}

// DecodeS extracts S-type fields.
// Format: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode
func DecodeS(word uint32) Instruction {
	raw := (word>>25)<<5 | (word>>7)&0x1F
	return Instruction{
		Word:   word,
		Format: FormatS,
		Opcode: opcode(word),
		Funct3: funct3(word),
		Rs1:    rs1(word),
		Rs2:    rs2(word),
		Imm:    signExtend(raw, 12),
	}
}

// DecodeB extracts B-type fields.
// Format: imm[12] | imm[10:5] | rs2 | rs1 | funct3 | imm[4:1] | imm[11] | opcode
func DecodeB(word uint32) Instruction {
	raw := (word>>31)&0x1<<12 |
		(word>>25)&0x3F<<5 |
		(word>>8)&0xF<<1 |
		(word>>7)&0x1<<11
	return Instruction{
		Word:   word,
		Format: FormatB,
		Opcode: opcode(word),
		Funct3: funct3(word),
		Rs1:    rs1(word),
		Rs2:    rs2(word),
		Imm:    signExtend(raw, 13),
	}
}

// DecodeU extracts U-type fields. The immediate keeps bits [31:12] in place
// with the low 12 bits cleared.
// Format: imm[31:12] | rd | opcode
func DecodeU(word uint32) Instruction {
	return Instruction{
		Word:   word,
		Format: FormatU,
		Opcode: opcode(word),
		Rd:     rd(word),
		Imm:    int32(word & 0xFFFFF000),
	}
}

// DecodeJ extracts J-type fields.
// Format: imm[20] | imm[10:1] | imm[11] | imm[19:12] | rd | opcode
func DecodeJ(word uint32) Instruction {
	raw := (word>>31)&0x1<<20 |
		(word>>21)&0x3FF<<1 |
		(word>>20)&0x1<<11 |
		(word>>12)&0xFF<<12
	return Instruction{
		Word:   word,
		Format: FormatJ,
		Opcode: opcode(word),
		Rd:     rd(word),
		Imm:    signExtend(raw, 21),
	}
}

// resolveOp picks the operation from opcode, funct3 and funct7.
func resolveOp(inst *Instruction) Op {
	switch inst.Opcode {
	case OpcodeOp:
		return resolveRegOp(inst.Funct3, inst.Funct7)
	case OpcodeOpImm:
		return resolveImmOp(inst)
	case OpcodeLoad:
		return pick(inst.Funct3, loadOps)
	case OpcodeJALR:
		if inst.Funct3 == 0 {
			return OpJALR
		}
	case OpcodeStore:
		return pick(inst.Funct3, storeOps)
	case OpcodeBranch:
		return pick(inst.Funct3, branchOps)
	case OpcodeLUI:
		return OpLUI
	case OpcodeAUIPC:
		return OpAUIPC
	case OpcodeJAL:
		return OpJAL
	}
	return OpUnknown
}

var (
	loadOps   = map[uint8]Op{0: OpLB, 1: OpLH, 2: OpLW, 4: OpLBU, 5: OpLHU}
	storeOps  = map[uint8]Op{0: OpSB, 1: OpSH, 2: OpSW}
	branchOps = map[uint8]Op{0: OpBEQ, 1: OpBNE, 4: OpBLT, 5: OpBGE, 6: OpBLTU, 7: OpBGEU}
)

func pick(funct3 uint8, table map[uint8]Op) Op {
	if op, ok := table[funct3]; ok {
		return op
	}
	return OpUnknown
}

var regOps = [8]Op{OpADD, OpSLL, OpSLT, OpSLTU, OpXOR, OpSRL, OpOR, OpAND}

// resolveRegOp keys on funct3. A non-zero funct7 turns ADD into SUB and SRL
// into SRA; the other operations ignore it.
func resolveRegOp(funct3, funct7 uint8) Op {
	if funct7 != 0 {
		switch funct3 {
		case 0:
			return OpSUB
		case 5:
			return OpSRA
		}
	}
	return regOps[funct3&0x7]
}

func resolveImmOp(inst *Instruction) Op {
	switch inst.Funct3 {
	case 0:
		return OpADDI
	case 2:
		return OpSLTI
	case 3:
		return OpSLTIU
	case 4:
		return OpXORI
	case 6:
		return OpORI
	case 7:
		return OpANDI
	}

	// Shift immediates carry funct7 in imm[11:5].
	inst.Funct7 = funct7(inst.Word)
	switch {
	case inst.Funct3 == 1:
		return OpSLLI
	case inst.Funct7 != 0:
		return OpSRAI
	default:
		return OpSRLI
	}
}

// Canonical reports whether the word is a base-ISA encoding of its resolved
// operation. Unresolved words are not canonical, and neither are words whose
// funct7 differs from the base-ISA value (0x20 for SUB, SRA and SRAI, zero
// for the other R-type operations and shift immediates). The M extension's
// MUL resolves to SUB but is not canonical.
func (i *Instruction) Canonical() bool {
	switch i.Op {
	case OpUnknown:
		return false
	case OpSUB, OpSRA, OpSRAI:
		return i.Funct7 == funct7Alt
	case OpSLLI, OpSRLI:
		return i.Funct7 == 0
	}
	if i.Opcode == OpcodeOp {
		return i.Funct7 == 0
	}
	return true
}
