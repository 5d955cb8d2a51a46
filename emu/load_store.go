// Package emu provides functional RV32I emulation.
package emu

import "github.com/sarchlab/rv32sim/insts"

// LoadStoreUnit implements RV32I loads and stores through the bus.
type LoadStoreUnit struct {
	regFile *RegFile
	bus     *Bus
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and bus.
func NewLoadStoreUnit(regFile *RegFile, bus *Bus) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		bus:     bus,
	}
}

// EffectiveAddress returns rs1 + imm.
func (lsu *LoadStoreUnit) EffectiveAddress(inst *insts.Instruction) uint32 {
	return lsu.regFile.ReadReg(inst.Rs1) + uint32(inst.Imm)
}

// Load performs LB/LH/LW/LBU/LHU: rd = extend(mem[rs1 + imm]).
// On error rd is left untouched.
func (lsu *LoadStoreUnit) Load(inst *insts.Instruction) error {
	addr := lsu.EffectiveAddress(inst)

	var value uint32
	switch inst.Op {
	case insts.OpLB:
		b, err := lsu.bus.Read8(addr)
		if err != nil {
			return err
		}
		value = uint32(int32(int8(b)))
	case insts.OpLBU:
		b, err := lsu.bus.Read8(addr)
		if err != nil {
			return err
		}
		value = uint32(b)
	case insts.OpLH:
		h, err := lsu.bus.Read16(addr)
		if err != nil {
			return err
		}
		value = uint32(int32(int16(h)))
	case insts.OpLHU:
		h, err := lsu.bus.Read16(addr)
		if err != nil {
			return err
		}
		value = uint32(h)
	case insts.OpLW:
		w, err := lsu.bus.Read32(addr)
		if err != nil {
			return err
		}
		value = w
	default:
		return nil
	}

	lsu.regFile.WriteReg(inst.Rd, value)
	return nil
}

// Store performs SB/SH/SW: mem[rs1 + imm] = low bits of rs2.
func (lsu *LoadStoreUnit) Store(inst *insts.Instruction) error {
	addr := lsu.EffectiveAddress(inst)
	value := lsu.regFile.ReadReg(inst.Rs2)

	switch inst.Op {
	case insts.OpSB:
		return lsu.bus.Write8(addr, uint8(value))
	case insts.OpSH:
		return lsu.bus.Write16(addr, uint16(value))
	case insts.OpSW:
		return lsu.bus.Write32(addr, value)
	default:
		return nil
	}
}
