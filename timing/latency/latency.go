// Package latency provides instruction timing models for cycle counting.
//
// The latency values are configurable via TimingConfig.
package latency

import (
	"github.com/sarchlab/rv32sim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given
// instruction. taken reports whether a branch redirected the PC.
func (t *Table) GetLatency(inst *insts.Instruction, taken bool) uint64 {
	if inst == nil {
		return 1
	}

	switch {
	case inst.Op.IsLoad():
		return t.config.LoadLatency
	case inst.Op.IsStore():
		return t.config.StoreLatency
	case inst.Op.IsJump():
		return t.config.JumpLatency
	case inst.Op.IsBranch():
		if taken {
			return t.config.BranchLatency + t.config.BranchTakenPenalty
		}
		return t.config.BranchLatency
	case inst.Op == insts.OpUnknown:
		return 1
	default:
		return t.config.ALULatency
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
