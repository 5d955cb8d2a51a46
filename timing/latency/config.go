package latency

import "fmt"

// TimingConfig holds latency values for different instruction classes.
// Values describe a simple in-order RV32I core with a single-cycle ALU.
type TimingConfig struct {
	// ALULatency is the execution latency for register and immediate ALU
	// operations, LUI and AUIPC. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the base execution latency for conditional branches.
	// Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// BranchTakenPenalty is added when a branch is taken, modelling the
	// refetch after a redirect. Default: 2 cycles.
	BranchTakenPenalty uint64 `json:"branch_taken_penalty"`

	// JumpLatency is the latency for JAL and JALR, redirect included.
	// Default: 2 cycles.
	JumpLatency uint64 `json:"jump_latency"`

	// LoadLatency is the latency for load operations. Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency for store operations. Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`
}

// DefaultTimingConfig returns a TimingConfig with default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:         1,
		BranchLatency:      1,
		BranchTakenPenalty: 2,
		JumpLatency:        2,
		LoadLatency:        2,
		StoreLatency:       1,
	}
}

// Validate checks that all latency values are valid (> 0). The taken
// penalty may be zero.
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.JumpLatency == 0 {
		return fmt.Errorf("jump_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	return nil
}
