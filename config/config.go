// Package config holds the simulator settings that can be read from a JSON
// file and overridden on the command line.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/timing/cache"
	"github.com/sarchlab/rv32sim/timing/latency"
	"github.com/sarchlab/rv32sim/uart"
)

// DefaultMemorySize is 1 MiB.
const DefaultMemorySize = 1 << 20

// Config holds the simulator settings.
type Config struct {
	// MemorySize is the initial memory extent in bytes. Loading an image
	// larger than this grows the memory.
	MemorySize uint32 `json:"memory_size"`

	// Endianness is "little" or "big".
	Endianness string `json:"endianness"`

	// UARTBase is the first address of the UART window.
	UARTBase uint32 `json:"uart_base"`

	// MaxInstructions stops execution after this many instructions.
	// 0 means no limit.
	MaxInstructions uint64 `json:"max_instructions"`

	StrictDecode   bool `json:"strict_decode"`
	HaltOnSelfLoop bool `json:"halt_on_self_loop"`

	// LogLevel is a logrus level name.
	LogLevel string `json:"log_level"`

	// MaxCycles stops a timed run after this many cycles. 0 means no limit.
	MaxCycles uint64 `json:"max_cycles"`

	// EnableTiming turns on cycle accounting with Timing and ICache.
	EnableTiming bool                  `json:"enable_timing"`
	Timing       *latency.TimingConfig `json:"timing"`
	ICache       cache.Config          `json:"icache"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		MemorySize:     DefaultMemorySize,
		Endianness:     emu.LittleEndian.String(),
		UARTBase:       uart.DefaultBase,
		HaltOnSelfLoop: true,
		LogLevel:       logrus.InfoLevel.String(),
		Timing:         latency.DefaultTimingConfig(),
		ICache:         cache.DefaultICacheConfig(),
	}
}

// Load reads a Config from a JSON file. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Save writes the Config to a JSON file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if c.MemorySize == 0 {
		return fmt.Errorf("memory_size must be > 0")
	}
	if _, err := emu.ParseEndianness(c.Endianness); err != nil {
		return fmt.Errorf("endianness: %w", err)
	}
	if uint64(c.UARTBase)+uint64(uart.WindowSize) > 1<<32 {
		return fmt.Errorf("uart_base 0x%08x leaves no room for the UART window", c.UARTBase)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if !c.EnableTiming {
		return nil
	}
	if c.Timing == nil {
		return fmt.Errorf("timing must be set when enable_timing is true")
	}
	if err := c.Timing.Validate(); err != nil {
		return fmt.Errorf("timing: %w", err)
	}
	if err := c.ICache.Validate(); err != nil {
		return fmt.Errorf("icache: %w", err)
	}
	return nil
}

// ByteOrder returns the parsed endianness. Call Validate first.
func (c *Config) ByteOrder() emu.Endianness {
	e, _ := emu.ParseEndianness(c.Endianness)
	return e
}

// Level returns the parsed log level, or info if it does not parse.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// UARTWindow returns the address range of the UART.
func (c *Config) UARTWindow() emu.Window {
	return emu.Window{Base: c.UARTBase, Size: uart.WindowSize}
}

// EmulatorOptions translates the settings into emulator options. Memory is
// supplied by the caller.
func (c *Config) EmulatorOptions(logger *logrus.Logger) []emu.EmulatorOption {
	opts := []emu.EmulatorOption{
		emu.WithLogger(logger),
		emu.WithMaxInstructions(c.MaxInstructions),
		emu.WithStrictDecode(c.StrictDecode),
		emu.WithHaltOnSelfLoop(c.HaltOnSelfLoop),
	}

	if c.EnableTiming {
		opts = append(opts,
			emu.WithLatencyTable(latency.NewTableWithConfig(c.Timing)),
			emu.WithICache(cache.New(c.ICache)),
		)
	}

	return opts
}
