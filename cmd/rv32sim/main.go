// Package main provides the entry point for rv32sim.
// rv32sim runs bare-metal RV32I programs with a memory-mapped UART attached
// to the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rv32sim/config"
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/loader"
	"github.com/sarchlab/rv32sim/timing/core"
	"github.com/sarchlab/rv32sim/uart"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	format     string
	configPath string
	bigEndian  bool
	maxInstr   uint64
	maxCycles  uint64
	strict     bool
	timing     bool
	logLevel   string
	trace      bool
	verbose    bool
	cpuProfile string

	set  map[string]bool
	path string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: map[string]bool{}}

	fs := flag.NewFlagSet("rv32sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.format, "format", string(loader.FormatAuto), "Image format: auto, hex, bin or elf")
	fs.StringVar(&o.configPath, "config", "", "Path to simulator configuration JSON file")
	fs.BoolVar(&o.bigEndian, "big-endian", false, "Use big-endian memory")
	fs.Uint64Var(&o.maxInstr, "max-instr", 0, "Max instructions to execute (0 = unlimited)")
	fs.Uint64Var(&o.maxCycles, "max-cycles", 0, "Max cycles to simulate in timing mode (0 = unlimited)")
	fs.BoolVar(&o.strict, "strict", false, "Fault on encodings outside RV32I instead of skipping them")
	fs.BoolVar(&o.timing, "timing", false, "Enable cycle accounting")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: panic, fatal, error, warn, info, debug or trace")
	fs.BoolVar(&o.trace, "trace", false, "Log every executed instruction")
	fs.BoolVar(&o.verbose, "v", false, "Verbose output")
	fs.StringVar(&o.cpuProfile, "cpuprofile", "", "write cpu profile to file")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rv32sim [options] <program>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return nil, fmt.Errorf("missing program path")
	}

	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	o.path = fs.Arg(0)
	return o, nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
	}

	if o.set["big-endian"] {
		cfg.Endianness = emu.LittleEndian.String()
		if o.bigEndian {
			cfg.Endianness = emu.BigEndian.String()
		}
	}
	if o.set["max-instr"] {
		cfg.MaxInstructions = o.maxInstr
	}
	if o.set["max-cycles"] {
		cfg.MaxCycles = o.maxCycles
	}
	if o.set["strict"] {
		cfg.StrictDecode = o.strict
	}
	if o.set["timing"] {
		cfg.EnableTiming = o.timing
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.trace {
		cfg.LogLevel = logrus.DebugLevel.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, stderr io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(cfg.Level())
	return logger
}

// run executes the simulator and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 1
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger := newLogger(cfg, stderr)

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating CPU profile: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Error starting CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	format, err := loader.ParseFormat(o.format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Load the program
	prog, err := loader.Load(o.path, format)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	memory := emu.NewMemory(cfg.MemorySize)
	memory.SetEndianness(cfg.ByteOrder())
	if err := prog.LoadInto(memory); err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	if o.verbose {
		fmt.Fprintf(stderr, "Loaded: %s\n", o.path)
		fmt.Fprintf(stderr, "Entry point: 0x%08X\n", prog.EntryPoint)
		fmt.Fprintf(stderr, "Segments: %d\n", len(prog.Segments))
	}

	emulator := emu.NewEmulator(append(cfg.EmulatorOptions(logger), emu.WithMemory(memory))...)
	emulator.SetPC(prog.EntryPoint)

	port := uart.New(uart.WithLogger(logger))
	if err := emulator.Bus().Map(cfg.UARTWindow(), port); err != nil {
		fmt.Fprintf(stderr, "Error mapping UART: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	console := uart.NewConsole(port, stdin, stdout, uart.WithConsoleLogger(logger))
	if err := console.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "Error starting console: %v\n", err)
		return 1
	}

	var (
		runErr error
		cpu    *core.Core
	)
	if cfg.EnableTiming {
		cpu = core.NewCore(emulator)
		runErr = runTimed(ctx, cpu, cfg.MaxCycles)
	} else {
		runErr = emulator.RunContext(ctx)
	}

	if err := console.Stop(); err != nil {
		logger.WithError(err).Warn("console shutdown")
	}

	if o.verbose || cfg.EnableTiming {
		printStats(stderr, o.path, emulator.Stats(), cpu)
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "fatal: %v\n", runErr)
		return 1
	}
	return 0
}

// runTimed drives the core cycle by cycle until the program stops, ctx is
// done or the cycle limit is hit.
func runTimed(ctx context.Context, cpu *core.Core, maxCycles uint64) error {
	const chunk = 1024

	for {
		n := uint64(chunk)
		if maxCycles > 0 {
			done := cpu.Stats().Cycles
			if done >= maxCycles {
				return core.ErrMaxCycles
			}
			n = min(n, maxCycles-done)
		}

		if !cpu.RunCycles(n) {
			return cpu.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func printStats(w io.Writer, path string, stats emu.Stats, cpu *core.Core) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Program: %s\n", path)
	fmt.Fprintf(w, "Instructions executed: %d\n", stats.Instructions)
	fmt.Fprintf(w, "Branches taken: %d\n", stats.BranchesTaken)

	if cpu == nil {
		return
	}

	coreStats := cpu.Stats()
	fmt.Fprintf(w, "Total Cycles: %d\n", coreStats.Cycles)
	fmt.Fprintf(w, "CPI: %.2f\n", coreStats.CPI())
	fmt.Fprintf(w, "Busy cycles: %d\n", coreStats.BusyCycles)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "I-Cache:\n")
	fmt.Fprintf(w, "  Accesses:      %d\n", stats.ICache.Accesses)
	fmt.Fprintf(w, "  Hits:          %d\n", stats.ICache.Hits)
	fmt.Fprintf(w, "  Misses:        %d\n", stats.ICache.Misses)
	fmt.Fprintf(w, "  Invalidations: %d\n", stats.ICache.Invalidations)
}
