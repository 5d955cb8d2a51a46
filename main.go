// Package main provides the entry point for rv32sim.
// rv32sim is a bare-metal RV32I instruction set simulator.
//
// For the full CLI, use: go run ./cmd/rv32sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rv32sim - RV32I Instruction Set Simulator")
	fmt.Println("Memory backed by Akita storage")
	fmt.Println("")
	fmt.Println("Usage: rv32sim [options] <program.hex|program.bin|program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -format      Image format: auto, hex, bin or elf")
	fmt.Println("  -config      Path to simulator configuration JSON file")
	fmt.Println("  -big-endian  Use big-endian memory")
	fmt.Println("  -max-instr   Max instructions to execute")
	fmt.Println("  -strict      Fault on encodings outside RV32I")
	fmt.Println("  -timing      Enable cycle accounting")
	fmt.Println("  -trace       Log every executed instruction")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rv32sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rv32sim' instead.")
	}
}
