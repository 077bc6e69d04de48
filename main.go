// Package main provides the entry point for o3sim.
// O3sim is a timing model of the dispatch/wakeup/select core of an
// out-of-order SMT CPU, built on the Akita simulation framework.
//
// For the full CLI, use: go run ./cmd/o3sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("o3sim - Out-of-Order Instruction Queue Simulator")
	fmt.Println("Built on the Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: o3sim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -entries   Instruction queue entries")
	fmt.Println("  -width     Issue width")
	fmt.Println("  -threads   Hardware threads")
	fmt.Println("  -policy    SMT sharing policy")
	fmt.Println("  -cycles    Cycles to simulate")
	fmt.Println("  -workload  Workload mix")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/o3sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/o3sim' instead.")
	}
}
