// Package main provides the entry point for o3sim, a timing model of the
// dispatch/wakeup/select core of an out-of-order SMT CPU.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/monitor"
	"github.com/sarchlab/o3sim/timing/fu"
	"github.com/sarchlab/o3sim/timing/iq"
	"github.com/sarchlab/o3sim/timing/o3"
)

var (
	entries    = flag.Int("entries", 64, "Instruction queue entries")
	width      = flag.Int("width", 8, "Issue width")
	threads    = flag.Int("threads", 1, "Hardware threads")
	policyName = flag.String("policy", "dynamic", "SMT sharing policy: dynamic, partitioned, threshold")
	threshold  = flag.Int("threshold", 32, "Per-thread cap for the threshold policy")
	cycles     = flag.Uint64("cycles", 100000, "Cycles to simulate")
	workload   = flag.String("workload", "mixed", "Workload mix: alu, mem, branchy, mixed")
	seed       = flag.Int64("seed", 1, "Workload RNG seed")
	fuConfig   = flag.String("fu-config", "", "Path to FU pool configuration JSON file")
	monAddr    = flag.String("monitor", "", "Serve statistics over HTTP on this address")
	verbose    = flag.Bool("v", false, "Verbose output")
)

// coreSnapshot adapts the core's stats for the monitor endpoint.
type coreSnapshot struct {
	core *o3.Core
}

func (s coreSnapshot) StatsSnapshot() any {
	stats := s.core.Stats()
	return map[string]any{
		"cycles":       stats.Cycles,
		"dispatched":   stats.Dispatched,
		"committed":    stats.Commit.Committed,
		"squashes":     stats.Commit.Squashes,
		"issued":       stats.IQ.InstsIssued,
		"issue_rate":   stats.IQ.IssueRate(),
		"fu_busy_rate": stats.FUBusyRate,
		"ipc":          stats.IPC(),
	}
}

func main() {
	flag.Parse()

	config := o3.DefaultConfig()
	config.IQ.NumEntries = *entries
	config.IQ.IssueWidth = *width
	config.IQ.NumThreads = *threads
	config.IQ.Threshold = *threshold
	config.Workload.Name = *workload
	config.Workload.Seed = *seed

	policy, err := iq.ParsePolicy(*policyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	config.IQ.Policy = policy

	if *fuConfig != "" {
		loaded, err := fu.LoadConfig(*fuConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading FU config: %v\n", err)
			atexit.Exit(1)
		}
		config.FU = loaded
	}

	engine := sim.NewSerialEngine()
	core, err := o3.NewCore(config, engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building core: %v\n", err)
		atexit.Exit(1)
	}

	if *monAddr != "" {
		server := monitor.NewServer(*monAddr, coreSnapshot{core})
		go func() {
			if err := server.ListenAndServe(); err != nil {
				fmt.Fprintf(os.Stderr, "Monitor error: %v\n", err)
			}
		}()
		if *verbose {
			fmt.Printf("Monitor listening on %s\n", *monAddr)
		}
	}

	if *verbose {
		fmt.Printf("Core: %s\n", core.Name())
		fmt.Printf("IQ: %d entries, width %d, %d threads, %s policy\n",
			*entries, *width, *threads, policy)
	}

	// The summary is printed through an exit handler so it also appears if
	// the run is cut short.
	atexit.Register(func() { report(core.Stats()) })

	if _, err := core.Run(*cycles); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// report prints the end-of-run statistics.
func report(stats o3.Stats) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)
	value := color.New(color.FgGreen)

	title.Println("=== o3sim run summary ===")
	label.Printf("%-28s", "Cycles:")
	value.Printf("%d\n", stats.Cycles)
	label.Printf("%-28s", "Dispatched:")
	value.Printf("%d\n", stats.Dispatched)
	label.Printf("%-28s", "Issued:")
	value.Printf("%d\n", stats.IQ.InstsIssued)
	label.Printf("%-28s", "Committed:")
	value.Printf("%d\n", stats.Commit.Committed)
	label.Printf("%-28s", "Squashes:")
	value.Printf("%d\n", stats.Commit.Squashes)
	label.Printf("%-28s", "Non-spec releases:")
	value.Printf("%d\n", stats.Commit.NonSpecReleases)
	label.Printf("%-28s", "Issue rate (inst/cycle):")
	value.Printf("%.3f\n", stats.IQ.IssueRate())
	label.Printf("%-28s", "IPC:")
	value.Printf("%.3f\n", stats.IPC())
	label.Printf("%-28s", "FU busy rate:")
	value.Printf("%.3f\n", stats.FUBusyRate)
	label.Printf("%-28s", "Mean issue delay (cycles):")
	value.Printf("%.2f (σ %.2f)\n", stats.IQ.IssueDelay.Mean(), stats.IQ.IssueDelay.StdDev())

	title.Println("--- issued by op class ---")
	for class := insts.OpClass(0); class < insts.NumOpClasses; class++ {
		if stats.IQ.IssuedByClass[class] == 0 {
			continue
		}
		label.Printf("%-28s", class.String()+":")
		value.Printf("%d (mean residency %.2f)\n",
			stats.IQ.IssuedByClass[class],
			stats.IQ.QueueResidency[class].Mean())
	}

	title.Println("--- issued per cycle ---")
	for n, count := range stats.IQ.IssuedDist {
		if count == 0 {
			continue
		}
		label.Printf("  %2d wide: ", n)
		value.Printf("%d cycles\n", count)
	}
}
