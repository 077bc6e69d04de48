// Package o3 wires the instruction queue, function unit pool, and memory
// dependence units into a runnable out-of-order core model. A synthetic
// front end plays fetch/decode/rename; an in-order commit unit retires
// completed instructions and drives squashes for mispredicted branches.
package o3

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/o3sim/timing/fu"
	"github.com/sarchlab/o3sim/timing/iq"
	"github.com/sarchlab/o3sim/timing/timebuf"
)

// Config assembles the parameters of one core.
type Config struct {
	IQ          iq.Params
	FU          *fu.Config
	Workload    WorkloadConfig
	CommitWidth int
	Freq        sim.Freq
}

// DefaultConfig returns a single-thread core configuration.
func DefaultConfig() *Config {
	return &Config{
		IQ:          iq.DefaultParams(),
		FU:          fu.DefaultConfig(),
		Workload:    DefaultWorkloadConfig(),
		CommitWidth: 8,
		Freq:        1 * sim.GHz,
	}
}

// Stats aggregates the core's counters.
type Stats struct {
	Cycles     uint64
	Dispatched uint64
	Commit     CommitStats
	IQ         *iq.Statistics
	FUBusyRate float64
}

// IPC returns committed instructions per cycle.
func (s Stats) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Commit.Committed) / float64(s.Cycles)
}

// Core is one out-of-order core instance on the event engine.
type Core struct {
	name   string
	engine sim.Engine
	freq   sim.Freq
	config *Config

	queue    *iq.Queue
	fuPool   *fu.Pool
	frontEnd *FrontEnd
	commit   *commitUnit

	commitBuf *timebuf.TimeBuffer[iq.CommitSignal]
	i2e       *timebuf.TimeBuffer[iq.IssueBundle]

	cycle       uint64
	cyclesToRun uint64
	dispatched  uint64
}

// NewCore builds a core over the given engine.
func NewCore(config *Config, engine sim.Engine) (*Core, error) {
	pool, err := fu.NewPool(config.FU)
	if err != nil {
		return nil, err
	}

	queue, err := iq.New(config.IQ, engine, config.Freq, pool)
	if err != nil {
		return nil, err
	}

	frontEnd, err := NewFrontEnd(
		config.Workload,
		config.IQ.NumThreads,
		config.IQ.NumPhysIntRegs,
		config.IQ.NumPhysFloatRegs,
	)
	if err != nil {
		return nil, err
	}

	if config.CommitWidth < 1 {
		return nil, fmt.Errorf("commit width must be >= 1")
	}

	c := &Core{
		name:      "Core-" + xid.New().String(),
		engine:    engine,
		freq:      config.Freq,
		config:    config,
		queue:     queue,
		fuPool:    pool,
		frontEnd:  frontEnd,
		commit:    newCommitUnit(config.IQ.NumThreads, config.CommitWidth, frontEnd),
		commitBuf: timebuf.New[iq.CommitSignal](config.IQ.CommitToIEWDelay, 0),
		i2e:       timebuf.New[iq.IssueBundle](0, 0),
	}

	queue.SetTimeBuffer(c.commitBuf)
	queue.SetIssueToExecuteQueue(c.i2e)

	return c, nil
}

// Name returns the core instance name.
func (c *Core) Name() string { return c.name }

// Queue exposes the instruction queue, mainly for inspection.
func (c *Core) Queue() *iq.Queue { return c.queue }

// Handle processes the core's tick events.
func (c *Core) Handle(e sim.Event) error {
	switch e.(type) {
	case tickEvent:
		c.tick(e.Time())
	default:
		return fmt.Errorf("%s: cannot handle event %T", c.name, e)
	}
	return nil
}

// tick runs one cycle. Function unit completions for this cycle already
// fired (the tick event is secondary), so the issue-to-execute bundle is
// complete by the time writeback reads it.
func (c *Core) tick(now sim.VTimeInSec) {
	// Wakeup/select, consuming last cycle's commit signal.
	c.queue.Tick()

	// Writeback: everything the function units finished this cycle.
	bundle := c.i2e.At(0)
	for _, inst := range bundle.Insts {
		if inst.Squashed() {
			continue
		}
		inst.SetCompleted()
		if inst.IsMemRef() || inst.MemBarrier() {
			c.queue.CompleteMemInst(inst)
		}
	}

	// Commit writes this cycle's backwards signal.
	signal := c.commitBuf.At(0)
	stall := uint64(c.config.IQ.CommitToIEWDelay) + 2
	c.commit.tick(signal, c.cycle, stall)

	// Dispatch new work.
	c.dispatch()

	c.commitBuf.Advance()
	c.i2e.Advance()

	c.cycle++
	if c.cycle < c.cyclesToRun {
		c.engine.Schedule(newTickEvent(c.freq.NCyclesLater(1, now), c))
	}
}

// dispatch renames and inserts up to the dispatch width per thread.
func (c *Core) dispatch() {
	for tid := 0; tid < c.config.IQ.NumThreads; tid++ {
		if c.frontEnd.Stalled(tid, c.cycle) {
			continue
		}
		for n := 0; n < c.config.Workload.DispatchWidth; n++ {
			if c.queue.IsFullForThread(tid) {
				break
			}
			inst, kind := c.frontEnd.NextInst(tid)
			if kind == InsertNone {
				break
			}

			switch kind {
			case InsertNormal:
				c.queue.Insert(inst)
			case InsertNonSpec:
				c.queue.InsertNonSpec(inst)
			case InsertBarrier:
				c.queue.InsertBarrier(inst)
			}

			c.commit.push(inst)
			c.dispatched++
		}
	}
}

// Run simulates the given number of cycles and returns the stats.
func (c *Core) Run(cycles uint64) (Stats, error) {
	c.cyclesToRun = cycles
	if cycles > 0 {
		start := c.freq.NCyclesLater(1, c.engine.CurrentTime())
		c.engine.Schedule(newTickEvent(start, c))
		if err := c.engine.Run(); err != nil {
			return Stats{}, fmt.Errorf("engine run: %w", err)
		}
	}
	return c.Stats(), nil
}

// Stats assembles the core's statistics.
func (c *Core) Stats() Stats {
	return Stats{
		Cycles:     c.cycle,
		Dispatched: c.dispatched,
		Commit:     c.commit.stats,
		IQ:         c.queue.Stats(),
		FUBusyRate: c.queue.FUBusyRate(),
	}
}
