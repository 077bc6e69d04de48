package o3

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/o3sim/insts"
)

// WorkloadConfig shapes the synthetic instruction stream the front end
// feeds the queue.
type WorkloadConfig struct {
	// Name selects a predefined mix: "alu", "mem", "branchy", or "mixed".
	Name string

	// Seed makes runs reproducible.
	Seed int64

	// DispatchWidth is the maximum number of instructions renamed and
	// inserted per cycle.
	DispatchWidth int

	// MispredictRate is the probability a branch is marked mispredicted.
	MispredictRate float64

	// SerializeRate is the probability of a serializing (non-speculative)
	// instruction; BarrierRate of a memory barrier.
	SerializeRate float64
	BarrierRate   float64
}

// DefaultWorkloadConfig returns the mixed workload.
func DefaultWorkloadConfig() WorkloadConfig {
	return WorkloadConfig{
		Name:           "mixed",
		Seed:           1,
		DispatchWidth:  4,
		MispredictRate: 0.05,
		SerializeRate:  0.01,
		BarrierRate:    0.005,
	}
}

// classMix is a per-class weight table for drawing op classes; drawClass
// accumulates the weights in order.
type classMix []struct {
	class  insts.OpClass
	weight float64
}

var workloadMixes = map[string]classMix{
	"alu": {
		{insts.IntAlu, 0.70}, {insts.IntMult, 0.10}, {insts.IntDiv, 0.02},
		{insts.Branch, 0.10}, {insts.MemRead, 0.05}, {insts.MemWrite, 0.03},
	},
	"mem": {
		{insts.MemRead, 0.40}, {insts.MemWrite, 0.20}, {insts.IntAlu, 0.30},
		{insts.Branch, 0.10},
	},
	"branchy": {
		{insts.IntAlu, 0.55}, {insts.Branch, 0.30}, {insts.MemRead, 0.10},
		{insts.MemWrite, 0.05},
	},
	"mixed": {
		{insts.IntAlu, 0.40}, {insts.IntMult, 0.05}, {insts.FloatAdd, 0.08},
		{insts.FloatMult, 0.05}, {insts.MemRead, 0.18}, {insts.MemWrite, 0.09},
		{insts.Branch, 0.13}, {insts.Misc, 0.02},
	},
}

// regState tracks one physical register in the front end's rename model.
type regState struct {
	// refs counts in-flight instructions reading or writing the register.
	// A register is only handed out as a fresh destination when no
	// in-flight instruction touches it, which preserves the discipline the
	// queue's scoreboard relies on.
	refs int

	// abandoned marks a register whose producer was squashed. Such a
	// register went back to the free list without ever receiving a value,
	// so it must not be sourced until a new producer claims it.
	abandoned bool

	// pending marks an in-flight producer; owner is its thread. Another
	// thread must not source a pending register: rename maps are
	// per-thread, and a cross-thread dependency would outlive the
	// producer's squash.
	pending bool
	owner   int
}

// FrontEnd generates renamed instructions, playing the role of the
// fetch/decode/rename stages.
type FrontEnd struct {
	config WorkloadConfig
	mix    classMix
	rng    *rand.Rand

	numThreads     int
	numPhysIntRegs int
	numPhysRegs    int

	regs    []regState
	nextSeq insts.SeqNum

	// recentDests remembers the last few destinations per thread so new
	// instructions have producers to depend on.
	recentDests [][]insts.PhysReg

	// stallUntil suppresses dispatch per thread while a squash drains.
	stallUntil []uint64
}

// NewFrontEnd creates a synthetic front end over the given register space.
func NewFrontEnd(
	config WorkloadConfig,
	numThreads, numPhysIntRegs, numPhysFloatRegs int,
) (*FrontEnd, error) {
	mix, ok := workloadMixes[config.Name]
	if !ok {
		return nil, fmt.Errorf("unknown workload %q", config.Name)
	}
	if config.DispatchWidth < 1 {
		return nil, fmt.Errorf("dispatch width must be >= 1")
	}

	f := &FrontEnd{
		config:         config,
		mix:            mix,
		rng:            rand.New(rand.NewSource(config.Seed)),
		numThreads:     numThreads,
		numPhysIntRegs: numPhysIntRegs,
		numPhysRegs:    numPhysIntRegs + numPhysFloatRegs,
		regs:           make([]regState, numPhysIntRegs+numPhysFloatRegs),
		nextSeq:        1,
		recentDests:    make([][]insts.PhysReg, numThreads),
		stallUntil:     make([]uint64, numThreads),
	}
	return f, nil
}

func (f *FrontEnd) drawClass() insts.OpClass {
	v := f.rng.Float64()
	acc := 0.0
	for _, m := range f.mix {
		acc += m.weight
		if v < acc {
			return m.class
		}
	}
	return insts.IntAlu
}

// allocDest finds an unreferenced physical register in the right bank and
// claims it for the thread.
func (f *FrontEnd) allocDest(tid int, float bool) (insts.PhysReg, bool) {
	lo, hi := 0, f.numPhysIntRegs
	if float {
		lo, hi = f.numPhysIntRegs, f.numPhysRegs
	}
	// Start the scan at a random point so allocation spreads over the bank.
	span := hi - lo
	if span == 0 {
		return 0, false
	}
	start := lo + f.rng.Intn(span)
	for n := 0; n < span; n++ {
		r := lo + (start-lo+n)%span
		if f.regs[r].refs == 0 {
			f.regs[r].abandoned = false
			f.regs[r].pending = true
			f.regs[r].owner = tid
			return insts.PhysReg(r), true
		}
	}
	return 0, false
}

// sourceable reports whether the thread may read the register: it must hold
// a value, or be in flight on the same thread.
func (f *FrontEnd) sourceable(tid int, r insts.PhysReg) bool {
	s := &f.regs[r]
	if s.abandoned {
		return false
	}
	return !s.pending || s.owner == tid
}

// pickSrc prefers a recent destination of the thread, falling back to a
// random register of the bank.
func (f *FrontEnd) pickSrc(tid int, float bool) insts.PhysReg {
	recents := f.recentDests[tid]
	if len(recents) > 0 && f.rng.Float64() < 0.7 {
		r := recents[f.rng.Intn(len(recents))]
		if f.sourceable(tid, r) {
			return r
		}
	}
	lo, hi := 0, f.numPhysIntRegs
	if float {
		lo, hi = f.numPhysIntRegs, f.numPhysRegs
	}
	span := hi - lo
	start := lo + f.rng.Intn(span)
	for n := 0; n < span; n++ {
		r := insts.PhysReg(lo + (start-lo+n)%span)
		if f.sourceable(tid, r) {
			return r
		}
	}
	return insts.PhysReg(lo)
}

// Stall suppresses dispatch for the thread until the given cycle, used
// while a squash drains the queue.
func (f *FrontEnd) Stall(tid int, untilCycle uint64) {
	if untilCycle > f.stallUntil[tid] {
		f.stallUntil[tid] = untilCycle
	}
}

// Stalled reports whether the thread may not dispatch this cycle.
func (f *FrontEnd) Stalled(tid int, cycle uint64) bool {
	return cycle < f.stallUntil[tid]
}

// NextInst generates one renamed instruction for the thread. The kind
// describes how the instruction must enter the queue.
func (f *FrontEnd) NextInst(tid int) (*insts.DynInst, InsertKind) {
	// Barriers are standalone fence micro-ops; serializing instructions
	// keep their drawn class but take the commit-released path.
	if f.rng.Float64() < f.config.BarrierRate {
		inst := insts.New(f.nextSeq, tid, insts.Misc, nil, nil)
		f.nextSeq++
		return inst, InsertBarrier
	}

	class := f.drawClass()
	kind := InsertNormal
	if f.rng.Float64() < f.config.SerializeRate {
		kind = InsertNonSpec
	}

	var srcs, dests []insts.PhysReg
	float := class.IsFloat()

	switch class {
	case insts.MemRead:
		srcs = []insts.PhysReg{f.pickSrc(tid, false)}
		if d, ok := f.allocDest(tid, float); ok {
			dests = []insts.PhysReg{d}
		} else {
			return nil, InsertNone
		}
	case insts.MemWrite:
		srcs = []insts.PhysReg{f.pickSrc(tid, false), f.pickSrc(tid, float)}
	case insts.Branch:
		srcs = []insts.PhysReg{f.pickSrc(tid, false)}
	default:
		srcs = []insts.PhysReg{f.pickSrc(tid, float), f.pickSrc(tid, float)}
		if d, ok := f.allocDest(tid, float); ok {
			dests = []insts.PhysReg{d}
		} else {
			return nil, InsertNone
		}
	}

	inst := insts.New(f.nextSeq, tid, class, srcs, dests)
	f.nextSeq++

	if class == insts.Branch && f.rng.Float64() < f.config.MispredictRate {
		inst.Mispredicted = true
	}

	for _, r := range append(append([]insts.PhysReg{}, srcs...), dests...) {
		f.regs[r].refs++
	}
	for _, d := range dests {
		f.recentDests[tid] = append(f.recentDests[tid], d)
		if len(f.recentDests[tid]) > 8 {
			f.recentDests[tid] = f.recentDests[tid][1:]
		}
	}

	return inst, kind
}

// Release returns an instruction's register references at commit or squash.
func (f *FrontEnd) Release(inst *insts.DynInst) {
	for _, r := range inst.SrcRegs {
		f.regs[r].refs--
	}
	for _, r := range inst.DestRegs {
		f.regs[r].refs--
		f.regs[r].pending = false
	}
	// A squashed producer's destinations never received values: pull them
	// out of the recent-destination pool and fence them off until a new
	// producer claims them.
	if inst.Squashed() {
		for _, d := range inst.DestRegs {
			f.regs[d].abandoned = true
			recents := f.recentDests[inst.ThreadID]
			for i := len(recents) - 1; i >= 0; i-- {
				if recents[i] == d {
					f.recentDests[inst.ThreadID] =
						append(recents[:i], recents[i+1:]...)
					break
				}
			}
		}
	}
}

// InsertKind says which queue admission path an instruction takes.
type InsertKind int

const (
	// InsertNone means the front end could not rename this cycle.
	InsertNone InsertKind = iota
	// InsertNormal takes the speculative path.
	InsertNormal
	// InsertNonSpec takes the commit-released path.
	InsertNonSpec
	// InsertBarrier is a memory barrier.
	InsertBarrier
)
