// Package iq implements the instruction queue of the out-of-order core: the
// window of in-flight renamed instructions between dispatch and commit. The
// queue tracks register dependencies through a per-register consumer graph
// backed by a recently-woken scoreboard, keeps register-ready instructions
// in per-op-class queues ordered oldest first, and each cycle selects the
// globally oldest ready instructions for the available function units.
//
// The queue also owns execution timing: when an instruction is selected, a
// completion event fires after the unit's latency, writes the instruction
// into the issue-to-execute bundle, and wakes its dependents. Zero-latency
// operations complete inside the selection loop so a dependent can issue in
// the same cycle.
//
// Memory instructions carry an extra ordering gate owned by the per-thread
// memory dependence units; non-speculative instructions wait in a dedicated
// map until commit releases them by sequence number.
package iq

import (
	"container/list"
	"fmt"

	"github.com/google/btree"
	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/fu"
	"github.com/sarchlab/o3sim/timing/memdep"
	"github.com/sarchlab/o3sim/timing/timebuf"
)

// Params configures a Queue.
type Params struct {
	// NumThreads is the number of hardware thread contexts sharing the
	// queue, at most MaxThreads.
	NumThreads int

	// NumEntries is the total queue capacity.
	NumEntries int

	// IssueWidth is the maximum number of instructions selected per cycle.
	IssueWidth int

	// SquashWidth bounds how many instructions the squash engine removes
	// per cycle. Zero means unbounded within the cycle.
	SquashWidth int

	// NumPhysIntRegs and NumPhysFloatRegs size the flat physical register
	// space: integer registers first, float registers above them.
	NumPhysIntRegs   int
	NumPhysFloatRegs int

	// CommitToIEWDelay is the commit signal's time buffer delay in cycles.
	CommitToIEWDelay int

	// Policy is the SMT entry sharing policy; Threshold is the per-thread
	// cap used by the threshold policy.
	Policy    Policy
	Threshold int
}

// DefaultParams returns a single-thread configuration modeled on a mid-size
// out-of-order core.
func DefaultParams() Params {
	return Params{
		NumThreads:       1,
		NumEntries:       64,
		IssueWidth:       8,
		SquashWidth:      0,
		NumPhysIntRegs:   128,
		NumPhysFloatRegs: 128,
		CommitToIEWDelay: 1,
		Policy:           Dynamic,
		Threshold:        32,
	}
}

// Validate checks parameter sanity.
func (p Params) Validate() error {
	if p.NumThreads < 1 || p.NumThreads > MaxThreads {
		return fmt.Errorf("num threads %d outside [1, %d]", p.NumThreads, MaxThreads)
	}
	if p.NumEntries < 1 {
		return fmt.Errorf("num entries must be >= 1")
	}
	if p.IssueWidth < 1 {
		return fmt.Errorf("issue width must be >= 1")
	}
	if p.SquashWidth < 0 {
		return fmt.Errorf("squash width must be >= 0")
	}
	if p.NumPhysIntRegs < 1 || p.NumPhysFloatRegs < 0 {
		return fmt.Errorf("physical register counts invalid")
	}
	if p.CommitToIEWDelay < 0 {
		return fmt.Errorf("commit-to-IEW delay must be >= 0")
	}
	if p.Policy == Threshold && p.Threshold < 1 {
		return fmt.Errorf("threshold policy needs a threshold >= 1")
	}
	return nil
}

// nonSpecItem keys the non-speculative map by sequence number.
type nonSpecItem struct {
	sn   insts.SeqNum
	inst *insts.DynInst
}

func (i nonSpecItem) Less(than btree.Item) bool {
	return i.sn < than.(nonSpecItem).sn
}

// Queue is the instruction queue of one core.
type Queue struct {
	name   string
	params Params

	engine sim.Engine
	freq   sim.Freq

	fuPool      *fu.Pool
	memDepUnits []*memdep.Unit

	issueToExecute *timebuf.TimeBuffer[IssueBundle]
	fromCommit     timebuf.Wire[CommitSignal]
	haveFromCommit bool

	// instList holds every in-flight instruction per thread in dispatch
	// order; the tail is the youngest.
	instList []*list.List

	readyInsts  [insts.NumOpClasses]*readyQueue
	listOrder   *list.List
	queueOnList [insts.NumOpClasses]bool
	readyIt     [insts.NumOpClasses]*list.Element

	nonSpecInsts *btree.BTree

	dependGraph *dependGraph

	// scoreboard marks recently woken registers: a consumer dispatched
	// while the bit is set treats the source as already satisfied.
	scoreboard []bool

	numPhysRegs int

	// SMT accounting.
	numEntries    int
	freeEntries   int
	count         []int
	maxEntries    []int
	activeThreads []int

	// Squash engine state; the cursor persists across cycles when the
	// squash width bounds the walk.
	squashedSeqNum []insts.SeqNum
	squashCursor   []*list.Element
	squashPending  []bool

	cycle uint64
	stats *Statistics
}

// New creates an instruction queue. The function unit pool is shared with
// the execute stage; the queue only requests and releases units.
func New(
	params Params,
	engine sim.Engine,
	freq sim.Freq,
	fuPool *fu.Pool,
) (*Queue, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid IQ params: %w", err)
	}

	q := &Queue{
		name:         "IQ-" + xid.New().String(),
		params:       params,
		engine:       engine,
		freq:         freq,
		fuPool:       fuPool,
		numPhysRegs:  params.NumPhysIntRegs + params.NumPhysFloatRegs,
		numEntries:   params.NumEntries,
		freeEntries:  params.NumEntries,
		listOrder:    list.New(),
		nonSpecInsts: btree.New(2),
		stats:        newStatistics(params.NumThreads, params.IssueWidth),
	}

	q.dependGraph = newDependGraph(q.numPhysRegs)

	// Registers with no in-flight producer hold valid values, so the
	// scoreboard starts all-set; dispatching a producer clears its
	// destinations.
	q.scoreboard = make([]bool, q.numPhysRegs)
	for r := range q.scoreboard {
		q.scoreboard[r] = true
	}

	q.instList = make([]*list.List, params.NumThreads)
	q.count = make([]int, params.NumThreads)
	q.maxEntries = make([]int, params.NumThreads)
	q.squashedSeqNum = make([]insts.SeqNum, params.NumThreads)
	q.squashCursor = make([]*list.Element, params.NumThreads)
	q.squashPending = make([]bool, params.NumThreads)
	for tid := 0; tid < params.NumThreads; tid++ {
		q.instList[tid] = list.New()
		q.activeThreads = append(q.activeThreads, tid)
		q.memDepUnits = append(q.memDepUnits, memdep.NewUnit(tid, q))
	}

	for c := range q.readyInsts {
		q.readyInsts[c] = &readyQueue{}
	}

	q.ResetEntries()

	return q, nil
}

// Name returns the queue instance name.
func (q *Queue) Name() string { return q.name }

// MemDepUnit returns the memory dependence unit owned for the thread.
func (q *Queue) MemDepUnit(tid int) *memdep.Unit { return q.memDepUnits[tid] }

// SetIssueToExecuteQueue connects the bundle buffer toward execute.
func (q *Queue) SetIssueToExecuteQueue(tb *timebuf.TimeBuffer[IssueBundle]) {
	q.issueToExecute = tb
}

// SetTimeBuffer connects the backwards time buffer from commit. The queue
// reads the slot written CommitToIEWDelay cycles ago.
func (q *Queue) SetTimeBuffer(tb *timebuf.TimeBuffer[CommitSignal]) {
	q.fromCommit = tb.Wire(-q.params.CommitToIEWDelay)
	q.haveFromCommit = true
}

// SetActiveThreads replaces the active thread set and recomputes the
// per-thread entry caps.
func (q *Queue) SetActiveThreads(tids []int) {
	q.activeThreads = append([]int(nil), tids...)
	q.ResetEntries()
}

// EntryAmount returns the per-thread entry share for a partitioned queue
// with the given number of active threads.
func (q *Queue) EntryAmount(numThreads int) int {
	if numThreads == 0 {
		return 0
	}
	return q.numEntries / numThreads
}

// ResetEntries recomputes the per-thread entry caps for the current policy
// and active thread set.
func (q *Queue) ResetEntries() {
	active := len(q.activeThreads)
	for _, tid := range q.activeThreads {
		switch q.params.Policy {
		case Dynamic:
			q.maxEntries[tid] = q.numEntries
		case Partitioned:
			q.maxEntries[tid] = q.EntryAmount(active)
		case Threshold:
			q.maxEntries[tid] = q.params.Threshold
		}
	}
}

// NumFreeEntries returns the total free entry count.
func (q *Queue) NumFreeEntries() int { return q.freeEntries }

// NumFreeEntriesForThread returns the entries still available to a thread
// under its cap.
func (q *Queue) NumFreeEntriesForThread(tid int) int {
	return q.maxEntries[tid] - q.count[tid]
}

// IsFull reports whether the queue has no free entries at all.
func (q *Queue) IsFull() bool { return q.freeEntries == 0 }

// IsFullForThread reports whether the thread may not insert, under the SMT
// sharing policy.
func (q *Queue) IsFullForThread(tid int) bool {
	switch q.params.Policy {
	case Dynamic:
		return q.freeEntries == 0
	case Partitioned:
		return q.count[tid] >= q.maxEntries[tid]
	case Threshold:
		return q.count[tid] >= q.maxEntries[tid] || q.freeEntries == 0
	}
	return q.freeEntries == 0
}

// Count returns the entries used by a thread.
func (q *Queue) Count(tid int) int { return q.count[tid] }

// HasReadyInsts reports whether any ready queue is non-empty.
func (q *Queue) HasReadyInsts() bool { return q.listOrder.Len() != 0 }

// Stats returns the queue's statistics.
func (q *Queue) Stats() *Statistics { return q.stats }

// FUBusyRate returns denied FU requests per issued instruction.
func (q *Queue) FUBusyRate() float64 {
	if q.stats.InstsIssued == 0 {
		return 0
	}
	denied := uint64(0)
	poolStats := q.fuPool.Stats()
	for _, d := range poolStats.Denied {
		denied += d
	}
	return float64(denied) / float64(q.stats.InstsIssued)
}

// Cycle returns the number of ticks processed so far.
func (q *Queue) Cycle() uint64 { return q.cycle }

//////////////////////////////////////
// Admission
//////////////////////////////////////

// occupyEntry performs the SMT bookkeeping for one accepted instruction.
// Inserting into a full queue is a dispatch-stage bug.
func (q *Queue) occupyEntry(inst *insts.DynInst) {
	tid := inst.ThreadID
	if q.IsFullForThread(tid) {
		panic(fmt.Sprintf("%s: insert sn:%d into full queue (tid %d)",
			q.name, inst.SeqNum, tid))
	}
	q.freeEntries--
	q.count[tid]++
	q.instList[tid].PushBack(inst)
	inst.DispatchCycle = q.cycle
}

// Insert adds a newly dispatched instruction: it is registered as a consumer
// of each source register, published as the producer of its destinations,
// and queued for selection if its sources are already satisfied.
func (q *Queue) Insert(inst *insts.DynInst) {
	q.occupyEntry(inst)
	q.stats.InstsAdded++

	q.createDependency(inst)
	q.addToDependents(inst)

	if inst.IsMemRef() {
		q.memDepUnits[inst.ThreadID].Insert(inst)
	}

	q.addIfReady(inst)
}

// InsertNonSpec adds an instruction that must wait for commit's release
// before issuing: serializing ops and stores executed at commit. The
// dependency bookkeeping is the same as Insert, but the instruction lands in
// the non-speculative map instead of a ready queue.
func (q *Queue) InsertNonSpec(inst *insts.DynInst) {
	q.occupyEntry(inst)
	q.stats.InstsAdded++
	q.stats.NonSpecInstsAdded++

	inst.SetNonSpeculative(true)
	q.nonSpecInsts.ReplaceOrInsert(nonSpecItem{sn: inst.SeqNum, inst: inst})

	q.createDependency(inst)
	q.addToDependents(inst)

	if inst.MemBarrier() {
		q.memDepUnits[inst.ThreadID].InsertBarrier(inst)
	} else if inst.IsMemRef() {
		q.memDepUnits[inst.ThreadID].Insert(inst)
	}
}

// InsertBarrier adds a memory or write barrier. The memory dependence unit
// records its sequence number so younger loads and stores order behind it;
// the queue itself holds it as non-speculative.
func (q *Queue) InsertBarrier(inst *insts.DynInst) {
	inst.SetMemBarrier()
	q.InsertNonSpec(inst)
}

// AdvanceTail accounts for an instruction that occupies a window slot but
// never schedules, e.g. a no-op consumed at rename. Only the SMT counters
// and the window are touched.
func (q *Queue) AdvanceTail(inst *insts.DynInst) {
	q.occupyEntry(inst)
	inst.SetCanIssue(false)
}

//////////////////////////////////////
// Dependency graph
//////////////////////////////////////

// createDependency registers the instruction as a consumer of each source
// register. Sources whose scoreboard bit is set are satisfied immediately;
// the rest wait in the dependency graph.
func (q *Queue) createDependency(inst *insts.DynInst) {
	for idx, reg := range inst.SrcRegs {
		if int(reg) >= q.numPhysRegs {
			panic(fmt.Sprintf("%s: sn:%d source reg %d outside %d phys regs",
				q.name, inst.SeqNum, reg, q.numPhysRegs))
		}
		if inst.SrcReady(idx) {
			// Rename already saw the value.
			continue
		}
		if q.scoreboard[reg] {
			inst.MarkSrcReady(idx)
		} else {
			q.dependGraph.insert(reg, inst)
		}
	}
	inst.SetCanIssue(inst.AllSrcsReady())
}

// addToDependents publishes the instruction as the producer of each
// destination register by clearing the register's recently-woken bit. Any
// waiter of the prior producer was woken at that producer's completion; the
// rename discipline guarantees no stale consumers remain.
func (q *Queue) addToDependents(inst *insts.DynInst) {
	for _, reg := range inst.DestRegs {
		if int(reg) >= q.numPhysRegs {
			panic(fmt.Sprintf("%s: sn:%d dest reg %d outside %d phys regs",
				q.name, inst.SeqNum, reg, q.numPhysRegs))
		}
		q.scoreboard[reg] = false
	}
}

// WakeDependents marks the completed instruction's destination registers
// recently woken and promotes every consumer whose last outstanding source
// this was. It returns the number of dependents woken.
func (q *Queue) WakeDependents(completed *insts.DynInst) int {
	woken := 0
	for _, reg := range completed.DestRegs {
		q.scoreboard[reg] = true
		woken += q.dependGraph.drain(reg, func(consumer *insts.DynInst) {
			consumer.MarkSrcsReadyForReg(reg)
			if consumer.AllSrcsReady() && !consumer.CanIssue() {
				consumer.SetCanIssue(true)
				q.addIfReady(consumer)
			}
		})
	}
	return woken
}

// addIfReady routes a register-ready instruction toward selection: memory
// references go to their memory dependence unit, everything else enters its
// op class ready queue.
func (q *Queue) addIfReady(inst *insts.DynInst) {
	if !inst.CanIssue() || inst.Issued() || inst.NonSpeculative() || inst.Squashed() {
		return
	}

	if inst.IsMemRef() {
		q.memDepUnits[inst.ThreadID].RegsReady(inst)
		return
	}

	q.pushReady(inst)
}

//////////////////////////////////////
// Selection
//////////////////////////////////////

// Tick processes one cycle: commit-driven signals first (squash resumption,
// non-speculative releases, commits), then selection. Function unit
// completion events for this cycle have already fired, because the caller's
// tick event is secondary on the event queue.
func (q *Queue) Tick() {
	q.readCommitSignals()
	q.ScheduleReadyInsts()
	q.cycle++
	q.stats.Cycles++
}

// readCommitSignals consumes the backwards wire from commit.
func (q *Queue) readCommitSignals() {
	if !q.haveFromCommit {
		return
	}
	signal := q.fromCommit.Ref()

	for tid := 0; tid < q.params.NumThreads; tid++ {
		if signal.Squash[tid] {
			q.squashFrom(tid, signal.SquashedSeqNum[tid])
		} else if q.squashPending[tid] {
			q.doSquash(tid)
		}
	}

	for tid := 0; tid < q.params.NumThreads; tid++ {
		if sn := signal.NonSpecSeqNum[tid]; sn != 0 {
			q.ScheduleNonSpec(sn)
		}
		if sn := signal.CommitSeqNum[tid]; sn != 0 {
			q.Commit(sn, tid)
		}
	}
}

// ScheduleReadyInsts selects up to the issue width among ready
// instructions, oldest first across op classes, constrained by function
// unit availability. After every successful selection the walk restarts
// from the head of the age-order list so global age order holds even when
// one class could consume several units.
func (q *Queue) ScheduleReadyInsts() {
	issued := 0

	for issued < q.params.IssueWidth {
		dispatched := false

		for elem := q.listOrder.Front(); elem != nil; {
			next := elem.Next()
			entry := elem.Value.(*orderEntry)
			class := entry.class
			rq := q.readyInsts[class]

			// Squashed instructions are left in the queues and filtered
			// here; the filtered count is an architectural statistic.
			// Skimming can reposition or drop the entry, so the walk
			// restarts to keep strict age order.
			if q.skimStale(class) {
				elem = q.listOrder.Front()
				continue
			}
			if rq.Len() == 0 {
				elem = next
				continue
			}

			fuIdx := q.fuPool.GetFU(class)
			if fuIdx == fu.NoFreeFU {
				elem = next
				continue
			}

			inst := q.popReady(class)
			q.issueInst(inst, fuIdx)
			issued++
			dispatched = true
			break
		}

		if !dispatched {
			break
		}
	}

	q.stats.IssuedDist[issued]++
}

// issueInst sends one instruction to its function unit. Zero-latency
// operations complete in the same step, enabling back-to-back wakeup;
// otherwise a completion event fires after the unit latency. Pipelined
// units are released immediately so they can accept an op next cycle.
func (q *Queue) issueInst(inst *insts.DynInst, fuIdx int) {
	class := inst.Class
	tid := inst.ThreadID

	inst.SetIssued()
	inst.IssueCycle = q.cycle
	q.stats.InstsIssued++
	q.stats.IssuedByClass[class]++
	q.stats.IssuedByThreadClass[tid][class]++
	delay := float64(q.cycle - inst.DispatchCycle)
	q.stats.IssueDelay.Add(delay)
	q.stats.QueueResidency[class].Add(delay)

	if inst.IsMemRef() {
		q.memDepUnits[tid].Issue(inst)
	}

	latency := q.fuPool.Latency(class)
	if latency == 0 {
		q.fuPool.FreeUnit(fuIdx)
		q.writebackInst(inst)
		return
	}

	if q.fuPool.IsPipelined(class) {
		q.fuPool.FreeUnit(fuIdx)
		fuIdx = fu.NoFreeFU
	}

	now := q.engine.CurrentTime()
	evt := NewFUCompletionEvent(
		q.freq.NCyclesLater(int(latency), now), q, inst, fuIdx)
	q.engine.Schedule(evt)
}

// writebackInst puts a finished instruction into the current cycle's
// issue-to-execute bundle and wakes its dependents.
func (q *Queue) writebackInst(inst *insts.DynInst) {
	inst.SetExecuted()
	if q.issueToExecute != nil {
		q.issueToExecute.At(0).Add(inst)
	}
	q.WakeDependents(inst)
}

// Handle processes scheduled events; the queue handles its own function
// unit completions.
func (q *Queue) Handle(e sim.Event) error {
	switch evt := e.(type) {
	case *FUCompletionEvent:
		q.processFUCompletion(evt.inst, evt.fuIdx)
	default:
		return fmt.Errorf("%s: cannot handle event %T", q.name, e)
	}
	return nil
}

// processFUCompletion finishes an instruction whose execution latency
// elapsed. A completion whose instruction was squashed in flight only
// returns the function unit.
func (q *Queue) processFUCompletion(inst *insts.DynInst, fuIdx int) {
	if fuIdx != fu.NoFreeFU {
		q.fuPool.FreeUnit(fuIdx)
	}
	if inst.Squashed() {
		return
	}
	q.writebackInst(inst)
}

//////////////////////////////////////
// Memory instructions
//////////////////////////////////////

// AddReadyMemInst enqueues a memory instruction that is both register-ready
// and memory-ready. It is the callback the memory dependence units fire.
func (q *Queue) AddReadyMemInst(inst *insts.DynInst) {
	if inst.Squashed() || inst.Issued() || !inst.CanIssue() {
		return
	}
	q.pushReady(inst)
}

// RescheduleMemInst pulls a memory instruction back for replay, e.g. after
// the load/store queue deferred it. Clearing the issue eligibility makes
// any entry still sitting in a ready queue stale; stale entries are
// filtered at selection time. Rescheduling twice is a no-op.
func (q *Queue) RescheduleMemInst(inst *insts.DynInst) {
	inst.SetCanIssue(false)
	inst.ClearIssued()
	q.memDepUnits[inst.ThreadID].Reschedule(inst)
}

// ReplayMemInst re-admits a rescheduled memory instruction; it returns to a
// ready queue with the same placement semantics as its original wakeup.
func (q *Queue) ReplayMemInst(inst *insts.DynInst) {
	inst.SetCanIssue(inst.AllSrcsReady())
	q.memDepUnits[inst.ThreadID].Replay(inst)
}

// CompleteMemInst tells the memory dependence unit a memory operation (or
// barrier) finished, releasing the ops ordered behind it.
func (q *Queue) CompleteMemInst(inst *insts.DynInst) {
	q.memDepUnits[inst.ThreadID].Completed(inst)
}

// Violation forwards a store-load ordering violation to the memory
// dependence unit for predictor training. Queue state is untouched;
// recovery arrives later as a commit-driven squash.
func (q *Queue) Violation(store, faultingLoad *insts.DynInst) {
	q.memDepUnits[faultingLoad.ThreadID].Violation(store, faultingLoad)
}

//////////////////////////////////////
// Non-speculative instructions
//////////////////////////////////////

// ScheduleNonSpec releases the non-speculative instruction at the given
// sequence number. An unknown sequence number is a commit bug.
func (q *Queue) ScheduleNonSpec(sn insts.SeqNum) {
	item := q.nonSpecInsts.Get(nonSpecItem{sn: sn})
	if item == nil {
		panic(fmt.Sprintf("%s: non-spec release of unknown sn:%d", q.name, sn))
	}
	inst := item.(nonSpecItem).inst
	q.nonSpecInsts.Delete(nonSpecItem{sn: sn})

	inst.SetNonSpeculative(false)
	q.addIfReady(inst)
}

//////////////////////////////////////
// Commit and squash
//////////////////////////////////////

// Commit retires every instruction of the thread with sequence number at or
// below sn, releasing their queue slots. Completed instructions already
// woke their consumers and left the dependency graph, so no graph cleanup
// is needed here.
func (q *Queue) Commit(sn insts.SeqNum, tid int) {
	for e := q.instList[tid].Front(); e != nil; {
		inst := e.Value.(*insts.DynInst)
		if inst.SeqNum > sn {
			break
		}
		next := e.Next()
		q.instList[tid].Remove(e)
		q.freeEntries++
		q.count[tid]--
		e = next
	}
}

// Squash reads the squash sequence number from the commit wire and starts
// rolling the thread back.
func (q *Queue) Squash(tid int) {
	if !q.haveFromCommit {
		panic(fmt.Sprintf("%s: Squash with no commit time buffer", q.name))
	}
	signal := q.fromCommit.Ref()
	q.squashFrom(tid, signal.SquashedSeqNum[tid])
}

// squashFrom begins a squash of every instruction of the thread strictly
// younger than sn.
func (q *Queue) squashFrom(tid int, sn insts.SeqNum) {
	q.squashedSeqNum[tid] = sn
	q.squashCursor[tid] = q.instList[tid].Back()
	q.squashPending[tid] = true
	q.memDepUnits[tid].Squash(sn)
	q.doSquash(tid)
}

// doSquash walks the thread's window from the youngest instruction toward
// the squash point, dropping instructions and their dependency edges. When
// a squash width is configured the walk stops after that many instructions
// and resumes next cycle from the persisted cursor.
func (q *Queue) doSquash(tid int) {
	processed := 0
	e := q.squashCursor[tid]

	for e != nil {
		inst := e.Value.(*insts.DynInst)
		if inst.SeqNum <= q.squashedSeqNum[tid] {
			break
		}
		if q.params.SquashWidth > 0 && processed >= q.params.SquashWidth {
			q.squashCursor[tid] = e
			return
		}

		if inst.NonSpeculative() {
			if q.nonSpecInsts.Delete(nonSpecItem{sn: inst.SeqNum}) != nil {
				q.stats.SquashedNonSpecRemoved++
			}
		}

		if !inst.Issued() {
			for idx, reg := range inst.SrcRegs {
				if !inst.SrcReady(idx) {
					q.dependGraph.remove(reg, inst)
				}
			}
			q.stats.SquashedOperandsExamined += uint64(inst.NumSrcRegs())
		}

		// Ready queue entries are removed lazily: the instruction is only
		// marked here and filtered at selection time.
		inst.SetSquashed()

		prev := e.Prev()
		q.instList[tid].Remove(e)
		q.freeEntries++
		q.count[tid]--
		q.stats.SquashedInstsExamined++
		processed++
		e = prev
	}

	q.squashCursor[tid] = nil
	q.squashPending[tid] = false
}

//////////////////////////////////////
// Debug
//////////////////////////////////////

// CountInsts walks the windows and returns the number of held instructions.
// Debug only: linear in the window size.
func (q *Queue) CountInsts() int {
	total := 0
	for tid := 0; tid < q.params.NumThreads; tid++ {
		total += q.instList[tid].Len()
	}
	return total
}

// DumpDependGraph formats the dependency graph for debug output.
func (q *Queue) DumpDependGraph() string {
	return q.dependGraph.dump()
}
