// Package memdep tracks memory ordering for in-flight loads and stores.
// The instruction queue defers memory instructions to a per-thread Unit; the
// Unit calls back once an instruction is both register-ready and safe with
// respect to older memory operations.
//
// The ordering model is conservative: a load waits for every older store and
// barrier from its thread to complete, and a store or barrier waits until it
// is the oldest outstanding memory operation. Ordering violations reported
// by the load/store queue train a counter but never squash from here; the
// recovery decision belongs to commit.
package memdep

import (
	"fmt"

	"github.com/google/btree"
	"github.com/rs/xid"
	"github.com/sarchlab/o3sim/insts"
)

// Notifier receives instructions that became memory-ready. The instruction
// queue implements it with AddReadyMemInst.
type Notifier interface {
	AddReadyMemInst(inst *insts.DynInst)
}

type entry struct {
	inst        *insts.DynInst
	regsReady   bool
	notified    bool
	rescheduled bool
	conflicted  bool
}

func (e *entry) Less(than btree.Item) bool {
	return e.inst.SeqNum < than.(*entry).inst.SeqNum
}

// Statistics holds unit counters.
type Statistics struct {
	Inserted   uint64
	Barriers   uint64
	Conflicts  uint64 // instructions that had to wait on an older memory op
	Violations uint64
	Replays    uint64
}

// Unit tracks the outstanding memory operations of one hardware thread.
type Unit struct {
	name     string
	threadID int
	notifier Notifier

	// outstanding holds every inserted memory op and barrier, ordered by
	// sequence number, until it completes or is squashed.
	outstanding *btree.BTree

	stats Statistics
}

// NewUnit creates a memory dependence unit for one thread.
func NewUnit(threadID int, notifier Notifier) *Unit {
	return &Unit{
		name:        fmt.Sprintf("MemDepUnit%d-%s", threadID, xid.New().String()),
		threadID:    threadID,
		notifier:    notifier,
		outstanding: btree.New(2),
	}
}

// Name returns the unit instance name.
func (u *Unit) Name() string { return u.name }

// Insert registers a newly dispatched load or store.
func (u *Unit) Insert(inst *insts.DynInst) {
	u.stats.Inserted++
	u.outstanding.ReplaceOrInsert(&entry{inst: inst})
}

// InsertBarrier registers a memory or write barrier. Younger memory ops wait
// for it the same way they wait for an older store.
func (u *Unit) InsertBarrier(inst *insts.DynInst) {
	u.stats.Barriers++
	u.outstanding.ReplaceOrInsert(&entry{inst: inst})
}

// RegsReady records that the register side of the instruction is satisfied.
// If the instruction is also memory-ready, the notifier fires.
func (u *Unit) RegsReady(inst *insts.DynInst) {
	e := u.find(inst)
	if e == nil {
		panic(fmt.Sprintf("%s: RegsReady for untracked sn:%d", u.name, inst.SeqNum))
	}
	e.regsReady = true
	u.wakeReady()
}

// Issue records that the instruction left the queue for a function unit.
// The op keeps blocking younger memory ops until Completed.
func (u *Unit) Issue(inst *insts.DynInst) {
	// Ordering state does not change at issue time; the entry stays until
	// completion so younger loads cannot slip past an in-flight store.
}

// Completed removes a finished memory operation and wakes any ops that were
// ordered behind it.
func (u *Unit) Completed(inst *insts.DynInst) {
	u.outstanding.Delete(&entry{inst: inst})
	u.wakeReady()
}

// Reschedule pulls an instruction back from the ready path, e.g. after the
// load/store queue deferred it. Calling Reschedule on an already rescheduled
// instruction is a no-op.
func (u *Unit) Reschedule(inst *insts.DynInst) {
	e := u.find(inst)
	if e == nil || e.rescheduled {
		return
	}
	e.rescheduled = true
	e.notified = false
}

// Replay re-admits a rescheduled instruction. If it is still register- and
// memory-ready it is handed back to the notifier with the same placement
// semantics as its first wakeup.
func (u *Unit) Replay(inst *insts.DynInst) {
	e := u.find(inst)
	if e == nil || !e.rescheduled {
		return
	}
	e.rescheduled = false
	u.stats.Replays++
	u.wakeReady()
}

// Violation records a store-load ordering violation for predictor training.
// Recovery is not initiated here.
func (u *Unit) Violation(store, faultingLoad *insts.DynInst) {
	u.stats.Violations++
}

// Squash drops every tracked instruction younger than squashedSeqNum.
func (u *Unit) Squash(squashedSeqNum insts.SeqNum) {
	var doomed []*entry
	u.outstanding.Descend(func(item btree.Item) bool {
		e := item.(*entry)
		if e.inst.SeqNum <= squashedSeqNum {
			return false
		}
		doomed = append(doomed, e)
		return true
	})
	for _, e := range doomed {
		u.outstanding.Delete(e)
	}
	u.wakeReady()
}

// Stats returns unit counters.
func (u *Unit) Stats() Statistics { return u.stats }

func (u *Unit) find(inst *insts.DynInst) *entry {
	item := u.outstanding.Get(&entry{inst: inst})
	if item == nil {
		return nil
	}
	return item.(*entry)
}

// wakeReady walks the outstanding ops oldest-first and notifies every entry
// that is register-ready and no longer ordered behind an older op.
func (u *Unit) wakeReady() {
	blocked := false
	var ready []*entry

	u.outstanding.Ascend(func(item btree.Item) bool {
		e := item.(*entry)

		memReady := false
		switch {
		case e.inst.IsLoad():
			// Loads wait only on older stores and barriers.
			memReady = !blocked
		default:
			// Stores and barriers wait until they are the oldest
			// outstanding memory op of the thread.
			memReady = u.outstanding.Min() == item
		}

		if e.inst.IsStore() || e.inst.MemBarrier() {
			blocked = true
		}

		if memReady && e.regsReady && !e.notified && !e.rescheduled {
			e.notified = true
			ready = append(ready, e)
		} else if !memReady && e.regsReady && !e.notified && !e.conflicted {
			e.conflicted = true
			u.stats.Conflicts++
		}
		return true
	})

	for _, e := range ready {
		u.notifier.AddReadyMemInst(e.inst)
	}
}
