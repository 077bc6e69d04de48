package iq

import (
	"container/heap"
	"container/list"

	"github.com/sarchlab/o3sim/insts"
)

// readyQueue is a min-heap of register-ready instructions keyed by sequence
// number, so the oldest instruction of an op class is always at the top.
type readyQueue struct {
	insts []*insts.DynInst
}

func (q *readyQueue) Len() int { return len(q.insts) }

func (q *readyQueue) Less(i, j int) bool {
	return q.insts[i].SeqNum < q.insts[j].SeqNum
}

func (q *readyQueue) Swap(i, j int) {
	q.insts[i], q.insts[j] = q.insts[j], q.insts[i]
}

func (q *readyQueue) Push(x any) {
	q.insts = append(q.insts, x.(*insts.DynInst))
}

func (q *readyQueue) Pop() any {
	old := q.insts
	n := len(old)
	inst := old[n-1]
	old[n-1] = nil
	q.insts = old[:n-1]
	return inst
}

// top returns the oldest instruction without removing it.
func (q *readyQueue) top() *insts.DynInst { return q.insts[0] }

// orderEntry is one node of the age-order list: an op class together with
// the sequence number of its ready queue's oldest instruction.
type orderEntry struct {
	class     insts.OpClass
	oldestSeq insts.SeqNum
}

// pushReady places a register-ready instruction into its op class queue and
// keeps the age-order list consistent.
func (q *Queue) pushReady(inst *insts.DynInst) {
	class := inst.Class
	rq := q.readyInsts[class]
	heap.Push(rq, inst)

	if !q.queueOnList[class] {
		q.addToOrderList(class)
	} else if rq.top() == inst {
		// The queue has a new oldest instruction; move its entry toward
		// the head of the age-order list.
		q.repositionOrderEntry(class)
	}
}

// addToOrderList inserts the op class into the age-order list, sorted
// ascending by the class queue's oldest sequence number.
func (q *Queue) addToOrderList(class insts.OpClass) {
	entry := &orderEntry{
		class:     class,
		oldestSeq: q.readyInsts[class].top().SeqNum,
	}

	var elem *list.Element
	for e := q.listOrder.Front(); e != nil; e = e.Next() {
		if e.Value.(*orderEntry).oldestSeq > entry.oldestSeq {
			elem = q.listOrder.InsertBefore(entry, e)
			break
		}
	}
	if elem == nil {
		elem = q.listOrder.PushBack(entry)
	}

	q.queueOnList[class] = true
	q.readyIt[class] = elem
}

// removeFromOrderList drops the op class from the age-order list. Called
// when its ready queue empties.
func (q *Queue) removeFromOrderList(class insts.OpClass) {
	q.listOrder.Remove(q.readyIt[class])
	q.queueOnList[class] = false
	q.readyIt[class] = nil
}

// repositionOrderEntry re-sorts the op class entry after its queue's oldest
// instruction changed, in either direction.
func (q *Queue) repositionOrderEntry(class insts.OpClass) {
	q.removeFromOrderList(class)
	q.addToOrderList(class)
}

// moveToYoungerInst updates the op class entry after the previous oldest
// instruction was popped.
func (q *Queue) moveToYoungerInst(class insts.OpClass) {
	q.repositionOrderEntry(class)
}

// skimStale drops stale instructions from the top of a ready queue:
// squashed entries (counted, since the lazy removal is an architectural
// statistic), already-issued duplicates left behind by a replay, and
// rescheduled entries whose issue eligibility was revoked. It reports
// whether the age-order list changed.
func (q *Queue) skimStale(class insts.OpClass) bool {
	rq := q.readyInsts[class]
	changed := false
	for rq.Len() > 0 {
		top := rq.top()
		if top.Squashed() {
			q.stats.SquashedInstsIssued++
		} else if !top.Issued() && top.CanIssue() {
			break
		}
		heap.Pop(rq)
		changed = true
	}
	if !changed {
		return false
	}
	if rq.Len() == 0 {
		q.removeFromOrderList(class)
	} else {
		q.moveToYoungerInst(class)
	}
	return true
}

// popReady removes the oldest instruction of a class and updates the
// age-order list.
func (q *Queue) popReady(class insts.OpClass) *insts.DynInst {
	rq := q.readyInsts[class]
	inst := heap.Pop(rq).(*insts.DynInst)
	if rq.Len() == 0 {
		q.removeFromOrderList(class)
	} else {
		q.moveToYoungerInst(class)
	}
	return inst
}
