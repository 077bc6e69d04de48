package iq

import (
	"fmt"

	"github.com/sarchlab/o3sim/insts"
)

// depEntry is one consumer waiting on a physical register. Entries form a
// doubly linked chain off a per-register sentinel: the head-to-tail drain at
// wakeup is O(1) per entry, and unlinking a located entry at squash is O(1).
// Locating the entry is not: remove walks the register's chain, so squash
// cost grows with the chain length.
type depEntry struct {
	inst *insts.DynInst
	prev *depEntry
	next *depEntry
}

// dependGraph maps each physical register to the chain of instructions
// waiting for its value. The producer is implicit: it is whichever
// instruction cleared the register's scoreboard bit at dispatch.
type dependGraph struct {
	heads []depEntry
	tails []*depEntry

	// allocated tracks live entries, a debug aid mirroring countInsts.
	allocated int
}

func newDependGraph(numRegs int) *dependGraph {
	g := &dependGraph{
		heads: make([]depEntry, numRegs),
		tails: make([]*depEntry, numRegs),
	}
	for r := range g.heads {
		g.tails[r] = &g.heads[r]
	}
	return g
}

// insert appends a consumer at the tail of the register's chain, preserving
// dispatch order.
func (g *dependGraph) insert(reg insts.PhysReg, inst *insts.DynInst) {
	e := &depEntry{inst: inst, prev: g.tails[reg]}
	g.tails[reg].next = e
	g.tails[reg] = e
	g.allocated++
}

// remove unlinks the first chain entry holding inst. It returns false when
// the instruction has no entry on this register.
func (g *dependGraph) remove(reg insts.PhysReg, inst *insts.DynInst) bool {
	for e := g.heads[reg].next; e != nil; e = e.next {
		if e.inst != inst {
			continue
		}
		e.prev.next = e.next
		if e.next != nil {
			e.next.prev = e.prev
		} else {
			g.tails[reg] = e.prev
		}
		g.allocated--
		return true
	}
	return false
}

// drain removes every consumer of the register and passes each to wake, in
// dispatch order.
func (g *dependGraph) drain(reg insts.PhysReg, wake func(*insts.DynInst)) int {
	woken := 0
	for e := g.heads[reg].next; e != nil; {
		next := e.next
		wake(e.inst)
		woken++
		g.allocated--
		e = next
	}
	g.heads[reg].next = nil
	g.tails[reg] = &g.heads[reg]
	return woken
}

// empty reports whether the register has no waiting consumers.
func (g *dependGraph) empty(reg insts.PhysReg) bool {
	return g.heads[reg].next == nil
}

// dump formats the graph for debug output.
func (g *dependGraph) dump() string {
	s := ""
	for r := range g.heads {
		if g.heads[r].next == nil {
			continue
		}
		s += fmt.Sprintf("r%d:", r)
		for e := g.heads[r].next; e != nil; e = e.next {
			s += fmt.Sprintf(" sn:%d", e.inst.SeqNum)
		}
		s += "\n"
	}
	return s
}
