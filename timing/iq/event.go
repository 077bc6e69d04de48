package iq

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/o3sim/insts"
)

// FUCompletionEvent marks the end of an instruction's execution latency.
// When it fires, the queue writes the instruction into the issue-to-execute
// bundle, wakes its dependents, and returns the function unit.
type FUCompletionEvent struct {
	*sim.EventBase

	inst *insts.DynInst

	// fuIdx is the unit to release, or fu.NoFreeFU for pipelined units that
	// were released at issue time.
	fuIdx int
}

// NewFUCompletionEvent returns a newly constructed FUCompletionEvent.
func NewFUCompletionEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	inst *insts.DynInst,
	fuIdx int,
) *FUCompletionEvent {
	evt := new(FUCompletionEvent)
	evt.EventBase = sim.NewEventBase(time, handler)
	evt.inst = inst
	evt.fuIdx = fuIdx
	return evt
}
