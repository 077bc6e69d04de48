package o3

import "github.com/sarchlab/akita/v4/sim"

// tickEvent drives one core cycle. It reports itself secondary so that all
// primary events at the same timestamp, in particular the instruction
// queue's function unit completions, are handled before the cycle's
// wakeup/select pass.
type tickEvent struct {
	*sim.EventBase
}

func newTickEvent(time sim.VTimeInSec, handler sim.Handler) tickEvent {
	return tickEvent{EventBase: sim.NewEventBase(time, handler)}
}

// IsSecondary marks the tick to run after primary events of the same cycle.
func (e tickEvent) IsSecondary() bool { return true }
