// Package fu models the function unit pool shared by the instruction queue
// and the execute stage. The pool hands out units by op class, tracks which
// units are busy, and answers latency and pipelining queries.
package fu

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/sarchlab/o3sim/insts"
)

// NoFreeFU is returned by GetFU when every capable unit is busy. It is also
// the unit index carried by completion events for pipelined units, which are
// released at issue time rather than completion time.
const NoFreeFU = -1

type unit struct {
	capability [insts.NumOpClasses]bool
	busy       bool
}

// Statistics holds pool counters.
type Statistics struct {
	// Requests counts GetFU calls per op class.
	Requests [insts.NumOpClasses]uint64
	// Denied counts GetFU calls that found no free unit.
	Denied [insts.NumOpClasses]uint64
}

// Pool is the set of function units for one core.
type Pool struct {
	name   string
	config *Config
	units  []unit
	stats  Statistics
}

// NewPool builds a pool from the given configuration. The configuration must
// validate.
func NewPool(config *Config) (*Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid FU pool config: %w", err)
	}

	p := &Pool{
		name:   "FUPool-" + xid.New().String(),
		config: config.Clone(),
	}

	for class := insts.OpClass(0); class < insts.NumOpClasses; class++ {
		uc := p.config.forClass(class)
		for n := 0; n < uc.Count; n++ {
			var u unit
			u.capability[class] = true
			// Integer ALUs double as branch units when no dedicated
			// branch units exist.
			if class == insts.IntAlu && p.config.Branch.Count == 0 {
				u.capability[insts.Branch] = true
			}
			p.units = append(p.units, u)
		}
	}

	return p, nil
}

// Name returns the pool instance name.
func (p *Pool) Name() string { return p.name }

// Size returns the total number of units.
func (p *Pool) Size() int { return len(p.units) }

// GetFU returns the index of a free unit capable of the op class and marks
// it busy, or NoFreeFU if all capable units are busy.
func (p *Pool) GetFU(class insts.OpClass) int {
	p.stats.Requests[class]++
	for idx := range p.units {
		u := &p.units[idx]
		if u.capability[class] && !u.busy {
			u.busy = true
			return idx
		}
	}
	p.stats.Denied[class]++
	return NoFreeFU
}

// FreeUnit returns a unit to the free set. Freeing a unit that is not busy
// is a caller bug.
func (p *Pool) FreeUnit(idx int) {
	if idx < 0 || idx >= len(p.units) {
		panic(fmt.Sprintf("%s: FreeUnit index %d out of range", p.name, idx))
	}
	if !p.units[idx].busy {
		panic(fmt.Sprintf("%s: FreeUnit(%d) called on a free unit", p.name, idx))
	}
	p.units[idx].busy = false
}

// Latency returns the execution latency for the op class. Branches riding on
// integer ALUs use the branch latency setting.
func (p *Pool) Latency(class insts.OpClass) uint64 {
	return p.config.forClass(class).Latency
}

// IsPipelined reports whether units for the op class accept a new operation
// every cycle.
func (p *Pool) IsPipelined(class insts.OpClass) bool {
	uc := p.config.forClass(class)
	if class == insts.Branch && uc.Count == 0 {
		return p.config.IntAlu.Pipelined
	}
	return uc.Pipelined
}

// NumFree returns how many units capable of the op class are currently free.
func (p *Pool) NumFree(class insts.OpClass) int {
	free := 0
	for idx := range p.units {
		if p.units[idx].capability[class] && !p.units[idx].busy {
			free++
		}
	}
	return free
}

// Stats returns pool counters.
func (p *Pool) Stats() Statistics { return p.stats }
