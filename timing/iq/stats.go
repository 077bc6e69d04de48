package iq

import (
	"gonum.org/v1/gonum/stat"

	"github.com/sarchlab/o3sim/insts"
)

// Distribution accumulates samples and summarizes them.
type Distribution struct {
	samples []float64
}

// Add records one sample.
func (d *Distribution) Add(v float64) {
	d.samples = append(d.samples, v)
}

// Count returns the number of samples.
func (d *Distribution) Count() int { return len(d.samples) }

// Mean returns the sample mean, or 0 with no samples.
func (d *Distribution) Mean() float64 {
	if len(d.samples) == 0 {
		return 0
	}
	return stat.Mean(d.samples, nil)
}

// StdDev returns the sample standard deviation, or 0 with fewer than two
// samples.
func (d *Distribution) StdDev() float64 {
	if len(d.samples) < 2 {
		return 0
	}
	return stat.StdDev(d.samples, nil)
}

// Statistics holds the queue's counters and distributions.
type Statistics struct {
	// Cycles counts Tick invocations.
	Cycles uint64

	// InstsAdded counts instructions inserted, NonSpecInstsAdded the subset
	// inserted through the non-speculative path.
	InstsAdded        uint64
	NonSpecInstsAdded uint64

	// InstsIssued counts instructions sent to function units; IssuedByClass
	// breaks the count down per op class, IssuedByThreadClass by thread and
	// class.
	InstsIssued         uint64
	IssuedByClass       [insts.NumOpClasses]uint64
	IssuedByThreadClass [][insts.NumOpClasses]uint64

	// SquashedInstsIssued counts squashed instructions filtered out of
	// ready queue tops at selection time (the lazy removal path).
	SquashedInstsIssued uint64

	// Squash engine counters.
	SquashedInstsExamined    uint64
	SquashedOperandsExamined uint64
	SquashedNonSpecRemoved   uint64

	// IssuedDist is a histogram of instructions issued per cycle,
	// indexed 0..issue width.
	IssuedDist []uint64

	// QueueResidency samples dispatch-to-issue cycles per op class;
	// IssueDelay aggregates the same across classes.
	QueueResidency [insts.NumOpClasses]Distribution
	IssueDelay     Distribution
}

func newStatistics(numThreads, issueWidth int) *Statistics {
	return &Statistics{
		IssuedByThreadClass: make([][insts.NumOpClasses]uint64, numThreads),
		IssuedDist:          make([]uint64, issueWidth+1),
	}
}

// IntInstsIssued returns the integer-class issue count.
func (s *Statistics) IntInstsIssued() uint64 {
	return s.IssuedByClass[insts.IntAlu] +
		s.IssuedByClass[insts.IntMult] +
		s.IssuedByClass[insts.IntDiv]
}

// FloatInstsIssued returns the floating-point-class issue count.
func (s *Statistics) FloatInstsIssued() uint64 {
	return s.IssuedByClass[insts.FloatAdd] +
		s.IssuedByClass[insts.FloatCmp] +
		s.IssuedByClass[insts.FloatCvt] +
		s.IssuedByClass[insts.FloatMult] +
		s.IssuedByClass[insts.FloatDiv]
}

// BranchInstsIssued returns the branch issue count.
func (s *Statistics) BranchInstsIssued() uint64 {
	return s.IssuedByClass[insts.Branch]
}

// MemInstsIssued returns the load/store issue count.
func (s *Statistics) MemInstsIssued() uint64 {
	return s.IssuedByClass[insts.MemRead] + s.IssuedByClass[insts.MemWrite]
}

// MiscInstsIssued returns the miscellaneous issue count.
func (s *Statistics) MiscInstsIssued() uint64 {
	return s.IssuedByClass[insts.Misc]
}

// IssueRate returns instructions issued per cycle.
func (s *Statistics) IssueRate() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.InstsIssued) / float64(s.Cycles)
}
