package iq

import "github.com/sarchlab/o3sim/insts"

// MaxThreads bounds the number of hardware thread contexts a queue supports.
// Per-thread signal arrays are sized by it so time buffer slots have a fixed
// shape.
const MaxThreads = 8

// CommitSignal is the backwards signal commit writes toward the queue each
// cycle. A zero CommitSeqNum or NonSpecSeqNum means "no signal" for that
// field; a squash is signalled by its Squash flag, whatever SquashedSeqNum
// holds.
type CommitSignal struct {
	// Squash requests a rollback for the thread; SquashedSeqNum carries the
	// youngest sequence number to keep.
	Squash         [MaxThreads]bool
	SquashedSeqNum [MaxThreads]insts.SeqNum

	// CommitSeqNum retires every instruction at or below it.
	CommitSeqNum [MaxThreads]insts.SeqNum

	// NonSpecSeqNum releases one non-speculative instruction for execution.
	NonSpecSeqNum [MaxThreads]insts.SeqNum
}

// Clear resets the signal to empty state.
func (s *CommitSignal) Clear() {
	*s = CommitSignal{}
}

// IssueBundle is the set of instructions handed to the execute stage in one
// cycle. Instructions enter the bundle when their function unit finishes,
// which for multi-cycle operations is several cycles after selection.
type IssueBundle struct {
	Insts []*insts.DynInst
}

// Add appends an instruction to the bundle.
func (b *IssueBundle) Add(inst *insts.DynInst) {
	b.Insts = append(b.Insts, inst)
}

// Size returns the number of instructions in the bundle.
func (b *IssueBundle) Size() int { return len(b.Insts) }

// Clear resets the bundle to empty state.
func (b *IssueBundle) Clear() {
	b.Insts = nil
}
