// Package insts provides the dynamic instruction model for the out-of-order
// core. Instructions handled here are already decoded and renamed: they carry
// physical register indices, a global sequence number, and the status flags
// the scheduling hardware tracks as the instruction moves through the window.
package insts

import "fmt"

// SeqNum is the global sequence number assigned at dispatch. Sequence numbers
// increase monotonically, so a smaller number always means an older
// instruction.
type SeqNum uint64

// PhysReg is an index into the flat physical register file. Integer registers
// occupy [0, NumPhysIntRegs) and floating point registers occupy
// [NumPhysIntRegs, NumPhysRegs). Both the rename map and the instruction
// queue rely on this layout for register-index math.
type PhysReg int

// OpClass is the coarse category of an instruction. It determines which kind
// of function unit can execute the instruction and which ready queue it
// waits in.
type OpClass int

// Op classes. MemRead and MemWrite are the only classes with an additional
// memory-ordering gate beyond register readiness.
const (
	IntAlu OpClass = iota
	IntMult
	IntDiv
	FloatAdd
	FloatCmp
	FloatCvt
	FloatMult
	FloatDiv
	MemRead
	MemWrite
	Branch
	Misc

	// NumOpClasses closes the enum; arrays indexed by OpClass use this size.
	NumOpClasses
)

var opClassNames = [NumOpClasses]string{
	"IntAlu", "IntMult", "IntDiv",
	"FloatAdd", "FloatCmp", "FloatCvt", "FloatMult", "FloatDiv",
	"MemRead", "MemWrite",
	"Branch", "Misc",
}

// String returns the op class name.
func (c OpClass) String() string {
	if c < 0 || c >= NumOpClasses {
		return fmt.Sprintf("OpClass(%d)", int(c))
	}
	return opClassNames[c]
}

// IsMemRef returns true for loads and stores.
func (c OpClass) IsMemRef() bool {
	return c == MemRead || c == MemWrite
}

// IsInt returns true for the integer execution classes.
func (c OpClass) IsInt() bool {
	return c == IntAlu || c == IntMult || c == IntDiv
}

// IsFloat returns true for the floating point execution classes.
func (c OpClass) IsFloat() bool {
	switch c {
	case FloatAdd, FloatCmp, FloatCvt, FloatMult, FloatDiv:
		return true
	}
	return false
}

// DynInst is one in-flight dynamic instruction. The front end owns the
// instruction's lifetime; the instruction queue and the memory dependence
// unit hold shared references and drop them at commit or squash.
type DynInst struct {
	// SeqNum is the global dispatch sequence number (smaller = older).
	SeqNum SeqNum

	// ThreadID is the hardware thread context the instruction belongs to.
	ThreadID int

	// PC is the instruction address, carried for reporting only.
	PC uint64

	// Class selects the function unit kind and the ready queue.
	Class OpClass

	// SrcRegs are the renamed source physical registers.
	SrcRegs []PhysReg

	// DestRegs are the renamed destination physical registers.
	DestRegs []PhysReg

	// Mispredicted marks a branch whose prediction the front end already
	// knows to be wrong. The commit model uses it to drive squashes; the
	// instruction queue never reads it.
	Mispredicted bool

	// DispatchCycle and IssueCycle bracket the instruction's residency in
	// the queue; the delta feeds the issue-delay distribution.
	DispatchCycle uint64
	IssueCycle    uint64

	srcReady  []bool
	readySrcs int

	canIssue       bool
	issued         bool
	executed       bool
	completed      bool
	squashed       bool
	nonSpeculative bool
	memBarrier     bool
}

// New creates a dynamic instruction with the given identity. Source readiness
// starts all-pending; the queue marks sources satisfied during dispatch.
func New(sn SeqNum, tid int, class OpClass, srcs, dests []PhysReg) *DynInst {
	return &DynInst{
		SeqNum:   sn,
		ThreadID: tid,
		Class:    class,
		SrcRegs:  srcs,
		DestRegs: dests,
		srcReady: make([]bool, len(srcs)),
	}
}

// NumSrcRegs returns the number of source operands.
func (i *DynInst) NumSrcRegs() int { return len(i.SrcRegs) }

// NumDestRegs returns the number of destination operands.
func (i *DynInst) NumDestRegs() int { return len(i.DestRegs) }

// MarkSrcReady records that source operand idx has its value. Marking the
// same source twice is a no-op.
func (i *DynInst) MarkSrcReady(idx int) {
	if !i.srcReady[idx] {
		i.srcReady[idx] = true
		i.readySrcs++
	}
}

// MarkSrcsReadyForReg marks every source slot reading the given physical
// register as satisfied and returns how many slots changed. Wakeup uses it
// because the dependency graph records consumers per register, not per slot.
func (i *DynInst) MarkSrcsReadyForReg(reg PhysReg) int {
	marked := 0
	for idx, r := range i.SrcRegs {
		if r == reg && !i.srcReady[idx] {
			i.MarkSrcReady(idx)
			marked++
		}
	}
	return marked
}

// SrcReady reports whether source operand idx has its value.
func (i *DynInst) SrcReady(idx int) bool { return i.srcReady[idx] }

// ReadySrcs returns how many source operands have their values.
func (i *DynInst) ReadySrcs() int { return i.readySrcs }

// AllSrcsReady reports whether every source operand has its value.
func (i *DynInst) AllSrcsReady() bool { return i.readySrcs == len(i.SrcRegs) }

// CanIssue reports whether the register side of the instruction is
// satisfied. Memory ordering and non-speculative release are gated
// separately by the queue.
func (i *DynInst) CanIssue() bool { return i.canIssue }

// SetCanIssue records register-side readiness.
func (i *DynInst) SetCanIssue(v bool) { i.canIssue = v }

// Issued reports whether the instruction has been sent to a function unit.
func (i *DynInst) Issued() bool { return i.issued }

// SetIssued marks the instruction as sent to a function unit.
func (i *DynInst) SetIssued() { i.issued = true }

// ClearIssued returns the instruction to the unissued state. Used when a
// memory instruction is pulled back for replay.
func (i *DynInst) ClearIssued() { i.issued = false }

// Executed reports whether the function unit finished the instruction.
func (i *DynInst) Executed() bool { return i.executed }

// SetExecuted marks function unit completion.
func (i *DynInst) SetExecuted() { i.executed = true }

// Completed reports whether the instruction finished writeback.
func (i *DynInst) Completed() bool { return i.completed }

// SetCompleted marks writeback completion.
func (i *DynInst) SetCompleted() { i.completed = true }

// Squashed reports whether the instruction was rolled back.
func (i *DynInst) Squashed() bool { return i.squashed }

// SetSquashed marks the instruction rolled back. Squashed instructions left
// in ready queues are filtered at selection time.
func (i *DynInst) SetSquashed() { i.squashed = true }

// NonSpeculative reports whether the instruction must wait for an explicit
// release from commit before issuing.
func (i *DynInst) NonSpeculative() bool { return i.nonSpeculative }

// SetNonSpeculative sets the commit-release gate.
func (i *DynInst) SetNonSpeculative(v bool) { i.nonSpeculative = v }

// MemBarrier reports whether the instruction is a memory or write barrier.
func (i *DynInst) MemBarrier() bool { return i.memBarrier }

// SetMemBarrier marks the instruction as a barrier.
func (i *DynInst) SetMemBarrier() { i.memBarrier = true }

// IsMemRef returns true for loads and stores.
func (i *DynInst) IsMemRef() bool { return i.Class.IsMemRef() }

// IsLoad returns true for loads.
func (i *DynInst) IsLoad() bool { return i.Class == MemRead }

// IsStore returns true for stores.
func (i *DynInst) IsStore() bool { return i.Class == MemWrite }

// String formats the instruction for debug output.
func (i *DynInst) String() string {
	return fmt.Sprintf("[sn:%d tid:%d %s pc:%#x]",
		i.SeqNum, i.ThreadID, i.Class, i.PC)
}
