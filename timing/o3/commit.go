package o3

import (
	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/iq"
)

// CommitStats holds retirement counters.
type CommitStats struct {
	Committed       uint64
	Squashes        uint64
	NonSpecReleases uint64
}

// commitUnit retires instructions in order and drives the backwards signal
// toward the queue: commit sequence numbers, non-speculative releases, and
// squashes for mispredicted branches.
type commitUnit struct {
	commitWidth int
	frontEnd    *FrontEnd

	rob          [][]*insts.DynInst
	lastReleased []insts.SeqNum

	stats CommitStats
}

func newCommitUnit(numThreads, commitWidth int, frontEnd *FrontEnd) *commitUnit {
	return &commitUnit{
		commitWidth:  commitWidth,
		frontEnd:     frontEnd,
		rob:          make([][]*insts.DynInst, numThreads),
		lastReleased: make([]insts.SeqNum, numThreads),
	}
}

// push records a dispatched instruction at the tail of the thread's ROB.
func (c *commitUnit) push(inst *insts.DynInst) {
	c.rob[inst.ThreadID] = append(c.rob[inst.ThreadID], inst)
}

// tick retires up to commitWidth instructions per thread and fills the
// commit signal slot for this cycle.
func (c *commitUnit) tick(signal *iq.CommitSignal, cycle uint64, stallCycles uint64) {
	for tid := range c.rob {
		committed := insts.SeqNum(0)

		for n := 0; n < c.commitWidth && len(c.rob[tid]) > 0; n++ {
			head := c.rob[tid][0]

			if head.NonSpeculative() {
				// Release the head once and wait for it to execute.
				if c.lastReleased[tid] != head.SeqNum {
					c.lastReleased[tid] = head.SeqNum
					signal.NonSpecSeqNum[tid] = head.SeqNum
					c.stats.NonSpecReleases++
				}
				break
			}

			if !head.Completed() {
				break
			}

			c.rob[tid] = c.rob[tid][1:]
			c.frontEnd.Release(head)
			committed = head.SeqNum
			c.stats.Committed++

			if head.Mispredicted {
				c.squash(tid, head.SeqNum, signal)
				c.frontEnd.Stall(tid, cycle+stallCycles)
				break
			}
		}

		if committed != 0 {
			signal.CommitSeqNum[tid] = committed
		}
	}
}

// squash drops every ROB entry younger than sn and signals the queue. The
// dropped instructions are marked squashed here so in-flight completions
// turn into no-ops even before the queue's own walk runs.
func (c *commitUnit) squash(tid int, sn insts.SeqNum, signal *iq.CommitSignal) {
	signal.Squash[tid] = true
	signal.SquashedSeqNum[tid] = sn
	c.stats.Squashes++

	keep := c.rob[tid][:0]
	for _, inst := range c.rob[tid] {
		if inst.SeqNum <= sn {
			keep = append(keep, inst)
			continue
		}
		inst.SetSquashed()
		c.frontEnd.Release(inst)
	}
	c.rob[tid] = keep
}
