package iq_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/fu"
	"github.com/sarchlab/o3sim/timing/iq"
	"github.com/sarchlab/o3sim/timing/timebuf"
)

var _ = Describe("Queue", func() {
	var (
		q         *iq.Queue
		i2e       *timebuf.TimeBuffer[iq.IssueBundle]
		commitBuf *timebuf.TimeBuffer[iq.CommitSignal]
	)

	BeforeEach(func() {
		params := iq.DefaultParams()
		params.CommitToIEWDelay = 0

		config := fu.DefaultConfig()
		// Immediate units keep the behavioral specs free of event timing.
		config.IntAlu = fu.UnitConfig{Count: 8, Latency: 0, Pipelined: true}
		config.MemRead = fu.UnitConfig{Count: 4, Latency: 0, Pipelined: true}
		config.MemWrite = fu.UnitConfig{Count: 4, Latency: 0, Pipelined: true}
		config.Misc = fu.UnitConfig{Count: 1, Latency: 0, Pipelined: true}

		pool, err := fu.NewPool(config)
		Expect(err).ToNot(HaveOccurred())

		q, err = iq.New(params, sim.NewSerialEngine(), 1*sim.GHz, pool)
		Expect(err).ToNot(HaveOccurred())

		i2e = timebuf.New[iq.IssueBundle](0, 0)
		commitBuf = timebuf.New[iq.CommitSignal](0, 0)
		q.SetIssueToExecuteQueue(i2e)
		q.SetTimeBuffer(commitBuf)
	})

	Describe("Admission", func() {
		It("should make a source-satisfied instruction ready", func() {
			q.Insert(insts.New(1, 0, insts.IntAlu, nil, []insts.PhysReg{4}))
			Expect(q.HasReadyInsts()).To(BeTrue())
			Expect(q.Count(0)).To(Equal(1))
		})

		It("should hold a consumer until its producer completes", func() {
			producer := insts.New(1, 0, insts.IntAlu, nil, []insts.PhysReg{4})
			consumer := insts.New(2, 0, insts.IntAlu, []insts.PhysReg{4}, nil)
			q.Insert(producer)
			q.Insert(consumer)

			Expect(consumer.CanIssue()).To(BeFalse())

			q.WakeDependents(producer)
			Expect(consumer.CanIssue()).To(BeTrue())
		})

		It("should track free entries", func() {
			free := q.NumFreeEntries()
			q.Insert(insts.New(1, 0, insts.IntAlu, nil, nil))
			Expect(q.NumFreeEntries()).To(Equal(free - 1))
		})
	})

	Describe("Selection", func() {
		It("should issue ready instructions into the bundle", func() {
			q.Insert(insts.New(1, 0, insts.IntAlu, nil, []insts.PhysReg{4}))
			q.ScheduleReadyInsts()

			Expect(i2e.At(0).Size()).To(Equal(1))
			Expect(i2e.At(0).Insts[0].SeqNum).To(Equal(insts.SeqNum(1)))
			Expect(q.Stats().InstsIssued).To(Equal(uint64(1)))
		})

		It("should not issue more than the width", func() {
			for sn := insts.SeqNum(1); sn <= 12; sn++ {
				q.Insert(insts.New(sn, 0, insts.IntAlu, nil, nil))
			}
			q.ScheduleReadyInsts()

			Expect(i2e.At(0).Size()).To(Equal(8))
		})

		It("should issue oldest first", func() {
			q.Insert(insts.New(9, 0, insts.IntAlu, nil, nil))
			q.Insert(insts.New(4, 0, insts.MemRead, nil, []insts.PhysReg{7}))
			q.ScheduleReadyInsts()

			bundle := i2e.At(0).Insts
			Expect(bundle[0].SeqNum).To(Equal(insts.SeqNum(4)))
		})
	})

	Describe("Non-speculative instructions", func() {
		It("should hold them until release", func() {
			q.InsertNonSpec(insts.New(20, 0, insts.IntAlu, nil, nil))
			q.ScheduleReadyInsts()
			Expect(i2e.At(0).Size()).To(Equal(0))

			q.ScheduleNonSpec(20)
			q.ScheduleReadyInsts()
			Expect(i2e.At(0).Size()).To(Equal(1))
		})

		It("should count them separately", func() {
			q.InsertNonSpec(insts.New(20, 0, insts.IntAlu, nil, nil))
			Expect(q.Stats().NonSpecInstsAdded).To(Equal(uint64(1)))
			Expect(q.Stats().InstsAdded).To(Equal(uint64(1)))
		})
	})

	Describe("Barriers", func() {
		It("should keep younger loads behind the barrier", func() {
			barrier := insts.New(1, 0, insts.Misc, nil, nil)
			ld := insts.New(2, 0, insts.MemRead, nil, []insts.PhysReg{4})

			q.InsertBarrier(barrier)
			q.Insert(ld)

			q.ScheduleReadyInsts()
			Expect(i2e.At(0).Size()).To(Equal(0))

			// Release and execute the barrier, then complete it.
			q.ScheduleNonSpec(1)
			q.ScheduleReadyInsts()
			Expect(i2e.At(0).Insts).To(HaveLen(1))
			q.CompleteMemInst(barrier)

			q.ScheduleReadyInsts()
			Expect(i2e.At(0).Insts).To(HaveLen(2))
		})
	})

	Describe("Commit", func() {
		It("should retire from the head and free entries", func() {
			for sn := insts.SeqNum(1); sn <= 3; sn++ {
				q.Insert(insts.New(sn, 0, insts.IntAlu, nil, nil))
			}
			free := q.NumFreeEntries()

			q.Commit(2, 0)
			Expect(q.Count(0)).To(Equal(1))
			Expect(q.NumFreeEntries()).To(Equal(free + 2))
		})
	})

	Describe("SMT policies", func() {
		It("dynamic should share all entries", func() {
			Expect(q.IsFullForThread(0)).To(BeFalse())
			Expect(q.NumFreeEntriesForThread(0)).To(Equal(64))
		})
	})
})
