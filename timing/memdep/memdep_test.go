package memdep

import (
	"testing"

	"github.com/sarchlab/o3sim/insts"
)

type recorder struct {
	ready []*insts.DynInst
}

func (r *recorder) AddReadyMemInst(inst *insts.DynInst) {
	r.ready = append(r.ready, inst)
}

func (r *recorder) seqNums() []insts.SeqNum {
	var sns []insts.SeqNum
	for _, inst := range r.ready {
		sns = append(sns, inst.SeqNum)
	}
	return sns
}

func load(sn insts.SeqNum) *insts.DynInst {
	return insts.New(sn, 0, insts.MemRead, []insts.PhysReg{1}, []insts.PhysReg{2})
}

func store(sn insts.SeqNum) *insts.DynInst {
	return insts.New(sn, 0, insts.MemWrite, []insts.PhysReg{1, 2}, nil)
}

func TestLoadWithNoOlderStoreIsReady(t *testing.T) {
	rec := &recorder{}
	unit := NewUnit(0, rec)

	ld := load(5)
	unit.Insert(ld)
	unit.RegsReady(ld)

	if len(rec.ready) != 1 || rec.ready[0] != ld {
		t.Fatalf("ready = %v, want [sn:5]", rec.seqNums())
	}
}

func TestLoadWaitsForOlderStore(t *testing.T) {
	rec := &recorder{}
	unit := NewUnit(0, rec)

	st := store(48)
	ld := load(50)
	unit.Insert(st)
	unit.Insert(ld)

	unit.RegsReady(ld)
	if len(rec.ready) != 0 {
		t.Fatalf("load should wait on the older store, got %v", rec.seqNums())
	}

	unit.RegsReady(st)
	if len(rec.ready) != 1 || rec.ready[0] != st {
		t.Fatalf("store should be ready first, got %v", rec.seqNums())
	}

	unit.Completed(st)
	if len(rec.ready) != 2 || rec.ready[1] != ld {
		t.Fatalf("load should wake after store completes, got %v", rec.seqNums())
	}
}

func TestStoreWaitsUntilOldest(t *testing.T) {
	rec := &recorder{}
	unit := NewUnit(0, rec)

	older := store(10)
	younger := store(11)
	unit.Insert(older)
	unit.Insert(younger)

	unit.RegsReady(younger)
	if len(rec.ready) != 0 {
		t.Fatalf("younger store must wait, got %v", rec.seqNums())
	}

	unit.RegsReady(older)
	unit.Completed(older)
	if len(rec.ready) == 0 || rec.ready[len(rec.ready)-1] != younger {
		t.Fatalf("younger store should wake once oldest, got %v", rec.seqNums())
	}
}

func TestBarrierBlocksYoungerLoads(t *testing.T) {
	rec := &recorder{}
	unit := NewUnit(0, rec)

	barrier := insts.New(20, 0, insts.Misc, nil, nil)
	barrier.SetMemBarrier()
	ld := load(21)

	unit.InsertBarrier(barrier)
	unit.Insert(ld)
	unit.RegsReady(ld)

	if len(rec.ready) != 0 {
		t.Fatalf("load should wait behind barrier, got %v", rec.seqNums())
	}

	unit.Completed(barrier)
	if len(rec.ready) != 1 || rec.ready[0] != ld {
		t.Fatalf("load should wake after barrier completes, got %v", rec.seqNums())
	}
}

func TestRescheduleReplayRoundTrip(t *testing.T) {
	rec := &recorder{}
	unit := NewUnit(0, rec)

	ld := load(7)
	unit.Insert(ld)
	unit.RegsReady(ld)
	if len(rec.ready) != 1 {
		t.Fatal("load should be ready")
	}

	unit.Reschedule(ld)
	// Rescheduling twice is a no-op.
	unit.Reschedule(ld)

	unit.Replay(ld)
	if len(rec.ready) != 2 || rec.ready[1] != ld {
		t.Fatalf("replay should re-notify with original semantics, got %v", rec.seqNums())
	}
	if unit.Stats().Replays != 1 {
		t.Errorf("Replays = %d, want 1", unit.Stats().Replays)
	}
}

func TestSquashDropsYoungerOps(t *testing.T) {
	rec := &recorder{}
	unit := NewUnit(0, rec)

	st := store(48)
	ld := load(50)
	unit.Insert(st)
	unit.Insert(ld)
	unit.RegsReady(ld)

	unit.Squash(49)

	// The load is gone; completing the store must not wake it.
	unit.RegsReady(st)
	unit.Completed(st)
	for _, inst := range rec.ready {
		if inst == ld {
			t.Fatal("squashed load must not be notified")
		}
	}
}

func TestViolationOnlyTrains(t *testing.T) {
	rec := &recorder{}
	unit := NewUnit(0, rec)

	st := store(48)
	ld := load(50)
	unit.Insert(st)
	unit.Insert(ld)

	unit.Violation(st, ld)

	if unit.Stats().Violations != 1 {
		t.Errorf("Violations = %d, want 1", unit.Stats().Violations)
	}
	// State is untouched: both ops still tracked, nothing notified.
	if len(rec.ready) != 0 {
		t.Errorf("violation must not change readiness, got %v", rec.seqNums())
	}
}
