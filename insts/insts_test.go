package insts

import "testing"

func TestOpClassString(t *testing.T) {
	tests := []struct {
		class OpClass
		want  string
	}{
		{IntAlu, "IntAlu"},
		{FloatMult, "FloatMult"},
		{MemRead, "MemRead"},
		{Misc, "Misc"},
		{OpClass(99), "OpClass(99)"},
	}

	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("OpClass(%d).String() = %q, want %q", int(tt.class), got, tt.want)
		}
	}
}

func TestOpClassPredicates(t *testing.T) {
	if !MemRead.IsMemRef() || !MemWrite.IsMemRef() {
		t.Error("MemRead/MemWrite should be memory refs")
	}
	if IntAlu.IsMemRef() {
		t.Error("IntAlu should not be a memory ref")
	}
	if !IntMult.IsInt() || IntMult.IsFloat() {
		t.Error("IntMult should be int, not float")
	}
	if !FloatDiv.IsFloat() || FloatDiv.IsInt() {
		t.Error("FloatDiv should be float, not int")
	}
	if Branch.IsInt() || Branch.IsFloat() {
		t.Error("Branch should be neither int nor float")
	}
}

func TestSrcReadiness(t *testing.T) {
	inst := New(5, 0, IntAlu, []PhysReg{3, 7}, []PhysReg{9})

	if inst.AllSrcsReady() {
		t.Error("new instruction should not have all sources ready")
	}

	inst.MarkSrcReady(0)
	if inst.ReadySrcs() != 1 {
		t.Errorf("ReadySrcs() = %d, want 1", inst.ReadySrcs())
	}

	// Marking the same source again must not double count.
	inst.MarkSrcReady(0)
	if inst.ReadySrcs() != 1 {
		t.Errorf("ReadySrcs() after duplicate mark = %d, want 1", inst.ReadySrcs())
	}

	inst.MarkSrcReady(1)
	if !inst.AllSrcsReady() {
		t.Error("both sources marked, AllSrcsReady should be true")
	}
}

func TestZeroSourceInstIsReady(t *testing.T) {
	inst := New(1, 0, IntAlu, nil, []PhysReg{2})
	if !inst.AllSrcsReady() {
		t.Error("instruction with no sources should be ready immediately")
	}
}

func TestStatusFlags(t *testing.T) {
	inst := New(10, 1, MemRead, []PhysReg{1}, []PhysReg{4})

	if !inst.IsLoad() || inst.IsStore() {
		t.Error("MemRead should be a load")
	}

	inst.SetIssued()
	if !inst.Issued() {
		t.Error("SetIssued should stick")
	}
	inst.ClearIssued()
	if inst.Issued() {
		t.Error("ClearIssued should reset the issued flag")
	}

	inst.SetSquashed()
	if !inst.Squashed() {
		t.Error("SetSquashed should stick")
	}

	inst.SetNonSpeculative(true)
	if !inst.NonSpeculative() {
		t.Error("SetNonSpeculative(true) should stick")
	}
	inst.SetNonSpeculative(false)
	if inst.NonSpeculative() {
		t.Error("SetNonSpeculative(false) should clear")
	}
}
