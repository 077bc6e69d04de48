package fu

import (
	"path/filepath"
	"testing"

	"github.com/sarchlab/o3sim/insts"
)

func TestGetAndFreeUnit(t *testing.T) {
	config := DefaultConfig()
	config.IntMult = UnitConfig{Count: 2, Latency: 3, Pipelined: true}
	pool, err := NewPool(config)
	if err != nil {
		t.Fatal(err)
	}

	a := pool.GetFU(insts.IntMult)
	b := pool.GetFU(insts.IntMult)
	if a == NoFreeFU || b == NoFreeFU {
		t.Fatal("expected two free IntMult units")
	}
	if a == b {
		t.Fatal("same unit handed out twice")
	}

	if got := pool.GetFU(insts.IntMult); got != NoFreeFU {
		t.Errorf("third IntMult request = %d, want NoFreeFU", got)
	}

	pool.FreeUnit(a)
	if got := pool.GetFU(insts.IntMult); got != a {
		t.Errorf("after free, GetFU = %d, want %d", got, a)
	}

	stats := pool.Stats()
	if stats.Requests[insts.IntMult] != 4 {
		t.Errorf("Requests = %d, want 4", stats.Requests[insts.IntMult])
	}
	if stats.Denied[insts.IntMult] != 1 {
		t.Errorf("Denied = %d, want 1", stats.Denied[insts.IntMult])
	}
}

func TestBranchRidesOnIntAlu(t *testing.T) {
	config := DefaultConfig()
	config.Branch.Count = 0
	pool, err := NewPool(config)
	if err != nil {
		t.Fatal(err)
	}

	idx := pool.GetFU(insts.Branch)
	if idx == NoFreeFU {
		t.Fatal("branch should be served by an integer ALU")
	}

	// The unit handed out must also count against the ALU budget.
	aluFree := pool.NumFree(insts.IntAlu)
	if aluFree != config.IntAlu.Count-1 {
		t.Errorf("free ALUs = %d, want %d", aluFree, config.IntAlu.Count-1)
	}
}

func TestFreeUnitPanicsOnFreeUnit(t *testing.T) {
	pool, err := NewPool(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	idx := pool.GetFU(insts.IntAlu)
	pool.FreeUnit(idx)

	defer func() {
		if recover() == nil {
			t.Error("expected panic when freeing an already-free unit")
		}
	}()
	pool.FreeUnit(idx)
}

func TestLatencyAndPipelining(t *testing.T) {
	pool, err := NewPool(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if got := pool.Latency(insts.IntDiv); got != 20 {
		t.Errorf("IntDiv latency = %d, want 20", got)
	}
	if pool.IsPipelined(insts.IntDiv) {
		t.Error("IntDiv should not be pipelined")
	}
	if !pool.IsPipelined(insts.IntAlu) {
		t.Error("IntAlu should be pipelined")
	}
	if !pool.IsPipelined(insts.Branch) {
		t.Error("Branch riding on pipelined ALUs should report pipelined")
	}
}

func TestValidateRejectsMissingClass(t *testing.T) {
	config := DefaultConfig()
	config.MemRead.Count = 0
	if err := config.Validate(); err == nil {
		t.Error("expected validation error for class with no units")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fu.json")

	config := DefaultConfig()
	config.IntAlu.Count = 8
	if err := config.SaveConfig(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.IntAlu.Count != 8 {
		t.Errorf("loaded IntAlu count = %d, want 8", loaded.IntAlu.Count)
	}
	// Fields left at their defaults survive the round trip.
	if loaded.IntDiv.Latency != 20 {
		t.Errorf("loaded IntDiv latency = %d, want default 20", loaded.IntDiv.Latency)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/fu.json"); err == nil {
		t.Error("expected error for missing config file")
	}
}
