package fu

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/o3sim/insts"
)

// UnitConfig describes the function units provisioned for one op class.
type UnitConfig struct {
	// Count is the number of units of this kind.
	Count int `json:"count"`

	// Latency is the execution latency in cycles. A latency of zero means
	// the result is available in the issue cycle, which permits
	// back-to-back scheduling of a dependent instruction.
	Latency uint64 `json:"latency"`

	// Pipelined units accept a new operation every cycle; unpipelined
	// units stay busy for the full execution latency.
	Pipelined bool `json:"pipelined"`
}

// Config holds the function unit provisioning for the pool.
type Config struct {
	// IntAlu units also execute branches when no dedicated branch units
	// are configured (Branch.Count == 0).
	IntAlu    UnitConfig `json:"int_alu"`
	IntMult   UnitConfig `json:"int_mult"`
	IntDiv    UnitConfig `json:"int_div"`
	FloatAdd  UnitConfig `json:"float_add"`
	FloatCmp  UnitConfig `json:"float_cmp"`
	FloatCvt  UnitConfig `json:"float_cvt"`
	FloatMult UnitConfig `json:"float_mult"`
	FloatDiv  UnitConfig `json:"float_div"`
	MemRead   UnitConfig `json:"mem_read"`
	MemWrite  UnitConfig `json:"mem_write"`
	Branch    UnitConfig `json:"branch"`
	Misc      UnitConfig `json:"misc"`
}

// DefaultConfig returns a pool provisioning modeled on a wide out-of-order
// core: plentiful pipelined ALUs, a few long-latency units, unpipelined
// dividers.
func DefaultConfig() *Config {
	return &Config{
		IntAlu:    UnitConfig{Count: 6, Latency: 1, Pipelined: true},
		IntMult:   UnitConfig{Count: 2, Latency: 3, Pipelined: true},
		IntDiv:    UnitConfig{Count: 1, Latency: 20, Pipelined: false},
		FloatAdd:  UnitConfig{Count: 4, Latency: 2, Pipelined: true},
		FloatCmp:  UnitConfig{Count: 4, Latency: 2, Pipelined: true},
		FloatCvt:  UnitConfig{Count: 4, Latency: 2, Pipelined: true},
		FloatMult: UnitConfig{Count: 2, Latency: 4, Pipelined: true},
		FloatDiv:  UnitConfig{Count: 1, Latency: 12, Pipelined: false},
		MemRead:   UnitConfig{Count: 4, Latency: 1, Pipelined: true},
		MemWrite:  UnitConfig{Count: 4, Latency: 1, Pipelined: true},
		Branch:    UnitConfig{Count: 0, Latency: 1, Pipelined: true},
		Misc:      UnitConfig{Count: 1, Latency: 3, Pipelined: true},
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FU config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse FU config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize FU config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write FU config file: %w", err)
	}

	return nil
}

// forClass returns the unit configuration for the given op class.
func (c *Config) forClass(class insts.OpClass) UnitConfig {
	switch class {
	case insts.IntAlu:
		return c.IntAlu
	case insts.IntMult:
		return c.IntMult
	case insts.IntDiv:
		return c.IntDiv
	case insts.FloatAdd:
		return c.FloatAdd
	case insts.FloatCmp:
		return c.FloatCmp
	case insts.FloatCvt:
		return c.FloatCvt
	case insts.FloatMult:
		return c.FloatMult
	case insts.FloatDiv:
		return c.FloatDiv
	case insts.MemRead:
		return c.MemRead
	case insts.MemWrite:
		return c.MemWrite
	case insts.Branch:
		return c.Branch
	case insts.Misc:
		return c.Misc
	}
	panic(fmt.Sprintf("fu: unknown op class %d", int(class)))
}

// Validate checks that every op class can be executed by some unit.
func (c *Config) Validate() error {
	total := 0
	for class := insts.OpClass(0); class < insts.NumOpClasses; class++ {
		uc := c.forClass(class)
		if uc.Count < 0 {
			return fmt.Errorf("%s count must be >= 0", class)
		}
		total += uc.Count
		if uc.Count == 0 {
			// Branches may ride on the integer ALUs.
			if class == insts.Branch && c.IntAlu.Count > 0 {
				continue
			}
			return fmt.Errorf("no units configured for %s", class)
		}
	}
	if total == 0 {
		return fmt.Errorf("pool has no units")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
