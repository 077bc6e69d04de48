package iq

import "fmt"

// Policy selects how queue entries are shared between hardware threads.
type Policy int

const (
	// Dynamic lets every thread compete for all entries.
	Dynamic Policy = iota
	// Partitioned splits the entries evenly between active threads.
	Partitioned
	// Threshold caps every thread at a fixed entry count.
	Threshold
)

var policyNames = map[Policy]string{
	Dynamic:     "dynamic",
	Partitioned: "partitioned",
	Threshold:   "threshold",
}

// String returns the policy name.
func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy converts a policy name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return Dynamic, fmt.Errorf("unknown IQ policy %q", s)
}
