package types

import "strings"

// Capabilities is the set of optional interfaces an application
// declares at handshake.
type Capabilities uint8

// CapSimulation marks an application that implements pallets.Simulator.
const CapSimulation Capabilities = 1 << iota

// Has reports whether every capability in want is declared.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

func (c Capabilities) String() string {
	var names []string
	if c.Has(CapSimulation) {
		names = append(names, "Simulation")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
