package node

import (
	"fmt"
	"maps"
	"slices"

	"github.com/blockberries/pallets/arith"
	"github.com/blockberries/pallets/runtime"
	"gopkg.in/yaml.v3"
)

// Genesis is the pallet state a chain starts from, carried as YAML in
// GenesisDoc.AppState:
//
//	balances:
//	  alice: "100"
//	claims:
//	  doc: alice
type Genesis struct {
	// Account to decimal balance.
	Balances map[string]string `yaml:"balances"`
	// Content to owner.
	Claims map[string]string `yaml:"claims"`
}

// ParseGenesis decodes YAML app state. Empty input is an empty genesis.
func ParseGenesis(data []byte) (Genesis, error) {
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Genesis{}, fmt.Errorf("parse genesis: %w", err)
	}
	return g, nil
}

// Marshal encodes g as YAML.
func (g Genesis) Marshal() ([]byte, error) {
	return yaml.Marshal(g)
}

// Apply seeds rt. Balances are set directly; claims are recorded for
// their owners. Neither touches nonces or the block number.
func (g Genesis) Apply(rt *runtime.Runtime) error {
	for _, who := range slices.Sorted(maps.Keys(g.Balances)) {
		amount, err := arith.ParseU256(g.Balances[who])
		if err != nil {
			return fmt.Errorf("genesis balance of %q: %w", who, err)
		}
		rt.Balances.SetBalance(who, amount)
	}
	for _, content := range slices.Sorted(maps.Keys(g.Claims)) {
		owner := g.Claims[content]
		if owner == "" {
			return fmt.Errorf("genesis claim %q has no owner", content)
		}
		if err := rt.ProofOfExistence.CreateClaim(owner, content); err != nil {
			return fmt.Errorf("genesis claim %q: %w", content, err)
		}
	}
	return nil
}
