package runtime

import (
	"crypto/sha256"

	"github.com/blockberries/cramberry/pkg/cramberry"
)

// NonceEntry is one stored nonce.
type NonceEntry struct {
	Account AccountID `cramberry:"1"`
	Nonce   Nonce     `cramberry:"2"`
}

// BalanceEntry is one stored balance, in decimal.
type BalanceEntry struct {
	Account AccountID `cramberry:"1"`
	Amount  string    `cramberry:"2"`
}

// ClaimEntry is one claimed content key and its owner.
type ClaimEntry struct {
	Content Content   `cramberry:"1"`
	Owner   AccountID `cramberry:"2"`
}

// State is a canonical dump of every pallet's storage, entries sorted by
// key.
type State struct {
	BlockNumber BlockNumber    `cramberry:"1"`
	Nonces      []NonceEntry   `cramberry:"2"`
	Balances    []BalanceEntry `cramberry:"3"`
	Claims      []ClaimEntry   `cramberry:"4"`
}

// State returns a canonical dump of the runtime's storage.
func (rt *Runtime) State() State {
	s := State{BlockNumber: rt.System.BlockNumber()}
	for _, who := range rt.System.Accounts() {
		s.Nonces = append(s.Nonces, NonceEntry{Account: who, Nonce: rt.System.Nonce(who)})
	}
	for _, who := range rt.Balances.Accounts() {
		s.Balances = append(s.Balances, BalanceEntry{Account: who, Amount: rt.Balances.Balance(who).String()})
	}
	for _, content := range rt.ProofOfExistence.Contents() {
		owner, _ := rt.ProofOfExistence.GetClaim(content)
		s.Claims = append(s.Claims, ClaimEntry{Content: content, Owner: owner})
	}
	return s
}

// StateHash is the SHA-256 of the cramberry encoding of State. Runtimes
// with equal storage have equal hashes.
func (rt *Runtime) StateHash() [32]byte {
	data, _ := cramberry.Marshal(rt.State()) // plain structs always encode
	return sha256.Sum256(data)
}
