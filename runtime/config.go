package runtime

import "github.com/blockberries/pallets/arith"

// Concrete types the runtime binds every pallet's configuration to.
type (
	AccountID   = string
	Balance     = arith.U256
	BlockNumber = uint32
	Nonce       = uint32
	Content     = string
)
