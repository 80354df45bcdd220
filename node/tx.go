package node

import (
	"errors"
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/blockberries/pallets/arith"
	"github.com/blockberries/pallets/runtime"
	"github.com/blockberries/pallets/types"
)

// Call names on the wire, per module.
const (
	CallTransfer    = "transfer"
	CallCreateClaim = "create_claim"
	CallRevokeClaim = "revoke_claim"
)

var (
	ErrEmptyCaller = errors.New("node: extrinsic has no caller")
	ErrUnknownCall = errors.New("node: unknown call")
)

// WireExtrinsic is the encoded form of a runtime extrinsic. Module and
// Call select the variant; the remaining fields are that variant's
// arguments.
type WireExtrinsic struct {
	Caller string `cramberry:"1"`
	Module string `cramberry:"2"`
	Call   string `cramberry:"3"`
	To     string `cramberry:"4"`
	Amount string `cramberry:"5"`
	Claim  string `cramberry:"6"`
}

// EncodeExtrinsic encodes xt as a Tx.
func EncodeExtrinsic(xt runtime.Extrinsic) (types.Tx, error) {
	if xt.Caller == "" {
		return nil, ErrEmptyCaller
	}
	if err := xt.Call.Validate(); err != nil {
		return nil, err
	}
	w := WireExtrinsic{
		Caller: xt.Caller,
		Module: xt.Call.Module(),
		Call:   xt.Call.Name(),
	}
	c := xt.Call
	switch {
	case c.Balances != nil:
		w.To = c.Balances.Transfer.To
		w.Amount = c.Balances.Transfer.Amount.String()
	case c.ProofOfExistence.CreateClaim != nil:
		w.Claim = c.ProofOfExistence.CreateClaim.Claim
	default:
		w.Claim = c.ProofOfExistence.RevokeClaim.Claim
	}
	data, err := cramberry.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode extrinsic: %w", err)
	}
	return data, nil
}

// DecodeExtrinsic decodes a Tx produced by EncodeExtrinsic.
func DecodeExtrinsic(tx types.Tx) (runtime.Extrinsic, error) {
	var w WireExtrinsic
	if err := cramberry.Unmarshal(tx, &w); err != nil {
		return runtime.Extrinsic{}, fmt.Errorf("decode extrinsic: %w", err)
	}
	if w.Caller == "" {
		return runtime.Extrinsic{}, ErrEmptyCaller
	}
	switch {
	case w.Module == runtime.ModuleBalances && w.Call == CallTransfer:
		amount, err := arith.ParseU256(w.Amount)
		if err != nil {
			return runtime.Extrinsic{}, fmt.Errorf("decode extrinsic: %w", err)
		}
		return runtime.Transfer(w.Caller, w.To, amount), nil
	case w.Module == runtime.ModuleProofOfExistence && w.Call == CallCreateClaim:
		return runtime.CreateClaim(w.Caller, w.Claim), nil
	case w.Module == runtime.ModuleProofOfExistence && w.Call == CallRevokeClaim:
		return runtime.RevokeClaim(w.Caller, w.Claim), nil
	default:
		return runtime.Extrinsic{}, fmt.Errorf("%w: %s/%s", ErrUnknownCall, w.Module, w.Call)
	}
}

// TransferTx creates a transfer transaction.
func TransferTx(caller, to string, amount arith.U256) types.Tx {
	return mustEncode(runtime.Transfer(caller, to, amount))
}

// CreateClaimTx creates a create-claim transaction.
func CreateClaimTx(caller, claim string) types.Tx {
	return mustEncode(runtime.CreateClaim(caller, claim))
}

// RevokeClaimTx creates a revoke-claim transaction.
func RevokeClaimTx(caller, claim string) types.Tx {
	return mustEncode(runtime.RevokeClaim(caller, claim))
}

func mustEncode(xt runtime.Extrinsic) types.Tx {
	tx, err := EncodeExtrinsic(xt)
	if err != nil {
		panic(fmt.Sprintf("node: encode %s/%s: %v", xt.Call.Module(), xt.Call.Name(), err))
	}
	return tx
}
