package node

import (
	"context"
	"strconv"

	"github.com/blockberries/pallets/types"
)

// Query paths.
const (
	PathBlockNumber   types.QueryPath = "/system/block_number"
	PathNonce         types.QueryPath = "/system/nonce"
	PathBalance       types.QueryPath = "/balances/balance"
	PathTotalIssuance types.QueryPath = "/balances/total_issuance"
	PathClaim         types.QueryPath = "/poe/claim"
)

// Query result codes.
const (
	QueryOK          uint32 = 0
	QueryUnknownPath uint32 = 1
	QueryNotFound    uint32 = 2
)

// Query reads committed state. Data carries the account or content key
// for keyed paths; values are decimal strings or account ids.
func (app *App) Query(_ context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	app.mu.RLock()
	defer app.mu.RUnlock()

	rt := app.current
	height := uint64(rt.System.BlockNumber())
	key := string(req.Data)

	result := types.StateQueryResult{
		Code:   QueryOK,
		Key:    req.Data,
		Height: height,
	}

	switch req.Path {
	case PathBlockNumber:
		result.Value = []byte(strconv.FormatUint(height, 10))
	case PathNonce:
		result.Value = []byte(strconv.FormatUint(uint64(rt.System.Nonce(key)), 10))
	case PathBalance:
		result.Value = []byte(rt.Balances.Balance(key).String())
	case PathTotalIssuance:
		total, ok := rt.Balances.TotalIssuance()
		if !ok {
			result.Code = QueryNotFound
			result.Info = "total issuance overflows"
			break
		}
		result.Value = []byte(total.String())
	case PathClaim:
		owner, ok := rt.ProofOfExistence.GetClaim(key)
		if !ok {
			result.Code = QueryNotFound
			result.Info = "unclaimed"
			break
		}
		result.Value = []byte(owner)
	default:
		result.Code = QueryUnknownPath
		result.Info = "unknown query path " + string(req.Path)
	}
	return result, nil
}
