// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/codec"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
)

// GasMarginPercent is added on top of the table estimate when a
// transaction's gas limit is set.
const GasMarginPercent = 20

// ConfidenceMedium is the only confidence the static table reports.
const ConfidenceMedium = "medium"

// gasTable holds the gas used per contract method. A batch swap costs
// its entry once per active order.
var gasTable = map[string]uint64{
	codec.MethodSwap:              250000,
	codec.MethodBatchSwap:         500000,
	codec.MethodStake:             150000,
	codec.MethodUnstake:           150000,
	codec.MethodAddLiquidity:      200000,
	codec.MethodRemoveLiquidity:   200000,
	codec.MethodClaimRewards:      100000,
	codec.MethodEmergencyWithdraw: 150000,
	codec.MethodSetPaused:         100000,
}

// GasEstimate is an upper bound on the cost of a call.
type GasEstimate struct {
	GasUnits   uint64
	GasPrice   *uint256.Int
	TotalCost  *uint256.Int
	Confidence string
}

// GasUnits returns the table estimate for method. activeOrders is only
// used for batch swaps.
func GasUnits(method string, activeOrders int) (uint64, error) {
	units, ok := gasTable[method]
	if !ok {
		return 0, types.NewError(types.ErrInvalidInput, fmt.Sprintf("no gas estimate for method %q", method))
	}
	if method == codec.MethodBatchSwap {
		if activeOrders < 1 || activeOrders > params.MaxBatchSize {
			return 0, types.NewError(types.ErrBatchSizeExceeded, fmt.Sprintf("batch of %d orders", activeOrders))
		}
		units *= uint64(activeOrders)
	}
	return units, nil
}

// GasLimitWithMargin adds GasMarginPercent to units.
func GasLimitWithMargin(units uint64) uint64 {
	return units + units*GasMarginPercent/100
}

// EstimateGas prices the table estimate for method at the current gas
// price. This is a heuristic, the call is not simulated.
func (c *Client) EstimateGas(ctx context.Context, method string, activeOrders int) (*GasEstimate, error) {
	units, err := GasUnits(method, activeOrders)
	if err != nil {
		return nil, err
	}
	price, err := c.cfg.rpc.GasPrice(ctx)
	if err != nil {
		return nil, networkError("gas price lookup failed", err)
	}
	total, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(units), price)
	if overflow {
		return nil, types.NewError(types.ErrInvalidInput, "gas cost overflows")
	}
	return &GasEstimate{
		GasUnits:   units,
		GasPrice:   price,
		TotalCost:  total,
		Confidence: ConfidenceMedium,
	}, nil
}
