// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package rpc

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/types"
)

// Backend is the ledger served by the Server. The in-memory harness
// ledger satisfies it.
type Backend interface {
	BlockNumber(ctx context.Context) (uint64, error)
	GasPrice(ctx context.Context) (*uint256.Int, error)
	TransactionCount(ctx context.Context, addr types.ID) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (types.ID, error)
	TransactionReceipt(ctx context.Context, txHash types.ID) (*types.Receipt, error)
	Logs(ctx context.Context, filter types.LogFilter) ([]types.Log, error)
	Call(ctx context.Context, to types.ID, data []byte) ([]byte, error)
}
