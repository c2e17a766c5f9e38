// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package client

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/types"
)

// LedgerRPC is the set of ledger calls the client needs. Any error
// returned by an implementation is treated as a network failure.
type LedgerRPC interface {
	// BlockNumber returns the current block height.
	BlockNumber(ctx context.Context) (uint64, error)

	// GasPrice returns the current price of one unit of gas.
	GasPrice(ctx context.Context) (*uint256.Int, error)

	// TransactionCount returns the next nonce for addr.
	TransactionCount(ctx context.Context, addr types.ID) (uint64, error)

	// SendRawTransaction submits a signed transaction and returns its
	// hash.
	SendRawTransaction(ctx context.Context, raw []byte) (types.ID, error)

	// TransactionReceipt returns the receipt for txHash or nil if the
	// transaction has not been included yet.
	TransactionReceipt(ctx context.Context, txHash types.ID) (*types.Receipt, error)

	// Logs returns the logs matching filter.
	Logs(ctx context.Context, filter types.LogFilter) ([]types.Log, error)

	// Call runs a read-only contract method and returns the encoded
	// return value.
	Call(ctx context.Context, to types.ID, data []byte) ([]byte, error)
}

// Wallet holds the user's signing key.
type Wallet interface {
	// Address returns the account ID transactions are sent from.
	Address(ctx context.Context) (types.ID, error)

	// Balance returns the account's balance of tokenID.
	Balance(ctx context.Context, tokenID types.ID) (*uint256.Int, error)

	// SignTransaction signs tx and returns the serialized signed
	// transaction ready to be submitted.
	SignTransaction(ctx context.Context, tx *types.UnsignedTransaction) ([]byte, error)
}
