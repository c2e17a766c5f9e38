// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/project-illium/zswap/types"
)

// Namespace is the JSON-RPC namespace the ledger methods are served
// under, e.g. ledger_blockNumber.
const Namespace = "ledger"

// LedgerService exposes a Backend over JSON-RPC.
type LedgerService struct {
	backend Backend
}

// BlockNumber returns the current block height.
func (s *LedgerService) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	height, err := s.backend.BlockNumber(ctx)
	return hexutil.Uint64(height), err
}

// GasPrice returns the current price of one unit of gas.
func (s *LedgerService) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	price, err := s.backend.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return (*hexutil.Big)(price.ToBig()), nil
}

// GetTransactionCount returns the next nonce for addr.
func (s *LedgerService) GetTransactionCount(ctx context.Context, addr types.ID) (hexutil.Uint64, error) {
	nonce, err := s.backend.TransactionCount(ctx, addr)
	return hexutil.Uint64(nonce), err
}

// SendRawTransaction submits a serialized signed transaction.
func (s *LedgerService) SendRawTransaction(ctx context.Context, raw hexutil.Bytes) (types.ID, error) {
	hash, err := s.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		log.Debugw("Rejected raw transaction", "error", err)
	}
	return hash, err
}

// GetTransactionReceipt returns the receipt for hash or null if the
// transaction is still pending.
func (s *LedgerService) GetTransactionReceipt(ctx context.Context, hash types.ID) (*Receipt, error) {
	receipt, err := s.backend.TransactionReceipt(ctx, hash)
	if err != nil || receipt == nil {
		return nil, err
	}
	return marshalReceipt(receipt), nil
}

// GetLogs returns the logs matching query.
func (s *LedgerService) GetLogs(ctx context.Context, query FilterQuery) ([]Log, error) {
	logs, err := s.backend.Logs(ctx, query.toFilter())
	if err != nil {
		return nil, err
	}
	return marshalLogs(logs), nil
}

// Call runs a read-only contract method.
func (s *LedgerService) Call(ctx context.Context, to types.ID, data hexutil.Bytes) (hexutil.Bytes, error) {
	return s.backend.Call(ctx, to, data)
}
