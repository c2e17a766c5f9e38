// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package rpc

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/project-illium/zswap/types"
)

// Log is the JSON form of types.Log.
type Log struct {
	Address     types.ID       `json:"address"`
	Topics      []types.ID     `json:"topics"`
	Data        hexutil.Bytes  `json:"data"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	TxHash      types.ID       `json:"transactionHash"`
	Index       hexutil.Uint   `json:"logIndex"`
}

// Receipt is the JSON form of types.Receipt. Status is 1 for success
// and 0 for a reverted transaction.
type Receipt struct {
	TxHash      types.ID       `json:"transactionHash"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	Status      hexutil.Uint64 `json:"status"`
	GasUsed     hexutil.Uint64 `json:"gasUsed"`
	Logs        []Log          `json:"logs"`
}

// FilterQuery is the JSON form of types.LogFilter.
type FilterQuery struct {
	Address   types.ID       `json:"address"`
	FromBlock hexutil.Uint64 `json:"fromBlock"`
	ToBlock   hexutil.Uint64 `json:"toBlock"`
	Topics    []types.ID     `json:"topics,omitempty"`
}

func marshalLog(l *types.Log) Log {
	return Log{
		Address:     l.Address,
		Topics:      l.Topics,
		Data:        l.Data,
		BlockNumber: hexutil.Uint64(l.BlockNumber),
		TxHash:      l.TxHash,
		Index:       hexutil.Uint(l.Index),
	}
}

func (l *Log) toLog() types.Log {
	return types.Log{
		Address:     l.Address,
		Topics:      l.Topics,
		Data:        l.Data,
		BlockNumber: uint64(l.BlockNumber),
		TxHash:      l.TxHash,
		Index:       uint(l.Index),
	}
}

func marshalLogs(logs []types.Log) []Log {
	ret := make([]Log, 0, len(logs))
	for i := range logs {
		ret = append(ret, marshalLog(&logs[i]))
	}
	return ret
}

func unmarshalLogs(logs []Log) []types.Log {
	if len(logs) == 0 {
		return nil
	}
	ret := make([]types.Log, 0, len(logs))
	for i := range logs {
		ret = append(ret, logs[i].toLog())
	}
	return ret
}

func marshalReceipt(r *types.Receipt) *Receipt {
	ret := &Receipt{
		TxHash:      r.TxHash,
		BlockNumber: hexutil.Uint64(r.BlockNumber),
		GasUsed:     hexutil.Uint64(r.GasUsed),
		Logs:        marshalLogs(r.Logs),
	}
	if r.Status {
		ret.Status = 1
	}
	return ret
}

func (r *Receipt) toReceipt() *types.Receipt {
	return &types.Receipt{
		TxHash:      r.TxHash,
		BlockNumber: uint64(r.BlockNumber),
		Status:      r.Status == 1,
		GasUsed:     uint64(r.GasUsed),
		Logs:        unmarshalLogs(r.Logs),
	}
}

func marshalFilter(f *types.LogFilter) FilterQuery {
	return FilterQuery{
		Address:   f.Address,
		FromBlock: hexutil.Uint64(f.FromBlock),
		ToBlock:   hexutil.Uint64(f.ToBlock),
		Topics:    f.Topics,
	}
}

func (q *FilterQuery) toFilter() types.LogFilter {
	return types.LogFilter{
		Address:   q.Address,
		FromBlock: uint64(q.FromBlock),
		ToBlock:   uint64(q.ToBlock),
		Topics:    q.Topics,
	}
}
