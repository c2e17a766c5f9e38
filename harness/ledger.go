// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package harness provides an in-memory ledger running the swap
// contract. It answers the same calls as a real ledger RPC endpoint and
// is used to exercise the client end to end.
package harness

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/wallet"
)

var (
	// ErrNonceTooLow is returned when a transaction reuses a nonce.
	ErrNonceTooLow = errors.New("nonce too low")
	// ErrNonceTooHigh is returned when a transaction skips a nonce.
	ErrNonceTooHigh = errors.New("nonce too high")
	// ErrWrongContract is returned for transactions not addressed to
	// the swap contract.
	ErrWrongContract = errors.New("transaction is not addressed to the contract")
)

type pendingTx struct {
	hash   types.ID
	sender types.ID
	tx     *types.UnsignedTransaction
}

// Ledger is a simulated ledger hosting a single swap contract.
type Ledger struct {
	cfg      *config
	contract *contract
	address  types.ID

	height   uint64
	gasPrice *uint256.Int
	nonces   map[types.ID]uint64
	pending  []pendingTx
	receipts map[types.ID]*types.Receipt
	logs     []types.Log

	calls    map[string]int
	failures map[string][]error

	mtx sync.Mutex
}

// NewLedger returns a new Ledger at height zero. The DefaultOptions are
// applied before opts.
func NewLedger(opts ...Option) (*Ledger, error) {
	var cfg config
	for _, opt := range append([]Option{DefaultOptions()}, opts...) {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Ledger{
		cfg:      &cfg,
		contract: newContract(cfg.params, cfg.developer, cfg.verifier),
		address:  types.NewID(cfg.params.ContractAddress[:]),
		gasPrice: cfg.gasPrice.Clone(),
		nonces:   make(map[types.ID]uint64),
		receipts: make(map[types.ID]*types.Receipt),
		calls:    make(map[string]int),
		failures: make(map[string][]error),
	}, nil
}

// Params returns the network params the ledger was created with.
func (l *Ledger) Params() *params.NetworkParams {
	return l.cfg.params
}

// Fund credits amount of token to user.
func (l *Ledger) Fund(user, token types.ID, amount *uint256.Int) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.contract.credit(user, token, amount)
}

// AddRewards credits claimable rewards to user.
func (l *Ledger) AddRewards(user types.ID, amount *uint256.Int) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.contract.addRewards(user, amount)
}

// SetPaused pauses or unpauses the contract directly.
func (l *Ledger) SetPaused(paused bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.contract.paused = paused
}

// SetGasPrice sets the price returned by GasPrice.
func (l *Ledger) SetGasPrice(price uint64) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.gasPrice = uint256.NewInt(price)
}

// FailNext makes the next call to the named RPC method return err.
// Failures queue up when called more than once.
func (l *Ledger) FailNext(method string, err error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.failures[method] = append(l.failures[method], err)
}

// CallCount returns how many times the named RPC method, or contract
// read method for Call, has been invoked.
func (l *Ledger) CallCount(method string) int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.calls[method]
}

// PendingCount returns the number of submitted but unmined
// transactions.
func (l *Ledger) PendingCount() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.pending)
}

// Mine includes every pending transaction in a new block and returns
// its height.
func (l *Ledger) Mine() uint64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.mine()
}

// MineEmpty advances the chain by n empty blocks.
func (l *Ledger) MineEmpty(n int) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.height += uint64(n)
}

func (l *Ledger) mine() uint64 {
	l.height++
	var index uint
	for _, p := range l.pending {
		receipt := &types.Receipt{
			TxHash:      p.hash,
			BlockNumber: l.height,
		}
		events, gasUsed, err := l.contract.execute(p.sender, p.tx, l.height)
		receipt.GasUsed = gasUsed
		if err != nil {
			log.Debugw("Transaction reverted", "tx", p.hash, "reason", err)
		} else {
			receipt.Status = true
			for _, ev := range events {
				ev.Address = l.address
				ev.BlockNumber = l.height
				ev.TxHash = p.hash
				ev.Index = index
				index++
				receipt.Logs = append(receipt.Logs, ev)
				l.logs = append(l.logs, ev)
			}
		}
		l.receipts[p.hash] = receipt
	}
	l.pending = nil
	return l.height
}

func (l *Ledger) enter(method string) error {
	l.calls[method]++
	if q := l.failures[method]; len(q) > 0 {
		l.failures[method] = q[1:]
		return q[0]
	}
	return nil
}

// BlockNumber returns the current height.
func (l *Ledger) BlockNumber(ctx context.Context) (uint64, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err := l.enter("BlockNumber"); err != nil {
		return 0, err
	}
	return l.height, nil
}

// GasPrice returns the current gas price.
func (l *Ledger) GasPrice(ctx context.Context) (*uint256.Int, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err := l.enter("GasPrice"); err != nil {
		return nil, err
	}
	return l.gasPrice.Clone(), nil
}

// TransactionCount returns the next nonce for addr, counting pending
// transactions.
func (l *Ledger) TransactionCount(ctx context.Context, addr types.ID) (uint64, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err := l.enter("TransactionCount"); err != nil {
		return 0, err
	}
	return l.nonces[addr], nil
}

// SendRawTransaction validates a signed transaction and queues it. With
// auto mining enabled it is mined before this returns.
func (l *Ledger) SendRawTransaction(ctx context.Context, raw []byte) (types.ID, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err := l.enter("SendRawTransaction"); err != nil {
		return types.ID{}, err
	}
	signed, sender, err := wallet.VerifyTransaction(raw)
	if err != nil {
		return types.ID{}, err
	}
	if signed.Tx.To != l.address {
		return types.ID{}, ErrWrongContract
	}
	expected := l.nonces[sender]
	switch {
	case signed.Tx.Nonce < expected:
		return types.ID{}, fmt.Errorf("%w: got %d, expected %d", ErrNonceTooLow, signed.Tx.Nonce, expected)
	case signed.Tx.Nonce > expected:
		return types.ID{}, fmt.Errorf("%w: got %d, expected %d", ErrNonceTooHigh, signed.Tx.Nonce, expected)
	}
	l.nonces[sender]++

	hash := signed.Hash()
	l.pending = append(l.pending, pendingTx{hash: hash, sender: sender, tx: &signed.Tx})
	if l.cfg.autoMine {
		l.mine()
	}
	return hash, nil
}

// TransactionReceipt returns the receipt of a mined transaction or nil
// if the transaction is unknown or still pending.
func (l *Ledger) TransactionReceipt(ctx context.Context, txHash types.ID) (*types.Receipt, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err := l.enter("TransactionReceipt"); err != nil {
		return nil, err
	}
	r, ok := l.receipts[txHash]
	if !ok {
		return nil, nil
	}
	cpy := *r
	cpy.Logs = append([]types.Log(nil), r.Logs...)
	return &cpy, nil
}

// Logs returns every log matching filter in block order.
func (l *Ledger) Logs(ctx context.Context, filter types.LogFilter) ([]types.Log, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err := l.enter("Logs"); err != nil {
		return nil, err
	}
	var ret []types.Log
	for i := range l.logs {
		if filter.Matches(&l.logs[i]) {
			ret = append(ret, l.logs[i])
		}
	}
	return ret, nil
}

// Call runs a read-only contract method.
func (l *Ledger) Call(ctx context.Context, to types.ID, data []byte) ([]byte, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err := l.enter("Call"); err != nil {
		return nil, err
	}
	if to != l.address {
		return nil, ErrWrongContract
	}
	method, ret, err := l.contract.call(data)
	if method != "" {
		l.calls[method]++
	}
	return ret, err
}
