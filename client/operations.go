// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/codec"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/proofgen"
	"github.com/project-illium/zswap/types"
)

// SwapResult is returned by a confirmed Swap.
type SwapResult struct {
	SwapID       types.ID
	TxHash       types.ID
	FeeCollected *uint256.Int
	BlockNumber  uint64
	Timestamp    time.Time
}

// BatchSwapResult is returned by a confirmed BatchSwap.
type BatchSwapResult struct {
	BatchID           types.ID
	TxHash            types.ID
	SwapCount         uint64
	TotalFeeCollected *uint256.Int
	BlockNumber       uint64
	Timestamp         time.Time
}

// StakeResult is returned by a confirmed Stake.
type StakeResult struct {
	StakeID           types.ID
	TxHash            types.ID
	Amount            *uint256.Int
	IsPremiumEligible bool
	BlockNumber       uint64
	Timestamp         time.Time
}

// UnstakeResult is returned by a confirmed Unstake.
type UnstakeResult struct {
	TxHash            types.ID
	Amount            *uint256.Int
	IsPremiumEligible bool
	BlockNumber       uint64
	Timestamp         time.Time
}

// LiquidityResult is returned by a confirmed AddLiquidity.
type LiquidityResult struct {
	PoolID       types.ID
	TxHash       types.ID
	SharesIssued *uint256.Int
	BlockNumber  uint64
	Timestamp    time.Time
}

// RemoveLiquidityResult is returned by a confirmed RemoveLiquidity.
type RemoveLiquidityResult struct {
	PoolID       types.ID
	TxHash       types.ID
	SharesBurned *uint256.Int
	AmountA      *uint256.Int
	AmountB      *uint256.Int
	BlockNumber  uint64
	Timestamp    time.Time
}

// WithdrawalResult is returned by ClaimRewards and EmergencyWithdraw.
// Amount is the NIGHT paid out.
type WithdrawalResult struct {
	TxHash      types.ID
	Amount      *uint256.Int
	BlockNumber uint64
	Timestamp   time.Time
}

// PauseResult is returned by a confirmed SetPaused.
type PauseResult struct {
	TxHash      types.ID
	Paused      bool
	BlockNumber uint64
	Timestamp   time.Time
}

// Swap trades the order's input asset for its output asset. The
// order's Deadline is a number of blocks from now. Swap blocks until
// the transaction is confirmed, reverted or the confirmation timeout
// passes.
func (c *Client) Swap(ctx context.Context, order types.SwapOrder) (res *SwapResult, err error) {
	defer c.recordErr(ctx, codec.MethodSwap, &err)

	if err := validateOrder(order); err != nil {
		return nil, err
	}
	log.Debugw("Swap validated", "input token", order.Input.TokenID, "output token", order.Output.TokenID)
	if err := c.checkNotPaused(ctx); err != nil {
		return nil, err
	}

	amount := order.Input.Amount.Value()
	balance, err := c.balance(ctx, order.Input.TokenID)
	if err != nil {
		return nil, err
	}
	proof, err := c.generator.GenerateBalanceProof(ctx, balance, amount)
	if err != nil {
		return nil, err
	}
	log.Debugw("Swap balance proof ready")

	legs, err := c.newCommitments(ctx, []types.Asset{order.Input, order.Output})
	if err != nil {
		return nil, err
	}
	defer c.release(legs)
	log.Debugw("Swap commitments created", "input", legs[0].Commitment(), "output", legs[1].Commitment())

	resolved, err := c.resolveDeadlines(ctx, []types.SwapOrder{order})
	if err != nil {
		return nil, err
	}
	sealed, err := sealNotes(legs)
	if err != nil {
		return nil, err
	}
	data, err := codec.EncodeFunction(codec.MethodSwap,
		codec.OrderArg(resolved[0]),
		codec.FixedIDsArg(2, commitmentIDs(legs)),
		codec.IDArg(types.ID(legs[0].Nullifier())),
		codec.BytesArg(sealed),
		codec.ProofArg(proof),
	)
	if err != nil {
		return nil, err
	}

	gas, err := GasUnits(codec.MethodSwap, 1)
	if err != nil {
		return nil, err
	}
	ev, receipt, err := c.execute(ctx, codec.MethodSwap, data, gas, codec.EventSwapExecuted, legs)
	if err != nil {
		return nil, err
	}
	swap, err := eventAs[*codec.SwapExecuted](ev)
	if err != nil {
		return nil, err
	}
	if err := c.notes.MarkSpent(legs[0].Nullifier()); err != nil {
		log.Errorw("Failed to mark nullifier spent", "error", err)
	}
	return &SwapResult{
		SwapID:       swap.SwapID,
		TxHash:       receipt.TxHash,
		FeeCollected: swap.FeeCollected,
		BlockNumber:  receipt.BlockNumber,
		Timestamp:    c.cfg.clock.Now(),
	}, nil
}

// BatchSwap submits between one and MaxBatchSize orders in a single
// transaction. Only premium users may batch. Each order's Deadline is
// a number of blocks from now.
func (c *Client) BatchSwap(ctx context.Context, batch *types.BatchSwapOrder) (res *BatchSwapResult, err error) {
	defer c.recordErr(ctx, codec.MethodBatchSwap, &err)

	if batch == nil {
		return nil, types.NewError(types.ErrInvalidInput, "batch is nil")
	}
	n := len(batch.Orders)
	if n == 0 || n > params.MaxBatchSize {
		return nil, types.NewError(types.ErrBatchSizeExceeded,
			fmt.Sprintf("batch has %d orders, must have between 1 and %d", n, params.MaxBatchSize))
	}
	for i, order := range batch.Orders {
		if err := validateOrder(order); err != nil {
			e := err.(types.Error)
			e.Description = fmt.Sprintf("order %d: %s", i, e.Description)
			return nil, e
		}
	}
	log.Debugw("Batch swap validated", "orders", n)
	if err := c.checkNotPaused(ctx); err != nil {
		return nil, err
	}

	premium, err := c.IsPremiumUser(ctx, c.owner)
	if err != nil {
		return nil, err
	}
	if !premium {
		return nil, types.NewError(types.ErrNotPremiumUser, "batch swaps require a premium stake")
	}
	stakeProof, err := c.generator.GenerateStakeProof(ctx, c.owner)
	if err != nil {
		return nil, err
	}

	required := make(map[types.ID]*uint256.Int)
	for _, order := range batch.Orders {
		r, ok := required[order.Input.TokenID]
		if !ok {
			r = new(uint256.Int)
			required[order.Input.TokenID] = r
		}
		if _, overflow := r.AddOverflow(r, order.Input.Amount.Value()); overflow {
			return nil, types.NewError(types.ErrInvalidInput, "batch input amounts overflow")
		}
	}
	for token, r := range required {
		balance, err := c.balance(ctx, token)
		if err != nil {
			return nil, err
		}
		if balance.Lt(r) {
			return nil, types.NewError(types.ErrInsufficientBalance, "balance is below the batch's total input of token "+token.String())
		}
	}

	proof, err := c.generator.GenerateBatchProof(ctx, batch.Orders)
	if err != nil {
		return nil, err
	}
	log.Debugw("Batch proof ready", "orders", n)

	assets := make([]types.Asset, 0, 2*n)
	for _, order := range batch.Orders {
		assets = append(assets, order.Input, order.Output)
	}
	legs, err := c.newCommitments(ctx, assets)
	if err != nil {
		return nil, err
	}
	defer c.release(legs)
	nullifiers := make([]types.ID, n)
	for i := range nullifiers {
		nullifiers[i] = types.ID(legs[2*i].Nullifier())
	}
	log.Debugw("Batch commitments created", "commitments", len(legs))

	resolved, err := c.resolveDeadlines(ctx, batch.Orders)
	if err != nil {
		return nil, err
	}
	sealed, err := sealNotes(legs)
	if err != nil {
		return nil, err
	}
	data, err := codec.EncodeFunction(codec.MethodBatchSwap,
		codec.BatchArg(types.NewBatchSwapOrder(resolved...)),
		codec.FixedIDsArg(params.MaxBatchCommitments, commitmentIDs(legs)),
		codec.IDsArg(nullifiers),
		codec.BytesArg(sealed),
		codec.ProofArg(proof),
		codec.ProofArg(stakeProof),
	)
	if err != nil {
		return nil, err
	}

	gas, err := GasUnits(codec.MethodBatchSwap, n)
	if err != nil {
		return nil, err
	}
	ev, receipt, err := c.execute(ctx, codec.MethodBatchSwap, data, gas, codec.EventBatchSwapExecuted, legs)
	if err != nil {
		return nil, err
	}
	executed, err := eventAs[*codec.BatchSwapExecuted](ev)
	if err != nil {
		return nil, err
	}
	spent := make([]types.Nullifier, n)
	for i := range spent {
		spent[i] = legs[2*i].Nullifier()
	}
	if err := c.notes.MarkSpent(spent...); err != nil {
		log.Errorw("Failed to mark nullifiers spent", "error", err)
	}
	return &BatchSwapResult{
		BatchID:           executed.BatchID,
		TxHash:            receipt.TxHash,
		SwapCount:         executed.SwapCount,
		TotalFeeCollected: executed.TotalFeeCollected,
		BlockNumber:       receipt.BlockNumber,
		Timestamp:         c.cfg.clock.Now(),
	}, nil
}

// Stake locks amount of NIGHT in the contract. A total stake above the
// premium threshold unlocks batch swaps.
func (c *Client) Stake(ctx context.Context, amount *uint256.Int) (res *StakeResult, err error) {
	defer c.recordErr(ctx, codec.MethodStake, &err)

	if err := validateAmount("stake amount", amount); err != nil {
		return nil, err
	}
	if err := c.checkNotPaused(ctx); err != nil {
		return nil, err
	}
	night := types.NewID(c.cfg.params.NightTokenID[:])
	balance, err := c.balance(ctx, night)
	if err != nil {
		return nil, err
	}
	proof, err := c.generator.GenerateBalanceProof(ctx, balance, amount)
	if err != nil {
		return nil, err
	}
	legs, err := c.newCommitments(ctx, []types.Asset{{TokenID: night, Amount: types.NewWitness(amount)}})
	if err != nil {
		return nil, err
	}
	defer c.release(legs)
	data, err := codec.EncodeFunction(codec.MethodStake,
		codec.UintArg(amount),
		codec.IDArg(legs[0].Commitment()),
		codec.ProofArg(proof),
	)
	if err != nil {
		return nil, err
	}

	gas, err := GasUnits(codec.MethodStake, 0)
	if err != nil {
		return nil, err
	}
	ev, receipt, err := c.execute(ctx, codec.MethodStake, data, gas, codec.EventStaked, legs)
	if err != nil {
		return nil, err
	}
	staked, err := eventAs[*codec.Staked](ev)
	if err != nil {
		return nil, err
	}
	return &StakeResult{
		StakeID:           staked.StakeID,
		TxHash:            receipt.TxHash,
		Amount:            staked.Amount,
		IsPremiumEligible: staked.PremiumEligible,
		BlockNumber:       receipt.BlockNumber,
		Timestamp:         c.cfg.clock.Now(),
	}, nil
}

// Unstake returns amount of staked NIGHT to the wallet.
func (c *Client) Unstake(ctx context.Context, amount *uint256.Int) (res *UnstakeResult, err error) {
	defer c.recordErr(ctx, codec.MethodUnstake, &err)

	if err := validateAmount("unstake amount", amount); err != nil {
		return nil, err
	}
	staked, err := c.StakedAmount(ctx, c.owner)
	if err != nil {
		return nil, err
	}
	if staked.Lt(amount) {
		return nil, types.NewError(types.ErrInsufficientBalance, "unstake amount exceeds the staked amount")
	}
	data, err := codec.EncodeFunction(codec.MethodUnstake, codec.UintArg(amount))
	if err != nil {
		return nil, err
	}

	gas, err := GasUnits(codec.MethodUnstake, 0)
	if err != nil {
		return nil, err
	}
	ev, receipt, err := c.execute(ctx, codec.MethodUnstake, data, gas, codec.EventUnstaked, nil)
	if err != nil {
		return nil, err
	}
	unstaked, err := eventAs[*codec.Unstaked](ev)
	if err != nil {
		return nil, err
	}
	return &UnstakeResult{
		TxHash:            receipt.TxHash,
		Amount:            unstaked.Amount,
		IsPremiumEligible: unstaked.PremiumEligible,
		BlockNumber:       receipt.BlockNumber,
		Timestamp:         c.cfg.clock.Now(),
	}, nil
}

// AddLiquidity deposits amountA of tokenA and amountB of tokenB into
// their pool, creating it if needed.
func (c *Client) AddLiquidity(ctx context.Context, tokenA, tokenB types.ID, amountA, amountB *uint256.Int) (res *LiquidityResult, err error) {
	defer c.recordErr(ctx, codec.MethodAddLiquidity, &err)

	if err := validateAmount("amount A", amountA); err != nil {
		return nil, err
	}
	if err := validateAmount("amount B", amountB); err != nil {
		return nil, err
	}
	if tokenA == tokenB {
		return nil, types.NewError(types.ErrPoolNotFound, "a pool needs two different tokens")
	}
	if err := c.checkNotPaused(ctx); err != nil {
		return nil, err
	}

	balanceA, err := c.balance(ctx, tokenA)
	if err != nil {
		return nil, err
	}
	balanceB, err := c.balance(ctx, tokenB)
	if err != nil {
		return nil, err
	}
	proofA, err := c.generator.GenerateBalanceProof(ctx, balanceA, amountA)
	if err != nil {
		return nil, err
	}
	proofB, err := c.generator.GenerateBalanceProof(ctx, balanceB, amountB)
	if err != nil {
		return nil, err
	}

	wA, wB := types.NewWitness(amountA), types.NewWitness(amountB)
	legs, err := c.newCommitments(ctx, []types.Asset{{TokenID: tokenA, Amount: wA}, {TokenID: tokenB, Amount: wB}})
	if err != nil {
		return nil, err
	}
	defer c.release(legs)
	data, err := codec.EncodeFunction(codec.MethodAddLiquidity,
		codec.IDArg(tokenA),
		codec.IDArg(tokenB),
		codec.WitnessArg(wA),
		codec.WitnessArg(wB),
		codec.FixedIDsArg(2, commitmentIDs(legs)),
		codec.ProofArg(proofA),
		codec.ProofArg(proofB),
	)
	if err != nil {
		return nil, err
	}

	gas, err := GasUnits(codec.MethodAddLiquidity, 0)
	if err != nil {
		return nil, err
	}
	ev, receipt, err := c.execute(ctx, codec.MethodAddLiquidity, data, gas, codec.EventLiquidityAdded, legs)
	if err != nil {
		return nil, err
	}
	added, err := eventAs[*codec.LiquidityAdded](ev)
	if err != nil {
		return nil, err
	}
	return &LiquidityResult{
		PoolID:       added.PoolID,
		TxHash:       receipt.TxHash,
		SharesIssued: added.SharesIssued,
		BlockNumber:  receipt.BlockNumber,
		Timestamp:    c.cfg.clock.Now(),
	}, nil
}

// RemoveLiquidity burns shares of the pool and returns the underlying
// tokens to the wallet.
func (c *Client) RemoveLiquidity(ctx context.Context, poolID types.ID, shares *uint256.Int) (res *RemoveLiquidityResult, err error) {
	defer c.recordErr(ctx, codec.MethodRemoveLiquidity, &err)

	if err := validateAmount("shares", shares); err != nil {
		return nil, err
	}
	exists, err := c.poolExists(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, types.NewError(types.ErrPoolNotFound, "pool "+poolID.String()+" does not exist")
	}
	data, err := codec.EncodeFunction(codec.MethodRemoveLiquidity, codec.IDArg(poolID), codec.UintArg(shares))
	if err != nil {
		return nil, err
	}

	gas, err := GasUnits(codec.MethodRemoveLiquidity, 0)
	if err != nil {
		return nil, err
	}
	ev, receipt, err := c.execute(ctx, codec.MethodRemoveLiquidity, data, gas, codec.EventLiquidityRemoved, nil)
	if err != nil {
		return nil, err
	}
	removed, err := eventAs[*codec.LiquidityRemoved](ev)
	if err != nil {
		return nil, err
	}
	return &RemoveLiquidityResult{
		PoolID:       removed.PoolID,
		TxHash:       receipt.TxHash,
		SharesBurned: removed.SharesBurned,
		AmountA:      removed.AmountA,
		AmountB:      removed.AmountB,
		BlockNumber:  receipt.BlockNumber,
		Timestamp:    c.cfg.clock.Now(),
	}, nil
}

// ClaimRewards pays out the NIGHT rewards accrued to the wallet.
func (c *Client) ClaimRewards(ctx context.Context) (res *WithdrawalResult, err error) {
	defer c.recordErr(ctx, codec.MethodClaimRewards, &err)

	if err := c.checkNotPaused(ctx); err != nil {
		return nil, err
	}
	data, err := codec.EncodeFunction(codec.MethodClaimRewards)
	if err != nil {
		return nil, err
	}

	gas, err := GasUnits(codec.MethodClaimRewards, 0)
	if err != nil {
		return nil, err
	}
	ev, receipt, err := c.execute(ctx, codec.MethodClaimRewards, data, gas, codec.EventRewardsClaimed, nil)
	if err != nil {
		return nil, err
	}
	claimed, err := eventAs[*codec.RewardsClaimed](ev)
	if err != nil {
		return nil, err
	}
	return &WithdrawalResult{
		TxHash:      receipt.TxHash,
		Amount:      claimed.Amount,
		BlockNumber: receipt.BlockNumber,
		Timestamp:   c.cfg.clock.Now(),
	}, nil
}

// EmergencyWithdraw returns the wallet's entire stake. It works while
// the contract is paused.
func (c *Client) EmergencyWithdraw(ctx context.Context) (res *WithdrawalResult, err error) {
	defer c.recordErr(ctx, codec.MethodEmergencyWithdraw, &err)

	staked, err := c.StakedAmount(ctx, c.owner)
	if err != nil {
		return nil, err
	}
	if staked.IsZero() {
		return nil, types.NewError(types.ErrInsufficientBalance, "nothing is staked")
	}
	data, err := codec.EncodeFunction(codec.MethodEmergencyWithdraw)
	if err != nil {
		return nil, err
	}

	gas, err := GasUnits(codec.MethodEmergencyWithdraw, 0)
	if err != nil {
		return nil, err
	}
	ev, receipt, err := c.execute(ctx, codec.MethodEmergencyWithdraw, data, gas, codec.EventEmergencyWithdrawal, nil)
	if err != nil {
		return nil, err
	}
	withdrawal, err := eventAs[*codec.EmergencyWithdrawal](ev)
	if err != nil {
		return nil, err
	}
	return &WithdrawalResult{
		TxHash:      receipt.TxHash,
		Amount:      withdrawal.Amount,
		BlockNumber: receipt.BlockNumber,
		Timestamp:   c.cfg.clock.Now(),
	}, nil
}

// SetPaused pauses or unpauses the contract. Only the developer wallet
// may do this.
func (c *Client) SetPaused(ctx context.Context, paused bool) (res *PauseResult, err error) {
	defer c.recordErr(ctx, codec.MethodSetPaused, &err)

	state, err := c.ContractState(ctx)
	if err != nil {
		return nil, err
	}
	if state.DeveloperWallet != c.owner {
		return nil, types.NewError(types.ErrUnauthorized, "only the developer wallet can pause the contract")
	}
	data, err := codec.EncodeFunction(codec.MethodSetPaused, codec.BoolArg(paused))
	if err != nil {
		return nil, err
	}

	gas, err := GasUnits(codec.MethodSetPaused, 0)
	if err != nil {
		return nil, err
	}
	ev, receipt, err := c.execute(ctx, codec.MethodSetPaused, data, gas, codec.EventPauseToggled, nil)
	if err != nil {
		return nil, err
	}
	toggled, err := eventAs[*codec.PauseToggled](ev)
	if err != nil {
		return nil, err
	}
	c.state.Clear()
	return &PauseResult{
		TxHash:      receipt.TxHash,
		Paused:      toggled.Paused,
		BlockNumber: receipt.BlockNumber,
		Timestamp:   c.cfg.clock.Now(),
	}, nil
}

// execute submits the call, retires its commitments, waits for the
// receipt and returns the named event from it.
func (c *Client) execute(ctx context.Context, method string, data []byte, gas uint64, event string, legs []*proofgen.SwapCommitment) (codec.ContractEvent, *types.Receipt, error) {
	txHash, err := c.send(ctx, method, data, gas)
	if err != nil {
		return nil, nil, err
	}
	for _, leg := range legs {
		c.generator.MarkCommitmentUsed(leg)
	}
	receipt, err := c.confirm(ctx, method, txHash)
	if err != nil {
		return nil, receipt, err
	}
	ev, _, err := codec.FindEvent(receipt.Logs, event)
	if err != nil {
		return nil, receipt, err
	}
	return ev, receipt, nil
}

func (c *Client) recordErr(ctx context.Context, method string, err *error) {
	if *err != nil {
		recordFailure(ctx, method, *err)
	}
}

func (c *Client) checkNotPaused(ctx context.Context) error {
	state, err := c.ContractState(ctx)
	if err != nil {
		return err
	}
	if state.IsPaused {
		return types.NewError(types.ErrContractPaused, "contract is paused")
	}
	return nil
}

func (c *Client) balance(ctx context.Context, token types.ID) (*uint256.Int, error) {
	balance, err := c.cfg.wallet.Balance(ctx, token)
	if err != nil {
		return nil, networkError("balance lookup failed", err)
	}
	return balance, nil
}

// newCommitments issues one commitment per asset and starts tracking
// the notes. A commitment already bound by this or another running
// operation is retired and replaced with a fresh one. The caller must
// release the returned commitments when the operation ends.
func (c *Client) newCommitments(ctx context.Context, assets []types.Asset) ([]*proofgen.SwapCommitment, error) {
	legs := make([]*proofgen.SwapCommitment, 0, len(assets))
	for _, asset := range assets {
		leg, err := c.generator.GenerateSwapCommitment(ctx, asset.TokenID, asset.Amount.Value())
		for err == nil && !c.claim(leg) {
			c.generator.MarkCommitmentUsed(leg)
			leg, err = c.generator.GenerateSwapCommitment(ctx, asset.TokenID, asset.Amount.Value())
		}
		if err == nil {
			legs = append(legs, leg)
			err = c.notes.Add(leg.Note)
		}
		if err != nil {
			c.release(legs)
			return nil, err
		}
	}
	return legs, nil
}

func (c *Client) claim(leg *proofgen.SwapCommitment) bool {
	c.inflightMtx.Lock()
	defer c.inflightMtx.Unlock()
	if _, ok := c.inflight[leg.Commitment()]; ok {
		return false
	}
	c.inflight[leg.Commitment()] = struct{}{}
	return true
}

func (c *Client) release(legs []*proofgen.SwapCommitment) {
	c.inflightMtx.Lock()
	defer c.inflightMtx.Unlock()
	for _, leg := range legs {
		delete(c.inflight, leg.Commitment())
	}
}

// resolveDeadlines converts each order's relative deadline into an
// absolute block height.
func (c *Client) resolveDeadlines(ctx context.Context, orders []types.SwapOrder) ([]types.SwapOrder, error) {
	height, err := c.cfg.rpc.BlockNumber(ctx)
	if err != nil {
		return nil, networkError("block height lookup failed", err)
	}
	resolved := make([]types.SwapOrder, len(orders))
	for i, order := range orders {
		deadline, carry := bits.Add64(order.Deadline, height, 0)
		if carry != 0 {
			return nil, types.NewError(types.ErrDeadlineExceeded,
				fmt.Sprintf("deadline of %d blocks overflows the block height", order.Deadline))
		}
		order.Deadline = deadline
		resolved[i] = order
	}
	return resolved, nil
}

func validateOrder(order types.SwapOrder) error {
	if order.Input.Amount.IsZero() {
		return types.NewError(types.ErrInvalidInput, "input amount must be positive")
	}
	if order.MinOutputAmount.IsZero() {
		return types.NewError(types.ErrSlippageExceeded, "minimum output amount must be positive")
	}
	if order.Deadline == 0 {
		return types.NewError(types.ErrDeadlineExceeded, "deadline must be at least one block")
	}
	if order.Input.TokenID == order.Output.TokenID {
		return types.NewError(types.ErrPoolNotFound, "input and output tokens are the same")
	}
	return nil
}

func validateAmount(what string, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return types.NewError(types.ErrInvalidInput, what+" must be positive")
	}
	return nil
}

func commitmentIDs(legs []*proofgen.SwapCommitment) []types.ID {
	ids := make([]types.ID, len(legs))
	for i, leg := range legs {
		ids[i] = leg.Commitment()
	}
	return ids
}

// sealNotes packs the encrypted note of every leg into one byte string.
func sealNotes(legs []*proofgen.SwapCommitment) ([]byte, error) {
	e := codec.NewEncoder(nil)
	for _, leg := range legs {
		e.ByteString(leg.EncryptedNote)
	}
	return e.Bytes()
}

func eventAs[T codec.ContractEvent](ev codec.ContractEvent) (T, error) {
	t, ok := ev.(T)
	if !ok {
		var zero T
		return zero, types.NewError(types.ErrDecode, "unexpected event "+ev.EventName())
	}
	return t, nil
}
