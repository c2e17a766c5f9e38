// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package harness

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/project-illium/zswap/codec"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/wallet"
	"github.com/project-illium/zswap/zk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const night = params.NanosPerNight

type testAccount struct {
	ks *wallet.Keystore
	id types.ID
}

func newAccount(t *testing.T, l *Ledger) *testAccount {
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	ks, err := wallet.NewKeystore(priv, l, l.Params())
	require.NoError(t, err)
	id, err := ks.Address(context.Background())
	require.NoError(t, err)
	return &testAccount{ks: ks, id: id}
}

func (a *testAccount) submit(t *testing.T, l *Ledger, data []byte) *types.Receipt {
	ctx := context.Background()
	nonce, err := l.TransactionCount(ctx, a.id)
	require.NoError(t, err)
	raw, err := a.ks.SignTransaction(ctx, &types.UnsignedTransaction{
		To:       types.NewID(l.Params().ContractAddress[:]),
		Data:     data,
		Value:    new(uint256.Int),
		Nonce:    nonce,
		GasLimit: 1_000_000,
	})
	require.NoError(t, err)
	hash, err := l.SendRawTransaction(ctx, raw)
	require.NoError(t, err)
	receipt, err := l.TransactionReceipt(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	return receipt
}

func prove(t *testing.T, circuit zk.Circuit, private, public uint64) *types.BalanceProof {
	proof, err := (&zk.MockProver{}).Prove(context.Background(), circuit,
		[]uint256.Int{*uint256.NewInt(private)}, []uint256.Int{*uint256.NewInt(public)})
	require.NoError(t, err)
	return proof
}

func tokens(l *Ledger) (types.ID, types.ID) {
	return types.NewID(l.Params().NightTokenID[:]), types.NewID(l.Params().DustTokenID[:])
}

func swapCall(t *testing.T, in, out types.ID, amount, minOut, deadline uint64, nullifier types.ID) []byte {
	order := types.SwapOrder{
		Input:           types.Asset{TokenID: in, Amount: types.WitnessFromUint64(amount)},
		Output:          types.Asset{TokenID: out, Amount: types.WitnessFromUint64(minOut)},
		MinOutputAmount: types.WitnessFromUint64(minOut),
		Deadline:        deadline,
	}
	data, err := codec.EncodeFunction(codec.MethodSwap,
		codec.OrderArg(order),
		codec.FixedIDsArg(2, []types.ID{types.NewIDFromData(nullifier[:]), types.NewIDFromData(append([]byte("out"), nullifier[:]...))}),
		codec.IDArg(nullifier),
		codec.BytesArg([]byte{0x01}),
		codec.ProofArg(prove(t, zk.BalanceCircuit{}, amount, amount)),
	)
	require.NoError(t, err)
	return data
}

func readUint(t *testing.T, l *Ledger, method string, args ...codec.Arg) *uint256.Int {
	data, err := codec.EncodeFunction(method, args...)
	require.NoError(t, err)
	ret, err := l.Call(context.Background(), types.NewID(l.Params().ContractAddress[:]), data)
	require.NoError(t, err)
	v, err := codec.DecodeUint(ret)
	require.NoError(t, err)
	return v
}

func readBool(t *testing.T, l *Ledger, method string, args ...codec.Arg) bool {
	data, err := codec.EncodeFunction(method, args...)
	require.NoError(t, err)
	ret, err := l.Call(context.Background(), types.NewID(l.Params().ContractAddress[:]), data)
	require.NoError(t, err)
	v, err := codec.DecodeBool(ret)
	require.NoError(t, err)
	return v
}

func TestLedgerNonces(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	acct := newAccount(t, l)
	ctx := context.Background()

	data, err := codec.EncodeFunction(codec.MethodClaimRewards)
	require.NoError(t, err)

	sign := func(nonce uint64) []byte {
		raw, err := acct.ks.SignTransaction(ctx, &types.UnsignedTransaction{
			To:       types.NewID(l.Params().ContractAddress[:]),
			Data:     data,
			Nonce:    nonce,
			GasLimit: 100_000,
		})
		require.NoError(t, err)
		return raw
	}

	_, err = l.SendRawTransaction(ctx, sign(1))
	assert.ErrorIs(t, err, ErrNonceTooHigh)

	_, err = l.SendRawTransaction(ctx, sign(0))
	require.NoError(t, err)

	_, err = l.SendRawTransaction(ctx, sign(0))
	assert.ErrorIs(t, err, ErrNonceTooLow)

	n, err := l.TransactionCount(ctx, acct.id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	height, err := l.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), height)
}

func TestLedgerWrongContract(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	acct := newAccount(t, l)
	ctx := context.Background()

	raw, err := acct.ks.SignTransaction(ctx, &types.UnsignedTransaction{
		To:       types.NewIDFromData([]byte("elsewhere")),
		GasLimit: 100_000,
	})
	require.NoError(t, err)
	_, err = l.SendRawTransaction(ctx, raw)
	assert.ErrorIs(t, err, ErrWrongContract)

	_, err = l.Call(ctx, types.NewIDFromData([]byte("elsewhere")), nil)
	assert.ErrorIs(t, err, ErrWrongContract)
}

func TestLedgerSwap(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	acct := newAccount(t, l)
	nightID, dustID := tokens(l)
	l.Fund(acct.id, nightID, uint256.NewInt(10*night))

	nullifier := types.NewIDFromData([]byte("nullifier"))
	receipt := acct.submit(t, l, swapCall(t, nightID, dustID, night, night/2, 100, nullifier))
	require.True(t, receipt.Status)

	ev, _, err := codec.FindEvent(receipt.Logs, codec.EventSwapExecuted)
	require.NoError(t, err)
	swap := ev.(*codec.SwapExecuted)
	assert.Equal(t, acct.id, swap.User)
	assert.Equal(t, uint64(5_000_000), swap.FeeCollected.Uint64())

	assert.Equal(t, uint64(9*night), readUint(t, l, codec.MethodBalanceOf, codec.IDArg(acct.id), codec.IDArg(nightID)).Uint64())
	assert.Equal(t, uint64(night-5_000_000), readUint(t, l, codec.MethodBalanceOf, codec.IDArg(acct.id), codec.IDArg(dustID)).Uint64())
	assert.True(t, readBool(t, l, codec.MethodIsNullifierSpent, codec.IDArg(nullifier)))
	assert.Equal(t, 2, l.CallCount(codec.MethodBalanceOf))

	// Reusing the nullifier reverts.
	receipt = acct.submit(t, l, swapCall(t, nightID, dustID, night, night/2, 100, nullifier))
	assert.False(t, receipt.Status)
	assert.Empty(t, receipt.Logs)
}

func TestLedgerSwapReverts(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	acct := newAccount(t, l)
	nightID, dustID := tokens(l)
	l.Fund(acct.id, nightID, uint256.NewInt(night))

	tests := []struct {
		name string
		data func(n types.ID) []byte
	}{
		{
			name: "slippage",
			data: func(n types.ID) []byte { return swapCall(t, nightID, dustID, night, night, 100, n) },
		},
		{
			name: "deadline",
			data: func(n types.ID) []byte { return swapCall(t, nightID, dustID, night, 1, 0, n) },
		},
		{
			name: "same token",
			data: func(n types.ID) []byte { return swapCall(t, nightID, nightID, night, 1, 100, n) },
		},
		{
			name: "balance",
			data: func(n types.ID) []byte { return swapCall(t, nightID, dustID, 2*night, 1, 100, n) },
		},
	}
	for i, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			receipt := acct.submit(t, l, test.data(types.NewIDFromData([]byte{byte(i)})))
			assert.False(t, receipt.Status)
		})
	}
	assert.Equal(t, uint64(night), readUint(t, l, codec.MethodBalanceOf, codec.IDArg(acct.id), codec.IDArg(nightID)).Uint64())

	l.SetPaused(true)
	receipt := acct.submit(t, l, swapCall(t, nightID, dustID, night/2, 1, 100, types.NewIDFromData([]byte("p"))))
	assert.False(t, receipt.Status)
}

func TestLedgerInvalidProof(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	acct := newAccount(t, l)
	nightID, _ := tokens(l)
	l.Fund(acct.id, nightID, uint256.NewInt(10*night))

	// Proof over a different amount than the one being staked.
	data, err := codec.EncodeFunction(codec.MethodStake,
		codec.Uint64Arg(2*night),
		codec.IDArg(types.NewIDFromData([]byte("commitment"))),
		codec.ProofArg(prove(t, zk.BalanceCircuit{}, night, night)),
	)
	require.NoError(t, err)
	receipt := acct.submit(t, l, data)
	assert.False(t, receipt.Status)
}

func TestLedgerStaking(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	acct := newAccount(t, l)
	nightID, _ := tokens(l)
	l.Fund(acct.id, nightID, uint256.NewInt(200*night))

	stake := func(amount uint64, commitment string) *types.Receipt {
		data, err := codec.EncodeFunction(codec.MethodStake,
			codec.Uint64Arg(amount),
			codec.IDArg(types.NewIDFromData([]byte(commitment))),
			codec.ProofArg(prove(t, zk.BalanceCircuit{}, amount, amount)),
		)
		require.NoError(t, err)
		return acct.submit(t, l, data)
	}

	receipt := stake(100*night, "a")
	require.True(t, receipt.Status)
	ev, _, err := codec.FindEvent(receipt.Logs, codec.EventStaked)
	require.NoError(t, err)
	assert.False(t, ev.(*codec.Staked).PremiumEligible)
	assert.False(t, readBool(t, l, codec.MethodIsPremiumUser, codec.IDArg(acct.id)))

	receipt = stake(1, "b")
	require.True(t, receipt.Status)
	ev, _, err = codec.FindEvent(receipt.Logs, codec.EventStaked)
	require.NoError(t, err)
	assert.True(t, ev.(*codec.Staked).PremiumEligible)
	assert.True(t, readBool(t, l, codec.MethodIsPremiumUser, codec.IDArg(acct.id)))

	// Commitments may not repeat.
	assert.False(t, stake(1, "b").Status)

	data, err := codec.EncodeFunction(codec.MethodUnstake, codec.Uint64Arg(1))
	require.NoError(t, err)
	receipt = acct.submit(t, l, data)
	require.True(t, receipt.Status)
	ev, _, err = codec.FindEvent(receipt.Logs, codec.EventUnstaked)
	require.NoError(t, err)
	assert.False(t, ev.(*codec.Unstaked).PremiumEligible)
	assert.Equal(t, uint64(100*night), readUint(t, l, codec.MethodStakedAmount, codec.IDArg(acct.id)).Uint64())

	data, err = codec.EncodeFunction(codec.MethodEmergencyWithdraw)
	require.NoError(t, err)
	receipt = acct.submit(t, l, data)
	require.True(t, receipt.Status)
	ev, _, err = codec.FindEvent(receipt.Logs, codec.EventEmergencyWithdrawal)
	require.NoError(t, err)
	assert.Equal(t, uint64(100*night), ev.(*codec.EmergencyWithdrawal).Amount.Uint64())
	assert.Equal(t, uint64(200*night), readUint(t, l, codec.MethodBalanceOf, codec.IDArg(acct.id), codec.IDArg(nightID)).Uint64())
}

func TestLedgerBatchSwapStakeProof(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	acct := newAccount(t, l)
	nightID, dustID := tokens(l)
	l.Fund(acct.id, nightID, uint256.NewInt(200*night))

	data, err := codec.EncodeFunction(codec.MethodStake,
		codec.Uint64Arg(150*night),
		codec.IDArg(types.NewIDFromData([]byte("stake"))),
		codec.ProofArg(prove(t, zk.BalanceCircuit{}, 150*night, 150*night)),
	)
	require.NoError(t, err)
	require.True(t, acct.submit(t, l, data).Status)

	batchProof, err := (&zk.MockProver{}).Prove(context.Background(), zk.BatchCircuit{},
		[]uint256.Int{*uint256.NewInt(night), *uint256.NewInt(1)}, []uint256.Int{*uint256.NewInt(1)})
	require.NoError(t, err)
	batchCall := func(nullifier string, stakeProof *types.BalanceProof) []byte {
		order := types.SwapOrder{
			Input:           types.Asset{TokenID: nightID, Amount: types.WitnessFromUint64(night)},
			Output:          types.Asset{TokenID: dustID, Amount: types.WitnessFromUint64(1)},
			MinOutputAmount: types.WitnessFromUint64(1),
			Deadline:        100,
		}
		n := types.NewIDFromData([]byte(nullifier))
		data, err := codec.EncodeFunction(codec.MethodBatchSwap,
			codec.BatchArg(types.NewBatchSwapOrder(order)),
			codec.FixedIDsArg(params.MaxBatchCommitments, []types.ID{types.NewIDFromData(n[:])}),
			codec.IDsArg([]types.ID{n}),
			codec.BytesArg(nil),
			codec.ProofArg(batchProof),
			codec.ProofArg(stakeProof),
		)
		require.NoError(t, err)
		return data
	}

	// A balance proof over the threshold is not a stake proof.
	wrongCircuit := prove(t, zk.BalanceCircuit{}, params.PremiumThresholdNanos, params.PremiumThresholdNanos)
	assert.False(t, acct.submit(t, l, batchCall("a", wrongCircuit)).Status)
	// A stake proof against a lower threshold is rejected.
	lowThreshold := prove(t, zk.StakeCircuit{}, 150*night, night)
	assert.False(t, acct.submit(t, l, batchCall("b", lowThreshold)).Status)

	stakeProof := prove(t, zk.StakeCircuit{}, 150*night, params.PremiumThresholdNanos)
	receipt := acct.submit(t, l, batchCall("c", stakeProof))
	require.True(t, receipt.Status)
	ev, _, err := codec.FindEvent(receipt.Logs, codec.EventBatchSwapExecuted)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ev.(*codec.BatchSwapExecuted).SwapCount)
}

func TestLedgerRewards(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	acct := newAccount(t, l)
	nightID, _ := tokens(l)
	l.AddRewards(acct.id, uint256.NewInt(42))

	data, err := codec.EncodeFunction(codec.MethodClaimRewards)
	require.NoError(t, err)
	receipt := acct.submit(t, l, data)
	require.True(t, receipt.Status)
	ev, _, err := codec.FindEvent(receipt.Logs, codec.EventRewardsClaimed)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), ev.(*codec.RewardsClaimed).Amount.Uint64())
	assert.Equal(t, uint64(42), readUint(t, l, codec.MethodBalanceOf, codec.IDArg(acct.id), codec.IDArg(nightID)).Uint64())
}

func TestLedgerLiquidity(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	acct := newAccount(t, l)
	nightID, dustID := tokens(l)
	l.Fund(acct.id, nightID, uint256.NewInt(1000))
	l.Fund(acct.id, dustID, uint256.NewInt(1000))

	add := func(a, b uint64) *types.Receipt {
		data, err := codec.EncodeFunction(codec.MethodAddLiquidity,
			codec.IDArg(dustID),
			codec.IDArg(nightID),
			codec.WitnessArg(types.WitnessFromUint64(a)),
			codec.WitnessArg(types.WitnessFromUint64(b)),
			codec.FixedIDsArg(2, nil),
			codec.ProofArg(prove(t, zk.BalanceCircuit{}, a, a)),
			codec.ProofArg(prove(t, zk.BalanceCircuit{}, b, b)),
		)
		require.NoError(t, err)
		return acct.submit(t, l, data)
	}

	receipt := add(100, 400)
	require.True(t, receipt.Status)
	ev, _, err := codec.FindEvent(receipt.Logs, codec.EventLiquidityAdded)
	require.NoError(t, err)
	added := ev.(*codec.LiquidityAdded)
	assert.Equal(t, uint64(200), added.SharesIssued.Uint64())
	assert.Equal(t, poolID(nightID, dustID), added.PoolID)
	assert.True(t, readBool(t, l, codec.MethodPoolExists, codec.IDArg(added.PoolID)))

	receipt = add(50, 200)
	require.True(t, receipt.Status)
	ev, _, err = codec.FindEvent(receipt.Logs, codec.EventLiquidityAdded)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), ev.(*codec.LiquidityAdded).SharesIssued.Uint64())

	data, err := codec.EncodeFunction(codec.MethodRemoveLiquidity, codec.IDArg(added.PoolID), codec.Uint64Arg(150))
	require.NoError(t, err)
	receipt = acct.submit(t, l, data)
	require.True(t, receipt.Status)
	ev, _, err = codec.FindEvent(receipt.Logs, codec.EventLiquidityRemoved)
	require.NoError(t, err)
	removed := ev.(*codec.LiquidityRemoved)
	assert.Equal(t, uint64(150), removed.SharesBurned.Uint64())
	assert.Equal(t, uint64(75), removed.AmountA.Uint64())
	assert.Equal(t, uint64(300), removed.AmountB.Uint64())
	assert.Equal(t, uint64(925), readUint(t, l, codec.MethodBalanceOf, codec.IDArg(acct.id), codec.IDArg(dustID)).Uint64())

	data, err = codec.EncodeFunction(codec.MethodRemoveLiquidity, codec.IDArg(types.NewIDFromData([]byte("none"))), codec.Uint64Arg(1))
	require.NoError(t, err)
	assert.False(t, acct.submit(t, l, data).Status)
	assert.False(t, readBool(t, l, codec.MethodPoolExists, codec.IDArg(types.NewIDFromData([]byte("none")))))
}

func TestLedgerSetPaused(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	dev := newAccount(t, l)
	other := newAccount(t, l)

	l2, err := NewLedger(Developer(dev.id))
	require.NoError(t, err)

	data, err := codec.EncodeFunction(codec.MethodSetPaused, codec.BoolArg(true))
	require.NoError(t, err)

	assert.False(t, other.submit(t, l2, data).Status)

	receipt := dev.submit(t, l2, data)
	require.True(t, receipt.Status)
	ev, _, err := codec.FindEvent(receipt.Logs, codec.EventPauseToggled)
	require.NoError(t, err)
	assert.Equal(t, dev.id, ev.(*codec.PauseToggled).By)
	assert.True(t, ev.(*codec.PauseToggled).Paused)

	call, err := codec.EncodeFunction(codec.MethodGetContractState)
	require.NoError(t, err)
	ret, err := l2.Call(context.Background(), types.NewID(l2.Params().ContractAddress[:]), call)
	require.NoError(t, err)
	state, err := codec.DecodeContractState(ret)
	require.NoError(t, err)
	assert.True(t, state.IsPaused)
	assert.Equal(t, dev.id, state.DeveloperWallet)
	assert.Equal(t, uint64(params.FeeRateBps), state.FeeRateBps)
	assert.Equal(t, uint64(params.MaxBatchSize), state.MaxBatchSize)
}

func TestLedgerManualMining(t *testing.T) {
	l, err := NewLedger(AutoMine(false))
	require.NoError(t, err)
	acct := newAccount(t, l)
	ctx := context.Background()

	data, err := codec.EncodeFunction(codec.MethodClaimRewards)
	require.NoError(t, err)
	raw, err := acct.ks.SignTransaction(ctx, &types.UnsignedTransaction{
		To:       types.NewID(l.Params().ContractAddress[:]),
		Data:     data,
		GasLimit: 100_000,
	})
	require.NoError(t, err)
	hash, err := l.SendRawTransaction(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, 1, l.PendingCount())

	receipt, err := l.TransactionReceipt(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, receipt)

	l.MineEmpty(3)
	assert.Equal(t, uint64(4), l.Mine())

	receipt, err = l.TransactionReceipt(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(4), receipt.BlockNumber)
	assert.True(t, receipt.Status)

	logs, err := l.Logs(ctx, types.LogFilter{
		Address:   types.NewID(l.Params().ContractAddress[:]),
		FromBlock: 4,
		ToBlock:   4,
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, hash, logs[0].TxHash)
}

func TestLedgerFailNext(t *testing.T) {
	l, err := NewLedger()
	require.NoError(t, err)
	ctx := context.Background()
	boom := errors.New("boom")

	l.FailNext("BlockNumber", boom)
	_, err = l.BlockNumber(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = l.BlockNumber(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, l.CallCount("BlockNumber"))

	l.SetGasPrice(25)
	price, err := l.GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), price.Uint64())
}
