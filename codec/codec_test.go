// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package codec

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/go-test/deep"
	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/zk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(i uint64) types.SwapOrder {
	return types.SwapOrder{
		Input:           types.Asset{TokenID: types.NewIDFromData([]byte("night")), Amount: types.WitnessFromUint64(1000 + i)},
		Output:          types.Asset{TokenID: types.NewIDFromData([]byte("dust")), Amount: types.WitnessFromUint64(900 + i)},
		MinOutputAmount: types.WitnessFromUint64(890 + i),
		Deadline:        100 + i,
	}
}

func TestSelector(t *testing.T) {
	s := NewSelector("transfer(address,uint256)")
	assert.Equal(t, "a9059cbb", hex.EncodeToString(s[:]))
	assert.Equal(t, "stake(uint256,bytes32,proof)", Methods[MethodStake].Signature())
	assert.Equal(t, "batchSwap(order[5],bytes32[10],bytes32[],bytes,proof,proof)", Methods[MethodBatchSwap].Signature())
	assert.Equal(t, "claimRewards()", Methods[MethodClaimRewards].Signature())

	seen := make(map[Selector]string)
	for name, m := range Methods {
		prev, dup := seen[m.Selector()]
		assert.Falsef(t, dup, "selector collision between %s and %s", name, prev)
		seen[m.Selector()] = name
	}
}

func TestScalarWidths(t *testing.T) {
	e := NewEncoder(nil)
	e.ID(types.NewIDFromData([]byte("x")))
	e.Uint(uint256.NewInt(7))
	e.Bool(true)
	e.Witness(types.WitnessFromUint64(5))
	b, err := e.Bytes()
	require.NoError(t, err)
	assert.Len(t, b, WordLen*3+WitnessLen)
	assert.Equal(t, byte(7), b[2*WordLen-1])
	assert.Equal(t, byte(1), b[3*WordLen-1])
	assert.Equal(t, byte(witnessFlag), b[3*WordLen])
	assert.Equal(t, byte(5), b[len(b)-1])

	e = NewEncoder(nil)
	e.SwapOrder(testOrder(0))
	b, err = e.Bytes()
	require.NoError(t, err)
	assert.Len(t, b, OrderLen)
}

func TestSwapOrderRoundTrip(t *testing.T) {
	o := testOrder(3)
	e := NewEncoder(nil)
	e.SwapOrder(o)
	b, err := e.Bytes()
	require.NoError(t, err)

	d := NewDecoder(b)
	o2, err := d.SwapOrder()
	require.NoError(t, err)
	assert.NoError(t, d.Finish())
	assert.Equal(t, o, o2)
}

func TestBatchRoundTrip(t *testing.T) {
	for n := 1; n <= params.MaxBatchSize; n++ {
		batch := types.NewBatchSwapOrder()
		for i := 0; i < n; i++ {
			batch.Orders = append(batch.Orders, testOrder(uint64(i)))
		}
		e := NewEncoder(nil)
		e.BatchSwapOrder(batch)
		b, err := e.Bytes()
		require.NoError(t, err)
		assert.Len(t, b, BatchLen)

		d := NewDecoder(b)
		batch2, err := d.BatchSwapOrder()
		require.NoError(t, err)
		assert.NoError(t, d.Finish())
		assert.Equal(t, batch.Orders, batch2.Orders)
	}
}

func TestBatchPadding(t *testing.T) {
	batch := types.NewBatchSwapOrder(testOrder(1), testOrder(2))
	e := NewEncoder(nil)
	e.BatchSwapOrder(batch)
	b, err := e.Bytes()
	require.NoError(t, err)

	var zero types.SwapOrder
	ze := NewEncoder(nil)
	ze.SwapOrder(zero)
	zb, err := ze.Bytes()
	require.NoError(t, err)
	for slot := 2; slot < params.MaxBatchSize; slot++ {
		assert.Equal(t, zb, b[slot*OrderLen:(slot+1)*OrderLen])
	}
	active := new(uint256.Int).SetBytes32(b[len(b)-WordLen:])
	assert.Equal(t, uint64(2), active.Uint64())

	six := types.NewBatchSwapOrder(testOrder(1), testOrder(2), testOrder(3), testOrder(4), testOrder(5), testOrder(6))
	e = NewEncoder(nil)
	e.BatchSwapOrder(six)
	_, err = e.Bytes()
	assert.True(t, types.ErrorIs(err, types.ErrBatchSizeExceeded))
}

func TestIDRoundTrip(t *testing.T) {
	ids := []types.ID{types.NewIDFromData([]byte("a")), {}, types.NewIDFromData([]byte("b"))}
	e := NewEncoder(nil)
	e.IDs(ids)
	e.FixedIDs(4, ids)
	b, err := e.Bytes()
	require.NoError(t, err)
	assert.Len(t, b, WordLen+3*WordLen+4*WordLen)

	d := NewDecoder(b)
	ids2, err := d.IDs()
	require.NoError(t, err)
	assert.Equal(t, ids, ids2)
	fixed, err := d.FixedIDs(4)
	require.NoError(t, err)
	assert.Equal(t, append(ids, types.ID{}), fixed)
	assert.NoError(t, d.Finish())

	e = NewEncoder(nil)
	e.FixedIDs(2, ids)
	_, err = e.Bytes()
	assert.True(t, types.ErrorIs(err, types.ErrInvalidInput))
}

func TestProofRoundTrip(t *testing.T) {
	proof, err := (&zk.MockProver{}).Prove(context.Background(), zk.BalanceCircuit{}, []uint256.Int{*uint256.NewInt(10)}, []uint256.Int{*uint256.NewInt(5)})
	require.NoError(t, err)

	e := NewEncoder(nil)
	e.Proof(proof)
	b, err := e.Bytes()
	require.NoError(t, err)

	d := NewDecoder(b)
	proof2, err := d.Proof()
	require.NoError(t, err)
	if diff := deep.Equal(proof, proof2); diff != nil {
		t.Error(diff)
	}
}

func TestDecodeOutOfBounds(t *testing.T) {
	e := NewEncoder(nil)
	e.SwapOrder(testOrder(1))
	b, err := e.Bytes()
	require.NoError(t, err)

	for _, n := range []int{0, 1, WordLen, WordLen + 1, OrderLen - 1} {
		_, err := NewDecoder(b[:n]).SwapOrder()
		assert.Truef(t, types.ErrorIs(err, types.ErrDecode), "truncated to %d", n)
	}

	_, err = NewDecoder(nil).ID()
	assert.True(t, types.ErrorIs(err, types.ErrDecode))

	// A count larger than the remaining data never allocates.
	huge := NewEncoder(nil)
	huge.Uint64(1 << 40)
	hb, _ := huge.Bytes()
	_, err = NewDecoder(hb).ByteString()
	assert.True(t, types.ErrorIs(err, types.ErrDecode))
	_, err = NewDecoder(hb).IDs()
	assert.True(t, types.ErrorIs(err, types.ErrDecode))
}

func TestDecodeInvalidValues(t *testing.T) {
	word := make([]byte, WordLen)
	word[WordLen-1] = 2
	_, err := NewDecoder(word).Bool()
	assert.True(t, types.ErrorIs(err, types.ErrDecode))

	w := make([]byte, WitnessLen)
	_, err = NewDecoder(w).Witness()
	assert.True(t, types.ErrorIs(err, types.ErrDecode))

	big := make([]byte, WordLen)
	big[0] = 1
	_, err = NewDecoder(big).Uint64()
	assert.True(t, types.ErrorIs(err, types.ErrDecode))

	_, err = DecodeBool(append(make([]byte, WordLen), 0))
	assert.True(t, types.ErrorIs(err, types.ErrDecode))
}

func TestEncodeFunction(t *testing.T) {
	user := types.NewIDFromData([]byte("user"))
	data, err := EncodeFunction(MethodIsPremiumUser, IDArg(user))
	require.NoError(t, err)
	assert.Len(t, data, SelectorLen+WordLen)

	m, d, err := DecodeFunction(data)
	require.NoError(t, err)
	assert.Equal(t, MethodIsPremiumUser, m.Name)
	id, err := d.ID()
	require.NoError(t, err)
	assert.Equal(t, user, id)

	_, err = EncodeFunction(MethodIsPremiumUser)
	assert.True(t, types.ErrorIs(err, types.ErrInvalidInput))
	_, err = EncodeFunction(MethodIsPremiumUser, UintArg(uint256.NewInt(1)))
	assert.True(t, types.ErrorIs(err, types.ErrInvalidInput))
	_, err = EncodeFunction("transfer", IDArg(user))
	assert.True(t, types.ErrorIs(err, types.ErrInvalidInput))

	_, _, err = DecodeFunction([]byte{1, 2})
	assert.True(t, types.ErrorIs(err, types.ErrDecode))
	_, _, err = DecodeFunction([]byte{1, 2, 3, 4})
	assert.True(t, types.ErrorIs(err, types.ErrDecode))
}

func TestEncodeBatchSwapCall(t *testing.T) {
	batch := types.NewBatchSwapOrder(testOrder(1), testOrder(2))
	commitments := []types.ID{types.NewIDFromData([]byte("c1")), types.NewIDFromData([]byte("c2"))}
	proof := &types.BalanceProof{ProofBytes: []byte{1, 2, 3}, VerificationKeyHash: types.NewIDFromData([]byte("vk"))}
	data, err := EncodeFunction(MethodBatchSwap,
		BatchArg(batch),
		FixedIDsArg(params.MaxBatchCommitments, commitments),
		IDsArg(nil),
		BytesArg(nil),
		ProofArg(proof),
		ProofArg(proof),
	)
	require.NoError(t, err)

	m, d, err := DecodeFunction(data)
	require.NoError(t, err)
	assert.Equal(t, MethodBatchSwap, m.Name)
	batch2, err := d.BatchSwapOrder()
	require.NoError(t, err)
	assert.Equal(t, batch.Orders, batch2.Orders)
	fixed, err := d.FixedIDs(params.MaxBatchCommitments)
	require.NoError(t, err)
	assert.Equal(t, commitments, fixed[:2])
	for _, c := range fixed[2:] {
		assert.True(t, c.IsZero())
	}
}

func TestEventRoundTrip(t *testing.T) {
	events := []ContractEvent{
		&SwapExecuted{SwapID: types.NewIDFromData([]byte("s")), User: types.NewIDFromData([]byte("u")), FeeCollected: uint256.NewInt(5000000)},
		&BatchSwapExecuted{BatchID: types.NewIDFromData([]byte("b")), SwapCount: 3, TotalFeeCollected: uint256.NewInt(12)},
		&Staked{StakeID: types.NewIDFromData([]byte("st")), Amount: uint256.NewInt(150), PremiumEligible: true},
		&Unstaked{Amount: uint256.NewInt(1)},
		&LiquidityAdded{PoolID: types.NewIDFromData([]byte("p")), SharesIssued: uint256.NewInt(44)},
		&LiquidityRemoved{SharesBurned: uint256.NewInt(1), AmountA: uint256.NewInt(2), AmountB: uint256.NewInt(3)},
		&RewardsClaimed{Amount: uint256.NewInt(9)},
		&EmergencyWithdrawal{Amount: uint256.NewInt(10)},
		&PauseToggled{Paused: true},
	}
	assert.Len(t, events, len(Events))
	for _, ev := range events {
		topics, data, err := EncodeEvent(ev)
		require.NoError(t, err)
		log := &types.Log{Topics: topics, Data: data}
		ev2, err := DecodeEvent(log)
		require.NoError(t, err)
		assert.Equal(t, ev, ev2)
	}

	_, err := DecodeEvent(&types.Log{})
	assert.True(t, types.ErrorIs(err, types.ErrDecode))
	_, err = DecodeEvent(&types.Log{Topics: []types.ID{Events[EventStaked].Topic()}, Data: []byte{1}})
	assert.True(t, types.ErrorIs(err, types.ErrDecode))
}

func TestFindEvent(t *testing.T) {
	topics, data, err := EncodeEvent(&RewardsClaimed{Amount: uint256.NewInt(3)})
	require.NoError(t, err)
	logs := []types.Log{
		{Topics: []types.ID{types.NewIDFromData([]byte("other"))}},
		{Topics: topics, Data: data, BlockNumber: 8},
	}
	ev, log, err := FindEvent(logs, EventRewardsClaimed)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), log.BlockNumber)
	assert.Equal(t, uint64(3), ev.(*RewardsClaimed).Amount.Uint64())

	_, _, err = FindEvent(logs[:1], EventRewardsClaimed)
	assert.True(t, types.ErrorIs(err, types.ErrDecode))
}

func TestContractStateRoundTrip(t *testing.T) {
	s := &ContractState{
		DeveloperWallet:    types.NewIDFromData([]byte("dev")),
		NightTokenID:       types.NewIDFromData([]byte("night")),
		DustTokenID:        types.NewIDFromData([]byte("dust")),
		FeeRateBps:         params.FeeRateBps,
		PremiumThreshold:   params.PremiumThreshold(),
		MaxBatchSize:       params.MaxBatchSize,
		TotalFeesCollected: uint256.NewInt(77),
		IsPaused:           true,
	}
	b, err := s.Encode()
	require.NoError(t, err)
	s2, err := DecodeContractState(b)
	require.NoError(t, err)
	assert.Equal(t, s, s2)

	_, err = DecodeContractState(b[:len(b)-1])
	assert.True(t, types.ErrorIs(err, types.ErrDecode))
}
