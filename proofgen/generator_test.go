// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package proofgen

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/crypto"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/zk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, opts ...Option) (*Generator, *zk.MockProver) {
	_, pub, err := crypto.GenerateCurve25519Key(rand.Reader)
	require.NoError(t, err)
	prover := &zk.MockProver{}
	owner := types.NewIDFromData([]byte("owner"))
	g, err := NewGenerator(append([]Option{Prover(prover), Owner(owner), CounterpartyKey(pub)}, opts...)...)
	require.NoError(t, err)
	return g, prover
}

func TestNewGeneratorRequiresCounterparty(t *testing.T) {
	_, err := NewGenerator()
	var assertErr types.AssertError
	assert.True(t, errors.As(err, &assertErr))

	_, pub, err := crypto.GenerateCurve25519Key(rand.Reader)
	require.NoError(t, err)
	_, err = NewGenerator(CounterpartyKey(pub), Prover(nil))
	assert.Error(t, err)
}

func TestGenerateBalanceProof(t *testing.T) {
	g, _ := newTestGenerator(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		balance  uint64
		required uint64
		code     types.ErrorCode
		ok       bool
	}{
		{"below", 999, 1000, types.ErrInsufficientBalance, false},
		{"zero balance", 0, 1, types.ErrInsufficientBalance, false},
		{"equal", 1000, 1000, 0, true},
		{"above", 1001, 1000, 0, true},
		{"zero required", 0, 0, 0, true},
	}
	for _, test := range tests {
		proof, err := g.GenerateBalanceProof(ctx, uint256.NewInt(test.balance), uint256.NewInt(test.required))
		if !test.ok {
			assert.Truef(t, types.ErrorIs(err, test.code), "%s: unexpected error %v", test.name, err)
			assert.Nil(t, proof)
			continue
		}
		require.NoErrorf(t, err, test.name)
		assert.Equal(t, zk.VerificationKeyHash(zk.BalanceCircuit{}), proof.VerificationKeyHash)
		assert.Len(t, proof.PublicInputs, 1)

		valid, err := (&zk.MockVerifier{}).Verify(ctx, zk.BalanceCircuit{}, proof)
		assert.NoError(t, err)
		assert.True(t, valid)
	}

	_, err := g.GenerateBalanceProof(ctx, nil, uint256.NewInt(1))
	assert.True(t, types.ErrorIs(err, types.ErrInvalidInput))
}

func TestBalanceProofCache(t *testing.T) {
	clk := clock.NewMock()
	g, _ := newTestGenerator(t, Clock(clk))
	ctx := context.Background()

	p1, err := g.GenerateBalanceProof(ctx, uint256.NewInt(500), uint256.NewInt(100))
	require.NoError(t, err)
	p2, err := g.GenerateBalanceProof(ctx, uint256.NewInt(500), uint256.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, p1.ProofBytes, p2.ProofBytes)

	// Callers get their own copy.
	p2.ProofBytes[0] ^= 0xff
	p3, err := g.GenerateBalanceProof(ctx, uint256.NewInt(500), uint256.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, p1.ProofBytes, p3.ProofBytes)

	// A different threshold is never served from the cache.
	p4, err := g.GenerateBalanceProof(ctx, uint256.NewInt(500), uint256.NewInt(101))
	require.NoError(t, err)
	assert.NotEqual(t, p1.ProofBytes, p4.ProofBytes)

	clk.Add(DefaultBalanceProofTTL - time.Second)
	p5, err := g.GenerateBalanceProof(ctx, uint256.NewInt(500), uint256.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, p1.ProofBytes, p5.ProofBytes)

	clk.Add(2 * time.Second)
	p6, err := g.GenerateBalanceProof(ctx, uint256.NewInt(500), uint256.NewInt(100))
	require.NoError(t, err)
	assert.NotEqual(t, p1.ProofBytes, p6.ProofBytes)

	g.ClearCache()
	p7, err := g.GenerateBalanceProof(ctx, uint256.NewInt(500), uint256.NewInt(100))
	require.NoError(t, err)
	assert.NotEqual(t, p6.ProofBytes, p7.ProofBytes)
}

func TestBalanceProofTimeout(t *testing.T) {
	g, prover := newTestGenerator(t, Timeouts(20*time.Millisecond, time.Second, time.Second))
	prover.SetDelay(5 * time.Second)

	start := time.Now()
	_, err := g.GenerateBalanceProof(context.Background(), uint256.NewInt(10), uint256.NewInt(1))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, types.ErrorIs(err, types.ErrProofVerificationFailed))
	assert.True(t, errors.Is(err, ErrProofTimeout))
}

func TestBalanceProofCancelled(t *testing.T) {
	g, prover := newTestGenerator(t)
	prover.SetDelay(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := g.GenerateBalanceProof(ctx, uint256.NewInt(10), uint256.NewInt(1))
	assert.True(t, types.ErrorIs(err, types.ErrProofVerificationFailed))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrProofTimeout))
}

type rejectingVerifier struct{}

func (rejectingVerifier) Verify(ctx context.Context, circuit zk.Circuit, proof *types.BalanceProof) (bool, error) {
	return false, nil
}

func TestInvalidProofRejected(t *testing.T) {
	g, _ := newTestGenerator(t, Verifier(rejectingVerifier{}))
	_, err := g.GenerateBalanceProof(context.Background(), uint256.NewInt(10), uint256.NewInt(1))
	assert.True(t, types.ErrorIs(err, types.ErrProofVerificationFailed))
}

func TestGenerateStakeProof(t *testing.T) {
	stakes := map[types.ID]*uint256.Int{
		types.NewIDFromData([]byte("whale")):    uint256.NewInt(150 * params.NanosPerNight),
		types.NewIDFromData([]byte("minnow")):   uint256.NewInt(50 * params.NanosPerNight),
		types.NewIDFromData([]byte("boundary")): params.PremiumThreshold(),
	}
	reader := func(ctx context.Context, user types.ID) (*uint256.Int, error) {
		if s, ok := stakes[user]; ok {
			return s, nil
		}
		return nil, errors.New("connection refused")
	}
	g, _ := newTestGenerator(t, Stakes(reader))
	ctx := context.Background()

	proof, err := g.GenerateStakeProof(ctx, types.NewIDFromData([]byte("whale")))
	require.NoError(t, err)
	assert.Equal(t, zk.VerificationKeyHash(zk.StakeCircuit{}), proof.VerificationKeyHash)

	_, err = g.GenerateStakeProof(ctx, types.NewIDFromData([]byte("minnow")))
	assert.True(t, types.ErrorIs(err, types.ErrNotPremiumUser))

	// The threshold must be strictly exceeded.
	_, err = g.GenerateStakeProof(ctx, types.NewIDFromData([]byte("boundary")))
	assert.True(t, types.ErrorIs(err, types.ErrNotPremiumUser))

	_, err = g.GenerateStakeProof(ctx, types.NewIDFromData([]byte("unknown")))
	assert.True(t, types.ErrorIs(err, types.ErrNetwork))

	g2, _ := newTestGenerator(t)
	_, err = g2.GenerateStakeProof(ctx, types.NewIDFromData([]byte("whale")))
	assert.Error(t, err)
}

func TestSwapCommitment(t *testing.T) {
	priv, pub, err := crypto.GenerateCurve25519Key(rand.Reader)
	require.NoError(t, err)
	owner := types.NewIDFromData([]byte("owner"))
	g, err := NewGenerator(Owner(owner), CounterpartyKey(pub))
	require.NoError(t, err)
	ctx := context.Background()

	token := types.NewIDFromData([]byte("night"))
	c, err := g.GenerateSwapCommitment(ctx, token, uint256.NewInt(1000))
	require.NoError(t, err)
	assert.True(t, c.Note.Verify())
	assert.Equal(t, owner, c.Note.Owner)
	assert.Equal(t, token, c.Note.TokenID)
	assert.NotEqual(t, c.Commitment().Bytes(), c.Nullifier().Bytes())

	note, err := crypto.OpenNote(priv, c.EncryptedNote, c.Commitment())
	require.NoError(t, err)
	assert.Equal(t, c.Nullifier(), note.Nullifier)

	cached, err := g.GenerateSwapCommitment(ctx, token, uint256.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, c.Commitment(), cached.Commitment())

	_, err = g.GenerateSwapCommitment(ctx, token, nil)
	assert.True(t, types.ErrorIs(err, types.ErrInvalidInput))
}

func TestUsedCommitmentsAreNotReissued(t *testing.T) {
	g, _ := newTestGenerator(t)
	ctx := context.Background()
	token := types.NewIDFromData([]byte("night"))

	proof1, err := g.GenerateBalanceProof(ctx, uint256.NewInt(5000), uint256.NewInt(1000))
	require.NoError(t, err)
	c1, err := g.GenerateSwapCommitment(ctx, token, uint256.NewInt(1000))
	require.NoError(t, err)
	g.MarkCommitmentUsed(c1)

	proof2, err := g.GenerateBalanceProof(ctx, uint256.NewInt(5000), uint256.NewInt(1000))
	require.NoError(t, err)
	c2, err := g.GenerateSwapCommitment(ctx, token, uint256.NewInt(1000))
	require.NoError(t, err)

	assert.True(t, bytes.Equal(proof1.ProofBytes, proof2.ProofBytes))
	assert.NotEqual(t, c1.Nullifier(), c2.Nullifier())
	assert.NotEqual(t, c1.Commitment(), c2.Commitment())

	// Marking a stale commitment does not evict the current one.
	g.MarkCommitmentUsed(c1)
	c3, err := g.GenerateSwapCommitment(ctx, token, uint256.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, c2.Commitment(), c3.Commitment())
}

func TestCommitmentExpiry(t *testing.T) {
	clk := clock.NewMock()
	g, _ := newTestGenerator(t, Clock(clk))
	ctx := context.Background()
	token := types.NewIDFromData([]byte("dust"))

	c1, err := g.GenerateSwapCommitment(ctx, token, uint256.NewInt(7))
	require.NoError(t, err)
	clk.Add(DefaultCommitmentTTL + time.Second)
	c2, err := g.GenerateSwapCommitment(ctx, token, uint256.NewInt(7))
	require.NoError(t, err)
	assert.NotEqual(t, c1.Commitment(), c2.Commitment())
}

func testOrder(amount, minOut uint64) types.SwapOrder {
	return types.SwapOrder{
		Input:           types.Asset{TokenID: types.NewIDFromData([]byte("night")), Amount: types.WitnessFromUint64(amount)},
		Output:          types.Asset{TokenID: types.NewIDFromData([]byte("dust")), Amount: types.WitnessFromUint64(minOut)},
		MinOutputAmount: types.WitnessFromUint64(minOut),
		Deadline:        10,
	}
}

func TestGenerateBatchProof(t *testing.T) {
	g, _ := newTestGenerator(t)
	ctx := context.Background()

	_, err := g.GenerateBatchProof(ctx, nil)
	assert.True(t, types.ErrorIs(err, types.ErrBatchSizeExceeded))

	six := make([]types.SwapOrder, 6)
	for i := range six {
		six[i] = testOrder(100, 90)
	}
	_, err = g.GenerateBatchProof(ctx, six)
	assert.True(t, types.ErrorIs(err, types.ErrBatchSizeExceeded))

	for n := 1; n <= params.MaxBatchSize; n++ {
		proof, err := g.GenerateBatchProof(ctx, six[:n])
		require.NoError(t, err)
		assert.Equal(t, zk.VerificationKeyHash(zk.BatchCircuit{}), proof.VerificationKeyHash)
	}

	_, err = g.GenerateBatchProof(ctx, []types.SwapOrder{testOrder(100, 90), testOrder(0, 90)})
	assert.True(t, types.ErrorIs(err, types.ErrProofVerificationFailed))
	assert.True(t, errors.Is(err, zk.ErrUnsatisfied))
}

func TestBatchTimeout(t *testing.T) {
	g, _ := newTestGenerator(t)
	assert.Equal(t, 36*time.Second, g.BatchTimeout(1))
	assert.Equal(t, 54*time.Second, g.BatchTimeout(4))
	assert.Equal(t, 60*time.Second, g.BatchTimeout(5))
	assert.Equal(t, 60*time.Second, g.BatchTimeout(50))
}

func TestSweeper(t *testing.T) {
	clk := clock.NewMock()
	g, _ := newTestGenerator(t, Clock(clk), CacheTTLs(time.Second, time.Second), SweepInterval(10*time.Second))
	ctx := context.Background()

	_, err := g.GenerateBalanceProof(ctx, uint256.NewInt(2), uint256.NewInt(1))
	require.NoError(t, err)
	_, err = g.GenerateSwapCommitment(ctx, types.NewIDFromData([]byte("night")), uint256.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, 1, g.balanceProofs.Len())
	assert.Equal(t, 1, g.commitments.Len())

	g.Start()
	defer g.Stop()
	clk.Add(10 * time.Second)
	assert.Eventually(t, func() bool {
		return g.balanceProofs.Len() == 0 && g.commitments.Len() == 0
	}, time.Second, 5*time.Millisecond)
}
