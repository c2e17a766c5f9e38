// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package proofgen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/cache"
	"github.com/project-illium/zswap/crypto"
	"github.com/project-illium/zswap/metrics"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/scheduler"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/zk"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
)

// ErrProofTimeout is wrapped by the error returned when proof or
// commitment generation exceeds its time limit.
var ErrProofTimeout = errors.New("proof generation timed out")

// StakeReader returns the amount the user currently has staked.
type StakeReader func(ctx context.Context, user types.ID) (*uint256.Int, error)

// SwapCommitment is a freshly issued note for one private leg of a
// swap. The note itself stays with the client, only the commitment and
// the sealed note are sent to the ledger.
type SwapCommitment struct {
	Note          *types.Note
	EncryptedNote []byte
}

// Commitment is the on-chain commitment of the note.
func (c *SwapCommitment) Commitment() types.ID {
	return c.Note.Commitment
}

// Nullifier is revealed when the note is spent.
func (c *SwapCommitment) Nullifier() types.Nullifier {
	return c.Note.Nullifier
}

type balanceKey struct {
	balance  [types.AmountLen]byte
	required [types.AmountLen]byte
}

type commitmentKey struct {
	tokenID types.ID
	amount  [types.AmountLen]byte
}

// Generator produces the proofs and commitments the transaction
// pipeline needs. Balance proofs and swap commitments are cached on
// their exact inputs for a short time.
//
// A swap commitment stays cached until it expires or is bound into a
// transaction with MarkCommitmentUsed, after which the same inputs
// produce a fresh note with a new salt.
type Generator struct {
	cfg           *config
	balanceProofs *cache.TTLCache[balanceKey, *types.BalanceProof]
	commitments   *cache.TTLCache[commitmentKey, *SwapCommitment]

	sweeper *scheduler.Task
	mtx     sync.Mutex
}

// NewGenerator returns a new Generator. The DefaultOptions are applied
// before opts.
func NewGenerator(opts ...Option) (*Generator, error) {
	var cfg config
	for _, opt := range append([]Option{DefaultOptions()}, opts...) {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg:           &cfg,
		balanceProofs: cache.New[balanceKey, *types.BalanceProof](cfg.balanceProofTTL, cfg.maxCacheEntries, cfg.clock),
		commitments:   cache.New[commitmentKey, *SwapCommitment](cfg.commitmentTTL, cfg.maxCacheEntries, cfg.clock),
	}, nil
}

// Start begins periodically sweeping expired cache entries. Reads are
// correct without the sweeper, it only bounds memory.
func (g *Generator) Start() {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if g.sweeper != nil {
		return
	}
	g.sweeper = scheduler.Every(g.cfg.clock, g.cfg.sweepInterval, func() {
		n := g.balanceProofs.Sweep() + g.commitments.Sweep()
		if n > 0 {
			log.Debugw("Swept expired proof cache entries", "count", n)
		}
	})
}

// Stop stops the sweeper.
func (g *Generator) Stop() {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if g.sweeper != nil {
		g.sweeper.Stop()
		<-g.sweeper.Done()
		g.sweeper = nil
	}
}

// ClearCache drops every cached proof and commitment.
func (g *Generator) ClearCache() {
	g.balanceProofs.Clear()
	g.commitments.Clear()
}

// GenerateBalanceProof proves that balance >= required without
// revealing balance. It fails with ErrInsufficientBalance before any
// proving work if the balance is too low.
func (g *Generator) GenerateBalanceProof(ctx context.Context, balance, required *uint256.Int) (*types.BalanceProof, error) {
	if balance == nil || required == nil {
		return nil, types.NewError(types.ErrInvalidInput, "balance and required amount must not be nil")
	}
	if balance.Lt(required) {
		return nil, types.NewError(types.ErrInsufficientBalance, "insufficient balance")
	}

	key := balanceKey{balance: balance.Bytes32(), required: required.Bytes32()}
	if proof, ok := g.balanceProofs.Get(key); ok {
		recordCache(ctx, "balance", true)
		return proof.Clone(), nil
	}
	recordCache(ctx, "balance", false)

	var (
		private = []uint256.Int{*balance}
		public  = []uint256.Int{*required}
	)
	proof, err := g.prove(ctx, g.cfg.balanceProofTimeout, zk.BalanceCircuit{}, private, public)
	if err != nil {
		return nil, err
	}
	g.balanceProofs.Put(key, proof)
	return proof.Clone(), nil
}

// GenerateStakeProof proves that the user's staked amount is strictly
// greater than the premium threshold without revealing the amount.
func (g *Generator) GenerateStakeProof(ctx context.Context, user types.ID) (*types.BalanceProof, error) {
	if g.cfg.stakes == nil {
		return nil, types.AssertError("GenerateStakeProof: no stake reader configured")
	}
	staked, err := g.cfg.stakes(ctx, user)
	if err != nil {
		var e types.Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, types.WrapError(types.ErrNetwork, "failed to read staked amount", err)
	}
	threshold := params.PremiumThreshold()
	if !staked.Gt(threshold) {
		return nil, types.NewError(types.ErrNotPremiumUser, "staked amount does not exceed the premium threshold")
	}
	var (
		private = []uint256.Int{*staked}
		public  = []uint256.Int{*threshold}
	)
	return g.prove(ctx, g.cfg.stakeProofTimeout, zk.StakeCircuit{}, private, public)
}

// GenerateSwapCommitment issues a note for amount of tokenID owned by
// the configured owner and seals it to the counterparty. Repeated calls
// with the same inputs return the cached commitment until it expires or
// is marked used.
func (g *Generator) GenerateSwapCommitment(ctx context.Context, tokenID types.ID, amount *uint256.Int) (*SwapCommitment, error) {
	if amount == nil {
		return nil, types.NewError(types.ErrInvalidInput, "amount must not be nil")
	}
	key := commitmentKey{tokenID: tokenID, amount: amount.Bytes32()}
	if c, ok := g.commitments.Get(key); ok {
		recordCache(ctx, "commitment", true)
		return c, nil
	}
	recordCache(ctx, "commitment", false)

	c, err := withTimeout(ctx, g.cfg.clock, g.cfg.commitmentTimeout, func(ctx context.Context) (*SwapCommitment, error) {
		salt, err := types.RandomSalt()
		if err != nil {
			return nil, err
		}
		note := types.NewNote(tokenID, amount, g.cfg.owner, salt)
		sealed, err := crypto.SealNote(g.cfg.counterparty, note)
		if err != nil {
			return nil, err
		}
		return &SwapCommitment{Note: note, EncryptedNote: sealed}, nil
	})
	if err != nil {
		return nil, wrapProofError("swap commitment", err)
	}
	g.commitments.Put(key, c)
	return c, nil
}

// MarkCommitmentUsed evicts the commitment from the cache once it has
// been bound into a transaction so it is never issued twice.
func (g *Generator) MarkCommitmentUsed(c *SwapCommitment) {
	key := commitmentKey{tokenID: c.Note.TokenID, amount: c.Note.Amount.Bytes32()}
	if cached, ok := g.commitments.Get(key); ok && cached.Commitment() == c.Commitment() {
		g.commitments.Delete(key)
	}
}

// BatchTimeout returns the time limit for a batch of n orders.
func (g *Generator) BatchTimeout(n int) time.Duration {
	timeout := g.cfg.batchBaseTimeout + time.Duration(n)*g.cfg.batchOrderTimeout
	if timeout > g.cfg.batchMaxTimeout {
		timeout = g.cfg.batchMaxTimeout
	}
	return timeout
}

// GenerateBatchProof proves that every order has a non-zero input amount
// and a non-zero minimum output. Each order is constrained independently
// and the result is a single proof over the whole batch.
func (g *Generator) GenerateBatchProof(ctx context.Context, orders []types.SwapOrder) (*types.BalanceProof, error) {
	if len(orders) == 0 || len(orders) > params.MaxBatchSize {
		return nil, types.NewError(types.ErrBatchSizeExceeded, fmt.Sprintf("batch must contain between 1 and %d orders", params.MaxBatchSize))
	}
	private := make([]uint256.Int, 0, len(orders)*2)
	for _, o := range orders {
		private = append(private, *o.Input.Amount.Value(), *o.MinOutputAmount.Value())
	}
	public := []uint256.Int{*uint256.NewInt(uint64(len(orders)))}
	return g.prove(ctx, g.BatchTimeout(len(orders)), zk.BatchCircuit{}, private, public)
}

func (g *Generator) prove(ctx context.Context, timeout time.Duration, circuit zk.Circuit, private, public []uint256.Int) (*types.BalanceProof, error) {
	ctx, _ = tag.New(ctx, tag.Upsert(metrics.KeyCircuit, circuit.Name()))
	start := g.cfg.clock.Now()

	proof, err := withTimeout(ctx, g.cfg.clock, timeout, func(ctx context.Context) (*types.BalanceProof, error) {
		proof, err := g.cfg.prover.Prove(ctx, circuit, private, public)
		if err != nil {
			return nil, err
		}
		valid, err := g.cfg.verifier.Verify(ctx, circuit, proof)
		if err != nil {
			return nil, err
		}
		if !valid {
			return nil, errors.New("generated proof failed verification")
		}
		return proof, nil
	})
	if err != nil {
		stats.Record(ctx, metrics.ProofErrors.M(1))
		log.Debugw("Proof generation failed", "circuit", circuit.Name(), "error", err)
		return nil, wrapProofError(circuit.Name()+" proof", err)
	}

	elapsed := g.cfg.clock.Since(start)
	stats.Record(ctx, metrics.ProofLatency.M(float64(elapsed)/float64(time.Millisecond)))
	log.Debugw("Generated proof", "circuit", circuit.Name(), "elapsed", elapsed)
	return proof, nil
}

// withTimeout runs fn in its own goroutine so that a worker which
// ignores its context still cannot hold the caller past the deadline.
func withTimeout[T any](ctx context.Context, clk clock.Clock, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	tctx, cancel := clk.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		val, err := fn(tctx)
		ch <- result{val, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && ctx.Err() == nil && tctx.Err() == context.DeadlineExceeded {
			return zero, ErrProofTimeout
		}
		return r.val, r.err
	case <-tctx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, ErrProofTimeout
	}
}

func wrapProofError(what string, err error) error {
	var e types.Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, ErrProofTimeout):
		return types.WrapError(types.ErrProofVerificationFailed, what+" timed out", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return types.WrapError(types.ErrProofVerificationFailed, what+" cancelled", err)
	default:
		return types.WrapError(types.ErrProofVerificationFailed, what+" generation failed", err)
	}
}

func recordCache(ctx context.Context, name string, hit bool) {
	ctx, _ = tag.New(ctx, tag.Upsert(metrics.KeyCache, name))
	if hit {
		stats.Record(ctx, metrics.CacheHits.M(1))
	} else {
		stats.Record(ctx, metrics.CacheMisses.M(1))
	}
}
