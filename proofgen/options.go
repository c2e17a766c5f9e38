// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package proofgen

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/zk"
)

const (
	DefaultBalanceProofTTL     = 5 * time.Minute
	DefaultCommitmentTTL       = 2 * time.Minute
	DefaultBalanceProofTimeout = 30 * time.Second
	DefaultStakeProofTimeout   = 30 * time.Second
	DefaultCommitmentTimeout   = 10 * time.Second
	DefaultBatchBaseTimeout    = 30 * time.Second
	DefaultBatchOrderTimeout   = 6 * time.Second
	DefaultBatchMaxTimeout     = 60 * time.Second
	DefaultSweepInterval       = time.Minute
	DefaultMaxCacheEntries     = 10000
)

// DefaultOptions returns a generator configure option that fills in
// the default settings. The owner and counterparty key should almost
// always be overridden.
func DefaultOptions() Option {
	return func(cfg *config) error {
		cfg.prover = &zk.MockProver{}
		cfg.verifier = &zk.MockVerifier{}
		cfg.clock = clock.New()
		cfg.balanceProofTTL = DefaultBalanceProofTTL
		cfg.commitmentTTL = DefaultCommitmentTTL
		cfg.balanceProofTimeout = DefaultBalanceProofTimeout
		cfg.stakeProofTimeout = DefaultStakeProofTimeout
		cfg.commitmentTimeout = DefaultCommitmentTimeout
		cfg.batchBaseTimeout = DefaultBatchBaseTimeout
		cfg.batchOrderTimeout = DefaultBatchOrderTimeout
		cfg.batchMaxTimeout = DefaultBatchMaxTimeout
		cfg.sweepInterval = DefaultSweepInterval
		cfg.maxCacheEntries = DefaultMaxCacheEntries
		return nil
	}
}

// Option is configuration option function for the Generator
type Option func(cfg *config) error

// Prover is the zk prover used to create proofs.
func Prover(prover zk.Prover) Option {
	return func(cfg *config) error {
		cfg.prover = prover
		return nil
	}
}

// Verifier is used to check every proof before it is handed out.
func Verifier(verifier zk.Verifier) Option {
	return func(cfg *config) error {
		cfg.verifier = verifier
		return nil
	}
}

// Clock drives cache expiry, timeouts and the sweeper.
func Clock(clk clock.Clock) Option {
	return func(cfg *config) error {
		cfg.clock = clk
		return nil
	}
}

// Owner is the ID new swap commitments are issued to.
//
// This option is required.
func Owner(owner types.ID) Option {
	return func(cfg *config) error {
		cfg.owner = owner
		return nil
	}
}

// CounterpartyKey is the curve25519 key new notes are sealed to.
//
// This option is required.
func CounterpartyKey(key crypto.PubKey) Option {
	return func(cfg *config) error {
		cfg.counterparty = key
		return nil
	}
}

// Stakes is used by GenerateStakeProof to read a user's staked amount.
//
// This option is required for stake proofs.
func Stakes(reader StakeReader) Option {
	return func(cfg *config) error {
		cfg.stakes = reader
		return nil
	}
}

// CacheTTLs overrides how long balance proofs and swap commitments
// are cached.
func CacheTTLs(balanceProof, commitment time.Duration) Option {
	return func(cfg *config) error {
		cfg.balanceProofTTL = balanceProof
		cfg.commitmentTTL = commitment
		return nil
	}
}

// Timeouts overrides the balance proof, stake proof and commitment
// time limits.
func Timeouts(balanceProof, stakeProof, commitment time.Duration) Option {
	return func(cfg *config) error {
		cfg.balanceProofTimeout = balanceProof
		cfg.stakeProofTimeout = stakeProof
		cfg.commitmentTimeout = commitment
		return nil
	}
}

// BatchTimeouts overrides the batch proof time limit which is
// base + perOrder * activeOrders, capped at max.
func BatchTimeouts(base, perOrder, max time.Duration) Option {
	return func(cfg *config) error {
		cfg.batchBaseTimeout = base
		cfg.batchOrderTimeout = perOrder
		cfg.batchMaxTimeout = max
		return nil
	}
}

// SweepInterval sets how often expired cache entries are removed.
func SweepInterval(interval time.Duration) Option {
	return func(cfg *config) error {
		cfg.sweepInterval = interval
		return nil
	}
}

type config struct {
	prover              zk.Prover
	verifier            zk.Verifier
	clock               clock.Clock
	owner               types.ID
	counterparty        crypto.PubKey
	stakes              StakeReader
	balanceProofTTL     time.Duration
	commitmentTTL       time.Duration
	balanceProofTimeout time.Duration
	stakeProofTimeout   time.Duration
	commitmentTimeout   time.Duration
	batchBaseTimeout    time.Duration
	batchOrderTimeout   time.Duration
	batchMaxTimeout     time.Duration
	sweepInterval       time.Duration
	maxCacheEntries     int
}

func (cfg *config) validate() error {
	if cfg == nil {
		return types.AssertError("NewGenerator: config cannot be nil")
	}
	if cfg.prover == nil {
		return types.AssertError("NewGenerator: prover cannot be nil")
	}
	if cfg.verifier == nil {
		return types.AssertError("NewGenerator: verifier cannot be nil")
	}
	if cfg.clock == nil {
		return types.AssertError("NewGenerator: clock cannot be nil")
	}
	if cfg.counterparty == nil {
		return types.AssertError("NewGenerator: counterparty key cannot be nil")
	}
	if cfg.balanceProofTimeout <= 0 || cfg.stakeProofTimeout <= 0 || cfg.commitmentTimeout <= 0 {
		return types.AssertError("NewGenerator: timeouts must be positive")
	}
	if cfg.batchMaxTimeout <= 0 || cfg.batchBaseTimeout <= 0 {
		return types.AssertError("NewGenerator: batch timeouts must be positive")
	}
	if cfg.sweepInterval <= 0 {
		return types.AssertError("NewGenerator: sweep interval must be positive")
	}
	return nil
}
