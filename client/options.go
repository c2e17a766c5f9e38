// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package client

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/proofgen"
	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/repo/mock"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/zk"
)

const (
	DefaultConfirmationTimeout = 60 * time.Second
	DefaultReceiptPollInterval = time.Second
	DefaultEventPollInterval   = 5 * time.Second
	DefaultStateCacheTTL       = 30 * time.Second
)

// DefaultOptions returns a client configure option that fills in the
// default settings. The RPC and wallet have no default. The prover has
// no default either: NewClient falls back to the mock prover only on
// networks that allow it, so mainnet clients must pass Prover.
func DefaultOptions() Option {
	return func(cfg *config) error {
		cfg.params = &params.MainnetParams
		cfg.verifier = &zk.MockVerifier{}
		cfg.clock = clock.New()
		cfg.datastore = mock.NewMapDatastore()
		cfg.confirmationTimeout = DefaultConfirmationTimeout
		cfg.receiptPollInterval = DefaultReceiptPollInterval
		cfg.eventPollInterval = DefaultEventPollInterval
		cfg.stateCacheTTL = DefaultStateCacheTTL
		return nil
	}
}

// Option is configuration option function for the Client
type Option func(cfg *config) error

// RPC is the ledger the client submits transactions to. It is required.
func RPC(rpc LedgerRPC) Option {
	return func(cfg *config) error {
		cfg.rpc = rpc
		return nil
	}
}

// WithWallet sets the wallet that signs transactions and reports
// balances. It is required.
func WithWallet(wallet Wallet) Option {
	return func(cfg *config) error {
		cfg.wallet = wallet
		return nil
	}
}

// Params identifies which network the client runs on.
func Params(params *params.NetworkParams) Option {
	return func(cfg *config) error {
		cfg.params = params
		return nil
	}
}

// Prover is the zk prover used by the proof generator. The mock prover
// is rejected on networks that do not allow it and is the default on
// those that do.
func Prover(prover zk.Prover) Option {
	return func(cfg *config) error {
		cfg.prover = prover
		return nil
	}
}

// Verifier checks every generated proof before it is used.
func Verifier(verifier zk.Verifier) Option {
	return func(cfg *config) error {
		cfg.verifier = verifier
		return nil
	}
}

// Clock drives caches, confirmation polling and event polling.
func Clock(clk clock.Clock) Option {
	return func(cfg *config) error {
		cfg.clock = clk
		return nil
	}
}

// Datastore persists the note store and the event cursor. The default
// is an in-memory store.
func Datastore(ds repo.Datastore) Option {
	return func(cfg *config) error {
		cfg.datastore = ds
		return nil
	}
}

// CounterpartyKey is the curve25519 key swap notes are sealed to.
// When unset it is derived from the contract address.
func CounterpartyKey(key crypto.PubKey) Option {
	return func(cfg *config) error {
		cfg.counterparty = key
		return nil
	}
}

// ConfirmationTimeout bounds how long an operation waits for its
// receipt, polling every interval.
func ConfirmationTimeout(timeout, interval time.Duration) Option {
	return func(cfg *config) error {
		cfg.confirmationTimeout = timeout
		cfg.receiptPollInterval = interval
		return nil
	}
}

// EventPollInterval sets how often subscribed events are fetched.
func EventPollInterval(interval time.Duration) Option {
	return func(cfg *config) error {
		cfg.eventPollInterval = interval
		return nil
	}
}

// StateCacheTTL sets how long a contract state read is reused.
func StateCacheTTL(ttl time.Duration) Option {
	return func(cfg *config) error {
		cfg.stateCacheTTL = ttl
		return nil
	}
}

// GeneratorOptions are passed through to the proof generator after the
// client's own settings.
func GeneratorOptions(opts ...proofgen.Option) Option {
	return func(cfg *config) error {
		cfg.generatorOpts = append(cfg.generatorOpts, opts...)
		return nil
	}
}

type config struct {
	rpc                 LedgerRPC
	wallet              Wallet
	params              *params.NetworkParams
	prover              zk.Prover
	verifier            zk.Verifier
	clock               clock.Clock
	datastore           repo.Datastore
	counterparty        crypto.PubKey
	confirmationTimeout time.Duration
	receiptPollInterval time.Duration
	eventPollInterval   time.Duration
	stateCacheTTL       time.Duration
	generatorOpts       []proofgen.Option
}

func (cfg *config) validate() error {
	if cfg == nil {
		return types.AssertError("NewClient: config cannot be nil")
	}
	if cfg.rpc == nil {
		return types.AssertError("NewClient: rpc cannot be nil")
	}
	if cfg.wallet == nil {
		return types.AssertError("NewClient: wallet cannot be nil")
	}
	if cfg.params == nil {
		return types.AssertError("NewClient: params cannot be nil")
	}
	if cfg.prover == nil {
		return types.AssertError("NewClient: a prover is required on " + cfg.params.Name)
	}
	if _, ok := cfg.prover.(*zk.MockProver); ok && !cfg.params.AllowMockProofs {
		return types.AssertError("NewClient: mock prover is not allowed on " + cfg.params.Name)
	}
	if cfg.verifier == nil {
		return types.AssertError("NewClient: verifier cannot be nil")
	}
	if cfg.clock == nil {
		return types.AssertError("NewClient: clock cannot be nil")
	}
	if cfg.datastore == nil {
		return types.AssertError("NewClient: datastore cannot be nil")
	}
	if cfg.confirmationTimeout <= 0 || cfg.receiptPollInterval <= 0 {
		return types.AssertError("NewClient: confirmation timeout and interval must be positive")
	}
	if cfg.eventPollInterval <= 0 {
		return types.AssertError("NewClient: event poll interval must be positive")
	}
	return nil
}
