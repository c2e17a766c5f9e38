// Copyright (c) 2022 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package harness

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/zk"
)

// DefaultGasPrice is the gas price reported until SetGasPrice is called.
const DefaultGasPrice = 10

func DefaultOptions() Option {
	return func(cfg *config) error {
		cfg.params = &params.RegtestParams
		cfg.verifier = &zk.MockVerifier{}
		cfg.gasPrice = uint256.NewInt(DefaultGasPrice)
		cfg.autoMine = true
		return nil
	}
}

// Option is configuration option function for the Ledger
type Option func(cfg *config) error

func Params(params *params.NetworkParams) Option {
	return func(cfg *config) error {
		cfg.params = params
		return nil
	}
}

// Developer sets the account allowed to pause the contract.
func Developer(id types.ID) Option {
	return func(cfg *config) error {
		cfg.developer = id
		return nil
	}
}

// Verifier checks the proofs attached to contract calls.
func Verifier(verifier zk.Verifier) Option {
	return func(cfg *config) error {
		cfg.verifier = verifier
		return nil
	}
}

func GasPrice(price uint64) Option {
	return func(cfg *config) error {
		cfg.gasPrice = uint256.NewInt(price)
		return nil
	}
}

// AutoMine controls whether each submitted transaction is mined into
// its own block immediately. When false transactions wait for Mine.
func AutoMine(autoMine bool) Option {
	return func(cfg *config) error {
		cfg.autoMine = autoMine
		return nil
	}
}

type config struct {
	params    *params.NetworkParams
	developer types.ID
	verifier  zk.Verifier
	gasPrice  *uint256.Int
	autoMine  bool
}

func (cfg *config) validate() error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.params == nil {
		return errors.New("params is nil")
	}
	if cfg.verifier == nil {
		return errors.New("verifier is nil")
	}
	if cfg.gasPrice == nil {
		return errors.New("gas price is nil")
	}
	return nil
}
