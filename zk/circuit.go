// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package zk

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/types"
)

// Circuit is the statement a proof attests to. Evaluate is the
// reference semantics of the circuit: a prover must refuse to produce a
// proof for inputs that do not satisfy it.
//
// Private inputs are witnesses and never leave the prover. Public
// inputs are bound into the proof and are visible to the verifier.
type Circuit interface {
	// Name identifies the circuit and its verification key.
	Name() string

	// Evaluate returns nil if the inputs satisfy the circuit.
	Evaluate(private, public []uint256.Int) error
}

// ErrUnsatisfied is returned when the inputs do not satisfy a circuit.
var ErrUnsatisfied = errors.New("circuit constraints not satisfied")

// VerificationKeyHash returns the identifier of the circuit's
// verification key.
func VerificationKeyHash(c Circuit) types.ID {
	return types.NewIDFromData([]byte("zswap/vk/" + c.Name()))
}

func checkArity(c Circuit, private, public []uint256.Int, nPriv, nPub int) error {
	if len(private) != nPriv || len(public) != nPub {
		return fmt.Errorf("%s: expected %d private and %d public inputs, got %d and %d",
			c.Name(), nPriv, nPub, len(private), len(public))
	}
	return nil
}

// BalanceCircuit proves that a private balance is at least a public
// required amount.
//
// private: [balance]
// public:  [required]
type BalanceCircuit struct{}

func (BalanceCircuit) Name() string { return "balance" }

func (c BalanceCircuit) Evaluate(private, public []uint256.Int) error {
	if err := checkArity(c, private, public, 1, 1); err != nil {
		return err
	}
	if private[0].Lt(&public[0]) {
		return ErrUnsatisfied
	}
	return nil
}

// StakeCircuit proves that a private staked amount is strictly greater
// than a public threshold.
//
// private: [staked]
// public:  [threshold]
type StakeCircuit struct{}

func (StakeCircuit) Name() string { return "stake" }

func (c StakeCircuit) Evaluate(private, public []uint256.Int) error {
	if err := checkArity(c, private, public, 1, 1); err != nil {
		return err
	}
	if !private[0].Gt(&public[0]) {
		return ErrUnsatisfied
	}
	return nil
}

// BatchCircuit proves that every active order of a batch has a non-zero
// input amount and a non-zero minimum output. Each order is checked
// independently.
//
// private: [amount_0, minOutput_0, ..., amount_n-1, minOutput_n-1]
// public:  [n]
type BatchCircuit struct{}

func (BatchCircuit) Name() string { return "batch" }

func (c BatchCircuit) Evaluate(private, public []uint256.Int) error {
	if len(public) != 1 || !public[0].IsUint64() {
		return fmt.Errorf("%s: expected a single order count", c.Name())
	}
	n := public[0].Uint64()
	if n == 0 || uint64(len(private)) != 2*n {
		return fmt.Errorf("%s: expected %d private inputs, got %d", c.Name(), 2*n, len(private))
	}
	for i := range private {
		if private[i].IsZero() {
			return fmt.Errorf("%w: order %d", ErrUnsatisfied, i/2)
		}
	}
	return nil
}
