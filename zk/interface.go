// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package zk

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params/hash"
	"github.com/project-illium/zswap/types"
)

// Prover is an interface to the zk-snark prove function.
type Prover interface {
	// Prove creates a proof that the private and public inputs
	// satisfy the circuit. It must fail if they do not.
	Prove(ctx context.Context, circuit Circuit, private, public []uint256.Int) (*types.BalanceProof, error)
}

// Verifier is an interface to the zk-snark verify function.
type Verifier interface {
	// Verify checks the proof against its public inputs.
	Verify(ctx context.Context, circuit Circuit, proof *types.BalanceProof) (bool, error)
}

const mockNonceLen = 32

// PublicInputs maps public circuit inputs into the scalar field.
func PublicInputs(public []uint256.Int) []fr.Element {
	ret := make([]fr.Element, len(public))
	for i := range public {
		b := public[i].Bytes32()
		ret[i] = hash.ToFieldElement(b[:])
	}
	return ret
}

func transcript(vk types.ID, inputs []fr.Element, nonce []byte) []byte {
	data := make([][]byte, 0, len(inputs)+2)
	data = append(data, vk[:])
	for i := range inputs {
		b := inputs[i].Bytes()
		data = append(data, b[:])
	}
	data = append(data, nonce)
	return hash.FieldHash(data...)
}

// MockProver is a mock implementation of the Prover interface.
// It does validate that the private and public inputs satisfy the
// circuit, but instead of a real proof it returns a random nonce
// followed by a MiMC transcript over the verification key, the public
// inputs and the nonce.
type MockProver struct {
	delay time.Duration
	mtx   sync.RWMutex
}

// Prove creates a proof that the private and public inputs satisfy
// the circuit.
func (m *MockProver) Prove(ctx context.Context, circuit Circuit, private, public []uint256.Int) (*types.BalanceProof, error) {
	if err := circuit.Evaluate(private, public); err != nil {
		return nil, err
	}

	m.mtx.RLock()
	delay := m.delay
	m.mtx.RUnlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	nonce := make([]byte, mockNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	vk := VerificationKeyHash(circuit)
	inputs := PublicInputs(public)
	return &types.BalanceProof{
		ProofBytes:          append(nonce, transcript(vk, inputs, nonce)...),
		PublicInputs:        inputs,
		VerificationKeyHash: vk,
	}, nil
}

// SetDelay makes every subsequent Prove call take at least d. This is
// used to simulate slow provers.
func (m *MockProver) SetDelay(d time.Duration) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.delay = d
}

// MockVerifier checks proofs created by MockProver.
type MockVerifier struct{}

// Verify checks that the proof was created for this circuit and these
// public inputs.
func (m *MockVerifier) Verify(ctx context.Context, circuit Circuit, proof *types.BalanceProof) (bool, error) {
	if proof == nil {
		return false, errors.New("nil proof")
	}
	if proof.VerificationKeyHash != VerificationKeyHash(circuit) {
		return false, nil
	}
	if len(proof.ProofBytes) != mockNonceLen+hash.FieldElementSize {
		return false, nil
	}
	nonce := proof.ProofBytes[:mockNonceLen]
	expected := transcript(proof.VerificationKeyHash, proof.PublicInputs, nonce)
	return bytes.Equal(proof.ProofBytes[mockNonceLen:], expected), nil
}

var (
	_ Prover   = (*MockProver)(nil)
	_ Verifier = (*MockVerifier)(nil)
)
