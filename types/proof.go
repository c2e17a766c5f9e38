// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// BalanceProof is an opaque zero knowledge proof together with the
// public inputs it commits to and the hash of the verification key of
// the circuit that produced it.
//
// A proof is only valid for the exact public inputs it was created
// with and must never be reused for different inputs.
type BalanceProof struct {
	ProofBytes          []byte
	PublicInputs        []fr.Element
	VerificationKeyHash ID
}

// Clone returns a deep copy of the proof.
func (p *BalanceProof) Clone() *BalanceProof {
	if p == nil {
		return nil
	}
	c := &BalanceProof{
		ProofBytes:          make([]byte, len(p.ProofBytes)),
		PublicInputs:        make([]fr.Element, len(p.PublicInputs)),
		VerificationKeyHash: p.VerificationKeyHash,
	}
	copy(c.ProofBytes, p.ProofBytes)
	copy(c.PublicInputs, p.PublicInputs)
	return c
}
