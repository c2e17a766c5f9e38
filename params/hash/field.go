// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package hash

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// FieldElementSize is the byte length of a canonical bn254 scalar.
const FieldElementSize = fr.Bytes

// FieldModulus returns the bn254 scalar field modulus.
func FieldModulus() *big.Int {
	return fr.Modulus()
}

// ToFieldElement interprets b as a big-endian integer and reduces it
// into the bn254 scalar field.
func ToFieldElement(b []byte) fr.Element {
	var e fr.Element
	e.SetBytes(b)
	return e
}

// FieldHash absorbs each input, reduced into the scalar field, into a
// MiMC sponge and returns the 32 byte digest. Unlike HashFunc the output
// is always a valid field element, which is what circuit-facing
// transcripts need.
func FieldHash(data ...[]byte) []byte {
	h := mimc.NewMiMC()
	for _, d := range data {
		e := ToFieldElement(d)
		b := e.Bytes()
		h.Write(b[:])
	}
	return h.Sum(nil)
}
