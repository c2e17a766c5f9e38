// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package hash

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
)

func TestHashFunc(t *testing.T) {
	b := make([]byte, 32)
	rand.Read(b)
	assert.Len(t, HashFunc(b), HashSize)
	assert.Equal(t, HashFunc(b), HashFunc(b))
}

func TestCatAndHash(t *testing.T) {
	a := bytes.Repeat([]byte{0x01}, 32)
	b := bytes.Repeat([]byte{0x02}, 32)
	assert.Equal(t, HashFunc(append(append([]byte{}, a...), b...)), CatAndHash([][]byte{a, b}))
}

func TestKeccak256(t *testing.T) {
	// Well known selector for transfer(address,uint256).
	h := Keccak256([]byte("transfer(address,uint256)"))
	assert.Equal(t, "a9059cbb", hex.EncodeToString(h[:4]))
}

func TestFieldHash(t *testing.T) {
	max := bytes.Repeat([]byte{0xff}, 32)
	h := FieldHash(max, []byte{0x01})
	assert.Len(t, h, FieldElementSize)

	var e fr.Element
	assert.NoError(t, e.SetBytesCanonical(h))
	assert.Equal(t, h, FieldHash(max, []byte{0x01}))
	assert.NotEqual(t, h, FieldHash([]byte{0x01}, max))
}
