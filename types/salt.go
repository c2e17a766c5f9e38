// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"crypto/rand"

	"github.com/project-illium/zswap/params/hash"
)

const SaltLen = 32

// RandomSalt generates a random number that is less than the
// circuit field modulus.
func RandomSalt() ([SaltLen]byte, error) {
	// Generate a random number in the range [0, modulus)
	randomNum, err := rand.Int(rand.Reader, hash.FieldModulus())
	if err != nil {
		return [SaltLen]byte{}, err
	}

	var ret [SaltLen]byte
	randomNum.FillBytes(ret[:])
	return ret, nil
}
