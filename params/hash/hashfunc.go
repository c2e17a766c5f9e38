// Copyright (c) 2022 Project Illium
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package hash

import (
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

const HashSize = 32

func HashFunc(data []byte) []byte {
	h := blake2s.Sum256(data)
	return h[:]
}

// Keccak256 returns the legacy keccak256 digest of the concatenated
// data. The ledger uses it for function selectors and event topics.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
