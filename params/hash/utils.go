// Copyright (c) 2022 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package hash

// CatAndHash concatenates all the elements in the slice together
// and then hashes.
func CatAndHash(data [][]byte) []byte {
	size := 0
	for _, d := range data {
		size += len(d)
	}
	combined := make([]byte, 0, size)
	for _, d := range data {
		combined = append(combined, d...)
	}
	return HashFunc(combined)
}
