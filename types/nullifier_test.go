// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testSerializedNullifier = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
)

func TestNewNullifierFromString(t *testing.T) {
	n, err := NewNullifierFromString(testSerializedNullifier)
	assert.NoError(t, err)
	assert.Equal(t, testSerializedNullifier, n.String())

	for _, s := range []string{testSerializedNullifier + "00", testSerializedNullifier[:62], "ab", ""} {
		_, err = NewNullifierFromString(s)
		assert.True(t, ErrorIs(err, ErrInvalidInput), "input %q", s)
	}
}

func TestNewNullifierFromBytes(t *testing.T) {
	for _, l := range []int{0, 31, 33} {
		_, err := NewNullifierFromBytes(make([]byte, l))
		assert.True(t, ErrorIs(err, ErrInvalidInput), "len %d", l)
	}
	n, err := NewNullifierFromBytes(make([]byte, NullifierSize))
	assert.NoError(t, err)
	assert.Equal(t, Nullifier{}, n)
}

func TestNullifierJSON(t *testing.T) {
	n, err := NewNullifierFromString(testSerializedNullifier)
	assert.NoError(t, err)

	out, err := json.Marshal(n)
	assert.NoError(t, err)
	assert.Equal(t, `"`+testSerializedNullifier+`"`, string(out))

	var n2 Nullifier
	assert.NoError(t, json.Unmarshal(out, &n2))
	assert.Equal(t, n, n2)
}

func TestNullifierClone(t *testing.T) {
	n, err := NewNullifierFromString(testSerializedNullifier)
	assert.NoError(t, err)
	c := n.Clone()
	c[0] = 0xff
	assert.NotEqual(t, n, c)
}
