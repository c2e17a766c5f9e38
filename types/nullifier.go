// Copyright (c) 2022 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/project-illium/zswap/params/hash"
)

const NullifierSize = hash.HashSize

type Nullifier [hash.HashSize]byte

func (n Nullifier) String() string {
	return hex.EncodeToString(n[:])
}

func (n Nullifier) Bytes() []byte {
	return n[:]
}

func (n Nullifier) Clone() Nullifier {
	var b [len(n)]byte
	copy(b[:], n[:])
	return b
}

func (n *Nullifier) SetBytes(data []byte) {
	copy(n[:], data)
}

func (n Nullifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(n[:]))
}

func (n *Nullifier) UnmarshalJSON(data []byte) error {
	i, err := NewNullifierFromString(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*n = i
	return nil
}

func NewNullifier(b []byte) Nullifier {
	var sh Nullifier
	sh.SetBytes(b)
	return sh
}

// NewNullifierFromBytes returns an ErrInvalidInput error unless b is
// exactly NullifierSize bytes long.
func NewNullifierFromBytes(b []byte) (Nullifier, error) {
	if len(b) != NullifierSize {
		return Nullifier{}, NewError(ErrInvalidInput, fmt.Sprintf("nullifier must be %d bytes, got %d", NullifierSize, len(b)))
	}
	return NewNullifier(b), nil
}

func NewNullifierFromString(n string) (Nullifier, error) {
	ret, err := hex.DecodeString(strings.TrimPrefix(n, "0x"))
	if err != nil {
		return Nullifier{}, WrapError(ErrInvalidInput, "invalid nullifier hex", err)
	}
	return NewNullifierFromBytes(ret)
}
