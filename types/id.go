// Copyright (c) 2022 Project Illium
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

const IDLen = hash.HashSize

// ID is a 32 byte identifier. Token IDs, owner addresses, commitments,
// transaction hashes and event topics are all IDs.
type ID [hash.HashSize]byte

// Compare returns 1 if hash > target, -1 if hash < target and
// 0 if hash == target.
func (id ID) Compare(target ID) int {
	for i := 0; i < len(id); i++ {
		a := id[i]
		b := target[i]
		if a > b {
			return 1
		}
		if a < b {
			return -1
		}
	}
	return 0
}

func (id ID) IsZero() bool {
	return id == ID{}
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ID) Bytes() []byte {
	return id[:]
}

func (id *ID) SetBytes(data []byte) {
	copy(id[:], data)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(id[:]))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	i, err := NewIDFromString(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*id = i
	return nil
}

// NewID copies the digest into an ID. Callers that hold untrusted
// input should use NewIDFromBytes instead.
func NewID(digest []byte) ID {
	var sh ID
	sh.SetBytes(digest)
	return sh
}

// NewIDFromBytes returns an ErrInvalidInput error unless b is exactly
// IDLen bytes long.
func NewIDFromBytes(b []byte) (ID, error) {
	if len(b) != IDLen {
		return ID{}, NewError(ErrInvalidInput, fmt.Sprintf("id must be %d bytes, got %d", IDLen, len(b)))
	}
	return NewID(b), nil
}

// NewIDFromString decodes a hex ID with an optional 0x prefix. Anything
// other than exactly IDLen bytes is an ErrInvalidInput error.
func NewIDFromString(id string) (ID, error) {
	ret, err := hex.DecodeString(strings.TrimPrefix(id, "0x"))
	if err != nil {
		return ID{}, WrapError(ErrInvalidInput, "invalid id hex", err)
	}
	return NewIDFromBytes(ret)
}

func NewIDFromData(data []byte) ID {
	var id ID
	h := hash.HashFunc(data)
	id.SetBytes(h)
	return id
}
