// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params/hash"
)

// NoteLen is the length of a serialized note.
const NoteLen = IDLen + AmountLen + IDLen + SaltLen

// Note is a private balance fragment. The commitment is published in
// place of the note and the nullifier is revealed when the note is
// spent. A Note is never modified after it is created.
type Note struct {
	TokenID    ID
	Amount     uint256.Int
	Owner      ID
	Salt       [SaltLen]byte
	Commitment ID
	Nullifier  Nullifier
}

// NewNote builds a note and derives its commitment and nullifier.
func NewNote(tokenID ID, amount *uint256.Int, owner ID, salt [SaltLen]byte) *Note {
	n := &Note{
		TokenID: tokenID,
		Owner:   owner,
		Salt:    salt,
	}
	if amount != nil {
		n.Amount.Set(amount)
	}
	n.Commitment = ComputeCommitment(n.TokenID, &n.Amount, n.Owner, n.Salt)
	n.Nullifier = ComputeNullifier(n.Commitment, n.Owner, n.Salt)
	return n
}

// NoteFromBytes is NewNote for untrusted input. Every byte field must
// have its exact width.
func NoteFromBytes(tokenID []byte, amount *uint256.Int, owner []byte, salt []byte) (*Note, error) {
	if amount == nil {
		return nil, NewError(ErrInvalidInput, "note amount is nil")
	}
	tid, err := NewIDFromBytes(tokenID)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, "invalid token id", err)
	}
	oid, err := NewIDFromBytes(owner)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, "invalid owner", err)
	}
	if len(salt) != SaltLen {
		return nil, NewError(ErrInvalidInput, fmt.Sprintf("salt must be %d bytes, got %d", SaltLen, len(salt)))
	}
	var s [SaltLen]byte
	copy(s[:], salt)
	return NewNote(tid, amount, oid, s), nil
}

// ComputeCommitment hashes tokenID || amount || owner || salt.
func ComputeCommitment(tokenID ID, amount *uint256.Int, owner ID, salt [SaltLen]byte) ID {
	amt := AmountBytes(amount)
	return NewID(hash.CatAndHash([][]byte{tokenID[:], amt[:], owner[:], salt[:]}))
}

// ComputeNullifier hashes commitment || owner || salt. The input order
// differs from the commitment so the two digests cannot be linked by
// inspection.
func ComputeNullifier(commitment ID, owner ID, salt [SaltLen]byte) Nullifier {
	return NewNullifier(hash.CatAndHash([][]byte{commitment[:], owner[:], salt[:]}))
}

// Verify recomputes the commitment and nullifier from the note fields
// and reports whether they match the stored values.
func (n *Note) Verify() bool {
	c := ComputeCommitment(n.TokenID, &n.Amount, n.Owner, n.Salt)
	return c == n.Commitment && ComputeNullifier(c, n.Owner, n.Salt) == n.Nullifier
}

// Serialize returns the note serialized as a byte array. This format is
// suitable for encrypting and sending to the counterparty.
func (n *Note) Serialize() []byte {
	ser := make([]byte, 0, NoteLen)
	amt := AmountBytes(&n.Amount)
	ser = append(ser, n.TokenID[:]...)
	ser = append(ser, amt[:]...)
	ser = append(ser, n.Owner[:]...)
	ser = append(ser, n.Salt[:]...)
	return ser
}

// DeserializeNote turns a serialized byte slice back into a Note and
// rederives its commitment and nullifier.
func DeserializeNote(ser []byte) (*Note, error) {
	if len(ser) != NoteLen {
		return nil, NewError(ErrInvalidInput, "invalid serialization length")
	}
	return NoteFromBytes(
		ser[:IDLen],
		AmountFromBytes(ser[IDLen:IDLen+AmountLen]),
		ser[IDLen+AmountLen:IDLen*2+AmountLen],
		ser[IDLen*2+AmountLen:],
	)
}
