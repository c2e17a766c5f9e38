// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"
)

var errTxSerialization = errors.New("invalid transaction serialization")

// UnsignedTransaction is the payload the wallet signs.
type UnsignedTransaction struct {
	To       ID
	Data     []byte
	Value    *uint256.Int
	Nonce    uint64
	GasLimit uint64
}

// Serialize returns the canonical encoding of the transaction. This is
// the message that gets signed.
func (tx *UnsignedTransaction) Serialize() []byte {
	ser := make([]byte, 0, IDLen+AmountLen+8+8+4+len(tx.Data))
	value := AmountBytes(tx.Value)
	ser = append(ser, tx.To[:]...)
	ser = append(ser, value[:]...)
	ser = binary.BigEndian.AppendUint64(ser, tx.Nonce)
	ser = binary.BigEndian.AppendUint64(ser, tx.GasLimit)
	ser = binary.BigEndian.AppendUint32(ser, uint32(len(tx.Data)))
	ser = append(ser, tx.Data...)
	return ser
}

// SigHash returns the hash committed to by the signature.
func (tx *UnsignedTransaction) SigHash() ID {
	return NewIDFromData(tx.Serialize())
}

// DeserializeUnsignedTransaction is the inverse of Serialize.
func DeserializeUnsignedTransaction(ser []byte) (*UnsignedTransaction, error) {
	const headerLen = IDLen + AmountLen + 8 + 8 + 4
	if len(ser) < headerLen {
		return nil, errTxSerialization
	}
	tx := &UnsignedTransaction{
		To:       NewID(ser[:IDLen]),
		Value:    AmountFromBytes(ser[IDLen : IDLen+AmountLen]),
		Nonce:    binary.BigEndian.Uint64(ser[IDLen+AmountLen:]),
		GasLimit: binary.BigEndian.Uint64(ser[IDLen+AmountLen+8:]),
	}
	dataLen := binary.BigEndian.Uint32(ser[IDLen+AmountLen+16:])
	if uint64(len(ser)-headerLen) != uint64(dataLen) {
		return nil, errTxSerialization
	}
	tx.Data = make([]byte, dataLen)
	copy(tx.Data, ser[headerLen:])
	return tx, nil
}

// SignedTransaction is what gets broadcast to the ledger.
type SignedTransaction struct {
	Tx        UnsignedTransaction
	PubKey    []byte
	Signature []byte
}

// Serialize length-prefixes each part: tx || pubkey || signature.
func (s *SignedTransaction) Serialize() []byte {
	txSer := s.Tx.Serialize()
	ser := make([]byte, 0, 12+len(txSer)+len(s.PubKey)+len(s.Signature))
	for _, part := range [][]byte{txSer, s.PubKey, s.Signature} {
		ser = binary.BigEndian.AppendUint32(ser, uint32(len(part)))
		ser = append(ser, part...)
	}
	return ser
}

// Hash returns the transaction ID.
func (s *SignedTransaction) Hash() ID {
	return NewIDFromData(s.Serialize())
}

// DeserializeSignedTransaction is the inverse of Serialize.
func DeserializeSignedTransaction(ser []byte) (*SignedTransaction, error) {
	parts := make([][]byte, 0, 3)
	for i := 0; i < 3; i++ {
		if len(ser) < 4 {
			return nil, errTxSerialization
		}
		l := binary.BigEndian.Uint32(ser)
		ser = ser[4:]
		if uint64(len(ser)) < uint64(l) {
			return nil, errTxSerialization
		}
		parts = append(parts, ser[:l])
		ser = ser[l:]
	}
	if len(ser) != 0 {
		return nil, errTxSerialization
	}
	tx, err := DeserializeUnsignedTransaction(parts[0])
	if err != nil {
		return nil, err
	}
	return &SignedTransaction{
		Tx:        *tx,
		PubKey:    append([]byte{}, parts[1]...),
		Signature: append([]byte{}, parts[2]...),
	}, nil
}

// Log is an event emitted by a contract.
type Log struct {
	Address     ID
	Topics      []ID
	Data        []byte
	BlockNumber uint64
	TxHash      ID
	Index       uint
}

// Receipt is the result of an included transaction.
type Receipt struct {
	TxHash      ID
	BlockNumber uint64
	Status      bool
	GasUsed     uint64
	Logs        []Log
}

// LogFilter selects logs emitted by Address in the inclusive block
// range [FromBlock, ToBlock]. A log matches when its first topic is one
// of Topics, or always when Topics is empty.
type LogFilter struct {
	Address   ID
	FromBlock uint64
	ToBlock   uint64
	Topics    []ID
}

// Matches reports whether l satisfies the filter.
func (f *LogFilter) Matches(l *Log) bool {
	if l.Address != f.Address || l.BlockNumber < f.FromBlock || l.BlockNumber > f.ToBlock {
		return false
	}
	if len(f.Topics) == 0 {
		return true
	}
	if len(l.Topics) == 0 {
		return false
	}
	for _, t := range f.Topics {
		if l.Topics[0] == t {
			return true
		}
	}
	return false
}
