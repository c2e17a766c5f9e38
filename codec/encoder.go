// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package codec

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
)

const (
	// WordLen is the width of every scalar except witness fields.
	WordLen = 32
	// WitnessLen is the width of an encoded witness field.
	WitnessLen = 1 + WordLen
	// OrderLen is the width of an encoded SwapOrder.
	OrderLen = WordLen + WitnessLen + WordLen + WitnessLen + WitnessLen + WordLen
	// BatchLen is the width of an encoded BatchSwapOrder.
	BatchLen = OrderLen*params.MaxBatchSize + WordLen

	witnessFlag = 0x01
)

// Encoder appends fixed width values to a buffer. The first error
// encountered is kept and returned by Bytes, every later write is a
// no-op.
type Encoder struct {
	buf []byte
	err error
}

// NewEncoder returns an encoder that appends to prefix.
func NewEncoder(prefix []byte) *Encoder {
	buf := make([]byte, len(prefix), len(prefix)+256)
	copy(buf, prefix)
	return &Encoder{buf: buf}
}

// Bytes returns the encoded buffer or the first error.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}

func (e *Encoder) fail(format string, a ...interface{}) {
	if e.err == nil {
		e.err = types.NewError(types.ErrInvalidInput, fmt.Sprintf(format, a...))
	}
}

// ID writes a 32 byte id.
func (e *Encoder) ID(id types.ID) {
	if e.err != nil {
		return
	}
	e.buf = append(e.buf, id[:]...)
}

// Uint writes a 256 bit unsigned integer. A nil value is written as
// zero.
func (e *Encoder) Uint(v *uint256.Int) {
	if e.err != nil {
		return
	}
	var b [WordLen]byte
	if v != nil {
		b = v.Bytes32()
	}
	e.buf = append(e.buf, b[:]...)
}

// Uint64 writes v as a uint256.
func (e *Encoder) Uint64(v uint64) {
	e.Uint(uint256.NewInt(v))
}

// Bool writes a boolean word.
func (e *Encoder) Bool(v bool) {
	if e.err != nil {
		return
	}
	var b [WordLen]byte
	if v {
		b[WordLen-1] = 1
	}
	e.buf = append(e.buf, b[:]...)
}

// Witness writes a witness field.
func (e *Encoder) Witness(w types.WitnessField) {
	if e.err != nil {
		return
	}
	e.buf = append(e.buf, witnessFlag)
	b := w.Value().Bytes32()
	e.buf = append(e.buf, b[:]...)
}

// FieldElement writes a scalar field element.
func (e *Encoder) FieldElement(f fr.Element) {
	if e.err != nil {
		return
	}
	b := f.Bytes()
	e.buf = append(e.buf, b[:]...)
}

// ByteString writes a count prefixed byte string.
func (e *Encoder) ByteString(b []byte) {
	e.Uint64(uint64(len(b)))
	if e.err != nil {
		return
	}
	e.buf = append(e.buf, b...)
}

// IDs writes a count prefixed id array.
func (e *Encoder) IDs(ids []types.ID) {
	e.Uint64(uint64(len(ids)))
	for _, id := range ids {
		e.ID(id)
	}
}

// FixedIDs writes exactly n ids. Missing trailing ids are written as
// zero.
func (e *Encoder) FixedIDs(n int, ids []types.ID) {
	if len(ids) > n {
		e.fail("%d ids do not fit in %s", len(ids), FixedIDsKind(n))
		return
	}
	for i := 0; i < n; i++ {
		if i < len(ids) {
			e.ID(ids[i])
		} else {
			e.ID(types.ID{})
		}
	}
}

// SwapOrder writes input token, input amount, output token, output
// amount, minimum output and deadline.
func (e *Encoder) SwapOrder(o types.SwapOrder) {
	e.ID(o.Input.TokenID)
	e.Witness(o.Input.Amount)
	e.ID(o.Output.TokenID)
	e.Witness(o.Output.Amount)
	e.Witness(o.MinOutputAmount)
	e.Uint64(o.Deadline)
}

// BatchSwapOrder writes every slot of the batch followed by the active
// count. Unused slots are zero orders.
func (e *Encoder) BatchSwapOrder(b *types.BatchSwapOrder) {
	if b == nil {
		e.fail("nil batch")
		return
	}
	slots, err := b.Slots()
	if err != nil {
		if e.err == nil {
			e.err = err
		}
		return
	}
	for _, slot := range slots {
		e.SwapOrder(slot.Order)
	}
	e.Uint64(uint64(b.ActiveCount()))
}

// Proof writes the proof bytes, the public inputs and the verification
// key hash.
func (e *Encoder) Proof(p *types.BalanceProof) {
	if p == nil {
		e.fail("nil proof")
		return
	}
	e.ByteString(p.ProofBytes)
	e.Uint64(uint64(len(p.PublicInputs)))
	for _, in := range p.PublicInputs {
		e.FieldElement(in)
	}
	e.ID(p.VerificationKeyHash)
}

// Arg is a typed call argument.
type Arg struct {
	kind Kind
	enc  func(e *Encoder)
}

// Kind returns the argument's declared kind.
func (a Arg) Kind() Kind {
	return a.kind
}

func IDArg(id types.ID) Arg {
	return Arg{KindID, func(e *Encoder) { e.ID(id) }}
}

func UintArg(v *uint256.Int) Arg {
	return Arg{KindUint, func(e *Encoder) { e.Uint(v) }}
}

func Uint64Arg(v uint64) Arg {
	return Arg{KindUint, func(e *Encoder) { e.Uint64(v) }}
}

func BoolArg(v bool) Arg {
	return Arg{KindBool, func(e *Encoder) { e.Bool(v) }}
}

func WitnessArg(w types.WitnessField) Arg {
	return Arg{KindWitness, func(e *Encoder) { e.Witness(w) }}
}

func FieldArg(f fr.Element) Arg {
	return Arg{KindField, func(e *Encoder) { e.FieldElement(f) }}
}

func BytesArg(b []byte) Arg {
	return Arg{KindBytes, func(e *Encoder) { e.ByteString(b) }}
}

func IDsArg(ids []types.ID) Arg {
	return Arg{KindIDs, func(e *Encoder) { e.IDs(ids) }}
}

// FixedIDsArg lowers ids to a fixed array of n, padding with zero ids.
func FixedIDsArg(n int, ids []types.ID) Arg {
	return Arg{FixedIDsKind(n), func(e *Encoder) { e.FixedIDs(n, ids) }}
}

func OrderArg(o types.SwapOrder) Arg {
	return Arg{KindOrder, func(e *Encoder) { e.SwapOrder(o) }}
}

func BatchArg(b *types.BatchSwapOrder) Arg {
	return Arg{KindBatch, func(e *Encoder) { e.BatchSwapOrder(b) }}
}

func ProofArg(p *types.BalanceProof) Arg {
	return Arg{KindProof, func(e *Encoder) { e.Proof(p) }}
}
