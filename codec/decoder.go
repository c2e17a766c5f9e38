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

// Decoder reads fixed width values from a buffer. Every read advances
// the cursor by the width of the value. Reading past the end of the
// buffer returns an ErrDecode error.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a decoder positioned at the start of b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// Finish returns an error if any bytes are left unread.
func (d *Decoder) Finish() error {
	if d.Remaining() != 0 {
		return d.errorf("%d trailing bytes", d.Remaining())
	}
	return nil
}

func (d *Decoder) errorf(format string, a ...interface{}) error {
	return types.NewError(types.ErrDecode, fmt.Sprintf("offset %d: ", d.pos)+fmt.Sprintf(format, a...))
}

func (d *Decoder) next(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, d.errorf("need %d bytes, have %d", n, d.Remaining())
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ID reads a 32 byte id.
func (d *Decoder) ID() (types.ID, error) {
	b, err := d.next(WordLen)
	if err != nil {
		return types.ID{}, err
	}
	return types.NewID(b), nil
}

// Uint reads a 256 bit unsigned integer.
func (d *Decoder) Uint() (*uint256.Int, error) {
	b, err := d.next(WordLen)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(b), nil
}

// Uint64 reads a uint256 that must fit in 64 bits.
func (d *Decoder) Uint64() (uint64, error) {
	v, err := d.Uint()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, d.errorf("value overflows uint64")
	}
	return v.Uint64(), nil
}

// Bool reads a boolean word. Any value other than 0 or 1 is an error.
func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uint64()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, d.errorf("invalid bool %d", v)
	}
}

// Witness reads a witness field.
func (d *Decoder) Witness() (types.WitnessField, error) {
	flag, err := d.next(1)
	if err != nil {
		return types.WitnessField{}, err
	}
	if flag[0] != witnessFlag {
		return types.WitnessField{}, d.errorf("invalid witness flag %#x", flag[0])
	}
	v, err := d.Uint()
	if err != nil {
		return types.WitnessField{}, err
	}
	return types.NewWitness(v), nil
}

// FieldElement reads a canonical scalar field element.
func (d *Decoder) FieldElement() (fr.Element, error) {
	var f fr.Element
	b, err := d.next(WordLen)
	if err != nil {
		return f, err
	}
	if err := f.SetBytesCanonical(b); err != nil {
		return f, d.errorf("non-canonical field element")
	}
	return f, nil
}

func (d *Decoder) count(elemLen int) (int, error) {
	n, err := d.Uint64()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.Remaining()/elemLen) {
		return 0, d.errorf("count %d exceeds remaining data", n)
	}
	return int(n), nil
}

// ByteString reads a count prefixed byte string.
func (d *Decoder) ByteString() ([]byte, error) {
	n, err := d.count(1)
	if err != nil {
		return nil, err
	}
	b, err := d.next(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// IDs reads a count prefixed id array.
func (d *Decoder) IDs() ([]types.ID, error) {
	n, err := d.count(WordLen)
	if err != nil {
		return nil, err
	}
	return d.FixedIDs(n)
}

// FixedIDs reads exactly n ids.
func (d *Decoder) FixedIDs(n int) ([]types.ID, error) {
	ids := make([]types.ID, n)
	for i := range ids {
		id, err := d.ID()
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// SwapOrder reads an order written by Encoder.SwapOrder.
func (d *Decoder) SwapOrder() (types.SwapOrder, error) {
	var (
		o   types.SwapOrder
		err error
	)
	if o.Input.TokenID, err = d.ID(); err != nil {
		return o, err
	}
	if o.Input.Amount, err = d.Witness(); err != nil {
		return o, err
	}
	if o.Output.TokenID, err = d.ID(); err != nil {
		return o, err
	}
	if o.Output.Amount, err = d.Witness(); err != nil {
		return o, err
	}
	if o.MinOutputAmount, err = d.Witness(); err != nil {
		return o, err
	}
	if o.Deadline, err = d.Uint64(); err != nil {
		return o, err
	}
	return o, nil
}

// BatchSwapOrder reads the fixed slots of a batch and returns the
// active orders.
func (d *Decoder) BatchSwapOrder() (*types.BatchSwapOrder, error) {
	var slots [params.MaxBatchSize]types.OrderSlot
	for i := range slots {
		o, err := d.SwapOrder()
		if err != nil {
			return nil, err
		}
		slots[i].Order = o
	}
	active, err := d.Uint64()
	if err != nil {
		return nil, err
	}
	if active > params.MaxBatchSize {
		return nil, d.errorf("active count %d exceeds %d", active, params.MaxBatchSize)
	}
	for i := range slots {
		slots[i].Active = i < int(active)
	}
	b, err := types.BatchFromSlots(slots, int(active))
	if err != nil {
		return nil, types.WrapError(types.ErrDecode, "invalid batch", err)
	}
	return b, nil
}

// Proof reads a proof written by Encoder.Proof.
func (d *Decoder) Proof() (*types.BalanceProof, error) {
	proofBytes, err := d.ByteString()
	if err != nil {
		return nil, err
	}
	n, err := d.count(WordLen)
	if err != nil {
		return nil, err
	}
	p := &types.BalanceProof{
		ProofBytes:   proofBytes,
		PublicInputs: make([]fr.Element, n),
	}
	for i := range p.PublicInputs {
		if p.PublicInputs[i], err = d.FieldElement(); err != nil {
			return nil, err
		}
	}
	if p.VerificationKeyHash, err = d.ID(); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeBool decodes a single bool return value.
func DecodeBool(ret []byte) (bool, error) {
	d := NewDecoder(ret)
	v, err := d.Bool()
	if err != nil {
		return false, err
	}
	return v, d.Finish()
}

// DecodeUint decodes a single uint256 return value.
func DecodeUint(ret []byte) (*uint256.Int, error) {
	d := NewDecoder(ret)
	v, err := d.Uint()
	if err != nil {
		return nil, err
	}
	return v, d.Finish()
}
