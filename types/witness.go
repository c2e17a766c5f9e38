// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"fmt"
	"io"

	"github.com/holiman/uint256"
)

const redactedWitness = "<witness>"

// WitnessField is a value that is only ever passed to a circuit as a
// private input. The type is the private tag: it has no conversion to
// a public input and every formatting path redacts the value.
type WitnessField struct {
	value uint256.Int
}

// NewWitness copies v into a WitnessField. A nil v is zero.
func NewWitness(v *uint256.Int) WitnessField {
	var w WitnessField
	if v != nil {
		w.value.Set(v)
	}
	return w
}

// WitnessFromUint64 is a convenience constructor.
func WitnessFromUint64(v uint64) WitnessField {
	var w WitnessField
	w.value.SetUint64(v)
	return w
}

// Value returns a copy of the private value. Callers must not hand the
// result to anything that ends up in logs or public inputs.
func (w WitnessField) Value() *uint256.Int {
	return new(uint256.Int).Set(&w.value)
}

// IsPrivate always returns true.
func (w WitnessField) IsPrivate() bool {
	return true
}

func (w WitnessField) IsZero() bool {
	return w.value.IsZero()
}

func (w WitnessField) Equal(other WitnessField) bool {
	return w.value.Eq(&other.value)
}

func (w WitnessField) String() string {
	return redactedWitness
}

func (w WitnessField) GoString() string {
	return redactedWitness
}

// Format implements fmt.Formatter so no verb prints the value.
func (w WitnessField) Format(f fmt.State, _ rune) {
	io.WriteString(f, redactedWitness)
}

func (w WitnessField) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedWitness + `"`), nil
}
