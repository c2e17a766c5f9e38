// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package codec converts contract calls, return values and events to
// and from the fixed width wire format the swap contract expects.
//
// A call is a four byte selector followed by the encoded arguments in
// declaration order. Every scalar has one canonical width:
//
//	bytes32   32 bytes
//	uint256   32 bytes, big-endian
//	bool      32 bytes, the last byte is 0 or 1
//	witness   33 bytes, a 0x01 private flag followed by the value
//	field     32 bytes, a canonical bn254 scalar
//
// Composite values are the concatenation of their members. Dynamic
// arrays and byte strings are prefixed with a 32 byte count, fixed size
// arrays are not.
package codec

import (
	"fmt"
	"strings"

	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/params/hash"
	"github.com/project-illium/zswap/types"
)

// SelectorLen is the length of a function selector.
const SelectorLen = 4

// Selector identifies a contract method.
type Selector [SelectorLen]byte

// NewSelector returns the first four bytes of the keccak256 hash of
// the canonical method signature.
func NewSelector(signature string) Selector {
	var s Selector
	copy(s[:], hash.Keccak256([]byte(signature)))
	return s
}

// Kind is the canonical type name of a parameter.
type Kind string

const (
	KindID      Kind = "bytes32"
	KindUint    Kind = "uint256"
	KindBool    Kind = "bool"
	KindWitness Kind = "witness"
	KindField   Kind = "field"
	KindBytes   Kind = "bytes"
	KindIDs     Kind = "bytes32[]"
	KindOrder   Kind = "order"
	KindProof   Kind = "proof"
)

var (
	// KindBatch is a batch lowered to its fixed number of order slots.
	KindBatch = Kind(fmt.Sprintf("%s[%d]", KindOrder, params.MaxBatchSize))
	// KindLegCommitments holds the input and output commitments of a
	// single swap or liquidity deposit.
	KindLegCommitments = FixedIDsKind(2)
	// KindBatchCommitments holds two commitments per batch slot.
	KindBatchCommitments = FixedIDsKind(params.MaxBatchCommitments)
)

// FixedIDsKind returns the kind of a fixed size bytes32 array.
func FixedIDsKind(n int) Kind {
	return Kind(fmt.Sprintf("%s[%d]", KindID, n))
}

func signature(name string, inputs []Kind) string {
	ks := make([]string, len(inputs))
	for i, k := range inputs {
		ks[i] = string(k)
	}
	return name + "(" + strings.Join(ks, ",") + ")"
}

// Method describes a contract method.
type Method struct {
	Name     string
	Inputs   []Kind
	Outputs  []Kind
	ReadOnly bool
}

// Signature returns the canonical signature, for example
// "stake(uint256,bytes32,proof)".
func (m *Method) Signature() string {
	return signature(m.Name, m.Inputs)
}

// Selector returns the method selector.
func (m *Method) Selector() Selector {
	return NewSelector(m.Signature())
}

// Contract method names.
const (
	MethodSwap              = "swap"
	MethodBatchSwap         = "batchSwap"
	MethodStake             = "stake"
	MethodUnstake           = "unstake"
	MethodAddLiquidity      = "addLiquidity"
	MethodRemoveLiquidity   = "removeLiquidity"
	MethodClaimRewards      = "claimRewards"
	MethodEmergencyWithdraw = "emergencyWithdraw"
	MethodSetPaused         = "setPaused"

	MethodGetContractState = "getContractState"
	MethodIsPremiumUser    = "isPremiumUser"
	MethodStakedAmount     = "stakedAmount"
	MethodIsNullifierSpent = "isNullifierSpent"
	MethodBalanceOf        = "balanceOf"
	MethodPoolExists       = "poolExists"
)

// Methods is the contract's method table keyed by name.
var Methods = map[string]*Method{
	MethodSwap: {
		Name:   MethodSwap,
		Inputs: []Kind{KindOrder, KindLegCommitments, KindID, KindBytes, KindProof},
	},
	MethodBatchSwap: {
		Name:   MethodBatchSwap,
		Inputs: []Kind{KindBatch, KindBatchCommitments, KindIDs, KindBytes, KindProof, KindProof},
	},
	MethodStake: {
		Name:   MethodStake,
		Inputs: []Kind{KindUint, KindID, KindProof},
	},
	MethodUnstake: {
		Name:   MethodUnstake,
		Inputs: []Kind{KindUint},
	},
	MethodAddLiquidity: {
		Name:   MethodAddLiquidity,
		Inputs: []Kind{KindID, KindID, KindWitness, KindWitness, KindLegCommitments, KindProof, KindProof},
	},
	MethodRemoveLiquidity: {
		Name:   MethodRemoveLiquidity,
		Inputs: []Kind{KindID, KindUint},
	},
	MethodClaimRewards: {
		Name: MethodClaimRewards,
	},
	MethodEmergencyWithdraw: {
		Name: MethodEmergencyWithdraw,
	},
	MethodSetPaused: {
		Name:   MethodSetPaused,
		Inputs: []Kind{KindBool},
	},
	MethodGetContractState: {
		Name:     MethodGetContractState,
		Outputs:  []Kind{KindID, KindID, KindID, KindUint, KindUint, KindUint, KindUint, KindBool},
		ReadOnly: true,
	},
	MethodIsPremiumUser: {
		Name:     MethodIsPremiumUser,
		Inputs:   []Kind{KindID},
		Outputs:  []Kind{KindBool},
		ReadOnly: true,
	},
	MethodStakedAmount: {
		Name:     MethodStakedAmount,
		Inputs:   []Kind{KindID},
		Outputs:  []Kind{KindUint},
		ReadOnly: true,
	},
	MethodIsNullifierSpent: {
		Name:     MethodIsNullifierSpent,
		Inputs:   []Kind{KindID},
		Outputs:  []Kind{KindBool},
		ReadOnly: true,
	},
	MethodPoolExists: {
		Name:     MethodPoolExists,
		Inputs:   []Kind{KindID},
		Outputs:  []Kind{KindBool},
		ReadOnly: true,
	},
	MethodBalanceOf: {
		Name:     MethodBalanceOf,
		Inputs:   []Kind{KindID, KindID},
		Outputs:  []Kind{KindUint},
		ReadOnly: true,
	},
}

var methodsBySelector = make(map[Selector]*Method)

func init() {
	for _, m := range Methods {
		methodsBySelector[m.Selector()] = m
	}
}

// MethodBySelector looks up a method by its selector.
func MethodBySelector(s Selector) (*Method, bool) {
	m, ok := methodsBySelector[s]
	return m, ok
}

// EncodeFunction encodes a call to the named method. The arguments must
// match the method's declared inputs exactly.
func EncodeFunction(name string, args ...Arg) ([]byte, error) {
	m, ok := Methods[name]
	if !ok {
		return nil, types.NewError(types.ErrInvalidInput, fmt.Sprintf("unknown method %q", name))
	}
	if len(args) != len(m.Inputs) {
		return nil, types.NewError(types.ErrInvalidInput, fmt.Sprintf("%s expects %d arguments, got %d", name, len(m.Inputs), len(args)))
	}
	sel := m.Selector()
	e := NewEncoder(sel[:])
	for i, arg := range args {
		if arg.kind != m.Inputs[i] {
			return nil, types.NewError(types.ErrInvalidInput, fmt.Sprintf("%s argument %d: expected %s, got %s", name, i, m.Inputs[i], arg.kind))
		}
		arg.enc(e)
	}
	return e.Bytes()
}

// DecodeFunction looks up the method a call is addressed to and returns
// a decoder positioned at its first argument.
func DecodeFunction(data []byte) (*Method, *Decoder, error) {
	if len(data) < SelectorLen {
		return nil, nil, types.NewError(types.ErrDecode, "call data shorter than a selector")
	}
	var sel Selector
	copy(sel[:], data)
	m, ok := MethodBySelector(sel)
	if !ok {
		return nil, nil, types.NewError(types.ErrDecode, fmt.Sprintf("unknown selector %x", sel[:]))
	}
	return m, NewDecoder(data[SelectorLen:]), nil
}
