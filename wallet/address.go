// Copyright (c) 2022 Project Illium
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/libp2p/go-libp2p/core/crypto"
	zcrypto "github.com/project-illium/zswap/crypto"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
)

const addressVersion = 1

// Address is the displayable form of a wallet. It carries the ledger
// account ID and the curve25519 view key notes are sealed to.
type Address interface {
	EncodeAddress() string
	String() string
}

type BasicAddress struct {
	params  *params.NetworkParams
	version byte
	id      types.ID
	viewKey crypto.PubKey
}

// AccountID derives the ledger account ID of a signing key.
func AccountID(pubKey crypto.PubKey) (types.ID, error) {
	raw, err := pubKey.Raw()
	if err != nil {
		return types.ID{}, err
	}
	return types.NewIDFromData(raw), nil
}

func NewBasicAddress(id types.ID, viewKey crypto.PubKey, params *params.NetworkParams) (*BasicAddress, error) {
	if _, ok := viewKey.(*zcrypto.Curve25519PublicKey); !ok {
		return nil, errors.New("viewKey must be of type Curve25519PublicKey")
	}
	return &BasicAddress{
		id:      id,
		viewKey: viewKey,
		version: addressVersion,
		params:  params,
	}, nil
}

// ID returns the ledger account ID.
func (a *BasicAddress) ID() types.ID {
	return a.id
}

func (a *BasicAddress) ViewKey() crypto.PubKey {
	return a.viewKey
}

func (a *BasicAddress) EncodeAddress() string {
	keyBytes, err := a.viewKey.Raw()
	if err != nil {
		return ""
	}
	converted, err := bech32.ConvertBits(append(a.id.Bytes(), keyBytes...), 8, 5, true)
	if err != nil {
		return ""
	}
	combined := make([]byte, len(converted)+1)
	combined[0] = a.version
	copy(combined[1:], converted)
	ret, err := bech32.EncodeM(a.params.AddressPrefix, combined)
	if err != nil {
		return ""
	}
	return ret
}

func (a *BasicAddress) String() string {
	return a.EncodeAddress()
}

func DecodeAddress(addr string, params *params.NetworkParams) (*BasicAddress, error) {
	// Decode the bech32 encoded address.
	hrp, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return nil, err
	}
	if hrp != params.AddressPrefix {
		return nil, fmt.Errorf("address prefix %q is not valid for %s", hrp, params.Name)
	}

	// The first byte of the decoded address is the version, it must exist.
	if len(data) < 1 {
		return nil, fmt.Errorf("no version")
	}
	if data[0] != addressVersion {
		return nil, fmt.Errorf("unknown address version %d", data[0])
	}

	// The remaining characters of the address returned are grouped into
	// words of 5 bits. In order to restore the original address bytes,
	// we'll need to regroup into 8 bit words.
	regrouped, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, err
	}
	if len(regrouped) != types.IDLen+zcrypto.Curve25519PublicKeySize {
		return nil, fmt.Errorf("invalid address length %d", len(regrouped))
	}

	pub, err := zcrypto.UnmarshalCurve25519PublicKey(regrouped[types.IDLen:])
	if err != nil {
		return nil, err
	}

	return &BasicAddress{
		params:  params,
		version: data[0],
		id:      types.NewID(regrouped[:types.IDLen]),
		viewKey: pub,
	}, nil
}
