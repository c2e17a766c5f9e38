// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"errors"

	"github.com/holiman/uint256"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/project-illium/zswap/codec"
	zcrypto "github.com/project-illium/zswap/crypto"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
)

// ErrInvalidSignature is returned when a signed transaction does not
// verify against its public key.
var ErrInvalidSignature = errors.New("invalid transaction signature")

// Caller performs read-only contract calls. It is used to look up
// balances.
type Caller interface {
	Call(ctx context.Context, to types.ID, data []byte) ([]byte, error)
}

// Keystore is a wallet backed by a single ed25519 key. The matching
// curve25519 key is used as the view key for notes sealed to the
// wallet.
type Keystore struct {
	privKey  crypto.PrivKey
	viewKey  crypto.PrivKey
	id       types.ID
	address  *BasicAddress
	contract types.ID
	caller   Caller
}

// NewKeystore returns a Keystore for privKey. Balances are read from
// the swap contract through caller.
func NewKeystore(privKey crypto.PrivKey, caller Caller, params *params.NetworkParams) (*Keystore, error) {
	if privKey == nil {
		return nil, types.AssertError("NewKeystore: private key cannot be nil")
	}
	if caller == nil {
		return nil, types.AssertError("NewKeystore: caller cannot be nil")
	}
	if params == nil {
		return nil, types.AssertError("NewKeystore: params cannot be nil")
	}
	if privKey.Type() != crypto.Ed25519 {
		return nil, errors.New("wallet key must be ed25519")
	}
	id, err := AccountID(privKey.GetPublic())
	if err != nil {
		return nil, err
	}
	viewKey, err := zcrypto.Curve25519PrivateKeyFromEd25519(privKey)
	if err != nil {
		return nil, err
	}
	addr, err := NewBasicAddress(id, viewKey.GetPublic(), params)
	if err != nil {
		return nil, err
	}
	return &Keystore{
		privKey:  privKey,
		viewKey:  viewKey,
		id:       id,
		address:  addr,
		contract: types.NewID(params.ContractAddress[:]),
		caller:   caller,
	}, nil
}

// Address returns the wallet's ledger account ID.
func (k *Keystore) Address(ctx context.Context) (types.ID, error) {
	return k.id, nil
}

// DisplayAddress returns the bech32 address of the wallet.
func (k *Keystore) DisplayAddress() *BasicAddress {
	return k.address
}

// Balance returns the wallet's confidential balance of tokenID as
// reported by the contract.
func (k *Keystore) Balance(ctx context.Context, tokenID types.ID) (*uint256.Int, error) {
	data, err := codec.EncodeFunction(codec.MethodBalanceOf, codec.IDArg(k.id), codec.IDArg(tokenID))
	if err != nil {
		return nil, err
	}
	ret, err := k.caller.Call(ctx, k.contract, data)
	if err != nil {
		return nil, err
	}
	return codec.DecodeUint(ret)
}

// SignTransaction signs tx and returns the serialized signed
// transaction.
func (k *Keystore) SignTransaction(ctx context.Context, tx *types.UnsignedTransaction) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sigHash := tx.SigHash()
	sig, err := k.privKey.Sign(sigHash[:])
	if err != nil {
		return nil, err
	}
	pub, err := crypto.MarshalPublicKey(k.privKey.GetPublic())
	if err != nil {
		return nil, err
	}
	signed := &types.SignedTransaction{
		Tx:        *tx,
		PubKey:    pub,
		Signature: sig,
	}
	return signed.Serialize(), nil
}

// OpenNote decrypts a note sealed to this wallet's view key.
func (k *Keystore) OpenNote(ciphertext []byte, expected types.ID) (*types.Note, error) {
	return zcrypto.OpenNote(k.viewKey, ciphertext, expected)
}

// VerifyTransaction decodes a serialized signed transaction, checks
// its signature and returns it along with the sender's account ID.
func VerifyTransaction(ser []byte) (*types.SignedTransaction, types.ID, error) {
	signed, err := types.DeserializeSignedTransaction(ser)
	if err != nil {
		return nil, types.ID{}, err
	}
	pub, err := crypto.UnmarshalPublicKey(signed.PubKey)
	if err != nil {
		return nil, types.ID{}, err
	}
	sigHash := signed.Tx.SigHash()
	valid, err := pub.Verify(sigHash[:], signed.Signature)
	if err != nil {
		return nil, types.ID{}, err
	}
	if !valid {
		return nil, types.ID{}, ErrInvalidSignature
	}
	sender, err := AccountID(pub)
	if err != nil {
		return nil, types.ID{}, err
	}
	return signed, sender, nil
}
