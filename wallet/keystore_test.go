// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/project-illium/zswap/codec"
	zcrypto "github.com/project-illium/zswap/crypto"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type balanceCaller struct {
	balances map[types.ID]uint64
	to       types.ID
}

func (c *balanceCaller) Call(ctx context.Context, to types.ID, data []byte) ([]byte, error) {
	c.to = to
	m, d, err := codec.DecodeFunction(data)
	if err != nil {
		return nil, err
	}
	if m.Name != codec.MethodBalanceOf {
		return nil, types.NewError(types.ErrInvalidInput, "unexpected method")
	}
	if _, err := d.ID(); err != nil {
		return nil, err
	}
	token, err := d.ID()
	if err != nil {
		return nil, err
	}
	e := codec.NewEncoder(nil)
	e.Uint64(c.balances[token])
	return e.Bytes()
}

func newTestKeystore(t *testing.T, caller Caller) *Keystore {
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	ks, err := NewKeystore(priv, caller, &params.RegtestParams)
	require.NoError(t, err)
	return ks
}

func TestKeystoreSignTransaction(t *testing.T) {
	ks := newTestKeystore(t, &balanceCaller{})
	ctx := context.Background()

	tx := &types.UnsignedTransaction{
		To:       types.NewID(params.RegtestParams.ContractAddress[:]),
		Data:     []byte{0x01, 0x02},
		Value:    uint256.NewInt(0),
		Nonce:    4,
		GasLimit: 300000,
	}
	ser, err := ks.SignTransaction(ctx, tx)
	require.NoError(t, err)

	signed, sender, err := VerifyTransaction(ser)
	require.NoError(t, err)
	addr, err := ks.Address(ctx)
	require.NoError(t, err)
	assert.Equal(t, addr, sender)
	assert.Equal(t, uint64(4), signed.Tx.Nonce)
	assert.Equal(t, tx.Data, signed.Tx.Data)

	signed.Tx.Nonce = 5
	_, _, err = VerifyTransaction(signed.Serialize())
	assert.ErrorIs(t, err, ErrInvalidSignature)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ks.SignTransaction(cancelled, tx)
	assert.Error(t, err)
}

func TestKeystoreBalance(t *testing.T) {
	night := types.NewID(params.RegtestParams.NightTokenID[:])
	caller := &balanceCaller{balances: map[types.ID]uint64{night: 42}}
	ks := newTestKeystore(t, caller)

	bal, err := ks.Balance(context.Background(), night)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), bal.Uint64())
	assert.Equal(t, types.NewID(params.RegtestParams.ContractAddress[:]), caller.to)

	bal, err = ks.Balance(context.Background(), types.NewIDFromData([]byte("other")))
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestKeystoreOpenNote(t *testing.T) {
	ks := newTestKeystore(t, &balanceCaller{})
	salt, err := types.RandomSalt()
	require.NoError(t, err)
	note := types.NewNote(types.NewIDFromData([]byte("night")), uint256.NewInt(10), ks.DisplayAddress().ID(), salt)

	sealed, err := zcrypto.SealNote(ks.DisplayAddress().ViewKey(), note)
	require.NoError(t, err)
	opened, err := ks.OpenNote(sealed, note.Commitment)
	require.NoError(t, err)
	assert.Equal(t, note, opened)
}

func TestNewKeystoreValidation(t *testing.T) {
	_, err := NewKeystore(nil, &balanceCaller{}, &params.RegtestParams)
	assert.Error(t, err)

	priv, _, err := zcrypto.GenerateCurve25519Key(rand.Reader)
	require.NoError(t, err)
	_, err = NewKeystore(priv, &balanceCaller{}, &params.RegtestParams)
	assert.Error(t, err)
}
