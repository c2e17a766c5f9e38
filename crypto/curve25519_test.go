// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/go-test/deep"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/stretchr/testify/assert"
)

func TestCurve25519Marshal(t *testing.T) {
	priv, pub, err := GenerateCurve25519Key(rand.Reader)
	assert.NoError(t, err)

	privBytes, err := crypto.MarshalPrivateKey(priv)
	assert.NoError(t, err)
	pubBytes, err := crypto.MarshalPublicKey(pub)
	assert.NoError(t, err)

	priv2, err := crypto.UnmarshalPrivateKey(privBytes)
	assert.NoError(t, err)
	pub2, err := crypto.UnmarshalPublicKey(pubBytes)
	assert.NoError(t, err)

	assert.Empty(t, deep.Equal(priv, priv2))
	assert.Empty(t, deep.Equal(pub, pub2))
	assert.True(t, priv.GetPublic().Equals(pub))
}

func TestCurve25519FromEd25519(t *testing.T) {
	edPriv, edPub, err := crypto.GenerateEd25519Key(rand.Reader)
	assert.NoError(t, err)

	curvePriv, err := Curve25519PrivateKeyFromEd25519(edPriv)
	assert.NoError(t, err)
	curvePub, err := Curve25519PublicKeyFromEd25519(edPub)
	assert.NoError(t, err)

	assert.True(t, curvePriv.GetPublic().Equals(curvePub))

	message := []byte("message")
	cipherText, err := Encrypt(curvePub, message)
	assert.NoError(t, err)
	plainText, err := Decrypt(curvePriv, cipherText)
	assert.NoError(t, err)
	assert.Equal(t, message, plainText)

	_, err = curvePriv.Sign(message)
	assert.ErrorIs(t, err, ErrSigNoop)
}

func TestNewCurve25519KeyFromSeed(t *testing.T) {
	var seed [32]byte
	rand.Read(seed[:])

	priv, pub, err := NewCurve25519KeyFromSeed(seed)
	assert.NoError(t, err)
	priv2, pub2, err := NewCurve25519KeyFromSeed(seed)
	assert.NoError(t, err)
	assert.True(t, priv.Equals(priv2))
	assert.True(t, pub.Equals(pub2))

	seed[0] ^= 0xff
	priv3, _, err := NewCurve25519KeyFromSeed(seed)
	assert.NoError(t, err)
	assert.False(t, priv.Equals(priv3))
}

func TestUnmarshalCurve25519PrivateKey(t *testing.T) {
	priv, _, err := GenerateCurve25519Key(rand.Reader)
	assert.NoError(t, err)
	raw, err := priv.Raw()
	assert.NoError(t, err)

	priv2, err := UnmarshalCurve25519PrivateKey(raw[:Curve25519PrivateKeySize])
	assert.NoError(t, err)
	assert.True(t, priv.Equals(priv2))

	raw[40] ^= 0x01
	_, err = UnmarshalCurve25519PrivateKey(raw)
	assert.Error(t, err)

	_, err = UnmarshalCurve25519PrivateKey(raw[:10])
	assert.Error(t, err)
}
