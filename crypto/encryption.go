// Copyright (c) 2024 Project Illium
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/rand"
	"errors"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/project-illium/zswap/types"
	"golang.org/x/crypto/nacl/box"
)

// SealedNoteOverhead is how much longer a sealed payload is than the
// serialized note.
const SealedNoteOverhead = box.AnonymousOverhead

// ErrBoxDecryption Nacl box decryption failed
var ErrBoxDecryption = errors.New("failed to decrypt curve25519")

// Encrypt seals plaintext to the public key with an anonymous sender.
func Encrypt(pubKey crypto.PubKey, plaintext []byte) ([]byte, error) {
	curve25519PubKey, ok := pubKey.(*Curve25519PublicKey)
	if !ok {
		return nil, errors.New("pubkey must be of type Curve25519PublicKey")
	}
	return box.SealAnonymous(nil, plaintext, curve25519PubKey.k, rand.Reader)
}

// Decrypt opens a payload sealed with Encrypt.
func Decrypt(privKey crypto.PrivKey, ciphertext []byte) ([]byte, error) {
	curve25519PrivKey, ok := privKey.(*Curve25519PrivateKey)
	if !ok {
		return nil, errors.New("privkey must be of type Curve25519PrivateKey")
	}

	var priv, pub [32]byte
	copy(priv[:], curve25519PrivKey.k[:Curve25519PrivateKeySize])
	copy(pub[:], curve25519PrivKey.k[Curve25519PrivateKeySize:])

	plaintext, ok := box.OpenAnonymous(nil, ciphertext, &pub, &priv)
	if !ok {
		return nil, ErrBoxDecryption
	}
	return plaintext, nil
}

// SealNote encrypts the serialized note for the counterparty.
func SealNote(pubKey crypto.PubKey, note *types.Note) ([]byte, error) {
	return Encrypt(pubKey, note.Serialize())
}

// OpenNote decrypts a sealed note and checks that the commitment it
// derives matches expected.
func OpenNote(privKey crypto.PrivKey, ciphertext []byte, expected types.ID) (*types.Note, error) {
	plaintext, err := Decrypt(privKey, ciphertext)
	if err != nil {
		return nil, err
	}
	note, err := types.DeserializeNote(plaintext)
	if err != nil {
		return nil, err
	}
	if note.Commitment != expected {
		return nil, errors.New("sealed note does not match commitment")
	}
	return note, nil
}
