// Copyright (c) 2024 Project Illium
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package crypto

import (
	"bytes"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/libp2p/go-libp2p/core/crypto"
	pb "github.com/libp2p/go-libp2p/core/crypto/pb"
	"github.com/nixberg/chacha-rng-go"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

const (
	Libp2pKeyTypeCurve25519  = pb.KeyType(4)
	Curve25519PrivateKeySize = 32
	Curve25519PublicKeySize  = 32
)

func init() {
	crypto.PubKeyUnmarshallers[Libp2pKeyTypeCurve25519] = UnmarshalCurve25519PublicKey
	crypto.PrivKeyUnmarshallers[Libp2pKeyTypeCurve25519] = UnmarshalCurve25519PrivateKey
}

var ErrSigNoop = errors.New("curve25519 keys cannot do signing or verification")

// Curve25519PrivateKey is the key a counterparty uses to open sealed
// note payloads. It holds the private scalar followed by the public
// point.
type Curve25519PrivateKey struct {
	k *[64]byte
}

// Curve25519PublicKey is the key note payloads are sealed to.
type Curve25519PublicKey struct {
	k *[32]byte
}

func newCurve25519Keypair(pub, priv *[32]byte) (crypto.PrivKey, crypto.PubKey) {
	var combined [64]byte
	copy(combined[:32], priv[:])
	copy(combined[32:], pub[:])
	return &Curve25519PrivateKey{k: &combined}, &Curve25519PublicKey{k: pub}
}

// GenerateCurve25519Key generates a new Curve25519 private and public key pair.
func GenerateCurve25519Key(src io.Reader) (crypto.PrivKey, crypto.PubKey, error) {
	pub, priv, err := box.GenerateKey(src)
	if err != nil {
		return nil, nil, err
	}
	privKey, pubKey := newCurve25519Keypair(pub, priv)
	return privKey, pubKey, nil
}

// seededReader is an endless deterministic byte stream.
type seededReader struct {
	rng *chacha.ChaCha
}

func (c *seededReader) Read(p []byte) (int, error) {
	var word [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(word[:], c.rng.Uint64())
		copy(p[i:], word[:])
	}
	return len(p), nil
}

// NewCurve25519KeyFromSeed deterministically derives a key pair from
// seed. The same seed always yields the same keys.
func NewCurve25519KeyFromSeed(seed [32]byte) (crypto.PrivKey, crypto.PubKey, error) {
	var s [8]uint32
	for i := 0; i < 8; i++ {
		s[i] = binary.LittleEndian.Uint32(seed[i*4 : (i+1)*4])
	}
	return GenerateCurve25519Key(&seededReader{chacha.Seeded20(s, 0)})
}

// Curve25519PrivateKeyFromEd25519 converts a wallet signing key into the
// matching curve25519 key so a single key can both sign and open notes.
func Curve25519PrivateKeyFromEd25519(privKey crypto.PrivKey) (crypto.PrivKey, error) {
	raw, err := privKey.Raw()
	if err != nil {
		return nil, err
	}
	var (
		curve25519Key [32]byte
		ed25519Key    [64]byte
	)
	copy(ed25519Key[:], raw)
	privateKeyToCurve25519(&curve25519Key, &ed25519Key)
	return UnmarshalCurve25519PrivateKey(curve25519Key[:])
}

// Curve25519PublicKeyFromEd25519 is the public counterpart of
// Curve25519PrivateKeyFromEd25519.
func Curve25519PublicKeyFromEd25519(pubKey crypto.PubKey) (crypto.PubKey, error) {
	raw, err := pubKey.Raw()
	if err != nil {
		return nil, err
	}
	var (
		curve25519Key [32]byte
		ed25519Key    [32]byte
	)
	copy(ed25519Key[:], raw)
	if err := publicKeyToCurve25519(&curve25519Key, &ed25519Key); err != nil {
		return nil, err
	}
	return UnmarshalCurve25519PublicKey(curve25519Key[:])
}

// Type of the private key (Curve25519).
func (k *Curve25519PrivateKey) Type() pb.KeyType {
	return Libp2pKeyTypeCurve25519
}

// Raw returns the private scalar followed by the public point.
func (k *Curve25519PrivateKey) Raw() ([]byte, error) {
	buf := make([]byte, len(k.k))
	copy(buf, k.k[:])
	return buf, nil
}

// Equals compares two Curve25519 private keys.
func (k *Curve25519PrivateKey) Equals(o crypto.Key) bool {
	cdk, ok := o.(*Curve25519PrivateKey)
	if !ok {
		return basicEquals(k, o)
	}
	return subtle.ConstantTimeCompare(k.k[:], cdk.k[:]) == 1
}

// GetPublic returns an Curve25519 public key from a private key.
func (k *Curve25519PrivateKey) GetPublic() crypto.PubKey {
	var pubkey [32]byte
	copy(pubkey[:], k.k[Curve25519PrivateKeySize:])
	return &Curve25519PublicKey{k: &pubkey}
}

// Sign is a noop.
func (k *Curve25519PrivateKey) Sign(msg []byte) ([]byte, error) {
	return nil, ErrSigNoop
}

// Type of the public key (Curve25519).
func (k *Curve25519PublicKey) Type() pb.KeyType {
	return Libp2pKeyTypeCurve25519
}

// Raw public key bytes.
func (k *Curve25519PublicKey) Raw() ([]byte, error) {
	return k.k[:], nil
}

// Equals compares two Curve25519 public keys.
func (k *Curve25519PublicKey) Equals(o crypto.Key) bool {
	edk, ok := o.(*Curve25519PublicKey)
	if !ok {
		return basicEquals(k, o)
	}
	return bytes.Equal(k.k[:], edk.k[:])
}

// Verify is a noop.
func (k *Curve25519PublicKey) Verify(data []byte, sig []byte) (bool, error) {
	return false, ErrSigNoop
}

// UnmarshalCurve25519PublicKey returns a public key from input bytes.
func UnmarshalCurve25519PublicKey(data []byte) (crypto.PubKey, error) {
	if len(data) != Curve25519PublicKeySize {
		return nil, errors.New("expect Curve25519 public key data size to be 32")
	}
	var pubkey [32]byte
	copy(pubkey[:], data)
	return &Curve25519PublicKey{k: &pubkey}, nil
}

// UnmarshalCurve25519PrivateKey returns a private key from either the
// bare 32 byte scalar or the 64 byte scalar and point encoding.
func UnmarshalCurve25519PrivateKey(data []byte) (crypto.PrivKey, error) {
	var scalar, point [32]byte
	switch len(data) {
	case Curve25519PrivateKeySize + Curve25519PublicKeySize:
		copy(scalar[:], data[:Curve25519PrivateKeySize])
		curve25519.ScalarBaseMult(&point, &scalar)
		if subtle.ConstantTimeCompare(point[:], data[Curve25519PrivateKeySize:]) == 0 {
			return nil, errors.New("curve25519 public key does not match private key")
		}
	case Curve25519PrivateKeySize:
		copy(scalar[:], data)
		curve25519.ScalarBaseMult(&point, &scalar)
	default:
		return nil, fmt.Errorf(
			"expected Curve25519 data size to be %d or %d, got %d",
			Curve25519PrivateKeySize,
			Curve25519PrivateKeySize+Curve25519PublicKeySize,
			len(data),
		)
	}
	priv, _ := newCurve25519Keypair(&point, &scalar)
	return priv, nil
}

func basicEquals(k1, k2 crypto.Key) bool {
	if k1.Type() != k2.Type() {
		return false
	}
	a, err := k1.Raw()
	if err != nil {
		return false
	}
	b, err := k2.Raw()
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
