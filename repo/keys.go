// Copyright (c) 2022 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package repo

import (
	"context"
	"crypto/rand"

	"github.com/ipfs/go-datastore"
	"github.com/libp2p/go-libp2p/core/crypto"
)

func HasWalletKey(ds Datastore) (bool, error) {
	return ds.Has(context.Background(), datastore.NewKey(WalletKeyDatastoreKey))
}

func LoadWalletKey(ds Datastore) (crypto.PrivKey, error) {
	keyBytes, err := ds.Get(context.Background(), datastore.NewKey(WalletKeyDatastoreKey))
	if err != nil {
		return nil, err
	}
	return crypto.UnmarshalPrivateKey(keyBytes)
}

func PutWalletKey(ds Datastore, key crypto.PrivKey) error {
	keyBytes, err := crypto.MarshalPrivateKey(key)
	if err != nil {
		return err
	}
	return ds.Put(context.Background(), datastore.NewKey(WalletKeyDatastoreKey), keyBytes)
}

func GenerateWalletKeypair() (crypto.PrivKey, crypto.PubKey, error) {
	return crypto.GenerateEd25519Key(rand.Reader)
}

// LoadOrCreateWalletKey returns the stored wallet key, generating and
// persisting a new one on first use.
func LoadOrCreateWalletKey(ds Datastore) (crypto.PrivKey, error) {
	has, err := HasWalletKey(ds)
	if err != nil {
		return nil, err
	}
	if has {
		return LoadWalletKey(ds)
	}
	priv, _, err := GenerateWalletKeypair()
	if err != nil {
		return nil, err
	}
	if err := PutWalletKey(ds, priv); err != nil {
		return nil, err
	}
	log.Infow("Generated new wallet key")
	return priv, nil
}
