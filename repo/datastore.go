// Copyright (c) 2022 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package repo

import (
	"github.com/ipfs/go-datastore"
)

// Datastore is the persistence layer used by the note store, the
// wallet and the client. It is satisfied by both the badger backed
// store in repo/datastore and the in-memory store in repo/mock.
type Datastore interface {
	datastore.Datastore
	datastore.Batching
	datastore.PersistentDatastore
	datastore.TxnDatastore
}
