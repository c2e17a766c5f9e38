// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package datastore

import (
	"os"

	badger "github.com/ipfs/go-ds-badger"
	"github.com/project-illium/zswap/repo"
)

var _ repo.Datastore = (*badger.Datastore)(nil)

// NewBadgerDatastore opens, creating if needed, a badger backed
// datastore in dataDir.
func NewBadgerDatastore(dataDir string, opts ...Option) (repo.Datastore, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, err
	}

	badgerOpts := badger.DefaultOptions
	badgerOpts.MaxTableSize = cfg.maxTableSize
	badgerOpts.SyncWrites = cfg.syncWrites
	if cfg.gcInterval > 0 {
		badgerOpts.GcInterval = cfg.gcInterval
	}
	return badger.NewDatastore(dataDir, &badgerOpts)
}
