// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package repo_test

import (
	"testing"

	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/repo/mock"
	"github.com/stretchr/testify/assert"
)

func TestLoadOrCreateWalletKey(t *testing.T) {
	ds := mock.NewMapDatastore()

	has, err := repo.HasWalletKey(ds)
	assert.NoError(t, err)
	assert.False(t, has)

	key, err := repo.LoadOrCreateWalletKey(ds)
	assert.NoError(t, err)

	key2, err := repo.LoadOrCreateWalletKey(ds)
	assert.NoError(t, err)
	assert.True(t, key.Equals(key2))
}
