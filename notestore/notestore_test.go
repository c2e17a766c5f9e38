// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package notestore

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/repo/mock"
	"github.com/project-illium/zswap/types"
	"github.com/stretchr/testify/assert"
)

func randNote(t *testing.T, amount uint64) *types.Note {
	salt, err := types.RandomSalt()
	assert.NoError(t, err)
	return types.NewNote(types.ID{0x01}, uint256.NewInt(amount), types.ID{0x02}, salt)
}

func TestNoteStoreAddGet(t *testing.T) {
	ns, err := NewNoteStore(mock.NewMapDatastore(), nil)
	assert.NoError(t, err)

	n := randNote(t, 10)
	assert.NoError(t, ns.Add(n))
	assert.NoError(t, ns.Add(n))
	assert.Equal(t, 1, ns.Len())

	n2, ok := ns.Get(n.Commitment)
	assert.True(t, ok)
	assert.Equal(t, n, n2)

	n3, ok := ns.GetByNullifier(n.Nullifier)
	assert.True(t, ok)
	assert.Equal(t, n, n3)

	assert.False(t, ns.Has(types.ID{0xff}))

	bad := randNote(t, 10)
	bad.Amount.SetUint64(11)
	err = ns.Add(bad)
	assert.True(t, types.ErrorIs(err, types.ErrInvalidInput))
}

func TestNoteStoreSpent(t *testing.T) {
	var checks int
	onChain := make(map[types.Nullifier]bool)
	checker := func(ctx context.Context, n types.Nullifier) (bool, error) {
		checks++
		return onChain[n], nil
	}
	ns, err := NewNoteStore(mock.NewMapDatastore(), checker)
	assert.NoError(t, err)

	a, b := randNote(t, 1), randNote(t, 2)
	assert.NoError(t, ns.Add(a))
	assert.NoError(t, ns.Add(b))

	// Local hit never reaches the ledger.
	assert.NoError(t, ns.MarkSpent(a.Nullifier))
	spent, err := ns.IsSpent(context.Background(), a.Nullifier)
	assert.NoError(t, err)
	assert.True(t, spent)
	assert.Equal(t, 0, checks)

	// Local miss falls back to the ledger.
	spent, err = ns.IsSpent(context.Background(), b.Nullifier)
	assert.NoError(t, err)
	assert.False(t, spent)
	assert.Equal(t, 1, checks)

	// A spent answer from the ledger is remembered.
	onChain[b.Nullifier] = true
	spent, err = ns.IsSpent(context.Background(), b.Nullifier)
	assert.NoError(t, err)
	assert.True(t, spent)
	spent, err = ns.IsSpent(context.Background(), b.Nullifier)
	assert.NoError(t, err)
	assert.True(t, spent)
	assert.Equal(t, 2, checks)

	assert.Len(t, ns.Unspent(), 0)

	// Spending never touches the note itself.
	n, ok := ns.Get(a.Commitment)
	assert.True(t, ok)
	assert.True(t, n.Verify())
}

func TestNoteStoreCheckerError(t *testing.T) {
	boom := errors.New("boom")
	ns, err := NewNoteStore(mock.NewMapDatastore(), func(ctx context.Context, n types.Nullifier) (bool, error) {
		return false, boom
	})
	assert.NoError(t, err)
	_, err = ns.IsSpent(context.Background(), types.Nullifier{0x01})
	assert.ErrorIs(t, err, boom)
}

func TestNoteStorePersistence(t *testing.T) {
	ds := mock.NewMapDatastore()
	ns, err := NewNoteStore(ds, nil)
	assert.NoError(t, err)

	a, b := randNote(t, 1), randNote(t, 2)
	assert.NoError(t, ns.Add(a))
	assert.NoError(t, ns.Add(b))
	assert.NoError(t, ns.MarkSpent(a.Nullifier))

	ns2, err := NewNoteStore(ds, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, ns2.Len())

	spent, err := ns2.IsSpent(context.Background(), a.Nullifier)
	assert.NoError(t, err)
	assert.True(t, spent)

	unspent := ns2.Unspent()
	assert.Len(t, unspent, 1)
	assert.Equal(t, b.Commitment, unspent[0].Commitment)
	assert.Len(t, ns2.All(), 2)
}

func TestNewNoteStoreNilDatastore(t *testing.T) {
	_, err := NewNoteStore(nil, nil)
	assert.Error(t, err)
}
