// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package notestore

import (
	"context"
	"sync"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/types"
)

// SpentChecker asks the ledger whether a nullifier has been revealed.
// Its answer is authoritative.
type SpentChecker func(ctx context.Context, nullifier types.Nullifier) (bool, error)

// NoteStore tracks the notes this client has created, keyed by
// commitment, along with the set of nullifiers known to be spent.
//
// The store is a local cache and is not the source of truth for double
// spend prevention. IsSpent answers from memory when it can and falls
// back to the ledger otherwise.
type NoteStore struct {
	ds          repo.Datastore
	checker     SpentChecker
	notes       map[types.ID]*types.Note
	byNullifier map[types.Nullifier]types.ID
	spent       map[types.Nullifier]bool
	mtx         sync.RWMutex
}

// NewNoteStore returns a new NoteStore backed by ds and loads any notes
// and spent markers previously persisted there. checker may be nil in
// which case IsSpent only consults the local set.
func NewNoteStore(ds repo.Datastore, checker SpentChecker) (*NoteStore, error) {
	if ds == nil {
		return nil, types.AssertError("NewNoteStore: datastore cannot be nil")
	}
	ns := &NoteStore{
		ds:          ds,
		checker:     checker,
		notes:       make(map[types.ID]*types.Note),
		byNullifier: make(map[types.Nullifier]types.ID),
		spent:       make(map[types.Nullifier]bool),
	}
	if err := ns.load(context.Background()); err != nil {
		return nil, err
	}
	return ns, nil
}

// SetSpentChecker replaces the authoritative spent checker.
func (ns *NoteStore) SetSpentChecker(checker SpentChecker) {
	ns.mtx.Lock()
	ns.checker = checker
	ns.mtx.Unlock()
}

// Add starts tracking a note. Adding a note that is already tracked is
// a no-op.
func (ns *NoteStore) Add(note *types.Note) error {
	if !note.Verify() {
		return types.NewError(types.ErrInvalidInput, "note commitment does not match its fields")
	}

	ns.mtx.Lock()
	defer ns.mtx.Unlock()

	if _, ok := ns.notes[note.Commitment]; ok {
		return nil
	}
	if err := dsPutNote(ns.ds, note); err != nil {
		return err
	}
	ns.notes[note.Commitment] = note
	ns.byNullifier[note.Nullifier] = note.Commitment
	return nil
}

// Get returns the note with the given commitment.
func (ns *NoteStore) Get(commitment types.ID) (*types.Note, bool) {
	ns.mtx.RLock()
	defer ns.mtx.RUnlock()

	n, ok := ns.notes[commitment]
	return n, ok
}

// GetByNullifier returns the tracked note that the nullifier spends.
func (ns *NoteStore) GetByNullifier(nullifier types.Nullifier) (*types.Note, bool) {
	ns.mtx.RLock()
	defer ns.mtx.RUnlock()

	commitment, ok := ns.byNullifier[nullifier]
	if !ok {
		return nil, false
	}
	n, ok := ns.notes[commitment]
	return n, ok
}

// Has returns whether the commitment is tracked.
func (ns *NoteStore) Has(commitment types.ID) bool {
	_, ok := ns.Get(commitment)
	return ok
}

// MarkSpent records that the nullifier has been revealed. The note it
// belongs to, if tracked, is left untouched.
func (ns *NoteStore) MarkSpent(nullifiers ...types.Nullifier) error {
	ns.mtx.Lock()
	defer ns.mtx.Unlock()

	var toWrite []types.Nullifier
	for _, n := range nullifiers {
		if !ns.spent[n] {
			toWrite = append(toWrite, n)
		}
	}
	if len(toWrite) == 0 {
		return nil
	}
	if err := dsPutSpent(ns.ds, toWrite); err != nil {
		return err
	}
	for _, n := range toWrite {
		ns.spent[n] = true
	}
	return nil
}

// IsSpent returns whether the nullifier has been spent. The local set is
// checked first. On a local miss the spent checker is asked and a spent
// answer is remembered.
func (ns *NoteStore) IsSpent(ctx context.Context, nullifier types.Nullifier) (bool, error) {
	ns.mtx.RLock()
	spent := ns.spent[nullifier]
	checker := ns.checker
	ns.mtx.RUnlock()

	if spent {
		return true, nil
	}
	if checker == nil {
		return false, nil
	}
	spent, err := checker(ctx, nullifier)
	if err != nil {
		return false, err
	}
	if spent {
		if err := ns.MarkSpent(nullifier); err != nil {
			log.Warnw("Failed to persist spent nullifier", "error", err)
		}
	}
	return spent, nil
}

// Unspent returns the tracked notes whose nullifiers are not in the
// local spent set.
func (ns *NoteStore) Unspent() []*types.Note {
	ns.mtx.RLock()
	defer ns.mtx.RUnlock()

	ret := make([]*types.Note, 0, len(ns.notes))
	for _, n := range ns.notes {
		if !ns.spent[n.Nullifier] {
			ret = append(ret, n)
		}
	}
	return ret
}

// All returns every tracked note, spent or not.
func (ns *NoteStore) All() []*types.Note {
	ns.mtx.RLock()
	defer ns.mtx.RUnlock()

	ret := make([]*types.Note, 0, len(ns.notes))
	for _, n := range ns.notes {
		ret = append(ret, n)
	}
	return ret
}

// Len returns the number of tracked notes.
func (ns *NoteStore) Len() int {
	ns.mtx.RLock()
	defer ns.mtx.RUnlock()
	return len(ns.notes)
}

func (ns *NoteStore) load(ctx context.Context) error {
	res, err := ns.ds.Query(ctx, query.Query{Prefix: repo.NoteKeyPrefix})
	if err != nil {
		return err
	}
	defer res.Close()
	for r := range res.Next() {
		if r.Error != nil {
			return r.Error
		}
		note, err := types.DeserializeNote(r.Value)
		if err != nil {
			return err
		}
		ns.notes[note.Commitment] = note
		ns.byNullifier[note.Nullifier] = note.Commitment
	}

	res2, err := ns.ds.Query(ctx, query.Query{Prefix: repo.SpentKeyPrefix, KeysOnly: true})
	if err != nil {
		return err
	}
	defer res2.Close()
	for r := range res2.Next() {
		if r.Error != nil {
			return r.Error
		}
		n, err := types.NewNullifierFromString(datastore.NewKey(r.Key).BaseNamespace())
		if err != nil {
			return err
		}
		ns.spent[n] = true
	}
	if len(ns.notes) > 0 {
		log.Debugw("Loaded tracked notes", "notes", len(ns.notes), "spent", len(ns.spent))
	}
	return nil
}

func dsPutNote(ds repo.Datastore, note *types.Note) error {
	return ds.Put(context.Background(), datastore.NewKey(repo.NoteKeyPrefix+note.Commitment.String()), note.Serialize())
}

func dsPutSpent(ds repo.Datastore, nullifiers []types.Nullifier) error {
	dbtx, err := ds.NewTransaction(context.Background(), false)
	if err != nil {
		return err
	}
	for _, n := range nullifiers {
		if err := dbtx.Put(context.Background(), datastore.NewKey(repo.SpentKeyPrefix+n.String()), []byte{}); err != nil {
			dbtx.Discard(context.Background())
			return err
		}
	}
	return dbtx.Commit(context.Background())
}
