// Copyright (c) 2024 Project Illium
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package repo

const (
	// WalletKeyDatastoreKey is the datastore key for the wallet signing key.
	WalletKeyDatastoreKey = "/zswap/walletkey/"
	// NoteKeyPrefix is the datastore key prefix for storing tracked notes by commitment.
	NoteKeyPrefix = "/zswap/note/"
	// SpentKeyPrefix is the datastore key prefix for marking note commitments as spent.
	SpentKeyPrefix = "/zswap/spent/"
	// EventCursorKey is the datastore key for the last block processed by the event poller.
	EventCursorKey = "/zswap/eventcursor/"
)
