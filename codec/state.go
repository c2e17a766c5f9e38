// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package codec

import (
	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/types"
)

// ContractState is the snapshot returned by getContractState.
type ContractState struct {
	DeveloperWallet    types.ID
	NightTokenID       types.ID
	DustTokenID        types.ID
	FeeRateBps         uint64
	PremiumThreshold   *uint256.Int
	MaxBatchSize       uint64
	TotalFeesCollected *uint256.Int
	IsPaused           bool
}

// Encode returns the getContractState return value.
func (s *ContractState) Encode() ([]byte, error) {
	e := NewEncoder(nil)
	e.ID(s.DeveloperWallet)
	e.ID(s.NightTokenID)
	e.ID(s.DustTokenID)
	e.Uint64(s.FeeRateBps)
	e.Uint(s.PremiumThreshold)
	e.Uint64(s.MaxBatchSize)
	e.Uint(s.TotalFeesCollected)
	e.Bool(s.IsPaused)
	return e.Bytes()
}

// DecodeContractState decodes a getContractState return value.
func DecodeContractState(ret []byte) (*ContractState, error) {
	var (
		d   = NewDecoder(ret)
		s   ContractState
		err error
	)
	if s.DeveloperWallet, err = d.ID(); err != nil {
		return nil, err
	}
	if s.NightTokenID, err = d.ID(); err != nil {
		return nil, err
	}
	if s.DustTokenID, err = d.ID(); err != nil {
		return nil, err
	}
	if s.FeeRateBps, err = d.Uint64(); err != nil {
		return nil, err
	}
	if s.PremiumThreshold, err = d.Uint(); err != nil {
		return nil, err
	}
	if s.MaxBatchSize, err = d.Uint64(); err != nil {
		return nil, err
	}
	if s.TotalFeesCollected, err = d.Uint(); err != nil {
		return nil, err
	}
	if s.IsPaused, err = d.Bool(); err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return &s, nil
}
