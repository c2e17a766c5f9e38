// Copyright (c) 2022 Project Illium
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package params

import (
	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params/hash"
)

const (
	networkMainnet = "mainnet"
	networkTestnet = "testnet"
	networkRegtest = "regtest"
)

// The following constants must match the deployed contract. Changing
// any of them produces transactions the contract rejects.
const (
	// FeeRateBps is the swap fee in basis points.
	FeeRateBps = 50
	// FeeDivisor is the basis point denominator.
	FeeDivisor = 10000
	// MaxBatchSize is the number of order slots in a batch swap call.
	MaxBatchSize = 5
	// MaxBatchCommitments is the number of commitment slots in a batch
	// swap call. Each order carries an input and an output leg.
	MaxBatchCommitments = MaxBatchSize * 2
	// NightDecimals is the number of decimal places of the NIGHT token.
	NightDecimals = 9
	// NanosPerNight is the number of base units in one NIGHT.
	NanosPerNight = 1e9
	// PremiumThresholdNanos is the stake, in base units, that must be
	// strictly exceeded to unlock the premium tier (100 NIGHT).
	PremiumThresholdNanos = 100 * NanosPerNight
)

// PremiumThreshold returns PremiumThresholdNanos as a uint256.
func PremiumThreshold() *uint256.Int {
	return uint256.NewInt(PremiumThresholdNanos)
}

type NetworkParams struct {
	// Name is a human-readable string to identify the params
	Name string

	// AddressPrefix defines the address prefix used as part of the
	// bech32 serialization.
	AddressPrefix string

	// ContractAddress is the ledger address of the swap contract.
	ContractAddress [32]byte

	// NightTokenID and DustTokenID identify the two native tokens.
	// The contract reports the same values in its state snapshot;
	// these are used before the first snapshot is fetched.
	NightTokenID [32]byte
	DustTokenID  [32]byte

	// DefaultRPCEndpoint is the JSON-RPC endpoint used when none is
	// configured.
	DefaultRPCEndpoint string

	// AllowMockProofs sets whether the client may be configured with
	// the mock prover.
	AllowMockProofs bool
}

func derive(network, label string) [32]byte {
	var id [32]byte
	copy(id[:], hash.HashFunc([]byte("zswap/"+network+"/"+label)))
	return id
}

var MainnetParams = NetworkParams{
	Name:               networkMainnet,
	AddressPrefix:      "zs",
	ContractAddress:    derive(networkMainnet, "contract"),
	NightTokenID:       derive(networkMainnet, "night"),
	DustTokenID:        derive(networkMainnet, "dust"),
	DefaultRPCEndpoint: "http://127.0.0.1:9944",
	AllowMockProofs:    false,
}

var TestnetParams = NetworkParams{
	Name:               networkTestnet,
	AddressPrefix:      "tzs",
	ContractAddress:    derive(networkTestnet, "contract"),
	NightTokenID:       derive(networkTestnet, "night"),
	DustTokenID:        derive(networkTestnet, "dust"),
	DefaultRPCEndpoint: "http://127.0.0.1:9945",
	AllowMockProofs:    true,
}

var RegtestParams = NetworkParams{
	Name:               networkRegtest,
	AddressPrefix:      "rzs",
	ContractAddress:    derive(networkRegtest, "contract"),
	NightTokenID:       derive(networkRegtest, "night"),
	DustTokenID:        derive(networkRegtest, "dust"),
	DefaultRPCEndpoint: "http://127.0.0.1:9946",
	AllowMockProofs:    true,
}
