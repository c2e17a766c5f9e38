// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/project-illium/zswap/client"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/repo/datastore"
	"github.com/project-illium/zswap/rpc"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/wallet"
	"github.com/pterm/pterm"
)

func main() {
	var configFile string
	for i, arg := range os.Args {
		if strings.HasPrefix(arg, "--configfile=") {
			configFile = strings.Split(arg, "--configfile=")[1]
		} else if arg == "-C" && len(os.Args) > i+1 {
			configFile = os.Args[i+1]
		}
	}
	if configFile == "" {
		configFile = filepath.Join(repo.DefaultHomeDir, repo.DefaultConfigFilename)
	}

	opts := repo.DefaultConfig()
	if err := repo.LoadConfigFile(&opts, repo.CleanAndExpandPath(configFile)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Use zswapcli -h to show usage")
		os.Exit(1)
	}
	if len(os.Args) == 2 && os.Args[1] == "-v" {
		fmt.Println(repo.VersionString())
		return
	}

	parser := flags.NewNamedParser("zswapcli", flags.HelpFlag)
	parser.AddGroup("Connection options", "Configuration options for connecting to the ledger", &opts)

	// Wallet
	parser.AddCommand("getaddress", "Returns the wallet address", "Returns the account ID transactions are sent from", &GetAddress{opts: &opts})
	parser.AddCommand("getbalance", "Returns the wallet balance of a token", "Returns the on-ledger balance of the given token for the wallet", &GetBalance{opts: &opts})
	parser.AddCommand("getnotes", "Returns the notes tracked by the wallet", "Returns the notes created by this wallet's swaps. Spent notes are omitted unless --all is set.", &GetNotes{opts: &opts})

	// Contract operations
	parser.AddCommand("swap", "Swaps one token for another", "Builds a private swap order, proves it and submits it to the swap contract", &Swap{opts: &opts})
	parser.AddCommand("batchswap", "Submits several swaps in one transaction", "Submits up to 5 swaps in one transaction. Batches are only available to premium users.", &BatchSwap{opts: &opts})
	parser.AddCommand("stake", "Stakes NIGHT", "Stakes NIGHT with the contract. Staking more than the premium threshold unlocks batch swaps.", &Stake{opts: &opts})
	parser.AddCommand("unstake", "Unstakes NIGHT", "Returns previously staked NIGHT to the wallet", &Unstake{opts: &opts})
	parser.AddCommand("addliquidity", "Adds liquidity to a pool", "Deposits both tokens of a pair and receives pool shares", &AddLiquidity{opts: &opts})
	parser.AddCommand("removeliquidity", "Removes liquidity from a pool", "Burns pool shares and returns the underlying tokens", &RemoveLiquidity{opts: &opts})
	parser.AddCommand("claimrewards", "Claims staking rewards", "Claims all pending staking rewards", &ClaimRewards{opts: &opts})
	parser.AddCommand("emergencywithdraw", "Withdraws the entire stake", "Withdraws the entire stake. This works even while the contract is paused.", &EmergencyWithdraw{opts: &opts})
	parser.AddCommand("setpaused", "Pauses or unpauses the contract", "Pauses or unpauses the contract. Only the developer wallet may do this.", &SetPaused{opts: &opts})

	// Queries
	parser.AddCommand("getcontractstate", "Returns the contract state", "Returns the contract configuration, fees collected and pause flag", &GetContractState{opts: &opts})
	parser.AddCommand("ispremiumuser", "Returns whether an account is premium", "Returns whether the account has more than the premium threshold staked. Defaults to the wallet address.", &IsPremiumUser{opts: &opts})
	parser.AddCommand("getstakedamount", "Returns the amount staked by an account", "Returns the amount staked by an account. Defaults to the wallet address.", &GetStakedAmount{opts: &opts})
	parser.AddCommand("isnullifierspent", "Returns whether a nullifier is spent", "Returns whether a nullifier is spent, checking the local note store before the ledger", &IsNullifierSpent{opts: &opts})
	parser.AddCommand("estimategas", "Estimates the gas for a contract method", "Prices the gas table estimate for a contract method at the current gas price", &EstimateGas{opts: &opts})
	parser.AddCommand("calculatefee", "Returns the swap fee for an amount", "Returns the protocol fee charged on a swap of the given amount", &CalculateFee{})
	parser.AddCommand("watch", "Prints contract events as they happen", "Subscribes to contract events and prints them until interrupted", &Watch{opts: &opts})

	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// session holds everything a command needs to talk to the contract.
type session struct {
	client *client.Client
	wallet *wallet.Keystore
	rpc    *rpc.Client
	ds     repo.Datastore
}

func (s *session) Close() {
	s.client.Close()
	s.rpc.Close()
	s.ds.Close()
}

func makeSession(ctx context.Context, opts *repo.Config) (*session, error) {
	if err := opts.Finalize(); err != nil {
		return nil, err
	}
	if err := setupLogging(opts.LogDir, opts.LogLevel); err != nil {
		return nil, err
	}

	ds, err := datastore.NewBadgerDatastore(opts.DataDir)
	if err != nil {
		return nil, err
	}
	priv, err := repo.LoadOrCreateWalletKey(ds)
	if err != nil {
		ds.Close()
		return nil, err
	}

	rpcClient, err := rpc.Dial(ctx, opts.RPCEndpoint, rpc.MaxRetries(opts.Client.RPCRetries))
	if err != nil {
		ds.Close()
		return nil, err
	}

	netParams := *opts.NetworkParams()
	netParams.ContractAddress = opts.Contract()

	ks, err := wallet.NewKeystore(priv, rpcClient, &netParams)
	if err != nil {
		rpcClient.Close()
		ds.Close()
		return nil, err
	}
	c, err := client.NewClient(ctx,
		client.RPC(rpcClient),
		client.WithWallet(ks),
		client.Params(&netParams),
		client.Datastore(ds),
		client.ConfirmationTimeout(opts.Client.ConfirmationTimeout, opts.Client.PollInterval),
		client.EventPollInterval(opts.Client.EventPollInterval),
		client.StateCacheTTL(opts.Client.StateCacheTTL),
	)
	if err != nil {
		rpcClient.Close()
		ds.Close()
		return nil, err
	}
	return &session{
		client: c,
		wallet: ks,
		rpc:    rpcClient,
		ds:     ds,
	}, nil
}

// parseToken accepts "night", "dust" or a hex token ID.
func parseToken(s string, netParams *params.NetworkParams) (types.ID, error) {
	switch strings.ToLower(s) {
	case "night":
		return types.NewID(netParams.NightTokenID[:]), nil
	case "dust":
		return types.NewID(netParams.DustTokenID[:]), nil
	}
	b, err := types.NewIDFromString(s)
	if err != nil {
		return types.ID{}, fmt.Errorf("invalid token %q: %w", s, err)
	}
	return b, nil
}

func tokenName(id types.ID, netParams *params.NetworkParams) string {
	switch id {
	case types.NewID(netParams.NightTokenID[:]):
		return "NIGHT"
	case types.NewID(netParams.DustTokenID[:]):
		return "DUST"
	}
	return id.String()
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
