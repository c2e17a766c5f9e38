// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/project-illium/zswap/harness"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/rpc"
	"github.com/project-illium/zswap/scheduler"
	"github.com/project-illium/zswap/types"
	"go.uber.org/zap"
)

var log = zap.S()

// Server brings the devnet ledger and its JSON-RPC endpoint together.
type Server struct {
	config    *repo.Config
	params    *params.NetworkParams
	ledger    *harness.Ledger
	rpcServer *rpc.Server
	miner     *scheduler.Task
}

// BuildServer creates the ledger, funds the configured accounts and
// starts serving it.
func BuildServer(config *repo.Config) (*Server, error) {
	netParams := config.NetworkParams()
	if !netParams.AllowMockProofs {
		return nil, fmt.Errorf("zswapd cannot serve %s", netParams.Name)
	}
	// Contract overrides are meaningless here since the ledger hosts
	// the contract at the network's address.
	if config.ContractAddress != "" && config.Contract() != netParams.ContractAddress {
		return nil, errors.New("devnet contract address cannot be overridden")
	}

	developer, fund := config.DevnetAccounts()
	opts := []harness.Option{
		harness.Params(netParams),
		harness.GasPrice(config.Devnet.GasPrice),
		harness.AutoMine(config.Devnet.BlockInterval == 0),
	}
	if developer != ([32]byte{}) {
		opts = append(opts, harness.Developer(types.NewID(developer[:])))
	}
	ledger, err := harness.NewLedger(opts...)
	if err != nil {
		return nil, err
	}

	amount, err := types.ParseNight(config.Devnet.FundAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid fund amount: %w", err)
	}
	for _, account := range fund {
		id := types.NewID(account[:])
		ledger.Fund(id, types.NewID(netParams.NightTokenID[:]), amount)
		ledger.Fund(id, types.NewID(netParams.DustTokenID[:]), amount)
		log.Infow("Funded devnet account", "account", id, "amount", types.FormatNight(amount))
	}

	rpcServer, err := rpc.NewServer(&rpc.ServerConfig{Backend: ledger})
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", config.Devnet.Listen)
	if err != nil {
		return nil, err
	}
	rpcServer.Serve(listener)

	s := &Server{
		config:    config,
		params:    netParams,
		ledger:    ledger,
		rpcServer: rpcServer,
	}
	if config.Devnet.BlockInterval > 0 {
		s.miner = scheduler.Every(clock.New(), config.Devnet.BlockInterval, s.mine)
	}

	log.Infow("zswapd started",
		"network", netParams.Name,
		"contract", types.NewID(netParams.ContractAddress[:]),
		"listen", listener.Addr().String(),
		"block interval", blockIntervalString(config.Devnet.BlockInterval))
	return s, nil
}

func (s *Server) mine() {
	pending := s.ledger.PendingCount()
	if pending == 0 {
		return
	}
	height := s.ledger.Mine()
	log.Debugw("Mined block", "height", height, "transactions", pending)
}

// Close stops mining and shuts down the rpc server.
func (s *Server) Close() error {
	if s.miner != nil {
		s.miner.Stop()
		<-s.miner.Done()
	}
	return s.rpcServer.Close()
}

func blockIntervalString(d time.Duration) string {
	if d == 0 {
		return "instant"
	}
	return d.String()
}
