// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/project-illium/zswap/client"
	"github.com/project-illium/zswap/codec"
	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/types"
	"github.com/pterm/pterm"
)

type GetContractState struct {
	opts *repo.Config
}

func (x *GetContractState) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	state, err := s.client.ContractState(ctx)
	if err != nil {
		return err
	}
	pterm.DefaultSection.Println("Contract state")
	return pterm.DefaultTable.WithData(pterm.TableData{
		{"Developer", state.DeveloperWallet.String()},
		{"NIGHT", state.NightTokenID.String()},
		{"DUST", state.DustTokenID.String()},
		{"Fee rate", fmt.Sprintf("%d bps", state.FeeRateBps)},
		{"Premium threshold", types.FormatNight(state.PremiumThreshold)},
		{"Max batch size", fmt.Sprint(state.MaxBatchSize)},
		{"Fees collected", types.FormatNight(state.TotalFeesCollected)},
		{"Paused", fmt.Sprint(state.IsPaused)},
	}).Render()
}

type IsPremiumUser struct {
	opts    *repo.Config
	Account string `short:"a" long:"account" description:"The account to query (hex). Defaults to the wallet."`
}

func (x *IsPremiumUser) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	account, err := accountOrSelf(x.Account, s)
	if err != nil {
		return err
	}
	premium, err := s.client.IsPremiumUser(ctx, account)
	if err != nil {
		return err
	}
	fmt.Println(premium)
	return nil
}

type GetStakedAmount struct {
	opts    *repo.Config
	Account string `short:"a" long:"account" description:"The account to query (hex). Defaults to the wallet."`
}

func (x *GetStakedAmount) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	account, err := accountOrSelf(x.Account, s)
	if err != nil {
		return err
	}
	staked, err := s.client.StakedAmount(ctx, account)
	if err != nil {
		return err
	}
	fmt.Println(types.FormatNight(staked))
	return nil
}

type IsNullifierSpent struct {
	opts      *repo.Config
	Nullifier string `short:"n" long:"nullifier" description:"The nullifier to check (hex)" required:"true"`
}

func (x *IsNullifierSpent) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := types.NewIDFromString(x.Nullifier)
	if err != nil {
		return err
	}
	spent, err := s.client.IsNullifierSpent(ctx, types.Nullifier(id))
	if err != nil {
		return err
	}
	fmt.Println(spent)
	return nil
}

type EstimateGas struct {
	opts   *repo.Config
	Method string `short:"m" long:"method" description:"The contract method to estimate" required:"true"`
	Orders int    `long:"orders" description:"The number of active orders, for batchSwap only" default:"1"`
}

func (x *EstimateGas) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	est, err := s.client.EstimateGas(ctx, x.Method, x.Orders)
	if err != nil {
		return err
	}
	return printJSON(est)
}

type CalculateFee struct {
	Amount string `short:"a" long:"amount" description:"The swap amount" required:"true"`
}

func (x *CalculateFee) Execute(args []string) error {
	amount, err := types.ParseNight(x.Amount)
	if err != nil {
		return err
	}
	fmt.Println(types.FormatNight(client.CalculateFee(amount)))
	return nil
}

type Watch struct {
	opts   *repo.Config
	Events []string `short:"e" long:"event" description:"The event to watch. May be repeated. Defaults to every event."`
}

func (x *Watch) Execute(args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	events := x.Events
	if len(events) == 0 {
		for name := range codec.Events {
			events = append(events, name)
		}
		sort.Strings(events)
	}
	handler := func(ev codec.ContractEvent, l *types.Log) {
		pterm.Info.Printfln("%s in block %d (tx %s)", ev.EventName(), l.BlockNumber, l.TxHash)
		printJSON(ev)
	}
	for _, name := range events {
		unsubscribe, err := s.client.On(ctx, name, handler)
		if err != nil {
			return err
		}
		defer unsubscribe()
	}
	pterm.Info.Printfln("Watching %d events. Press Ctrl+C to stop.", len(events))

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c
	return nil
}

func accountOrSelf(account string, s *session) (types.ID, error) {
	if account == "" {
		return s.client.Address(), nil
	}
	return types.NewIDFromString(account)
}
