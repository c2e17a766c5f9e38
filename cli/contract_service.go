// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/types"
	"github.com/pterm/pterm"
)

type Swap struct {
	opts      *repo.Config
	Input     string `short:"i" long:"in" description:"The token being sold: night, dust or a hex token ID" required:"true"`
	Output    string `short:"o" long:"out" description:"The token being bought: night, dust or a hex token ID" required:"true"`
	Amount    string `short:"a" long:"amount" description:"The amount to sell" required:"true"`
	MinOutput string `short:"m" long:"minout" description:"The least amount of output that will be accepted" required:"true"`
	Deadline  uint64 `short:"d" long:"deadline" description:"Number of blocks the order stays valid for" default:"20"`
}

func (x *Swap) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	order, err := parseOrder(x.Input, x.Output, x.Amount, x.MinOutput, x.Deadline, s.client.Params())
	if err != nil {
		return err
	}
	spinner, _ := pterm.DefaultSpinner.Start("Proving and submitting swap")
	res, err := s.client.Swap(ctx, order)
	if err != nil {
		spinner.Fail(err)
		return err
	}
	spinner.Success(fmt.Sprintf("Swap confirmed in block %d", res.BlockNumber))
	return printJSON(res)
}

type BatchSwap struct {
	opts   *repo.Config
	Orders []string `long:"order" description:"An order in the form in:out:amount:minout[:deadline]. May be repeated up to 5 times." required:"true"`
}

func (x *BatchSwap) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	orders := make([]types.SwapOrder, 0, len(x.Orders))
	for _, o := range x.Orders {
		parts := strings.Split(o, ":")
		if len(parts) != 4 && len(parts) != 5 {
			return fmt.Errorf("invalid order %q", o)
		}
		deadline := uint64(20)
		if len(parts) == 5 {
			deadline, err = strconv.ParseUint(parts[4], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid deadline in order %q: %w", o, err)
			}
		}
		order, err := parseOrder(parts[0], parts[1], parts[2], parts[3], deadline, s.client.Params())
		if err != nil {
			return err
		}
		orders = append(orders, order)
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Proving and submitting %d orders", len(orders)))
	res, err := s.client.BatchSwap(ctx, types.NewBatchSwapOrder(orders...))
	if err != nil {
		spinner.Fail(err)
		return err
	}
	spinner.Success(fmt.Sprintf("Batch confirmed in block %d", res.BlockNumber))
	return printJSON(res)
}

type Stake struct {
	opts   *repo.Config
	Amount string `short:"a" long:"amount" description:"The amount of NIGHT to stake" required:"true"`
}

func (x *Stake) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	amount, err := types.ParseNight(x.Amount)
	if err != nil {
		return err
	}
	res, err := s.client.Stake(ctx, amount)
	if err != nil {
		return err
	}
	if res.IsPremiumEligible {
		pterm.Success.Println("Stake confirmed. The account is now premium.")
	} else {
		pterm.Success.Printfln("Stake confirmed. Stake more than %s NIGHT for premium.", types.FormatNight(params.PremiumThreshold()))
	}
	return printJSON(res)
}

type Unstake struct {
	opts   *repo.Config
	Amount string `short:"a" long:"amount" description:"The amount of NIGHT to unstake" required:"true"`
}

func (x *Unstake) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	amount, err := types.ParseNight(x.Amount)
	if err != nil {
		return err
	}
	res, err := s.client.Unstake(ctx, amount)
	if err != nil {
		return err
	}
	return printJSON(res)
}

type AddLiquidity struct {
	opts    *repo.Config
	TokenA  string `long:"tokena" description:"The first token of the pair" required:"true"`
	TokenB  string `long:"tokenb" description:"The second token of the pair" required:"true"`
	AmountA string `long:"amounta" description:"The amount of the first token" required:"true"`
	AmountB string `long:"amountb" description:"The amount of the second token" required:"true"`
}

func (x *AddLiquidity) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	tokenA, err := parseToken(x.TokenA, s.client.Params())
	if err != nil {
		return err
	}
	tokenB, err := parseToken(x.TokenB, s.client.Params())
	if err != nil {
		return err
	}
	amountA, err := types.ParseNight(x.AmountA)
	if err != nil {
		return err
	}
	amountB, err := types.ParseNight(x.AmountB)
	if err != nil {
		return err
	}
	res, err := s.client.AddLiquidity(ctx, tokenA, tokenB, amountA, amountB)
	if err != nil {
		return err
	}
	return printJSON(res)
}

type RemoveLiquidity struct {
	opts   *repo.Config
	PoolID string `short:"p" long:"pool" description:"The pool ID (hex)" required:"true"`
	Shares string `short:"s" long:"shares" description:"The number of shares to burn" required:"true"`
}

func (x *RemoveLiquidity) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	poolID, err := types.NewIDFromString(x.PoolID)
	if err != nil {
		return err
	}
	shares, err := uint256.FromDecimal(x.Shares)
	if err != nil {
		return fmt.Errorf("invalid shares: %w", err)
	}
	res, err := s.client.RemoveLiquidity(ctx, poolID, shares)
	if err != nil {
		return err
	}
	return printJSON(res)
}

type ClaimRewards struct {
	opts *repo.Config
}

func (x *ClaimRewards) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.client.ClaimRewards(ctx)
	if err != nil {
		return err
	}
	return printJSON(res)
}

type EmergencyWithdraw struct {
	opts *repo.Config
}

func (x *EmergencyWithdraw) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.client.EmergencyWithdraw(ctx)
	if err != nil {
		return err
	}
	return printJSON(res)
}

type SetPaused struct {
	opts   *repo.Config
	Paused string `long:"paused" description:"Whether the contract should be paused [true, false]" required:"true"`
}

func (x *SetPaused) Execute(args []string) error {
	paused, err := strconv.ParseBool(x.Paused)
	if err != nil {
		return errors.New("paused must be true or false")
	}
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.client.SetPaused(ctx, paused)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func parseOrder(in, out, amount, minOut string, deadline uint64, netParams *params.NetworkParams) (types.SwapOrder, error) {
	inToken, err := parseToken(in, netParams)
	if err != nil {
		return types.SwapOrder{}, err
	}
	outToken, err := parseToken(out, netParams)
	if err != nil {
		return types.SwapOrder{}, err
	}
	inAmount, err := types.ParseNight(amount)
	if err != nil {
		return types.SwapOrder{}, fmt.Errorf("invalid amount: %w", err)
	}
	minAmount, err := types.ParseNight(minOut)
	if err != nil {
		return types.SwapOrder{}, fmt.Errorf("invalid min output: %w", err)
	}
	return types.SwapOrder{
		Input:           types.Asset{TokenID: inToken, Amount: types.NewWitness(inAmount)},
		Output:          types.Asset{TokenID: outToken, Amount: types.NewWitness(minAmount)},
		MinOutputAmount: types.NewWitness(minAmount),
		Deadline:        deadline,
	}, nil
}
