// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"context"

	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/types"
	"github.com/pterm/pterm"
)

type GetAddress struct {
	opts *repo.Config
}

func (x *GetAddress) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	pterm.DefaultSection.Println("Wallet")
	return pterm.DefaultTable.WithData(pterm.TableData{
		{"Account", s.client.Address().String()},
		{"Address", s.wallet.DisplayAddress().String()},
	}).Render()
}

type GetBalance struct {
	opts  *repo.Config
	Token string `short:"t" long:"token" description:"The token to query: night, dust or a hex token ID" default:"night"`
}

func (x *GetBalance) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	token, err := parseToken(x.Token, s.client.Params())
	if err != nil {
		return err
	}
	balance, err := s.wallet.Balance(ctx, token)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("%s %s", types.FormatNight(balance), tokenName(token, s.client.Params()))
	return nil
}

type GetNotes struct {
	opts *repo.Config
	All  bool `long:"all" description:"Include spent notes"`
}

func (x *GetNotes) Execute(args []string) error {
	ctx := context.Background()
	s, err := makeSession(ctx, x.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	notes := s.client.Notes().Unspent()
	if x.All {
		notes = s.client.Notes().All()
	}
	data := pterm.TableData{{"Commitment", "Token", "Amount", "Spent"}}
	for _, n := range notes {
		spent, err := s.client.IsNullifierSpent(ctx, n.Nullifier)
		if err != nil {
			return err
		}
		data = append(data, []string{
			n.Commitment.String(),
			tokenName(n.TokenID, s.client.Params()),
			types.FormatNight(&n.Amount),
			pterm.Sprint(spent),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
