// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package client turns swap, staking and liquidity intents into signed
// contract calls, submits them and waits for confirmation.
package client

import (
	"context"
	"errors"
	"sync"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/cache"
	"github.com/project-illium/zswap/codec"
	"github.com/project-illium/zswap/crypto"
	"github.com/project-illium/zswap/notestore"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/proofgen"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/zk"
)

// ErrConfirmationTimeout is wrapped by the ErrNetwork error returned
// when a submitted transaction is not included in time.
var ErrConfirmationTimeout = errors.New("timed out waiting for confirmation")

// Client is the entry point for interacting with the swap contract.
// It is safe for concurrent use. Transactions from the same signer are
// serialized from nonce lookup through submission, everything after
// that runs in parallel.
type Client struct {
	cfg       *config
	ctx       context.Context
	cancel    context.CancelFunc
	contract  types.ID
	owner     types.ID
	generator *proofgen.Generator
	notes     *notestore.NoteStore
	state     *cache.TTLCache[types.ID, *codec.ContractState]

	signers   map[types.ID]*sync.Mutex
	signerMtx sync.Mutex

	// inflight holds the commitments bound by operations that have not
	// finished yet.
	inflight    map[types.ID]struct{}
	inflightMtx sync.Mutex

	events *eventPoller
}

// NewClient returns a new Client. The DefaultOptions are applied
// before opts. The wallet is asked for its address here so ctx bounds
// that call.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	var cfg config
	for _, opt := range append([]Option{DefaultOptions()}, opts...) {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.prover == nil && cfg.params != nil && cfg.params.AllowMockProofs {
		cfg.prover = &zk.MockProver{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	owner, err := cfg.wallet.Address(ctx)
	if err != nil {
		return nil, networkError("wallet address lookup failed", err)
	}

	counterparty := cfg.counterparty
	if counterparty == nil {
		_, counterparty, err = crypto.NewCurve25519KeyFromSeed(cfg.params.ContractAddress)
		if err != nil {
			return nil, err
		}
	}

	cctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:      &cfg,
		ctx:      cctx,
		cancel:   cancel,
		contract: types.NewID(cfg.params.ContractAddress[:]),
		owner:    owner,
		state:    cache.New[types.ID, *codec.ContractState](cfg.stateCacheTTL, 1, cfg.clock),
		signers:  make(map[types.ID]*sync.Mutex),
		inflight: make(map[types.ID]struct{}),
	}

	generatorOpts := append([]proofgen.Option{
		proofgen.Prover(cfg.prover),
		proofgen.Verifier(cfg.verifier),
		proofgen.Clock(cfg.clock),
		proofgen.Owner(owner),
		proofgen.CounterpartyKey(counterparty),
		proofgen.Stakes(c.StakedAmount),
	}, cfg.generatorOpts...)
	c.generator, err = proofgen.NewGenerator(generatorOpts...)
	if err != nil {
		cancel()
		return nil, err
	}

	c.notes, err = notestore.NewNoteStore(cfg.datastore, c.onChainSpent)
	if err != nil {
		cancel()
		return nil, err
	}
	c.events = newEventPoller(c)
	c.generator.Start()

	log.Infow("Client started", "network", cfg.params.Name, "address", owner, "tracked notes", c.notes.Len())
	return c, nil
}

// Close stops background work. Operations in flight are not
// interrupted but event delivery stops.
func (c *Client) Close() error {
	c.events.stop()
	c.generator.Stop()
	c.cancel()
	return nil
}

// Address returns the account the client signs for.
func (c *Client) Address() types.ID {
	return c.owner
}

// Params returns the network the client is configured for.
func (c *Client) Params() *params.NetworkParams {
	return c.cfg.params
}

// Notes returns the store tracking the notes this client created.
func (c *Client) Notes() *notestore.NoteStore {
	return c.notes
}

// ClearCache drops the cached contract state along with every cached
// proof and commitment.
func (c *Client) ClearCache() {
	c.state.Clear()
	c.generator.ClearCache()
}

// ContractState returns the contract's configuration and status. The
// result is cached for the state cache TTL.
func (c *Client) ContractState(ctx context.Context) (*codec.ContractState, error) {
	if state, ok := c.state.Get(c.contract); ok {
		return state, nil
	}
	ret, err := c.call(ctx, codec.MethodGetContractState)
	if err != nil {
		return nil, err
	}
	state, err := codec.DecodeContractState(ret)
	if err != nil {
		return nil, err
	}
	c.state.Put(c.contract, state)
	return state, nil
}

// IsPremiumUser reports whether user has staked enough to use batch
// swaps.
func (c *Client) IsPremiumUser(ctx context.Context, user types.ID) (bool, error) {
	ret, err := c.call(ctx, codec.MethodIsPremiumUser, codec.IDArg(user))
	if err != nil {
		return false, err
	}
	return codec.DecodeBool(ret)
}

// StakedAmount returns how much NIGHT user has staked.
func (c *Client) StakedAmount(ctx context.Context, user types.ID) (*uint256.Int, error) {
	ret, err := c.call(ctx, codec.MethodStakedAmount, codec.IDArg(user))
	if err != nil {
		return nil, err
	}
	return codec.DecodeUint(ret)
}

// IsNullifierSpent checks the local spent set first and only asks the
// ledger when the nullifier is not known to be spent.
func (c *Client) IsNullifierSpent(ctx context.Context, nullifier types.Nullifier) (bool, error) {
	return c.notes.IsSpent(ctx, nullifier)
}

func (c *Client) onChainSpent(ctx context.Context, nullifier types.Nullifier) (bool, error) {
	ret, err := c.call(ctx, codec.MethodIsNullifierSpent, codec.IDArg(types.ID(nullifier)))
	if err != nil {
		return false, err
	}
	return codec.DecodeBool(ret)
}

func (c *Client) poolExists(ctx context.Context, poolID types.ID) (bool, error) {
	ret, err := c.call(ctx, codec.MethodPoolExists, codec.IDArg(poolID))
	if err != nil {
		return false, err
	}
	return codec.DecodeBool(ret)
}

// CalculateFee returns the swap fee charged on amount, rounded down.
func CalculateFee(amount *uint256.Int) *uint256.Int {
	fee := new(uint256.Int).Mul(amount, uint256.NewInt(params.FeeRateBps))
	return fee.Div(fee, uint256.NewInt(params.FeeDivisor))
}

func (c *Client) call(ctx context.Context, method string, args ...codec.Arg) ([]byte, error) {
	data, err := codec.EncodeFunction(method, args...)
	if err != nil {
		return nil, err
	}
	ret, err := c.cfg.rpc.Call(ctx, c.contract, data)
	if err != nil {
		return nil, networkError(method+" call failed", err)
	}
	return ret, nil
}

// networkError wraps err as an ErrNetwork error unless it already
// carries a code.
func networkError(desc string, err error) error {
	var e types.Error
	if errors.As(err, &e) {
		return err
	}
	return types.WrapError(types.ErrNetwork, desc, err)
}
