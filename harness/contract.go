// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/codec"
	"github.com/project-illium/zswap/params"
	"github.com/project-illium/zswap/types"
	"github.com/project-illium/zswap/zk"
)

var (
	errPaused       = errors.New("contract paused")
	errInvalidProof = errors.New("invalid proof")
)

const (
	baseGas    = 21000
	gasPerByte = 16
)

type pool struct {
	tokenA      types.ID
	tokenB      types.ID
	reserveA    *uint256.Int
	reserveB    *uint256.Int
	totalShares *uint256.Int
	shares      map[types.ID]*uint256.Int
}

// contract holds the swap contract state. Callers hold the ledger lock.
type contract struct {
	developer types.ID
	verifier  zk.Verifier
	night     types.ID
	dust      types.ID

	paused      bool
	totalFees   *uint256.Int
	balances    map[types.ID]map[types.ID]*uint256.Int
	stakes      map[types.ID]*uint256.Int
	rewards     map[types.ID]*uint256.Int
	nullifiers  map[types.ID]bool
	commitments map[types.ID][]byte
	pools       map[types.ID]*pool
}

func newContract(params *params.NetworkParams, developer types.ID, verifier zk.Verifier) *contract {
	return &contract{
		developer:   developer,
		verifier:    verifier,
		night:       types.NewID(params.NightTokenID[:]),
		dust:        types.NewID(params.DustTokenID[:]),
		totalFees:   new(uint256.Int),
		balances:    make(map[types.ID]map[types.ID]*uint256.Int),
		stakes:      make(map[types.ID]*uint256.Int),
		rewards:     make(map[types.ID]*uint256.Int),
		nullifiers:  make(map[types.ID]bool),
		commitments: make(map[types.ID][]byte),
		pools:       make(map[types.ID]*pool),
	}
}

func get(m map[types.ID]*uint256.Int, id types.ID) *uint256.Int {
	if v, ok := m[id]; ok {
		return v
	}
	v := new(uint256.Int)
	m[id] = v
	return v
}

func (c *contract) balance(user, token types.ID) *uint256.Int {
	b, ok := c.balances[user]
	if !ok {
		b = make(map[types.ID]*uint256.Int)
		c.balances[user] = b
	}
	return get(b, token)
}

func (c *contract) credit(user, token types.ID, amount *uint256.Int) {
	bal := c.balance(user, token)
	bal.Add(bal, amount)
}

func (c *contract) debit(user, token types.ID, amount *uint256.Int) error {
	bal := c.balance(user, token)
	if bal.Lt(amount) {
		return fmt.Errorf("insufficient %s balance", token)
	}
	bal.Sub(bal, amount)
	return nil
}

func (c *contract) addRewards(user types.ID, amount *uint256.Int) {
	r := get(c.rewards, user)
	r.Add(r, amount)
}

func (c *contract) isPremium(user types.ID) bool {
	return get(c.stakes, user).Gt(params.PremiumThreshold())
}

func fee(amount *uint256.Int) *uint256.Int {
	f := new(uint256.Int).Mul(amount, uint256.NewInt(params.FeeRateBps))
	return f.Div(f, uint256.NewInt(params.FeeDivisor))
}

func poolID(a, b types.ID) types.ID {
	if a.Compare(b) > 0 {
		a, b = b, a
	}
	return types.NewIDFromData(append(append([]byte("pool"), a[:]...), b[:]...))
}

func (c *contract) verifyProof(circuit zk.Circuit, proof *types.BalanceProof, public ...uint256.Int) error {
	valid, err := c.verifier.Verify(context.Background(), circuit, proof)
	if err != nil || !valid {
		return errInvalidProof
	}
	expected := zk.PublicInputs(public)
	if len(expected) != len(proof.PublicInputs) {
		return errInvalidProof
	}
	for i := range expected {
		if !expected[i].Equal(&proof.PublicInputs[i]) {
			return errInvalidProof
		}
	}
	return nil
}

func (c *contract) addCommitments(sealed []byte, commitments ...types.ID) error {
	for _, cm := range commitments {
		if cm.IsZero() {
			continue
		}
		if _, ok := c.commitments[cm]; ok {
			return fmt.Errorf("duplicate commitment %s", cm)
		}
	}
	for _, cm := range commitments {
		if !cm.IsZero() {
			c.commitments[cm] = sealed
		}
	}
	return nil
}

func emit(ev codec.ContractEvent) []types.Log {
	topics, data, err := codec.EncodeEvent(ev)
	if err != nil {
		// Events are built from decoded state and always encode.
		panic(err)
	}
	return []types.Log{{Topics: topics, Data: data}}
}

// execute applies a state changing call. State is only modified once
// every check has passed so a reverted call leaves no trace.
func (c *contract) execute(sender types.ID, tx *types.UnsignedTransaction, height uint64) ([]types.Log, uint64, error) {
	gasUsed := uint64(baseGas + gasPerByte*len(tx.Data))
	if gasUsed > tx.GasLimit {
		return nil, tx.GasLimit, errors.New("out of gas")
	}
	m, d, err := codec.DecodeFunction(tx.Data)
	if err != nil {
		return nil, gasUsed, err
	}
	if m.ReadOnly {
		return nil, gasUsed, fmt.Errorf("%s is read only", m.Name)
	}

	var logs []types.Log
	switch m.Name {
	case codec.MethodSwap:
		logs, err = c.swap(sender, d, height)
	case codec.MethodBatchSwap:
		logs, err = c.batchSwap(sender, d, height)
	case codec.MethodStake:
		logs, err = c.stake(sender, d)
	case codec.MethodUnstake:
		logs, err = c.unstake(sender, d)
	case codec.MethodAddLiquidity:
		logs, err = c.addLiquidity(sender, d)
	case codec.MethodRemoveLiquidity:
		logs, err = c.removeLiquidity(sender, d)
	case codec.MethodClaimRewards:
		logs, err = c.claimRewards(sender, d)
	case codec.MethodEmergencyWithdraw:
		logs, err = c.emergencyWithdraw(sender, d)
	case codec.MethodSetPaused:
		logs, err = c.setPaused(sender, d)
	default:
		err = fmt.Errorf("method %s not implemented", m.Name)
	}
	return logs, gasUsed, err
}

type swapLeg struct {
	order     types.SwapOrder
	nullifier types.ID
	fee       *uint256.Int
}

func (c *contract) checkLeg(leg *swapLeg, height uint64) error {
	o := leg.order
	if o.Deadline < height {
		return fmt.Errorf("deadline %d passed at height %d", o.Deadline, height)
	}
	if o.Input.TokenID == o.Output.TokenID {
		return errors.New("pool not found")
	}
	if c.nullifiers[leg.nullifier] {
		return fmt.Errorf("nullifier %s already spent", leg.nullifier)
	}
	amount := o.Input.Amount.Value()
	leg.fee = fee(amount)
	out := new(uint256.Int).Sub(amount, leg.fee)
	if out.Lt(o.MinOutputAmount.Value()) {
		return errors.New("slippage exceeded")
	}
	return nil
}

// checkBalances sums the inputs of legs per token and checks them
// against the sender's balances.
func (c *contract) checkBalances(sender types.ID, legs []swapLeg) error {
	need := make(map[types.ID]*uint256.Int)
	seen := make(map[types.ID]bool)
	for _, leg := range legs {
		if seen[leg.nullifier] {
			return errors.New("duplicate nullifier")
		}
		seen[leg.nullifier] = true
		n := get(need, leg.order.Input.TokenID)
		n.Add(n, leg.order.Input.Amount.Value())
	}
	for token, amount := range need {
		if c.balance(sender, token).Lt(amount) {
			return fmt.Errorf("insufficient %s balance", token)
		}
	}
	return nil
}

// applyLegs debits every input and credits every output. It must only
// be called after checkBalances.
func (c *contract) applyLegs(sender types.ID, legs []swapLeg) *uint256.Int {
	total := new(uint256.Int)
	for _, leg := range legs {
		amount := leg.order.Input.Amount.Value()
		_ = c.debit(sender, leg.order.Input.TokenID, amount)
		c.credit(sender, leg.order.Output.TokenID, new(uint256.Int).Sub(amount, leg.fee))
		c.nullifiers[leg.nullifier] = true
		total.Add(total, leg.fee)
	}
	c.totalFees.Add(c.totalFees, total)
	return total
}

func (c *contract) swap(sender types.ID, d *codec.Decoder, height uint64) ([]types.Log, error) {
	order, err := d.SwapOrder()
	if err != nil {
		return nil, err
	}
	commitments, err := d.FixedIDs(2)
	if err != nil {
		return nil, err
	}
	nullifier, err := d.ID()
	if err != nil {
		return nil, err
	}
	sealed, err := d.ByteString()
	if err != nil {
		return nil, err
	}
	proof, err := d.Proof()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}

	if c.paused {
		return nil, errPaused
	}
	leg := swapLeg{order: order, nullifier: nullifier}
	if err := c.checkLeg(&leg, height); err != nil {
		return nil, err
	}
	if err := c.verifyProof(zk.BalanceCircuit{}, proof, *order.Input.Amount.Value()); err != nil {
		return nil, err
	}
	legs := []swapLeg{leg}
	if err := c.checkBalances(sender, legs); err != nil {
		return nil, err
	}
	if err := c.addCommitments(sealed, commitments...); err != nil {
		return nil, err
	}
	total := c.applyLegs(sender, legs)
	return emit(&codec.SwapExecuted{
		SwapID:       types.NewIDFromData(append([]byte("swap"), nullifier[:]...)),
		User:         sender,
		FeeCollected: total,
	}), nil
}

func (c *contract) batchSwap(sender types.ID, d *codec.Decoder, height uint64) ([]types.Log, error) {
	batch, err := d.BatchSwapOrder()
	if err != nil {
		return nil, err
	}
	commitments, err := d.FixedIDs(params.MaxBatchCommitments)
	if err != nil {
		return nil, err
	}
	nullifiers, err := d.IDs()
	if err != nil {
		return nil, err
	}
	sealed, err := d.ByteString()
	if err != nil {
		return nil, err
	}
	proof, err := d.Proof()
	if err != nil {
		return nil, err
	}
	stakeProof, err := d.Proof()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}

	if c.paused {
		return nil, errPaused
	}
	if !c.isPremium(sender) {
		return nil, errors.New("not a premium user")
	}
	if err := c.verifyProof(zk.StakeCircuit{}, stakeProof, *params.PremiumThreshold()); err != nil {
		return nil, err
	}
	n := batch.ActiveCount()
	if n == 0 || len(nullifiers) != n {
		return nil, fmt.Errorf("batch has %d orders and %d nullifiers", n, len(nullifiers))
	}
	legs := make([]swapLeg, n)
	for i := range legs {
		legs[i] = swapLeg{order: batch.Orders[i], nullifier: nullifiers[i]}
		if err := c.checkLeg(&legs[i], height); err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
	}
	if err := c.verifyProof(zk.BatchCircuit{}, proof, *uint256.NewInt(uint64(n))); err != nil {
		return nil, err
	}
	if err := c.checkBalances(sender, legs); err != nil {
		return nil, err
	}
	if err := c.addCommitments(sealed, commitments...); err != nil {
		return nil, err
	}
	total := c.applyLegs(sender, legs)
	return emit(&codec.BatchSwapExecuted{
		BatchID:           types.NewIDFromData(append([]byte("batch"), nullifiers[0][:]...)),
		User:              sender,
		SwapCount:         uint64(n),
		TotalFeeCollected: total,
	}), nil
}

func (c *contract) stake(sender types.ID, d *codec.Decoder) ([]types.Log, error) {
	amount, err := d.Uint()
	if err != nil {
		return nil, err
	}
	commitment, err := d.ID()
	if err != nil {
		return nil, err
	}
	proof, err := d.Proof()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}

	if c.paused {
		return nil, errPaused
	}
	if amount.IsZero() {
		return nil, errors.New("zero stake")
	}
	if err := c.verifyProof(zk.BalanceCircuit{}, proof, *amount); err != nil {
		return nil, err
	}
	if c.balance(sender, c.night).Lt(amount) {
		return nil, errors.New("insufficient balance to stake")
	}
	if err := c.addCommitments(nil, commitment); err != nil {
		return nil, err
	}
	_ = c.debit(sender, c.night, amount)
	s := get(c.stakes, sender)
	s.Add(s, amount)
	return emit(&codec.Staked{
		StakeID:         types.NewIDFromData(append([]byte("stake"), commitment[:]...)),
		User:            sender,
		Amount:          amount,
		PremiumEligible: c.isPremium(sender),
	}), nil
}

func (c *contract) unstake(sender types.ID, d *codec.Decoder) ([]types.Log, error) {
	amount, err := d.Uint()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	s := get(c.stakes, sender)
	if amount.IsZero() || s.Lt(amount) {
		return nil, errors.New("invalid unstake amount")
	}
	s.Sub(s, amount)
	c.credit(sender, c.night, amount)
	return emit(&codec.Unstaked{
		User:            sender,
		Amount:          amount,
		PremiumEligible: c.isPremium(sender),
	}), nil
}

func (c *contract) addLiquidity(sender types.ID, d *codec.Decoder) ([]types.Log, error) {
	tokenA, err := d.ID()
	if err != nil {
		return nil, err
	}
	tokenB, err := d.ID()
	if err != nil {
		return nil, err
	}
	wA, err := d.Witness()
	if err != nil {
		return nil, err
	}
	wB, err := d.Witness()
	if err != nil {
		return nil, err
	}
	commitments, err := d.FixedIDs(2)
	if err != nil {
		return nil, err
	}
	proofA, err := d.Proof()
	if err != nil {
		return nil, err
	}
	proofB, err := d.Proof()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}

	if c.paused {
		return nil, errPaused
	}
	if tokenA == tokenB {
		return nil, errors.New("pool not found")
	}
	amountA, amountB := wA.Value(), wB.Value()
	if amountA.IsZero() || amountB.IsZero() {
		return nil, errors.New("zero liquidity")
	}
	if err := c.verifyProof(zk.BalanceCircuit{}, proofA, *amountA); err != nil {
		return nil, err
	}
	if err := c.verifyProof(zk.BalanceCircuit{}, proofB, *amountB); err != nil {
		return nil, err
	}
	if c.balance(sender, tokenA).Lt(amountA) || c.balance(sender, tokenB).Lt(amountB) {
		return nil, errors.New("insufficient balance for liquidity")
	}

	id := poolID(tokenA, tokenB)
	p, ok := c.pools[id]
	if !ok {
		p = &pool{
			tokenA:      tokenA,
			tokenB:      tokenB,
			reserveA:    new(uint256.Int),
			reserveB:    new(uint256.Int),
			totalShares: new(uint256.Int),
			shares:      make(map[types.ID]*uint256.Int),
		}
	}
	if p.tokenA != tokenA {
		amountA, amountB = amountB, amountA
	}
	var shares *uint256.Int
	if p.totalShares.IsZero() {
		product, overflow := new(uint256.Int).MulOverflow(amountA, amountB)
		if overflow {
			return nil, errors.New("liquidity overflow")
		}
		shares = new(uint256.Int).Sqrt(product)
	} else {
		sa := new(uint256.Int).Mul(amountA, p.totalShares)
		sa.Div(sa, p.reserveA)
		sb := new(uint256.Int).Mul(amountB, p.totalShares)
		sb.Div(sb, p.reserveB)
		shares = sa
		if sb.Lt(sa) {
			shares = sb
		}
	}
	if shares.IsZero() {
		return nil, errors.New("liquidity too small")
	}
	if err := c.addCommitments(nil, commitments...); err != nil {
		return nil, err
	}

	_ = c.debit(sender, p.tokenA, amountA)
	_ = c.debit(sender, p.tokenB, amountB)
	p.reserveA.Add(p.reserveA, amountA)
	p.reserveB.Add(p.reserveB, amountB)
	p.totalShares.Add(p.totalShares, shares)
	s := get(p.shares, sender)
	s.Add(s, shares)
	c.pools[id] = p

	return emit(&codec.LiquidityAdded{
		PoolID:       id,
		Provider:     sender,
		SharesIssued: shares,
	}), nil
}

func (c *contract) removeLiquidity(sender types.ID, d *codec.Decoder) ([]types.Log, error) {
	id, err := d.ID()
	if err != nil {
		return nil, err
	}
	shares, err := d.Uint()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	p, ok := c.pools[id]
	if !ok {
		return nil, errors.New("pool not found")
	}
	held := get(p.shares, sender)
	if shares.IsZero() || held.Lt(shares) {
		return nil, errors.New("insufficient shares")
	}
	amountA := new(uint256.Int).Mul(p.reserveA, shares)
	amountA.Div(amountA, p.totalShares)
	amountB := new(uint256.Int).Mul(p.reserveB, shares)
	amountB.Div(amountB, p.totalShares)

	held.Sub(held, shares)
	p.totalShares.Sub(p.totalShares, shares)
	p.reserveA.Sub(p.reserveA, amountA)
	p.reserveB.Sub(p.reserveB, amountB)
	c.credit(sender, p.tokenA, amountA)
	c.credit(sender, p.tokenB, amountB)

	return emit(&codec.LiquidityRemoved{
		PoolID:       id,
		Provider:     sender,
		SharesBurned: shares,
		AmountA:      amountA,
		AmountB:      amountB,
	}), nil
}

func (c *contract) claimRewards(sender types.ID, d *codec.Decoder) ([]types.Log, error) {
	if err := d.Finish(); err != nil {
		return nil, err
	}
	if c.paused {
		return nil, errPaused
	}
	r := get(c.rewards, sender)
	amount := r.Clone()
	r.Clear()
	c.credit(sender, c.night, amount)
	return emit(&codec.RewardsClaimed{User: sender, Amount: amount}), nil
}

func (c *contract) emergencyWithdraw(sender types.ID, d *codec.Decoder) ([]types.Log, error) {
	if err := d.Finish(); err != nil {
		return nil, err
	}
	s := get(c.stakes, sender)
	amount := s.Clone()
	s.Clear()
	c.credit(sender, c.night, amount)
	return emit(&codec.EmergencyWithdrawal{User: sender, Amount: amount}), nil
}

func (c *contract) setPaused(sender types.ID, d *codec.Decoder) ([]types.Log, error) {
	paused, err := d.Bool()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	if sender != c.developer {
		return nil, errors.New("unauthorized")
	}
	c.paused = paused
	return emit(&codec.PauseToggled{By: sender, Paused: paused}), nil
}

// call runs a read-only method and returns its name and encoded
// return value.
func (c *contract) call(data []byte) (string, []byte, error) {
	m, d, err := codec.DecodeFunction(data)
	if err != nil {
		return "", nil, err
	}
	if !m.ReadOnly {
		return m.Name, nil, fmt.Errorf("%s is not read only", m.Name)
	}
	var (
		args = make([]types.ID, len(m.Inputs))
		e    = codec.NewEncoder(nil)
	)
	for i := range args {
		if args[i], err = d.ID(); err != nil {
			return m.Name, nil, err
		}
	}
	if err := d.Finish(); err != nil {
		return m.Name, nil, err
	}

	switch m.Name {
	case codec.MethodGetContractState:
		state := &codec.ContractState{
			DeveloperWallet:    c.developer,
			NightTokenID:       c.night,
			DustTokenID:        c.dust,
			FeeRateBps:         params.FeeRateBps,
			PremiumThreshold:   params.PremiumThreshold(),
			MaxBatchSize:       params.MaxBatchSize,
			TotalFeesCollected: c.totalFees.Clone(),
			IsPaused:           c.paused,
		}
		ret, err := state.Encode()
		return m.Name, ret, err
	case codec.MethodIsPremiumUser:
		e.Bool(c.isPremium(args[0]))
	case codec.MethodStakedAmount:
		e.Uint(get(c.stakes, args[0]).Clone())
	case codec.MethodIsNullifierSpent:
		e.Bool(c.nullifiers[args[0]])
	case codec.MethodBalanceOf:
		e.Uint(c.balance(args[0], args[1]).Clone())
	case codec.MethodPoolExists:
		_, ok := c.pools[args[0]]
		e.Bool(ok)
	default:
		return m.Name, nil, fmt.Errorf("method %s not implemented", m.Name)
	}
	ret, err := e.Bytes()
	return m.Name, ret, err
}
