// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package codec

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params/hash"
	"github.com/project-illium/zswap/types"
)

// Event describes a contract event. The first log topic of an event is
// the keccak256 hash of its signature. The event fields are encoded in
// the log data.
type Event struct {
	Name   string
	Inputs []Kind
}

// Signature returns the canonical event signature.
func (ev *Event) Signature() string {
	return signature(ev.Name, ev.Inputs)
}

// Topic returns the event's first log topic.
func (ev *Event) Topic() types.ID {
	return types.NewID(hash.Keccak256([]byte(ev.Signature())))
}

// Contract event names.
const (
	EventSwapExecuted        = "SwapExecuted"
	EventBatchSwapExecuted   = "BatchSwapExecuted"
	EventStaked              = "Staked"
	EventUnstaked            = "Unstaked"
	EventLiquidityAdded      = "LiquidityAdded"
	EventLiquidityRemoved    = "LiquidityRemoved"
	EventRewardsClaimed      = "RewardsClaimed"
	EventEmergencyWithdrawal = "EmergencyWithdrawal"
	EventPauseToggled        = "PauseToggled"
)

// Events is the contract's event table keyed by name.
var Events = map[string]*Event{
	EventSwapExecuted:        {Name: EventSwapExecuted, Inputs: []Kind{KindID, KindID, KindUint}},
	EventBatchSwapExecuted:   {Name: EventBatchSwapExecuted, Inputs: []Kind{KindID, KindID, KindUint, KindUint}},
	EventStaked:              {Name: EventStaked, Inputs: []Kind{KindID, KindID, KindUint, KindBool}},
	EventUnstaked:            {Name: EventUnstaked, Inputs: []Kind{KindID, KindUint, KindBool}},
	EventLiquidityAdded:      {Name: EventLiquidityAdded, Inputs: []Kind{KindID, KindID, KindUint}},
	EventLiquidityRemoved:    {Name: EventLiquidityRemoved, Inputs: []Kind{KindID, KindID, KindUint, KindUint, KindUint}},
	EventRewardsClaimed:      {Name: EventRewardsClaimed, Inputs: []Kind{KindID, KindUint}},
	EventEmergencyWithdrawal: {Name: EventEmergencyWithdrawal, Inputs: []Kind{KindID, KindUint}},
	EventPauseToggled:        {Name: EventPauseToggled, Inputs: []Kind{KindID, KindBool}},
}

var eventsByTopic = make(map[types.ID]*Event)

func init() {
	for _, ev := range Events {
		eventsByTopic[ev.Topic()] = ev
	}
}

// EventByTopic looks up an event by its first log topic.
func EventByTopic(topic types.ID) (*Event, bool) {
	ev, ok := eventsByTopic[topic]
	return ev, ok
}

// ContractEvent is a decoded contract event.
type ContractEvent interface {
	// EventName returns the key of the event in the Events table.
	EventName() string

	encode(e *Encoder)
	decode(d *Decoder) error
}

// SwapExecuted is emitted by swap.
type SwapExecuted struct {
	SwapID       types.ID
	User         types.ID
	FeeCollected *uint256.Int
}

func (ev *SwapExecuted) EventName() string { return EventSwapExecuted }

func (ev *SwapExecuted) encode(e *Encoder) {
	e.ID(ev.SwapID)
	e.ID(ev.User)
	e.Uint(ev.FeeCollected)
}

func (ev *SwapExecuted) decode(d *Decoder) (err error) {
	if ev.SwapID, err = d.ID(); err != nil {
		return err
	}
	if ev.User, err = d.ID(); err != nil {
		return err
	}
	ev.FeeCollected, err = d.Uint()
	return err
}

// BatchSwapExecuted is emitted by batchSwap.
type BatchSwapExecuted struct {
	BatchID           types.ID
	User              types.ID
	SwapCount         uint64
	TotalFeeCollected *uint256.Int
}

func (ev *BatchSwapExecuted) EventName() string { return EventBatchSwapExecuted }

func (ev *BatchSwapExecuted) encode(e *Encoder) {
	e.ID(ev.BatchID)
	e.ID(ev.User)
	e.Uint64(ev.SwapCount)
	e.Uint(ev.TotalFeeCollected)
}

func (ev *BatchSwapExecuted) decode(d *Decoder) (err error) {
	if ev.BatchID, err = d.ID(); err != nil {
		return err
	}
	if ev.User, err = d.ID(); err != nil {
		return err
	}
	if ev.SwapCount, err = d.Uint64(); err != nil {
		return err
	}
	ev.TotalFeeCollected, err = d.Uint()
	return err
}

// Staked is emitted by stake.
type Staked struct {
	StakeID         types.ID
	User            types.ID
	Amount          *uint256.Int
	PremiumEligible bool
}

func (ev *Staked) EventName() string { return EventStaked }

func (ev *Staked) encode(e *Encoder) {
	e.ID(ev.StakeID)
	e.ID(ev.User)
	e.Uint(ev.Amount)
	e.Bool(ev.PremiumEligible)
}

func (ev *Staked) decode(d *Decoder) (err error) {
	if ev.StakeID, err = d.ID(); err != nil {
		return err
	}
	if ev.User, err = d.ID(); err != nil {
		return err
	}
	if ev.Amount, err = d.Uint(); err != nil {
		return err
	}
	ev.PremiumEligible, err = d.Bool()
	return err
}

// Unstaked is emitted by unstake.
type Unstaked struct {
	User            types.ID
	Amount          *uint256.Int
	PremiumEligible bool
}

func (ev *Unstaked) EventName() string { return EventUnstaked }

func (ev *Unstaked) encode(e *Encoder) {
	e.ID(ev.User)
	e.Uint(ev.Amount)
	e.Bool(ev.PremiumEligible)
}

func (ev *Unstaked) decode(d *Decoder) (err error) {
	if ev.User, err = d.ID(); err != nil {
		return err
	}
	if ev.Amount, err = d.Uint(); err != nil {
		return err
	}
	ev.PremiumEligible, err = d.Bool()
	return err
}

// LiquidityAdded is emitted by addLiquidity.
type LiquidityAdded struct {
	PoolID       types.ID
	Provider     types.ID
	SharesIssued *uint256.Int
}

func (ev *LiquidityAdded) EventName() string { return EventLiquidityAdded }

func (ev *LiquidityAdded) encode(e *Encoder) {
	e.ID(ev.PoolID)
	e.ID(ev.Provider)
	e.Uint(ev.SharesIssued)
}

func (ev *LiquidityAdded) decode(d *Decoder) (err error) {
	if ev.PoolID, err = d.ID(); err != nil {
		return err
	}
	if ev.Provider, err = d.ID(); err != nil {
		return err
	}
	ev.SharesIssued, err = d.Uint()
	return err
}

// LiquidityRemoved is emitted by removeLiquidity.
type LiquidityRemoved struct {
	PoolID       types.ID
	Provider     types.ID
	SharesBurned *uint256.Int
	AmountA      *uint256.Int
	AmountB      *uint256.Int
}

func (ev *LiquidityRemoved) EventName() string { return EventLiquidityRemoved }

func (ev *LiquidityRemoved) encode(e *Encoder) {
	e.ID(ev.PoolID)
	e.ID(ev.Provider)
	e.Uint(ev.SharesBurned)
	e.Uint(ev.AmountA)
	e.Uint(ev.AmountB)
}

func (ev *LiquidityRemoved) decode(d *Decoder) (err error) {
	if ev.PoolID, err = d.ID(); err != nil {
		return err
	}
	if ev.Provider, err = d.ID(); err != nil {
		return err
	}
	if ev.SharesBurned, err = d.Uint(); err != nil {
		return err
	}
	if ev.AmountA, err = d.Uint(); err != nil {
		return err
	}
	ev.AmountB, err = d.Uint()
	return err
}

// RewardsClaimed is emitted by claimRewards.
type RewardsClaimed struct {
	User   types.ID
	Amount *uint256.Int
}

func (ev *RewardsClaimed) EventName() string { return EventRewardsClaimed }

func (ev *RewardsClaimed) encode(e *Encoder) {
	e.ID(ev.User)
	e.Uint(ev.Amount)
}

func (ev *RewardsClaimed) decode(d *Decoder) (err error) {
	if ev.User, err = d.ID(); err != nil {
		return err
	}
	ev.Amount, err = d.Uint()
	return err
}

// EmergencyWithdrawal is emitted by emergencyWithdraw.
type EmergencyWithdrawal struct {
	User   types.ID
	Amount *uint256.Int
}

func (ev *EmergencyWithdrawal) EventName() string { return EventEmergencyWithdrawal }

func (ev *EmergencyWithdrawal) encode(e *Encoder) {
	e.ID(ev.User)
	e.Uint(ev.Amount)
}

func (ev *EmergencyWithdrawal) decode(d *Decoder) (err error) {
	if ev.User, err = d.ID(); err != nil {
		return err
	}
	ev.Amount, err = d.Uint()
	return err
}

// PauseToggled is emitted by setPaused.
type PauseToggled struct {
	By     types.ID
	Paused bool
}

func (ev *PauseToggled) EventName() string { return EventPauseToggled }

func (ev *PauseToggled) encode(e *Encoder) {
	e.ID(ev.By)
	e.Bool(ev.Paused)
}

func (ev *PauseToggled) decode(d *Decoder) (err error) {
	if ev.By, err = d.ID(); err != nil {
		return err
	}
	ev.Paused, err = d.Bool()
	return err
}

var newEvent = map[string]func() ContractEvent{
	EventSwapExecuted:        func() ContractEvent { return new(SwapExecuted) },
	EventBatchSwapExecuted:   func() ContractEvent { return new(BatchSwapExecuted) },
	EventStaked:              func() ContractEvent { return new(Staked) },
	EventUnstaked:            func() ContractEvent { return new(Unstaked) },
	EventLiquidityAdded:      func() ContractEvent { return new(LiquidityAdded) },
	EventLiquidityRemoved:    func() ContractEvent { return new(LiquidityRemoved) },
	EventRewardsClaimed:      func() ContractEvent { return new(RewardsClaimed) },
	EventEmergencyWithdrawal: func() ContractEvent { return new(EmergencyWithdrawal) },
	EventPauseToggled:        func() ContractEvent { return new(PauseToggled) },
}

// EncodeEvent returns the topics and data of a log emitting ev.
func EncodeEvent(ev ContractEvent) ([]types.ID, []byte, error) {
	desc, ok := Events[ev.EventName()]
	if !ok {
		return nil, nil, types.NewError(types.ErrInvalidInput, fmt.Sprintf("unknown event %q", ev.EventName()))
	}
	e := NewEncoder(nil)
	ev.encode(e)
	data, err := e.Bytes()
	if err != nil {
		return nil, nil, err
	}
	return []types.ID{desc.Topic()}, data, nil
}

// DecodeEvent decodes a log into its typed event.
func DecodeEvent(log *types.Log) (ContractEvent, error) {
	if log == nil || len(log.Topics) == 0 {
		return nil, types.NewError(types.ErrDecode, "log has no topics")
	}
	desc, ok := EventByTopic(log.Topics[0])
	if !ok {
		return nil, types.NewError(types.ErrDecode, fmt.Sprintf("unknown event topic %s", log.Topics[0]))
	}
	ev := newEvent[desc.Name]()
	d := NewDecoder(log.Data)
	if err := ev.decode(d); err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return ev, nil
}

// FindEvent returns the first log in logs that decodes to the named
// event.
func FindEvent(logs []types.Log, name string) (ContractEvent, *types.Log, error) {
	desc, ok := Events[name]
	if !ok {
		return nil, nil, types.NewError(types.ErrInvalidInput, fmt.Sprintf("unknown event %q", name))
	}
	topic := desc.Topic()
	for i := range logs {
		if len(logs[i].Topics) == 0 || logs[i].Topics[0] != topic {
			continue
		}
		ev, err := DecodeEvent(&logs[i])
		if err != nil {
			return nil, nil, err
		}
		return ev, &logs[i], nil
	}
	return nil, nil, types.NewError(types.ErrDecode, fmt.Sprintf("receipt has no %s event", name))
}
