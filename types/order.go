// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"fmt"

	"github.com/project-illium/zswap/params"
)

// Asset is one leg of a swap.
type Asset struct {
	TokenID ID
	Amount  WitnessField
}

// SwapOrder is a single private swap. Output.Amount is the minimum
// amount of the output token the user will accept for the leg and
// MinOutputAmount is the overall slippage bound.
//
// Deadline is expressed in blocks. Orders built by callers carry a
// relative deadline, the client resolves it to an absolute height
// before encoding.
type SwapOrder struct {
	Input           Asset
	Output          Asset
	MinOutputAmount WitnessField
	Deadline        uint64
}

// OrderSlot is one fixed position of a batch call.
type OrderSlot struct {
	Active bool
	Order  SwapOrder
}

// BatchSwapOrder holds the active orders of a batch. The contract
// expects exactly params.MaxBatchSize slots; Slots lowers the order list
// to that shape.
type BatchSwapOrder struct {
	Orders []SwapOrder
}

// NewBatchSwapOrder returns a batch with the given orders.
func NewBatchSwapOrder(orders ...SwapOrder) *BatchSwapOrder {
	return &BatchSwapOrder{Orders: orders}
}

// ActiveCount returns the number of orders in the batch.
func (b *BatchSwapOrder) ActiveCount() int {
	return len(b.Orders)
}

// Slots returns the fixed width representation of the batch. Unused
// slots hold zero orders and are marked inactive.
func (b *BatchSwapOrder) Slots() ([params.MaxBatchSize]OrderSlot, error) {
	var slots [params.MaxBatchSize]OrderSlot
	if len(b.Orders) > params.MaxBatchSize {
		return slots, NewError(ErrBatchSizeExceeded, fmt.Sprintf("batch holds %d orders, max %d", len(b.Orders), params.MaxBatchSize))
	}
	for i, o := range b.Orders {
		slots[i] = OrderSlot{Active: true, Order: o}
	}
	return slots, nil
}

// BatchFromSlots rebuilds a batch from its fixed width form. Only the
// first activeCount slots are kept.
func BatchFromSlots(slots [params.MaxBatchSize]OrderSlot, activeCount int) (*BatchSwapOrder, error) {
	if activeCount < 0 || activeCount > params.MaxBatchSize {
		return nil, NewError(ErrBatchSizeExceeded, fmt.Sprintf("invalid active count %d", activeCount))
	}
	orders := make([]SwapOrder, 0, activeCount)
	for i := 0; i < activeCount; i++ {
		orders = append(orders, slots[i].Order)
	}
	return &BatchSwapOrder{Orders: orders}, nil
}
