// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/params"
	"github.com/stretchr/testify/assert"
)

func testOrder(i uint64) SwapOrder {
	return SwapOrder{
		Input:           Asset{TokenID: ID{0x01}, Amount: WitnessFromUint64(777001 + i)},
		Output:          Asset{TokenID: ID{0x02}, Amount: WitnessFromUint64(555001 + i)},
		MinOutputAmount: WitnessFromUint64(555001 + i),
		Deadline:        10,
	}
}

func TestBatchSlots(t *testing.T) {
	for n := 0; n <= params.MaxBatchSize+1; n++ {
		orders := make([]SwapOrder, 0, n)
		for i := 0; i < n; i++ {
			orders = append(orders, testOrder(uint64(i)))
		}
		b := NewBatchSwapOrder(orders...)
		slots, err := b.Slots()
		if n > params.MaxBatchSize {
			assert.True(t, ErrorIs(err, ErrBatchSizeExceeded))
			continue
		}
		assert.NoError(t, err)
		for i, s := range slots {
			assert.Equal(t, i < n, s.Active)
			if !s.Active {
				assert.Equal(t, SwapOrder{}, s.Order)
			}
		}
		b2, err := BatchFromSlots(slots, n)
		assert.NoError(t, err)
		assert.Equal(t, n, b2.ActiveCount())
		for i := range orders {
			assert.Equal(t, orders[i], b2.Orders[i])
		}
	}
}

func TestBatchFromSlotsInvalidCount(t *testing.T) {
	var slots [params.MaxBatchSize]OrderSlot
	_, err := BatchFromSlots(slots, params.MaxBatchSize+1)
	assert.True(t, ErrorIs(err, ErrBatchSizeExceeded))
	_, err = BatchFromSlots(slots, -1)
	assert.Error(t, err)
}

func TestWitnessRedaction(t *testing.T) {
	w := NewWitness(uint256.NewInt(987654321))
	assert.True(t, w.IsPrivate())
	assert.Equal(t, uint64(987654321), w.Value().Uint64())

	for _, s := range []string{
		fmt.Sprint(w),
		fmt.Sprintf("%v", w),
		fmt.Sprintf("%+v", w),
		fmt.Sprintf("%#v", w),
		fmt.Sprintf("%d", w),
		fmt.Sprintf("%+v", testOrder(0)),
	} {
		assert.NotContains(t, s, "987654321")
		assert.NotContains(t, s, "777001")
		assert.NotContains(t, s, "555001")
		assert.Contains(t, s, "<witness>")
	}

	out, err := json.Marshal(testOrder(0))
	assert.NoError(t, err)
	assert.NotContains(t, string(out), "777001")
	assert.NotContains(t, string(out), "555001")
}

func TestWitnessValueIsCopy(t *testing.T) {
	w := WitnessFromUint64(5)
	v := w.Value()
	v.SetUint64(6)
	assert.Equal(t, uint64(5), w.Value().Uint64())
	assert.True(t, w.Equal(WitnessFromUint64(5)))
	assert.True(t, WitnessFromUint64(0).IsZero())
	assert.True(t, NewWitness(nil).IsZero())
}
