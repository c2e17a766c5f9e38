// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package metrics defines the opencensus measures recorded by the proof
// generator and the transaction pipeline along with views that
// aggregate them. Nothing is exported until an application registers
// DefaultViews with view.Register.
package metrics

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	defaultMillisecondsDistribution = view.Distribution(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000)
)

// Keys
var (
	KeyCircuit, _   = tag.NewKey("circuit")
	KeyMethod, _    = tag.NewKey("method")
	KeyCache, _     = tag.NewKey("cache")
	KeyErrorCode, _ = tag.NewKey("error_code")
)

// Measures
var (
	ProofLatency        = stats.Float64("zswap/proof_latency", "Time taken to generate a proof", stats.UnitMilliseconds)
	ProofErrors         = stats.Int64("zswap/proof_errors", "Proof generations that failed", stats.UnitDimensionless)
	CacheHits           = stats.Int64("zswap/cache_hits", "Proof or commitment cache hits", stats.UnitDimensionless)
	CacheMisses         = stats.Int64("zswap/cache_misses", "Proof or commitment cache misses", stats.UnitDimensionless)
	TransactionsSent    = stats.Int64("zswap/transactions_sent", "Transactions submitted to the ledger", stats.UnitDimensionless)
	TransactionErrors   = stats.Int64("zswap/transaction_errors", "Operations that failed", stats.UnitDimensionless)
	ConfirmationLatency = stats.Float64("zswap/confirmation_latency", "Time between submission and receipt", stats.UnitMilliseconds)
	EventsDelivered     = stats.Int64("zswap/events_delivered", "Contract events delivered to listeners", stats.UnitDimensionless)
)

// Views
var (
	ProofLatencyView = &view.View{
		Measure:     ProofLatency,
		TagKeys:     []tag.Key{KeyCircuit},
		Aggregation: defaultMillisecondsDistribution,
	}
	ProofErrorsView = &view.View{
		Measure:     ProofErrors,
		TagKeys:     []tag.Key{KeyCircuit},
		Aggregation: view.Count(),
	}
	CacheHitsView = &view.View{
		Measure:     CacheHits,
		TagKeys:     []tag.Key{KeyCache},
		Aggregation: view.Count(),
	}
	CacheMissesView = &view.View{
		Measure:     CacheMisses,
		TagKeys:     []tag.Key{KeyCache},
		Aggregation: view.Count(),
	}
	TransactionsSentView = &view.View{
		Measure:     TransactionsSent,
		TagKeys:     []tag.Key{KeyMethod},
		Aggregation: view.Count(),
	}
	TransactionErrorsView = &view.View{
		Measure:     TransactionErrors,
		TagKeys:     []tag.Key{KeyMethod, KeyErrorCode},
		Aggregation: view.Count(),
	}
	ConfirmationLatencyView = &view.View{
		Measure:     ConfirmationLatency,
		TagKeys:     []tag.Key{KeyMethod},
		Aggregation: defaultMillisecondsDistribution,
	}
	EventsDeliveredView = &view.View{
		Measure:     EventsDelivered,
		TagKeys:     []tag.Key{KeyMethod},
		Aggregation: view.Count(),
	}
)

// DefaultViews with all views in it.
var DefaultViews = []*view.View{
	ProofLatencyView,
	ProofErrorsView,
	CacheHitsView,
	CacheMissesView,
	TransactionsSentView,
	TransactionErrorsView,
	ConfirmationLatencyView,
	EventsDeliveredView,
}
