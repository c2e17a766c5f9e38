// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/metrics"
	"github.com/project-illium/zswap/scheduler"
	"github.com/project-illium/zswap/types"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
)

func (c *Client) signerLock(signer types.ID) *sync.Mutex {
	c.signerMtx.Lock()
	defer c.signerMtx.Unlock()
	mtx, ok := c.signers[signer]
	if !ok {
		mtx = new(sync.Mutex)
		c.signers[signer] = mtx
	}
	return mtx
}

// send fetches a fresh nonce, signs and submits the call. The three
// steps run under the signer's lock so concurrent operations never
// sign with the same nonce.
func (c *Client) send(ctx context.Context, method string, data []byte, gas uint64) (types.ID, error) {
	lock := c.signerLock(c.owner)
	lock.Lock()
	defer lock.Unlock()

	nonce, err := c.cfg.rpc.TransactionCount(ctx, c.owner)
	if err != nil {
		return types.ID{}, networkError("nonce lookup failed", err)
	}
	tx := &types.UnsignedTransaction{
		To:       c.contract,
		Data:     data,
		Value:    new(uint256.Int),
		Nonce:    nonce,
		GasLimit: GasLimitWithMargin(gas),
	}
	raw, err := c.cfg.wallet.SignTransaction(ctx, tx)
	if err != nil {
		return types.ID{}, networkError("signing failed", err)
	}
	log.Debugw("Transaction signed", "method", method, "nonce", nonce)

	hash, err := c.cfg.rpc.SendRawTransaction(ctx, raw)
	if err != nil {
		return types.ID{}, networkError("transaction submission failed", err)
	}
	mctx, _ := tag.New(ctx, tag.Upsert(metrics.KeyMethod, method))
	stats.Record(mctx, metrics.TransactionsSent.M(1))
	log.Infow("Transaction submitted", "method", method, "tx", hash, "nonce", nonce)
	return hash, nil
}

// confirm polls for the receipt of txHash until it is included or the
// confirmation timeout passes. Cancelling ctx stops the wait but the
// transaction stays submitted.
func (c *Client) confirm(ctx context.Context, method string, txHash types.ID) (*types.Receipt, error) {
	start := c.cfg.clock.Now()
	wctx, cancel := c.cfg.clock.WithTimeout(ctx, c.cfg.confirmationTimeout)
	defer cancel()

	var (
		receipt *types.Receipt
		lastErr error
	)
	err := scheduler.PollUntil(wctx, c.cfg.clock, c.cfg.receiptPollInterval, func(ctx context.Context) (bool, error) {
		r, err := c.cfg.rpc.TransactionReceipt(ctx, txHash)
		if err != nil {
			lastErr = err
			log.Debugw("Receipt lookup failed", "tx", txHash, "error", err)
			return false, nil
		}
		if r == nil {
			return false, nil
		}
		receipt = r
		return true, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, types.WrapError(types.ErrNetwork, "confirmation wait cancelled for "+txHash.String(), ctx.Err())
		}
		log.Warnw("Transaction not confirmed", "method", method, "tx", txHash, "last error", lastErr)
		return nil, types.WrapError(types.ErrNetwork, "transaction "+txHash.String()+" not confirmed", ErrConfirmationTimeout)
	}

	mctx, _ := tag.New(ctx, tag.Upsert(metrics.KeyMethod, method))
	stats.Record(mctx, metrics.ConfirmationLatency.M(float64(c.cfg.clock.Since(start))/float64(time.Millisecond)))

	if !receipt.Status {
		log.Warnw("Transaction reverted", "method", method, "tx", txHash, "block", receipt.BlockNumber)
		return receipt, types.NewError(types.ErrTransactionReverted, "transaction "+txHash.String()+" reverted")
	}
	log.Infow("Transaction confirmed", "method", method, "tx", txHash, "block", receipt.BlockNumber)
	return receipt, nil
}

// recordFailure counts a failed operation by error code.
func recordFailure(ctx context.Context, method string, err error) {
	code := "unknown"
	var e types.Error
	if errors.As(err, &e) {
		code = e.Code.String()
	}
	mctx, _ := tag.New(ctx,
		tag.Upsert(metrics.KeyMethod, method),
		tag.Upsert(metrics.KeyErrorCode, code),
	)
	stats.Record(mctx, metrics.TransactionErrors.M(1))
	log.Debugw("Operation failed", "method", method, "error", err)
}
