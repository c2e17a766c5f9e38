// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
	"github.com/project-illium/zswap/types"
)

const (
	DefaultMaxRetries      = 3
	DefaultInitialInterval = 250 * time.Millisecond
	DefaultMaxInterval     = 5 * time.Second
)

type clientConfig struct {
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

// ClientOption is configuration option function for the Client.
type ClientOption func(cfg *clientConfig) error

// MaxRetries is the number of times a failed read is retried. Zero
// disables retries.
func MaxRetries(n uint64) ClientOption {
	return func(cfg *clientConfig) error {
		cfg.maxRetries = n
		return nil
	}
}

// RetryInterval sets the exponential backoff bounds between retries.
func RetryInterval(initial, max time.Duration) ClientOption {
	return func(cfg *clientConfig) error {
		if initial <= 0 || max < initial {
			return errors.New("invalid retry interval")
		}
		cfg.initialInterval = initial
		cfg.maxInterval = max
		return nil
	}
}

// Client talks to a ledger over JSON-RPC. Reads are retried with
// exponential backoff when the transport fails. Transaction
// submission is never retried because a resend could be a replay.
type Client struct {
	rpc *gethrpc.Client
	cfg *clientConfig
}

// Dial connects to the ledger endpoint at url. Supported schemes are
// those of the go-ethereum rpc package (http, ws and ipc paths).
func Dial(ctx context.Context, url string, opts ...ClientOption) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewClient(c, opts...)
}

// NewClient wraps an existing rpc connection.
func NewClient(c *gethrpc.Client, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		maxRetries:      DefaultMaxRetries,
		initialInterval: DefaultInitialInterval,
		maxInterval:     DefaultMaxInterval,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			c.Close()
			return nil, err
		}
	}
	return &Client{rpc: c, cfg: cfg}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// BlockNumber returns the current block height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var height hexutil.Uint64
	if err := c.read(ctx, &height, "blockNumber"); err != nil {
		return 0, err
	}
	return uint64(height), nil
}

// GasPrice returns the current price of one unit of gas.
func (c *Client) GasPrice(ctx context.Context) (*uint256.Int, error) {
	var price hexutil.Big
	if err := c.read(ctx, &price, "gasPrice"); err != nil {
		return nil, err
	}
	ret, overflow := uint256.FromBig((*big.Int)(&price))
	if overflow {
		return nil, errors.New("gas price overflows 256 bits")
	}
	return ret, nil
}

// TransactionCount returns the next nonce for addr.
func (c *Client) TransactionCount(ctx context.Context, addr types.ID) (uint64, error) {
	var nonce hexutil.Uint64
	if err := c.read(ctx, &nonce, "getTransactionCount", addr); err != nil {
		return 0, err
	}
	return uint64(nonce), nil
}

// SendRawTransaction submits a signed transaction and returns its hash.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (types.ID, error) {
	var hash types.ID
	err := c.rpc.CallContext(ctx, &hash, method("sendRawTransaction"), hexutil.Bytes(raw))
	return hash, err
}

// TransactionReceipt returns the receipt for txHash or nil if the
// transaction has not been included yet.
func (c *Client) TransactionReceipt(ctx context.Context, txHash types.ID) (*types.Receipt, error) {
	var receipt *Receipt
	if err := c.read(ctx, &receipt, "getTransactionReceipt", txHash); err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, nil
	}
	return receipt.toReceipt(), nil
}

// Logs returns the logs matching filter.
func (c *Client) Logs(ctx context.Context, filter types.LogFilter) ([]types.Log, error) {
	var logs []Log
	if err := c.read(ctx, &logs, "getLogs", marshalFilter(&filter)); err != nil {
		return nil, err
	}
	return unmarshalLogs(logs), nil
}

// Call runs a read-only contract method and returns the encoded return
// value.
func (c *Client) Call(ctx context.Context, to types.ID, data []byte) ([]byte, error) {
	var ret hexutil.Bytes
	if err := c.read(ctx, &ret, "call", to, hexutil.Bytes(data)); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Client) read(ctx context.Context, result interface{}, name string, args ...interface{}) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.cfg.initialInterval
	eb.MaxInterval = c.cfg.maxInterval
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, c.cfg.maxRetries), ctx)
	return backoff.RetryNotify(func() error {
		err := c.rpc.CallContext(ctx, result, method(name), args...)
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, next time.Duration) {
		log.Debugw("Retrying ledger read", "method", name, "in", next, "error", err)
	})
}

func method(name string) string {
	return Namespace + "_" + name
}

// isTransient reports whether err is a transport failure worth
// retrying. Errors returned by the server itself are final.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr gethrpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError ||
			httpErr.StatusCode == http.StatusTooManyRequests
	}
	var rpcErr gethrpc.Error
	return !errors.As(err, &rpcErr)
}
