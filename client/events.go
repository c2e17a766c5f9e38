// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"encoding/binary"
	"errors"
	"sort"
	"sync"

	"github.com/ipfs/go-datastore"
	"github.com/project-illium/zswap/codec"
	"github.com/project-illium/zswap/metrics"
	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/scheduler"
	"github.com/project-illium/zswap/types"
	"go.opencensus.io/stats"
)

// EventHandler is called with each decoded contract event and the log
// it was decoded from. Handlers run on the polling goroutine and should
// return quickly.
type EventHandler func(ev codec.ContractEvent, l *types.Log)

// On registers handler for the named contract event and returns a
// function that removes it. Polling starts with the first handler and
// stops when the last one is removed.
//
// Delivery is at least once. The last processed block only advances
// after every fetch in a polling round succeeded, so a failed round is
// retried from the same block at the next interval.
func (c *Client) On(ctx context.Context, event string, handler EventHandler) (func(), error) {
	if _, ok := codec.Events[event]; !ok {
		return nil, types.NewError(types.ErrInvalidInput, "unknown event "+event)
	}
	if handler == nil {
		return nil, types.NewError(types.ErrInvalidInput, "handler must not be nil")
	}
	return c.events.subscribe(ctx, event, handler)
}

type eventPoller struct {
	client      *Client
	handlers    map[string]map[uint64]EventHandler
	nextID      uint64
	cursor      uint64
	initialized bool
	closed      bool
	task        *scheduler.Task
	mtx         sync.Mutex
}

func newEventPoller(c *Client) *eventPoller {
	return &eventPoller{
		client:   c,
		handlers: make(map[string]map[uint64]EventHandler),
	}
}

func (p *eventPoller) subscribe(ctx context.Context, event string, handler EventHandler) (func(), error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return nil, types.NewError(types.ErrInvalidInput, "client is closed")
	}
	if p.task == nil {
		if !p.initialized {
			cursor, err := p.loadCursor(ctx)
			if err != nil {
				return nil, err
			}
			p.cursor = cursor
			p.initialized = true
		}
		p.task = scheduler.Every(p.client.cfg.clock, p.client.cfg.eventPollInterval, p.poll)
		log.Debugw("Event polling started", "from block", p.cursor+1)
	}

	id := p.nextID
	p.nextID++
	if p.handlers[event] == nil {
		p.handlers[event] = make(map[uint64]EventHandler)
	}
	p.handlers[event][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() { p.unsubscribe(event, id) })
	}, nil
}

func (p *eventPoller) unsubscribe(event string, id uint64) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	delete(p.handlers[event], id)
	if len(p.handlers[event]) == 0 {
		delete(p.handlers, event)
	}
	if len(p.handlers) == 0 && p.task != nil {
		p.task.Stop()
		p.task = nil
		log.Debugw("Event polling stopped")
	}
}

func (p *eventPoller) stop() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.closed = true
	if p.task != nil {
		p.task.Stop()
		p.task = nil
	}
}

// handlersFor returns the handlers for event in registration order.
func (p *eventPoller) handlersFor(event string) []EventHandler {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	ids := make([]uint64, 0, len(p.handlers[event]))
	for id := range p.handlers[event] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	hs := make([]EventHandler, len(ids))
	for i, id := range ids {
		hs[i] = p.handlers[event][id]
	}
	return hs
}

func (p *eventPoller) poll() {
	var (
		ctx = p.client.ctx
		rpc = p.client.cfg.rpc
	)

	p.mtx.Lock()
	from := p.cursor + 1
	topics := make([]types.ID, 0, len(p.handlers))
	for name := range p.handlers {
		topics = append(topics, codec.Events[name].Topic())
	}
	p.mtx.Unlock()
	if len(topics) == 0 {
		return
	}

	height, err := rpc.BlockNumber(ctx)
	if err != nil {
		log.Warnw("Event poll failed to fetch block height", "error", err)
		return
	}
	if height < from {
		return
	}

	var logs []types.Log
	for _, topic := range topics {
		fetched, err := rpc.Logs(ctx, types.LogFilter{
			Address:   p.client.contract,
			FromBlock: from,
			ToBlock:   height,
			Topics:    []types.ID{topic},
		})
		if err != nil {
			log.Warnw("Event poll failed to fetch logs", "from", from, "to", height, "error", err)
			return
		}
		logs = append(logs, fetched...)
	}
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	var delivered int64
	for i := range logs {
		ev, err := codec.DecodeEvent(&logs[i])
		if err != nil {
			log.Warnw("Skipping undecodable log", "tx", logs[i].TxHash, "error", err)
			continue
		}
		for _, handler := range p.handlersFor(ev.EventName()) {
			handler(ev, &logs[i])
			delivered++
		}
	}
	if delivered > 0 {
		stats.Record(ctx, metrics.EventsDelivered.M(delivered))
	}

	p.mtx.Lock()
	if height > p.cursor {
		p.cursor = height
	}
	p.mtx.Unlock()
	if err := p.saveCursor(ctx, height); err != nil {
		log.Errorw("Failed to persist event cursor", "error", err)
	}
}

// loadCursor returns the last processed block. A fresh client starts
// at the current height.
func (p *eventPoller) loadCursor(ctx context.Context) (uint64, error) {
	b, err := p.client.cfg.datastore.Get(ctx, datastore.NewKey(repo.EventCursorKey))
	if err == nil && len(b) == 8 {
		return binary.BigEndian.Uint64(b), nil
	}
	if err != nil && !errors.Is(err, datastore.ErrNotFound) {
		return 0, err
	}
	height, err := p.client.cfg.rpc.BlockNumber(ctx)
	if err != nil {
		return 0, networkError("block height lookup failed", err)
	}
	return height, nil
}

func (p *eventPoller) saveCursor(ctx context.Context, height uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, height)
	return p.client.cfg.datastore.Put(ctx, datastore.NewKey(repo.EventCursorKey), b)
}
