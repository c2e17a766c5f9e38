// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package rpc serves a ledger over JSON-RPC and provides the client
// used to talk to it.
package rpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// ServerConfig holds the objects needed by the Server.
type ServerConfig struct {
	// Backend is the ledger being served. It is required.
	Backend Backend

	// HTTPServer is optional. If nil one is created with sane
	// timeouts.
	HTTPServer *http.Server
}

// Server is the JSON-RPC server. It is an http.Handler and can also be
// bound to a listener with Serve.
type Server struct {
	rpc        *gethrpc.Server
	httpServer *http.Server

	wg sync.WaitGroup
}

// NewServer returns a new Server which has not yet been started.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil || cfg.Backend == nil {
		return nil, errors.New("rpc server backend is required")
	}
	srv := gethrpc.NewServer()
	if err := srv.RegisterName(Namespace, &LedgerService{backend: cfg.Backend}); err != nil {
		return nil, err
	}
	httpServer := cfg.HTTPServer
	if httpServer == nil {
		httpServer = &http.Server{
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		}
	}
	httpServer.Handler = srv
	return &Server{
		rpc:        srv,
		httpServer: httpServer,
	}, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.rpc.ServeHTTP(w, r)
}

// Serve accepts connections on l in a new goroutine.
func (s *Server) Serve(l net.Listener) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Infow("RPC server listening", "addr", l.Addr().String())
		if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("RPC server stopped", "error", err)
		}
	}()
}

// DialInProc returns a client connected to the server without going
// through the network.
func (s *Server) DialInProc(opts ...ClientOption) (*Client, error) {
	return NewClient(gethrpc.DialInProc(s.rpc), opts...)
}

// Close shuts down the http server and stops serving requests.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)
	s.rpc.Stop()
	s.wg.Wait()
	return err
}
