// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"github.com/project-illium/zswap/client"
	"github.com/project-illium/zswap/notestore"
	"github.com/project-illium/zswap/proofgen"
	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/rpc"
	"go.uber.org/zap"
)

func setupLogging(logDir, level string) error {
	logger, err := repo.BuildLogger(logDir, level, false)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)

	repo.UpdateLogger()
	rpc.UpdateLogger()
	client.UpdateLogger()
	proofgen.UpdateLogger()
	notestore.UpdateLogger()
	return nil
}
