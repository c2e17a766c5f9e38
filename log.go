// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"github.com/project-illium/zswap/harness"
	"github.com/project-illium/zswap/repo"
	"github.com/project-illium/zswap/rpc"
	"go.uber.org/zap"
)

func setupLogging(logDir, level string, production bool) error {
	logger, err := repo.BuildLogger(logDir, level, production)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)

	log = zap.S()
	repo.UpdateLogger()
	rpc.UpdateLogger()
	harness.UpdateLogger()
	return nil
}
