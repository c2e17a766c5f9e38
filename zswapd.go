// Copyright (c) 2024 The illium developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/project-illium/zswap/repo"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := setupLogging(cfg.LogDir, cfg.LogLevel, !cfg.NetworkParams().AllowMockProofs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Build and start the server.
	server, err := BuildServer(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Listen for an exit signal and close.
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	for sig := range c {
		if sig == syscall.SIGINT || sig == syscall.SIGTERM {
			log.Info("zswapd gracefully shutting down")
			if err := server.Close(); err != nil {
				log.Errorf("Shutdown error: %s", err)
			}
			os.Exit(1)
		}
	}
}

// loadConfig builds the config in three steps:
// 1. Start with a config populated with default values.
// 2. Override the default values with any provided config file options.
// 3. Override the first two with any provided command line options.
func loadConfig() (*repo.Config, error) {
	cfg := repo.DefaultConfig()

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified. Errors aside from the help
	// message are caught by the final parse below.
	preCfg := cfg
	if _, err := flags.NewParser(&preCfg, flags.HelpFlag|flags.IgnoreUnknown).Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Println(err)
			return nil, err
		}
	}
	if preCfg.ShowVersion {
		fmt.Println("zswapd version", repo.VersionString())
		os.Exit(0)
	}
	configFile := cfg.ConfigFile
	if preCfg.ConfigFile != "" && preCfg.ConfigFile != cfg.ConfigFile {
		configFile = repo.CleanAndExpandPath(preCfg.ConfigFile)
	} else if preCfg.DataDir != cfg.DataDir {
		configFile = filepath.Join(repo.CleanAndExpandPath(preCfg.DataDir), repo.DefaultConfigFilename)
	}
	if err := repo.LoadConfigFile(&cfg, configFile); err != nil {
		return nil, err
	}

	// Reparse command-line arguments to override config file settings.
	parser := flags.NewNamedParser("zswapd", flags.Default)
	if _, err := parser.AddGroup("Devnet Options", "Configuration options for the devnet ledger", &cfg); err != nil {
		return nil, err
	}
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
