// Copyright (c) 2024 Project Illium
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package repo

import (
	"bufio"
	"bytes"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/project-illium/zswap/params"
)

//go:embed sample-zswap.conf
var configFS embed.FS

const (
	DefaultLogFilename    = "zswap.log"
	DefaultConfigFilename = "zswap.conf"

	DefaultConfirmationTimeout = time.Minute
	DefaultPollInterval        = time.Second
	DefaultEventPollInterval   = 5 * time.Second
	DefaultStateCacheTTL       = 30 * time.Second
	DefaultRPCRetries          = 3

	DefaultDevnetGasPrice   = 10
	DefaultDevnetFundAmount = "1000"
)

var (
	DefaultHomeDir    = btcutil.AppDataDir("zswap", false)
	DefaultConfigFile = filepath.Join(DefaultHomeDir, DefaultConfigFilename)
)

// Config defines the configuration options for the client.
//
// See LoadConfigFile and Finalize for details on the configuration
// load process.
type Config struct {
	ShowVersion     bool   `short:"v" long:"version" description:"Display version information and exit"`
	ConfigFile      string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir         string `short:"d" long:"datadir" description:"Directory to store data"`
	LogDir          string `long:"logdir" description:"Directory to log output"`
	LogLevel        string `short:"l" long:"loglevel" description:"Set the logging level [debug, info, warning, error]." default:"info"`
	Testnet         bool   `short:"t" long:"testnet" description:"Use the test network"`
	Regtest         bool   `short:"r" long:"regtest" description:"Use regression testing mode"`
	RPCEndpoint     string `long:"rpc" description:"The ledger JSON-RPC endpoint. Defaults to the network's endpoint."`
	ContractAddress string `long:"contract" description:"Override the swap contract address (hex)"`

	Client ClientOptions `group:"Client Options"`
	Devnet DevnetOptions `group:"Devnet Options"`
}

// ClientOptions tune the transaction pipeline.
type ClientOptions struct {
	ConfirmationTimeout time.Duration `long:"confirmtimeout" description:"How long to wait for a transaction receipt"`
	PollInterval        time.Duration `long:"pollinterval" description:"How often to poll for a transaction receipt"`
	EventPollInterval   time.Duration `long:"eventpollinterval" description:"How often to poll for contract events"`
	StateCacheTTL       time.Duration `long:"statettl" description:"How long the contract state is cached"`
	RPCRetries          uint64        `long:"rpcretries" description:"How many times idempotent RPC reads are retried"`
}

// DevnetOptions configure the local ledger served by zswapd.
type DevnetOptions struct {
	Listen        string        `long:"listen" description:"Address the devnet JSON-RPC server listens on. Defaults to the host and port of the network's endpoint."`
	Developer     string        `long:"developer" description:"Account allowed to pause the contract (hex)"`
	GasPrice      uint64        `long:"gasprice" description:"Gas price charged by the devnet ledger"`
	BlockInterval time.Duration `long:"blockinterval" description:"Mine pending transactions on this interval instead of immediately"`
	Fund          []string      `long:"fund" description:"Account to credit with fundamount NIGHT and DUST at startup (hex, may be repeated)"`
	FundAmount    string        `long:"fundamount" description:"Amount of each token, in NIGHT, credited to funded accounts"`
}

// DefaultConfig returns a config with sane settings for mainnet.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultHomeDir,
		ConfigFile: DefaultConfigFile,
		LogLevel:   "info",
	}
}

// LoadConfigFile reads the ini formatted config file into cfg. If the
// file does not exist a default one is created from the embedded sample
// and nothing is loaded.
func LoadConfigFile(cfg *Config, configFile string) error {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfigFile(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating a "+
				"default config file: %v\n", err)
		}
		return nil
	}

	parser := flags.NewParser(cfg, flags.IgnoreUnknown)
	err := flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}
	return nil
}

// Finalize validates the combined file and command line settings and
// fills in the network dependent defaults.
func (cfg *Config) Finalize() error {
	if cfg.Testnet && cfg.Regtest {
		return errors.New("invalid combination of testnet and regtest")
	}

	netStr := cfg.NetworkParams().Name
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultHomeDir
	}
	if cfg.LogDir == "" {
		cfg.LogDir = CleanAndExpandPath(path.Join(cfg.DataDir, "logs", netStr))
	}
	cfg.DataDir = CleanAndExpandPath(path.Join(cfg.DataDir, netStr))

	if cfg.RPCEndpoint == "" {
		cfg.RPCEndpoint = cfg.NetworkParams().DefaultRPCEndpoint
	}
	if cfg.ContractAddress != "" {
		if _, err := hexID(cfg.ContractAddress); err != nil {
			return fmt.Errorf("invalid contract address: %w", err)
		}
	}

	if cfg.Client.ConfirmationTimeout == 0 {
		cfg.Client.ConfirmationTimeout = DefaultConfirmationTimeout
	}
	if cfg.Client.PollInterval == 0 {
		cfg.Client.PollInterval = DefaultPollInterval
	}
	if cfg.Client.EventPollInterval == 0 {
		cfg.Client.EventPollInterval = DefaultEventPollInterval
	}
	if cfg.Client.StateCacheTTL == 0 {
		cfg.Client.StateCacheTTL = DefaultStateCacheTTL
	}
	if cfg.Client.RPCRetries == 0 {
		cfg.Client.RPCRetries = DefaultRPCRetries
	}

	if cfg.Devnet.Listen == "" {
		u, err := url.Parse(cfg.RPCEndpoint)
		if err != nil || u.Host == "" {
			return fmt.Errorf("cannot derive listen address from rpc endpoint %q", cfg.RPCEndpoint)
		}
		cfg.Devnet.Listen = u.Host
	}
	if cfg.Devnet.GasPrice == 0 {
		cfg.Devnet.GasPrice = DefaultDevnetGasPrice
	}
	if cfg.Devnet.FundAmount == "" {
		cfg.Devnet.FundAmount = DefaultDevnetFundAmount
	}
	if cfg.Devnet.Developer != "" {
		if _, err := hexID(cfg.Devnet.Developer); err != nil {
			return fmt.Errorf("invalid developer address: %w", err)
		}
	}
	for _, account := range cfg.Devnet.Fund {
		if _, err := hexID(account); err != nil {
			return fmt.Errorf("invalid fund address %s: %w", account, err)
		}
	}
	return nil
}

// DevnetAccounts returns the developer account, which is zero if unset,
// and the accounts to fund. Finalize must have succeeded.
func (cfg *Config) DevnetAccounts() (developer [32]byte, fund [][32]byte) {
	if cfg.Devnet.Developer != "" {
		developer, _ = hexID(cfg.Devnet.Developer)
	}
	for _, account := range cfg.Devnet.Fund {
		id, _ := hexID(account)
		fund = append(fund, id)
	}
	return developer, fund
}

// NetworkParams returns the parameters of the selected network.
func (cfg *Config) NetworkParams() *params.NetworkParams {
	switch {
	case cfg.Testnet:
		return &params.TestnetParams
	case cfg.Regtest:
		return &params.RegtestParams
	default:
		return &params.MainnetParams
	}
}

// Contract returns the swap contract address, either the override or
// the network default.
func (cfg *Config) Contract() [32]byte {
	if cfg.ContractAddress != "" {
		if id, err := hexID(cfg.ContractAddress); err == nil {
			return id
		}
	}
	return cfg.NetworkParams().ContractAddress
}

func hexID(s string) ([32]byte, error) {
	var id [32]byte
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("expected %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// createDefaultConfigFile copies the sample-zswap.conf content to the
// given destination path.
func createDefaultConfigFile(destinationPath string) error {
	// Create the destination directory if it does not exists
	err := os.MkdirAll(filepath.Dir(destinationPath), 0700)
	if err != nil {
		return err
	}

	sampleBytes, err := fs.ReadFile(configFS, "sample-zswap.conf")
	if err != nil {
		return err
	}
	src := bytes.NewReader(sampleBytes)

	dest, err := os.OpenFile(destinationPath,
		os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer dest.Close()

	reader := bufio.NewReader(src)
	for err != io.EOF {
		var line string
		line, err = reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}

		if _, err := dest.WriteString(line); err != nil {
			return err
		}
	}

	return nil
}

// CleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func CleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(DefaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
