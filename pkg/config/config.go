// Package config defines the runtime configuration for the SDK: the home
// network and any remote networks used by cross-chain gates, the per-network
// contract address table, RPC timeouts and retry policy, cache TTL and the
// signer key. It also provides validation, defaulting and YAML loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Config holds all SDK settings required to initialize chain clients, the
// membership resolver and its cache. Use Validate to fill implicit defaults
// and to check for required fields.
type Config struct {
	// HomeChainID selects the network where the club contracts live.
	// Defaults to the first entry of Networks.
	HomeChainID uint64 `json:"home_chain_id" yaml:"home_chain_id"`
	// Networks lists every network the SDK talks to: the home network and any
	// network referenced by cross-chain token gates (at least one required).
	Networks []NetworkConfig `json:"networks" yaml:"networks"`
	// PrivateKey is the hex-encoded ECDSA private key used for purchases and
	// admin gate writes (optional for read-only usage).
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// MaxInFlight bounds concurrent RPC calls per endpoint. Default: 8.
	MaxInFlight int `json:"max_in_flight" yaml:"max_in_flight"`
	// FanOut bounds concurrent mechanism sub-queries per resolution. Default: 4.
	FanOut int `json:"fan_out" yaml:"fan_out"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
	// Retry configures the retry policy for read-only calls.
	Retry Retry `json:"retry" yaml:"retry"`
	// Cache configures the membership cache.
	Cache Cache `json:"cache" yaml:"cache"`
}

// NetworkConfig describes one network: its identity, endpoint and the
// addresses of the logical contracts deployed there.
type NetworkConfig struct {
	Network `yaml:",inline"`
	// RPCAddr is the JSON-RPC (http/https/ws/wss) endpoint URL (required).
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr"`
	// ExplorerURL is the block explorer base URL, informational only.
	ExplorerURL string `json:"explorer_url" yaml:"explorer_url"`
	// Contracts maps logical contract names (see package registry) to hex
	// addresses.
	Contracts map[string]string `json:"contracts" yaml:"contracts"`
}

// Network identifies a blockchain network. ChainID is used for EIP-155
// signing and for cross-chain gate routing; Name is informational.
type Network struct {
	ChainID uint64 `json:"chain_id" yaml:"chain_id"`
	Name    string `json:"network_name" yaml:"network_name"`
}

// Sepolia is a predefined Network for Ethereum Sepolia testnet.
var Sepolia = Network{
	ChainID: 11155111,
	Name:    "sepolia",
}

// Main is a predefined Network for Ethereum mainnet.
var Main = Network{
	ChainID: 1,
	Name:    "main",
}

// Base is a predefined Network for Base mainnet.
var Base = Network{
	ChainID: 8453,
	Name:    "base",
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration `json:"dial" yaml:"dial"`                 // RPC dial/connect
	ChainRead   time.Duration `json:"chain_read" yaml:"chain_read"`     // eth_call, per attempt
	ChainSubmit time.Duration `json:"chain_submit" yaml:"chain_submit"` // send tx
	ReceiptWait time.Duration `json:"receipt_wait" yaml:"receipt_wait"` // wait tx
	Resolve     time.Duration `json:"resolve" yaml:"resolve"`           // one membership resolution
}

// Retry controls how read-only calls are retried on timeout or transport
// failure. State-mutating calls are never retried.
type Retry struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero means the default (2); a negative value disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
	// BaseBackoff is the first backoff delay; it doubles on every retry.
	BaseBackoff time.Duration `json:"base_backoff" yaml:"base_backoff"`
}

// Cache controls the membership cache.
type Cache struct {
	TTL             time.Duration `json:"ttl" yaml:"ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
}

// Validate normalizes the configuration by applying implicit defaults and
// verifies that every network has a chain ID and an RPC address, chain IDs
// are unique, contract addresses are well-formed and the home network is
// present.
func (c *Config) Validate() error {
	if len(c.Networks) == 0 {
		return errors.New("at least one network is required")
	}

	seen := make(map[uint64]struct{}, len(c.Networks))
	for _, n := range c.Networks {
		if n.ChainID == 0 {
			return fmt.Errorf("network %q: chain ID is required", n.Name)
		}
		if _, dup := seen[n.ChainID]; dup {
			return fmt.Errorf("network %d: duplicate chain ID", n.ChainID)
		}
		seen[n.ChainID] = struct{}{}
		if n.RPCAddr == "" {
			return fmt.Errorf("network %d: RPC address is required", n.ChainID)
		}
		for name, addr := range n.Contracts {
			if !common.IsHexAddress(addr) {
				return fmt.Errorf("network %d: contract %s: invalid address %q", n.ChainID, name, addr)
			}
		}
	}

	if c.HomeChainID == 0 {
		c.HomeChainID = c.Networks[0].ChainID
	}
	if _, ok := seen[c.HomeChainID]; !ok {
		return fmt.Errorf("home network %d is not configured", c.HomeChainID)
	}

	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 8
	}
	if c.FanOut <= 0 {
		c.FanOut = 4
	}

	c.Timeouts = c.Timeouts.WithDefaults()
	c.Retry = c.Retry.WithDefaults()
	c.Cache = c.Cache.WithDefaults()

	return nil
}

// Home returns the configuration of the home network. Call after Validate.
func (c *Config) Home() (NetworkConfig, bool) {
	return c.NetworkByID(c.HomeChainID)
}

// NetworkByID returns the network with the given chain ID.
func (c *Config) NetworkByID(chainID uint64) (NetworkConfig, bool) {
	for _, n := range c.Networks {
		if n.ChainID == chainID {
			return n, true
		}
	}
	return NetworkConfig{}, false
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   10s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
//	Resolve:     15s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 10 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	if tt.Resolve == 0 {
		tt.Resolve = 15 * time.Second
	}
	return tt
}

// WithDefaults returns a copy of r with MaxRetries defaulting to 2 and
// BaseBackoff to 500ms. A negative MaxRetries is kept so that applying
// defaults again still reads it as disabled; use Retries for the count.
func (r Retry) WithDefaults() Retry {
	rr := r
	if rr.MaxRetries == 0 {
		rr.MaxRetries = 2
	}
	if rr.BaseBackoff == 0 {
		rr.BaseBackoff = 500 * time.Millisecond
	}
	return rr
}

// Retries returns the number of retries after the first attempt, zero when
// retries are disabled.
func (r Retry) Retries() int {
	return max(r.MaxRetries, 0)
}

// WithDefaults returns a copy of c with TTL defaulting to 30s and
// CleanupInterval to 1m.
func (c Cache) WithDefaults() Cache {
	cc := c
	if cc.TTL == 0 {
		cc.TTL = 30 * time.Second
	}
	if cc.CleanupInterval == 0 {
		cc.CleanupInterval = time.Minute
	}
	return cc
}

// LoadFile reads a YAML configuration file and validates it.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML configuration document and validates it.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
