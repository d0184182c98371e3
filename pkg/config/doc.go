// Package config provides configuration management for the clubs SDK.
//
// This package defines the Config structure that controls all SDK behavior:
// networks and their RPC endpoints, the per-network contract address table,
// timeouts, the read retry policy, cache TTL and the optional signer key.
//
// # Basic Configuration
//
// The minimum required configuration is one network with an RPC endpoint:
//
//	cfg := &config.Config{
//		Networks: []config.NetworkConfig{{
//			Network: config.Sepolia,
//			RPCAddr: "https://sepolia.infura.io/v3/YOUR_PROJECT_ID",
//			Contracts: map[string]string{
//				"PermanentMembership": "0x...",
//				"TemporaryMembership": "0x...",
//				"TokenGate":           "0x...",
//			},
//		}},
//	}
//
// The first network is the home network unless HomeChainID says otherwise.
// Additional networks are only dialed for cross-chain token gates and need
// no contract addresses.
//
// # YAML
//
// LoadFile reads the same structure from YAML:
//
//	home_chain_id: 11155111
//	networks:
//	  - chain_id: 11155111
//	    network_name: sepolia
//	    rpc_addr: https://sepolia.infura.io/v3/YOUR_PROJECT_ID
//	    contracts:
//	      TemporaryMembership: "0x..."
//	cache:
//	  ttl: 30s
//
// # Defaults
//
// Validate fills zero values:
//
//	Timeouts.ChainRead   10s  (per attempt)
//	Timeouts.ChainSubmit 25s
//	Timeouts.ReceiptWait 90s
//	Timeouts.Resolve     15s
//	Retry.MaxRetries     2    (reads only; negative disables)
//	Retry.BaseBackoff    500ms, doubling
//	Cache.TTL            30s
//	MaxInFlight          8
//	FanOut               4
//
// # Thread Safety
//
// Config instances should be created once and not modified after passing to
// sdk.NewSDK. The Config is read-only during SDK operations.
package config
