// Package registry resolves logical contract names to deployed contracts.
// The address table is loaded once from configuration; ABI fragments are
// built in. A Registry is read-only after New and safe for concurrent use
// without locking.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/clubs-network/clubs-sdk-go/pkg/config"
	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrUnknownContract matches every UnknownContractError.
var ErrUnknownContract = errors.New("unknown contract")

// UnknownContractError is returned when a logical contract is not deployed
// (or not configured) on the requested network.
type UnknownContractError struct {
	Name    string
	ChainID uint64
}

func (e *UnknownContractError) Error() string {
	return fmt.Sprintf("unknown contract %q on chain %d", e.Name, e.ChainID)
}

// Is makes errors.Is(err, ErrUnknownContract) hold.
func (e *UnknownContractError) Is(target error) bool {
	return target == ErrUnknownContract
}

// builtin is a parsed ABI together with its method signatures in
// declaration order.
type builtin struct {
	abi      abi.ABI
	fragment []string
}

var builtins = mustParseBuiltins()

func mustParseBuiltins() map[string]builtin {
	out := make(map[string]builtin, len(builtinABIs))
	for name, raw := range builtinABIs {
		b, err := parseFragment(raw)
		if err != nil {
			panic(fmt.Sprintf("registry: builtin ABI %s: %v", name, err))
		}
		out[name] = b
	}
	return out
}

// parseFragment parses a JSON ABI and records method signatures in the
// order they are declared; abi.ABI itself keeps methods in a map.
func parseFragment(raw string) (builtin, error) {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return builtin{}, err
	}
	var entries []struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return builtin{}, err
	}
	fragment := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type != "function" {
			continue
		}
		if m, ok := parsed.Methods[e.Name]; ok {
			fragment = append(fragment, m.Sig)
		}
	}
	return builtin{abi: parsed, fragment: fragment}, nil
}

// Registry maps (logical name, chain ID) to contract descriptors.
type Registry struct {
	contracts map[uint64]map[string]model.ContractDescriptor
	networks  map[uint64]model.Network
}

// New loads the address table of every configured network. Unknown logical
// names and malformed addresses fail construction.
func New(networks []config.NetworkConfig) (*Registry, error) {
	r := &Registry{
		contracts: make(map[uint64]map[string]model.ContractDescriptor, len(networks)),
		networks:  make(map[uint64]model.Network, len(networks)),
	}
	for _, n := range networks {
		if _, dup := r.networks[n.ChainID]; dup {
			return nil, fmt.Errorf("duplicate network %d", n.ChainID)
		}
		r.networks[n.ChainID] = model.Network{
			ChainID:     n.ChainID,
			Name:        n.Name,
			RPCURL:      n.RPCAddr,
			ExplorerURL: n.ExplorerURL,
		}
		table := make(map[string]model.ContractDescriptor, len(n.Contracts))
		for name, addr := range n.Contracts {
			b, ok := builtins[name]
			if !ok || isTokenStandard(name) {
				return nil, fmt.Errorf("network %d: %w", n.ChainID, &UnknownContractError{Name: name, ChainID: n.ChainID})
			}
			if !common.IsHexAddress(addr) {
				return nil, fmt.Errorf("network %d: contract %s: invalid address %q", n.ChainID, name, addr)
			}
			table[name] = model.ContractDescriptor{
				Name:     name,
				ChainID:  n.ChainID,
				Address:  common.HexToAddress(addr),
				ABI:      b.abi,
				Fragment: b.fragment,
			}
		}
		r.contracts[n.ChainID] = table
		zap.L().Debug("registry loaded network",
			zap.Uint64("chainID", n.ChainID),
			zap.String("network", n.Name),
			zap.Int("contracts", len(table)))
	}
	return r, nil
}

// Resolve returns the descriptor of a logical contract on a network.
func (r *Registry) Resolve(name string, chainID uint64) (model.ContractDescriptor, error) {
	if d, ok := r.contracts[chainID][name]; ok {
		return d, nil
	}
	return model.ContractDescriptor{}, &UnknownContractError{Name: name, ChainID: chainID}
}

// Token returns a descriptor for a token contract at an arbitrary address.
// Cross-chain gates reference fungible tokens and use the ERC20 fragment.
func (r *Registry) Token(kind model.TokenKind, address common.Address, chainID uint64) (model.ContractDescriptor, error) {
	var name string
	switch kind {
	case model.TokenERC20, model.TokenCrossChain:
		name = ERC20
	case model.TokenERC721:
		name = ERC721
	case model.TokenERC1155:
		name = ERC1155
	default:
		return model.ContractDescriptor{}, &UnknownContractError{Name: kind.String(), ChainID: chainID}
	}
	b := builtins[name]
	return model.ContractDescriptor{
		Name:     name,
		ChainID:  chainID,
		Address:  address,
		ABI:      b.abi,
		Fragment: b.fragment,
	}, nil
}

// Network returns the network with the given chain ID.
func (r *Registry) Network(chainID uint64) (model.Network, bool) {
	n, ok := r.networks[chainID]
	return n, ok
}

// Networks returns every loaded network ordered by chain ID.
func (r *Registry) Networks() []model.Network {
	out := make([]model.Network, 0, len(r.networks))
	for _, n := range r.networks {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

func isTokenStandard(name string) bool {
	return name == ERC20 || name == ERC721 || name == ERC1155
}
