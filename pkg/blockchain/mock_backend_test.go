package blockchain

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/clubs-network/clubs-sdk-go/pkg/config"
	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/clubs-network/clubs-sdk-go/pkg/registry"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// stubBackend is a Backend whose behavior is driven by function fields and
// which counts every call it receives.
type stubBackend struct {
	callFn    func(ctx context.Context, msg ethereum.CallMsg, attempt int64) ([]byte, error)
	sendFn    func(ctx context.Context, tx *types.Transaction, attempt int64) error
	receiptFn func(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	estimate  error

	calls atomic.Int64
	sends atomic.Int64
	sent  atomic.Pointer[types.Transaction]
}

func (s *stubBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	n := s.calls.Add(1)
	return s.callFn(ctx, msg, n)
}

func (s *stubBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	if s.estimate != nil {
		return 0, s.estimate
	}
	return 100_000, nil
}

func (s *stubBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (s *stubBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 7, nil
}

func (s *stubBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	n := s.sends.Add(1)
	s.sent.Store(tx)
	if s.sendFn == nil {
		return nil
	}
	return s.sendFn(ctx, tx, n)
}

func (s *stubBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return s.receiptFn(ctx, hash)
}

const (
	testPass = "0x00000000000000000000000000000000000000a1"
	testSubs = "0x00000000000000000000000000000000000000a2"
)

var testNetwork = model.Network{ChainID: config.Sepolia.ChainID, Name: "sepolia", ExplorerURL: "https://sepolia.etherscan.io"}

func newTestClient(t *testing.T, backend Backend, opts Options) *ChainClient {
	t.Helper()
	reg, err := registry.New([]config.NetworkConfig{{
		Network: config.Sepolia,
		RPCAddr: "http://127.0.0.1:8545",
		Contracts: map[string]string{
			registry.PermanentMembership: testPass,
			registry.TemporaryMembership: testSubs,
		},
	}})
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return NewChainClient(testNetwork, backend, reg, opts)
}

// packOutputs encodes return values of a registry method.
func packOutputs(t *testing.T, contract, method string, values ...any) []byte {
	t.Helper()
	reg, err := registry.New([]config.NetworkConfig{{
		Network:   config.Sepolia,
		RPCAddr:   "http://127.0.0.1:8545",
		Contracts: map[string]string{contract: testPass},
	}})
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	d, err := reg.Resolve(contract, config.Sepolia.ChainID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	out, err := d.ABI.Methods[method].Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("pack outputs: %v", err)
	}
	return out
}
