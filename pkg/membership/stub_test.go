package membership

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/clubs-network/clubs-sdk-go/pkg/blockchain"
	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/clubs-network/clubs-sdk-go/pkg/registry"
	"github.com/ethereum/go-ethereum/common"
)

type callFn func(ctx context.Context, args ...any) ([]any, error)

// stubReader answers calls from a table keyed by "Contract.method" and
// counts every call. Missing entries behave like an unconfigured contract.
type stubReader struct {
	chainID uint64
	mu      sync.Mutex
	fns     map[string]callFn
	calls   atomic.Int64
}

func newStub(chainID uint64) *stubReader {
	return &stubReader{chainID: chainID, fns: make(map[string]callFn)}
}

func (s *stubReader) on(contract, method string, fn callFn) *stubReader {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns[contract+"."+method] = fn
	return s
}

func (s *stubReader) returns(contract, method string, values ...any) *stubReader {
	return s.on(contract, method, func(context.Context, ...any) ([]any, error) { return values, nil })
}

func (s *stubReader) fails(contract, method string, err error) *stubReader {
	return s.on(contract, method, func(context.Context, ...any) ([]any, error) { return nil, err })
}

func (s *stubReader) ChainID() uint64 { return s.chainID }

func (s *stubReader) Call(ctx context.Context, contract, method string, args ...any) ([]any, error) {
	return s.invoke(ctx, contract, method, args)
}

func (s *stubReader) CallAt(ctx context.Context, d model.ContractDescriptor, method string, args ...any) ([]any, error) {
	return s.invoke(ctx, d.Name+"@"+d.Address.Hex(), method, args)
}

func (s *stubReader) Token(kind model.TokenKind, address common.Address) (model.ContractDescriptor, error) {
	return model.ContractDescriptor{Name: registry.ERC20, ChainID: s.chainID, Address: address}, nil
}

func (s *stubReader) invoke(ctx context.Context, contract, method string, args []any) ([]any, error) {
	s.calls.Add(1)
	s.mu.Lock()
	fn, ok := s.fns[contract+"."+method]
	s.mu.Unlock()
	if !ok {
		return nil, &registry.UnknownContractError{Name: contract, ChainID: s.chainID}
	}
	return fn(ctx, args...)
}

func token(addr common.Address) string {
	return registry.ERC20 + "@" + addr.Hex()
}

func unreachable(contract, method string) error {
	return &blockchain.RPCError{
		Reason:   blockchain.Unreachable,
		ChainID:  1,
		Contract: contract,
		Method:   method,
		Err:      fmt.Errorf("connection refused"),
	}
}

func reverted(contract, method string) error {
	return fmt.Errorf("%s.%s: %w", contract, method, blockchain.ErrReverted)
}

// noGates answers getTokenGates with empty arrays.
func noGates(s *stubReader) *stubReader {
	return s.returns(registry.TokenGate, "getTokenGates",
		[]common.Address{}, []uint8{}, []*big.Int{}, []*big.Int{}, []*big.Int{})
}

// member sets up a home stub where only the listed mechanisms grant access.
func member(chainID uint64, kinds ...model.MembershipKind) *stubReader {
	s := noGates(newStub(chainID))
	has := func(k model.MembershipKind) bool {
		for _, kk := range kinds {
			if kk == k {
				return true
			}
		}
		return false
	}
	s.returns(registry.PermanentMembership, "isMember", has(model.KindPermanent))
	s.returns(registry.TemporaryMembership, "checkUserMembership", has(model.KindTemporary), big.NewInt(0), uint8(0))
	s.returns(registry.TokenGate, "checkDetailedMembership",
		has(model.KindTokenBased), false, false, has(model.KindCrossChain))
	return s
}
