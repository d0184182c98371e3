package blockchain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestGetTransactOpts_SignsForChain(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	to := common.HexToAddress(testSubs)

	tests := []struct {
		name    string
		chainID *big.Int
		wantErr bool
	}{
		{"main", big.NewInt(1), false},
		{"sepolia", big.NewInt(11155111), false},
		{"base", big.NewInt(8453), false},
		{"nil chain", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := GetTransactOpts(tt.chainID, priv)
			if tt.wantErr {
				if err == nil || opts != nil {
					t.Fatalf("expected error and nil opts, got %v, %v", opts, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetTransactOpts: %v", err)
			}
			if opts.From != crypto.PubkeyToAddress(priv.PublicKey) {
				t.Fatalf("unexpected From %s", opts.From.Hex())
			}

			signed, err := opts.Signer(opts.From, types.NewTx(&types.LegacyTx{To: &to, Gas: 21_000, GasPrice: big.NewInt(1)}))
			if err != nil {
				t.Fatalf("Signer: %v", err)
			}
			if signed.ChainId().Cmp(tt.chainID) != 0 {
				t.Fatalf("signed for chain %s, want %s", signed.ChainId(), tt.chainID)
			}
		})
	}
}

func TestChainClient_GetTransactOpts(t *testing.T) {
	c := newTestClient(t, &stubBackend{}, Options{})

	if _, err := c.GetTransactOpts(nil); err == nil || err.Error() != "private key is required for transactions" {
		t.Fatalf("unexpected error for nil key: %v", err)
	}

	priv, _ := crypto.GenerateKey()
	opts, err := c.GetTransactOpts(priv)
	if err != nil {
		t.Fatalf("GetTransactOpts: %v", err)
	}
	to := common.HexToAddress(testPass)
	signed, err := opts.Signer(opts.From, types.NewTx(&types.LegacyTx{To: &to, Gas: 21_000, GasPrice: big.NewInt(1)}))
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	if signed.ChainId().Uint64() != testNetwork.ChainID {
		t.Fatalf("client signs for chain %s, want %d", signed.ChainId(), testNetwork.ChainID)
	}
}

func TestWaitForTransaction_StopsWithContext(t *testing.T) {
	backend := &stubBackend{
		receiptFn: func(context.Context, common.Hash) (*types.Receipt, error) {
			return nil, ethereum.NotFound
		},
	}
	c := newTestClient(t, backend, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := c.WaitForTransaction(ctx, common.HexToHash("0x02"), 5*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("wait outlived its context: %v", elapsed)
	}
}

func TestWaitForTransaction_ReceiptError(t *testing.T) {
	backend := &stubBackend{
		receiptFn: func(context.Context, common.Hash) (*types.Receipt, error) {
			return nil, errRefused
		},
	}
	c := newTestClient(t, backend, Options{})

	_, err := c.WaitForTransaction(context.Background(), common.HexToHash("0x03"), time.Millisecond)
	if !errors.Is(err, errRefused) {
		t.Fatalf("expected the backend error, got %v", err)
	}
}
