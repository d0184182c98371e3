package blockchain

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestGetAddressFromPrivateKeyECDSA(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	addr := GetAddressFromPrivateKeyECDSA(priv)
	if addr == nil {
		t.Fatal("expected non-nil address")
	}
	want := crypto.PubkeyToAddress(priv.PublicKey)
	if *addr != want {
		t.Fatalf("unexpected address: got %s want %s", addr.Hex(), want.Hex())
	}

	if GetAddressFromPrivateKeyECDSA(nil) != nil {
		t.Fatal("expected nil for nil key")
	}
}

func TestParsePrivateKeyECDSA(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	hexKey := hex.EncodeToString(crypto.FromECDSA(priv))

	for _, in := range []string{hexKey, "0x" + hexKey} {
		addr, parsedKey, err := ParsePrivateKeyECDSA(in)
		if err != nil {
			t.Fatalf("ParsePrivateKeyECDSA(%q): %v", in[:6], err)
		}
		if addr != crypto.PubkeyToAddress(priv.PublicKey) {
			t.Fatalf("unexpected address: %s", addr.Hex())
		}
		if parsedKey.D.Cmp(priv.D) != 0 {
			t.Fatal("parsed key mismatch")
		}
	}

	if _, _, err := ParsePrivateKeyECDSA("zz"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	want := crypto.PubkeyToAddress(priv.PublicKey)
	msg := []byte("__club_access club.eth 1700000000")

	sig := GetSignature(msg, priv)
	if len(sig) != 65 {
		t.Fatalf("expected 65-byte signature, got %d", len(sig))
	}

	got, err := RecoverSigner(msg, sig)
	if err != nil {
		t.Fatalf("RecoverSigner: %v", err)
	}
	if got != want {
		t.Fatalf("recovered %s, want %s", got.Hex(), want.Hex())
	}

	// wallets report V as 27/28
	walletSig := append([]byte(nil), sig...)
	walletSig[64] += 27
	if got, err := RecoverSigner(msg, walletSig); err != nil || got != want {
		t.Fatalf("wallet-style V: got %s, %v", got.Hex(), err)
	}
	if walletSig[64] < 27 {
		t.Fatal("RecoverSigner must not mutate its input")
	}

	if got, _ := RecoverSigner([]byte("another message"), sig); got == want {
		t.Fatal("signature must not verify a different message")
	}
	if _, err := RecoverSigner(msg, sig[:64]); err == nil {
		t.Fatal("expected error for short signature")
	}
}

func TestOutput(t *testing.T) {
	values := []any{true, big.NewInt(42), common.HexToAddress("0x01")}

	b, err := Output[bool](values, 0)
	if err != nil || !b {
		t.Fatalf("Output[bool]: %v, %v", b, err)
	}
	n, err := Output[*big.Int](values, 1)
	if err != nil || n.Int64() != 42 {
		t.Fatalf("Output[*big.Int]: %v, %v", n, err)
	}

	var re *RPCError
	if _, err := Output[string](values, 0); !errors.As(err, &re) || re.Reason != Malformed {
		t.Fatalf("expected Malformed for wrong type, got %v", err)
	}
	if _, err := Output[bool](values, 3); !errors.As(err, &re) || re.Reason != Malformed {
		t.Fatalf("expected Malformed for missing value, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		reverted  bool
		reason    Reason
		retryable bool
	}{
		{"revert message", errors.New("execution reverted: nope"), true, 0, false},
		{"deadline", context.DeadlineExceeded, false, Timeout, true},
		{"canceled", context.Canceled, false, Timeout, true},
		{"refused", errRefused, false, Unreachable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err, 1, "X", "m")
			if tt.reverted {
				if !errors.Is(err, ErrReverted) || IsTransport(err) {
					t.Fatalf("expected logical revert, got %v", err)
				}
				return
			}
			var re *RPCError
			if !errors.As(err, &re) {
				t.Fatalf("expected RPCError, got %v", err)
			}
			if re.Reason != tt.reason || re.Retryable() != tt.retryable {
				t.Fatalf("got reason %s retryable %v", re.Reason, re.Retryable())
			}
			if !errors.Is(err, tt.err) {
				t.Fatal("cause must stay reachable through Unwrap")
			}
		})
	}
	if classify(nil, 1, "X", "m") != nil {
		t.Fatal("nil in, nil out")
	}
}
