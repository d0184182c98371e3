package blockchain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// HashPrefix32Bytes is the standard Ethereum personal-sign prefix for 32-byte
// messages: "\x19Ethereum Signed Message:\n32".
var HashPrefix32Bytes = []byte("\x19Ethereum Signed Message:\n32")

// GetAddressFromPrivateKeyECDSA derives the Ethereum address from the given
// ECDSA private key. It returns nil if the key is nil or its public part cannot
// be asserted to *ecdsa.PublicKey.
func GetAddressFromPrivateKeyECDSA(privateKeyECDSA *ecdsa.PrivateKey) *common.Address {
	if privateKeyECDSA == nil {
		return nil
	}
	publicKey := privateKeyECDSA.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil
	}
	addr := crypto.PubkeyToAddress(*publicKeyECDSA)
	return &addr
}

// ParsePrivateKeyECDSA parses a hex-encoded ECDSA private key (with or
// without 0x prefix) and returns the corresponding Ethereum address together
// with the private key object.
func ParsePrivateKeyECDSA(privateKey string) (common.Address, *ecdsa.PrivateKey, error) {
	if len(privateKey) > 1 && privateKey[0] == '0' && (privateKey[1] == 'x' || privateKey[1] == 'X') {
		privateKey = privateKey[2:]
	}
	privateKeyECDSA, err := crypto.HexToECDSA(privateKey)
	if err != nil {
		return common.Address{}, nil, err
	}

	addr := GetAddressFromPrivateKeyECDSA(privateKeyECDSA)
	if addr == nil {
		return common.Address{}, nil, errors.New("failed to get public key")
	}
	return *addr, privateKeyECDSA, nil
}

// personalHash is keccak256("\x19Ethereum Signed Message:\n32" || keccak256(message)).
func personalHash(message []byte) []byte {
	return crypto.Keccak256(HashPrefix32Bytes, crypto.Keccak256(message))
}

// GetSignature produces an Ethereum-compatible personal-sign (EIP-191 style)
// signature over the given message.
//
// Returns the 65-byte signature (R||S||V). On signing error it logs and returns nil.
func GetSignature(message []byte, privateKeyECDSA *ecdsa.PrivateKey) []byte {
	signature, err := crypto.Sign(personalHash(message), privateKeyECDSA)
	if err != nil {
		zap.L().Error("Failed to sign message", zap.Error(err))
	}
	return signature
}

// RecoverSigner returns the address that produced signature over message
// with GetSignature. Wallet-style V values (27/28) are accepted.
func RecoverSigner(message, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(signature))
	}
	sig := make([]byte, len(signature))
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(personalHash(message), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Output returns the i-th unpacked return value of a call as T. A missing
// value or unexpected type is reported as a Malformed RPCError.
func Output[T any](values []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(values) {
		return zero, &RPCError{Reason: Malformed, Contract: "-", Method: "-", Err: fmt.Errorf("missing output %d of %d", i, len(values))}
	}
	v, ok := values[i].(T)
	if !ok {
		return zero, &RPCError{Reason: Malformed, Contract: "-", Method: "-", Err: fmt.Errorf("output %d: unexpected type %T", i, values[i])}
	}
	return v, nil
}
