package gate

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/blockchain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// accessMessage builds the message signed by an account to prove it controls
// the address it claims:
//
//	concat("__club_access", club, account, unixTime)
func accessMessage(club string, account common.Address, unixTime int64) []byte {
	return bytes.Join([][]byte{
		[]byte(AccessPrefixSignature),
		[]byte(club),
		account.Bytes(),
		math.U256Bytes(big.NewInt(unixTime)),
	}, nil)
}

// Credentials attaches signed access headers to outgoing calls.
type Credentials struct {
	club    string
	key     *ecdsa.PrivateKey
	account common.Address
	now     func() time.Time
}

// NewCredentials creates credentials proving control of key's address for
// calls to club.
func NewCredentials(club string, key *ecdsa.PrivateKey) (*Credentials, error) {
	addr := blockchain.GetAddressFromPrivateKeyECDSA(key)
	if addr == nil {
		return nil, errors.New("private key is required for access credentials")
	}
	return &Credentials{club: club, key: key, account: *addr, now: time.Now}, nil
}

// Account returns the address the credentials speak for.
func (c *Credentials) Account() common.Address {
	return c.account
}

// GRPCMetadata decorates ctx with the club, account, timestamp and signature
// headers.
func (c *Credentials) GRPCMetadata(ctx context.Context) context.Context {
	ts := c.now().Unix()
	sig := blockchain.GetSignature(accessMessage(c.club, c.account, ts), c.key)
	return metadata.AppendToOutgoingContext(ctx,
		ClubHeader, c.club,
		AccountHeader, c.account.Hex(),
		TimestampHeader, strconv.FormatInt(ts, 10),
		SignatureHeader, string(sig),
	)
}

// UnaryClientInterceptor signs every unary call.
func (c *Credentials) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(c.GRPCMetadata(ctx), method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor signs every stream.
func (c *Credentials) StreamClientInterceptor() grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		return streamer(c.GRPCMetadata(ctx), desc, cc, method, opts...)
	}
}
