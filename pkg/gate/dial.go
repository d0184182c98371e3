package gate

import (
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial creates a client connection to a gated endpoint. Every unary call and
// stream on it carries fresh access headers. The endpoint scheme selects
// transport security:
//   - "https://": TLS (system defaults)
//   - "http://":  insecure
//   - no scheme:  insecure
//
// opts are applied after the defaults and may override them.
func (c *Credentials) Dial(endpoint string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	addr, secure := endpointTarget(endpoint)
	transport := insecure.NewCredentials()
	if secure {
		transport = credentials.NewTLS(nil)
	}
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(transport),
		grpc.WithChainUnaryInterceptor(c.UnaryClientInterceptor()),
		grpc.WithChainStreamInterceptor(c.StreamClientInterceptor()),
	}
	conn, err := grpc.NewClient(addr, append(base, opts...)...)
	if err != nil {
		zap.L().Error("Failed to create gated client", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}
	return conn, nil
}

// endpointTarget strips the http(s) scheme from endpoint and reports whether
// TLS is required.
func endpointTarget(endpoint string) (string, bool) {
	if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		return rest, true
	}
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		return rest, false
	}
	return endpoint, false
}
