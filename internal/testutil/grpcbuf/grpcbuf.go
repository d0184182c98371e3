// Package grpcbuf runs an in-memory echo gRPC service for interceptor tests.
package grpcbuf

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

const bufSize = 1024 * 1024

const (
	// PingMethod is the full name of the unary echo method.
	PingMethod = "/test.Echo/Ping"
	// WatchMethod is the full name of the server-streaming echo method.
	WatchMethod = "/test.Echo/Watch"
)

// MetaCapture records the metadata of the requests that reached the handler.
type MetaCapture struct {
	last    atomic.Value // stores metadata.MD
	handled atomic.Int64
}

// Interceptor records incoming metadata and forwards the request to the next handler.
func (m *MetaCapture) Interceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	m.record(ctx)
	return handler(ctx, req)
}

// StreamInterceptor is Interceptor for streaming calls.
func (m *MetaCapture) StreamInterceptor(
	srv any,
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	m.record(ss.Context())
	return handler(srv, ss)
}

func (m *MetaCapture) record(ctx context.Context) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		m.last.Store(md)
	}
	m.handled.Add(1)
}

// Last returns the most recently captured metadata or nil if none.
func (m *MetaCapture) Last() metadata.MD {
	if v := m.last.Load(); v != nil {
		return v.(metadata.MD)
	}
	return nil
}

// Handled returns how many calls got past every earlier interceptor.
func (m *MetaCapture) Handled() int64 {
	return m.handled.Load()
}

// EchoServer defines a minimal echo service used in tests.
type EchoServer interface {
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

type echoServer struct{}

func (s *echoServer) Ping(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func _Echo_Ping_Handler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EchoServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PingMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EchoServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// _Echo_Watch_Handler answers one message with one message.
func _Echo_Watch_Handler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return stream.SendMsg(&emptypb.Empty{})
}

// EchoServiceDesc describes the in-memory echo service used by grpcbuf helpers.
var EchoServiceDesc = grpc.ServiceDesc{
	ServiceName: "test.Echo",
	HandlerType: (*EchoServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: _Echo_Ping_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: _Echo_Watch_Handler, ServerStreams: true, ClientStreams: true},
	},
	Metadata: "echo_test",
}

// StartServer spins up a bufconn-backed gRPC server. The given interceptors
// run before metadata capture, so the capture only sees admitted calls.
func StartServer(unary []grpc.UnaryServerInterceptor, stream []grpc.StreamServerInterceptor) (*grpc.Server, *bufconn.Listener, *MetaCapture) {
	lis := bufconn.Listen(bufSize)
	capture := &MetaCapture{}
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(append(unary, capture.Interceptor)...),
		grpc.ChainStreamInterceptor(append(stream, capture.StreamInterceptor)...),
	)
	srv.RegisterService(&EchoServiceDesc, &echoServer{})
	go func() { _ = srv.Serve(lis) }()
	return srv, lis, capture
}

// Dial connects to the provided bufconn listener using the standard gRPC client stack.
func Dial(ctx context.Context, lis *bufconn.Listener, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	// bufconn has no TLS; passthrough keeps the custom dialer in charge.
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(dialer),
	}
	base = append(base, opts...)
	return grpc.NewClient("passthrough://bufnet", base...)
}

// Ping invokes the unary echo method.
func Ping(ctx context.Context, conn *grpc.ClientConn) error {
	return conn.Invoke(ctx, PingMethod, &emptypb.Empty{}, &emptypb.Empty{})
}

// Watch opens the streaming echo method and exchanges one message.
func Watch(ctx context.Context, conn *grpc.ClientConn) error {
	stream, err := conn.NewStream(ctx, &EchoServiceDesc.Streams[0], WatchMethod)
	if err != nil {
		return err
	}
	// a rejected stream reports io.EOF here and its status on RecvMsg
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	return stream.RecvMsg(&emptypb.Empty{})
}
