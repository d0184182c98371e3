package gate

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/blockchain"
	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Checker answers membership questions, usually a *cache.MembershipCache
// or an *sdk.Core.
type Checker interface {
	CheckMembership(ctx context.Context, club string, account common.Address) (model.MembershipStatus, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, club string, account common.Address) (model.MembershipStatus, error)

// CheckMembership calls f.
func (f CheckerFunc) CheckMembership(ctx context.Context, club string, account common.Address) (model.MembershipStatus, error) {
	return f(ctx, club, account)
}

// Options configures the gate.
type Options struct {
	// Club, when set, is checked for every call and ClubHeader is ignored.
	Club string
	// Allow lists full method names ("/pkg.Service/Method") served without
	// a membership check.
	Allow []string
	// SkipSignature trusts AccountHeader without a signature. Only for
	// deployments where a proxy in front has authenticated the caller.
	SkipSignature bool
	// MaxSkew bounds the age of a signature. Default: 5m.
	MaxSkew time.Duration
	// Now is the clock used for signature freshness and expiry checks.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxSkew <= 0 {
		o.MaxSkew = 5 * time.Minute
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type statusKey struct{}

// StatusFromContext returns the membership that admitted the call.
func StatusFromContext(ctx context.Context) (model.MembershipStatus, bool) {
	s, ok := ctx.Value(statusKey{}).(model.MembershipStatus)
	return s, ok
}

// Gate admits calls from club members only. Answers map to gRPC codes:
// missing or invalid credentials give Unauthenticated, a confirmed
// non-member gets PermissionDenied, and a membership that could not be
// determined gives Unavailable. The gate never admits on error.
type Gate struct {
	checker Checker
	opts    Options
}

// New creates a gate over checker.
func New(checker Checker, opts Options) *Gate {
	return &Gate{checker: checker, opts: opts.withDefaults()}
}

// UnaryServerInterceptor returns a unary interceptor enforcing membership.
func UnaryServerInterceptor(checker Checker, opts Options) grpc.UnaryServerInterceptor {
	return New(checker, opts).Unary
}

// StreamServerInterceptor returns a stream interceptor enforcing membership.
func StreamServerInterceptor(checker Checker, opts Options) grpc.StreamServerInterceptor {
	return New(checker, opts).Stream
}

// Unary is a grpc.UnaryServerInterceptor.
func (g *Gate) Unary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := g.Authorize(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

// Stream is a grpc.StreamServerInterceptor.
func (g *Gate) Stream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := g.Authorize(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &admittedStream{ServerStream: ss, ctx: ctx})
}

type admittedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *admittedStream) Context() context.Context { return s.ctx }

// Authorize decides a single call. On success the returned context carries
// the membership status (see StatusFromContext).
func (g *Gate) Authorize(ctx context.Context, fullMethod string) (context.Context, error) {
	if slices.Contains(g.opts.Allow, fullMethod) {
		return ctx, nil
	}

	club, account, err := g.credentials(ctx)
	if err != nil {
		zap.L().Debug("access rejected", zap.String("method", fullMethod), zap.Error(err))
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	ms, err := g.checker.CheckMembership(ctx, club, account)
	if err != nil {
		zap.L().Warn("membership check failed, denying access",
			zap.String("method", fullMethod),
			zap.String("club", club),
			zap.String("account", account.Hex()),
			zap.Error(err))
		if errors.Is(err, context.Canceled) {
			return nil, status.Error(codes.Canceled, "membership check canceled")
		}
		return nil, status.Error(codes.Unavailable, "membership could not be determined")
	}
	if !ms.Active(g.opts.Now()) {
		return nil, status.Errorf(codes.PermissionDenied, "%s is not a member of %s", account.Hex(), club)
	}

	zap.L().Debug("access granted",
		zap.String("method", fullMethod),
		zap.String("club", club),
		zap.String("account", account.Hex()),
		zap.Stringer("kind", ms.Kind))
	return context.WithValue(ctx, statusKey{}, ms), nil
}

// credentials extracts and verifies club and account from the incoming
// metadata.
func (g *Gate) credentials(ctx context.Context) (string, common.Address, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", common.Address{}, errors.New("missing metadata")
	}

	club := g.opts.Club
	if club == "" {
		club = first(md, ClubHeader)
		if club == "" {
			return "", common.Address{}, errors.New("missing " + ClubHeader)
		}
	}

	rawAccount := first(md, AccountHeader)
	if !common.IsHexAddress(rawAccount) {
		return "", common.Address{}, errors.New("missing or invalid " + AccountHeader)
	}
	account := common.HexToAddress(rawAccount)
	if g.opts.SkipSignature {
		return club, account, nil
	}

	ts, err := strconv.ParseInt(first(md, TimestampHeader), 10, 64)
	if err != nil {
		return "", common.Address{}, errors.New("missing or invalid " + TimestampHeader)
	}
	skew := g.opts.Now().Sub(time.Unix(ts, 0))
	if skew > g.opts.MaxSkew || skew < -g.opts.MaxSkew {
		return "", common.Address{}, errors.New("signature expired")
	}

	signer, err := blockchain.RecoverSigner(accessMessage(club, account, ts), []byte(first(md, SignatureHeader)))
	if err != nil {
		return "", common.Address{}, errors.New("invalid " + SignatureHeader)
	}
	if signer != account {
		return "", common.Address{}, errors.New("signature does not match " + AccountHeader)
	}
	return club, account, nil
}

func first(md metadata.MD, key string) string {
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}
