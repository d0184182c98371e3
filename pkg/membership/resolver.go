package membership

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/clubs-network/clubs-sdk-go/pkg/blockchain"
	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/clubs-network/clubs-sdk-go/pkg/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ChainReader is the read side of a blockchain.ChainClient.
type ChainReader interface {
	ChainID() uint64
	Call(ctx context.Context, contract, method string, args ...any) ([]any, error)
	CallAt(ctx context.Context, d model.ContractDescriptor, method string, args ...any) ([]any, error)
	Token(kind model.TokenKind, address common.Address) (model.ContractDescriptor, error)
}

var _ ChainReader = (*blockchain.ChainClient)(nil)

// Options tunes a Resolver.
type Options struct {
	// FanOut bounds concurrent sub-queries per resolution. Default: 4.
	FanOut int
	// Timeout bounds a whole resolution on top of the caller's deadline.
	// Zero means only the caller's deadline applies.
	Timeout time.Duration
	// Now is the clock used to decide whether a subscription has expired.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.FanOut <= 0 {
		o.FanOut = 4
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Resolver answers membership questions by querying every mechanism that can
// grant access to a club and combining the answers by precedence.
type Resolver struct {
	home    ChainReader
	remotes map[uint64]ChainReader
	opts    Options
}

// NewResolver builds a resolver over the home network client. remotes maps
// chain IDs to clients used for cross-chain token gates; it may be nil.
func NewResolver(home ChainReader, remotes map[uint64]ChainReader, opts Options) *Resolver {
	rs := make(map[uint64]ChainReader, len(remotes))
	for id, r := range remotes {
		rs[id] = r
	}
	return &Resolver{home: home, remotes: rs, opts: opts.withDefaults()}
}

// subResult is the settled answer of one mechanism.
type subResult struct {
	member    bool
	expiresAt *time.Time
	err       error
	settled   bool
}

type mechanism struct {
	kind  model.MembershipKind
	query func(ctx context.Context) subResult
}

// Resolve reports whether account is a member of club.
//
// All mechanisms are queried concurrently. A failing mechanism counts as
// "not a member" for that mechanism. If every mechanism failed with a
// transport error, or had not settled when ctx expired, the result is an
// *AggregateQueryError instead of a negative answer.
func (r *Resolver) Resolve(ctx context.Context, club string, account common.Address) (model.MembershipStatus, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	detailed := sync.OnceValues(func() ([4]bool, error) {
		return r.detailedMembership(ctx, club, account)
	})
	mechs := []mechanism{
		{model.KindPermanent, func(ctx context.Context) subResult { return r.permanent(ctx, club, account) }},
		{model.KindTemporary, func(ctx context.Context) subResult { return r.temporary(ctx, club, account) }},
		{model.KindTokenBased, func(context.Context) subResult { return tokenBased(detailed) }},
		{model.KindCrossChain, func(ctx context.Context) subResult { return r.crossChain(ctx, club, account, detailed) }},
	}

	results := make([]subResult, len(mechs))
	var mu sync.Mutex
	done := make(chan struct{})

	p := pool.New().WithMaxGoroutines(r.opts.FanOut)
	go func() {
		defer close(done)
		for i, m := range mechs {
			p.Go(func() {
				res := m.query(ctx)
				res.settled = true
				mu.Lock()
				results[i] = res
				mu.Unlock()
			})
		}
		p.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		zap.L().Debug("resolution deadline reached, aggregating partial results",
			zap.String("club", club),
			zap.String("account", account.Hex()),
			zap.Error(ctx.Err()))
	}

	mu.Lock()
	snapshot := slices.Clone(results)
	mu.Unlock()

	return r.aggregate(club, account, mechs, snapshot, ctx.Err())
}

func (r *Resolver) aggregate(club string, account common.Address, mechs []mechanism, results []subResult, ctxErr error) (model.MembershipStatus, error) {
	byKind := make(map[model.MembershipKind]subResult, len(mechs))
	causes := make(map[model.MembershipKind]error)
	undetermined := 0
	for i, m := range mechs {
		res := results[i]
		byKind[m.kind] = res
		switch {
		case !res.settled:
			cause := ErrAbandoned
			if ctxErr != nil {
				cause = fmt.Errorf("%w: %w", ErrAbandoned, ctxErr)
			}
			causes[m.kind] = cause
			undetermined++
		case res.err != nil:
			causes[m.kind] = res.err
			if blockchain.IsTransport(res.err) {
				undetermined++
			}
			zap.L().Debug("membership mechanism failed",
				zap.String("club", club),
				zap.Stringer("kind", m.kind),
				zap.Error(res.err))
		}
	}

	for _, k := range model.Precedence {
		res, ok := byKind[k]
		if !ok || !res.settled || res.err != nil || !res.member {
			continue
		}
		status := model.MembershipStatus{IsMember: true, Kind: k}
		if k == model.KindTemporary {
			status.ExpiresAt = res.expiresAt
		}
		return status, nil
	}

	if undetermined == len(mechs) {
		err := &AggregateQueryError{Club: club, Account: account, Causes: causes}
		zap.L().Warn("membership undetermined", zap.Error(err))
		return model.MembershipStatus{}, err
	}
	return model.NotMember, nil
}

func (r *Resolver) permanent(ctx context.Context, club string, account common.Address) subResult {
	out, err := r.home.Call(ctx, registry.PermanentMembership, "isMember", club, account)
	if err != nil {
		return subResult{err: err}
	}
	member, err := blockchain.Output[bool](out, 0)
	return subResult{member: member, err: err}
}

func (r *Resolver) temporary(ctx context.Context, club string, account common.Address) subResult {
	out, err := r.home.Call(ctx, registry.TemporaryMembership, "checkUserMembership", account, club)
	if err != nil {
		return subResult{err: err}
	}
	member, err := blockchain.Output[bool](out, 0)
	if err != nil {
		return subResult{err: err}
	}
	expiration, err := blockchain.Output[*big.Int](out, 1)
	if err != nil {
		return subResult{err: err}
	}
	if !member {
		return subResult{}
	}

	res := subResult{member: true}
	if expiration.Sign() > 0 && expiration.IsInt64() {
		exp := time.Unix(expiration.Int64(), 0).UTC()
		if !exp.After(r.opts.Now()) {
			return subResult{}
		}
		res.expiresAt = &exp
	}
	return res
}

// detailedMembership reads the token gate flags: ERC20, ERC721, ERC1155 and
// cross-chain attestation.
func (r *Resolver) detailedMembership(ctx context.Context, club string, account common.Address) ([4]bool, error) {
	var flags [4]bool
	out, err := r.home.Call(ctx, registry.TokenGate, "checkDetailedMembership", account, club)
	if err != nil {
		return flags, err
	}
	for i := range flags {
		if flags[i], err = blockchain.Output[bool](out, i); err != nil {
			return flags, err
		}
	}
	return flags, nil
}

func tokenBased(detailed func() ([4]bool, error)) subResult {
	flags, err := detailed()
	if err != nil {
		return subResult{err: err}
	}
	return subResult{member: flags[0] || flags[1] || flags[2]}
}

// crossChain checks the balances required by cross-chain gates on their own
// networks. The home contract's attestation also counts.
func (r *Resolver) crossChain(ctx context.Context, club string, account common.Address, detailed func() ([4]bool, error)) subResult {
	var errs []error

	gates, err := r.TokenGates(ctx, club)
	if err != nil {
		errs = append(errs, err)
	}
	for _, g := range gates {
		if g.Kind != model.TokenCrossChain || g.ChainID == nil {
			continue
		}
		ok, err := r.holds(ctx, *g.ChainID, g, account)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return subResult{member: true}
		}
	}

	flags, err := detailed()
	if err != nil {
		errs = append(errs, err)
	} else if flags[3] {
		return subResult{member: true}
	}
	return subResult{err: errors.Join(errs...)}
}

func (r *Resolver) holds(ctx context.Context, chainID uint64, g model.TokenGate, account common.Address) (bool, error) {
	reader, ok := r.reader(chainID)
	if !ok {
		return false, fmt.Errorf("gate token %s: %w %d", g.TokenAddress.Hex(), ErrNoReader, chainID)
	}
	d, err := reader.Token(model.TokenERC20, g.TokenAddress)
	if err != nil {
		return false, err
	}
	out, err := reader.CallAt(ctx, d, "balanceOf", account)
	if err != nil {
		return false, err
	}
	balance, err := blockchain.Output[*big.Int](out, 0)
	if err != nil {
		return false, err
	}
	required := g.RequiredAmount
	if required == nil {
		required = new(big.Int)
	}
	return balance.Cmp(required) >= 0, nil
}

func (r *Resolver) reader(chainID uint64) (ChainReader, bool) {
	if chainID == r.home.ChainID() {
		return r.home, true
	}
	reader, ok := r.remotes[chainID]
	return reader, ok
}

// TokenGates lists the token gates configured for club on the home network.
func (r *Resolver) TokenGates(ctx context.Context, club string) ([]model.TokenGate, error) {
	out, err := r.home.Call(ctx, registry.TokenGate, "getTokenGates", club)
	if err != nil {
		return nil, err
	}
	addrs, err := blockchain.Output[[]common.Address](out, 0)
	if err != nil {
		return nil, err
	}
	kinds, err := blockchain.Output[[]uint8](out, 1)
	if err != nil {
		return nil, err
	}
	amounts, err := blockchain.Output[[]*big.Int](out, 2)
	if err != nil {
		return nil, err
	}
	tokenIDs, err := blockchain.Output[[]*big.Int](out, 3)
	if err != nil {
		return nil, err
	}
	chainIDs, err := blockchain.Output[[]*big.Int](out, 4)
	if err != nil {
		return nil, err
	}

	n := len(addrs)
	if len(kinds) != n || len(amounts) != n || len(tokenIDs) != n || len(chainIDs) != n {
		return nil, &blockchain.RPCError{
			Reason:   blockchain.Malformed,
			ChainID:  r.home.ChainID(),
			Contract: registry.TokenGate,
			Method:   "getTokenGates",
			Err:      fmt.Errorf("gate arrays differ in length"),
		}
	}

	gates := make([]model.TokenGate, 0, n)
	for i := range n {
		g := model.TokenGate{
			TokenAddress:   addrs[i],
			Kind:           model.TokenKind(kinds[i]),
			RequiredAmount: amounts[i],
		}
		switch g.Kind {
		case model.TokenERC1155:
			g.TokenID = tokenIDs[i]
		case model.TokenCrossChain:
			if !chainIDs[i].IsUint64() {
				return nil, &blockchain.RPCError{
					Reason:   blockchain.Malformed,
					ChainID:  r.home.ChainID(),
					Contract: registry.TokenGate,
					Method:   "getTokenGates",
					Err:      fmt.Errorf("gate %d: chain id %s out of range", i, chainIDs[i]),
				}
			}
			id := chainIDs[i].Uint64()
			g.ChainID = &id
		}
		gates = append(gates, g)
	}
	return gates, nil
}
