package membership

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrAbandoned marks a sub-query that had not settled when the caller's
	// deadline expired.
	ErrAbandoned = errors.New("sub-query abandoned at deadline")
	// ErrNoReader is returned when a cross-chain gate points at a network
	// the resolver has no client for.
	ErrNoReader = errors.New("no client for chain")
)

// AggregateQueryError means no membership mechanism could be queried, so
// access is undetermined. It is distinct from a confirmed non-member and
// callers must fail closed on it.
type AggregateQueryError struct {
	Club    string
	Account common.Address
	// Causes holds the failure of every mechanism.
	Causes map[model.MembershipKind]error
}

func (e *AggregateQueryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "membership of %s in %q undetermined", e.Account.Hex(), e.Club)
	for _, k := range model.Precedence {
		if err, ok := e.Causes[k]; ok {
			fmt.Fprintf(&b, "; %s: %v", k, err)
		}
	}
	return b.String()
}

// Unwrap exposes the per-mechanism causes in precedence order.
func (e *AggregateQueryError) Unwrap() []error {
	errs := make([]error, 0, len(e.Causes))
	for _, k := range model.Precedence {
		if err, ok := e.Causes[k]; ok {
			errs = append(errs, err)
		}
	}
	return errs
}
