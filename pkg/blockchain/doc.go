// Package blockchain is the transport layer of the clubs SDK.
//
// A ChainClient is bound to exactly one EVM network. It resolves logical
// contract names through a registry.Registry and issues two kinds of calls:
//
//   - Call and CallAt run read-only eth_call requests. Each attempt has its
//     own timeout; timeouts and unreachable endpoints are retried with
//     exponential backoff.
//   - Transact and TransactAt sign and submit state-mutating transactions.
//     They are never retried.
//
// # Errors
//
// Transport failures are reported as *RPCError with a Reason (Timeout,
// Unreachable, Malformed). IsTransport tells callers whether an answer could
// not be determined. Contract-level rejections are wrapped ErrReverted and an
// address without code yields ErrNoCode; neither is a transport failure.
//
//	out, err := client.Call(ctx, registry.PermanentMembership, "isMember", "club.eth", account)
//	switch {
//	case blockchain.IsTransport(err):
//		// retry later, the answer is unknown
//	case err != nil:
//		// the contract said no, or is not configured
//	}
//	member, err := blockchain.Output[bool](out, 0)
//
// # Concurrency
//
// ChainClient is safe for concurrent use. The number of simultaneous RPC
// requests per client is bounded by Options.MaxInFlight.
//
// # Keys
//
// ParsePrivateKeyECDSA accepts hex keys with or without 0x prefix.
// GetSignature and RecoverSigner implement Ethereum personal-sign signatures,
// used by the gate package to authenticate account addresses.
package blockchain
