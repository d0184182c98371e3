// Package sdk provides the high-level entry point of the clubs SDK.
//
// The SDK answers "may this account enter this club", sells memberships and
// administers token gates, hiding the per-mechanism contract calls, network
// routing and caching behind one object.
//
// # Quick Start
//
//	cfg, err := config.LoadFile("clubs.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	clubs, err := sdk.NewSDK(context.Background(), cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer clubs.Close()
//
//	status, err := clubs.CheckMembership(ctx, "builders.eth", account)
//	var undetermined *membership.AggregateQueryError
//	switch {
//	case errors.As(err, &undetermined):
//		// deny: the chain could not be reached
//	case err != nil:
//		log.Fatal(err)
//	case status.Active(time.Now()):
//		fmt.Println(status) // temporary member until 2026-11-17T00:00:00Z
//	}
//
// # Membership
//
// CheckMembership goes through a short-TTL cache (Config.Cache.TTL) in front
// of the resolver, which queries permanent passes, subscriptions, token gates
// and cross-chain gates concurrently. Concurrent checks for the same club and
// account share one resolution.
//
// # Purchases
//
// PurchaseMembership reads the plan's price from the subscription contract,
// submits it as the transaction value, waits up to Config.Timeouts.ReceiptWait
// for the receipt and then drops the buyer's cached membership:
//
//	receipt, err := clubs.PurchaseMembership(ctx, "builders.eth", model.PlanQuarterly)
//
// QuotePlans shows the prices and discounts before buying:
//
//	quotes, _ := clubs.QuotePlans(ctx, "builders.eth")
//	for _, q := range quotes {
//		fmt.Println(q.Summary())
//	}
//
// # Token gates
//
// Club admins add gates with AddTokenGate, AddNFTGate, AddERC1155Gate and
// AddCrossChainTokenGate. Cached memberships are not dropped by gate
// changes; call MembershipCache().Purge() when they must apply at once.
//
// # Writes
//
// Writes need Config.PrivateKey and fail with ErrNoSigner without it. They
// are submitted once and never retried.
//
// # Logging
//
// The package installs a console zap logger at info level on import.
// Config.Debug raises it to debug; applications may replace it with
// zap.ReplaceGlobals.
package sdk
