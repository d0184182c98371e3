// Package gate puts club membership in front of gRPC services.
//
// Servers install the interceptors with a membership checker:
//
//	c := cache.New(resolver, cache.Options{ChainID: cfg.HomeChainID})
//	srv := grpc.NewServer(
//		grpc.UnaryInterceptor(gate.UnaryServerInterceptor(gate.CheckerFunc(c.Get), gate.Options{
//			Club:  "builders.eth",
//			Allow: []string{"/grpc.health.v1.Health/Check"},
//		})),
//	)
//
// Clients prove control of their address with signed headers:
//
//	creds, _ := gate.NewCredentials("builders.eth", key)
//	conn, _ := creds.Dial("https://api.example.com:443")
//
// # Headers
//
//   - x-club-id: club identifier (ignored when Options.Club is set)
//   - x-account-address: caller's address
//   - x-club-timestamp: unix seconds of the signature
//   - x-club-signature-bin: personal-sign signature of
//     concat("__club_access", club, address, timestamp)
//
// Status codes: Unauthenticated for missing or bad headers, PermissionDenied
// for non-members, Unavailable when membership could not be determined.
package gate
