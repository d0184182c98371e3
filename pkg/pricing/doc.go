// Package pricing turns raw on-chain membership prices into display values.
//
// All functions are pure. Prices are wei amounts as returned by
// getClubMembershipConditions; durations are seconds.
//
//	quotes, err := pricing.QuotePlans(conditions)
//	for _, q := range quotes {
//		fmt.Println(q.Summary()) // quarterly: 0.25 ETH for 3 months (16.7% off)
//	}
//
// DiscountPercent fails with ErrInvalidPricing when the base price is zero or
// a bundle is more expensive than its single periods; such data is reported
// rather than clamped.
package pricing
