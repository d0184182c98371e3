package pricing

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/clubs-network/clubs-sdk-go/pkg/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidPricing signals inconsistent on-chain price data: a zero base
// price or a bundle that costs more than its parts.
var ErrInvalidPricing = errors.New("invalid pricing")

var (
	hundred  = decimal.NewFromInt(100)
	weiScale = decimal.New(1, 18)
)

// DiscountPercent returns the discount of a bundle against buying units
// single periods at unitPrice, in percent: (unit*units - bundle) / (unit*units) * 100.
func DiscountPercent(unitPrice, bundlePrice *big.Int, units int64) (decimal.Decimal, error) {
	if unitPrice == nil || bundlePrice == nil {
		return decimal.Zero, fmt.Errorf("%w: missing price", ErrInvalidPricing)
	}
	total := decimal.NewFromBigInt(unitPrice, 0).Mul(decimal.NewFromInt(units))
	bundle := decimal.NewFromBigInt(bundlePrice, 0)
	if total.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: base price %s x %d is not positive", ErrInvalidPricing, unitPrice, units)
	}
	if bundle.GreaterThan(total) {
		return decimal.Zero, fmt.Errorf("%w: bundle %s exceeds %s", ErrInvalidPricing, bundle, total)
	}

	pct := total.Sub(bundle).Div(total).Mul(hundred)
	if pct.LessThan(decimal.Zero) {
		return decimal.Zero, nil
	}
	if pct.GreaterThan(hundred) {
		return hundred, nil
	}
	return pct, nil
}

// WeiToEther converts a wei amount to ether with 18 digits of precision.
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, 0).DivRound(weiScale, 18)
}

// EtherToWei converts an ether amount to wei. Supported inputs are string,
// float64, int, int64, decimal.Decimal and *decimal.Decimal. Fractions of a
// wei are truncated.
func EtherToWei(amount any) (*big.Int, error) {
	var d decimal.Decimal
	switch v := amount.(type) {
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			zap.L().Error("Failed to convert string to decimal", zap.Error(err))
			return nil, err
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return nil, errors.New("nil amount")
		}
		d = *v
	default:
		return nil, fmt.Errorf("unsupported amount type %T", amount)
	}
	return d.Mul(weiScale).BigInt(), nil
}

// FormatEther renders a wei amount as ether, e.g. "0.05 ETH".
func FormatEther(wei *big.Int) string {
	return WeiToEther(wei).String() + " ETH"
}

// FormatPercent renders d with a fixed number of decimal places, e.g. "16.7%".
func FormatPercent(d decimal.Decimal, places int32) string {
	return d.StringFixed(places) + "%"
}

// Quote is a display-ready offer for one plan.
type Quote struct {
	Plan       model.Plan      `json:"plan"`
	PriceWei   *big.Int        `json:"price_wei"`
	PriceEther decimal.Decimal `json:"price_ether"`
	// Covers is the subscription length bought, in seconds.
	Covers *big.Int `json:"covers"`
	// Discount against paying the monthly price for every month covered.
	Discount decimal.Decimal `json:"discount"`
}

// Summary renders the quote on one line, e.g. "quarterly: 0.25 ETH for 3 months (16.7% off)".
func (q Quote) Summary() string {
	s := fmt.Sprintf("%s: %s for %s", q.Plan, FormatEther(q.PriceWei), HumanizeDuration(q.Covers))
	if q.Discount.IsPositive() {
		s += fmt.Sprintf(" (%s off)", FormatPercent(q.Discount, 1))
	}
	return s
}

// QuotePlans builds quotes for every plan of a club. A club whose prices are
// all zero is free and gets zero discounts.
func QuotePlans(c model.MembershipConditions) ([]Quote, error) {
	quotes := make([]Quote, 0, len(model.Plans))
	for _, p := range model.Plans {
		price := c.Price(p)
		if price == nil {
			price = new(big.Int)
		}

		discount := decimal.Zero
		if price.Sign() > 0 || (c.MonthlyPrice != nil && c.MonthlyPrice.Sign() > 0) {
			d, err := DiscountPercent(c.MonthlyPrice, price, p.Units())
			if err != nil {
				return nil, fmt.Errorf("%s plan: %w", p, err)
			}
			discount = d
		}

		covers := new(big.Int)
		if c.Duration != nil {
			covers.Mul(c.Duration, big.NewInt(p.Units()))
		}
		quotes = append(quotes, Quote{
			Plan:       p,
			PriceWei:   new(big.Int).Set(price),
			PriceEther: WeiToEther(price),
			Covers:     covers,
			Discount:   discount,
		})
	}
	return quotes, nil
}
