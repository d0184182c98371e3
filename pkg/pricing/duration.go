package pricing

import (
	"fmt"
	"math/big"
)

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
	month  = 30 * day
	year   = 365 * day
)

var durationUnits = []struct {
	seconds int64
	name    string
}{
	{year, "year"},
	{month, "month"},
	{day, "day"},
	{hour, "hour"},
	{minute, "minute"},
	{1, "second"},
}

// HumanizeDuration renders an on-chain duration in seconds using the largest
// unit that divides it exactly. Months are 30 days and only used from two
// months up, so a 30-day period reads "30 days".
func HumanizeDuration(seconds *big.Int) string {
	if seconds == nil || seconds.Sign() <= 0 {
		return "0 seconds"
	}
	if !seconds.IsInt64() {
		return seconds.String() + " seconds"
	}
	s := seconds.Int64()
	for _, u := range durationUnits {
		if s%u.seconds != 0 {
			continue
		}
		n := s / u.seconds
		if u.seconds == month && n < 2 {
			continue
		}
		return plural(n, u.name)
	}
	return plural(s, "second")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
