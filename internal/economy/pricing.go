package economy

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinimumDeposit is the floor of any listing deposit, in copper.
const MinimumDeposit = 100

// maxRaise bounds a single bid to 120% of the current price.
var maxRaise = decimal.New(12, -1)

// ApplyPercent scales price by pct percent, truncating.
func ApplyPercent(price uint64, pct uint32) uint64 {
	return price * uint64(pct) / 100
}

// MinOutbid is the smallest increment that beats current: 5%, at least 1.
func MinOutbid(current uint64) uint64 {
	if o := current * 5 / 100; o > 0 {
		return o
	}
	return 1
}

// BidCeiling is the most the buyer accepts for a whole stack.
func BidCeiling(reference uint64, count uint32, multiplier uint32) uint64 {
	return reference * uint64(count) * uint64(multiplier)
}

// ComputeBid returns the buyer's next bid on a listing whose current price is
// current. The raise is a fraction (aggressiveness) of the gap to ceiling,
// capped at 1.2x current, truncated to whole copper and lifted to the
// minimum outbid.
func ComputeBid(current, ceiling uint64, aggressiveness float64) uint64 {
	cur := decimal.NewFromInt(int64(current))

	var raise decimal.Decimal
	if ceiling > current {
		raise = decimal.NewFromInt(int64(ceiling - current)).Mul(decimal.NewFromFloat(aggressiveness))
	}
	if limit := cur.Mul(maxRaise); raise.GreaterThan(limit) {
		raise = limit
	}

	bid := uint64(cur.Add(raise).IntPart())
	if floor := current + MinOutbid(current); bid < floor {
		bid = floor
	}
	return bid
}

// Deposit is the venue deposit rule: a percentage of the vendor sell price of
// the stack for every 12 hours of listing time.
func Deposit(percent uint32, duration time.Duration, t ItemTemplate, count uint32) uint64 {
	if t.SellPrice == 0 {
		return MinimumDeposit
	}
	periods := uint64(duration / (12 * time.Hour))
	d := t.SellPrice * uint64(count) * uint64(percent) * periods / 100
	if d < MinimumDeposit {
		return MinimumDeposit
	}
	return d
}

// SaleProceeds is what the seller receives for a sale: the price less the
// house cut, plus the returned deposit.
func SaleProceeds(price, deposit uint64, cutPercent uint32) uint64 {
	return price - ApplyPercent(price, cutPercent) + deposit
}
