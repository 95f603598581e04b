package economy

import "fmt"

// Tier is a catalog bin: trade goods of a quality (0..6) or standard items
// of a quality (7..13).
type Tier uint8

// TierCount is the number of addressable bins.
const TierCount = 2 * QualityCount

// TierFor classifies an item. Only trade goods get the lower half of the bins.
func TierFor(q Quality, class ItemClass) (Tier, error) {
	if !q.Valid() {
		return 0, fmt.Errorf("quality %d: %w", uint8(q), ErrUnsupportedQuality)
	}
	if class == ClassTradeGoods {
		return Tier(q), nil
	}
	return Tier(q) + QualityCount, nil
}

// Valid reports whether t addresses a bin.
func (t Tier) Valid() bool { return t < TierCount }

// Quality returns the quality half of the tier.
func (t Tier) Quality() Quality { return Quality(t % QualityCount) }

// TradeGoods reports whether the tier holds trade goods.
func (t Tier) TradeGoods() bool { return t < QualityCount }

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier%d", uint8(t))
	}
	if t.TradeGoods() {
		return t.Quality().Color() + " trade goods"
	}
	return t.Quality().Color() + " items"
}

// Tiers returns every tier in enumeration order.
func Tiers() []Tier {
	tiers := make([]Tier, TierCount)
	for i := range tiers {
		tiers[i] = Tier(i)
	}
	return tiers
}
