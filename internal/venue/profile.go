package venue

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/talgya/auctionbot/internal/economy"
)

// QualitySettings are the per-quality price and stack parameters. Price
// fields are percentages of the reference price (buyout) or of the buyout
// (bid).
type QualitySettings struct {
	MinPrice    uint32 `json:"min_price"`
	MaxPrice    uint32 `json:"max_price"`
	MinBidPrice uint32 `json:"min_bid_price"`
	MaxBidPrice uint32 `json:"max_bid_price"`
	MaxStack    uint32 `json:"max_stack"`   // 0 = no override
	BuyerPrice  uint32 `json:"buyer_price"` // ceiling multiplier
}

// Profile is one venue's configuration plus its occupancy counters.
type Profile struct {
	Venue    ID     `json:"venue"`
	MinItems uint32 `json:"min_items"`
	MaxItems uint32 `json:"max_items"`

	Percent map[economy.Tier]uint32              `json:"percent"`
	Quality map[economy.Quality]*QualitySettings `json:"quality"`
	Counts  map[economy.Tier]uint32              `json:"counts"`

	BiddingInterval time.Duration `json:"bidding_interval"` // 0 bids every tick
	BidsPerInterval uint32        `json:"bids_per_interval"`

	// LastBid is when the buyer last ran for this venue.
	LastBid time.Time `json:"last_bid"`

	// Generation changes on every reload. Async work issued against an older
	// generation is discarded.
	Generation uint64 `json:"generation"`
}

// NewProfile returns an empty profile with every tier and quality present.
func NewProfile(id ID) *Profile {
	p := &Profile{
		Venue:   id,
		Percent: make(map[economy.Tier]uint32, economy.TierCount),
		Quality: make(map[economy.Quality]*QualitySettings, economy.QualityCount),
		Counts:  make(map[economy.Tier]uint32, economy.TierCount),
	}
	for _, t := range economy.Tiers() {
		p.Percent[t] = 0
		p.Counts[t] = 0
	}
	for q := economy.Quality(0); q < economy.QualityCount; q++ {
		p.Quality[q] = &QualitySettings{}
	}
	return p
}

var (
	defaultTradeGoodsPercent = [economy.QualityCount]uint32{0, 27, 12, 10, 1, 0, 0}
	defaultItemsPercent      = [economy.QualityCount]uint32{0, 10, 30, 8, 2, 0, 0}
	defaultMinPrice          = [economy.QualityCount]uint32{100, 150, 800, 1250, 2250, 3250, 5250}
	defaultMaxPrice          = [economy.QualityCount]uint32{150, 250, 1400, 1750, 4550, 5550, 6550}
	defaultBuyerPrice        = [economy.QualityCount]uint32{1, 3, 5, 12, 15, 20, 22}
)

// DefaultProfile returns the stock configuration for a venue. Item quotas
// start at zero so a fresh install lists nothing until an admin sets them.
func DefaultProfile(id ID) *Profile {
	p := NewProfile(id)
	for q := economy.Quality(0); q < economy.QualityCount; q++ {
		p.Percent[economy.Tier(q)] = defaultTradeGoodsPercent[q]
		p.Percent[economy.Tier(q)+economy.QualityCount] = defaultItemsPercent[q]
		*p.Quality[q] = QualitySettings{
			MinPrice:    defaultMinPrice[q],
			MaxPrice:    defaultMaxPrice[q],
			MinBidPrice: 70,
			MaxBidPrice: 100,
			BuyerPrice:  defaultBuyerPrice[q],
		}
	}
	p.BiddingInterval = time.Minute
	p.BidsPerInterval = 1
	return p
}

// Settings returns the settings of quality q.
func (p *Profile) Settings(q economy.Quality) (*QualitySettings, error) {
	s, ok := p.Quality[q]
	if !ok || s == nil {
		return nil, fmt.Errorf("venue %s quality %d: %w", p.Venue, uint8(q), economy.ErrUnsupportedQuality)
	}
	return s, nil
}

// EffectiveMinItems is the replenish threshold. Zero or a value above the
// maximum means the maximum.
func (p *Profile) EffectiveMinItems() uint32 {
	if p.MaxItems > 0 && (p.MinItems == 0 || p.MinItems > p.MaxItems) {
		return p.MaxItems
	}
	return p.MinItems
}

// Target is the quota of tier t: its percentage of MaxItems, truncated.
func (p *Profile) Target(t economy.Tier) uint32 {
	return uint32(uint64(p.Percent[t]) * uint64(p.MaxItems) / 100)
}

// Deficits returns max(0, target-count) for every tier in tier order.
func (p *Profile) Deficits() []uint32 {
	out := make([]uint32, economy.TierCount)
	for _, t := range economy.Tiers() {
		if target, have := p.Target(t), p.Counts[t]; have < target {
			out[t] = target - have
		}
	}
	return out
}

// TotalCount is the number of listings the counters account for.
func (p *Profile) TotalCount() uint32 {
	var n uint32
	for _, c := range p.Counts {
		n += c
	}
	return n
}

// Increment adds n listings to tier t.
func (p *Profile) Increment(t economy.Tier, n uint32) {
	if t.Valid() {
		p.Counts[t] += n
	}
}

// Decrement removes one listing from tier t, never going below zero.
func (p *Profile) Decrement(t economy.Tier) {
	if t.Valid() && p.Counts[t] > 0 {
		p.Counts[t]--
	}
}

// ResetCounts zeroes every occupancy counter.
func (p *Profile) ResetCounts() {
	for _, t := range economy.Tiers() {
		p.Counts[t] = 0
	}
}

// Reconcile recomputes the occupancy counters from the venue's live
// listings, discarding the previous values. It returns how many listings
// could not be classified.
func (p *Profile) Reconcile(listings []economy.Listing, lookup func(uint32) (economy.ItemTemplate, bool)) int {
	p.ResetCounts()
	skipped := 0
	for _, l := range listings {
		tmpl, ok := lookup(l.ItemID)
		if !ok {
			skipped++
			continue
		}
		tier, err := tmpl.Tier()
		if err != nil {
			skipped++
			continue
		}
		p.Counts[tier]++
	}
	return skipped
}

// Validate checks the profile is complete and its ranges are ordered.
func (p *Profile) Validate() error {
	var errs []error
	if !p.Venue.Valid() {
		errs = append(errs, fmt.Errorf("venue %d: %w", uint32(p.Venue), ErrUnknownVenue))
	}
	for _, t := range economy.Tiers() {
		if _, ok := p.Percent[t]; !ok {
			errs = append(errs, fmt.Errorf("percent for %s missing", t))
		}
	}
	for q := economy.Quality(0); q < economy.QualityCount; q++ {
		s, err := p.Settings(q)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", q.Color(), err))
		}
	}
	for q := range p.Quality {
		if !q.Valid() {
			errs = append(errs, fmt.Errorf("quality %d: %w", uint8(q), economy.ErrUnsupportedQuality))
		}
	}
	return errors.Join(errs...)
}

func (s *QualitySettings) validate() error {
	if s.MinPrice > s.MaxPrice {
		return fmt.Errorf("min price %d above max price %d", s.MinPrice, s.MaxPrice)
	}
	if s.MinBidPrice > s.MaxBidPrice {
		return fmt.Errorf("min bid price %d above max bid price %d", s.MinBidPrice, s.MaxBidPrice)
	}
	return nil
}

// Clone returns a deep copy, used by the status endpoint.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Percent = maps.Clone(p.Percent)
	c.Counts = maps.Clone(p.Counts)
	c.Quality = make(map[economy.Quality]*QualitySettings, len(p.Quality))
	for k, v := range p.Quality {
		s := *v
		c.Quality[k] = &s
	}
	return &c
}
