// Package seller replenishes venue inventory. Each pass computes the venue's
// shortfall, spreads it over the quality tiers in proportion to each tier's
// deficit, and persists the new listings as one batch.
package seller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/auctionbot/internal/catalog"
	"github.com/talgya/auctionbot/internal/economy"
	"github.com/talgya/auctionbot/internal/entropy"
	"github.com/talgya/auctionbot/internal/venue"
)

// DefaultItemsPerCycle caps the listings created in one pass.
const DefaultItemsPerCycle = 200

// listingPeriod is the granularity of listing durations.
const listingPeriod = 12 * time.Hour

// Store is the persistence the seller needs.
type Store interface {
	// CountListings counts every listing in the venue not expired by now.
	CountListings(ctx context.Context, house venue.ID, now time.Time) (int, error)
	// InsertListings writes the listings and their backing items in one
	// transaction and fills in the assigned IDs.
	InsertListings(ctx context.Context, listings []*economy.Listing) error
}

// DepositFunc is the venue deposit rule.
type DepositFunc func(house venue.ID, d time.Duration, t economy.ItemTemplate, count uint32) uint64

// VenueDeposit charges the venue's deposit percentage of the vendor sell price.
func VenueDeposit(house venue.ID, d time.Duration, t economy.ItemTemplate, count uint32) uint64 {
	return economy.Deposit(house.DepositPercent(), d, t, count)
}

// Options configure the seller.
type Options struct {
	Enabled       bool
	ItemsPerCycle uint32
	UseBuyPrice   bool   // price from the vendor buy price instead of the sell price
	Owner         uint64 // character that owns the listings
	Deposit       DepositFunc
	Now           func() time.Time
}

// Engine creates listings. It is driven by the tick goroutine only.
type Engine struct {
	catalog *catalog.Index
	store   Store
	rng     *entropy.Rand
	opts    Options
}

// NewEngine creates a seller over the given catalog and store.
func NewEngine(idx *catalog.Index, store Store, rng *entropy.Rand, opts Options) *Engine {
	if opts.ItemsPerCycle == 0 {
		opts.ItemsPerCycle = DefaultItemsPerCycle
	}
	if opts.Deposit == nil {
		opts.Deposit = VenueDeposit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{catalog: idx, store: store, rng: rng, opts: opts}
}

// Enabled reports whether the seller runs.
func (e *Engine) Enabled() bool { return e.opts.Enabled }

// Disable turns the seller off, e.g. when the catalog has nothing to sell.
func (e *Engine) Disable() { e.opts.Enabled = false }

// ReplenishVenue runs one seller pass over the venue and returns how many
// listings it created. Occupancy counters change only after the batch is
// stored.
func (e *Engine) ReplenishVenue(ctx context.Context, p *venue.Profile) (int, error) {
	if !e.opts.Enabled {
		slog.Debug("seller disabled")
		return 0, nil
	}
	if p.MaxItems == 0 {
		slog.Debug("seller venue has no quota", "venue", p.Venue)
		return 0, nil
	}

	now := e.opts.Now()
	n, err := e.store.CountListings(ctx, p.Venue, now)
	if err != nil {
		return 0, fmt.Errorf("count listings for %s: %w", p.Venue, err)
	}
	current := uint32(n)

	if current >= p.EffectiveMinItems() {
		slog.Debug("seller venue above minimum", "venue", p.Venue, "listings", current)
		return 0, nil
	}
	if current >= p.MaxItems {
		slog.Debug("seller venue at maximum", "venue", p.Venue, "listings", current)
		return 0, nil
	}

	toCreate := min(e.opts.ItemsPerCycle, p.MaxItems-current)

	deficits := p.Deficits()
	var need uint32
	for i, d := range deficits {
		slog.Debug("seller tier", "venue", p.Venue, "tier", economy.Tier(i).String(),
			"have", p.Counts[economy.Tier(i)], "want", p.Target(economy.Tier(i)), "deficit", d)
		need += d
	}
	toCreate = min(toCreate, need)
	if toCreate == 0 {
		return 0, nil
	}

	slog.Debug("seller creating listings", "venue", p.Venue, "listings", current, "to_create", toCreate)

	var batch []*economy.Listing
	created := make(map[economy.Tier]uint32)

	for toCreate > 0 {
		tier, ok := e.pickTier(deficits)
		if !ok {
			break
		}

		want := min(toCreate, deficits[tier])
		ids := e.rng.SampleUint32(e.catalog.Bin(tier), int(want))
		got := uint32(len(ids))
		if got < want {
			// Bin exhausted; the tier cannot be filled further this pass.
			deficits[tier] = 0
		} else {
			deficits[tier] -= got
		}
		toCreate -= got

		for _, id := range ids {
			l, err := e.buildListing(p, id, now)
			if err != nil {
				slog.Warn("seller skipping item", "venue", p.Venue, "item", id, "error", err)
				continue
			}
			batch = append(batch, l)
			created[tier]++
		}
	}

	if len(batch) == 0 {
		return 0, nil
	}
	if err := e.store.InsertListings(ctx, batch); err != nil {
		return 0, fmt.Errorf("insert %d listings for %s: %w", len(batch), p.Venue, err)
	}

	for tier, c := range created {
		p.Increment(tier, c)
	}
	slog.Info("seller added listings", "venue", p.Venue, "created", len(batch))
	return len(batch), nil
}

// pickTier draws a tier weighted by deficit. With every weight zero it falls
// back to the first tier with a deficit, which is then none.
func (e *Engine) pickTier(deficits []uint32) (economy.Tier, bool) {
	if i, ok := e.rng.Weighted(deficits); ok && deficits[i] > 0 {
		return economy.Tier(i), true
	}
	for i, d := range deficits {
		if d > 0 {
			return economy.Tier(i), true
		}
	}
	return 0, false
}

func (e *Engine) buildListing(p *venue.Profile, id uint32, now time.Time) (*economy.Listing, error) {
	tmpl, ok := e.catalog.Template(id)
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, economy.ErrNotFound)
	}
	settings, err := p.Settings(tmpl.Quality)
	if err != nil {
		return nil, err
	}

	count := e.stackSize(tmpl, settings)

	ref := tmpl.ReferencePrice(e.opts.UseBuyPrice)
	if o, ok := e.catalog.OverriddenPrice(id, e.rng); ok {
		ref = o
	}
	buyout := economy.ApplyPercent(ref, uint32(e.rng.IntRange(uint64(settings.MinPrice), uint64(settings.MaxPrice))))
	bid := economy.ApplyPercent(buyout, uint32(e.rng.IntRange(uint64(settings.MinBidPrice), uint64(settings.MaxBidPrice))))

	duration := time.Duration(1+e.rng.IntRange(0, 3)) * listingPeriod

	return &economy.Listing{
		House:      uint32(p.Venue),
		ItemID:     id,
		Count:      count,
		Owner:      e.opts.Owner,
		StartBid:   bid * uint64(count),
		Buyout:     buyout * uint64(count),
		Deposit:    e.opts.Deposit(p.Venue, duration, tmpl, count),
		ExpireTime: now.Add(duration).Unix(),
	}, nil
}

// stackSize draws a stack in [1, min(item max, venue cap)]. Glyphs are
// always single.
func (e *Engine) stackSize(t economy.ItemTemplate, s *venue.QualitySettings) uint32 {
	if t.Class == economy.ClassGlyph {
		return 1
	}
	limit := t.StackLimit()
	if s.MaxStack > 0 {
		limit = min(limit, s.MaxStack)
	}
	return uint32(e.rng.IntRange(1, uint64(limit)))
}
