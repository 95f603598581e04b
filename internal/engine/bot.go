package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/auctionbot/internal/buyer"
	"github.com/talgya/auctionbot/internal/catalog"
	"github.com/talgya/auctionbot/internal/economy"
	"github.com/talgya/auctionbot/internal/entropy"
	"github.com/talgya/auctionbot/internal/query"
	"github.com/talgya/auctionbot/internal/seller"
	"github.com/talgya/auctionbot/internal/venue"
)

// Store is everything the bot persists or reads.
type Store interface {
	catalog.Source
	seller.Store
	buyer.Store

	EnsureVenue(ctx context.Context, p *venue.Profile) (bool, error)
	LoadProfile(ctx context.Context, id venue.ID) (*venue.Profile, error)
	VenueListings(ctx context.Context, house venue.ID, now time.Time) ([]economy.Listing, error)
	SaveProfileField(ctx context.Context, id venue.ID, column string, value uint32) error
	SavePercentages(ctx context.Context, id venue.ID, pct [economy.TierCount]uint32) error
	ExpireListings(ctx context.Context, house venue.ID, owner uint64, class *economy.ItemClass, now time.Time) (int, error)
	SweepExpired(ctx context.Context, now time.Time) (map[venue.ID]int, error)
}

// Options configure the bot.
type Options struct {
	EnableSeller         bool
	EnableBuyer          bool
	UseBuyPriceForSeller bool
	UseBuyPriceForBuyer  bool
	Account              uint32
	GUID                 uint64 // character owning listings and placing bids
	ItemsPerCycle        uint32
	AllowTwoSide         bool
	Now                  func() time.Time
}

// Bot owns the catalog, the venue profiles and both engines. Ticks and
// admin operations are serialized by mu, so configuration changes land
// between ticks.
type Bot struct {
	mu sync.Mutex

	store   Store
	opts    Options
	catalog *catalog.Index
	seller  *seller.Engine
	buyer   *buyer.Engine
	queries *query.Processor

	profiles map[venue.ID]*venue.Profile
	active   bool

	lastTick uint64
	created  int64
}

// NewBot wires the engines. Call Load before the first tick.
func NewBot(store Store, rng *entropy.Rand, opts Options) *Bot {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	b := &Bot{
		store:    store,
		opts:     opts,
		catalog:  catalog.NewIndex(store),
		queries:  query.NewProcessor(),
		profiles: make(map[venue.ID]*venue.Profile),
	}
	b.seller = seller.NewEngine(b.catalog, store, rng, seller.Options{
		Enabled:       opts.EnableSeller,
		ItemsPerCycle: opts.ItemsPerCycle,
		UseBuyPrice:   opts.UseBuyPriceForSeller,
		Owner:         opts.GUID,
		Now:           opts.Now,
	})
	// The lookup runs inside Tick, which already holds mu.
	b.buyer = buyer.NewEngine(b.catalog, store, rng, b.queries, b.profile, buyer.Options{
		Enabled:     opts.EnableBuyer,
		UseBuyPrice: opts.UseBuyPriceForBuyer,
		Bidder:      opts.GUID,
		Now:         opts.Now,
	})
	return b
}

// Load initializes the catalog, then seeds, loads and reconciles every
// venue profile. A catalog with nothing to sell disables the seller.
func (b *Bot) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.catalog.Initialize(ctx); err != nil {
		return err
	}
	if !b.catalog.BuildBins() {
		slog.Error("seller disabled: catalog has no sellable items")
		b.seller.Disable()
	}

	for _, id := range venue.All() {
		seeded, err := b.store.EnsureVenue(ctx, venue.DefaultProfile(id))
		if err != nil {
			return err
		}
		if seeded {
			slog.Info("venue config seeded with defaults", "venue", id)
		}
		if err := b.reload(ctx, id); err != nil {
			return err
		}
	}

	b.active = b.checkOwner()
	return nil
}

func (b *Bot) checkOwner() bool {
	if !b.seller.Enabled() && !b.buyer.Enabled() {
		slog.Info("bot idle: seller and buyer both disabled")
		return false
	}
	if b.opts.Account == 0 || b.opts.GUID == 0 {
		slog.Error("bot idle: owner account or character not configured",
			"account", b.opts.Account, "guid", b.opts.GUID)
		return false
	}
	return true
}

// profile is the buyer's lookup; callers hold mu.
func (b *Bot) profile(id venue.ID) (*venue.Profile, bool) {
	p, ok := b.profiles[id]
	return p, ok
}

// order is the sequence venues are processed in. With two-sided trade the
// faction venues are not served.
func (b *Bot) order() []venue.ID {
	if b.opts.AllowTwoSide {
		return []venue.ID{venue.Neutral}
	}
	return []venue.ID{venue.Alliance, venue.Horde, venue.Neutral}
}

// Tick runs one pass: for each venue the seller then, when its cooldown
// has elapsed, the buyer. Candidate results from earlier ticks are settled
// last. Failures are logged and confined to the venue.
func (b *Bot) Tick(ctx context.Context, tick uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastTick = tick
	if !b.active {
		return
	}

	now := b.opts.Now()
	for _, id := range b.order() {
		p, ok := b.profiles[id]
		if !ok {
			continue
		}

		if b.seller.Enabled() {
			if err := b.refresh(ctx, p, now); err != nil {
				slog.Warn("occupancy refresh failed", "venue", id, "error", err)
			}
			n, err := b.seller.ReplenishVenue(ctx, p)
			if err != nil {
				slog.Warn("seller pass failed", "venue", id, "error", err)
			}
			b.created += int64(n)
		}

		if b.buyer.Enabled() && now.Sub(p.LastBid) >= p.BiddingInterval {
			if b.buyer.PlaceBids(ctx, p, tick) {
				p.LastBid = now
			}
		}
	}

	if n := b.queries.ProcessReady(tick); n > 0 {
		slog.Debug("candidate results settled", "tick", tick, "count", n)
	}
}

// Sweep closes expired auctions and reconciles the venues that lost
// listings.
func (b *Bot) Sweep(ctx context.Context) (map[venue.ID]int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sweep(ctx)
}

func (b *Bot) sweep(ctx context.Context) (map[venue.ID]int, error) {
	closed, err := b.store.SweepExpired(ctx, b.opts.Now())
	if err != nil {
		return nil, fmt.Errorf("sweep expired auctions: %w", err)
	}
	for id, n := range closed {
		slog.Info("expired auctions closed", "venue", id, "count", n)
		if p, ok := b.profiles[id]; ok {
			if err := b.reconcile(ctx, p); err != nil {
				slog.Warn("reconcile after sweep failed", "venue", id, "error", err)
			}
		}
	}
	return closed, nil
}

// Reload rereads a venue's configuration from the store and recounts its
// listings. Candidate results issued before the reload are discarded.
func (b *Bot) Reload(ctx context.Context, id venue.ID) error {
	if !id.Valid() {
		return fmt.Errorf("venue %d: %w", uint32(id), venue.ErrUnknownVenue)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reload(ctx, id)
}

func (b *Bot) reload(ctx context.Context, id venue.ID) error {
	p, err := b.store.LoadProfile(ctx, id)
	if err != nil {
		return err
	}
	if old, ok := b.profiles[id]; ok {
		p.Generation = old.Generation + 1
		p.LastBid = old.LastBid
	} else {
		// The first bid waits one interval after load.
		p.LastBid = b.opts.Now()
	}
	if err := b.reconcile(ctx, p); err != nil {
		return err
	}
	b.profiles[id] = p

	slog.Info("venue loaded", "venue", id, "listings", p.TotalCount(),
		"min_items", p.MinItems, "max_items", p.MaxItems, "generation", p.Generation)
	return nil
}

// reconcile recomputes p's occupancy counters from the venue's unexpired
// listings.
func (b *Bot) reconcile(ctx context.Context, p *venue.Profile) error {
	listings, err := b.store.VenueListings(ctx, p.Venue, b.opts.Now())
	if err != nil {
		return fmt.Errorf("scan venue %s: %w", p.Venue, err)
	}
	if skipped := p.Reconcile(listings, b.catalog.Template); skipped > 0 {
		slog.Warn("listings with unknown items not counted", "venue", p.Venue, "count", skipped)
	}
	return nil
}

// refresh reconciles p when the venue's live listing count no longer
// matches its counters, e.g. after listings expired or sold elsewhere.
func (b *Bot) refresh(ctx context.Context, p *venue.Profile, now time.Time) error {
	n, err := b.store.CountListings(ctx, p.Venue, now)
	if err != nil {
		return fmt.Errorf("count listings for %s: %w", p.Venue, err)
	}
	if uint32(n) == p.TotalCount() {
		return nil
	}
	slog.Debug("venue occupancy drifted", "venue", p.Venue, "listings", n, "counted", p.TotalCount())
	return b.reconcile(ctx, p)
}

// lookup returns a venue's live profile; callers hold mu.
func (b *Bot) lookup(id venue.ID) (*venue.Profile, error) {
	p, ok := b.profiles[id]
	if !ok {
		return nil, fmt.Errorf("venue %d: %w", uint32(id), venue.ErrUnknownVenue)
	}
	return p, nil
}

// Profile returns a copy of a venue's profile.
func (b *Bot) Profile(id venue.ID) (*venue.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Wait blocks until outstanding candidate queries have returned.
func (b *Bot) Wait(ctx context.Context) error {
	return b.queries.Wait(ctx)
}

// VenueStatus summarizes one venue.
type VenueStatus struct {
	Venue      string            `json:"venue"`
	ID         uint32            `json:"id"`
	Listings   uint32            `json:"listings"`
	MinItems   uint32            `json:"min_items"`
	MaxItems   uint32            `json:"max_items"`
	Counts     map[string]uint32 `json:"counts"`
	Deficits   map[string]uint32 `json:"deficits"`
	LastBid    time.Time         `json:"last_bid"`
	Generation uint64            `json:"generation"`
}

// Status is a snapshot of the bot.
type Status struct {
	Tick           uint64         `json:"tick"`
	Active         bool           `json:"active"`
	SellerEnabled  bool           `json:"seller_enabled"`
	BuyerEnabled   bool           `json:"buyer_enabled"`
	ListingsMade   int64          `json:"listings_created"`
	Buyer          buyer.Totals   `json:"buyer"`
	PendingQueries int            `json:"pending_queries"`
	CatalogBins    map[string]int `json:"catalog_bins"`
	Venues         []VenueStatus  `json:"venues"`
}

// Status returns a snapshot for the API.
func (b *Bot) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Status{
		Tick:           b.lastTick,
		Active:         b.active,
		SellerEnabled:  b.seller.Enabled(),
		BuyerEnabled:   b.buyer.Enabled(),
		ListingsMade:   b.created,
		Buyer:          b.buyer.Totals(),
		PendingQueries: b.queries.Pending(),
		CatalogBins:    make(map[string]int, economy.TierCount),
	}
	sizes := b.catalog.BinSizes()
	for _, t := range economy.Tiers() {
		s.CatalogBins[t.String()] = sizes[t]
	}

	for _, id := range venue.All() {
		p, ok := b.profiles[id]
		if !ok {
			continue
		}
		vs := VenueStatus{
			Venue:      id.String(),
			ID:         uint32(id),
			Listings:   p.TotalCount(),
			MinItems:   p.EffectiveMinItems(),
			MaxItems:   p.MaxItems,
			Counts:     make(map[string]uint32, economy.TierCount),
			Deficits:   make(map[string]uint32, economy.TierCount),
			LastBid:    p.LastBid,
			Generation: p.Generation,
		}
		deficits := p.Deficits()
		for _, t := range economy.Tiers() {
			vs.Counts[t.String()] = p.Counts[t]
			vs.Deficits[t.String()] = deficits[t]
		}
		s.Venues = append(s.Venues, vs)
	}
	return s
}
