// Package buyer bids on listings placed by other participants. Candidates
// are fetched asynchronously; bids are settled on a later tick, one
// transaction per listing.
package buyer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/talgya/auctionbot/internal/catalog"
	"github.com/talgya/auctionbot/internal/economy"
	"github.com/talgya/auctionbot/internal/entropy"
	"github.com/talgya/auctionbot/internal/query"
	"github.com/talgya/auctionbot/internal/venue"
)

// Store is the persistence the buyer needs.
type Store interface {
	// CandidateListings returns IDs of listings in the venue that have not
	// expired by now, that the bot neither owns nor has bid on, and that
	// nobody has bid on yet.
	CandidateListings(ctx context.Context, house venue.ID, bot uint64, now time.Time) ([]uint32, error)
	Listing(ctx context.Context, id uint32) (economy.Listing, error)
	Item(ctx context.Context, guid uint64) (economy.ItemInstance, error)
	// PlaceBid records a standing bid and notifies the outbid bidder. Both
	// PlaceBid and Buyout refuse an auction expired by b.At.
	PlaceBid(ctx context.Context, b economy.Bid) error
	// Buyout completes the sale at b.Amount: outbid, sold and won mails,
	// item to the buyer, listing removed.
	Buyout(ctx context.Context, b economy.Bid) error
}

// ProfileLookup returns the live profile of a venue.
type ProfileLookup func(venue.ID) (*venue.Profile, bool)

// Options configure the buyer.
type Options struct {
	Enabled     bool
	UseBuyPrice bool   // value items at the vendor buy price instead of the sell price
	Bidder      uint64 // character placing the bids
	Now         func() time.Time
}

// Totals counts what the buyer has done since start.
type Totals struct {
	Bids    int64 `json:"bids"`
	Buyouts int64 `json:"buyouts"`
	Skipped int64 `json:"skipped"`
	Failed  int64 `json:"failed"`
}

// Engine places bids. PlaceBids and the delivered callbacks run on the tick
// goroutine.
type Engine struct {
	catalog  *catalog.Index
	store    Store
	rng      *entropy.Rand
	queries  *query.Processor
	profiles ProfileLookup
	opts     Options

	bids, buyouts, skipped, failed atomic.Int64
}

// NewEngine creates a buyer.
func NewEngine(idx *catalog.Index, store Store, rng *entropy.Rand, queries *query.Processor, profiles ProfileLookup, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		catalog:  idx,
		store:    store,
		rng:      rng,
		queries:  queries,
		profiles: profiles,
		opts:     opts,
	}
}

// Enabled reports whether the buyer runs.
func (e *Engine) Enabled() bool { return e.opts.Enabled }

// Totals returns the running counters.
func (e *Engine) Totals() Totals {
	return Totals{
		Bids:    e.bids.Load(),
		Buyouts: e.buyouts.Load(),
		Skipped: e.skipped.Load(),
		Failed:  e.failed.Load(),
	}
}

// PlaceBids issues the candidate query for the venue. The bids themselves
// are placed when the result is delivered on a later tick. It reports
// whether a query was issued.
func (e *Engine) PlaceBids(ctx context.Context, p *venue.Profile, tick uint64) bool {
	if !e.opts.Enabled {
		slog.Debug("buyer disabled")
		return false
	}
	if p.BidsPerInterval == 0 {
		return false
	}

	house, gen, now := p.Venue, p.Generation, e.opts.Now()
	query.Submit(e.queries, ctx, tick,
		func(ctx context.Context) ([]uint32, error) {
			return e.store.CandidateListings(ctx, house, e.opts.Bidder, now)
		},
		func(ids []uint32, err error) {
			e.settle(ctx, house, gen, ids, err)
		})
	return true
}

func (e *Engine) settle(ctx context.Context, house venue.ID, gen uint64, ids []uint32, err error) {
	if err != nil {
		slog.Warn("buyer candidate query failed", "venue", house, "error", err)
		return
	}
	p, ok := e.profiles(house)
	if !ok || p.Generation != gen {
		slog.Debug("buyer dropping stale candidates", "venue", house, "generation", gen)
		return
	}
	if len(ids) == 0 {
		return
	}

	picked := e.rng.SampleUint32(ids, int(p.BidsPerInterval))
	slog.Debug("buyer bidding", "venue", house, "candidates", len(ids), "picked", len(picked))

	for _, id := range picked {
		err := e.bidOn(ctx, p, id)
		switch {
		case err == nil:
		case errors.Is(err, economy.ErrNotFound):
			e.skipped.Add(1)
			slog.Debug("buyer listing gone", "venue", house, "auction", id)
		case errors.Is(err, errSkip):
			e.skipped.Add(1)
			slog.Debug("buyer skipped listing", "venue", house, "auction", id, "reason", err)
		default:
			e.failed.Add(1)
			slog.Warn("buyer bid failed", "venue", house, "auction", id, "error", err)
		}
	}
}

var errSkip = errors.New("no acceptable bid")

func (e *Engine) bidOn(ctx context.Context, p *venue.Profile, id uint32) error {
	l, err := e.store.Listing(ctx, id)
	if err != nil {
		return fmt.Errorf("load auction %d: %w", id, err)
	}
	if l.House != uint32(p.Venue) || l.Owner == e.opts.Bidder || l.Bidder == e.opts.Bidder {
		return fmt.Errorf("auction %d not a candidate: %w", id, errSkip)
	}
	now := e.opts.Now()
	if !l.Expires().After(now) {
		return fmt.Errorf("auction %d expired: %w", id, economy.ErrNotFound)
	}
	item, err := e.store.Item(ctx, l.ItemGUID)
	if err != nil {
		return fmt.Errorf("load item %d: %w", l.ItemGUID, err)
	}
	tmpl, ok := e.catalog.Template(l.ItemID)
	if !ok {
		return fmt.Errorf("item template %d: %w", l.ItemID, economy.ErrNotFound)
	}

	tier, err := tmpl.Tier()
	if err != nil {
		return fmt.Errorf("%w: %v", errSkip, err)
	}
	settings, err := p.Settings(tmpl.Quality)
	if err != nil {
		return fmt.Errorf("%w: %v", errSkip, err)
	}
	if tmpl.Class == economy.ClassProjectile {
		return fmt.Errorf("ammunition: %w", errSkip)
	}

	ref := tmpl.ReferencePrice(e.opts.UseBuyPrice)
	if o, ok := e.catalog.OverriddenPrice(tmpl.ID, e.rng); ok {
		ref = o
	}

	current := l.CurrentPrice()
	ceiling := economy.BidCeiling(ref, item.Count, settings.BuyerPrice)
	if current >= ceiling {
		return fmt.Errorf("price %d at or above ceiling %d: %w", current, ceiling, errSkip)
	}

	amount := economy.ComputeBid(current, ceiling, e.rng.FloatRange(0.01, 1.0))
	bid := economy.Bid{Listing: l, Bidder: e.opts.Bidder, Amount: amount, At: now}

	if l.Buyout == 0 || amount < l.Buyout {
		if err := e.store.PlaceBid(ctx, bid); err != nil {
			return fmt.Errorf("bid on auction %d: %w", id, err)
		}
		e.bids.Add(1)
		slog.Debug("buyer placed bid", "venue", p.Venue, "auction", id, "current", current, "ceiling", ceiling, "bid", amount)
		return nil
	}

	bid.Amount = l.Buyout
	if err := e.store.Buyout(ctx, bid); err != nil {
		return fmt.Errorf("buy out auction %d: %w", id, err)
	}
	p.Decrement(tier)
	e.buyouts.Add(1)
	slog.Info("buyer bought out auction", "venue", p.Venue, "auction", id, "item", l.ItemID, "price", l.Buyout)
	return nil
}
