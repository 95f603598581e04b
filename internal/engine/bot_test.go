package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/auctionbot/internal/economy"
	"github.com/talgya/auctionbot/internal/entropy"
	"github.com/talgya/auctionbot/internal/persistence"
	"github.com/talgya/auctionbot/internal/venue"
)

const (
	botAccount = 1
	botGUID    = 77
	player     = 500
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// catalogFixture has 30 white trade goods and 30 green armour pieces; with
// the default percentages and a quota of 100 the seller can fill exactly
// 27 + 30 listings.
func catalogFixture() []economy.ItemTemplate {
	var ts []economy.ItemTemplate
	for i := uint32(0); i < 30; i++ {
		ts = append(ts,
			economy.ItemTemplate{ID: 1000 + i, Name: "cloth", Class: economy.ClassTradeGoods, Quality: economy.QualityNormal,
				BuyPrice: 400, SellPrice: 100, MaxStack: 20, Sellable: true},
			economy.ItemTemplate{ID: 2000 + i, Name: "armour", Class: economy.ClassArmor, Quality: economy.QualityUncommon,
				BuyPrice: 2000, SellPrice: 500, MaxStack: 1, Sellable: true},
		)
	}
	return ts
}

func newTestBot(t *testing.T, opts Options) (*Bot, *persistence.DB) {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "ahbot.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.UpsertItemTemplates(context.Background(), catalogFixture()); err != nil {
		t.Fatalf("UpsertItemTemplates: %v", err)
	}

	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	b := NewBot(db, entropy.New(1), opts)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { b.Wait(context.Background()) })
	return b, db
}

func defaultOpts() Options {
	return Options{
		EnableSeller:  true,
		EnableBuyer:   true,
		Account:       botAccount,
		GUID:          botGUID,
		ItemsPerCycle: 200,
	}
}

func setMax(t *testing.T, b *Bot, id venue.ID, n uint32) {
	t.Helper()
	if err := b.SetField(context.Background(), id, venue.Change{Field: venue.FieldMaxItems, Value: n}); err != nil {
		t.Fatalf("SetField maxitems: %v", err)
	}
}

func count(t *testing.T, db *persistence.DB, id venue.ID) int {
	t.Helper()
	n, err := db.CountListings(context.Background(), id, fixedNow)
	if err != nil {
		t.Fatalf("CountListings: %v", err)
	}
	return n
}

func venueStatus(t *testing.T, b *Bot, id venue.ID) VenueStatus {
	t.Helper()
	for _, vs := range b.Status().Venues {
		if vs.ID == uint32(id) {
			return vs
		}
	}
	t.Fatalf("venue %s missing from status", id)
	return VenueStatus{}
}

func TestLoad_SeedsVenues(t *testing.T) {
	b, db := newTestBot(t, defaultOpts())
	ctx := context.Background()

	for _, id := range venue.All() {
		p, err := db.LoadProfile(ctx, id)
		if err != nil {
			t.Fatalf("LoadProfile(%s): %v", id, err)
		}
		if p.MaxItems != 0 || p.BidsPerInterval != 1 {
			t.Errorf("%s seeded with %+v", id, p)
		}
	}

	s := b.Status()
	if !s.Active || !s.SellerEnabled || !s.BuyerEnabled {
		t.Errorf("status = %+v, want active with both engines", s)
	}
	if len(s.Venues) != 3 {
		t.Errorf("venues = %d, want 3", len(s.Venues))
	}
	if s.CatalogBins["white trade goods"] != 30 {
		t.Errorf("catalog bins = %v", s.CatalogBins)
	}
}

func TestTick_Replenishes(t *testing.T) {
	b, db := newTestBot(t, defaultOpts())
	ctx := context.Background()
	setMax(t, b, venue.Horde, 100)

	b.Tick(ctx, 1)

	if got := count(t, db, venue.Horde); got != 57 {
		t.Fatalf("horde listings = %d, want 57", got)
	}
	if got := count(t, db, venue.Alliance); got != 0 {
		t.Errorf("alliance listings = %d, want 0 without a quota", got)
	}

	vs := venueStatus(t, b, venue.Horde)
	if vs.Listings != 57 {
		t.Errorf("status listings = %d, want 57", vs.Listings)
	}
	if vs.Counts["white trade goods"] != 27 || vs.Counts["green items"] != 30 {
		t.Errorf("counts = %v", vs.Counts)
	}

	// Counters agree with a fresh scan.
	if err := b.Reload(ctx, venue.Horde); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	after := venueStatus(t, b, venue.Horde)
	if after.Listings != 57 || after.Generation != 1 {
		t.Errorf("after reload = %+v", after)
	}

	// Nothing more to sell in the filled tiers.
	b.Tick(ctx, 2)
	if got := count(t, db, venue.Horde); got != 57 {
		t.Errorf("second pass listings = %d, want 57", got)
	}
	if b.Status().ListingsMade != 57 {
		t.Errorf("listings created = %d, want 57", b.Status().ListingsMade)
	}
}

func TestTick_TwoSideServesNeutralOnly(t *testing.T) {
	opts := defaultOpts()
	opts.AllowTwoSide = true
	b, db := newTestBot(t, opts)
	ctx := context.Background()
	for _, id := range venue.All() {
		setMax(t, b, id, 10)
	}

	b.Tick(ctx, 1)

	if got := count(t, db, venue.Neutral); got == 0 {
		t.Error("neutral venue not served")
	}
	if count(t, db, venue.Alliance) != 0 || count(t, db, venue.Horde) != 0 {
		t.Error("faction venues served with two-sided trade enabled")
	}
}

func TestTick_Idle(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"both engines disabled", func(o *Options) { o.EnableSeller, o.EnableBuyer = false, false }},
		{"no character", func(o *Options) { o.GUID = 0 }},
		{"no account", func(o *Options) { o.Account = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOpts()
			tt.mutate(&opts)
			b, db := newTestBot(t, opts)
			setMax(t, b, venue.Horde, 100)

			b.Tick(context.Background(), 1)

			if got := count(t, db, venue.Horde); got != 0 {
				t.Errorf("listings = %d, want 0", got)
			}
			if b.Status().Active {
				t.Error("bot active")
			}
		})
	}
}

func TestTick_BuyerBidsOnLaterTick(t *testing.T) {
	now := fixedNow
	opts := defaultOpts()
	opts.Now = func() time.Time { return now }
	b, db := newTestBot(t, opts)
	ctx := context.Background()

	l := &economy.Listing{House: uint32(venue.Horde), ItemID: 1000, Count: 1, Owner: player,
		StartBid: 100, Deposit: 100, ExpireTime: fixedNow.Add(12 * time.Hour).Unix()}
	if err := db.InsertListings(ctx, []*economy.Listing{l}); err != nil {
		t.Fatalf("InsertListings: %v", err)
	}

	now = now.Add(time.Minute)
	b.Tick(ctx, 1)
	if err := b.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	got, err := db.Listing(ctx, l.ID)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if got.Bidder != 0 {
		t.Fatal("bid placed on the tick the query was issued")
	}

	b.Tick(ctx, 2)
	got, err = db.Listing(ctx, l.ID)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if got.Bidder != botGUID {
		t.Fatalf("bidder = %d, want %d", got.Bidder, botGUID)
	}
	if got.Bid < 105 || got.Bid > 220 {
		t.Errorf("bid = %d, want within [105, 220]", got.Bid)
	}
	if b.Status().Buyer.Bids != 1 {
		t.Errorf("buyer totals = %+v", b.Status().Buyer)
	}
}

func TestTick_BuyerCooldown(t *testing.T) {
	now := fixedNow
	opts := defaultOpts()
	opts.Now = func() time.Time { return now }
	b, _ := newTestBot(t, opts)
	ctx := context.Background()

	// The interval starts at load.
	if last := venueStatus(t, b, venue.Alliance).LastBid; !last.Equal(fixedNow) {
		t.Fatalf("last bid after load = %v, want %v", last, fixedNow)
	}
	b.Tick(ctx, 1)
	if got := b.Status().PendingQueries; got != 0 {
		t.Fatalf("pending queries on the first tick = %d, want 0", got)
	}

	now = now.Add(30 * time.Second)
	b.Tick(ctx, 2) // within the one minute interval
	if got := venueStatus(t, b, venue.Alliance).LastBid; !got.Equal(fixedNow) {
		t.Errorf("buyer ran after 30s: last bid %v", got)
	}

	now = now.Add(time.Minute)
	b.Tick(ctx, 3)
	if got := venueStatus(t, b, venue.Alliance).LastBid; !got.Equal(now) {
		t.Errorf("buyer did not run after the interval: last bid %v", got)
	}
}

func TestTick_ZeroIntervalBidsEveryTick(t *testing.T) {
	b, db := newTestBot(t, defaultOpts())
	ctx := context.Background()
	if err := b.SetField(ctx, venue.Horde, venue.Change{Field: venue.FieldBidInterval, Value: 0}); err != nil {
		t.Fatalf("SetField bidinterval: %v", err)
	}

	l := &economy.Listing{House: uint32(venue.Horde), ItemID: 1000, Count: 1, Owner: player,
		StartBid: 100, Deposit: 100, ExpireTime: fixedNow.Add(12 * time.Hour).Unix()}
	if err := db.InsertListings(ctx, []*economy.Listing{l}); err != nil {
		t.Fatalf("InsertListings: %v", err)
	}

	b.Tick(ctx, 1)
	if err := b.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	b.Tick(ctx, 2)

	got, err := db.Listing(ctx, l.ID)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if got.Bidder != botGUID {
		t.Errorf("bidder = %d, want %d without waiting for an interval", got.Bidder, botGUID)
	}
}

func TestTick_ExpiredListingsFreeQuota(t *testing.T) {
	now := fixedNow
	opts := defaultOpts()
	opts.Now = func() time.Time { return now }
	b, db := newTestBot(t, opts)
	ctx := context.Background()
	setMax(t, b, venue.Horde, 100)

	b.Tick(ctx, 1)
	if got := count(t, db, venue.Horde); got != 57 {
		t.Fatalf("horde listings = %d, want 57", got)
	}

	// Every duration is at most 48h; no sweep has run.
	now = now.Add(49 * time.Hour)
	if n, err := db.CountListings(ctx, venue.Horde, now); err != nil || n != 0 {
		t.Fatalf("live listings after expiry = %d, %v; want 0", n, err)
	}

	b.Tick(ctx, 2)
	n, err := db.CountListings(ctx, venue.Horde, now)
	if err != nil {
		t.Fatalf("CountListings: %v", err)
	}
	if n != 57 {
		t.Errorf("listings after refill = %d, want 57", n)
	}
	if vs := venueStatus(t, b, venue.Horde); vs.Listings != 57 {
		t.Errorf("counted listings = %d, want 57", vs.Listings)
	}
}

func TestReload_DropsStaleCandidates(t *testing.T) {
	now := fixedNow
	opts := defaultOpts()
	opts.Now = func() time.Time { return now }
	b, db := newTestBot(t, opts)
	ctx := context.Background()

	l := &economy.Listing{House: uint32(venue.Horde), ItemID: 1000, Count: 1, Owner: player,
		StartBid: 100, Deposit: 100, ExpireTime: fixedNow.Add(12 * time.Hour).Unix()}
	if err := db.InsertListings(ctx, []*economy.Listing{l}); err != nil {
		t.Fatalf("InsertListings: %v", err)
	}

	now = now.Add(time.Minute)
	b.Tick(ctx, 1)
	if err := b.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if err := b.Reload(ctx, venue.Horde); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	b.Tick(ctx, 2)

	got, err := db.Listing(ctx, l.ID)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if got.Bidder != 0 {
		t.Error("bid placed from candidates issued before the reload")
	}
}

func TestReload_UnknownVenue(t *testing.T) {
	b, _ := newTestBot(t, defaultOpts())
	if err := b.Reload(context.Background(), venue.ID(3)); !errors.Is(err, venue.ErrUnknownVenue) {
		t.Errorf("error = %v, want ErrUnknownVenue", err)
	}
}
