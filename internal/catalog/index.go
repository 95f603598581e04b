// Package catalog indexes the items the bot may sell, binned by tier, plus
// the sparse table of price overrides.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/talgya/auctionbot/internal/economy"
	"github.com/talgya/auctionbot/internal/entropy"
)

// Override replaces an item's vendor reference price.
type Override struct {
	Average uint64 `db:"avg_price" json:"average"`
	Minimum uint64 `db:"min_price" json:"minimum"`
}

// Source loads catalog data, normally from the database.
type Source interface {
	ItemTemplates(ctx context.Context) ([]economy.ItemTemplate, error)
	PriceOverrides(ctx context.Context) (map[uint32]Override, error)
}

// Index is read-only once initialized and safe for concurrent reads.
type Index struct {
	src Source

	templates map[uint32]economy.ItemTemplate
	overrides map[uint32]Override
	bins      [economy.TierCount][]uint32
}

// NewIndex creates an empty index over src.
func NewIndex(src Source) *Index {
	return &Index{
		src:       src,
		templates: make(map[uint32]economy.ItemTemplate),
		overrides: make(map[uint32]Override),
	}
}

// Initialize loads item definitions and price overrides.
func (x *Index) Initialize(ctx context.Context) error {
	templates, err := x.src.ItemTemplates(ctx)
	if err != nil {
		return fmt.Errorf("load item templates: %w", err)
	}
	overrides, err := x.src.PriceOverrides(ctx)
	if err != nil {
		return fmt.Errorf("load price overrides: %w", err)
	}

	x.templates = make(map[uint32]economy.ItemTemplate, len(templates))
	for _, t := range templates {
		if t.ID == 0 {
			continue
		}
		x.templates[t.ID] = t
	}
	if overrides != nil {
		x.overrides = overrides
	}

	slog.Info("catalog loaded", "templates", len(x.templates), "price_overrides", len(x.overrides))
	return nil
}

// BuildBins partitions sellable templates into tier bins. It returns false
// when nothing is sellable; the caller disables the seller.
func (x *Index) BuildBins() bool {
	var bins [economy.TierCount][]uint32
	total := 0

	for _, t := range x.templates {
		if !t.Sellable {
			continue
		}
		tier, err := t.Tier()
		if err != nil {
			slog.Debug("catalog skipping item", "item", t.ID, "error", err)
			continue
		}
		bins[tier] = append(bins[tier], t.ID)
		total++
	}

	// Map iteration is random; keep bins stable so sampling depends only on the rng.
	for i := range bins {
		slices.Sort(bins[i])
	}
	x.bins = bins

	if total == 0 {
		slog.Error("catalog has no sellable items")
		return false
	}

	for _, tier := range economy.Tiers() {
		slog.Debug("catalog bin", "tier", tier.String(), "items", len(bins[tier]))
	}
	slog.Info("catalog bins built", "sellable", total)
	return true
}

// Bin returns the item IDs of a tier. Callers must not modify it.
func (x *Index) Bin(t economy.Tier) []uint32 {
	if !t.Valid() {
		return nil
	}
	return x.bins[t]
}

// BinSizes returns the number of items in each tier.
func (x *Index) BinSizes() [economy.TierCount]int {
	var sizes [economy.TierCount]int
	for i, b := range x.bins {
		sizes[i] = len(b)
	}
	return sizes
}

// Template looks up an item definition.
func (x *Index) Template(id uint32) (economy.ItemTemplate, bool) {
	t, ok := x.templates[id]
	return t, ok
}

// OverriddenPrice returns the override for id. With both an average and a
// lower minimum the price is drawn uniformly between them.
func (x *Index) OverriddenPrice(id uint32, rng *entropy.Rand) (uint64, bool) {
	o, ok := x.overrides[id]
	if !ok {
		return 0, false
	}

	switch {
	case o.Average > 0 && o.Minimum > 0 && o.Minimum < o.Average:
		return rng.IntRange(o.Minimum, o.Average), true
	case o.Average > 0:
		return o.Average, true
	case o.Minimum > 0:
		return o.Minimum, true
	}
	return 0, false
}
