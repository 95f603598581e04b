package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talgya/auctionbot/internal/economy"
	"github.com/talgya/auctionbot/internal/venue"
)

// ExpireAll ends every bot listing in the venue now and closes them. It
// returns how many listings were expired.
func (b *Bot) ExpireAll(ctx context.Context, id venue.ID) (int, error) {
	return b.expire(ctx, id, nil)
}

// ExpireClass is ExpireAll restricted to one item class.
func (b *Bot) ExpireClass(ctx context.Context, id venue.ID, class economy.ItemClass) (int, error) {
	return b.expire(ctx, id, &class)
}

func (b *Bot) expire(ctx context.Context, id venue.ID, class *economy.ItemClass) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.lookup(id); err != nil {
		return 0, err
	}

	n, err := b.store.ExpireListings(ctx, id, b.opts.GUID, class, b.opts.Now())
	if err != nil {
		return 0, err
	}
	slog.Info("admin expired listings", "venue", id, "count", n, "class_filter", class != nil)

	if _, err := b.sweep(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// SetField validates a change, persists it, then applies it to the live
// profile. Nothing is written or changed if validation fails.
func (b *Bot) SetField(ctx context.Context, id venue.ID, c venue.Change) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.lookup(id)
	if err != nil {
		return err
	}
	if err := p.Check(c); err != nil {
		return err
	}
	if err := b.store.SaveProfileField(ctx, id, c.Column(), c.Value); err != nil {
		return fmt.Errorf("persist %s: %w", c.Column(), err)
	}
	if err := p.Apply(c); err != nil {
		return err
	}

	slog.Info("venue config changed", "venue", id, "column", c.Column(), "value", c.Value)
	return nil
}

// SetPercentages replaces every tier percentage of the venue.
func (b *Bot) SetPercentages(ctx context.Context, id venue.ID, pct [economy.TierCount]uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.lookup(id)
	if err != nil {
		return err
	}
	// Each value is bounded; the total may exceed 100.
	var sum uint32
	for t, v := range pct {
		if v > 100 {
			return fmt.Errorf("%s percentage %d: %w", economy.Tier(t), v, venue.ErrInvalidValue)
		}
		sum += v
	}

	if err := b.store.SavePercentages(ctx, id, pct); err != nil {
		return fmt.Errorf("persist percentages: %w", err)
	}
	p.SetPercentages(pct)

	slog.Info("venue percentages changed", "venue", id, "total", sum)
	return nil
}
