package persistence

import (
	"context"
	"fmt"

	"github.com/talgya/auctionbot/internal/catalog"
	"github.com/talgya/auctionbot/internal/economy"
)

// ItemTemplates returns every item definition.
func (db *DB) ItemTemplates(ctx context.Context) ([]economy.ItemTemplate, error) {
	var templates []economy.ItemTemplate
	err := db.conn.SelectContext(ctx, &templates,
		`SELECT id, name, class, quality, buy_price, sell_price, max_stack, sellable
		 FROM item_template ORDER BY id`)
	return templates, err
}

// PriceOverrides returns the price override table keyed by item ID.
func (db *DB) PriceOverrides(ctx context.Context) (map[uint32]catalog.Override, error) {
	var rows []struct {
		ItemID uint32 `db:"item_id"`
		catalog.Override
	}
	if err := db.conn.SelectContext(ctx, &rows,
		"SELECT item_id, avg_price, min_price FROM item_price_override"); err != nil {
		return nil, err
	}

	out := make(map[uint32]catalog.Override, len(rows))
	for _, r := range rows {
		out[r.ItemID] = r.Override
	}
	return out, nil
}

// UpsertItemTemplates writes item definitions in one transaction.
func (db *DB) UpsertItemTemplates(ctx context.Context, templates []economy.ItemTemplate) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range templates {
		_, err := tx.NamedExecContext(ctx, `INSERT OR REPLACE INTO item_template
			(id, name, class, quality, buy_price, sell_price, max_stack, sellable)
			VALUES (:id, :name, :class, :quality, :buy_price, :sell_price, :max_stack, :sellable)`, t)
		if err != nil {
			return fmt.Errorf("upsert item %d: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// SetPriceOverride stores or replaces an item's price override.
func (db *DB) SetPriceOverride(ctx context.Context, itemID uint32, o catalog.Override) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO item_price_override (item_id, avg_price, min_price) VALUES (?, ?, ?)",
		itemID, o.Average, o.Minimum,
	)
	return err
}
