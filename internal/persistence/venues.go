package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/talgya/auctionbot/internal/economy"
	"github.com/talgya/auctionbot/internal/venue"
)

// EnsureVenue inserts p as the venue's stored configuration unless a row
// already exists. It reports whether it inserted.
func (db *DB) EnsureVenue(ctx context.Context, p *venue.Profile) (bool, error) {
	values := p.Values()
	cols := venue.Columns()

	args := []any{uint32(p.Venue), p.Venue.String()}
	for _, c := range cols {
		args = append(args, values[c])
	}
	query := fmt.Sprintf("INSERT OR IGNORE INTO venue_config (house, name, %s) VALUES (?%s)",
		strings.Join(cols, ", "), strings.Repeat(", ?", len(cols)+1))

	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("seed venue %s: %w", p.Venue, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// LoadProfile reads a venue's configuration. Occupancy counters are zero;
// the caller reconciles them.
func (db *DB) LoadProfile(ctx context.Context, id venue.ID) (*venue.Profile, error) {
	row := make(map[string]any)
	err := db.conn.QueryRowxContext(ctx, "SELECT * FROM venue_config WHERE house = ?", uint32(id)).MapScan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("venue %s: %w", id, economy.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load venue %s: %w", id, err)
	}

	values := make(map[string]uint32, len(row))
	for col, v := range row {
		n, ok := v.(int64)
		if !ok {
			continue
		}
		if n < 0 {
			return nil, &economy.ConfigError{Field: col, Err: fmt.Errorf("negative value %d", n)}
		}
		values[col] = uint32(n)
	}

	p := venue.NewProfile(id)
	if err := p.Load(values); err != nil {
		return nil, fmt.Errorf("venue %s: %w", id, err)
	}
	return p, nil
}

// SaveProfileField persists one configuration column.
func (db *DB) SaveProfileField(ctx context.Context, id venue.ID, column string, value uint32) error {
	if !slices.Contains(venue.Columns(), column) {
		return fmt.Errorf("column %q: %w", column, venue.ErrUnknownField)
	}
	// column is whitelisted above.
	res, err := db.conn.ExecContext(ctx,
		"UPDATE venue_config SET "+column+" = ? WHERE house = ?", value, uint32(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("venue %s: %w", id, economy.ErrNotFound)
	}
	return nil
}

// SavePercentages persists every tier percentage in one transaction.
func (db *DB) SavePercentages(ctx context.Context, id venue.ID, pct [economy.TierCount]uint32) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range economy.Tiers() {
		res, err := tx.ExecContext(ctx,
			"UPDATE venue_config SET "+venue.PercentColumn(t)+" = ? WHERE house = ?", pct[t], uint32(id))
		if err != nil {
			return fmt.Errorf("save %s: %w", venue.PercentColumn(t), err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("venue %s: %w", id, economy.ErrNotFound)
		}
	}

	return tx.Commit()
}
