package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/auctionbot/internal/economy"
	"github.com/talgya/auctionbot/internal/venue"
)

const listingColumns = `id, house, item_guid, item_id, item_count, owner, bidder, bid,
	start_bid, buyout, deposit, expire_time`

// CountListings counts every listing in the venue that has not expired by
// now, whoever owns it.
func (db *DB) CountListings(ctx context.Context, house venue.ID, now time.Time) (int, error) {
	var n int
	err := db.conn.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM auction WHERE house = ? AND expire_time > ?", uint32(house), now.Unix())
	return n, err
}

// VenueListings returns every listing in the venue that has not expired by
// now.
func (db *DB) VenueListings(ctx context.Context, house venue.ID, now time.Time) ([]economy.Listing, error) {
	var ls []economy.Listing
	err := db.conn.SelectContext(ctx, &ls,
		"SELECT "+listingColumns+" FROM auction WHERE house = ? AND expire_time > ? ORDER BY id",
		uint32(house), now.Unix())
	return ls, err
}

// InsertListings writes the listings and a backing item for each in one
// transaction. Assigned auction IDs and item GUIDs are written back only
// after commit.
func (db *DB) InsertListings(ctx context.Context, ls []*economy.Listing) error {
	if len(ls) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	type assigned struct {
		id   uint32
		guid uint64
	}
	ids := make([]assigned, len(ls))

	for i, l := range ls {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO item_instance (item_id, owner, count) VALUES (?, ?, ?)",
			l.ItemID, l.Owner, l.Count)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", l.ItemID, err)
		}
		guid, err := res.LastInsertId()
		if err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `INSERT INTO auction
			(house, item_guid, item_id, item_count, owner, bidder, bid, start_bid, buyout, deposit, expire_time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.House, guid, l.ItemID, l.Count, l.Owner, l.Bidder, l.Bid,
			l.StartBid, l.Buyout, l.Deposit, l.ExpireTime)
		if err != nil {
			return fmt.Errorf("insert auction for item %d: %w", l.ItemID, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		ids[i] = assigned{id: uint32(id), guid: uint64(guid)}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	for i, l := range ls {
		l.ID, l.ItemGUID = ids[i].id, ids[i].guid
	}
	return nil
}

// CandidateListings returns listings in the venue the bot could bid on:
// not expired, not its own, not bid on by it, and without any bid yet.
func (db *DB) CandidateListings(ctx context.Context, house venue.ID, bot uint64, now time.Time) ([]uint32, error) {
	var ids []uint32
	err := db.conn.SelectContext(ctx, &ids,
		`SELECT id FROM auction
		 WHERE house = ? AND expire_time > ? AND owner <> ? AND bidder <> ? AND bidder = 0
		 ORDER BY id`,
		uint32(house), now.Unix(), bot, bot)
	return ids, err
}

// Listing loads one auction.
func (db *DB) Listing(ctx context.Context, id uint32) (economy.Listing, error) {
	var l economy.Listing
	err := db.conn.GetContext(ctx, &l, "SELECT "+listingColumns+" FROM auction WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return l, fmt.Errorf("auction %d: %w", id, economy.ErrNotFound)
	}
	return l, err
}

// Item loads one item instance.
func (db *DB) Item(ctx context.Context, guid uint64) (economy.ItemInstance, error) {
	var it economy.ItemInstance
	err := db.conn.GetContext(ctx, &it, "SELECT guid, item_id, owner, count FROM item_instance WHERE guid = ?", guid)
	if errors.Is(err, sql.ErrNoRows) {
		return it, fmt.Errorf("item %d: %w", guid, economy.ErrNotFound)
	}
	return it, err
}

// PlaceBid records a standing bid. The update only applies if the auction
// still holds the bid state b was computed from and has not expired by b.At;
// otherwise it reports ErrNotFound.
func (db *DB) PlaceBid(ctx context.Context, b economy.Bid) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE auction SET bidder = ?, bid = ? WHERE id = ? AND bidder = ? AND bid = ? AND expire_time > ?",
		b.Bidder, b.Amount, b.Listing.ID, b.Listing.Bidder, b.Listing.Bid, b.At.Unix())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("auction %d changed: %w", b.Listing.ID, economy.ErrNotFound)
	}

	if b.Outbids() {
		if err := db.insertMail(ctx, tx, economy.MailOutbid, b.Listing.Bidder, b.Listing.ID, 0, b.Listing.Bid); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Buyout completes a sale at b.Amount in one transaction: the previous
// bidder is refunded, the seller paid, the item handed to the buyer, and
// the auction removed. Like PlaceBid it refuses an auction that changed or
// expired.
func (db *DB) Buyout(ctx context.Context, b economy.Bid) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM auction WHERE id = ? AND bidder = ? AND bid = ? AND expire_time > ?",
		b.Listing.ID, b.Listing.Bidder, b.Listing.Bid, b.At.Unix())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("auction %d changed: %w", b.Listing.ID, economy.ErrNotFound)
	}

	if b.Outbids() {
		if err := db.insertMail(ctx, tx, economy.MailOutbid, b.Listing.Bidder, b.Listing.ID, 0, b.Listing.Bid); err != nil {
			return err
		}
	}
	if err := db.settleSale(ctx, tx, b.Listing, b.Bidder, b.Amount); err != nil {
		return err
	}

	return tx.Commit()
}

// settleSale pays the seller and hands the item to the buyer. The auction
// row must already be gone.
func (db *DB) settleSale(ctx context.Context, tx *sqlx.Tx, l economy.Listing, buyer, price uint64) error {
	cut := venue.ID(l.House).CutPercent()
	if err := db.insertMail(ctx, tx, economy.MailSold, l.Owner, l.ID, 0, economy.SaleProceeds(price, l.Deposit, cut)); err != nil {
		return err
	}
	if err := db.insertMail(ctx, tx, economy.MailWon, buyer, l.ID, l.ItemGUID, 0); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE item_instance SET owner = ? WHERE guid = ?", buyer, l.ItemGUID); err != nil {
		return fmt.Errorf("transfer item %d: %w", l.ItemGUID, err)
	}
	return nil
}

// ExpireListings moves the expiry of the owner's listings in the venue to
// now, optionally only for one item class. It returns how many it touched;
// SweepExpired settles them.
func (db *DB) ExpireListings(ctx context.Context, house venue.ID, owner uint64, class *economy.ItemClass, now time.Time) (int, error) {
	query := "UPDATE auction SET expire_time = ? WHERE house = ? AND owner = ? AND expire_time > ?"
	args := []any{now.Unix(), uint32(house), owner, now.Unix()}
	if class != nil {
		query += " AND item_id IN (SELECT id FROM item_template WHERE class = ?)"
		args = append(args, uint8(*class))
	}

	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("expire listings in %s: %w", house, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// SweepExpired closes every auction whose expiry has passed: a bid wins the
// item, otherwise the item goes back to its owner. Each auction is its own
// transaction. It returns the number closed per venue.
func (db *DB) SweepExpired(ctx context.Context, now time.Time) (map[venue.ID]int, error) {
	var expired []economy.Listing
	if err := db.conn.SelectContext(ctx, &expired,
		"SELECT "+listingColumns+" FROM auction WHERE expire_time <= ? ORDER BY id", now.Unix()); err != nil {
		return nil, err
	}

	closed := make(map[venue.ID]int)
	for _, l := range expired {
		if err := db.closeExpired(ctx, l); err != nil {
			slog.Warn("expiry sweep failed", "auction", l.ID, "error", err)
			continue
		}
		closed[venue.ID(l.House)]++
	}
	return closed, nil
}

func (db *DB) closeExpired(ctx context.Context, l economy.Listing) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM auction WHERE id = ? AND bidder = ? AND bid = ?", l.ID, l.Bidder, l.Bid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	if l.Bidder != 0 {
		err = db.settleSale(ctx, tx, l, l.Bidder, l.Bid)
	} else {
		err = db.insertMail(ctx, tx, economy.MailExpired, l.Owner, l.ID, l.ItemGUID, 0)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}
