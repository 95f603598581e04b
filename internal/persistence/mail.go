package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/talgya/auctionbot/internal/economy"
)

func (db *DB) insertMail(ctx context.Context, tx *sqlx.Tx, kind economy.MailKind, receiver uint64, auctionID uint32, itemGUID, money uint64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO mail (id, kind, receiver, auction_id, item_guid, money, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), string(kind), receiver, auctionID, itemGUID, money, time.Now().Unix(),
	)
	return err
}

// Mail returns a participant's mail, oldest first.
func (db *DB) Mail(ctx context.Context, receiver uint64) ([]economy.Mail, error) {
	var mail []economy.Mail
	err := db.conn.SelectContext(ctx, &mail,
		`SELECT id, kind, receiver, auction_id, item_guid, money, created_at
		 FROM mail WHERE receiver = ? ORDER BY created_at, rowid`, receiver)
	return mail, err
}
