package economy

import "time"

// Listing is one auction entry in a venue.
type Listing struct {
	ID         uint32 `db:"id" json:"id"`
	House      uint32 `db:"house" json:"house"`
	ItemGUID   uint64 `db:"item_guid" json:"item_guid"`
	ItemID     uint32 `db:"item_id" json:"item_id"`
	Count      uint32 `db:"item_count" json:"item_count"`
	Owner      uint64 `db:"owner" json:"owner"`
	Bidder     uint64 `db:"bidder" json:"bidder"` // 0 = no bids yet
	Bid        uint64 `db:"bid" json:"bid"`
	StartBid   uint64 `db:"start_bid" json:"start_bid"`
	Buyout     uint64 `db:"buyout" json:"buyout"` // 0 = no buyout
	Deposit    uint64 `db:"deposit" json:"deposit"`
	ExpireTime int64  `db:"expire_time" json:"expire_time"` // unix seconds
}

// CurrentPrice is the highest bid, or the starting bid when nobody has bid.
func (l Listing) CurrentPrice() uint64 {
	if l.Bid > 0 {
		return l.Bid
	}
	return l.StartBid
}

// Expires returns the expiry as a time.
func (l Listing) Expires() time.Time {
	return time.Unix(l.ExpireTime, 0)
}

// ItemInstance is the concrete item backing a listing.
type ItemInstance struct {
	GUID   uint64 `db:"guid" json:"guid"`
	ItemID uint32 `db:"item_id" json:"item_id"`
	Owner  uint64 `db:"owner" json:"owner"`
	Count  uint32 `db:"count" json:"count"`
}

// Bid is a price change the buyer makes on a listing. Listing holds the
// state before the change.
type Bid struct {
	Listing Listing
	Bidder  uint64
	Amount  uint64
	At      time.Time // the auction must not have expired by then
}

// Outbids reports whether a previous, different bidder has to be notified.
func (b Bid) Outbids() bool {
	return b.Listing.Bidder != 0 && b.Listing.Bidder != b.Bidder
}

// MailKind is the notification attached to an auction event.
type MailKind string

const (
	MailOutbid  MailKind = "outbid"
	MailSold    MailKind = "sold"
	MailWon     MailKind = "won"
	MailExpired MailKind = "expired"
)

// Mail is a persisted notification to a participant.
type Mail struct {
	ID        string   `db:"id" json:"id"`
	Kind      MailKind `db:"kind" json:"kind"`
	Receiver  uint64   `db:"receiver" json:"receiver"`
	AuctionID uint32   `db:"auction_id" json:"auction_id"`
	ItemGUID  uint64   `db:"item_guid" json:"item_guid"` // set on won mail
	Money     uint64   `db:"money" json:"money"`
	CreatedAt int64    `db:"created_at" json:"created_at"`
}
