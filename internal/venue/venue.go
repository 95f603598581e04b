// Package venue holds the per-venue configuration profile: quotas, price
// ranges, bidding cadence, and the live per-tier occupancy counters.
package venue

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ID is an auction house identifier.
type ID uint32

const (
	Alliance ID = 2
	Horde    ID = 6
	Neutral  ID = 7
)

// ErrUnknownVenue is returned for house IDs other than the three venues.
var ErrUnknownVenue = errors.New("unknown venue")

// All returns the venues in processing order.
func All() []ID {
	return []ID{Alliance, Horde, Neutral}
}

// Valid reports whether id is one of the known venues.
func (id ID) Valid() bool {
	switch id {
	case Alliance, Horde, Neutral:
		return true
	}
	return false
}

func (id ID) String() string {
	switch id {
	case Alliance:
		return "alliance"
	case Horde:
		return "horde"
	case Neutral:
		return "neutral"
	}
	return fmt.Sprintf("venue%d", uint32(id))
}

// Faction reports whether the venue is tied to one side.
func (id ID) Faction() bool {
	return id == Alliance || id == Horde
}

// DepositPercent is the share of the vendor sell price charged per 12 hours.
func (id ID) DepositPercent() uint32 {
	if id == Neutral {
		return 75
	}
	return 15
}

// CutPercent is the share of the sale price the house keeps.
func (id ID) CutPercent() uint32 {
	if id == Neutral {
		return 15
	}
	return 5
}

// Parse accepts a venue name or a numeric house ID.
func Parse(s string) (ID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "alliance", "ally":
		return Alliance, nil
	case "horde":
		return Horde, nil
	case "neutral":
		return Neutral, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || !ID(n).Valid() {
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownVenue)
	}
	return ID(n), nil
}
