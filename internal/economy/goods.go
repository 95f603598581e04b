// Package economy provides the item, listing, and pricing model shared by the
// seller and buyer engines.
package economy

import "fmt"

// Quality is an item quality level, 0 (poor) through 6 (artifact).
type Quality uint8

const (
	QualityPoor Quality = iota
	QualityNormal
	QualityUncommon
	QualityRare
	QualityEpic
	QualityLegendary
	QualityArtifact
)

// QualityCount is the number of supported quality levels.
const QualityCount = 7

var qualityColors = [QualityCount]string{"grey", "white", "green", "blue", "purple", "orange", "yellow"}

// Valid reports whether q is a supported quality.
func (q Quality) Valid() bool { return q < QualityCount }

// Color returns the colour name admins and config columns use for q.
func (q Quality) Color() string {
	if !q.Valid() {
		return fmt.Sprintf("quality%d", uint8(q))
	}
	return qualityColors[q]
}

// QualityFromColor parses a colour name ("grey", "blue", ...).
func QualityFromColor(name string) (Quality, bool) {
	for i, c := range qualityColors {
		if c == name {
			return Quality(i), true
		}
	}
	return 0, false
}

// ItemClass is the top-level item category.
type ItemClass uint8

const (
	ClassConsumable ItemClass = 0
	ClassContainer  ItemClass = 1
	ClassWeapon     ItemClass = 2
	ClassGem        ItemClass = 3
	ClassArmor      ItemClass = 4
	ClassReagent    ItemClass = 5
	ClassProjectile ItemClass = 6 // ammo, never bid on
	ClassTradeGoods ItemClass = 7
	ClassRecipe     ItemClass = 9
	ClassQuiver     ItemClass = 11
	ClassQuest      ItemClass = 12
	ClassKey        ItemClass = 13
	ClassMisc       ItemClass = 15
	ClassGlyph      ItemClass = 16 // always sold one at a time
)

// ItemTemplate is the immutable definition of a sellable item.
type ItemTemplate struct {
	ID        uint32    `db:"id" json:"id" yaml:"id"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	Class     ItemClass `db:"class" json:"class" yaml:"class"`
	Quality   Quality   `db:"quality" json:"quality" yaml:"quality"`
	BuyPrice  uint64    `db:"buy_price" json:"buy_price" yaml:"buy_price"`    // vendor sells to players
	SellPrice uint64    `db:"sell_price" json:"sell_price" yaml:"sell_price"` // vendor buys from players
	MaxStack  uint32    `db:"max_stack" json:"max_stack" yaml:"max_stack"`
	Sellable  bool      `db:"sellable" json:"sellable" yaml:"sellable"`
}

// Tier returns the bin the template belongs to.
func (t ItemTemplate) Tier() (Tier, error) {
	return TierFor(t.Quality, t.Class)
}

// ReferencePrice picks the vendor buy or sell price.
func (t ItemTemplate) ReferencePrice(useBuyPrice bool) uint64 {
	if useBuyPrice {
		return t.BuyPrice
	}
	return t.SellPrice
}

// StackLimit returns the template's maximum stack, never below 1.
func (t ItemTemplate) StackLimit() uint32 {
	if t.MaxStack == 0 {
		return 1
	}
	return t.MaxStack
}
