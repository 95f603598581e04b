package venue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/talgya/auctionbot/internal/economy"
)

// Field is a single settable configuration value.
type Field string

const (
	FieldMinItems        Field = "minitems"
	FieldMaxItems        Field = "maxitems"
	FieldMinPrice        Field = "minprice"
	FieldMaxPrice        Field = "maxprice"
	FieldMinBidPrice     Field = "minbidprice"
	FieldMaxBidPrice     Field = "maxbidprice"
	FieldMaxStack        Field = "maxstack"
	FieldBuyerPrice      Field = "buyerprice"
	FieldBidInterval     Field = "bidinterval"
	FieldBidsPerInterval Field = "bidsperinterval"
)

var (
	// ErrUnknownField is returned for names that are not settable fields.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue is returned when a value would leave the profile
	// inconsistent.
	ErrInvalidValue = errors.New("invalid value")
)

var fields = []Field{
	FieldMinItems, FieldMaxItems,
	FieldMinPrice, FieldMaxPrice, FieldMinBidPrice, FieldMaxBidPrice,
	FieldMaxStack, FieldBuyerPrice,
	FieldBidInterval, FieldBidsPerInterval,
}

// Fields lists every settable field.
func Fields() []Field {
	return append([]Field(nil), fields...)
}

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownField)
}

// PerQuality reports whether the field is set per item quality.
func (f Field) PerQuality() bool {
	switch f {
	case FieldMinPrice, FieldMaxPrice, FieldMinBidPrice, FieldMaxBidPrice, FieldMaxStack, FieldBuyerPrice:
		return true
	}
	return false
}

// Column is the storage column for the field. Per-quality fields carry the
// colour suffix.
func (f Field) Column(q economy.Quality) string {
	switch f {
	case FieldBidInterval:
		return "buyerbiddinginterval"
	case FieldBidsPerInterval:
		return "buyerbidsperinterval"
	}
	if f.PerQuality() {
		return string(f) + q.Color()
	}
	return string(f)
}

// PercentColumn is the storage column of a tier's percentage.
func PercentColumn(t economy.Tier) string {
	if t.TradeGoods() {
		return "percent" + t.Quality().Color() + "tradegoods"
	}
	return "percent" + t.Quality().Color() + "items"
}

// Columns lists every storage column of a profile.
func Columns() []string {
	var cols []string
	for _, t := range economy.Tiers() {
		cols = append(cols, PercentColumn(t))
	}
	for _, f := range fields {
		if !f.PerQuality() {
			cols = append(cols, f.Column(0))
			continue
		}
		for q := economy.Quality(0); q < economy.QualityCount; q++ {
			cols = append(cols, f.Column(q))
		}
	}
	return cols
}

// Change is a validated field assignment, ready to persist and apply.
type Change struct {
	Field   Field
	Quality economy.Quality
	Value   uint32
}

// Column is the storage column the change writes.
func (c Change) Column() string {
	return c.Field.Column(c.Quality)
}

// Check validates c against the profile without mutating it.
func (p *Profile) Check(c Change) error {
	if c.Field.PerQuality() {
		s, err := p.Settings(c.Quality)
		if err != nil {
			return err
		}
		next := *s
		next.set(c.Field, c.Value)
		if err := next.validate(); err != nil {
			return fmt.Errorf("%s %s: %w: %v", c.Field, c.Quality.Color(), ErrInvalidValue, err)
		}
		return nil
	}

	switch c.Field {
	case FieldMinItems, FieldMaxItems, FieldBidInterval, FieldBidsPerInterval:
	default:
		return fmt.Errorf("%q: %w", c.Field, ErrUnknownField)
	}
	return nil
}

// Apply validates and applies c.
func (p *Profile) Apply(c Change) error {
	if err := p.Check(c); err != nil {
		return err
	}
	p.assign(c.Field, c.Quality, c.Value)
	return nil
}

// Value reads the current value of a field, in storage units.
func (p *Profile) Value(f Field, q economy.Quality) (uint32, error) {
	switch f {
	case FieldMinItems:
		return p.MinItems, nil
	case FieldMaxItems:
		return p.MaxItems, nil
	case FieldBidInterval:
		return uint32(p.BiddingInterval / time.Minute), nil
	case FieldBidsPerInterval:
		return p.BidsPerInterval, nil
	}
	if !f.PerQuality() {
		return 0, fmt.Errorf("%q: %w", f, ErrUnknownField)
	}
	s, err := p.Settings(q)
	if err != nil {
		return 0, err
	}
	return s.get(f), nil
}

// SetPercentages replaces every tier percentage at once.
func (p *Profile) SetPercentages(pct [economy.TierCount]uint32) {
	for i, v := range pct {
		p.Percent[economy.Tier(i)] = v
	}
}

func (s *QualitySettings) set(f Field, v uint32) {
	switch f {
	case FieldMinPrice:
		s.MinPrice = v
	case FieldMaxPrice:
		s.MaxPrice = v
	case FieldMinBidPrice:
		s.MinBidPrice = v
	case FieldMaxBidPrice:
		s.MaxBidPrice = v
	case FieldMaxStack:
		s.MaxStack = v
	case FieldBuyerPrice:
		s.BuyerPrice = v
	}
}

func (s *QualitySettings) get(f Field) uint32 {
	switch f {
	case FieldMinPrice:
		return s.MinPrice
	case FieldMaxPrice:
		return s.MaxPrice
	case FieldMinBidPrice:
		return s.MinBidPrice
	case FieldMaxBidPrice:
		return s.MaxBidPrice
	case FieldMaxStack:
		return s.MaxStack
	case FieldBuyerPrice:
		return s.BuyerPrice
	}
	return 0
}

// Values returns every storage column with its current value.
func (p *Profile) Values() map[string]uint32 {
	out := make(map[string]uint32, economy.TierCount+len(fields)*economy.QualityCount)
	for _, t := range economy.Tiers() {
		out[PercentColumn(t)] = p.Percent[t]
	}
	for _, f := range fields {
		if !f.PerQuality() {
			v, _ := p.Value(f, 0)
			out[f.Column(0)] = v
			continue
		}
		for q := economy.Quality(0); q < economy.QualityCount; q++ {
			v, _ := p.Value(f, q)
			out[f.Column(q)] = v
		}
	}
	return out
}

// Load replaces the configuration with stored column values and validates
// the result. Occupancy counters are left alone.
func (p *Profile) Load(values map[string]uint32) error {
	get := func(col string) (uint32, error) {
		v, ok := values[col]
		if !ok {
			return 0, &economy.ConfigError{Field: col, Err: errors.New("missing")}
		}
		return v, nil
	}

	for _, t := range economy.Tiers() {
		v, err := get(PercentColumn(t))
		if err != nil {
			return err
		}
		p.Percent[t] = v
	}
	for _, f := range fields {
		if !f.PerQuality() {
			v, err := get(f.Column(0))
			if err != nil {
				return err
			}
			p.assign(f, 0, v)
			continue
		}
		for q := economy.Quality(0); q < economy.QualityCount; q++ {
			v, err := get(f.Column(q))
			if err != nil {
				return err
			}
			p.assign(f, q, v)
		}
	}
	return p.Validate()
}

func (p *Profile) assign(f Field, q economy.Quality, v uint32) {
	switch f {
	case FieldMinItems:
		p.MinItems = v
	case FieldMaxItems:
		p.MaxItems = v
	case FieldBidInterval:
		p.BiddingInterval = time.Duration(v) * time.Minute
	case FieldBidsPerInterval:
		p.BidsPerInterval = v
	default:
		s, ok := p.Quality[q]
		if !ok {
			s = &QualitySettings{}
			p.Quality[q] = s
		}
		s.set(f, v)
	}
}

// ParseChange builds a Change from admin input. color is ignored for
// fields that are not per quality.
func ParseChange(field, color string, value uint32) (Change, error) {
	f, err := ParseField(field)
	if err != nil {
		return Change{}, err
	}
	c := Change{Field: f, Value: value}
	if f.PerQuality() {
		q, ok := economy.QualityFromColor(strings.ToLower(strings.TrimSpace(color)))
		if !ok {
			return Change{}, fmt.Errorf("%s quality %q: %w", f, color, economy.ErrUnsupportedQuality)
		}
		c.Quality = q
	}
	return c, nil
}
