package venue

import (
	"errors"
	"testing"
	"time"

	"github.com/talgya/auctionbot/internal/economy"
)

func TestParseField(t *testing.T) {
	f, err := ParseField("MinPrice")
	if err != nil || f != FieldMinPrice {
		t.Errorf("ParseField(MinPrice) = %q, %v", f, err)
	}
	if _, err := ParseField("gold"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("ParseField(gold) error = %v", err)
	}
}

func TestColumns(t *testing.T) {
	tests := []struct {
		field Field
		q     economy.Quality
		want  string
	}{
		{FieldMinItems, 0, "minitems"},
		{FieldMinPrice, economy.QualityUncommon, "minpricegreen"},
		{FieldBuyerPrice, economy.QualityArtifact, "buyerpriceyellow"},
		{FieldBidInterval, 0, "buyerbiddinginterval"},
		{FieldBidsPerInterval, 0, "buyerbidsperinterval"},
	}
	for _, tt := range tests {
		if got := tt.field.Column(tt.q); got != tt.want {
			t.Errorf("%s.Column(%d) = %q, want %q", tt.field, tt.q, got, tt.want)
		}
	}
	if got := PercentColumn(2); got != "percentgreentradegoods" {
		t.Errorf("PercentColumn(2) = %q", got)
	}
	if got := PercentColumn(11); got != "percentpurpleitems" {
		t.Errorf("PercentColumn(11) = %q", got)
	}

	cols := Columns()
	if want := economy.TierCount + 4 + 6*economy.QualityCount; len(cols) != want {
		t.Errorf("Columns() has %d entries, want %d", len(cols), want)
	}
	seen := make(map[string]bool)
	for _, c := range cols {
		if seen[c] {
			t.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
}

func TestApply(t *testing.T) {
	p := DefaultProfile(Alliance)

	changes := []Change{
		{Field: FieldMaxItems, Value: 500},
		{Field: FieldMinItems, Value: 400},
		{Field: FieldMaxStack, Quality: economy.QualityNormal, Value: 5},
		{Field: FieldBidInterval, Value: 3},
		{Field: FieldBidsPerInterval, Value: 4},
	}
	for _, c := range changes {
		if err := p.Apply(c); err != nil {
			t.Fatalf("Apply(%+v): %v", c, err)
		}
	}

	if p.MaxItems != 500 || p.MinItems != 400 {
		t.Errorf("items = %d/%d", p.MinItems, p.MaxItems)
	}
	if p.Quality[economy.QualityNormal].MaxStack != 5 {
		t.Errorf("white max stack = %d", p.Quality[economy.QualityNormal].MaxStack)
	}
	if p.BiddingInterval != 3*time.Minute {
		t.Errorf("bidding interval = %v", p.BiddingInterval)
	}
	if v, _ := p.Value(FieldBidInterval, 0); v != 3 {
		t.Errorf("Value(bidinterval) = %d", v)
	}
	if v, _ := p.Value(FieldMaxStack, economy.QualityNormal); v != 5 {
		t.Errorf("Value(maxstack white) = %d", v)
	}
}

func TestApply_RejectsWithoutMutating(t *testing.T) {
	p := DefaultProfile(Horde)
	before := p.Quality[economy.QualityRare].MinPrice

	err := p.Apply(Change{Field: FieldMinPrice, Quality: economy.QualityRare, Value: 999999})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Apply error = %v, want ErrInvalidValue", err)
	}
	if p.Quality[economy.QualityRare].MinPrice != before {
		t.Error("rejected change mutated the profile")
	}

	err = p.Apply(Change{Field: FieldMaxPrice, Quality: economy.Quality(7), Value: 1})
	if !errors.Is(err, economy.ErrUnsupportedQuality) {
		t.Errorf("out-of-range quality error = %v", err)
	}
	if err := p.Apply(Change{Field: Field("gold")}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("unknown field error = %v", err)
	}
}

func TestApply_ZeroBidInterval(t *testing.T) {
	p := DefaultProfile(Alliance)
	if err := p.Apply(Change{Field: FieldBidInterval, Value: 0}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.BiddingInterval != 0 {
		t.Errorf("bidding interval = %v, want 0", p.BiddingInterval)
	}
}

func TestSetPercentages(t *testing.T) {
	p := NewProfile(Neutral)
	var pct [economy.TierCount]uint32
	for i := range pct {
		pct[i] = uint32(i)
	}
	p.SetPercentages(pct)
	for _, tier := range economy.Tiers() {
		if p.Percent[tier] != uint32(tier) {
			t.Errorf("Percent[%d] = %d", tier, p.Percent[tier])
		}
	}
}

func TestValuesLoadRoundTrip(t *testing.T) {
	src := DefaultProfile(Horde)
	src.MaxItems = 321
	src.Quality[economy.QualityEpic].MaxStack = 4
	src.BiddingInterval = 7 * time.Minute

	dst := NewProfile(Horde)
	dst.Counts[2] = 11
	if err := dst.Load(src.Values()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if dst.MaxItems != 321 || dst.Quality[economy.QualityEpic].MaxStack != 4 || dst.BiddingInterval != 7*time.Minute {
		t.Errorf("loaded profile = %+v", dst)
	}
	if dst.Percent[1] != 27 {
		t.Errorf("percent = %d", dst.Percent[1])
	}
	if dst.Counts[2] != 11 {
		t.Error("Load touched occupancy counters")
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	values := DefaultProfile(Alliance).Values()
	delete(values, "maxstackblue")

	var cfgErr *economy.ConfigError
	if err := NewProfile(Alliance).Load(values); !errors.As(err, &cfgErr) || cfgErr.Field != "maxstackblue" {
		t.Errorf("Load error = %v, want ConfigError for maxstackblue", err)
	}
}

func TestParseChange(t *testing.T) {
	c, err := ParseChange("MaxPrice", "Blue", 2000)
	if err != nil {
		t.Fatalf("ParseChange: %v", err)
	}
	if c.Field != FieldMaxPrice || c.Quality != economy.QualityRare || c.Value != 2000 {
		t.Errorf("change = %+v", c)
	}
	if c.Column() != "maxpriceblue" {
		t.Errorf("column = %q, want maxpriceblue", c.Column())
	}

	c, err = ParseChange("maxitems", "ignored", 300)
	if err != nil || c.Field != FieldMaxItems || c.Quality != 0 {
		t.Errorf("maxitems change = %+v, %v", c, err)
	}

	if _, err := ParseChange("maxprice", "pink", 1); !errors.Is(err, economy.ErrUnsupportedQuality) {
		t.Errorf("bad colour error = %v", err)
	}
	if _, err := ParseChange("colour", "blue", 1); !errors.Is(err, ErrUnknownField) {
		t.Errorf("bad field error = %v", err)
	}
}
