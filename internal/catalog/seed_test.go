package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/talgya/auctionbot/internal/economy"
)

type fakeSink struct {
	templates []economy.ItemTemplate
	overrides map[uint32]Override
}

func (f *fakeSink) UpsertItemTemplates(ctx context.Context, templates []economy.ItemTemplate) error {
	f.templates = append(f.templates, templates...)
	return nil
}

func (f *fakeSink) SetPriceOverride(ctx context.Context, itemID uint32, o Override) error {
	if f.overrides == nil {
		f.overrides = make(map[uint32]Override)
	}
	f.overrides[itemID] = o
	return nil
}

const seedYAML = `
items:
  - id: 2589
    name: Linen Cloth
    class: 7
    quality: 1
    buy_price: 54
    sell_price: 13
    max_stack: 20
    sellable: true
  - id: 43338
    name: Glyph of Sprint
    class: 16
    quality: 2
    buy_price: 0
    sell_price: 0
    sellable: true
overrides:
  - item: 2589
    average: 400
    minimum: 250
`

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(seed.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(seed.Items))
	}
	cloth := seed.Items[0]
	if cloth.Class != economy.ClassTradeGoods || cloth.Quality != economy.QualityNormal || cloth.MaxStack != 20 {
		t.Errorf("cloth = %+v", cloth)
	}
	if seed.Items[1].MaxStack != 1 {
		t.Errorf("missing max_stack = %d, want 1", seed.Items[1].MaxStack)
	}

	sink := &fakeSink{}
	if err := seed.Import(context.Background(), sink); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(sink.templates) != 2 {
		t.Errorf("imported templates = %d, want 2", len(sink.templates))
	}
	if o := sink.overrides[2589]; o.Average != 400 || o.Minimum != 250 {
		t.Errorf("override = %+v, want {400 250}", o)
	}
}

func TestLoadSeedRejectsMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	if err := os.WriteFile(path, []byte("items:\n  - name: nameless\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSeed(path); err == nil {
		t.Fatal("expected error for item without id")
	}
}
