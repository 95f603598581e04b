package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/auctionbot/internal/economy"
)

// Seed is item data imported from a YAML file, used to populate an empty
// database or refresh it from a dump of the host's item tables.
type Seed struct {
	Items     []economy.ItemTemplate `yaml:"items"`
	Overrides []SeedOverride         `yaml:"overrides"`
}

// SeedOverride is one price override row in a seed file.
type SeedOverride struct {
	ItemID  uint32 `yaml:"item"`
	Average uint64 `yaml:"average"`
	Minimum uint64 `yaml:"minimum"`
}

// Sink stores imported catalog data.
type Sink interface {
	UpsertItemTemplates(ctx context.Context, templates []economy.ItemTemplate) error
	SetPriceOverride(ctx context.Context, itemID uint32, o Override) error
}

// LoadSeed parses a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}

	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}

	for i, it := range s.Items {
		if it.ID == 0 {
			return nil, fmt.Errorf("catalog seed item %d: missing id", i)
		}
		if it.MaxStack == 0 {
			s.Items[i].MaxStack = 1
		}
	}
	return &s, nil
}

// Import writes the seed into sink.
func (s *Seed) Import(ctx context.Context, sink Sink) error {
	if len(s.Items) > 0 {
		if err := sink.UpsertItemTemplates(ctx, s.Items); err != nil {
			return fmt.Errorf("import items: %w", err)
		}
	}
	for _, o := range s.Overrides {
		if err := sink.SetPriceOverride(ctx, o.ItemID, Override{Average: o.Average, Minimum: o.Minimum}); err != nil {
			return fmt.Errorf("import override for item %d: %w", o.ItemID, err)
		}
	}
	return nil
}
