package economy

import (
	"errors"
	"testing"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		quality Quality
		class   ItemClass
		want    Tier
	}{
		{QualityPoor, ClassTradeGoods, 0},
		{QualityArtifact, ClassTradeGoods, 6},
		{QualityPoor, ClassWeapon, 7},
		{QualityRare, ClassArmor, 10},
		{QualityArtifact, ClassGlyph, 13},
	}
	for _, tt := range tests {
		got, err := TierFor(tt.quality, tt.class)
		if err != nil {
			t.Fatalf("TierFor(%d, %d): %v", tt.quality, tt.class, err)
		}
		if got != tt.want {
			t.Errorf("TierFor(%d, %d) = %d, want %d", tt.quality, tt.class, got, tt.want)
		}
		if got.Quality() != tt.quality {
			t.Errorf("Tier(%d).Quality() = %d, want %d", got, got.Quality(), tt.quality)
		}
		if got.TradeGoods() != (tt.class == ClassTradeGoods) {
			t.Errorf("Tier(%d).TradeGoods() = %v", got, got.TradeGoods())
		}
	}
}

func TestTierFor_Unsupported(t *testing.T) {
	_, err := TierFor(Quality(7), ClassWeapon)
	if !errors.Is(err, ErrUnsupportedQuality) {
		t.Errorf("TierFor(7) error = %v, want ErrUnsupportedQuality", err)
	}
}

func TestTierString(t *testing.T) {
	if got := Tier(2).String(); got != "green trade goods" {
		t.Errorf("Tier(2) = %q", got)
	}
	if got := Tier(10).String(); got != "blue items" {
		t.Errorf("Tier(10) = %q", got)
	}
}

func TestQualityFromColor(t *testing.T) {
	for q := Quality(0); q < QualityCount; q++ {
		got, ok := QualityFromColor(q.Color())
		if !ok || got != q {
			t.Errorf("QualityFromColor(%q) = %d, %v", q.Color(), got, ok)
		}
	}
	if _, ok := QualityFromColor("pink"); ok {
		t.Error("QualityFromColor(pink) should fail")
	}
}
