package curve

import "github.com/ashveil/progression-engine/internal/domain"

// Default curve parameters. The character curve is open-ended (deep
// level cap, exponential growth); affinity tracks use the small bounded
// tier curve.
var (
	DefaultLevelParams = LevelParams{
		Base:             100,
		ScaleNumerator:   110,
		ScaleDenominator: 100,
		MaxLevel:         9999,
	}

	DefaultTierParams = TierParams{
		Base:    500,
		Ratio:   3,
		MaxTier: 7,
	}
)

// Catalog selects the curve for a track by its name
type Catalog struct {
	level *LevelCurve
	tier  *TierCurve
}

// NewCatalog builds a catalog from explicit curve parameters
func NewCatalog(levelParams LevelParams, tierParams TierParams) (*Catalog, error) {
	level, err := NewLevelCurve(levelParams)
	if err != nil {
		return nil, err
	}
	tier, err := NewTierCurve(tierParams)
	if err != nil {
		return nil, err
	}
	return &Catalog{level: level, tier: tier}, nil
}

// NewDefaultCatalog builds a catalog with the default parameters
func NewDefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultLevelParams, DefaultTierParams)
	if err != nil {
		// Defaults are compile-time constants; this cannot fail
		panic(err)
	}
	return c
}

// ForTrack returns the curve governing the given track name
func (c *Catalog) ForTrack(trackName string) Curve {
	if trackName == domain.TrackCharacter {
		return c.level
	}
	return c.tier
}
