package curve

import (
	"fmt"
	"math/big"
)

// TierParams configures the geometric affinity-tier curve. The cumulative
// requirement for tier T uses the closed form base*(r^T - r)/(r-1), which
// is zero at tier 1. MaxTier is small (single digits) so the table is tiny.
type TierParams struct {
	Base    int64
	Ratio   int64
	MaxTier int
}

// TierCurve is the bounded geometric-series curve for affinity tracks
type TierCurve struct {
	params     TierParams
	cumulative []*big.Int
}

// NewTierCurve validates params and precomputes the cumulative table
func NewTierCurve(params TierParams) (*TierCurve, error) {
	if params.Base <= 0 {
		return nil, fmt.Errorf("tier curve base must be positive, got %d", params.Base)
	}
	if params.Ratio < 2 {
		return nil, fmt.Errorf("tier curve ratio must be >= 2, got %d", params.Ratio)
	}
	if params.MaxTier < 1 {
		return nil, fmt.Errorf("tier curve max tier must be >= 1, got %d", params.MaxTier)
	}

	c := &TierCurve{params: params}
	c.buildTable()
	return c, nil
}

func (c *TierCurve) buildTable() {
	base := big.NewInt(c.params.Base)
	ratio := big.NewInt(c.params.Ratio)
	ratioMinusOne := big.NewInt(c.params.Ratio - 1)

	c.cumulative = make([]*big.Int, c.params.MaxTier)
	rPow := new(big.Int).Set(ratio) // r^1

	for tier := 1; tier <= c.params.MaxTier; tier++ {
		// base * (r^tier - r) / (r-1)
		n := new(big.Int).Sub(rPow, ratio)
		n.Mul(n, base)
		n.Quo(n, ratioMinusOne)
		c.cumulative[tier-1] = n

		rPow = new(big.Int).Mul(rPow, ratio)
	}
}

// MaxLevel returns the configured tier ceiling
func (c *TierCurve) MaxLevel() int {
	return c.params.MaxTier
}

// TotalExperienceForLevel returns cumulative experience to hold tier
func (c *TierCurve) TotalExperienceForLevel(tier int) *big.Int {
	if tier <= 1 {
		return big.NewInt(0)
	}
	if tier > c.params.MaxTier {
		tier = c.params.MaxTier
	}
	return new(big.Int).Set(c.cumulative[tier-1])
}

// ExperienceRequiredForLevel returns the increment from tier-1 to tier
func (c *TierCurve) ExperienceRequiredForLevel(tier int) *big.Int {
	if tier <= 1 || tier > c.params.MaxTier {
		return big.NewInt(0)
	}
	return new(big.Int).Sub(c.cumulative[tier-1], c.cumulative[tier-2])
}

// LevelForExperience returns the highest tier whose cumulative
// requirement does not exceed total. MaxTier is tiny, so a forward
// walk is the whole search.
func (c *TierCurve) LevelForExperience(total *big.Int) int {
	if total == nil || total.Sign() <= 0 {
		return 1
	}
	tier := 1
	for tier < c.params.MaxTier && c.cumulative[tier].Cmp(total) <= 0 {
		tier++
	}
	return tier
}

// ExperienceToNext returns remaining experience until the next tier
func (c *TierCurve) ExperienceToNext(total *big.Int) *big.Int {
	if total == nil || total.Sign() < 0 {
		total = big.NewInt(0)
	}
	tier := c.LevelForExperience(total)
	if tier >= c.params.MaxTier {
		return big.NewInt(0)
	}
	return new(big.Int).Sub(c.cumulative[tier], total)
}
