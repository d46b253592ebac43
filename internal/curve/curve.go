package curve

import (
	"fmt"
	"math/big"
	"sort"
)

// Curve maps cumulative experience to a discrete level (or tier) and back.
// Implementations are pure and deterministic: no I/O, no shared mutable
// state, safe to call from inside a ledger transaction.
type Curve interface {
	// LevelForExperience returns the highest level whose cumulative
	// requirement does not exceed total. Never below 1.
	LevelForExperience(total *big.Int) int

	// TotalExperienceForLevel returns the cumulative experience required
	// to hold the given level. Level 1 requires zero. Levels beyond the
	// maximum clamp to the maximum.
	TotalExperienceForLevel(level int) *big.Int

	// ExperienceRequiredForLevel returns the increment between the given
	// level and the one below it. Zero for level 1 and beyond the maximum.
	ExperienceRequiredForLevel(level int) *big.Int

	// ExperienceToNext returns how much more experience is needed to reach
	// the next level from the given total, or zero at the maximum.
	ExperienceToNext(total *big.Int) *big.Int

	// MaxLevel returns the configured ceiling for this curve
	MaxLevel() int
}

// LevelParams configures the exponential character-level curve:
// required(L) = base * (num/den)^(L-1), computed in fixed point so the
// result is exact at any depth. Values exceed 64 bits within a few
// hundred levels, hence big.Int throughout.
type LevelParams struct {
	Base             int64
	ScaleNumerator   int64
	ScaleDenominator int64
	MaxLevel         int
}

// LevelCurve is the open-ended exponential curve for character levels
type LevelCurve struct {
	params LevelParams
	// cumulative[i] is the total experience required to hold level i+1;
	// cumulative[0] == 0. Built once at construction.
	cumulative []*big.Int
}

// NewLevelCurve validates params and precomputes the cumulative table
func NewLevelCurve(params LevelParams) (*LevelCurve, error) {
	if params.Base <= 0 {
		return nil, fmt.Errorf("level curve base must be positive, got %d", params.Base)
	}
	if params.ScaleNumerator <= 0 || params.ScaleDenominator <= 0 {
		return nil, fmt.Errorf("level curve scaling factor must be positive, got %d/%d",
			params.ScaleNumerator, params.ScaleDenominator)
	}
	if params.ScaleNumerator < params.ScaleDenominator {
		return nil, fmt.Errorf("level curve scaling factor must be >= 1, got %d/%d",
			params.ScaleNumerator, params.ScaleDenominator)
	}
	if params.MaxLevel < 1 {
		return nil, fmt.Errorf("level curve max level must be >= 1, got %d", params.MaxLevel)
	}

	c := &LevelCurve{params: params}
	c.buildTable()
	return c, nil
}

// buildTable fills the cumulative requirement table. The per-level
// requirement is kept as an exact rational (base*num^k over den^k) and
// floored only when materialized, so rounding never accumulates.
func (c *LevelCurve) buildTable() {
	num := big.NewInt(c.params.ScaleNumerator)
	den := big.NewInt(c.params.ScaleDenominator)

	c.cumulative = make([]*big.Int, c.params.MaxLevel)
	c.cumulative[0] = big.NewInt(0)

	// scaledBase tracks base * num^(L-1); denPow tracks den^(L-1)
	scaledBase := big.NewInt(c.params.Base)
	denPow := big.NewInt(1)

	total := big.NewInt(0)
	for level := 2; level <= c.params.MaxLevel; level++ {
		scaledBase = new(big.Int).Mul(scaledBase, num)
		denPow = new(big.Int).Mul(denPow, den)

		required := new(big.Int).Quo(scaledBase, denPow)
		total = new(big.Int).Add(total, required)
		c.cumulative[level-1] = total
	}
}

// MaxLevel returns the configured level ceiling
func (c *LevelCurve) MaxLevel() int {
	return c.params.MaxLevel
}

// TotalExperienceForLevel returns cumulative experience to hold level
func (c *LevelCurve) TotalExperienceForLevel(level int) *big.Int {
	if level <= 1 {
		return big.NewInt(0)
	}
	if level > c.params.MaxLevel {
		level = c.params.MaxLevel
	}
	return new(big.Int).Set(c.cumulative[level-1])
}

// ExperienceRequiredForLevel returns the increment from level-1 to level
func (c *LevelCurve) ExperienceRequiredForLevel(level int) *big.Int {
	if level <= 1 || level > c.params.MaxLevel {
		return big.NewInt(0)
	}
	return new(big.Int).Sub(c.cumulative[level-1], c.cumulative[level-2])
}

// LevelForExperience returns the highest level whose cumulative
// requirement does not exceed total. The table is strictly increasing,
// so a binary search over it gives the same answer as the bounded
// forward walk.
func (c *LevelCurve) LevelForExperience(total *big.Int) int {
	if total == nil || total.Sign() <= 0 {
		return 1
	}

	// Index of the first level whose requirement exceeds total
	idx := sort.Search(len(c.cumulative), func(i int) bool {
		return c.cumulative[i].Cmp(total) > 0
	})
	if idx == 0 {
		return 1
	}
	return idx
}

// ExperienceToNext returns remaining experience until the next level
func (c *LevelCurve) ExperienceToNext(total *big.Int) *big.Int {
	if total == nil || total.Sign() < 0 {
		total = big.NewInt(0)
	}
	level := c.LevelForExperience(total)
	if level >= c.params.MaxLevel {
		return big.NewInt(0)
	}
	return new(big.Int).Sub(c.cumulative[level], total)
}
