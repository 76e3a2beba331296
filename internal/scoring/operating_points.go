package scoring

import (
	"errors"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

// Selection errors. All are fatal at resolution time: they mean the catalog
// cannot support the routing policy and must be surfaced to the operator.
var (
	// ErrNoFreeCandidate indicates no free model qualifies for MINIMUM.
	ErrNoFreeCandidate = errors.New("no free candidate for MINIMUM")
	// ErrNoDefaultCandidate indicates no model qualifies for DEFAULT.
	ErrNoDefaultCandidate = errors.New("no candidate for DEFAULT")
	// ErrNoMaximumCandidate indicates no model qualifies for MAXIMUM.
	ErrNoMaximumCandidate = errors.New("no candidate for MAXIMUM")
)

// Thresholds holds the tier cost boundaries and qualification floors used
// when resolving operating points. Costs are USD per million tokens.
type Thresholds struct {
	// BalancedCostCeiling is the exclusive upper cost bound for the
	// Balanced tier (and for DEFAULT candidates).
	BalancedCostCeiling float64 `mapstructure:"balanced_cost_ceiling"`
	// PremiumCostCeiling is the exclusive upper cost bound for the
	// Premium tier; models at or above it are excluded entirely.
	PremiumCostCeiling float64 `mapstructure:"premium_cost_ceiling"`
	// MinimumValueFloor is the value score a free model must exceed to
	// qualify for MINIMUM.
	MinimumValueFloor float64 `mapstructure:"minimum_value_floor"`
	// DefaultValueFloor is the value score a Balanced model must exceed
	// to qualify for DEFAULT without widening.
	DefaultValueFloor float64 `mapstructure:"default_value_floor"`
	// MaximumOverallFloor is the overall score a model must exceed to
	// qualify for MAXIMUM without falling back.
	MaximumOverallFloor float64 `mapstructure:"maximum_overall_floor"`
}

// DefaultThresholds returns the standard tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BalancedCostCeiling: 0.50,
		PremiumCostCeiling:  1.00,
		MinimumValueFloor:   30,
		DefaultValueFloor:   50,
		MaximumOverallFloor: 70,
	}
}

// TierFor returns the tier bucket for a given cost per million tokens.
func (t Thresholds) TierFor(cost float64) models.Tier {
	switch {
	case cost == 0:
		return models.TierFree
	case cost < t.BalancedCostCeiling:
		return models.TierBalanced
	case cost < t.PremiumCostCeiling:
		return models.TierPremium
	default:
		return models.TierExcluded
	}
}

// Partition groups scored candidates into tier buckets, preserving catalog
// declaration order within each bucket.
func (t Thresholds) Partition(candidates []models.ScoredProfile) map[models.Tier][]models.ScoredProfile {
	buckets := make(map[models.Tier][]models.ScoredProfile)
	for _, c := range candidates {
		tier := t.TierFor(c.CostPerMillionTokens)
		buckets[tier] = append(buckets[tier], c)
	}
	return buckets
}

// Selector resolves the MINIMUM/DEFAULT/MAXIMUM operating points from a
// scored candidate list. Resolution is deterministic and idempotent for an
// unchanged candidate list.
type Selector struct {
	thresholds Thresholds
}

// NewSelector creates a Selector with the given thresholds.
func NewSelector(thresholds Thresholds) *Selector {
	return &Selector{thresholds: thresholds}
}

// ResolveOperatingPoints picks the three operating points from the
// candidates. catalogVersion is carried on the result for audit logging.
//
// MINIMUM is the best overall score among free models whose value score
// exceeds the minimum floor. DEFAULT is the best value score in the Balanced
// tier above the default floor, widening to any candidate under the balanced
// cost ceiling when nothing qualifies. MAXIMUM is the best overall score
// under the premium ceiling above the overall floor, falling back to the
// single best overall under the ceiling.
func (s *Selector) ResolveOperatingPoints(candidates []models.ScoredProfile, catalogVersion int) (models.OperatingPoints, error) {
	buckets := s.thresholds.Partition(candidates)

	minimum := pick(buckets[models.TierFree],
		func(c models.ScoredProfile) bool { return c.ValueScore > s.thresholds.MinimumValueFloor },
		byOverall)
	if minimum == nil {
		return models.OperatingPoints{}, ErrNoFreeCandidate
	}

	def := pick(buckets[models.TierBalanced],
		func(c models.ScoredProfile) bool { return c.ValueScore > s.thresholds.DefaultValueFloor },
		byValue)
	if def == nil {
		// Widen to anything under the balanced cost ceiling, including
		// free models, and take the best value score.
		def = pick(candidates,
			func(c models.ScoredProfile) bool {
				return c.CostPerMillionTokens < s.thresholds.BalancedCostCeiling
			},
			byValue)
	}
	if def == nil {
		return models.OperatingPoints{}, ErrNoDefaultCandidate
	}

	underCeiling := func(c models.ScoredProfile) bool {
		return c.CostPerMillionTokens < s.thresholds.PremiumCostCeiling
	}
	maximum := pick(candidates,
		func(c models.ScoredProfile) bool {
			return underCeiling(c) && c.OverallScore > s.thresholds.MaximumOverallFloor
		},
		byOverall)
	if maximum == nil {
		maximum = pick(candidates, underCeiling, byOverall)
	}
	if maximum == nil {
		return models.OperatingPoints{}, ErrNoMaximumCandidate
	}

	return models.OperatingPoints{
		Minimum:        minimum.ID,
		Default:        def.ID,
		Maximum:        maximum.ID,
		CatalogVersion: catalogVersion,
	}, nil
}

// byOverall and byValue extract the metric a pick maximizes.
func byOverall(c models.ScoredProfile) float64 { return c.OverallScore }
func byValue(c models.ScoredProfile) float64   { return c.ValueScore }

// pick returns the candidate maximizing metric among those passing the
// filter. Ties break on lowest cost, then on catalog declaration order, so
// resolution is reproducible for a given snapshot.
func pick(candidates []models.ScoredProfile, filter func(models.ScoredProfile) bool, metric func(models.ScoredProfile) float64) *models.ScoredProfile {
	var best *models.ScoredProfile
	for i := range candidates {
		c := candidates[i]
		if !filter(c) {
			continue
		}
		if best == nil || better(c, *best, metric) {
			best = &candidates[i]
		}
	}
	return best
}

// better reports whether a should replace b as the current pick.
func better(a, b models.ScoredProfile, metric func(models.ScoredProfile) float64) bool {
	ma, mb := metric(a), metric(b)
	if ma != mb {
		return ma > mb
	}
	if a.CostPerMillionTokens != b.CostPerMillionTokens {
		return a.CostPerMillionTokens < b.CostPerMillionTokens
	}
	return a.CatalogIndex < b.CatalogIndex
}
