package scoring

import (
	"errors"
	"testing"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

func scoreFixture(t *testing.T, profiles ...models.ModelProfile) []models.ScoredProfile {
	t.Helper()
	for i := range profiles {
		profiles[i].CatalogIndex = i
	}
	scored, err := NewEngine(DefaultWeights()).ScoreAll(profiles)
	if err != nil {
		t.Fatalf("ScoreAll() error = %v", err)
	}
	return scored
}

func TestTierFor(t *testing.T) {
	thresholds := DefaultThresholds()
	tests := []struct {
		cost float64
		want models.Tier
	}{
		{0, models.TierFree},
		{0.01, models.TierBalanced},
		{0.49, models.TierBalanced},
		{0.50, models.TierPremium},
		{0.99, models.TierPremium},
		{1.00, models.TierExcluded},
		{5.00, models.TierExcluded},
	}

	for _, tt := range tests {
		if got := thresholds.TierFor(tt.cost); got != tt.want {
			t.Errorf("TierFor(%v) = %v, want %v", tt.cost, got, tt.want)
		}
	}
}

func TestResolveOperatingPoints_StandardCatalog(t *testing.T) {
	scored := scoreFixture(t,
		profileWith("free-solid", 70, 65, 75, 68, 0),
		profileWith("balanced-value", 82.3, 77.6, 84.9, 80, 0.265),
		profileWith("premium-strong", 85.2, 79.1, 88.7, 85, 0.80),
		profileWith("too-expensive", 95, 95, 95, 95, 2.50),
	)

	points, err := NewSelector(DefaultThresholds()).ResolveOperatingPoints(scored, 1)
	if err != nil {
		t.Fatalf("ResolveOperatingPoints() error = %v", err)
	}

	if points.Minimum != "free-solid" {
		t.Errorf("Minimum = %s, want free-solid", points.Minimum)
	}
	if points.Default != "balanced-value" {
		t.Errorf("Default = %s, want balanced-value", points.Default)
	}
	if points.Maximum != "premium-strong" {
		t.Errorf("Maximum = %s, want premium-strong", points.Maximum)
	}
	if points.CatalogVersion != 1 {
		t.Errorf("CatalogVersion = %d, want 1", points.CatalogVersion)
	}
}

func TestResolveOperatingPoints_Idempotent(t *testing.T) {
	scored := scoreFixture(t,
		profileWith("free-solid", 70, 65, 75, 68, 0),
		profileWith("balanced-value", 82.3, 77.6, 84.9, 80, 0.265),
		profileWith("premium-strong", 85.2, 79.1, 88.7, 85, 0.80),
	)
	selector := NewSelector(DefaultThresholds())

	first, err := selector.ResolveOperatingPoints(scored, 3)
	if err != nil {
		t.Fatalf("first resolution error = %v", err)
	}
	second, err := selector.ResolveOperatingPoints(scored, 3)
	if err != nil {
		t.Fatalf("second resolution error = %v", err)
	}
	if first != second {
		t.Errorf("resolutions differ: %+v vs %+v", first, second)
	}
}

func TestResolveOperatingPoints_NoFreeCandidate(t *testing.T) {
	scored := scoreFixture(t,
		profileWith("balanced-only", 82.3, 77.6, 84.9, 80, 0.265),
	)

	_, err := NewSelector(DefaultThresholds()).ResolveOperatingPoints(scored, 1)
	if !errors.Is(err, ErrNoFreeCandidate) {
		t.Errorf("error = %v, want ErrNoFreeCandidate", err)
	}
}

func TestResolveOperatingPoints_LowValueFreeDoesNotQualify(t *testing.T) {
	// A free model whose value score is below the floor cannot back MINIMUM.
	scored := scoreFixture(t,
		profileWith("free-weak", 0.1, 0.1, 0.1, 0.1, 0),
	)

	_, err := NewSelector(DefaultThresholds()).ResolveOperatingPoints(scored, 1)
	if !errors.Is(err, ErrNoFreeCandidate) {
		t.Errorf("error = %v, want ErrNoFreeCandidate", err)
	}
}

func TestResolveOperatingPoints_DefaultWidensToFree(t *testing.T) {
	// With no Balanced candidate above the value floor, DEFAULT widens to
	// any model under the balanced ceiling, which includes the free one.
	scored := scoreFixture(t,
		profileWith("free-solid", 70, 65, 75, 68, 0),
		profileWith("premium-strong", 85.2, 79.1, 88.7, 85, 0.80),
	)

	points, err := NewSelector(DefaultThresholds()).ResolveOperatingPoints(scored, 1)
	if err != nil {
		t.Fatalf("ResolveOperatingPoints() error = %v", err)
	}
	if points.Default != "free-solid" {
		t.Errorf("Default = %s, want free-solid", points.Default)
	}
}

func TestResolveOperatingPoints_MaximumFallback(t *testing.T) {
	// Nothing clears the overall floor, so MAXIMUM falls back to the best
	// overall score under the premium ceiling.
	scored := scoreFixture(t,
		profileWith("free-ok", 60, 55, 58, 52, 0),
		profileWith("balanced-mid", 65, 60, 62, 58, 0.30),
	)

	points, err := NewSelector(DefaultThresholds()).ResolveOperatingPoints(scored, 1)
	if err != nil {
		t.Fatalf("ResolveOperatingPoints() error = %v", err)
	}
	if points.Maximum != "balanced-mid" {
		t.Errorf("Maximum = %s, want balanced-mid", points.Maximum)
	}
}

func TestResolveOperatingPoints_ExpensiveModelsExcluded(t *testing.T) {
	scored := scoreFixture(t,
		profileWith("free-solid", 70, 65, 75, 68, 0),
		profileWith("balanced-value", 82.3, 77.6, 84.9, 80, 0.265),
		profileWith("frontier", 98, 97, 99, 96, 4.00),
	)

	points, err := NewSelector(DefaultThresholds()).ResolveOperatingPoints(scored, 1)
	if err != nil {
		t.Fatalf("ResolveOperatingPoints() error = %v", err)
	}
	if points.Maximum == "frontier" {
		t.Errorf("Maximum = frontier; models at or above the premium ceiling must be excluded")
	}
}

func TestResolveOperatingPoints_TieBreaksOnCostThenOrder(t *testing.T) {
	// Two Balanced candidates with identical scores: the cheaper one wins;
	// with identical cost too, declaration order wins.
	scored := scoreFixture(t,
		profileWith("pricier-twin", 82.3, 77.6, 84.9, 80, 0.30),
		profileWith("cheaper-twin", 82.3, 77.6, 84.9, 80, 0.30),
	)
	// Give the second twin a lower cost for the first assertion.
	base := []models.ModelProfile{
		profileWith("pricier", 82.3, 77.6, 84.9, 80, 0.30),
		profileWith("cheaper", 82.3, 77.6, 84.9, 80, 0.20),
		profileWith("free-solid", 70, 65, 75, 68, 0),
	}
	scoredCost := scoreFixture(t, base...)

	points, err := NewSelector(DefaultThresholds()).ResolveOperatingPoints(scoredCost, 1)
	if err != nil {
		t.Fatalf("ResolveOperatingPoints() error = %v", err)
	}
	// Note: identical benchmark scores at a lower cost mean a higher value
	// score, so "cheaper" wins DEFAULT on value alone; the cost tie-break is
	// exercised through MAXIMUM, where the metric is overall score.
	if points.Maximum != "cheaper" {
		t.Errorf("Maximum = %s, want cheaper (cost tie-break)", points.Maximum)
	}

	// Exact twins: declaration order decides.
	scoredTwins := append(scored, scoreFixture(t, profileWith("free-solid", 70, 65, 75, 68, 0))...)
	pointsTwins, err := NewSelector(DefaultThresholds()).ResolveOperatingPoints(scoredTwins, 1)
	if err != nil {
		t.Fatalf("ResolveOperatingPoints() error = %v", err)
	}
	if pointsTwins.Maximum != "pricier-twin" {
		t.Errorf("Maximum = %s, want pricier-twin (declaration order tie-break)", pointsTwins.Maximum)
	}
}
