package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

func profileWith(id string, mmlu, humaneval, gsm8k, mtBench, cost float64) models.ModelProfile {
	return models.ModelProfile{
		ID: id,
		BenchmarkScores: map[string]float64{
			models.BenchmarkMMLU:      mmlu,
			models.BenchmarkHumanEval: humaneval,
			models.BenchmarkGSM8K:     gsm8k,
			models.BenchmarkMTBench:   mtBench,
		},
		CostPerMillionTokens: cost,
		ContextWindow:        128000,
		AvailabilityScore:    0.99,
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestScore_KnownProfiles(t *testing.T) {
	tests := []struct {
		name        string
		profile     models.ModelProfile
		wantOverall float64
		wantValue   float64
	}{
		{
			name:        "balanced candidate",
			profile:     profileWith("candidate-a", 82.3, 77.6, 84.9, 80, 0.265),
			wantOverall: 80.95,
			wantValue:   294.4,
		},
		{
			name:        "free candidate",
			profile:     profileWith("candidate-b", 70, 65, 75, 68, 0),
			wantOverall: 69.1,
			wantValue:   6910,
		},
		{
			name:        "premium candidate",
			profile:     profileWith("candidate-c", 85.2, 79.1, 88.7, 85, 0.80),
			wantOverall: 84.03,
			wantValue:   103.7,
		},
	}

	engine := NewEngine(DefaultWeights())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scored, err := engine.Score(tt.profile)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if !almostEqual(scored.OverallScore, tt.wantOverall, 0.01) {
				t.Errorf("OverallScore = %v, want %v", scored.OverallScore, tt.wantOverall)
			}
			if !almostEqual(scored.ValueScore, tt.wantValue, 0.1) {
				t.Errorf("ValueScore = %v, want %v", scored.ValueScore, tt.wantValue)
			}
		})
	}
}

func TestScore_MissingBenchmarkFailsLoudly(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	for _, missing := range models.RequiredBenchmarks {
		t.Run(missing, func(t *testing.T) {
			profile := profileWith("partial", 80, 80, 80, 80, 0.1)
			delete(profile.BenchmarkScores, missing)

			_, err := engine.Score(profile)
			if !errors.Is(err, ErrIncompleteBenchmarkData) {
				t.Errorf("Score() error = %v, want ErrIncompleteBenchmarkData", err)
			}
		})
	}
}

func TestScore_ValueDecreasesWithCost(t *testing.T) {
	// Holding benchmark scores fixed, a higher cost must always produce a
	// strictly lower value score.
	engine := NewEngine(DefaultWeights())

	costs := []float64{0, 0.05, 0.25, 0.49, 0.80, 2.0}
	prev := math.Inf(1)
	for _, cost := range costs {
		scored, err := engine.Score(profileWith("fixed", 80, 80, 80, 80, cost))
		if err != nil {
			t.Fatalf("Score() error = %v", err)
		}
		if scored.ValueScore >= prev {
			t.Errorf("ValueScore at cost %v = %v, want < %v", cost, scored.ValueScore, prev)
		}
		prev = scored.ValueScore
	}
}

func TestScore_FreeModelValueIsFinite(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	scored, err := engine.Score(profileWith("free", 80, 80, 80, 80, 0))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if math.IsInf(scored.ValueScore, 0) || math.IsNaN(scored.ValueScore) {
		t.Errorf("ValueScore = %v, want finite", scored.ValueScore)
	}
}

func TestScoreAll_PreservesDeclarationOrder(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	profiles := []models.ModelProfile{
		profileWith("first", 70, 65, 75, 68, 0),
		profileWith("second", 82.3, 77.6, 84.9, 80, 0.265),
	}
	for i := range profiles {
		profiles[i].CatalogIndex = i
	}

	scored, err := engine.ScoreAll(profiles)
	if err != nil {
		t.Fatalf("ScoreAll() error = %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("len(scored) = %d, want 2", len(scored))
	}
	if scored[0].ID != "first" || scored[1].ID != "second" {
		t.Errorf("order = [%s, %s], want [first, second]", scored[0].ID, scored[1].ID)
	}
}

func TestScoreAll_AbortsOnIncompleteEntry(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	bad := profileWith("bad", 80, 80, 80, 80, 0.1)
	delete(bad.BenchmarkScores, models.BenchmarkGSM8K)

	_, err := engine.ScoreAll([]models.ModelProfile{
		profileWith("good", 80, 80, 80, 80, 0.1),
		bad,
	})
	if !errors.Is(err, ErrIncompleteBenchmarkData) {
		t.Errorf("ScoreAll() error = %v, want ErrIncompleteBenchmarkData", err)
	}
}
