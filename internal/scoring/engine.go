// Package scoring computes derived scores for model candidates and resolves
// the operating points used for routing.
package scoring

import (
	"errors"
	"fmt"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

// ErrIncompleteBenchmarkData indicates a catalog entry is missing one of the
// required benchmark scores. Missing values fail loudly instead of defaulting
// to zero, which would silently corrupt the ranking.
var ErrIncompleteBenchmarkData = errors.New("incomplete benchmark data")

// costSmoothing keeps the value score finite for free models. It caps a free
// model's value at a large but bounded number so free candidates can dominate
// paid ones without producing an undefined result.
const costSmoothing = 0.01

// Weights holds the per-benchmark weights for the overall score.
type Weights struct {
	MMLU      float64 `mapstructure:"mmlu"`
	HumanEval float64 `mapstructure:"humaneval"`
	GSM8K     float64 `mapstructure:"gsm8k"`
	MTBench   float64 `mapstructure:"mt_bench"`
}

// DefaultWeights returns the standard benchmark weighting.
func DefaultWeights() Weights {
	return Weights{
		MMLU:      0.3,
		HumanEval: 0.3,
		GSM8K:     0.2,
		MTBench:   0.2,
	}
}

// Sum returns the total of all weights. A valid configuration sums to 1.0.
func (w Weights) Sum() float64 {
	return w.MMLU + w.HumanEval + w.GSM8K + w.MTBench
}

// Engine derives overall and value scores from model profiles. Scoring is a
// pure in-memory computation with no side effects.
type Engine struct {
	weights Weights
}

// NewEngine creates an Engine with the given weights.
func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights}
}

// Score computes the derived scores for a single profile. It fails with
// ErrIncompleteBenchmarkData if any required benchmark is absent.
func (e *Engine) Score(profile models.ModelProfile) (models.ScoredProfile, error) {
	for _, name := range models.RequiredBenchmarks {
		if _, ok := profile.BenchmarkScores[name]; !ok {
			return models.ScoredProfile{}, fmt.Errorf("model %s: missing benchmark %q: %w",
				profile.ID, name, ErrIncompleteBenchmarkData)
		}
	}

	overall := e.weights.MMLU*profile.BenchmarkScores[models.BenchmarkMMLU] +
		e.weights.HumanEval*profile.BenchmarkScores[models.BenchmarkHumanEval] +
		e.weights.GSM8K*profile.BenchmarkScores[models.BenchmarkGSM8K] +
		e.weights.MTBench*profile.BenchmarkScores[models.BenchmarkMTBench]

	return models.ScoredProfile{
		ModelProfile: profile,
		OverallScore: overall,
		ValueScore:   overall / (profile.CostPerMillionTokens + costSmoothing),
	}, nil
}

// ScoreAll scores every profile in catalog declaration order. The first
// incomplete entry aborts the whole batch; a catalog that cannot be scored
// cannot support selection.
func (e *Engine) ScoreAll(profiles []models.ModelProfile) ([]models.ScoredProfile, error) {
	scored := make([]models.ScoredProfile, 0, len(profiles))
	for _, p := range profiles {
		sp, err := e.Score(p)
		if err != nil {
			return nil, err
		}
		scored = append(scored, sp)
	}
	return scored, nil
}
