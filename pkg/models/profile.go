// Package models defines the shared domain types for Helmsman.
package models

// Benchmark names recognized by the scoring engine.
const (
	// BenchmarkMMLU is the broad-knowledge benchmark.
	BenchmarkMMLU = "mmlu"
	// BenchmarkHumanEval is the code-generation benchmark.
	BenchmarkHumanEval = "humaneval"
	// BenchmarkGSM8K is the grade-school math benchmark.
	BenchmarkGSM8K = "gsm8k"
	// BenchmarkMTBench is the multi-turn conversation benchmark.
	BenchmarkMTBench = "mtBench"
)

// RequiredBenchmarks lists the benchmarks every catalog entry must carry.
var RequiredBenchmarks = []string{
	BenchmarkMMLU,
	BenchmarkHumanEval,
	BenchmarkGSM8K,
	BenchmarkMTBench,
}

// ModelProfile describes one model candidate loaded from the benchmark
// catalog. Profiles are immutable once loaded; a catalog refresh produces a
// whole new snapshot rather than mutating entries in place.
type ModelProfile struct {
	// ID is the opaque model identifier used for routing and invocation.
	ID string `json:"id" yaml:"id"`
	// DisplayName is the human-readable name.
	DisplayName string `json:"display_name" yaml:"display_name"`
	// BenchmarkScores maps benchmark name to numeric score.
	BenchmarkScores map[string]float64 `json:"benchmark_scores" yaml:"benchmarks"`
	// CostPerMillionTokens is the blended USD cost per million tokens.
	// Zero means the model is free.
	CostPerMillionTokens float64 `json:"cost_per_million_tokens" yaml:"cost_per_million_tokens"`
	// ContextWindow is the maximum context size in tokens.
	ContextWindow int `json:"context_window" yaml:"context_window"`
	// AvailabilityScore is the observed availability in [0,1].
	AvailabilityScore float64 `json:"availability_score" yaml:"availability_score"`
	// CatalogIndex is the declaration order within the catalog snapshot,
	// used as the final tie-breaker during selection.
	CatalogIndex int `json:"-" yaml:"-"`
}

// Free returns true if the model costs nothing to invoke.
func (p ModelProfile) Free() bool {
	return p.CostPerMillionTokens == 0
}

// ScoredProfile is a ModelProfile with its derived scores. It is always
// recomputed from the profile and never persisted independently.
type ScoredProfile struct {
	ModelProfile

	// OverallScore is the weighted combination of benchmark scores.
	OverallScore float64 `json:"overall_score"`
	// ValueScore is the overall score normalized by cost.
	ValueScore float64 `json:"value_score"`
}

// Tier is the cost-based bucket used to scope candidate search.
type Tier string

const (
	// TierFree holds models with zero cost.
	TierFree Tier = "free"
	// TierBalanced holds models costing under $0.50 per million tokens.
	TierBalanced Tier = "balanced"
	// TierPremium holds models costing under $1.00 per million tokens.
	TierPremium Tier = "premium"
	// TierExcluded holds models too expensive for automatic selection.
	TierExcluded Tier = "excluded"
)

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierBalanced, TierPremium, TierExcluded:
		return true
	default:
		return false
	}
}

// OperatingPoint names one of the three model slots the router targets.
type OperatingPoint string

const (
	// PointMinimum is the free low-cost slot.
	PointMinimum OperatingPoint = "MINIMUM"
	// PointDefault is the balanced cost-efficiency slot.
	PointDefault OperatingPoint = "DEFAULT"
	// PointMaximum is the highest-capability slot under the cost ceiling.
	PointMaximum OperatingPoint = "MAXIMUM"
)

// OperatingPoints holds the three resolved model ids for a catalog snapshot.
// The value is immutable and safe to share across concurrent stages; a new
// catalog version produces a new value rather than mutating this one.
type OperatingPoints struct {
	// Minimum is the model id for the MINIMUM slot (always free).
	Minimum string `json:"minimum"`
	// Default is the model id for the DEFAULT slot.
	Default string `json:"default"`
	// Maximum is the model id for the MAXIMUM slot.
	Maximum string `json:"maximum"`
	// CatalogVersion identifies the snapshot these points were derived from.
	CatalogVersion int `json:"catalog_version"`
}

// For returns the model id for the given operating point.
func (o OperatingPoints) For(p OperatingPoint) string {
	switch p {
	case PointMinimum:
		return o.Minimum
	case PointMaximum:
		return o.Maximum
	default:
		return o.Default
	}
}
