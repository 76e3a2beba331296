// Package catalog loads and validates the benchmark catalog of model
// candidates. A catalog is an immutable snapshot; refreshing it produces a
// new snapshot rather than mutating entries in place.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

// ErrEmptyCatalog indicates the catalog file contained no model entries.
var ErrEmptyCatalog = errors.New("catalog contains no models")

// Snapshot is one immutable version of the benchmark catalog.
type Snapshot struct {
	// Version increases monotonically with each reload.
	Version int
	// Profiles holds the candidates in declaration order.
	Profiles []models.ModelProfile
}

// catalogFile is the on-disk YAML shape.
type catalogFile struct {
	Models []models.ModelProfile `yaml:"models"`
}

// Load reads and validates a catalog file. Failures here are fatal to
// process startup, not to individual tasks.
func Load(path string, version int) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, version)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte, version int) (*Snapshot, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]bool, len(file.Models))
	for i := range file.Models {
		p := &file.Models[i]
		p.CatalogIndex = i
		if err := validateProfile(*p); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate model id %q", i, p.ID)
		}
		seen[p.ID] = true
	}

	return &Snapshot{Version: version, Profiles: file.Models}, nil
}

// validateProfile checks the structural invariants of one catalog entry.
// Benchmark completeness is deliberately left to the scoring engine, which
// owns the list of benchmarks it needs.
func validateProfile(p models.ModelProfile) error {
	if p.ID == "" {
		return errors.New("missing model id")
	}
	if p.CostPerMillionTokens < 0 {
		return fmt.Errorf("model %s: negative cost", p.ID)
	}
	if p.ContextWindow <= 0 {
		return fmt.Errorf("model %s: context window must be positive", p.ID)
	}
	if p.AvailabilityScore < 0 || p.AvailabilityScore > 1 {
		return fmt.Errorf("model %s: availability score must be in [0,1]", p.ID)
	}
	return nil
}

// CostFor returns the cost per million tokens for a model id.
func (s *Snapshot) CostFor(modelID string) (float64, bool) {
	for _, p := range s.Profiles {
		if p.ID == modelID {
			return p.CostPerMillionTokens, true
		}
	}
	return 0, false
}

// Pricing returns a model id to cost-per-million-tokens map for the
// inference adapter.
func (s *Snapshot) Pricing() map[string]float64 {
	pricing := make(map[string]float64, len(s.Profiles))
	for _, p := range s.Profiles {
		pricing[p.ID] = p.CostPerMillionTokens
	}
	return pricing
}
