package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

const validCatalogYAML = `
models:
  - id: free-solid
    display_name: Free Solid
    benchmarks:
      mmlu: 70
      humaneval: 65
      gsm8k: 75
      mtBench: 68
    cost_per_million_tokens: 0
    context_window: 32000
    availability_score: 0.97
  - id: balanced-value
    display_name: Balanced Value
    benchmarks:
      mmlu: 82.3
      humaneval: 77.6
      gsm8k: 84.9
      mtBench: 80
    cost_per_million_tokens: 0.265
    context_window: 128000
    availability_score: 0.99
`

func TestParse_ValidCatalog(t *testing.T) {
	snapshot, err := Parse([]byte(validCatalogYAML), 1)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if snapshot.Version != 1 {
		t.Errorf("Version = %d, want 1", snapshot.Version)
	}
	if len(snapshot.Profiles) != 2 {
		t.Fatalf("len(Profiles) = %d, want 2", len(snapshot.Profiles))
	}

	first := snapshot.Profiles[0]
	if first.ID != "free-solid" || first.CatalogIndex != 0 {
		t.Errorf("first profile = %s (index %d), want free-solid (index 0)", first.ID, first.CatalogIndex)
	}
	if got := first.BenchmarkScores[models.BenchmarkMMLU]; got != 70 {
		t.Errorf("mmlu = %v, want 70", got)
	}

	second := snapshot.Profiles[1]
	if second.CatalogIndex != 1 {
		t.Errorf("second profile index = %d, want 1", second.CatalogIndex)
	}
	if second.CostPerMillionTokens != 0.265 {
		t.Errorf("cost = %v, want 0.265", second.CostPerMillionTokens)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "models: []"},
		{"missing id", `
models:
  - display_name: Anonymous
    benchmarks: {mmlu: 70, humaneval: 65, gsm8k: 75, mtBench: 68}
    cost_per_million_tokens: 0.1
    context_window: 32000
    availability_score: 0.9
`},
		{"negative cost", `
models:
  - id: bad-cost
    benchmarks: {mmlu: 70, humaneval: 65, gsm8k: 75, mtBench: 68}
    cost_per_million_tokens: -0.1
    context_window: 32000
    availability_score: 0.9
`},
		{"zero context window", `
models:
  - id: bad-ctx
    benchmarks: {mmlu: 70, humaneval: 65, gsm8k: 75, mtBench: 68}
    cost_per_million_tokens: 0.1
    context_window: 0
    availability_score: 0.9
`},
		{"availability out of range", `
models:
  - id: bad-avail
    benchmarks: {mmlu: 70, humaneval: 65, gsm8k: 75, mtBench: 68}
    cost_per_million_tokens: 0.1
    context_window: 32000
    availability_score: 1.5
`},
		{"duplicate id", `
models:
  - id: twin
    benchmarks: {mmlu: 70, humaneval: 65, gsm8k: 75, mtBench: 68}
    cost_per_million_tokens: 0.1
    context_window: 32000
    availability_score: 0.9
  - id: twin
    benchmarks: {mmlu: 70, humaneval: 65, gsm8k: 75, mtBench: 68}
    cost_per_million_tokens: 0.2
    context_window: 32000
    availability_score: 0.9
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml), 1); err == nil {
				t.Errorf("Parse() succeeded, want error")
			}
		})
	}
}

func TestParse_EmptyCatalogSentinel(t *testing.T) {
	_, err := Parse([]byte("models: []"), 1)
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("error = %v, want ErrEmptyCatalog", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), 1); err == nil {
		t.Errorf("Load() succeeded for missing file, want error")
	}
}

func TestSnapshot_Pricing(t *testing.T) {
	snapshot, err := Parse([]byte(validCatalogYAML), 1)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	pricing := snapshot.Pricing()
	if pricing["free-solid"] != 0 {
		t.Errorf("pricing[free-solid] = %v, want 0", pricing["free-solid"])
	}
	if pricing["balanced-value"] != 0.265 {
		t.Errorf("pricing[balanced-value] = %v, want 0.265", pricing["balanced-value"])
	}

	if cost, ok := snapshot.CostFor("balanced-value"); !ok || cost != 0.265 {
		t.Errorf("CostFor(balanced-value) = %v, %v", cost, ok)
	}
	if _, ok := snapshot.CostFor("unknown"); ok {
		t.Errorf("CostFor(unknown) reported found")
	}
}

func TestStore_ReloadSwapsVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(validCatalogYAML), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	resolve := func(s *Snapshot) (models.OperatingPoints, error) {
		return models.OperatingPoints{
			Minimum:        s.Profiles[0].ID,
			Default:        s.Profiles[len(s.Profiles)-1].ID,
			Maximum:        s.Profiles[len(s.Profiles)-1].ID,
			CatalogVersion: s.Version,
		}, nil
	}

	store, err := NewStore(path, resolve)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer store.Close()

	first := store.Current()
	if first.Snapshot.Version != 1 {
		t.Errorf("initial version = %d, want 1", first.Snapshot.Version)
	}
	if first.Points.Minimum != "free-solid" {
		t.Errorf("Minimum = %s, want free-solid", first.Points.Minimum)
	}

	if err := store.reload(); err != nil {
		t.Fatalf("reload() error = %v", err)
	}
	second := store.Current()
	if second.Snapshot.Version != 2 {
		t.Errorf("reloaded version = %d, want 2", second.Snapshot.Version)
	}
	if second == first {
		t.Errorf("reload returned the same resolved value; want a new immutable one")
	}
}

func TestStore_FailedResolveIsFatalAtStartup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(validCatalogYAML), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	resolveErr := errors.New("no free candidate for MINIMUM")
	_, err := NewStore(path, func(*Snapshot) (models.OperatingPoints, error) {
		return models.OperatingPoints{}, resolveErr
	})
	if !errors.Is(err, resolveErr) {
		t.Errorf("NewStore() error = %v, want wrapped resolve error", err)
	}
}
