package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmsman-ai/helmsman/internal/catalog"
	"github.com/helmsman-ai/helmsman/internal/config"
	"github.com/helmsman-ai/helmsman/internal/scoring"
	"github.com/helmsman-ai/helmsman/pkg/models"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show scored models, tiers, and operating points",
	Long: `Load the benchmark catalog, score every model, and show the tier
partition and the resolved operating points.

Tiers partition models by cost per million tokens:
  Free      cost is exactly zero
  Balanced  cost below the balanced ceiling (default $0.50)
  Premium   cost below the premium ceiling (default $1.00)
  Excluded  at or above the premium ceiling; never routed to

Operating points are the three model slots routing targets:
  MINIMUM   best free model with acceptable value
  DEFAULT   best value-for-money model
  MAXIMUM   highest-capability model under the premium ceiling`,
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	snapshot, err := catalog.Load(cfg.Catalog.Path, 1)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	engine := scoring.NewEngine(cfg.Scoring)
	scored, err := engine.ScoreAll(snapshot.Profiles)
	if err != nil {
		return fmt.Errorf("score catalog: %w", err)
	}

	tiers := cfg.Selection.Partition(scored)
	for _, tier := range []models.Tier{models.TierFree, models.TierBalanced, models.TierPremium, models.TierExcluded} {
		printTier(tier, tiers[tier])
	}

	selector := scoring.NewSelector(cfg.Selection)
	points, err := selector.ResolveOperatingPoints(scored, snapshot.Version)
	if err != nil {
		return fmt.Errorf("resolve operating points: %w", err)
	}

	fmt.Println()
	color.New(color.Bold).Println("Operating points")
	fmt.Printf("  MINIMUM  %s\n", points.Minimum)
	fmt.Printf("  DEFAULT  %s\n", points.Default)
	fmt.Printf("  MAXIMUM  %s\n", points.Maximum)
	return nil
}

func printTier(tier models.Tier, entries []models.ScoredProfile) {
	color.New(color.Bold).Printf("%s (%d)\n", tier, len(entries))
	sorted := make([]models.ScoredProfile, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OverallScore > sorted[j].OverallScore
	})
	for _, entry := range sorted {
		fmt.Printf("  %-40s overall %6.2f  value %8.1f  $%.3f/Mtok\n",
			entry.ID, entry.OverallScore, entry.ValueScore, entry.CostPerMillionTokens)
	}
	if len(entries) == 0 {
		fmt.Println("  (none)")
	}
}
