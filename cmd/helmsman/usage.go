package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmsman-ai/helmsman/internal/config"
	"github.com/helmsman-ai/helmsman/internal/ledger"
)

var usageReset bool

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show accumulated cost and quality from the usage ledger",
	Long: `Display the persisted usage ledger: total cost, call count, average
quality, and a per-model breakdown.

Requires ledger.db_path to be set in the configuration; without it,
usage is tracked in memory only and discarded when a command exits.`,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().BoolVar(&usageReset, "reset", false, "Clear all persisted usage entries")
}

func runUsage(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Ledger.DBPath == "" {
		fmt.Println("No usage database configured. Set ledger.db_path to persist usage.")
		return nil
	}

	store, err := ledger.OpenStore(cfg.Ledger.DBPath)
	if err != nil {
		return fmt.Errorf("open usage store: %w", err)
	}
	defer store.Close()

	if usageReset {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear usage store: %w", err)
		}
		fmt.Println("Usage ledger cleared.")
		return nil
	}

	summary, err := store.LoadSummary()
	if err != nil {
		return fmt.Errorf("load summary: %w", err)
	}
	if summary.CallCount == 0 {
		fmt.Println("No usage recorded yet.")
		return nil
	}

	label := color.New(color.Faint).SprintFunc()
	fmt.Printf("%s %d\n", label("calls:"), summary.CallCount)
	fmt.Printf("%s $%.4f\n", label("total cost:"), summary.TotalCost)
	fmt.Printf("%s %.1f/10\n", label("avg quality:"), summary.AverageQuality)
	fmt.Println()

	entries, err := store.LoadEntries()
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	printByModel(entries)
	return nil
}

func printByModel(entries []ledger.Entry) {
	type agg struct {
		calls   int
		tokens  int64
		cost    float64
		quality int
	}
	perModel := make(map[string]*agg)
	for _, entry := range entries {
		a := perModel[entry.ModelID]
		if a == nil {
			a = &agg{}
			perModel[entry.ModelID] = a
		}
		a.calls++
		a.tokens += entry.TokensUsed
		a.cost += entry.CostIncurred
		a.quality += entry.QualityScore
	}

	ids := make([]string, 0, len(perModel))
	for id := range perModel {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	color.New(color.Bold).Println("By model")
	for _, id := range ids {
		a := perModel[id]
		fmt.Printf("  %-40s %4d calls  %8d tokens  $%8.4f  avg quality %.1f\n",
			id, a.calls, a.tokens, a.cost, float64(a.quality)/float64(a.calls))
	}
}
