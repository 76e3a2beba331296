package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "helmsman",
	Short: "Cost-aware model routing for multi-agent pipelines",
	Long: `Helmsman routes LLM tasks to the cheapest model that can handle them,
escalating to stronger models only when response quality demands it.

It scores a benchmark catalog into three operating points (MINIMUM,
DEFAULT, MAXIMUM), picks a starting point per task from its type and
importance, and retries with escalation when a response scores below
the quality floor. Every invocation lands in a usage ledger so cost
stays visible.

Core capabilities:
- Scores models on MMLU, HumanEval, GSM8K, and MT-Bench benchmarks
- Partitions the catalog into Free, Balanced, and Premium tiers
- Escalates once to MAXIMUM on low-quality responses
- Downgrades a session to MINIMUM after a rate limit
- Runs the fixed Executive > Operations > {Knowledge, Planning} > Quality pipeline`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(coordinateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
