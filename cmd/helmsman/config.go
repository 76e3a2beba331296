package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmsman-ai/helmsman/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Display the configuration after merging defaults, the user config,
any project-level .helmsman.yaml, and environment variables.

Configuration is stored at ~/.config/helmsman/config.yaml
Project-specific overrides can be placed in .helmsman.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		displayConfig(cfg)
	},
}

func displayConfig(cfg *config.Config) {
	apiKeyDisplay := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKeyDisplay = "****"
	}

	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("catalog.path: %s\n", cfg.Catalog.Path)
	fmt.Printf("catalog.watch: %t\n", cfg.Catalog.Watch)
	fmt.Printf("scoring.mmlu: %.2f\n", cfg.Scoring.MMLU)
	fmt.Printf("scoring.humaneval: %.2f\n", cfg.Scoring.HumanEval)
	fmt.Printf("scoring.gsm8k: %.2f\n", cfg.Scoring.GSM8K)
	fmt.Printf("scoring.mt_bench: %.2f\n", cfg.Scoring.MTBench)
	fmt.Printf("selection.balanced_cost_ceiling: %.2f\n", cfg.Selection.BalancedCostCeiling)
	fmt.Printf("selection.premium_cost_ceiling: %.2f\n", cfg.Selection.PremiumCostCeiling)
	fmt.Printf("routing.max_attempts: %d\n", cfg.Routing.MaxAttempts)
	fmt.Printf("routing.backoff_base: %s\n", cfg.Routing.BackoffBase)
	fmt.Printf("routing.quality_floor: %d\n", cfg.Routing.QualityFloor)
	fmt.Printf("routing.call_timeout: %s\n", cfg.Routing.CallTimeout)
	fmt.Printf("routing.max_tokens: %d\n", cfg.Routing.MaxTokens)
	fmt.Printf("ledger.db_path: %s\n", cfg.Ledger.DBPath)
	fmt.Printf("telemetry.metrics_addr: %s\n", cfg.Telemetry.MetricsAddr)
	fmt.Printf("judge_model: %s\n", cfg.JudgeModel)
}
