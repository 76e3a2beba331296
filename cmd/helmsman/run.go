package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

var (
	runType       string
	runImportance string
	runMaxTokens  int
)

var runCmd = &cobra.Command{
	Use:   "run <prompt>",
	Short: "Run a single task through the router",
	Long: `Run one task through model routing to a terminal result.

The starting operating point follows from the task type and importance:
  - coding and complex tasks start at MAXIMUM (unless importance is low)
  - critical importance starts at MAXIMUM
  - low importance starts at MINIMUM
  - everything else starts at DEFAULT

A response scoring below the quality floor escalates once to MAXIMUM.
A rate limit downgrades the rest of the session to MINIMUM.

Task types: simple, coding, complex, planning, research
Importance: low, normal, critical`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func init() {
	runCmd.Flags().StringVar(&runType, "type", string(models.TaskTypeSimple), "Task type: simple, coding, complex, planning, or research")
	runCmd.Flags().StringVar(&runImportance, "importance", string(models.ImportanceNormal), "Task importance: low, normal, or critical")
	runCmd.Flags().IntVar(&runMaxTokens, "max-tokens", 0, "Response token cap (0 uses the configured default)")
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, shutting down...")
		cancel()
	}()
	return ctx, cancel
}

func runTask(cmd *cobra.Command, args []string) error {
	taskType := models.TaskType(runType)
	if !taskType.Valid() {
		return fmt.Errorf("invalid task type %q: must be simple, coding, complex, planning, or research", runType)
	}
	importance := models.Importance(runImportance)
	if !importance.Valid() {
		return fmt.Errorf("invalid importance %q: must be low, normal, or critical", runImportance)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	coord, err := a.coordinator()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	result := coord.ExecuteSingle(ctx, models.TaskDescriptor{
		Type:       taskType,
		Importance: importance,
		Prompt:     args[0],
		MaxTokens:  runMaxTokens,
	})

	printResult(result)
	if result.Status == models.TaskFailed {
		return fmt.Errorf("task failed: %s", result.Error)
	}
	return nil
}

func printResult(result models.TaskResult) {
	fmt.Println(result.Response)
	fmt.Println()

	label := color.New(color.Faint).SprintFunc()
	fmt.Printf("%s %s\n", label("model:"), result.ModelID)
	fmt.Printf("%s %d\n", label("attempts:"), result.AttemptNumber)
	fmt.Printf("%s %d/10\n", label("quality:"), result.QualityScore)
	fmt.Printf("%s %d tokens, $%.4f\n", label("usage:"), result.TokensUsed, result.CostIncurred)
}
