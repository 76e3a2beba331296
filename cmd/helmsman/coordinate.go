package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

var (
	coordinateType       string
	coordinateImportance string
	coordinateVerbose    bool
)

var coordinateCmd = &cobra.Command{
	Use:   "coordinate <task>",
	Short: "Run a task through the multi-agent pipeline",
	Long: `Run a composite task through the fixed agent pipeline.

Stages run in order: Executive breaks the task down, Operations executes
it, Knowledge and Planning enrich the output concurrently, and Quality
reviews everything. Each stage routes through the same escalation and
retry policy as 'run', and a rate limit in any stage downgrades the
remaining stages to MINIMUM.

A failed stage does not abort the session: downstream stages see an
explicit failure marker in its place and the session reports
partially_failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCoordinate,
}

func init() {
	coordinateCmd.Flags().StringVar(&coordinateType, "type", string(models.TaskTypeComplex), "Task type: simple, coding, complex, planning, or research")
	coordinateCmd.Flags().StringVar(&coordinateImportance, "importance", string(models.ImportanceNormal), "Task importance: low, normal, or critical")
	coordinateCmd.Flags().BoolVar(&coordinateVerbose, "verbose", false, "Print every stage response, not just the final one")
}

func runCoordinate(cmd *cobra.Command, args []string) error {
	taskType := models.TaskType(coordinateType)
	if !taskType.Valid() {
		return fmt.Errorf("invalid task type %q: must be simple, coding, complex, planning, or research", coordinateType)
	}
	importance := models.Importance(coordinateImportance)
	if !importance.Valid() {
		return fmt.Errorf("invalid importance %q: must be low, normal, or critical", coordinateImportance)
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

	session := coord.Coordinate(ctx, args[0], taskType, importance)
	printSession(session)

	switch session.Status {
	case models.SessionFailed:
		return fmt.Errorf("all stages failed")
	case models.SessionCancelled:
		return fmt.Errorf("session cancelled")
	}
	return nil
}

func printSession(session *models.CoordinationSession) {
	for _, stage := range session.Stages {
		printStage(stage)
	}

	if final, ok := session.StageFor(models.RoleQuality); ok && !coordinateVerbose {
		fmt.Println(final.Result.Response)
		fmt.Println()
	}

	label := color.New(color.Faint).SprintFunc()
	fmt.Printf("%s %s\n", label("session:"), session.ID)
	fmt.Printf("%s %s\n", label("status:"), statusColor(session.Status))
	fmt.Printf("%s %d/%d\n", label("stages:"), len(session.Stages), 5)
	fmt.Printf("%s $%.4f\n", label("cost:"), session.TotalCost)
	fmt.Printf("%s %.1f/10\n", label("avg quality:"), session.AverageQuality)
	fmt.Printf("%s %s\n", label("duration:"), session.CompletedAt.Sub(session.StartedAt).Round(10*time.Millisecond))
}

func printStage(stage models.StageResult) {
	role := strings.ToUpper(string(stage.Role))
	if stage.Result.Status == models.TaskFailed {
		color.Red("[%s] failed: %s", role, stage.Result.Error)
		return
	}
	if coordinateVerbose {
		color.Cyan("[%s] %s, quality %d/10", role, stage.Result.ModelID, stage.Result.QualityScore)
		fmt.Println(stage.Result.Response)
		fmt.Println()
	} else {
		color.Green("[%s] ok (%s, quality %d/10)", role, stage.Result.ModelID, stage.Result.QualityScore)
	}
}

func statusColor(status models.SessionStatus) string {
	switch status {
	case models.SessionSucceeded:
		return color.GreenString(string(status))
	case models.SessionPartiallyFailed:
		return color.YellowString(string(status))
	default:
		return color.RedString(string(status))
	}
}
