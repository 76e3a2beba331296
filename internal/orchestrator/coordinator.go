// Package orchestrator runs tasks through the fixed multi-agent pipeline.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/helmsman-ai/helmsman/internal/inference"
	"github.com/helmsman-ai/helmsman/internal/ledger"
	"github.com/helmsman-ai/helmsman/internal/quality"
	"github.com/helmsman-ai/helmsman/internal/router"
	"github.com/helmsman-ai/helmsman/internal/telemetry"
	"github.com/helmsman-ai/helmsman/pkg/models"
)

// pipelineRoles is the fixed stage ordering of a composite session.
// Knowledge and Planning carry no data dependency on each other and run
// concurrently; Quality waits for both.
var pipelineRoles = []models.AgentRole{
	models.RoleExecutive,
	models.RoleOperations,
	models.RoleKnowledge,
	models.RolePlanning,
	models.RoleQuality,
}

// Coordinator runs tasks through the router, either singly or as the fixed
// multi-agent pipeline.
type Coordinator struct {
	points    models.OperatingPoints
	client    inference.Client
	scorer    quality.Scorer
	usage     *ledger.Ledger
	metrics   *telemetry.Metrics
	logger    *DebugLogger
	routerCfg router.Config
}

// Options configures a Coordinator.
type Options struct {
	// Points are the resolved operating points for the current catalog.
	Points models.OperatingPoints
	// Client is the inference boundary.
	Client inference.Client
	// Scorer rates responses; defaults to the heuristic scorer.
	Scorer quality.Scorer
	// Usage receives an entry per invocation; may be nil.
	Usage *ledger.Ledger
	// Metrics receives per-invocation telemetry; may be nil.
	Metrics *telemetry.Metrics
	// Logger receives debug logs; defaults to a no-op logger.
	Logger *DebugLogger
	// RouterConfig tunes the retry policy; zero value means defaults.
	RouterConfig router.Config
}

// New creates a Coordinator.
func New(opts Options) *Coordinator {
	if opts.Scorer == nil {
		opts.Scorer = quality.NewHeuristicScorer()
	}
	if opts.Logger == nil {
		opts.Logger = &DebugLogger{}
	}
	if opts.RouterConfig.MaxAttempts == 0 {
		opts.RouterConfig = router.DefaultConfig()
	}
	return &Coordinator{
		points:    opts.Points,
		client:    opts.Client,
		scorer:    opts.Scorer,
		usage:     opts.Usage,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		routerCfg: opts.RouterConfig,
	}
}

// newController builds a fresh per-session retry controller.
func (c *Coordinator) newController() *router.Controller {
	opts := []router.Option{router.WithLogger(c.logger)}
	if c.metrics != nil {
		opts = append(opts, router.WithMetrics(c.metrics))
	}
	return router.New(c.points, c.client, c.scorer, c.usage, c.routerCfg, opts...)
}

// ExecuteSingle runs one task to a terminal result. The task is its own
// session: a rate-limit downgrade does not leak into other calls.
func (c *Coordinator) ExecuteSingle(ctx context.Context, task models.TaskDescriptor) models.TaskResult {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if !task.Role.Valid() {
		task.Role = models.RoleOperations
	}
	return c.newController().Execute(ctx, task)
}

// Coordinate runs the fixed pipeline for a composite task and always
// returns a terminal session. A failed stage never aborts completed work:
// its contribution is replaced with an explicit failure marker downstream
// and the session reports PartiallyFailed.
func (c *Coordinator) Coordinate(ctx context.Context, mainTask string, taskType models.TaskType, importance models.Importance) *models.CoordinationSession {
	session := &models.CoordinationSession{
		ID:        uuid.NewString(),
		MainTask:  mainTask,
		Status:    models.SessionRunning,
		StartedAt: time.Now(),
	}
	c.logger.Log("SESSION", "session %s: starting (type=%s importance=%s)", session.ID, taskType, importance)

	ctrl := c.newController()
	runStage := func(role models.AgentRole, upstream []models.StageResult) models.TaskResult {
		return ctrl.Execute(ctx, models.TaskDescriptor{
			ID:         uuid.NewString(),
			Role:       role,
			Type:       taskType,
			Importance: importance,
			Prompt:     buildPrompt(role, mainTask, upstream),
		})
	}

	cancelled := func() bool {
		if ctx.Err() != nil {
			c.logger.Log("SESSION", "session %s: cancelled, no further stages dispatched", session.ID)
			return true
		}
		return false
	}

	// Stage 1: Executive.
	if cancelled() {
		return c.finish(session, true)
	}
	executive := runStage(models.RoleExecutive, nil)
	session.Stages = append(session.Stages, models.StageResult{Role: models.RoleExecutive, Result: executive})

	// Stage 2: Operations, fed by the executive plan.
	if cancelled() {
		return c.finish(session, true)
	}
	operations := runStage(models.RoleOperations, session.Stages)
	session.Stages = append(session.Stages, models.StageResult{Role: models.RoleOperations, Result: operations})

	// Stage 3: Knowledge and Planning, concurrently. Both see the
	// executive and operations contributions; the append order below is
	// fixed regardless of which finishes first.
	if cancelled() {
		return c.finish(session, true)
	}
	upstream := make([]models.StageResult, len(session.Stages))
	copy(upstream, session.Stages)

	var wg sync.WaitGroup
	var knowledge, planning models.TaskResult
	wg.Add(2)
	go func() {
		defer wg.Done()
		knowledge = runStage(models.RoleKnowledge, upstream)
	}()
	go func() {
		defer wg.Done()
		planning = runStage(models.RolePlanning, upstream)
	}()
	wg.Wait()
	session.Stages = append(session.Stages,
		models.StageResult{Role: models.RoleKnowledge, Result: knowledge},
		models.StageResult{Role: models.RolePlanning, Result: planning},
	)

	// Stage 4: Quality, after both parallel stages have terminated.
	if cancelled() {
		return c.finish(session, true)
	}
	review := runStage(models.RoleQuality, session.Stages)
	session.Stages = append(session.Stages, models.StageResult{Role: models.RoleQuality, Result: review})

	return c.finish(session, false)
}

// finish computes the session aggregates and terminal status. The session
// is immutable once this returns.
func (c *Coordinator) finish(session *models.CoordinationSession, cancelled bool) *models.CoordinationSession {
	var succeeded, failed int
	var qualitySum int
	for _, stage := range session.Stages {
		session.TotalCost += stage.Result.CostIncurred
		switch stage.Result.Status {
		case models.TaskSucceeded:
			succeeded++
			qualitySum += stage.Result.QualityScore
		case models.TaskFailed:
			failed++
		}
	}
	if succeeded > 0 {
		session.AverageQuality = float64(qualitySum) / float64(succeeded)
	}

	switch {
	case cancelled:
		session.Status = models.SessionCancelled
	case failed == 0:
		session.Status = models.SessionSucceeded
	case succeeded == 0:
		session.Status = models.SessionFailed
	default:
		session.Status = models.SessionPartiallyFailed
	}
	session.CompletedAt = time.Now()

	c.logger.Log("SESSION", "session %s: %s (%d/%d stages succeeded, cost $%.4f)",
		session.ID, session.Status, succeeded, len(session.Stages), session.TotalCost)
	return session
}
