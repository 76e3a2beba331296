// Package router decides which model serves a task and drives the bounded
// retry, escalation, and downgrade behavior around each invocation.
package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/helmsman-ai/helmsman/internal/inference"
	"github.com/helmsman-ai/helmsman/internal/ledger"
	"github.com/helmsman-ai/helmsman/internal/quality"
	"github.com/helmsman-ai/helmsman/internal/telemetry"
	"github.com/helmsman-ai/helmsman/pkg/models"
)

// State names a position in the per-task control flow.
type State int

const (
	// StateSelecting is choosing the initial operating point.
	StateSelecting State = iota
	// StateInvoking is a model call in flight.
	StateInvoking
	// StateScoring is quality evaluation of a response.
	StateScoring
	// StateEscalating is the one-time promotion to MAXIMUM.
	StateEscalating
	// StateDowngrading is the rate-limit demotion to MINIMUM.
	StateDowngrading
	// StateDone is terminal.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateInvoking:
		return "invoking"
	case StateScoring:
		return "scoring"
	case StateEscalating:
		return "escalating"
	case StateDowngrading:
		return "downgrading"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Config holds the tunable knobs of the retry policy.
type Config struct {
	// MaxAttempts bounds invocation attempts per model selection.
	MaxAttempts int `mapstructure:"max_attempts"`
	// BackoffBase is the first retry delay; it doubles per attempt.
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	// QualityFloor is the score below which a first attempt escalates.
	QualityFloor int `mapstructure:"quality_floor"`
	// CallTimeout bounds each individual model call.
	CallTimeout time.Duration `mapstructure:"call_timeout"`
	// MaxTokens is the response cap when a task does not set one.
	MaxTokens int `mapstructure:"max_tokens"`
}

// DefaultConfig returns the standard retry policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		BackoffBase:  500 * time.Millisecond,
		QualityFloor: 7,
		CallTimeout:  30 * time.Second,
		MaxTokens:    4096,
	}
}

// Logger receives controller transition logs. The coordinator's debug
// logger satisfies it.
type Logger interface {
	Log(category, format string, args ...interface{})
}

// Controller runs the per-task state machine. One Controller spans one
// session: a rate-limit downgrade sticks for every subsequent task routed
// through the same Controller.
type Controller struct {
	points  models.OperatingPoints
	client  inference.Client
	scorer  quality.Scorer
	usage   *ledger.Ledger
	metrics *telemetry.Metrics
	logger  Logger
	cfg     Config

	mu         sync.Mutex
	downgraded bool
}

// New creates a Controller for one session. metrics and logger may be nil.
func New(points models.OperatingPoints, client inference.Client, scorer quality.Scorer, usage *ledger.Ledger, cfg Config, opts ...Option) *Controller {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.QualityFloor <= 0 {
		cfg.QualityFloor = 7
	}
	c := &Controller{
		points: points,
		client: client,
		scorer: scorer,
		usage:  usage,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures optional Controller collaborators.
type Option func(*Controller)

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLogger attaches a transition logger.
func WithLogger(l Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Downgraded reports whether a rate limit has demoted this session to the
// MINIMUM operating point.
func (c *Controller) Downgraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.downgraded
}

// initialPoint maps importance and task type to the starting operating
// point. Coding and complex work forces MAXIMUM unless the caller marked
// the task low-importance.
func (c *Controller) initialPoint(task models.TaskDescriptor) models.OperatingPoint {
	if task.Type.DemandsMaximum() && task.Importance != models.ImportanceLow {
		return models.PointMaximum
	}
	switch task.Importance {
	case models.ImportanceCritical:
		return models.PointMaximum
	case models.ImportanceLow:
		return models.PointMinimum
	default:
		return models.PointDefault
	}
}

// currentPoint applies the session downgrade on top of the selected point.
func (c *Controller) currentPoint(selected models.OperatingPoint) models.OperatingPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.downgraded {
		return models.PointMinimum
	}
	return selected
}

// Execute runs one task through the state machine and always returns a
// terminal TaskResult; failures are encoded in the result's status, never
// swallowed.
func (c *Controller) Execute(ctx context.Context, task models.TaskDescriptor) models.TaskResult {
	c.logf("ROUTER", "task %s: selecting (type=%s importance=%s)", task.ID, task.Type, task.Importance)

	selected := c.initialPoint(task)
	point := c.currentPoint(selected)

	result := c.invokeAndScore(ctx, task, point, 1)
	if result.Status == models.TaskFailed {
		return result
	}

	// One-time escalation: a sub-floor first attempt on a non-MAXIMUM
	// model is retried once on MAXIMUM. A downgraded session stays on
	// MINIMUM, so there is nothing to escalate to.
	if result.QualityScore < c.cfg.QualityFloor && point != models.PointMaximum && !c.Downgraded() {
		c.logf("ROUTER", "task %s: escalating after quality %d on %s", task.ID, result.QualityScore, result.ModelID)
		if c.metrics != nil {
			c.metrics.EscalationsTotal.Inc()
		}
		escalated := c.invokeAndScore(ctx, task, models.PointMaximum, 2)
		if escalated.Status == models.TaskFailed {
			// Keep the scored first-attempt content rather than
			// discarding a usable response.
			return result
		}
		return escalated
	}

	return result
}

// invokeAndScore performs the Invoking and Scoring states for one model
// selection: a bounded attempt loop with exponential backoff, then quality
// scoring and ledger append.
func (c *Controller) invokeAndScore(ctx context.Context, task models.TaskDescriptor, point models.OperatingPoint, attemptNumber int) models.TaskResult {
	maxTokens := task.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		// Re-read the point each attempt: a rate limit on the previous
		// attempt downgrades the rest of the session.
		effective := c.currentPoint(point)
		modelID := c.points.For(effective)

		resp, err := c.invokeOnce(ctx, modelID, task.Prompt, maxTokens)
		if err == nil {
			score := c.scorer.Score(resp.Text, task.Type)
			c.record(modelID, effective, resp, score, "succeeded")
			return models.TaskResult{
				TaskID:        task.ID,
				ModelID:       modelID,
				Response:      resp.Text,
				TokensUsed:    resp.TokensUsed,
				CostIncurred:  resp.CostIncurred,
				QualityScore:  score,
				AttemptNumber: attemptNumber,
				Status:        models.TaskSucceeded,
			}
		}
		lastErr = err

		if c.metrics != nil {
			c.metrics.RecordInvocation(telemetry.InvocationLabels{
				Model:  modelID,
				Point:  string(effective),
				Status: "error",
			})
		}

		switch {
		case inference.IsRateLimited(err):
			c.downgrade(task.ID, modelID)
		case inference.IsRetryable(err):
			c.logf("ROUTER", "task %s: transient failure on %s (attempt %d/%d): %v",
				task.ID, modelID, attempt, c.cfg.MaxAttempts, err)
		default:
			// Non-retryable (invalid model, caller cancellation).
			return c.failed(task, attemptNumber, err)
		}

		if attempt < c.cfg.MaxAttempts {
			if err := c.backoff(ctx, attempt); err != nil {
				return c.failed(task, attemptNumber, err)
			}
		}
	}

	return c.failed(task, attemptNumber, fmt.Errorf("attempts exhausted: %w", lastErr))
}

// invokeOnce performs a single model call under the per-call timeout.
func (c *Controller) invokeOnce(ctx context.Context, modelID, prompt string, maxTokens int) (inference.Response, error) {
	if c.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
	}
	return c.client.Invoke(ctx, modelID, prompt, maxTokens)
}

// downgrade demotes the session to MINIMUM after a rate limit.
func (c *Controller) downgrade(taskID, modelID string) {
	c.mu.Lock()
	already := c.downgraded
	c.downgraded = true
	c.mu.Unlock()

	if !already {
		c.logf("ROUTER", "task %s: rate limited on %s, downgrading session to MINIMUM", taskID, modelID)
		if c.metrics != nil {
			c.metrics.DowngradesTotal.Inc()
		}
	}
}

// backoff sleeps for the exponential delay of the given attempt, aborting
// early if the caller cancels.
func (c *Controller) backoff(ctx context.Context, attempt int) error {
	if c.cfg.BackoffBase <= 0 {
		return nil
	}
	delay := c.cfg.BackoffBase << (attempt - 1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// record appends the invocation to the ledger and metrics.
func (c *Controller) record(modelID string, point models.OperatingPoint, resp inference.Response, score int, status string) {
	if c.usage != nil {
		c.usage.Record(ledger.Entry{
			ModelID:      modelID,
			TokensUsed:   resp.TokensUsed,
			CostIncurred: resp.CostIncurred,
			QualityScore: score,
		})
	}
	if c.metrics != nil {
		c.metrics.RecordInvocation(telemetry.InvocationLabels{
			Model:        modelID,
			Point:        string(point),
			Status:       status,
			TokensUsed:   resp.TokensUsed,
			CostIncurred: resp.CostIncurred,
			QualityScore: score,
			Scored:       true,
		})
	}
}

// failed builds a terminal failed result.
func (c *Controller) failed(task models.TaskDescriptor, attemptNumber int, err error) models.TaskResult {
	c.logf("ROUTER", "task %s: failed: %v", task.ID, err)
	return models.TaskResult{
		TaskID:        task.ID,
		AttemptNumber: attemptNumber,
		Status:        models.TaskFailed,
		Error:         err.Error(),
	}
}

func (c *Controller) logf(category, format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Log(category, format, args...)
	}
}
