package models

import "time"

// AgentRole identifies one of the fixed agent specializations in the
// coordination pipeline.
type AgentRole string

const (
	// RoleExecutive produces the strategic plan.
	RoleExecutive AgentRole = "executive"
	// RoleOperations handles execution of the plan.
	RoleOperations AgentRole = "operations"
	// RoleKnowledge performs supporting research.
	RoleKnowledge AgentRole = "knowledge"
	// RolePlanning produces the timeline.
	RolePlanning AgentRole = "planning"
	// RoleQuality reviews the combined output.
	RoleQuality AgentRole = "quality"
)

// Valid returns true if the role is a known value.
func (r AgentRole) Valid() bool {
	switch r {
	case RoleExecutive, RoleOperations, RoleKnowledge, RolePlanning, RoleQuality:
		return true
	default:
		return false
	}
}

// TaskType classifies the kind of work a task represents.
type TaskType string

const (
	// TaskTypeSimple is lightweight work suited to cheap models.
	TaskTypeSimple TaskType = "simple"
	// TaskTypeCoding is code-producing work.
	TaskTypeCoding TaskType = "coding"
	// TaskTypeComplex is work requiring the most capable model.
	TaskTypeComplex TaskType = "complex"
	// TaskTypePlanning is planning and analysis work.
	TaskTypePlanning TaskType = "planning"
	// TaskTypeResearch is research and summarization work.
	TaskTypeResearch TaskType = "research"
)

// Valid returns true if the task type is a known value.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeSimple, TaskTypeCoding, TaskTypeComplex, TaskTypePlanning, TaskTypeResearch:
		return true
	default:
		return false
	}
}

// DemandsMaximum reports whether the task type forces routing to the
// MAXIMUM operating point regardless of normal importance mapping.
func (t TaskType) DemandsMaximum() bool {
	return t == TaskTypeCoding || t == TaskTypeComplex
}

// Importance expresses how much a caller cares about a task's outcome.
type Importance string

const (
	// ImportanceLow routes to the cheapest model.
	ImportanceLow Importance = "low"
	// ImportanceNormal routes to the balanced default model.
	ImportanceNormal Importance = "normal"
	// ImportanceCritical routes straight to the most capable model.
	ImportanceCritical Importance = "critical"
)

// Valid returns true if the importance is a known value.
func (i Importance) Valid() bool {
	switch i {
	case ImportanceLow, ImportanceNormal, ImportanceCritical:
		return true
	default:
		return false
	}
}

// TaskStatus is the terminal status of a single task.
type TaskStatus string

const (
	// TaskSucceeded indicates the task produced a scored response.
	TaskSucceeded TaskStatus = "succeeded"
	// TaskFailed indicates all attempts were exhausted or a
	// non-retryable error occurred.
	TaskFailed TaskStatus = "failed"
)

// TaskDescriptor is one unit of work submitted for routing and execution.
// It is created per request and discarded once its TaskResult exists.
type TaskDescriptor struct {
	// ID uniquely identifies the task.
	ID string `json:"id"`
	// Role is the agent role the task is addressed to.
	Role AgentRole `json:"role"`
	// Type classifies the work for routing purposes.
	Type TaskType `json:"type"`
	// Importance biases the initial operating point.
	Importance Importance `json:"importance"`
	// Prompt is the opaque payload sent to the model.
	Prompt string `json:"prompt"`
	// MaxTokens caps the response size; zero means the router default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// TaskResult is the terminal outcome of one task.
type TaskResult struct {
	// TaskID is the id of the originating descriptor.
	TaskID string `json:"task_id"`
	// ModelID is the model that produced the final response.
	ModelID string `json:"model_id"`
	// Response is the model's output payload.
	Response string `json:"response"`
	// TokensUsed is the total token count for the final attempt.
	TokensUsed int64 `json:"tokens_used"`
	// CostIncurred is the USD cost of the final attempt.
	CostIncurred float64 `json:"cost_incurred"`
	// QualityScore is the scorer's rating on the 1-10 scale
	// (0 for structurally invalid responses).
	QualityScore int `json:"quality_score"`
	// AttemptNumber is 1 for a first-attempt result, 2 after escalation.
	AttemptNumber int `json:"attempt_number"`
	// Status is the terminal status.
	Status TaskStatus `json:"status"`
	// Error holds the failure description when Status is TaskFailed.
	Error string `json:"error,omitempty"`
}

// SessionStatus is the terminal status of a coordination session.
type SessionStatus string

const (
	// SessionRunning indicates stages are still executing.
	SessionRunning SessionStatus = "running"
	// SessionSucceeded indicates every stage succeeded.
	SessionSucceeded SessionStatus = "succeeded"
	// SessionPartiallyFailed indicates at least one stage failed while
	// others completed.
	SessionPartiallyFailed SessionStatus = "partially_failed"
	// SessionFailed indicates every stage failed.
	SessionFailed SessionStatus = "failed"
	// SessionCancelled indicates the caller cancelled before all stages
	// dispatched.
	SessionCancelled SessionStatus = "cancelled"
)

// StageResult pairs an agent role with its task outcome within a session.
type StageResult struct {
	// Role is the agent role that executed the stage.
	Role AgentRole `json:"role"`
	// Result is the stage's terminal task result.
	Result TaskResult `json:"result"`
}

// CoordinationSession records one run of the multi-agent pipeline. It is
// mutated only by the coordinator while running and becomes immutable once
// a terminal status is set.
type CoordinationSession struct {
	// ID uniquely identifies the session.
	ID string `json:"id"`
	// MainTask is the composite task the pipeline worked on.
	MainTask string `json:"main_task"`
	// Stages holds the per-role results in completion order.
	Stages []StageResult `json:"stages"`
	// TotalCost is the summed cost of all stage attempts.
	TotalCost float64 `json:"total_cost"`
	// AverageQuality is the mean quality score over completed stages.
	AverageQuality float64 `json:"average_quality"`
	// Status is the session's terminal status.
	Status SessionStatus `json:"status"`
	// StartedAt is when the session began.
	StartedAt time.Time `json:"started_at"`
	// CompletedAt is when the session reached a terminal status.
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// StageFor returns the stage result for the given role, if present.
func (s *CoordinationSession) StageFor(role AgentRole) (StageResult, bool) {
	for _, st := range s.Stages {
		if st.Role == role {
			return st, true
		}
	}
	return StageResult{}, false
}
