// Package orchestrator runs the fixed multi-agent pipeline over the model
// router.
package orchestrator

import (
	"fmt"
	"strings"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

// rolePolicy maps an agent role to its prompt template. Roles are a closed
// set; there is no string-matched dispatch anywhere in the pipeline.
type rolePolicy struct {
	// Title heads the role's section in downstream prompt context.
	Title string
	// Template is the role's instruction preamble.
	Template string
}

var rolePolicies = map[models.AgentRole]rolePolicy{
	models.RoleExecutive: {
		Title: "Strategic Plan",
		Template: `You are the executive agent. Produce a concise strategic plan for the
task below: objectives, constraints, and the major workstreams. Use a
numbered list for the workstreams.`,
	},
	models.RoleOperations: {
		Title: "Execution",
		Template: `You are the operations agent. Execute the strategic plan for the task
below. Produce the concrete deliverable the plan calls for, not a
description of how you would produce it.`,
	},
	models.RoleKnowledge: {
		Title: "Research",
		Template: `You are the knowledge agent. Research the task below: surface the
relevant facts, prior art, and risks the other agents should know
about. Cite what you rely on.`,
	},
	models.RolePlanning: {
		Title: "Timeline",
		Template: `You are the planning agent. Produce a realistic timeline for the task
below: phases, milestones, and dependencies, as a numbered list.`,
	},
	models.RoleQuality: {
		Title: "Review",
		Template: `You are the quality agent. Review the combined output below for
correctness, completeness, and consistency. Call out concrete defects
and state whether the work is acceptable.`,
	},
}

// failureContribution is substituted for a failed stage's output in
// downstream prompts, so later agents see an explicit gap rather than a
// silently missing section.
func failureContribution(role models.AgentRole) string {
	return fmt.Sprintf("[%s stage failed: no output available]", role)
}

// contribution returns a stage's text for downstream prompt context.
func contribution(role models.AgentRole, result models.TaskResult) string {
	if result.Status == models.TaskFailed {
		return failureContribution(role)
	}
	return result.Response
}

// buildPrompt assembles a role's prompt from its template, the main task,
// and the contributions of the stages it depends on, in pipeline order.
func buildPrompt(role models.AgentRole, mainTask string, upstream []models.StageResult) string {
	policy := rolePolicies[role]

	var b strings.Builder
	b.WriteString(policy.Template)
	b.WriteString("\n\n## Task\n\n")
	b.WriteString(mainTask)

	for _, stage := range upstream {
		b.WriteString("\n\n## ")
		b.WriteString(rolePolicies[stage.Role].Title)
		b.WriteString("\n\n")
		b.WriteString(contribution(stage.Role, stage.Result))
	}
	return b.String()
}
