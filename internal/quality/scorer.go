// Package quality rates model responses on a fixed 1-10 scale. The scorer
// is a pluggable policy: the heuristic variant here needs no network, the
// judge variant asks a model to rate the response.
package quality

import (
	"strings"

	"github.com/helmsman-ai/helmsman/pkg/models"
)

// Scorer rates a response for a given task type. A structurally invalid
// response (empty, truncated, failing basic checks for the task type)
// scores 0, which the router treats identically to a sub-threshold score.
type Scorer interface {
	Score(response string, taskType models.TaskType) int
}

// HeuristicScorer rates responses without a network round trip, using
// structural signals appropriate to the task type.
type HeuristicScorer struct{}

// NewHeuristicScorer creates a HeuristicScorer.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score implements Scorer.
func (s *HeuristicScorer) Score(response string, taskType models.TaskType) int {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return 0
	}
	if looksTruncated(trimmed) {
		return 0
	}
	if !passesStructuralChecks(trimmed, taskType) {
		return 0
	}

	score := 5

	// Substantive responses earn more than one-liners.
	words := len(strings.Fields(trimmed))
	switch {
	case words >= 200:
		score += 3
	case words >= 80:
		score += 2
	case words >= 25:
		score++
	}

	// Organized output (headings, lists, or fenced code) reads as more
	// complete work than a wall of text.
	if strings.Contains(trimmed, "\n") && hasStructure(trimmed) {
		score++
	}

	if score > 10 {
		score = 10
	}
	return score
}

// looksTruncated catches responses cut off mid-sentence or mid-fence.
func looksTruncated(s string) bool {
	if strings.Count(s, "```")%2 != 0 {
		return true
	}
	last := s[len(s)-1]
	switch last {
	case '.', '!', '?', ':', '`', ')', ']', '"', '\'':
		return false
	}
	// Lists and headings commonly end without punctuation.
	lines := strings.Split(s, "\n")
	lastLine := strings.TrimSpace(lines[len(lines)-1])
	if strings.HasPrefix(lastLine, "-") || strings.HasPrefix(lastLine, "*") || strings.HasPrefix(lastLine, "#") {
		return false
	}
	return strings.HasSuffix(s, ",") || strings.HasSuffix(s, " and") || strings.HasSuffix(s, " the")
}

// passesStructuralChecks applies per-task-type shape requirements.
func passesStructuralChecks(s string, taskType models.TaskType) bool {
	switch taskType {
	case models.TaskTypeCoding:
		// Code-producing work must actually contain code.
		return strings.Contains(s, "```") || strings.Contains(s, "func ") ||
			strings.Contains(s, "def ") || strings.Contains(s, "class ")
	case models.TaskTypePlanning:
		// A plan without any list or step structure is not a plan.
		return hasStructure(s)
	default:
		return true
	}
}

// hasStructure reports whether the text contains list items, headings, or
// numbered steps.
func hasStructure(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
			strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "## ") {
			return true
		}
		if len(trimmed) > 2 && trimmed[0] >= '1' && trimmed[0] <= '9' && (trimmed[1] == '.' || trimmed[1] == ')') {
			return true
		}
	}
	return false
}
