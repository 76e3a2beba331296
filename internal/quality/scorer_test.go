package quality

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/helmsman-ai/helmsman/internal/inference"
	"github.com/helmsman-ai/helmsman/pkg/models"
)

func TestHeuristicScorer_StructuralFailures(t *testing.T) {
	tests := []struct {
		name     string
		response string
		taskType models.TaskType
	}{
		{"empty", "", models.TaskTypeSimple},
		{"whitespace only", "   \n\t  ", models.TaskTypeSimple},
		{"unclosed code fence", "Here is the code:\n```go\nfunc main() {", models.TaskTypeCoding},
		{"coding without code", "You should probably write a function for that.", models.TaskTypeCoding},
		{"planning without structure", "We will do things eventually in some order over time.", models.TaskTypePlanning},
		{"cut off mid sentence", "The approach is to first analyze the", models.TaskTypeSimple},
	}

	scorer := NewHeuristicScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scorer.Score(tt.response, tt.taskType); got != 0 {
				t.Errorf("Score() = %d, want 0", got)
			}
		})
	}
}

func TestHeuristicScorer_ValidResponsesInRange(t *testing.T) {
	tests := []struct {
		name     string
		response string
		taskType models.TaskType
	}{
		{"short answer", "The capital of France is Paris.", models.TaskTypeSimple},
		{"code response", "Here you go:\n```go\nfunc Add(a, b int) int { return a + b }\n```", models.TaskTypeCoding},
		{"structured plan", "# Plan\n- Phase 1: discovery.\n- Phase 2: build.\n- Phase 3: review.", models.TaskTypePlanning},
		{"long prose", strings.Repeat("A detailed and thorough explanation follows here. ", 50), models.TaskTypeResearch},
	}

	scorer := NewHeuristicScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.response, tt.taskType)
			if got < 1 || got > 10 {
				t.Errorf("Score() = %d, want in [1,10]", got)
			}
		})
	}
}

func TestHeuristicScorer_LongerScoresHigher(t *testing.T) {
	scorer := NewHeuristicScorer()
	short := scorer.Score("It works fine.", models.TaskTypeSimple)
	long := scorer.Score(strings.Repeat("This answer covers one more relevant point in depth. ", 40), models.TaskTypeSimple)
	if long <= short {
		t.Errorf("long response scored %d, short scored %d; want long > short", long, short)
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   int
		wantOK bool
	}{
		{"plain", "Score: 8/10", 8, true},
		{"no denominator", "Score: 6", 6, true},
		{"lowercase", "score: 9/10", 9, true},
		{"embedded", "After review.\nScore: 7/10\nGood work.", 7, true},
		{"ten", "Score: 10/10", 10, true},
		{"zero out of range", "Score: 0/10", 0, false},
		{"over range", "Score: 11/10", 0, false},
		{"missing", "Looks great to me!", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVerdict(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseVerdict(%q) = %d, %v; want %d, %v", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// verdictClient returns a canned judge verdict or error.
type verdictClient struct {
	text string
	err  error
}

func (c *verdictClient) Invoke(_ context.Context, _, _ string, _ int) (inference.Response, error) {
	if c.err != nil {
		return inference.Response{}, c.err
	}
	return inference.Response{Text: c.text, TokensUsed: 10}, nil
}

func TestJudgeScorer_UsesVerdict(t *testing.T) {
	scorer := NewJudgeScorer(&verdictClient{text: "Score: 9/10"}, "judge-model", 0)
	got := scorer.Score("A perfectly reasonable and complete answer.", models.TaskTypeSimple)
	if got != 9 {
		t.Errorf("Score() = %d, want 9", got)
	}
}

func TestJudgeScorer_FallsBackOnError(t *testing.T) {
	scorer := NewJudgeScorer(&verdictClient{err: errors.New("judge down")}, "judge-model", 0)
	got := scorer.Score("A perfectly reasonable and complete answer.", models.TaskTypeSimple)
	if got < 1 || got > 10 {
		t.Errorf("Score() = %d, want heuristic fallback in [1,10]", got)
	}
}

func TestJudgeScorer_FallsBackOnUnparseableVerdict(t *testing.T) {
	scorer := NewJudgeScorer(&verdictClient{text: "looks good"}, "judge-model", 0)
	got := scorer.Score("A perfectly reasonable and complete answer.", models.TaskTypeSimple)
	if got < 1 || got > 10 {
		t.Errorf("Score() = %d, want heuristic fallback in [1,10]", got)
	}
}

func TestJudgeScorer_StructuralFailureSkipsJudge(t *testing.T) {
	scorer := NewJudgeScorer(&verdictClient{text: "Score: 10/10"}, "judge-model", 0)
	if got := scorer.Score("", models.TaskTypeSimple); got != 0 {
		t.Errorf("Score() = %d, want 0 for empty response", got)
	}
}
