package quality

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/helmsman-ai/helmsman/internal/inference"
	"github.com/helmsman-ai/helmsman/pkg/models"
)

// scorePattern matches "Score: N/10" or "Score: N" in judge output.
var scorePattern = regexp.MustCompile(`(?i)Score:\s*(\d+)(?:/10)?`)

// judgePromptTemplate asks the judge model for a single-line verdict that
// scorePattern can extract.
const judgePromptTemplate = `You are a strict reviewer. Rate the following response to a %s task on a 1-10 scale for completeness, correctness, and clarity.

Reply with exactly one line in the form:
Score: N/10

Response to rate:
%s`

// JudgeScorer rates responses by asking a judge model. It falls back to the
// heuristic scorer when the judge call fails or its output cannot be
// parsed, so scoring never blocks task completion.
type JudgeScorer struct {
	client   inference.Client
	modelID  string
	timeout  time.Duration
	fallback Scorer
}

// NewJudgeScorer creates a JudgeScorer using the given client and judge
// model id.
func NewJudgeScorer(client inference.Client, modelID string, timeout time.Duration) *JudgeScorer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &JudgeScorer{
		client:   client,
		modelID:  modelID,
		timeout:  timeout,
		fallback: NewHeuristicScorer(),
	}
}

// Score implements Scorer.
func (s *JudgeScorer) Score(response string, taskType models.TaskType) int {
	// Structural failures never reach the judge.
	if s.fallback.Score(response, taskType) == 0 {
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	verdict, err := s.client.Invoke(ctx, s.modelID, fmt.Sprintf(judgePromptTemplate, taskType, response), 64)
	if err != nil {
		return s.fallback.Score(response, taskType)
	}

	score, ok := ParseVerdict(verdict.Text)
	if !ok {
		return s.fallback.Score(response, taskType)
	}
	return score
}

// ParseVerdict extracts a 1-10 score from judge output. The second return
// is false when no parseable in-range score is present.
func ParseVerdict(text string) (int, bool) {
	matches := scorePattern.FindStringSubmatch(text)
	if len(matches) < 2 {
		return 0, false
	}
	score, err := strconv.Atoi(matches[1])
	if err != nil || score < 1 || score > 10 {
		return 0, false
	}
	return score, true
}
