// Package ledger records the cost and quality of every model invocation.
// The ledger is the only mutable shared state in the routing core: all
// writers go through one serialized append path so the derived aggregates
// are never observed in a torn state.
package ledger

import (
	"sync"
	"time"
)

// Entry is one appended invocation record. Entries are never modified or
// deleted after append.
type Entry struct {
	// Timestamp is when the invocation completed.
	Timestamp time.Time `json:"timestamp"`
	// ModelID is the model that served the invocation.
	ModelID string `json:"model_id"`
	// TokensUsed is the total token count of the call.
	TokensUsed int64 `json:"tokens_used"`
	// CostIncurred is the USD cost of the call.
	CostIncurred float64 `json:"cost_incurred"`
	// QualityScore is the scorer's rating for the response.
	QualityScore int `json:"quality_score"`
}

// Summary holds the ledger's derived aggregates.
type Summary struct {
	// TotalCost is the exact sum of CostIncurred across all entries.
	TotalCost float64 `json:"total_cost"`
	// CallCount is the number of recorded invocations.
	CallCount int64 `json:"call_count"`
	// AverageQuality is the mean quality score across all entries.
	AverageQuality float64 `json:"average_quality"`
}

// ModelSummary breaks the aggregates down for a single model.
type ModelSummary struct {
	ModelID string `json:"model_id"`
	Summary
	TotalTokens int64 `json:"total_tokens"`
}

// Sink receives each appended entry, for persistence or telemetry. Sinks
// are called inside the serialized append path, so a slow sink slows
// writers rather than tearing aggregates.
type Sink interface {
	Append(Entry) error
}

// Ledger is the process-wide usage ledger. Aggregates are maintained
// incrementally under the same lock as the entry list, so a Summary never
// reflects a partially-applied append.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry

	totalCost    float64
	totalQuality int64
	callCount    int64

	sinks []Sink
}

// New creates an empty Ledger. Optional sinks observe every append.
func New(sinks ...Sink) *Ledger {
	return &Ledger{sinks: sinks}
}

// Record appends an entry. A zero timestamp is filled with the current
// time. Sink failures do not reject the in-memory append.
func (l *Ledger) Record(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	l.totalCost += entry.CostIncurred
	l.totalQuality += int64(entry.QualityScore)
	l.callCount++

	for _, sink := range l.sinks {
		// Persistence is best-effort; the in-memory ledger stays
		// authoritative for the life of the process.
		_ = sink.Append(entry)
	}
}

// Summary returns the current aggregates.
func (l *Ledger) Summary() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Summary{
		TotalCost: l.totalCost,
		CallCount: l.callCount,
	}
	if l.callCount > 0 {
		s.AverageQuality = float64(l.totalQuality) / float64(l.callCount)
	}
	return s
}

// ByModel returns per-model aggregates, keyed by model id.
func (l *Ledger) ByModel() map[string]ModelSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	totals := make(map[string]ModelSummary)
	quality := make(map[string]int64)
	for _, e := range l.entries {
		ms := totals[e.ModelID]
		ms.ModelID = e.ModelID
		ms.TotalCost += e.CostIncurred
		ms.TotalTokens += e.TokensUsed
		ms.CallCount++
		quality[e.ModelID] += int64(e.QualityScore)
		totals[e.ModelID] = ms
	}
	for id, ms := range totals {
		ms.AverageQuality = float64(quality[id]) / float64(ms.CallCount)
		totals[id] = ms
	}
	return totals
}

// Entries returns a copy of the entry list. The backing slice is never
// exposed: all mutation goes through Record.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear resets the ledger. This is an explicit operator action, equivalent
// to a process restart; nothing in the routing core calls it.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.totalCost = 0
	l.totalQuality = 0
	l.callCount = 0
}
