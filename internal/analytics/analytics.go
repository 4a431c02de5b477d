// Package analytics aggregates per-session usage data: message counts,
// response latencies, sentiment history, and derived insights.
package analytics

import (
	"sync"
	"time"

	"github.com/chatforge/chatforge/internal/sentiment"
)

// DefaultTrendWindow is the number of recent samples returned by
// SentimentTrend when the caller does not override the window.
const DefaultTrendWindow = 10

// Insight rule texts. Rules are evaluated in a fixed order and each appends
// at most one insight; the fallback fires only when nothing else did.
const (
	insightActiveConversation = "Active conversation detected"
	insightPositiveTone       = "Conversation tone is positive"
	insightAdjustStyle        = "Consider adjusting response style"
	insightExtendedSession    = "Extended session - user is engaged"
	insightKeepChatting       = "Continue chatting to generate insights"
)

// Rule thresholds.
const (
	activeConversationMessages = 10
	recentSentimentWindow      = 3
	extendedSessionDuration    = 30 * time.Minute
)

// State is a point-in-time copy of the aggregates, in the shape the export
// bundle serializes.
type State struct {
	MessageCount        int                `json:"messageCount"`
	SessionStart        time.Time          `json:"sessionStart"`
	SentimentHistory    []sentiment.Sample `json:"sentimentHistory"`
	ResponseTimeHistory []int64            `json:"responseTimeHistory"` // milliseconds
}

// Aggregator accumulates usage data for the active session. Histories only
// grow until Reset; samples and latencies are appended, never rewritten.
// All methods are safe for concurrent use: completed bot turns land on timer
// goroutines.
type Aggregator struct {
	mu           sync.Mutex
	messageCount int
	sessionStart time.Time
	samples      []sentiment.Sample
	latencies    []time.Duration
	now          func() time.Time
}

// New creates an aggregator with its session clock started now.
func New() *Aggregator {
	return NewWithClock(time.Now)
}

// NewWithClock creates an aggregator using the supplied clock. Tests inject a
// fake clock to exercise the duration-based insight rule.
func NewWithClock(now func() time.Time) *Aggregator {
	a := &Aggregator{now: now}
	a.Reset()
	return a
}

// Reset clears every aggregate and restarts the session clock. Called exactly
// when a session is created or cleared.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.messageCount = 0
	a.sessionStart = a.now()
	a.samples = nil
	a.latencies = nil
}

// CountMessage increments the message counter and returns the new value.
func (a *Aggregator) CountMessage() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.messageCount++
	return a.messageCount
}

// MessageCount returns the current message counter.
func (a *Aggregator) MessageCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.messageCount
}

// Record appends a sentiment sample and a response latency to their
// histories, atomically with respect to other turns.
func (a *Aggregator) Record(sample sentiment.Sample, latency time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.samples = append(a.samples, sample)
	a.latencies = append(a.latencies, latency)
}

// RecordLatency appends only a response latency. Used for turns where
// sentiment scoring is disabled; the latency history still grows.
func (a *Aggregator) RecordLatency(latency time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.latencies = append(a.latencies, latency)
}

// AverageLatency returns the arithmetic mean of recorded latencies. The
// second return is false when no latency has been recorded.
func (a *Aggregator) AverageLatency() (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.latencies) == 0 {
		return 0, false
	}

	var total time.Duration
	for _, d := range a.latencies {
		total += d
	}
	return total / time.Duration(len(a.latencies)), true
}

// SentimentTrend returns the most recent window samples in insertion order,
// for downstream charting. Fewer are returned when the history is shorter.
// A window below one falls back to DefaultTrendWindow.
func (a *Aggregator) SentimentTrend(window int) []sentiment.Sample {
	a.mu.Lock()
	defer a.mu.Unlock()

	if window < 1 {
		window = DefaultTrendWindow
	}
	start := len(a.samples) - window
	if start < 0 {
		start = 0
	}

	trend := make([]sentiment.Sample, len(a.samples)-start)
	copy(trend, a.samples[start:])
	return trend
}

// Insights evaluates the insight rules in fixed order. Each rule appends at
// most one insight; the tone rules are mutually exclusive. When no rule
// fires, the single fallback insight is returned.
func (a *Aggregator) Insights() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var insights []string

	if a.messageCount > activeConversationMessages {
		insights = append(insights, insightActiveConversation)
	}

	if len(a.samples) > 0 {
		recent := a.samples
		if len(recent) > recentSentimentWindow {
			recent = recent[len(recent)-recentSentimentWindow:]
		}
		total := 0
		for _, s := range recent {
			total += s.Score
		}
		mean := float64(total) / float64(len(recent))
		if mean > 0 {
			insights = append(insights, insightPositiveTone)
		} else if mean < 0 {
			insights = append(insights, insightAdjustStyle)
		}
	}

	if a.now().Sub(a.sessionStart) > extendedSessionDuration {
		insights = append(insights, insightExtendedSession)
	}

	if len(insights) == 0 {
		insights = append(insights, insightKeepChatting)
	}

	return insights
}

// Snapshot copies the current aggregates for export.
func (a *Aggregator) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	history := make([]sentiment.Sample, len(a.samples))
	copy(history, a.samples)

	latencies := make([]int64, len(a.latencies))
	for i, d := range a.latencies {
		latencies[i] = d.Milliseconds()
	}

	return State{
		MessageCount:        a.messageCount,
		SessionStart:        a.sessionStart,
		SentimentHistory:    history,
		ResponseTimeHistory: latencies,
	}
}
