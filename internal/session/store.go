// Package session owns conversation state: every session, the active-session
// pointer, and the turn lifecycle from user submission to the delayed bot
// completion. It drives the response engine and sentiment scorer and feeds
// the analytics aggregator; collaborators only ever see copies.
package session

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/chatforge/chatforge/internal/analytics"
	"github.com/chatforge/chatforge/internal/config"
	"github.com/chatforge/chatforge/internal/events"
	"github.com/chatforge/chatforge/internal/response"
	"github.com/chatforge/chatforge/internal/sentiment"
)

// Store orchestrates all sessions. One mutex guards the session map, the
// active pointer, and each turn's analytics updates: completions fire on
// timer goroutines, so every mutation goes through the lock and is applied
// atomically per turn.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	activeID string
	nextSeq  int

	engine    *response.Engine
	aggregate *analytics.Aggregator
	scheduler Scheduler
	broker    *events.Broker
	logger    *log.Logger
	now       func() time.Time
}

// Options configures a Store. Nil fields fall back to production defaults.
type Options struct {
	Engine    *response.Engine
	Aggregate *analytics.Aggregator
	Scheduler Scheduler
	Broker    *events.Broker
	Logger    *log.Logger
	Clock     func() time.Time
}

// NewStore creates a store with one fresh active session, mirroring the boot
// state the view layer expects.
func NewStore(opts Options) *Store {
	if opts.Engine == nil {
		opts.Engine = response.NewEngine(nil)
	}
	if opts.Aggregate == nil {
		opts.Aggregate = analytics.New()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Broker == nil {
		opts.Broker = events.NewBroker()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Store{
		sessions:  make(map[string]*Session),
		engine:    opts.Engine,
		aggregate: opts.Aggregate,
		scheduler: opts.Scheduler,
		broker:    opts.Broker,
		logger:    opts.Logger,
		now:       opts.Clock,
	}
	s.CreateSession()
	return s
}

// CreateSession allocates a new empty session, makes it active, and resets
// the analytics state. Never fails.
func (s *Store) CreateSession() string {
	s.mu.Lock()
	id := uuid.NewString()
	now := s.now()
	s.sessions[id] = &Session{
		ID:           id,
		Title:        defaultTitle,
		Messages:     []Message{},
		CreatedAt:    now,
		LastActivity: now,
		seq:          s.nextSeq,
	}
	s.nextSeq++
	s.activeID = id
	s.mu.Unlock()

	s.aggregate.Reset()
	s.broker.Publish(events.SessionCreated, id, nil)
	s.logger.Debug("session created", "session", id)
	return id
}

// SwitchActive changes the active pointer. Unknown ids leave the pointer and
// every session untouched.
func (s *Store) SwitchActive(id string) error {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.activeID = id
	s.mu.Unlock()

	s.broker.Publish(events.SessionSwitched, id, nil)
	return nil
}

// ActiveID returns the id of the active session.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SubmitUserMessage appends a user message to the active session and
// schedules the bot completion after the profile's response delay. The
// returned handle correlates the submission with its forthcoming reply.
// Whitespace-only text is rejected with ErrEmptyInput and nothing changes.
func (s *Store) SubmitUserMessage(text string, settings config.Settings) (Handle, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Handle{}, ErrEmptyInput
	}

	s.mu.Lock()
	sess, ok := s.sessions[s.activeID]
	if !ok {
		s.mu.Unlock()
		return Handle{}, ErrNotFound
	}

	now := s.now()
	msg := Message{Sender: SenderUser, Content: trimmed, Timestamp: now}
	s.appendLocked(sess, msg)

	handle := Handle{
		ID:          uuid.NewString(),
		SessionID:   sess.ID,
		UserText:    trimmed,
		SubmittedAt: now,
		Delay:       response.Delay(settings.ResponseSpeed),
	}
	s.mu.Unlock()

	s.aggregate.CountMessage()

	s.broker.Publish(events.MessageAppended, handle.SessionID, MessageEvent{
		Message:  msg,
		HandleID: handle.ID,
	})
	if settings.EnableTyping {
		s.broker.Publish(events.BotTyping, handle.SessionID, events.TypingPayload{Typing: true})
	}

	s.scheduler.Schedule(handle.Delay, func() {
		if _, err := s.CompleteBotTurn(handle, settings); err != nil {
			s.logger.Warn("bot turn dropped", "handle", handle.ID, "err", err)
		}
	})

	return handle, nil
}

// CompleteBotTurn synthesizes the reply for a submitted turn and appends it
// as a bot message. The reply goes to the session captured at submission
// time, not the session active now: a pending completion always fires, even
// after the active pointer moved. The turn's sentiment sample and latency are
// recorded atomically with the append.
func (s *Store) CompleteBotTurn(handle Handle, settings config.Settings) (Message, error) {
	s.mu.Lock()
	sess, ok := s.sessions[handle.SessionID]
	if !ok {
		// The session was discarded (clearAll) while the turn was pending.
		s.mu.Unlock()
		return Message{}, ErrNotFound
	}

	reply := s.engine.Generate(settings.Personality, handle.UserText)
	msg := Message{Sender: SenderBot, Content: reply, Timestamp: s.now()}
	s.appendLocked(sess, msg)
	s.mu.Unlock()

	if settings.EnableSentiment {
		score, label := sentiment.Score(handle.UserText)
		sample := sentiment.Sample{Timestamp: msg.Timestamp, Label: label, Score: score}
		s.aggregate.Record(sample, handle.Delay)
		s.broker.Publish(events.SentimentScored, handle.SessionID, sample)
	} else {
		s.aggregate.RecordLatency(handle.Delay)
	}

	if settings.EnableTyping {
		s.broker.Publish(events.BotTyping, handle.SessionID, events.TypingPayload{Typing: false})
	}
	s.broker.Publish(events.MessageAppended, handle.SessionID, MessageEvent{
		Message:  msg,
		HandleID: handle.ID,
		Features: response.FeatureTags(reply),
	})

	return msg, nil
}

// appendLocked adds a message and refreshes the session's derived display
// state. Callers hold s.mu.
func (s *Store) appendLocked(sess *Session, msg Message) {
	sess.Messages = append(sess.Messages, msg)
	sess.Title = deriveTitle(msg.Content)
	sess.LastActivity = msg.Timestamp
}

// ClearSession replaces the session's message sequence with an empty one.
// Analytics reset only when the cleared session is active.
func (s *Store) ClearSession(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	sess.Messages = []Message{}
	active := id == s.activeID
	s.mu.Unlock()

	if active {
		s.aggregate.Reset()
	}
	s.broker.Publish(events.SessionCleared, id, nil)
	return nil
}

// ClearAll discards every session and starts over with one fresh active
// session.
func (s *Store) ClearAll() string {
	s.mu.Lock()
	s.sessions = make(map[string]*Session)
	s.activeID = ""
	s.mu.Unlock()

	s.broker.Publish(events.SessionCleared, "", nil)
	return s.CreateSession()
}

// ListSessions returns summaries ordered by last activity, newest first;
// ties break toward earlier creation.
func (s *Store) ListSessions() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]Summary, 0, len(s.sessions))
	seqs := make(map[string]int, len(s.sessions))
	for _, sess := range s.sessions {
		seqs[sess.ID] = sess.seq
		summaries = append(summaries, Summary{
			ID:           sess.ID,
			Title:        sess.Title,
			Preview:      derivePreview(sess.Messages),
			MessageCount: len(sess.Messages),
			CreatedAt:    sess.CreatedAt,
			LastActivity: sess.LastActivity,
			Active:       sess.ID == s.activeID,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if !a.LastActivity.Equal(b.LastActivity) {
			return a.LastActivity.After(b.LastActivity)
		}
		return seqs[a.ID] < seqs[b.ID]
	})

	return summaries
}

// Snapshot returns a deep copy of a session for rendering. Mutating the copy
// never touches store state.
func (s *Store) Snapshot(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}

	copied := *sess
	copied.Messages = make([]Message, len(sess.Messages))
	copy(copied.Messages, sess.Messages)
	return copied, nil
}

// Analytics exposes the aggregator for queries (insights, trend, averages).
// Its methods are safe to call from any goroutine.
func (s *Store) Analytics() *analytics.Aggregator {
	return s.aggregate
}

// ResetAnalytics clears the aggregates without touching any session.
func (s *Store) ResetAnalytics() {
	s.aggregate.Reset()
}
