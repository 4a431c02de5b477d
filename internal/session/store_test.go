package session_test

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatforge/chatforge/internal/analytics"
	"github.com/chatforge/chatforge/internal/config"
	"github.com/chatforge/chatforge/internal/response"
	"github.com/chatforge/chatforge/internal/sentiment"
	"github.com/chatforge/chatforge/internal/session"
)

// zeroSource makes every random draw 0, so the variation override never
// fires and replies are the plain rule-selected templates.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

// manualScheduler records scheduled completions so tests control when and in
// which order they fire.
type manualScheduler struct {
	tasks []manualTask
}

type manualTask struct {
	delay time.Duration
	fn    func()
}

func (m *manualScheduler) Schedule(d time.Duration, fn func()) {
	m.tasks = append(m.tasks, manualTask{delay: d, fn: fn})
}

// fireInDelayOrder runs pending tasks the way real timers would: shortest
// delay first.
func (m *manualScheduler) fireInDelayOrder() {
	tasks := m.tasks
	m.tasks = nil
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].delay < tasks[j].delay })
	for _, task := range tasks {
		task.fn()
	}
}

type fixture struct {
	store     *session.Store
	scheduler *manualScheduler
	clock     *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time            { return c.now }
func (c *fakeClock) Advance(d time.Duration)   { c.now = c.now.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	scheduler := &manualScheduler{}
	store := session.NewStore(session.Options{
		Engine:    response.NewEngine(rand.New(zeroSource{})),
		Aggregate: analytics.NewWithClock(clock.Now),
		Scheduler: scheduler,
		Clock:     clock.Now,
	})
	return &fixture{store: store, scheduler: scheduler, clock: clock}
}

func settingsWithSpeed(speed int) config.Settings {
	s := config.Defaults()
	s.Personality = response.Professional
	s.ResponseSpeed = speed
	return s
}

func TestNewStore_StartsWithOneActiveSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	list := f.store.ListSessions()
	require.Len(t, list, 1)
	assert.True(t, list[0].Active)
	assert.Equal(t, "New Conversation", list[0].Title)
	assert.Equal(t, "No messages yet", list[0].Preview)
	assert.Equal(t, list[0].ID, f.store.ActiveID())
}

func TestSubmitUserMessage_EmptyInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := f.store.SubmitUserMessage(text, settingsWithSpeed(3))
		assert.ErrorIs(t, err, session.ErrEmptyInput, "text %q", text)
	}

	assert.Zero(t, f.store.Analytics().MessageCount(), "rejected input never counts")
	snap, err := f.store.Snapshot(f.store.ActiveID())
	require.NoError(t, err)
	assert.Empty(t, snap.Messages, "rejected input never appends")
	assert.Empty(t, f.scheduler.tasks, "nothing scheduled")
}

func TestSubmitUserMessage_AppendsAndSchedules(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	handle, err := f.store.SubmitUserMessage("  hello there  ", settingsWithSpeed(5))
	require.NoError(t, err)

	assert.Equal(t, f.store.ActiveID(), handle.SessionID)
	assert.Equal(t, "hello there", handle.UserText, "text is trimmed")
	assert.Equal(t, 500*time.Millisecond, handle.Delay)
	assert.Equal(t, 1, f.store.Analytics().MessageCount())

	snap, err := f.store.Snapshot(handle.SessionID)
	require.NoError(t, err)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, session.SenderUser, snap.Messages[0].Sender)
	assert.Equal(t, "hello there", snap.Messages[0].Content)

	require.Len(t, f.scheduler.tasks, 1)
	assert.Equal(t, 500*time.Millisecond, f.scheduler.tasks[0].delay)
}

func TestCompleteBotTurn_AppendsReplyAndDerivesTitle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.store.SubmitUserMessage("hello", settingsWithSpeed(5))
	require.NoError(t, err)

	f.clock.Advance(500 * time.Millisecond)
	f.scheduler.fireInDelayOrder()

	snap, err := f.store.Snapshot(f.store.ActiveID())
	require.NoError(t, err)
	require.Len(t, snap.Messages, 2)

	bot := snap.Messages[1]
	assert.Equal(t, session.SenderBot, bot.Sender)
	assert.Equal(t,
		"Good day. I am ready to assist you with your inquiries. How may I be of service?",
		bot.Content)

	wantTitle := string([]rune(bot.Content)[:30]) + "..."
	assert.Equal(t, wantTitle, snap.Title, "title follows the latest message")
	assert.Equal(t, bot.Timestamp, snap.LastActivity)
}

func TestCompletionOrderFollowsDelayNotSubmission(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// The slow turn is submitted first, the fast one immediately after.
	_, err := f.store.SubmitUserMessage("thanks", settingsWithSpeed(1))
	require.NoError(t, err)
	_, err = f.store.SubmitUserMessage("hello", settingsWithSpeed(5))
	require.NoError(t, err)

	f.scheduler.fireInDelayOrder()

	snap, err := f.store.Snapshot(f.store.ActiveID())
	require.NoError(t, err)
	require.Len(t, snap.Messages, 4)

	// The fast turn's greeting lands before the slow turn's thanks.
	assert.Equal(t,
		"Good day. I am ready to assist you with your inquiries. How may I be of service?",
		snap.Messages[2].Content)
	assert.Equal(t,
		"You are welcome. I am available for further assistance as needed.",
		snap.Messages[3].Content)
}

func TestStaleCompletionTargetsCapturedSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first := f.store.ActiveID()

	_, err := f.store.SubmitUserMessage("hello", settingsWithSpeed(5))
	require.NoError(t, err)

	// The active pointer moves while the completion is pending.
	second := f.store.CreateSession()
	f.scheduler.fireInDelayOrder()

	firstSnap, err := f.store.Snapshot(first)
	require.NoError(t, err)
	assert.Len(t, firstSnap.Messages, 2, "reply lands in the submitting session")

	secondSnap, err := f.store.Snapshot(second)
	require.NoError(t, err)
	assert.Empty(t, secondSnap.Messages, "new active session untouched")
}

func TestCompletionAfterClearAllIsDropped(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	handle, err := f.store.SubmitUserMessage("hello", settingsWithSpeed(5))
	require.NoError(t, err)

	f.store.ClearAll()

	_, err = f.store.CompleteBotTurn(handle, settingsWithSpeed(5))
	assert.ErrorIs(t, err, session.ErrNotFound)

	list := f.store.ListSessions()
	require.Len(t, list, 1)
	assert.Zero(t, list[0].MessageCount)
}

func TestSwitchActive_UnknownIDLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	active := f.store.ActiveID()
	_, err := f.store.SubmitUserMessage("hello", settingsWithSpeed(5))
	require.NoError(t, err)

	err = f.store.SwitchActive("no-such-session")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, active, f.store.ActiveID())

	snap, err := f.store.Snapshot(active)
	require.NoError(t, err)
	assert.Len(t, snap.Messages, 1)
}

func TestClearSession(t *testing.T) {
	t.Parallel()

	t.Run("active session also resets analytics", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.store.ActiveID()
		_, err := f.store.SubmitUserMessage("hello", settingsWithSpeed(5))
		require.NoError(t, err)

		require.NoError(t, f.store.ClearSession(id))

		snap, err := f.store.Snapshot(id)
		require.NoError(t, err)
		assert.Empty(t, snap.Messages)
		assert.Zero(t, f.store.Analytics().MessageCount())
	})

	t.Run("inactive session keeps analytics", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		first := f.store.ActiveID()
		_, err := f.store.SubmitUserMessage("hello", settingsWithSpeed(5))
		require.NoError(t, err)

		f.store.CreateSession()
		count := f.store.Analytics().MessageCount()

		require.NoError(t, f.store.ClearSession(first))
		assert.Equal(t, count, f.store.Analytics().MessageCount())
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		assert.ErrorIs(t, f.store.ClearSession("nope"), session.ErrNotFound)
	})
}

func TestListSessions_Ordering(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first := f.store.ActiveID()

	f.clock.Advance(time.Minute)
	second := f.store.CreateSession()

	f.clock.Advance(time.Minute)
	third := f.store.CreateSession()

	// Activity in the oldest session moves it to the front.
	require.NoError(t, f.store.SwitchActive(first))
	f.clock.Advance(time.Minute)
	_, err := f.store.SubmitUserMessage("hello", settingsWithSpeed(5))
	require.NoError(t, err)

	list := f.store.ListSessions()
	require.Len(t, list, 3)
	assert.Equal(t, []string{first, third, second}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestListSessions_TiesBreakTowardEarlierCreation(t *testing.T) {
	t.Parallel()

	// The clock never advances, so every session shares one lastActivity.
	f := newFixture(t)
	first := f.store.ActiveID()
	second := f.store.CreateSession()
	third := f.store.CreateSession()

	list := f.store.ListSessions()
	require.Len(t, list, 3)
	assert.Equal(t, []string{first, second, third}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestSentimentRecording(t *testing.T) {
	t.Parallel()

	t.Run("enabled scores the user's message", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.store.SubmitUserMessage("I love this, it is great", settingsWithSpeed(5))
		require.NoError(t, err)
		f.scheduler.fireInDelayOrder()

		snap := f.store.Analytics().Snapshot()
		require.Len(t, snap.SentimentHistory, 1)
		assert.Equal(t, 2, snap.SentimentHistory[0].Score)
		assert.Equal(t, sentiment.Positive, snap.SentimentHistory[0].Label)
		assert.Equal(t, []int64{500}, snap.ResponseTimeHistory)
	})

	t.Run("disabled still records latency", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		settings := settingsWithSpeed(5)
		settings.EnableSentiment = false

		_, err := f.store.SubmitUserMessage("I love this, it is great", settings)
		require.NoError(t, err)
		f.scheduler.fireInDelayOrder()

		snap := f.store.Analytics().Snapshot()
		assert.Empty(t, snap.SentimentHistory)
		assert.Equal(t, []int64{500}, snap.ResponseTimeHistory)
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.store.ActiveID()

	_, err := f.store.SubmitUserMessage("hello", settingsWithSpeed(5))
	require.NoError(t, err)
	f.scheduler.fireInDelayOrder()

	bundle, err := f.store.ExportSession(id)
	require.NoError(t, err)
	assert.Equal(t, 1, bundle.Analytics.MessageCount)

	restored := f.store.ImportSession(bundle)
	require.NotEqual(t, id, restored, "restored session gets a fresh id")

	original, err := f.store.Snapshot(id)
	require.NoError(t, err)
	copied, err := f.store.Snapshot(restored)
	require.NoError(t, err)

	assert.Equal(t, original.Title, copied.Title)
	assert.Equal(t, original.CreatedAt, copied.CreatedAt)
	assert.Equal(t, original.Messages, copied.Messages)
	assert.Equal(t, id, f.store.ActiveID(), "import never steals the active pointer")
}

func TestExportSession_UnknownID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.store.ExportSession("nope")
	assert.ErrorIs(t, err, session.ErrNotFound)
}
