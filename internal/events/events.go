// Package events carries state-change notifications from the session core to
// its collaborators. The view layer and the websocket relay subscribe here;
// the core never calls into them directly.
package events

import (
	"time"
)

// Type identifies what happened.
type Type string

const (
	SessionCreated  Type = "session_created"
	SessionSwitched Type = "session_switched"
	SessionCleared  Type = "session_cleared"
	MessageAppended Type = "message_appended"
	BotTyping       Type = "bot_typing"
	SentimentScored Type = "sentiment_scored"
	SettingsUpdated Type = "settings_updated"
)

// Event is one immutable notification. Payload shape depends on Type;
// subscribers receive copies, never live state.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TypingPayload accompanies BotTyping events.
type TypingPayload struct {
	Typing bool `json:"typing"`
}
