package session

import (
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one conversation entry. Immutable once created.
type Message struct {
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one conversation thread. The message sequence is append-only:
// clearing replaces it with an empty slice, it is never spliced.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`

	// seq is the creation order, used to break lastActivity ties when
	// listing.
	seq int
}

// Summary is the listing view of a session handed to collaborators.
type Summary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Preview      string    `json:"preview"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	Active       bool      `json:"active"`
}

// Handle correlates a submitted user message with its eventual bot reply.
// It captures the payload the scheduled completion needs: the target session
// and the original user text as submitted.
type Handle struct {
	ID          string
	SessionID   string
	UserText    string
	SubmittedAt time.Time
	Delay       time.Duration
}

// MessageEvent is the payload published with events.MessageAppended.
type MessageEvent struct {
	Message  Message  `json:"message"`
	HandleID string   `json:"handle_id,omitempty"`
	Features []string `json:"features,omitempty"`
}

const (
	defaultTitle  = "New Conversation"
	titleLength   = 30
	previewLength = 50
	emptyPreview  = "No messages yet"
)

// deriveTitle takes the first 30 characters of the latest message content,
// ellipsis-suffixed when truncated.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLength {
		return content
	}
	return string(runes[:titleLength]) + "..."
}

// derivePreview takes the first 50 characters of the latest message content
// with a trailing ellipsis regardless of truncation, matching the display
// the view layer expects.
func derivePreview(messages []Message) string {
	if len(messages) == 0 {
		return emptyPreview
	}
	content := messages[len(messages)-1].Content
	runes := []rune(content)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}
