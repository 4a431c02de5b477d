package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/chatforge/chatforge/internal/analytics"
)

// ExportBundle is the serialized form of one session together with the
// current analytics snapshot.
type ExportBundle struct {
	Title     string          `json:"title"`
	CreatedAt time.Time       `json:"createdAt"`
	Messages  []Message       `json:"messages"`
	Analytics analytics.State `json:"analytics"`
}

// ExportSession serializes a session's title, creation time, full message
// sequence, and the analytics snapshot taken now.
func (s *Store) ExportSession(id string) (ExportBundle, error) {
	snap, err := s.Snapshot(id)
	if err != nil {
		return ExportBundle{}, err
	}

	return ExportBundle{
		Title:     snap.Title,
		CreatedAt: snap.CreatedAt,
		Messages:  snap.Messages,
		Analytics: s.aggregate.Snapshot(),
	}, nil
}

// ImportSession reconstructs a session from a previously exported bundle and
// returns its id. The restored session keeps the bundle's title, creation
// time, and message order; it does not become active and the analytics state
// is left alone.
func (s *Store) ImportSession(bundle ExportBundle) string {
	messages := make([]Message, len(bundle.Messages))
	copy(messages, bundle.Messages)

	last := s.now()
	if len(messages) > 0 {
		last = messages[len(messages)-1].Timestamp
	}

	s.mu.Lock()
	id := uuid.NewString()
	s.sessions[id] = &Session{
		ID:           id,
		Title:        bundle.Title,
		Messages:     messages,
		CreatedAt:    bundle.CreatedAt,
		LastActivity: last,
		seq:          s.nextSeq,
	}
	s.nextSeq++
	s.mu.Unlock()

	return id
}
