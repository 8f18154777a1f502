package publishers

import (
	"time"

	"github.com/samvad-hq/okbot/internal/domain"
)

// Event is the notification published after a reply was handled.
type Event struct {
	ThreadID string    `json:"thread_id"`
	User     string    `json:"user"`
	Content  string    `json:"content"`
	Ranked   bool      `json:"ranked"`
	Target   string    `json:"target,omitempty"`
	SentAt   time.Time `json:"sent_at"`
	DryRun   bool      `json:"dry_run"`
}

// NewReplyEvent builds the event for a reply sent to thread.
func NewReplyEvent(thread domain.Thread, content, target string, dryRun bool) Event {
	return Event{
		ThreadID: thread.ID,
		User:     thread.User,
		Content:  content,
		Ranked:   target != "",
		Target:   target,
		SentAt:   time.Now().UTC(),
		DryRun:   dryRun,
	}
}

// attributes are attached to queue/topic messages so consumers can filter without decoding.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"thread_id": e.ThreadID,
		"user":      e.User,
	}
}
