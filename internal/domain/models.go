// Package domain contains core models shared by the site client, store and poll loop.
package domain

// Thread classes reported by the messages page.
const (
	ThreadUnread   = "unreadMessage"
	ThreadRead     = "readMessage"
	ThreadReplied  = "repliedMessage"
	ThreadFiltered = "filteredReadMessage"
)

// Thread summarizes one conversation from the messages list.
type Thread struct {
	ID    string `json:"thread_id"`
	Class string `json:"class"`
	Text  string `json:"text"`
	User  string `json:"user"`
}

// Replied reports whether our side already answered the latest message.
func (t Thread) Replied() bool {
	return t.Class == ThreadReplied
}

// Message is a single scraped message inside a thread.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	FancyDate string `json:"fancydate"`
}

// Conversation is a stored thread with its messages in insertion order.
type Conversation struct {
	ID       int64
	SiteID   string
	Messages []Message
}
