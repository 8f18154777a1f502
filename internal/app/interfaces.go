package app

import (
	"context"

	"github.com/samvad-hq/okbot/internal/domain"
	"github.com/samvad-hq/okbot/pkg/publishers"
)

// SiteClient is the dating-site surface the bot drives.
type SiteClient interface {
	Login(ctx context.Context) error
	Threads(ctx context.Context) ([]domain.Thread, error)
	ScrapeThread(ctx context.Context, threadID string) ([]domain.Message, error)
	Reply(ctx context.Context, threadID, content string) error
	Park(ctx context.Context) error
}

// ConversationStore persists scraped threads.
type ConversationStore interface {
	SaveThread(ctx context.Context, siteID string, msgs []domain.Message) (int64, error)
}

// ReplySource hands out reply texts.
type ReplySource interface {
	Pull(ctx context.Context, count int) error
	Next(ctx context.Context, target string) (string, error)
}

// EventPublisher fans reply events out to the configured sinks.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
