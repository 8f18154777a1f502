package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/samvad-hq/okbot/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "db", "okbot.sqlite"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveThreadIsGetOrCreate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.SaveThread(ctx, "1001", []domain.Message{
		{ID: "1", Sender: "alex", Body: "hi", FancyDate: "Jan 1"},
	})
	if err != nil {
		t.Fatalf("SaveThread: %v", err)
	}

	again, err := s.SaveThread(ctx, "1001", []domain.Message{
		{ID: "1", Sender: "alex", Body: "edited", FancyDate: "Jan 1"},
		{ID: "2", Sender: "okbot", Body: "hello", FancyDate: "Jan 2"},
	})
	if err != nil {
		t.Fatalf("SaveThread again: %v", err)
	}
	if first != again {
		t.Fatalf("thread ids differ: %d vs %d", first, again)
	}

	convs, err := s.Threads(ctx)
	if err != nil {
		t.Fatalf("Threads: %v", err)
	}
	want := []domain.Conversation{{
		ID:     first,
		SiteID: "1001",
		Messages: []domain.Message{
			{ID: "1", Sender: "alex", Body: "hi", FancyDate: "Jan 1"},
			{ID: "2", Sender: "okbot", Body: "hello", FancyDate: "Jan 2"},
		},
	}}
	if !reflect.DeepEqual(convs, want) {
		t.Fatalf("Threads = %+v", convs)
	}
}

func TestThreadsIncludesEmptyThreadsInOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.SaveThread(ctx, "b", nil); err != nil {
		t.Fatalf("SaveThread b: %v", err)
	}
	if _, err := s.SaveThread(ctx, "a", []domain.Message{{ID: "m1", Body: "x"}}); err != nil {
		t.Fatalf("SaveThread a: %v", err)
	}

	convs, err := s.Threads(ctx)
	if err != nil {
		t.Fatalf("Threads: %v", err)
	}
	if len(convs) != 2 || convs[0].SiteID != "b" || len(convs[0].Messages) != 0 || convs[1].SiteID != "a" {
		t.Fatalf("unexpected conversations %+v", convs)
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "okbot.sqlite")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.SaveThread(ctx, "7", []domain.Message{{ID: "70", Body: "persisted"}}); err != nil {
		t.Fatalf("SaveThread: %v", err)
	}
	s.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	convs, err := reopened.Threads(ctx)
	if err != nil || len(convs) != 1 || convs[0].Messages[0].Body != "persisted" {
		t.Fatalf("unexpected data after reopen %+v %v", convs, err)
	}
}
