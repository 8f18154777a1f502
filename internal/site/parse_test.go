package site

import (
	"context"
	"reflect"
	"testing"

	"github.com/samvad-hq/okbot/internal/domain"
	"github.com/samvad-hq/okbot/internal/logger"
)

const messagesPage = `<html><body>
<ul id="messages">
  <li id="message_1001" class="unreadMessage">
    <a href="https://www.okcupid.com/profile/alex?cf=messages">alex</a>
    <p>hey   there</p>
  </li>
  <li id="message_1002" class="repliedMessage">
    <a href="/profile/sam">sam</a><p>thanks!</p>
  </li>
  <li id="message_1003" class="readMessage">
    <a href="/profile/alex">alex</a><p>second thread</p>
  </li>
  <li id="message_1004" class="filteredReadMessage">
    <a href="/settings">no profile</a>
  </li>
</ul>
</body></html>`

func TestParseThreads(t *testing.T) {
	threads, err := parseThreads(messagesPage, logger.NopLogger{})
	if err != nil {
		t.Fatalf("parseThreads: %v", err)
	}
	if len(threads) != 4 {
		t.Fatalf("expected 4 threads, got %d", len(threads))
	}

	first := threads[0]
	want := domain.Thread{ID: "1001", Class: domain.ThreadUnread, Text: "alex hey there", User: "alex"}
	if first != want {
		t.Fatalf("first thread = %+v, want %+v", first, want)
	}
	if !threads[1].Replied() {
		t.Fatalf("second thread should be replied")
	}
	if threads[3].User != unknownUser {
		t.Fatalf("unparseable user should fall back to %q, got %q", unknownUser, threads[3].User)
	}

	unique := uniqueByUser(threads)
	var ids []string
	for _, th := range unique {
		ids = append(ids, th.ID)
	}
	if !reflect.DeepEqual(ids, []string{"1001", "1002", "1004"}) {
		t.Fatalf("unique threads = %v", ids)
	}
}

func TestParseThreadsRejectsMissingID(t *testing.T) {
	page := `<ul id="messages"><li id="thread_x"><a href="/profile/a">a</a></li></ul>`
	if _, err := parseThreads(page, nil); err == nil {
		t.Fatalf("expected error for thread without numeric id")
	}
}

const threadPage = `<html><body>
<ul id="thread">
  <li id="collapse">show older</li>
  <li id="message_11" class="from_them">
    <a class="photo" title="alex" href="/profile/alex"></a>
    <div class="message_body"> hi! <em class="mobilemsg">Sent from the OkCupid app</em> </div>
    <span class="fancydate">Jan 2</span>
  </li>
  <li id="message_12" class="from_me">
    <a class="photo" title="okbot" href="/profile/okbot"></a>
    <div class="message_body">hello <b>you</b></div>
    <span class="fancydate">Jan 3</span>
  </li>
  <li class="divider"></li>
</ul>
</body></html>`

func TestParseThreadMessages(t *testing.T) {
	msgs, err := parseThreadMessages(threadPage)
	if err != nil {
		t.Fatalf("parseThreadMessages: %v", err)
	}
	want := []domain.Message{
		{ID: "11", Sender: "alex", Body: "hi!", FancyDate: "Jan 2"},
		{ID: "12", Sender: "okbot", Body: "hello <b>you</b>", FancyDate: "Jan 3"},
	}
	if !reflect.DeepEqual(msgs, want) {
		t.Fatalf("messages = %+v", msgs)
	}
}

func TestThreadURL(t *testing.T) {
	c := New(context.Background(), Options{BaseURL: "https://site.example/"}, nil)
	got := c.threadURL("42")
	if got != "https://site.example/messages?folder=1&readmsg=true&threadid=42" {
		t.Fatalf("threadURL = %q", got)
	}
}

func TestActionsRequireLogin(t *testing.T) {
	c := New(context.Background(), Options{}, nil)
	if _, err := c.Threads(context.Background()); err != ErrNotLoggedIn {
		t.Fatalf("Threads: %v", err)
	}
	if err := c.Reply(context.Background(), "1", "x"); err != ErrNotLoggedIn {
		t.Fatalf("Reply: %v", err)
	}
	if _, err := c.ScrapeThread(context.Background(), "1"); err != ErrNotLoggedIn {
		t.Fatalf("ScrapeThread: %v", err)
	}
}
