package site

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/okbot/internal/domain"
	"github.com/samvad-hq/okbot/internal/logger"
)

const (
	messagePrefix = "message_"
	appMarker     = `<em class="mobilemsg">Sent from the OkCupid app</em>`
	unknownUser   = "0"
)

var (
	threadIDRe = regexp.MustCompile(`\d+`)
	profileRe  = regexp.MustCompile(`/profile/([^/?#]+)`)
)

// parseThreads reads the thread summaries out of the messages page. A thread whose id
// cannot be read fails the whole page; a missing profile link only costs the user name.
func parseThreads(page string, log logger.Logger) ([]domain.Thread, error) {
	log = logger.Ensure(log)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse messages page: %w", err)
	}

	var (
		threads  []domain.Thread
		parseErr error
	)
	doc.Find("#messages > li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		rawID, _ := li.Attr("id")
		id := threadIDRe.FindString(rawID)
		if id == "" {
			parseErr = fmt.Errorf("thread element %q has no numeric id", rawID)
			return false
		}

		user := unknownUser
		href, _ := li.Find("a").First().Attr("href")
		if m := profileRe.FindStringSubmatch(href); m != nil {
			user = m[1]
		} else {
			log.ErrorObj("thread user not parsed", "site_thread_user", map[string]any{
				"thread_id": id,
				"href":      href,
			})
		}

		class, _ := li.Attr("class")
		threads = append(threads, domain.Thread{
			ID:    id,
			Class: strings.TrimSpace(class),
			Text:  strings.Join(strings.Fields(li.Text()), " "),
			User:  user,
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return threads, nil
}

// uniqueByUser keeps the first thread for each user.
func uniqueByUser(threads []domain.Thread) []domain.Thread {
	seen := make(map[string]struct{}, len(threads))
	out := make([]domain.Thread, 0, len(threads))
	for _, t := range threads {
		if _, ok := seen[t.User]; ok {
			continue
		}
		seen[t.User] = struct{}{}
		out = append(out, t)
	}
	return out
}

// parseThreadMessages reads the messages of an opened thread. Non-message list entries
// (dividers, the collapse toggle) are skipped.
func parseThreadMessages(page string) ([]domain.Message, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse thread page: %w", err)
	}

	var msgs []domain.Message
	doc.Find("ul#thread > li").Each(func(_ int, li *goquery.Selection) {
		rawID, _ := li.Attr("id")
		if !strings.HasPrefix(rawID, messagePrefix) {
			return
		}

		body, _ := li.Find("div.message_body").First().Html()
		body = strings.TrimSpace(strings.ReplaceAll(body, appMarker, ""))
		sender, _ := li.ChildrenFiltered("a.photo").First().Attr("title")
		date, _ := li.Find("span.fancydate").First().Html()

		msgs = append(msgs, domain.Message{
			ID:        strings.TrimPrefix(rawID, messagePrefix),
			Sender:    sender,
			Body:      body,
			FancyDate: date,
		})
	})
	return msgs, nil
}
