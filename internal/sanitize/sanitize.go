// Package sanitize cleans raw feed item text before it is buffered for replies.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

const (
	// urlPattern matches scheme or www-prefixed links and bare host/path links such as t.co/abc.
	urlPattern = `(?i)(?:\b(?:https?://|www\.)\S+|\b(?:[a-z0-9-]+\.)+[a-z]{2,}/\S*)`

	// hashtagPattern follows the twitter-text convention: the tag needs at least one letter or
	// underscore, and the non-word run in front of it is dropped with it.
	hashtagPattern = `(^|[^\p{L}\p{N}&/]+)[#＃][\p{L}\p{N}_]*[\p{L}_][\p{L}\p{N}_]*`

	// mentionPattern matches @user and @user/list tokens, again taking the leading separator.
	mentionPattern = `(^|[^a-zA-Z0-9_!#$%&*@＠])[@＠][a-zA-Z0-9_]{1,20}(?:/[a-zA-Z][a-zA-Z0-9\-]{0,79})?`
)

// Sanitizer strips links, hashtags and user mentions from feed text and unescapes HTML entities.
// A Sanitizer is immutable and safe for concurrent use.
type Sanitizer struct {
	patterns []*regexp.Regexp
}

// New compiles the sanitizer patterns.
func New() *Sanitizer {
	return &Sanitizer{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(urlPattern),
			regexp.MustCompile(hashtagPattern),
			regexp.MustCompile(mentionPattern),
		},
	}
}

// Sanitize returns text with URLs, hashtags and mentions removed, HTML entities decoded and
// surrounding whitespace trimmed. Text without any of those is returned unchanged apart from trimming.
func (s *Sanitizer) Sanitize(text string) string {
	for _, re := range s.patterns {
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(html.UnescapeString(text))
}
