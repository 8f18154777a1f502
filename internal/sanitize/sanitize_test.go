package sanitize

import "testing"

func TestSanitizeStripsLinksTagsAndMentions(t *testing.T) {
	s := New()
	cases := map[string]string{
		"Check this out http://t.co/abc123 #golang @gopher": "Check this out",
		"RT @user: hello":                      "RT: hello",
		"www.example.com/page rocks":           "rocks",
		"read t.co/xyz later":                  "read  later",
		"Fish &amp; chips &lt;3":               "Fish & chips <3",
		"I love #golang!":                      "I love!",
		"no tokens here":                       "no tokens here",
		"#100 is a number":                     "#100 is a number",
		"ping bob@example.com":                 "ping bob@example.com",
		"@a @b hi":                             "hi",
		"https://example.com/only-a-link":      "",
		"  padded  ":                           "padded",
	}
	for in, want := range cases {
		if got := s.Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeIsIdempotentOnCleanText(t *testing.T) {
	s := New()
	inputs := []string{
		"plain words only",
		"Check this out http://t.co/abc123 #golang @gopher",
		"What's your name?",
		"",
	}
	for _, in := range inputs {
		once := s.Sanitize(in)
		if twice := s.Sanitize(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
