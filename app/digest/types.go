package digest

import (
	"strings"

	"github.com/okatkov/rss-digest/app/feed"
)

// PersonaRow is one row of an uploaded persona spreadsheet. Tags is a
// comma-separated field carrying zero or one feed URL token.
type PersonaRow struct {
	Name  string
	Image string
	Tags  string
}

// FeedURL returns the first comma-separated Tags token starting with the
// http scheme prefix, or empty if the row carries none.
func (r PersonaRow) FeedURL() string {
	for _, token := range strings.Split(r.Tags, ",") {
		if token = strings.TrimSpace(token); strings.HasPrefix(token, "http") {
			return token
		}
	}
	return ""
}

// Source is one named feed to digest. Name and Image brand the resulting
// records when set; Filters drop entries before enrichment.
type Source struct {
	Name    string
	Image   string
	FeedURL string
	Filters []feed.FilterRule
}
