package digest

import "testing"

func TestPersonaRowFeedURL(t *testing.T) {
	tests := []struct {
		name     string
		tags     string
		expected string
	}{
		{"url among tokens", "x,https://example.com/rss,y", "https://example.com/rss"},
		{"no url token", "foo,bar", ""},
		{"empty tags", "", ""},
		{"url first", "http://example.com/feed,misc", "http://example.com/feed"},
		{"whitespace around token", "news , https://example.com/rss ,x", "https://example.com/rss"},
		{"first url wins", "https://a.example.com/rss,https://b.example.com/rss", "https://a.example.com/rss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := PersonaRow{Name: "n", Image: "i", Tags: tt.tags}
			if got := row.FeedURL(); got != tt.expected {
				t.Errorf("Expected feed URL '%s', got: '%s'", tt.expected, got)
			}
		})
	}
}
