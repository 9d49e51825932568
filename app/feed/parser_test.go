package feed

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

func buildRSS(items ...string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    %s
  </channel>
</rss>`, strings.Join(items, "\n")))
}

func TestParserLimitShorterFeed(t *testing.T) {
	data := buildRSS(
		`<item><title>First</title><link>https://example.com/1</link></item>`,
		`<item><title>Second</title><link>https://example.com/2</link></item>`,
	)

	parser := NewParser()
	entries, err := parser.Run(data, 5)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}
	if entries[0].Title != "First" || entries[1].Title != "Second" {
		t.Errorf("Expected document order, got: %s, %s", entries[0].Title, entries[1].Title)
	}
}

func TestParserLimitLongerFeed(t *testing.T) {
	items := make([]string, 0, 8)
	for i := 1; i <= 8; i++ {
		items = append(items, fmt.Sprintf(`<item><title>Item %d</title><link>https://example.com/%d</link></item>`, i, i))
	}

	parser := NewParser()
	entries, err := parser.Run(buildRSS(items...), 5)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 5 {
		t.Fatalf("Expected 5 entries, got: %d", len(entries))
	}
	for i, entry := range entries {
		expected := fmt.Sprintf("Item %d", i+1)
		if entry.Title != expected {
			t.Errorf("Expected title '%s' at index %d, got: %s", expected, i, entry.Title)
		}
	}
}

func TestParserDefaultsForMissingFields(t *testing.T) {
	data := buildRSS(`<item><guid>bare-item</guid></item>`)

	parser := NewParser()
	entries, err := parser.Run(data, 5)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}

	entry := entries[0]
	if entry.Title != DefaultTitle {
		t.Errorf("Expected default title '%s', got: %s", DefaultTitle, entry.Title)
	}
	if entry.Summary != DefaultSummary {
		t.Errorf("Expected default summary '%s', got: %s", DefaultSummary, entry.Summary)
	}
	if entry.Link != "" {
		t.Errorf("Expected empty link, got: %s", entry.Link)
	}
	if entry.Published != "" {
		t.Errorf("Expected empty published, got: %s", entry.Published)
	}
	if entry.ImageURL != "" {
		t.Errorf("Expected empty image URL, got: %s", entry.ImageURL)
	}
}

func TestParserZeroEntries(t *testing.T) {
	parser := NewParser()
	entries, err := parser.Run(buildRSS(), 5)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty entry slice, got: %d entries", len(entries))
	}
}

func TestParserMalformedFeed(t *testing.T) {
	parser := NewParser()
	if _, err := parser.Run([]byte("this is not a feed"), 5); err == nil {
		t.Error("Expected error for malformed feed document")
	}
}

func TestParserImagePriorityFromDocument(t *testing.T) {
	data := buildRSS(
		`<item>
      <title>Media wins</title>
      <link>https://example.com/1</link>
      <media:content url="https://example.com/media.jpg" medium="image"/>
      <enclosure url="https://example.com/enclosure.jpg" type="image/jpeg" length="1000"/>
    </item>`,
		`<item>
      <title>Enclosure wins</title>
      <link>https://example.com/2</link>
      <enclosure url="https://example.com/enclosure.jpg" type="image/jpeg" length="1000"/>
    </item>`,
	)

	parser := NewParser()
	entries, err := parser.Run(data, 5)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}

	if entries[0].ImageURL != "https://example.com/media.jpg" {
		t.Errorf("Expected media:content URL to win, got: %s", entries[0].ImageURL)
	}
	if entries[1].ImageURL != "https://example.com/enclosure.jpg" {
		t.Errorf("Expected enclosure URL, got: %s", entries[1].ImageURL)
	}
}

func TestExtractImageURLPriority(t *testing.T) {
	parser := NewParser()

	mediaExt := ext.Extensions{
		"media": {
			"content": []ext.Extension{
				{Name: "content", Attrs: map[string]string{"url": "https://example.com/media.jpg"}},
			},
		},
	}
	enclosures := []*gofeed.Enclosure{{URL: "https://example.com/enclosure.jpg", Type: "image/jpeg"}}
	image := &gofeed.Image{URL: "https://example.com/image.jpg"}

	tests := []struct {
		name     string
		item     *gofeed.Item
		expected string
	}{
		{
			name:     "media content beats enclosure and image",
			item:     &gofeed.Item{Extensions: mediaExt, Enclosures: enclosures, Image: image},
			expected: "https://example.com/media.jpg",
		},
		{
			name:     "enclosure beats image",
			item:     &gofeed.Item{Enclosures: enclosures, Image: image},
			expected: "https://example.com/enclosure.jpg",
		},
		{
			name:     "explicit image field",
			item:     &gofeed.Item{Image: image},
			expected: "https://example.com/image.jpg",
		},
		{
			name:     "nothing yields empty",
			item:     &gofeed.Item{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parser.extractImageURL(tt.item); got != tt.expected {
				t.Errorf("Expected image URL '%s', got: '%s'", tt.expected, got)
			}
		})
	}
}
