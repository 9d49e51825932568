package feed

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses a feed document and returns at most limit entries, taken from
// the front of the document in document order. Entries are never re-sorted
// by date. A feed with zero items yields an empty slice and no error.
func (p *Parser) Run(data []byte, limit int) ([]Entry, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := parsed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, p.normalizeItem(item))
	}

	return entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Entry {
	entry := Entry{
		Title:     DefaultTitle,
		Summary:   DefaultSummary,
		Link:      item.Link,
		Published: item.Published,
		ImageURL:  p.extractImageURL(item),
	}

	if item.Title != "" {
		entry.Title = item.Title
	}
	if item.Description != "" {
		entry.Summary = item.Description
	}

	return entry
}

// extractImageURL resolves an entry image from the first of: a media:content
// attachment, an enclosure attachment, or the explicit item image, in that
// priority order. First match wins; absence yields an empty string.
func (p *Parser) extractImageURL(item *gofeed.Item) string {
	if mediaExt, ok := item.Extensions["media"]; ok {
		for _, content := range mediaExt["content"] {
			if url := content.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	for _, enclosure := range item.Enclosures {
		if enclosure != nil && enclosure.URL != "" {
			return enclosure.URL
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	return ""
}
