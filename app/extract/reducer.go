package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/okatkov/rss-digest/app/cfg"
)

// Reducer converts a raw HTML document into plain text and an optional image
// URL. The reduction policy is selected explicitly at construction time and
// changes export content materially:
//
//   - paragraph: join <p> tag texts with a blank-line separator; text outside
//     paragraph elements is dropped.
//   - lines: take all visible text of the document, split on line boundaries,
//     strip each line, split lines on double-space runs, drop empties, rejoin
//     with single newlines.
//   - readability: plain text content of the readability-extracted article.
//
// All policies strip <script> and <style> subtrees before text extraction.
type Reducer struct {
	policy string
}

func NewReducer(policy string) *Reducer {
	return &Reducer{policy: policy}
}

func (r *Reducer) Policy() string {
	return r.policy
}

// Run reduces an HTML document to (text, imageURL). The image URL is the src
// attribute of the first remaining <img> element in the document, empty if
// none exists. An empty text result is a real possible output for pages
// without matching content, not an error.
func (r *Reducer) Run(data []byte) (string, string, error) {
	if r.policy == cfg.PolicyReadability {
		return r.runReadability(data)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style").Remove()

	// Linked thumbnail images would pollute extracted text and are never the
	// representative article image.
	doc.Find("a img").Remove()

	imageURL := firstImageURL(doc)

	var text string
	switch r.policy {
	case cfg.PolicyLines:
		text = reduceLines(doc.Text())
	default:
		text = reduceParagraphs(doc)
	}

	return text, imageURL, nil
}

func (r *Reducer) runReadability(data []byte) (string, string, error) {
	article, err := readability.FromReader(bytes.NewReader(data), nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract content: %w", err)
	}

	imageURL := article.Image
	if imageURL == "" {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data)); err == nil {
			doc.Find("script, style").Remove()
			doc.Find("a img").Remove()
			imageURL = firstImageURL(doc)
		}
	}

	return strings.TrimSpace(article.TextContent), imageURL, nil
}

func reduceParagraphs(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

func reduceLines(raw string) string {
	var chunks []string
	for _, line := range strings.Split(raw, "\n") {
		// Double-space runs inside a line are a heuristic for concatenated
		// headline fragments.
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if chunk := strings.TrimSpace(phrase); chunk != "" {
				chunks = append(chunks, chunk)
			}
		}
	}
	return strings.Join(chunks, "\n")
}

func firstImageURL(doc *goquery.Document) string {
	src, _ := doc.Find("img").First().Attr("src")
	return src
}
