package digest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okatkov/rss-digest/app/cfg"
	"github.com/okatkov/rss-digest/app/extract"
	"github.com/okatkov/rss-digest/app/feed"
)

// Collector runs the full extraction pipeline: fetch a feed, normalize its
// entries, enrich each linked entry with full-page text and image, and shape
// the results for export. Failures never abort a run; they surface in the
// returned diagnostics slice, so the collector owns no output side effects.
type Collector struct {
	httpClient  *http.Client
	parser      *feed.Parser
	filterer    *feed.Filterer
	fetcher     *extract.Fetcher
	userAgent   string
	workerCount int
}

func NewCollector(httpClient *http.Client, parser *feed.Parser, filterer *feed.Filterer,
	fetcher *extract.Fetcher, userAgent string, workerCount int) *Collector {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Collector{
		httpClient:  httpClient,
		parser:      parser,
		filterer:    filterer,
		fetcher:     fetcher,
		userAgent:   userAgent,
		workerCount: workerCount,
	}
}

// Digest processes a single feed URL and returns one ArticleRecord per entry
// with a non-empty link, in document order, plus any diagnostics. A feed
// fetch or parse failure yields an empty record slice and a diagnostic,
// never an error.
func (c *Collector) Digest(ctx context.Context, feedURL string, limit int) ([]feed.ArticleRecord, []string) {
	return c.DigestSource(ctx, Source{FeedURL: feedURL}, limit)
}

// DigestSource is Digest with persona branding and source-level filters
// applied. When the source carries a Name/Image, records are stamped with
// them; the persona image takes precedence over the article's own extracted
// image.
func (c *Collector) DigestSource(ctx context.Context, source Source, limit int) ([]feed.ArticleRecord, []string) {
	var diagnostics []string
	limit = cfg.ClampArticleLimit(limit)

	data, err := c.fetchFeed(ctx, source.FeedURL)
	if err != nil {
		slog.Error("Feed fetch failed", "url", source.FeedURL, "error", err)
		return nil, append(diagnostics, fmt.Sprintf("Error fetching feed %s: %v", source.FeedURL, err))
	}

	entries, err := c.parser.Run(data, limit)
	if err != nil {
		slog.Error("Feed parse failed", "url", source.FeedURL, "error", err)
		return nil, append(diagnostics, fmt.Sprintf("Error parsing feed %s: %v", source.FeedURL, err))
	}

	entries, dropped := c.filterer.Run(entries, source.Filters)
	diagnostics = append(diagnostics, dropped...)

	records, enrichDiagnostics := c.enrich(ctx, source, entries)
	diagnostics = append(diagnostics, enrichDiagnostics...)

	slog.Info("Feed digested",
		"url", source.FeedURL,
		"entries", len(entries),
		"records", len(records),
		"diagnostics", len(diagnostics))

	return records, diagnostics
}

// ProcessPersonas runs the pipeline for each persona row carrying a valid
// feed URL. Malformed rows are skipped with a diagnostic; partial failure
// never aborts the batch. Output preserves persona order, then entry order
// within each persona.
func (c *Collector) ProcessPersonas(ctx context.Context, rows []PersonaRow, perFeed int) ([]feed.ArticleRecord, []string) {
	var records []feed.ArticleRecord
	var diagnostics []string

	for _, row := range rows {
		if row.Name == "" || row.Image == "" || row.Tags == "" {
			diagnostics = append(diagnostics, fmt.Sprintf("Persona row '%s' skipped: missing Name, Image or Tags", row.Name))
			continue
		}

		feedURL := row.FeedURL()
		if feedURL == "" {
			diagnostics = append(diagnostics, fmt.Sprintf("Persona row '%s' skipped: no feed URL found in Tags '%s'", row.Name, row.Tags))
			continue
		}

		sourceRecords, sourceDiagnostics := c.DigestSource(ctx, Source{
			Name:    row.Name,
			Image:   row.Image,
			FeedURL: feedURL,
		}, perFeed)

		records = append(records, sourceRecords...)
		diagnostics = append(diagnostics, sourceDiagnostics...)
	}

	return records, diagnostics
}

// ProcessSources is the batch pipeline over configured sources, accumulating
// one flat record sequence in source order.
func (c *Collector) ProcessSources(ctx context.Context, sources []Source, perFeed int) ([]feed.ArticleRecord, []string) {
	var records []feed.ArticleRecord
	var diagnostics []string

	for _, source := range sources {
		sourceRecords, sourceDiagnostics := c.DigestSource(ctx, source, perFeed)
		records = append(records, sourceRecords...)
		diagnostics = append(diagnostics, sourceDiagnostics...)
	}

	return records, diagnostics
}

// enrich fans article fetches out across a bounded worker pool and
// reassembles results back into entry order. A slow or failing fetch cannot
// block others past the client's per-request timeout.
func (c *Collector) enrich(ctx context.Context, source Source, entries []feed.Entry) ([]feed.ArticleRecord, []string) {
	var diagnostics []string

	type indexed struct {
		entry feed.Entry
		index int
	}

	linked := make([]indexed, 0, len(entries))
	for _, entry := range entries {
		if entry.Link == "" {
			diagnostics = append(diagnostics, fmt.Sprintf("Entry '%s' has no link and was dropped from export", entry.Title))
			continue
		}
		linked = append(linked, indexed{entry: entry, index: len(linked)})
	}

	records := make([]feed.ArticleRecord, len(linked))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workerCount)

	for _, item := range linked {
		g.Go(func() error {
			text, imageURL := c.fetcher.Run(gctx, item.entry.Link)
			records[item.index] = c.buildRecord(source, item.entry, text, imageURL)
			return nil
		})
	}

	// Workers never return errors; failures are sentinel-encoded per record.
	_ = g.Wait()

	return records, diagnostics
}

func (c *Collector) buildRecord(source Source, entry feed.Entry, text, articleImageURL string) feed.ArticleRecord {
	imageURL := source.Image
	if imageURL == "" {
		if imageURL = articleImageURL; imageURL == "" {
			imageURL = entry.ImageURL
		}
	}

	return feed.ArticleRecord{
		From:      source.Name,
		Subject:   entry.Title,
		Message:   text,
		Timestamp: time.Now().In(time.Local).Format("2006-01-02 15:04:05"),
		ImageURL:  imageURL,
		Subtitle:  entry.Summary,
	}
}

func (c *Collector) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
