package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// SentinelPrefix marks a Message field holding a fetch/parse failure instead
// of real article content. Downstream consumers distinguish failed
// extractions by prefix matching; there is no separate error column.
const SentinelPrefix = "Error fetching article content:"

// Fetcher retrieves one article page over HTTP and runs it through the
// Reducer.
type Fetcher struct {
	httpClient *http.Client
	reducer    *Reducer
	userAgent  string
}

func NewFetcher(httpClient *http.Client, reducer *Reducer, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		reducer:    reducer,
		userAgent:  userAgent,
	}
}

// Run fetches an article page and returns (text, imageURL). Transport
// errors, non-2xx statuses and parse failures are encoded as a sentinel
// string in the text position with an empty image URL; Run never fails to
// the caller. No retries.
func (f *Fetcher) Run(ctx context.Context, link string) (string, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return sentinel(err), ""
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return sentinel(err), ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return sentinel(fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)), ""
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return sentinel(err), ""
	}

	text, imageURL, err := f.reducer.Run(data)
	if err != nil {
		return sentinel(err), ""
	}

	slog.Debug("Article content extracted",
		"url", link,
		"policy", f.reducer.Policy(),
		"content_length", len(text))

	return text, imageURL
}

func sentinel(err error) string {
	return fmt.Sprintf("%s %v", SentinelPrefix, err)
}
